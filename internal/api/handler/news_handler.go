package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/internal/dto"
	"github.com/400Ping/campus-bot/internal/service"
	"github.com/400Ping/campus-bot/pkg/response"
)

// NewsHandler 新闻订阅的 Web 端操作
type NewsHandler struct {
	news   service.NewsService
	auth   service.AuthService
	logger *zap.Logger
}

// ListKeywords GET /api/news/keywords
func (h *NewsHandler) ListKeywords(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	keywords, err := h.news.ListKeywords(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("查询关键字失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, keywords)
}

// AddKeyword POST /api/news/keywords
func (h *NewsHandler) AddKeyword(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	var req dto.KeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数不合法")
		return
	}
	if err := h.news.AddKeyword(c.Request.Context(), userID, req.Keyword); err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			response.BadRequest(c, 40001, "请求参数不合法")
			return
		}
		h.logger.Error("新增关键字失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Created(c, nil)
}

// RemoveKeyword DELETE /api/news/keywords?keyword=xx
func (h *NewsHandler) RemoveKeyword(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	keyword := c.Query("keyword")
	if keyword == "" {
		response.BadRequest(c, 40001, "缺少 keyword 参数")
		return
	}
	removed, err := h.news.RemoveKeyword(c.Request.Context(), userID, keyword)
	if err != nil {
		h.logger.Error("删除关键字失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	if !removed {
		response.NotFound(c, 40402, "关键字不存在")
		return
	}
	response.OK(c, nil)
}

// ListFeeds GET /api/news/feeds
func (h *NewsHandler) ListFeeds(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	urls, usingDefault, err := h.news.ListFeeds(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("查询新闻来源失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"feeds": urls, "using_default": usingDefault})
}

// AddFeed POST /api/news/feeds
func (h *NewsHandler) AddFeed(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	var req dto.FeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数不合法")
		return
	}
	if err := h.news.AddFeed(c.Request.Context(), userID, req.URL); err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			response.BadRequest(c, 40004, "来源必须是 http/https 网址")
			return
		}
		h.logger.Error("新增新闻来源失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Created(c, nil)
}

// RemoveFeed DELETE /api/news/feeds?url=xx
func (h *NewsHandler) RemoveFeed(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	url := c.Query("url")
	if url == "" {
		response.BadRequest(c, 40001, "缺少 url 参数")
		return
	}
	removed, err := h.news.RemoveFeed(c.Request.Context(), userID, url)
	if err != nil {
		h.logger.Error("删除新闻来源失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	if !removed {
		response.NotFound(c, 40403, "来源不存在")
		return
	}
	response.OK(c, nil)
}

// Refresh POST /api/news/refresh
func (h *NewsHandler) Refresh(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	items, err := h.news.FetchMatches(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("抓取新闻失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	for _, item := range items {
		if err := h.news.MarkSent(c.Request.Context(), item); err != nil {
			h.logger.Warn("新闻缓存写入失败", zap.String("url", item.URL), zap.Error(err))
		}
	}
	response.OK(c, items)
}
