package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/internal/dto"
	"github.com/400Ping/campus-bot/internal/service"
	"github.com/400Ping/campus-bot/pkg/response"
)

// NoteHandler 筆記的 Web 端操作
type NoteHandler struct {
	notes    service.NoteService
	settings service.SettingsService
	auth     service.AuthService
	logger   *zap.Logger
}

// List GET /api/notes?limit=n
func (h *NoteHandler) List(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.BadRequest(c, 40001, "limit 必须是正整数")
			return
		}
		limit = parsed
	}
	notes, err := h.notes.ListRecent(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("查询筆記失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, notes)
}

// Create POST /api/notes
func (h *NoteHandler) Create(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	var req dto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数不合法")
		return
	}
	user, err := h.settings.Get(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("查询用户设定失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	now := time.Now().In(h.settings.Location(user))
	note, err := h.notes.Add(c.Request.Context(), userID, req.Content, req.CourseName, now)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			response.BadRequest(c, 40001, "请求参数不合法")
			return
		}
		h.logger.Error("新增筆記失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Created(c, note)
}

// Detail GET /api/notes/:id
func (h *NoteHandler) Detail(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, 40001, "编号必须是整数")
		return
	}
	note, err := h.notes.Get(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, 40402, "筆記不存在")
			return
		}
		h.logger.Error("查询筆記失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, note)
}

// Delete DELETE /api/notes/:id
func (h *NoteHandler) Delete(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, 40001, "编号必须是整数")
		return
	}
	if err := h.notes.Delete(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, 40402, "筆記不存在")
			return
		}
		h.logger.Error("删除筆記失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// RegenerateSummary POST /api/notes/:id/summary
func (h *NoteHandler) RegenerateSummary(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, 40001, "编号必须是整数")
		return
	}
	note, err := h.notes.RegenerateSummary(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, 40402, "筆記不存在")
			return
		}
		h.logger.Error("重生成摘要失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, note)
}

// ReviewToday GET /api/review/today
func (h *NoteHandler) ReviewToday(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	user, err := h.settings.Get(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("查询用户设定失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	now := time.Now().In(h.settings.Location(user))
	digest, err := h.notes.ReviewToday(c.Request.Context(), userID, now)
	if err != nil {
		h.logger.Error("产生回顾失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"digest": digest})
}
