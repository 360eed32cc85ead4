package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/internal/dto"
	"github.com/400Ping/campus-bot/internal/service"
	"github.com/400Ping/campus-bot/pkg/response"
)

// SettingsHandler 用户设定的 Web 端操作
type SettingsHandler struct {
	settings service.SettingsService
	auth     service.AuthService
	logger   *zap.Logger
}

// Get GET /api/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	user, err := h.settings.Get(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("查询设定失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, user)
}

// Update PUT /api/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数不合法")
		return
	}

	ctx := c.Request.Context()
	apply := func(err error) bool {
		if err == nil {
			return true
		}
		if errors.Is(err, service.ErrInvalidInput) {
			response.BadRequest(c, 40001, "请求参数不合法")
		} else {
			h.logger.Error("更新设定失败", zap.Error(err))
			response.InternalError(c)
		}
		return false
	}

	if req.NotificationsOn != nil && !apply(h.settings.SetNotifications(ctx, userID, *req.NotificationsOn)) {
		return
	}
	if req.ReminderWindow != nil && !apply(h.settings.SetReminderWindow(ctx, userID, *req.ReminderWindow)) {
		return
	}
	if req.Timezone != nil && !apply(h.settings.SetTimezone(ctx, userID, *req.Timezone)) {
		return
	}
	if req.TranslateOn != nil && !apply(h.settings.SetTranslate(ctx, userID, *req.TranslateOn)) {
		return
	}
	if req.TargetLang != nil && !apply(h.settings.SetTargetLang(ctx, userID, *req.TargetLang)) {
		return
	}

	user, err := h.settings.Get(ctx, userID)
	if err != nil {
		h.logger.Error("查询设定失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, user)
}
