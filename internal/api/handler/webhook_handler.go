package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/internal/bot"
	"github.com/400Ping/campus-bot/pkg/line"
)

// WebhookHandler 接收 LINE 平台的 webhook 回调
type WebhookHandler struct {
	line   *line.Client
	router *bot.Router
	logger *zap.Logger
}

// Handle POST /webhook
func (h *WebhookHandler) Handle(c *gin.Context) {
	events, err := h.line.ParseRequest(c.Request)
	if err != nil {
		if errors.Is(err, line.ErrInvalidSignature) {
			h.logger.Warn("webhook 签名校验失败", zap.String("client_ip", c.ClientIP()))
			c.Status(http.StatusBadRequest)
			return
		}
		h.logger.Error("webhook 解析失败", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}

	h.router.HandleEvents(c.Request.Context(), events)
	c.Status(http.StatusOK)
}
