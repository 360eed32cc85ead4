package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/internal/api/middleware"
	"github.com/400Ping/campus-bot/internal/bot"
	"github.com/400Ping/campus-bot/internal/service"
	"github.com/400Ping/campus-bot/pkg/line"
	"github.com/400Ping/campus-bot/pkg/response"
)

// Handler 聚合所有 HTTP 处理器
type Handler struct {
	Webhook  *WebhookHandler
	Auth     *AuthHandler
	Schedule *ScheduleHandler
	Note     *NoteHandler
	News     *NewsHandler
	Settings *SettingsHandler
}

// New 创建处理器聚合
func New(lineClient *line.Client, router *bot.Router, svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Webhook:  &WebhookHandler{line: lineClient, router: router, logger: logger},
		Auth:     &AuthHandler{auth: svc.Auth, logger: logger},
		Schedule: &ScheduleHandler{schedule: svc.Schedule, export: svc.Export, settings: svc.Settings, auth: svc.Auth, logger: logger},
		Note:     &NoteHandler{notes: svc.Note, settings: svc.Settings, auth: svc.Auth, logger: logger},
		News:     &NewsHandler{news: svc.News, auth: svc.Auth, logger: logger},
		Settings: &SettingsHandler{settings: svc.Settings, auth: svc.Auth, logger: logger},
	}
}

// botUserID 把当前登录帳號换算成 bot 数据中的用户身份
func botUserID(c *gin.Context, auth service.AuthService) (string, bool) {
	acct, err := auth.GetAccount(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		response.Unauthorized(c, 40103, "无效的认证信息")
		return "", false
	}
	return auth.ResolveBotUserID(acct), true
}
