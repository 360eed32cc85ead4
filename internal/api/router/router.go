package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/config"
	"github.com/400Ping/campus-bot/internal/api/handler"
	"github.com/400Ping/campus-bot/internal/api/middleware"
	"github.com/400Ping/campus-bot/pkg/jwt"
	"github.com/400Ping/campus-bot/pkg/redis"
)

// New 组装所有路由
func New(
	cfg *config.Config,
	h *handler.Handler,
	jwtManager *jwt.Manager,
	redisClient *redis.Client,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// LINE webhook 走平台签名校验，不套 JWT
	engine.POST("/webhook", h.Webhook.Handle)

	api := engine.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		authed := api.Group("")
		authed.Use(middleware.Auth(jwtManager, redisClient))
		{
			authed.POST("/auth/logout", h.Auth.Logout)
			authed.GET("/auth/me", h.Auth.Me)
			authed.POST("/auth/link", h.Auth.Link)

			authed.GET("/schedule", h.Schedule.List)
			authed.POST("/schedule", h.Schedule.Create)
			authed.DELETE("/schedule", h.Schedule.Clear)
			authed.DELETE("/schedule/:index", h.Schedule.Remove)
			authed.POST("/schedule/import", h.Schedule.ImportCSV)
			authed.GET("/schedule/export/xlsx", h.Schedule.ExportXLSX)
			authed.GET("/schedule/export/ics", h.Schedule.ExportICS)

			authed.GET("/notes", h.Note.List)
			authed.POST("/notes", h.Note.Create)
			authed.GET("/notes/:id", h.Note.Detail)
			authed.DELETE("/notes/:id", h.Note.Delete)
			authed.POST("/notes/:id/summary", h.Note.RegenerateSummary)
			authed.GET("/review/today", h.Note.ReviewToday)

			authed.GET("/news/keywords", h.News.ListKeywords)
			authed.POST("/news/keywords", h.News.AddKeyword)
			authed.DELETE("/news/keywords", h.News.RemoveKeyword)
			authed.GET("/news/feeds", h.News.ListFeeds)
			authed.POST("/news/feeds", h.News.AddFeed)
			authed.DELETE("/news/feeds", h.News.RemoveFeed)
			authed.POST("/news/refresh", h.News.Refresh)

			authed.GET("/settings", h.Settings.Get)
			authed.PUT("/settings", h.Settings.Update)
		}
	}

	return engine
}
