package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/config"
	"github.com/400Ping/campus-bot/internal/ai"
	"github.com/400Ping/campus-bot/internal/api/handler"
	"github.com/400Ping/campus-bot/internal/api/router"
	"github.com/400Ping/campus-bot/internal/bot"
	"github.com/400Ping/campus-bot/internal/jobs"
	"github.com/400Ping/campus-bot/internal/repository"
	"github.com/400Ping/campus-bot/internal/service"
	"github.com/400Ping/campus-bot/pkg/database"
	"github.com/400Ping/campus-bot/pkg/jwt"
	"github.com/400Ping/campus-bot/pkg/line"
	"github.com/400Ping/campus-bot/pkg/logger"
	"github.com/400Ping/campus-bot/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("服务启动失败", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 数据库 ──
	db, err := database.NewDB(&cfg.Database, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, log); err != nil {
		return err
	}

	// ── Redis（失败时降级运行，仅影响 Token 黑名单）──
	redisClient, err := redis.NewClient(&cfg.Redis, log)
	if err != nil {
		log.Warn("Redis 不可用，Token 黑名单停用", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// ── 外部客户端 ──
	jwtManager := jwt.NewManager(&cfg.Auth)

	lineClient, err := line.NewClient(&cfg.Line, log)
	if err != nil {
		return err
	}

	var gemini *ai.Gemini
	if cfg.AI.GeminiAPIKey != "" {
		gemini, err = ai.NewGemini(ctx, cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel, cfg.AI.GeminiVisionModel, log)
		if err != nil {
			return err
		}
		defer gemini.Close()
	} else {
		log.Warn("未配置 Gemini API Key，摘要与图片辨识停用")
	}

	var translator *ai.Translator
	if cfg.AI.TranslatorKey != "" {
		translator = ai.NewTranslator(cfg.AI.TranslatorEndpoint, cfg.AI.TranslatorKey, cfg.AI.TranslatorRegion, log)
	} else {
		log.Warn("未配置翻译服务，翻译功能停用")
	}

	var speechClient *ai.SpeechRecognizer
	speechClient, err = ai.NewSpeechRecognizer(ctx, cfg.AI.SpeechCandidateLang, log)
	if err != nil {
		log.Warn("语音辨识客户端初始化失败，语音功能停用", zap.Error(err))
		speechClient = nil
	} else {
		defer speechClient.Close()
	}

	// ── 业务组装 ──
	repo := repository.New(db)
	svc := &service.Service{
		Schedule: service.NewScheduleService(repo.Course, log),
		Settings: service.NewSettingsService(repo.User, log),
		News:     service.NewNewsService(repo.Subscription, service.NewGofeedFetcher(), cfg.News.DefaultFeeds, log),
		Auth:     service.NewAuthService(repo.Account, repo.User, jwtManager, redisClient, cfg.Auth.LinkCodeTTL, log),
		Export:   service.NewExportService(repo.Course, log),
	}
	var summarizer service.Summarizer
	if gemini != nil {
		summarizer = gemini
	}
	svc.Note = service.NewNoteService(repo.Note, summarizer, log)

	var ocr bot.ScheduleOCR
	if gemini != nil {
		ocr = gemini
	}
	var textTranslator bot.TextTranslator
	if translator != nil {
		textTranslator = translator
	}
	var speech bot.SpeechToText
	if speechClient != nil {
		speech = speechClient
	}
	botRouter := bot.NewRouter(lineClient, svc, ocr, textTranslator, speech, log)

	// ── 背景排程 ──
	scheduler := jobs.New(repo.User, svc.Schedule, svc.News, svc.Note, svc.Settings, lineClient,
		cfg.Jobs.ReminderInterval, cfg.Jobs.NewsInterval, log)
	scheduler.Start(ctx)

	// ── HTTP 服务 ──
	h := handler.New(lineClient, botRouter, svc, log)
	engine := router.New(cfg, h, jwtManager, redisClient, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP 服务已启动", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("收到退出信号，开始优雅关闭")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭 HTTP 服务失败: %w", err)
	}
	log.Info("服务已退出")
	return nil
}
