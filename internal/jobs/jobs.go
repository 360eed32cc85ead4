package jobs

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/internal/repository"
	"github.com/400Ping/campus-bot/internal/service"
)

// Pusher 主动推送讯息的最小能力
type Pusher interface {
	PushText(userID, text string) error
}

// Jobs 背景排程：上课提醒与新闻轮询
type Jobs struct {
	users            repository.UserRepository
	schedule         service.ScheduleService
	news             service.NewsService
	notes            service.NoteService
	settings         service.SettingsService
	pusher           Pusher
	reminderInterval time.Duration
	newsInterval     time.Duration
	logger           *zap.Logger
}

// New 创建排程器
func New(
	users repository.UserRepository,
	schedule service.ScheduleService,
	news service.NewsService,
	notes service.NoteService,
	settings service.SettingsService,
	pusher Pusher,
	reminderInterval, newsInterval time.Duration,
	logger *zap.Logger,
) *Jobs {
	return &Jobs{
		users:            users,
		schedule:         schedule,
		news:             news,
		notes:            notes,
		settings:         settings,
		pusher:           pusher,
		reminderInterval: reminderInterval,
		newsInterval:     newsInterval,
		logger:           logger,
	}
}

// 每轮慢速 tick 最多补齐的筆記摘要条数
const backfillBatchSize = 20

// Start 启动两条排程 goroutine，ctx 取消时结束
func (j *Jobs) Start(ctx context.Context) {
	go j.loop(ctx, "reminder", j.reminderInterval, j.runReminders)
	go j.loop(ctx, "news", j.newsInterval, j.runSlowTick)
}

// runSlowTick 慢速排程：新闻轮询，顺带补齐缺失的筆記摘要
func (j *Jobs) runSlowTick(ctx context.Context) {
	j.runNewsPoll(ctx)
	done, err := j.notes.BackfillSummaries(ctx, backfillBatchSize)
	if err != nil {
		j.logger.Warn("摘要补齐失败", zap.Error(err))
		return
	}
	if done > 0 {
		j.logger.Info("已补齐筆記摘要", zap.Int("count", done))
	}
}

func (j *Jobs) loop(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) {
	j.logger.Info("排程已启动",
		zap.String("job", name),
		zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("排程已停止", zap.String("job", name))
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// canPush 判断能否向该用户主动推送。
// WEB_ 前缀是尚未綁定 LINE 的 Web 身份，推不了。
func canPush(userID string) bool {
	return !strings.HasPrefix(userID, "WEB_")
}
