package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/internal/model"
	"github.com/400Ping/campus-bot/internal/repository"
)

// 提醒提前量允许区间（分钟）
const (
	minReminderWindow = 1
	maxReminderWindow = 240
)

// SettingsService 用户设定业务
type SettingsService interface {
	// Get 取出设定，首次访问时按默认值建档
	Get(ctx context.Context, userID string) (*model.User, error)
	SetNotifications(ctx context.Context, userID string, on bool) error
	SetReminderWindow(ctx context.Context, userID string, minutes int) error
	// SetTimezone 设定时区，须为合法 IANA 名称
	SetTimezone(ctx context.Context, userID, tz string) error
	SetTranslate(ctx context.Context, userID string, on bool) error
	SetTargetLang(ctx context.Context, userID, lang string) error
	// Location 解析用户时区；解析失败时退回 Asia/Taipei
	Location(user *model.User) *time.Location
}

type settingsService struct {
	repo   repository.UserRepository
	logger *zap.Logger
}

// NewSettingsService 创建设定服务
func NewSettingsService(repo repository.UserRepository, logger *zap.Logger) SettingsService {
	return &settingsService{repo: repo, logger: logger}
}

func (s *settingsService) Get(ctx context.Context, userID string) (*model.User, error) {
	return s.repo.GetOrCreate(ctx, userID)
}

func (s *settingsService) mutate(ctx context.Context, userID string, fn func(*model.User) error) error {
	user, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	if err := fn(user); err != nil {
		return err
	}
	return s.repo.Save(ctx, user)
}

func (s *settingsService) SetNotifications(ctx context.Context, userID string, on bool) error {
	return s.mutate(ctx, userID, func(u *model.User) error {
		u.NotificationsOn = on
		return nil
	})
}

func (s *settingsService) SetReminderWindow(ctx context.Context, userID string, minutes int) error {
	if minutes < minReminderWindow || minutes > maxReminderWindow {
		return fmt.Errorf("%w: window must be %d-%d minutes", ErrInvalidInput, minReminderWindow, maxReminderWindow)
	}
	return s.mutate(ctx, userID, func(u *model.User) error {
		u.ReminderWindow = minutes
		return nil
	})
}

func (s *settingsService) SetTimezone(ctx context.Context, userID, tz string) error {
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, tz)
	}
	return s.mutate(ctx, userID, func(u *model.User) error {
		u.Timezone = tz
		return nil
	})
}

func (s *settingsService) SetTranslate(ctx context.Context, userID string, on bool) error {
	return s.mutate(ctx, userID, func(u *model.User) error {
		u.TranslateOn = on
		return nil
	})
}

func (s *settingsService) SetTargetLang(ctx context.Context, userID, lang string) error {
	if lang == "" {
		return fmt.Errorf("%w: empty language code", ErrInvalidInput)
	}
	return s.mutate(ctx, userID, func(u *model.User) error {
		u.TargetLang = lang
		return nil
	})
}

func (s *settingsService) Location(user *model.User) *time.Location {
	loc, err := time.LoadLocation(user.Timezone)
	if err != nil {
		s.logger.Warn("时区解析失败，退回预设",
			zap.String("user_id", user.UserID),
			zap.String("tz", user.Timezone))
		loc, _ = time.LoadLocation("Asia/Taipei")
	}
	return loc
}
