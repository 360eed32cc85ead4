package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/400Ping/campus-bot/internal/model"
)

// SubscriptionRepository 新闻订阅仓储，覆盖关键字、RSS 来源与去重缓存
type SubscriptionRepository interface {
	AddKeyword(ctx context.Context, userID, keyword string) error
	RemoveKeyword(ctx context.Context, userID, keyword string) (bool, error)
	ListKeywords(ctx context.Context, userID string) ([]string, error)

	AddFeed(ctx context.Context, userID, url string) error
	RemoveFeed(ctx context.Context, userID, url string) (bool, error)
	ListFeeds(ctx context.Context, userID string) ([]string, error)

	// ListSubscribers 列出至少有一个关键字的用户 id
	ListSubscribers(ctx context.Context) ([]string, error)

	// IsSent 判断该 url 是否已推送过
	IsSent(ctx context.Context, url string) (bool, error)
	// MarkSent 记入去重缓存，url 已存在时静默成功
	MarkSent(ctx context.Context, url, title string) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository 创建订阅仓储
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) AddKeyword(ctx context.Context, userID, keyword string) error {
	var exists int64
	err := r.db.WithContext(ctx).Model(&model.Keyword{}).
		Where("user_id = ? AND keyword = ?", userID, keyword).
		Count(&exists).Error
	if err != nil {
		return err
	}
	if exists > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&model.Keyword{UserID: userID, Keyword: keyword}).Error
}

func (r *subscriptionRepository) RemoveKeyword(ctx context.Context, userID, keyword string) (bool, error) {
	res := r.db.WithContext(ctx).
		Delete(&model.Keyword{}, "user_id = ? AND keyword = ?", userID, keyword)
	return res.RowsAffected > 0, res.Error
}

func (r *subscriptionRepository) ListKeywords(ctx context.Context, userID string) ([]string, error) {
	var words []string
	err := r.db.WithContext(ctx).Model(&model.Keyword{}).
		Where("user_id = ?", userID).
		Order("id").
		Pluck("keyword", &words).Error
	return words, err
}

func (r *subscriptionRepository) AddFeed(ctx context.Context, userID, url string) error {
	var exists int64
	err := r.db.WithContext(ctx).Model(&model.Feed{}).
		Where("user_id = ? AND url = ?", userID, url).
		Count(&exists).Error
	if err != nil {
		return err
	}
	if exists > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&model.Feed{UserID: userID, URL: url}).Error
}

func (r *subscriptionRepository) RemoveFeed(ctx context.Context, userID, url string) (bool, error) {
	res := r.db.WithContext(ctx).
		Delete(&model.Feed{}, "user_id = ? AND url = ?", userID, url)
	return res.RowsAffected > 0, res.Error
}

func (r *subscriptionRepository) ListFeeds(ctx context.Context, userID string) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).Model(&model.Feed{}).
		Where("user_id = ?", userID).
		Order("id").
		Pluck("url", &urls).Error
	return urls, err
}

func (r *subscriptionRepository) ListSubscribers(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Keyword{}).
		Distinct("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *subscriptionRepository) IsSent(ctx context.Context, url string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.NewsCacheItem{}).
		Where("url = ?", url).Count(&n).Error
	return n > 0, err
}

func (r *subscriptionRepository) MarkSent(ctx context.Context, url, title string) error {
	item := model.NewsCacheItem{URL: url, Title: title, TS: time.Now()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&item).Error
}
