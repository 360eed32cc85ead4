package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/400Ping/campus-bot/internal/model"
)

// NoteRepository 筆記仓储
type NoteRepository interface {
	Create(ctx context.Context, note *model.Note) error
	// ListRecent 按时间倒序取最近 n 条
	ListRecent(ctx context.Context, userID string, n int) ([]model.Note, error)
	// ListByRange 取 [from, to) 区间内的筆記，按时间升序
	ListByRange(ctx context.Context, userID string, from, to time.Time) ([]model.Note, error)
	// GetByID 取指定用户的单条筆記，不存在返回 ErrNotFound
	GetByID(ctx context.Context, userID string, id int64) (*model.Note, error)
	// DeleteByID 删除指定用户的单条筆記，不存在返回 ErrNotFound
	DeleteByID(ctx context.Context, userID string, id int64) error
	UpdateSummary(ctx context.Context, id int64, summary string) error
	// ListMissingSummary 列出尚无摘要的筆記，供补齐任务使用
	ListMissingSummary(ctx context.Context, limit int) ([]model.Note, error)
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository 创建筆記仓储
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *model.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *noteRepository) ListRecent(ctx context.Context, userID string, n int) ([]model.Note, error) {
	var notes []model.Note
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("ts DESC").
		Limit(n).
		Find(&notes).Error
	return notes, err
}

func (r *noteRepository) ListByRange(ctx context.Context, userID string, from, to time.Time) ([]model.Note, error) {
	var notes []model.Note
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND ts >= ? AND ts < ?", userID, from, to).
		Order("ts").
		Find(&notes).Error
	return notes, err
}

func (r *noteRepository) GetByID(ctx context.Context, userID string, id int64) (*model.Note, error) {
	var note model.Note
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&note).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &note, nil
}

func (r *noteRepository) DeleteByID(ctx context.Context, userID string, id int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&model.Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *noteRepository) UpdateSummary(ctx context.Context, id int64, summary string) error {
	return r.db.WithContext(ctx).Model(&model.Note{}).
		Where("id = ?", id).
		Update("summary", summary).Error
}

func (r *noteRepository) ListMissingSummary(ctx context.Context, limit int) ([]model.Note, error) {
	var notes []model.Note
	err := r.db.WithContext(ctx).
		Where("summary IS NULL OR summary = ''").
		Order("id").
		Limit(limit).
		Find(&notes).Error
	return notes, err
}
