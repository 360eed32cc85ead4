package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/400Ping/campus-bot/internal/model"
)

// CourseRepository 课表仓储
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	// ListByUser 按 (day_of_week, start_time, id) 排序列出全部课程
	ListByUser(ctx context.Context, userID string) ([]model.Course, error)
	// ListByUserDay 列出某天课程，按 start_time 排序
	ListByUserDay(ctx context.Context, userID string, dayOfWeek int) ([]model.Course, error)
	// ListByUserOrderByID 按 id 升序列出，显示编号以此为准
	ListByUserOrderByID(ctx context.Context, userID string) ([]model.Course, error)
	// FindOverlapping 找出与 [start, end) 有时段交集的同日课程
	FindOverlapping(ctx context.Context, userID string, dayOfWeek int, start, end string) ([]model.Course, error)
	GetByID(ctx context.Context, userID string, id int64) (*model.Course, error)
	// DeleteByID 删除指定课程；课程不存在时静默成功
	DeleteByID(ctx context.Context, userID string, id int64) error
	DeleteAllByUser(ctx context.Context, userID string) (int64, error)
	DeleteByUserDay(ctx context.Context, userID string, dayOfWeek int) (int64, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository 创建课表仓储
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) ListByUser(ctx context.Context, userID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("day_of_week, start_time, id").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepository) ListByUserDay(ctx context.Context, userID string, dayOfWeek int) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND day_of_week = ?", userID, dayOfWeek).
		Order("start_time, id").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepository) ListByUserOrderByID(ctx context.Context, userID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepository) FindOverlapping(ctx context.Context, userID string, dayOfWeek int, start, end string) ([]model.Course, error) {
	var courses []model.Course
	// 邻接不算冲突：start_time < end 且 end_time > start
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND day_of_week = ? AND start_time < ? AND end_time > ?",
			userID, dayOfWeek, end, start).
		Order("start_time").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepository) GetByID(ctx context.Context, userID string, id int64) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		First(&course, "user_id = ? AND id = ?", userID, id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &course, nil
}

func (r *courseRepository) DeleteByID(ctx context.Context, userID string, id int64) error {
	return r.db.WithContext(ctx).
		Delete(&model.Course{}, "user_id = ? AND id = ?", userID, id).Error
}

func (r *courseRepository) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Course{}, "user_id = ?", userID)
	return res.RowsAffected, res.Error
}

func (r *courseRepository) DeleteByUserDay(ctx context.Context, userID string, dayOfWeek int) (int64, error) {
	res := r.db.WithContext(ctx).
		Delete(&model.Course{}, "user_id = ? AND day_of_week = ?", userID, dayOfWeek)
	return res.RowsAffected, res.Error
}

func (r *courseRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Course{}).
		Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
