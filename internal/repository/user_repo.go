package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/400Ping/campus-bot/internal/model"
)

// UserRepository 用户设定仓储
type UserRepository interface {
	// GetOrCreate 取出用户设定，不存在时按默认值建立
	GetOrCreate(ctx context.Context, userID string) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	Save(ctx context.Context, user *model.User) error
	// ListReminderEnabled 列出所有开启提醒的用户
	ListReminderEnabled(ctx context.Context) ([]model.User, error)
	// MigrateUserID 把 oldID 名下所有数据改挂到 newID（帳號綁定时使用）
	MigrateUserID(ctx context.Context, oldID, newID string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetOrCreate(ctx context.Context, userID string) (*model.User, error) {
	user := model.User{
		UserID:          userID,
		Locale:          "zh-TW",
		Timezone:        "Asia/Taipei",
		TargetLang:      "zh-Hant",
		NotificationsOn: true,
		ReminderWindow:  15,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&user).Error
	if err != nil {
		return nil, err
	}
	// OnConflict DoNothing 时 user 里是默认值，重读一次拿到库中实际设定
	var got model.User
	if err := r.db.WithContext(ctx).First(&got, "user_id = ?", userID).Error; err != nil {
		return nil, translateErr(err)
	}
	return &got, nil
}

func (r *userRepository) Get(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "user_id = ?", userID).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (r *userRepository) Save(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) ListReminderEnabled(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("notifications_on = ?", true).
		Find(&users).Error
	return users, err
}

func (r *userRepository) MigrateUserID(ctx context.Context, oldID, newID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&model.Course{}, &model.Note{}, &model.Keyword{}, &model.Feed{},
		} {
			if err := tx.Model(m).Where("user_id = ?", oldID).
				Update("user_id", newID).Error; err != nil {
				return err
			}
		}
		// users 表主键即 user_id，直接删旧建留新；新 id 已有设定时保留新设定
		var exists int64
		if err := tx.Model(&model.User{}).Where("user_id = ?", newID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			if err := tx.Model(&model.User{}).Where("user_id = ?", oldID).
				Update("user_id", newID).Error; err != nil {
				return err
			}
			return nil
		}
		return tx.Delete(&model.User{}, "user_id = ?", oldID).Error
	})
}
