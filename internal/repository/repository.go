package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound 统一的未找到错误，屏蔽底层 gorm.ErrRecordNotFound
var ErrNotFound = errors.New("record not found")

// Repository 聚合所有仓储接口，便于一次性注入 service 层
type Repository struct {
	User         UserRepository
	Course       CourseRepository
	Note         NoteRepository
	Subscription SubscriptionRepository
	Account      AccountRepository
}

// New 创建仓储聚合
func New(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepository(db),
		Course:       NewCourseRepository(db),
		Note:         NewNoteRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Account:      NewAccountRepository(db),
	}
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
