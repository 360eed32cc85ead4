package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/400Ping/campus-bot/internal/model"
)

// AccountRepository Web 帳號与綁定碼仓储
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByID(ctx context.Context, id int64) (*model.Account, error)
	UpdateLineUserID(ctx context.Context, id int64, lineUserID string) error

	SaveLinkCode(ctx context.Context, code *model.LinkCode) error
	// ConsumeLinkCode 取出并删除綁定碼，一次性；过期或不存在返回 ErrNotFound
	ConsumeLinkCode(ctx context.Context, code string, now time.Time) (*model.LinkCode, error)
	DeleteExpiredLinkCodes(ctx context.Context, now time.Time) (int64, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建帳號仓储
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	var acct model.Account
	if err := r.db.WithContext(ctx).First(&acct, "email = ?", email).Error; err != nil {
		return nil, translateErr(err)
	}
	return &acct, nil
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	var acct model.Account
	if err := r.db.WithContext(ctx).First(&acct, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &acct, nil
}

func (r *accountRepository) UpdateLineUserID(ctx context.Context, id int64, lineUserID string) error {
	return r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ?", id).
		Update("line_user_id", lineUserID).Error
}

func (r *accountRepository) SaveLinkCode(ctx context.Context, code *model.LinkCode) error {
	return r.db.WithContext(ctx).Save(code).Error
}

func (r *accountRepository) ConsumeLinkCode(ctx context.Context, code string, now time.Time) (*model.LinkCode, error) {
	var lc model.LinkCode
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lc, "code = ?", code).Error; err != nil {
			return translateErr(err)
		}
		if err := tx.Delete(&model.LinkCode{}, "code = ?", code).Error; err != nil {
			return err
		}
		if now.After(lc.ExpiresAt) {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &lc, nil
}

func (r *accountRepository) DeleteExpiredLinkCodes(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Delete(&model.LinkCode{}, "expires_at < ?", now)
	return res.RowsAffected, res.Error
}
