package model

import "time"

// Account Web 帳號表，对应表 accounts
type Account struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"        json:"id"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null"      json:"-"`
	DisplayName  *string   `gorm:"type:varchar(100)"               json:"display_name,omitempty"`
	Role         string    `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	LineUserID   *string   `gorm:"type:varchar(64)"                json:"line_user_id,omitempty"`
	IsVerified   bool      `gorm:"not null;default:false"          json:"is_verified"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (Account) TableName() string { return "accounts" }

// LinkCode LINE 綁定碼，对应表 link_codes
// 由 bot 端 /link 产生，Web 端 15 分钟内兑换，一次性
type LinkCode struct {
	Code       string    `gorm:"type:varchar(32);primaryKey" json:"code"`
	LineUserID string    `gorm:"type:varchar(64);not null"   json:"line_user_id"`
	ExpiresAt  time.Time `gorm:"not null"                    json:"expires_at"`
}

// TableName 指定表名
func (LinkCode) TableName() string { return "link_codes" }
