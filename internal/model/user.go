package model

// User 用户设定表，对应表 users
// user_id 为 LINE user id，或未綁定 Web 帳號的 "WEB_<account_id>"
type User struct {
	UserID          string `gorm:"type:varchar(64);primaryKey"                 json:"user_id"`
	TranslateOn     bool   `gorm:"not null;default:false"                      json:"translate_on"`
	Locale          string `gorm:"type:varchar(16);not null;default:'zh-TW'"   json:"locale"`
	Timezone        string `gorm:"type:varchar(64);not null;default:'Asia/Taipei'" json:"timezone"`
	TargetLang      string `gorm:"type:varchar(16);not null;default:'zh-Hant'" json:"target_lang"`
	NotificationsOn bool   `gorm:"not null;default:true"                       json:"notifications_on"`
	ReminderWindow  int    `gorm:"not null;default:15"                         json:"reminder_window"` // 提醒提前量（分钟）
}

// TableName 指定表名
func (User) TableName() string { return "users" }
