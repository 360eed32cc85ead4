package model

import "time"

// Note 筆記表，对应表 notes
// summary 在建立时由 AI 产生一次；失败时留空，之后可惰性补齐
type Note struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"   json:"id"`
	UserID     string    `gorm:"type:varchar(64);not null;index:idx_notes_user_ts" json:"user_id"`
	CourseName *string   `gorm:"type:varchar(100)"          json:"course_name,omitempty"`
	TS         time.Time `gorm:"column:ts;not null;index:idx_notes_user_ts"        json:"ts"`
	Content    string    `gorm:"type:text;not null"         json:"content"`
	Summary    *string   `gorm:"type:text"                  json:"summary,omitempty"`
}

// TableName 指定表名
func (Note) TableName() string { return "notes" }
