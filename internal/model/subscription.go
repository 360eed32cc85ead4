package model

import "time"

// Keyword 新闻关键字，对应表 keywords
type Keyword struct {
	ID      int64  `gorm:"primaryKey;autoIncrement"  json:"id"`
	UserID  string `gorm:"type:varchar(64);not null" json:"user_id"`
	Keyword string `gorm:"type:varchar(100);not null" json:"keyword"`
}

// TableName 指定表名
func (Keyword) TableName() string { return "keywords" }

// Feed 用户自订 RSS 来源，对应表 feeds
type Feed struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"  json:"id"`
	UserID string `gorm:"type:varchar(64);not null" json:"user_id"`
	URL    string `gorm:"type:text;not null"        json:"url"`
}

// TableName 指定表名
func (Feed) TableName() string { return "feeds" }

// NewsCacheItem 已推送新闻去重缓存，对应表 news_cache
// url 唯一，跨用户共用：同一条新闻只会被送达一次
type NewsCacheItem struct {
	ID    int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	URL   string    `gorm:"type:text;not null;uniqueIndex" json:"url"`
	Title string    `gorm:"type:text"                json:"title"`
	TS    time.Time `gorm:"column:ts;not null"       json:"ts"`
}

// TableName 指定表名
func (NewsCacheItem) TableName() string { return "news_cache" }
