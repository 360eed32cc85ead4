package model

// Course 课表条目，对应表 schedule
// start_time/end_time 存 "HH:MM"，按字符串比较即可得到时间先后
type Course struct {
	ID         int64   `gorm:"primaryKey;autoIncrement"        json:"id"`
	UserID     string  `gorm:"type:varchar(64);not null;index:idx_schedule_user_day" json:"user_id"`
	CourseName string  `gorm:"type:varchar(100);not null"      json:"course_name"`
	DayOfWeek  int     `gorm:"type:smallint;not null;index:idx_schedule_user_day"    json:"day_of_week"` // 1=周一 … 7=周日
	StartTime  string  `gorm:"type:varchar(5);not null"        json:"start_time"`
	EndTime    string  `gorm:"type:varchar(5);not null"        json:"end_time"`
	Location   *string `gorm:"type:varchar(100)"               json:"location,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "schedule" }
