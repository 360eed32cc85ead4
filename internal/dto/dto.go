package dto

// ── 认证 ──

// RegisterRequest 注册
type RegisterRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8"`
	DisplayName *string `json:"display_name"`
}

// LoginRequest 登入
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest 换发令牌
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LinkRequest 以綁定碼綁定 LINE
type LinkRequest struct {
	Code string `json:"code" binding:"required"`
}

// ── 课表 ──

// CreateCourseRequest 新增课程
type CreateCourseRequest struct {
	CourseName string  `json:"course_name" binding:"required"`
	DayOfWeek  int     `json:"day_of_week" binding:"required,min=1,max=7"`
	StartTime  string  `json:"start_time" binding:"required"`
	EndTime    string  `json:"end_time" binding:"required"`
	Location   *string `json:"location"`
}

// ── 筆記 ──

// CreateNoteRequest 新增筆記
type CreateNoteRequest struct {
	Content    string  `json:"content" binding:"required"`
	CourseName *string `json:"course_name"`
}

// ── 订阅 ──

// KeywordRequest 关键字
type KeywordRequest struct {
	Keyword string `json:"keyword" binding:"required"`
}

// FeedRequest RSS 来源
type FeedRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// ── 设定 ──

// UpdateSettingsRequest 局部更新设定，nil 字段不变
type UpdateSettingsRequest struct {
	NotificationsOn *bool   `json:"notifications_on"`
	ReminderWindow  *int    `json:"reminder_window"`
	Timezone        *string `json:"timezone"`
	TranslateOn     *bool   `json:"translate_on"`
	TargetLang      *string `json:"target_lang"`
}
