package service

import (
	"errors"
	"fmt"
)

// 通用业务错误
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLinkCodeInvalid    = errors.New("link code invalid or expired")
	ErrAlreadyLinked      = errors.New("account already linked")
)

// ConflictError 新增课程与既有课程时段重叠
type ConflictError struct {
	CourseName string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule conflict with %q", e.CourseName)
}

// InvalidTimeRangeError 开始时间不早于结束时间
type InvalidTimeRangeError struct {
	Start string
	End   string
}

func (e *InvalidTimeRangeError) Error() string {
	return fmt.Sprintf("invalid time range %s-%s", e.Start, e.End)
}

// IndexNotFoundError 显示编号不存在
type IndexNotFoundError struct {
	Index int
}

func (e *IndexNotFoundError) Error() string {
	return fmt.Sprintf("no course at index %d", e.Index)
}

// Service 聚合所有业务服务
type Service struct {
	Schedule ScheduleService
	Note     NoteService
	News     NewsService
	Settings SettingsService
	Auth     AuthService
	Export   ExportService
}
