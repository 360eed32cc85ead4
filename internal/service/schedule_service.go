package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/internal/model"
	"github.com/400Ping/campus-bot/internal/repository"
)

var timeRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// NumberedCourse 带显示编号的课程。编号按 id 升序从 1 起算，
// 仅在当次列表输出内有效，删除后会重新编号。
type NumberedCourse struct {
	Index  int
	Course model.Course
}

// UpcomingCourse 即将开始的课程及距开课的分钟数
type UpcomingCourse struct {
	Course       model.Course
	MinutesUntil int
}

// ImportRecord 批量汇入的单条课程，来自图片辨识或档案
type ImportRecord struct {
	CourseName string  `json:"course_name"`
	DayOfWeek  int     `json:"day_of_week"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	Location   *string `json:"location,omitempty"`
}

// ImportResult 批量汇入结果
type ImportResult struct {
	Added  int
	Errors []string
}

// ScheduleService 课表业务
type ScheduleService interface {
	// Add 新增课程。开始须早于结束，且不得与同日既有课程重叠；
	// 首尾相接（前一门的结束等于后一门的开始）不算重叠。
	Add(ctx context.Context, userID string, dayOfWeek int, start, end, courseName string, location *string) (*model.Course, error)
	ListDay(ctx context.Context, userID string, dayOfWeek int) ([]model.Course, error)
	ListWeek(ctx context.Context, userID string) ([]model.Course, error)
	// ListNumbered 按 id 升序给出 1 起算的显示编号
	ListNumbered(ctx context.Context, userID string) ([]NumberedCourse, error)
	// RemoveByIndex 按显示编号删除，返回被删课程名
	RemoveByIndex(ctx context.Context, userID string, index int) (string, error)
	ClearAll(ctx context.Context, userID string) (int64, error)
	ClearDay(ctx context.Context, userID string, dayOfWeek int) (int64, error)
	HasAny(ctx context.Context, userID string) (bool, error)
	// Upcoming 列出 now 起 window 分钟内将开始的课程
	Upcoming(ctx context.Context, userID string, now time.Time, window int) ([]UpcomingCourse, error)
	// Import 逐条新增，单条失败不影响其余；错误摘要最多保留 maxImportErrors 条
	Import(ctx context.Context, userID string, records []ImportRecord) (*ImportResult, error)
}

const maxImportErrors = 3

type scheduleService struct {
	repo   repository.CourseRepository
	logger *zap.Logger
}

// NewScheduleService 创建课表服务
func NewScheduleService(repo repository.CourseRepository, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, logger: logger}
}

func (s *scheduleService) Add(ctx context.Context, userID string, dayOfWeek int, start, end, courseName string, location *string) (*model.Course, error) {
	if dayOfWeek < 1 || dayOfWeek > 7 {
		return nil, fmt.Errorf("%w: day_of_week %d", ErrInvalidInput, dayOfWeek)
	}
	if courseName == "" {
		return nil, fmt.Errorf("%w: empty course name", ErrInvalidInput)
	}
	if !timeRe.MatchString(start) || !timeRe.MatchString(end) {
		return nil, fmt.Errorf("%w: time must be HH:MM", ErrInvalidInput)
	}
	// "HH:MM" 零填充后字典序即时间序
	if start >= end {
		return nil, &InvalidTimeRangeError{Start: start, End: end}
	}

	overlapping, err := s.repo.FindOverlapping(ctx, userID, dayOfWeek, start, end)
	if err != nil {
		return nil, fmt.Errorf("check overlap: %w", err)
	}
	if len(overlapping) > 0 {
		return nil, &ConflictError{CourseName: overlapping[0].CourseName}
	}

	course := &model.Course{
		UserID:     userID,
		CourseName: courseName,
		DayOfWeek:  dayOfWeek,
		StartTime:  start,
		EndTime:    end,
		Location:   location,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	s.logger.Info("课程已新增",
		zap.String("user_id", userID),
		zap.String("course", courseName),
		zap.Int("day", dayOfWeek))
	return course, nil
}

func (s *scheduleService) ListDay(ctx context.Context, userID string, dayOfWeek int) ([]model.Course, error) {
	if dayOfWeek < 1 || dayOfWeek > 7 {
		return nil, fmt.Errorf("%w: day_of_week %d", ErrInvalidInput, dayOfWeek)
	}
	return s.repo.ListByUserDay(ctx, userID, dayOfWeek)
}

func (s *scheduleService) ListWeek(ctx context.Context, userID string) ([]model.Course, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *scheduleService) ListNumbered(ctx context.Context, userID string) ([]NumberedCourse, error) {
	courses, err := s.repo.ListByUserOrderByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	numbered := make([]NumberedCourse, len(courses))
	for i, c := range courses {
		numbered[i] = NumberedCourse{Index: i + 1, Course: c}
	}
	return numbered, nil
}

func (s *scheduleService) RemoveByIndex(ctx context.Context, userID string, index int) (string, error) {
	numbered, err := s.ListNumbered(ctx, userID)
	if err != nil {
		return "", err
	}
	if index < 1 || index > len(numbered) {
		return "", &IndexNotFoundError{Index: index}
	}
	target := numbered[index-1].Course
	if err := s.repo.DeleteByID(ctx, userID, target.ID); err != nil {
		return "", err
	}
	s.logger.Info("课程已删除",
		zap.String("user_id", userID),
		zap.String("course", target.CourseName))
	return target.CourseName, nil
}

func (s *scheduleService) ClearAll(ctx context.Context, userID string) (int64, error) {
	return s.repo.DeleteAllByUser(ctx, userID)
}

func (s *scheduleService) ClearDay(ctx context.Context, userID string, dayOfWeek int) (int64, error) {
	if dayOfWeek < 1 || dayOfWeek > 7 {
		return 0, fmt.Errorf("%w: day_of_week %d", ErrInvalidInput, dayOfWeek)
	}
	return s.repo.DeleteByUserDay(ctx, userID, dayOfWeek)
}

func (s *scheduleService) HasAny(ctx context.Context, userID string) (bool, error) {
	n, err := s.repo.CountByUser(ctx, userID)
	return n > 0, err
}

func (s *scheduleService) Upcoming(ctx context.Context, userID string, now time.Time, window int) ([]UpcomingCourse, error) {
	// Go 的 Weekday 以周日为 0，这里换算成周一=1…周日=7
	day := int(now.Weekday())
	if day == 0 {
		day = 7
	}
	courses, err := s.repo.ListByUserDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	var upcoming []UpcomingCourse
	for _, c := range courses {
		start, err := time.ParseInLocation("15:04", c.StartTime, now.Location())
		if err != nil {
			// 脏数据跳过，不影响其余提醒
			continue
		}
		start = time.Date(now.Year(), now.Month(), now.Day(),
			start.Hour(), start.Minute(), 0, 0, now.Location())
		mins := int(start.Sub(now).Minutes())
		if mins >= 0 && mins <= window {
			upcoming = append(upcoming, UpcomingCourse{Course: c, MinutesUntil: mins})
		}
	}
	return upcoming, nil
}

func (s *scheduleService) Import(ctx context.Context, userID string, records []ImportRecord) (*ImportResult, error) {
	result := &ImportResult{}
	for _, rec := range records {
		if rec.CourseName == "" || rec.StartTime == "" {
			continue
		}
		_, err := s.Add(ctx, userID, rec.DayOfWeek, rec.StartTime, rec.EndTime, rec.CourseName, rec.Location)
		if err != nil {
			if len(result.Errors) < maxImportErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("%s：%s", rec.CourseName, importErrText(err)))
			}
			continue
		}
		result.Added++
	}
	s.logger.Info("课表批量汇入完成",
		zap.String("user_id", userID),
		zap.Int("added", result.Added),
		zap.Int("failed", len(records)-result.Added))
	return result, nil
}

func importErrText(err error) string {
	switch e := err.(type) {
	case *ConflictError:
		return fmt.Sprintf("与「%s」時段衝突", e.CourseName)
	case *InvalidTimeRangeError:
		return fmt.Sprintf("時間區間不合法 %s-%s", e.Start, e.End)
	default:
		return "格式不正確"
	}
}
