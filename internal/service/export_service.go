package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/internal/repository"
)

// ExportService 课表汇出
type ExportService interface {
	// ExportXLSX 汇出整周课表为 Excel
	ExportXLSX(ctx context.Context, userID string) ([]byte, error)
	// ExportICS 以 weekStart（周一零点）为锚产生每周重复的行事历
	ExportICS(ctx context.Context, userID string, weekStart time.Time) ([]byte, error)
}

type exportService struct {
	repo   repository.CourseRepository
	logger *zap.Logger
}

// NewExportService 创建汇出服务
func NewExportService(repo repository.CourseRepository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var dayNames = [...]string{"", "週一", "週二", "週三", "週四", "週五", "週六", "週日"}

func (s *exportService) ExportXLSX(ctx context.Context, userID string) ([]byte, error) {
	courses, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "課表"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"星期", "開始", "結束", "課程", "地點"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for row, c := range courses {
		loc := ""
		if c.Location != nil {
			loc = *c.Location
		}
		values := []interface{}{dayNames[c.DayOfWeek], c.StartTime, c.EndTime, c.CourseName, loc}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	s.logger.Info("课表已汇出 xlsx",
		zap.String("user_id", userID),
		zap.Int("courses", len(courses)))
	return buf.Bytes(), nil
}

func (s *exportService) ExportICS(ctx context.Context, userID string, weekStart time.Time) ([]byte, error) {
	courses, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//campus-bot//schedule//ZH")

	now := time.Now()
	for _, c := range courses {
		start, err := time.ParseInLocation("15:04", c.StartTime, weekStart.Location())
		if err != nil {
			continue
		}
		end, err := time.ParseInLocation("15:04", c.EndTime, weekStart.Location())
		if err != nil {
			continue
		}
		day := weekStart.AddDate(0, 0, c.DayOfWeek-1)
		startAt := time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), 0, 0, weekStart.Location())
		endAt := time.Date(day.Year(), day.Month(), day.Day(), end.Hour(), end.Minute(), 0, 0, weekStart.Location())

		event := cal.AddEvent(fmt.Sprintf("%d-%s@campus-bot", c.ID, uuid.NewString()))
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetStartAt(startAt)
		event.SetEndAt(endAt)
		event.SetSummary(c.CourseName)
		if c.Location != nil && *c.Location != "" {
			event.SetLocation(*c.Location)
		}
		event.AddRrule("FREQ=WEEKLY")
	}

	s.logger.Info("课表已汇出 ics",
		zap.String("user_id", userID),
		zap.Int("courses", len(courses)))
	return []byte(cal.Serialize()), nil
}
