package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/internal/dto"
	"github.com/400Ping/campus-bot/internal/service"
	"github.com/400Ping/campus-bot/pkg/response"
)

// ScheduleHandler 课表的 Web 端操作
type ScheduleHandler struct {
	schedule service.ScheduleService
	export   service.ExportService
	settings service.SettingsService
	auth     service.AuthService
	logger   *zap.Logger
}

// List GET /api/schedule
func (h *ScheduleHandler) List(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	numbered, err := h.schedule.ListNumbered(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("查询课表失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	items := make([]gin.H, len(numbered))
	for i, nc := range numbered {
		items[i] = gin.H{"index": nc.Index, "course": nc.Course}
	}
	response.OK(c, items)
}

// Create POST /api/schedule
func (h *ScheduleHandler) Create(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数不合法")
		return
	}
	course, err := h.schedule.Add(c.Request.Context(), userID,
		req.DayOfWeek, req.StartTime, req.EndTime, req.CourseName, req.Location)
	if err != nil {
		var conflict *service.ConflictError
		var badRange *service.InvalidTimeRangeError
		switch {
		case errors.As(err, &conflict):
			response.Conflict(c, 40903, fmt.Sprintf("时段与「%s」冲突", conflict.CourseName))
		case errors.As(err, &badRange):
			response.BadRequest(c, 40003, "结束时间必须晚于开始时间")
		case errors.Is(err, service.ErrInvalidInput):
			response.BadRequest(c, 40001, "请求参数不合法")
		default:
			h.logger.Error("新增课程失败", zap.Error(err))
			response.InternalError(c)
		}
		return
	}
	response.Created(c, course)
}

// Remove DELETE /api/schedule/:index
func (h *ScheduleHandler) Remove(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, 40001, "编号必须是整数")
		return
	}
	name, err := h.schedule.RemoveByIndex(c.Request.Context(), userID, index)
	if err != nil {
		var notFound *service.IndexNotFoundError
		if errors.As(err, &notFound) {
			response.NotFound(c, 40401, "课程不存在")
			return
		}
		h.logger.Error("删除课程失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"course_name": name})
}

// Clear DELETE /api/schedule，可带 ?day=N 只清单日
func (h *ScheduleHandler) Clear(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	var (
		removed int64
		err     error
	)
	if raw := c.Query("day"); raw != "" {
		day, parseErr := strconv.Atoi(raw)
		if parseErr != nil || day < 1 || day > 7 {
			response.BadRequest(c, 40001, "day 必须是 1-7 的整数")
			return
		}
		removed, err = h.schedule.ClearDay(c.Request.Context(), userID, day)
	} else {
		removed, err = h.schedule.ClearAll(c.Request.Context(), userID)
	}
	if err != nil {
		h.logger.Error("清空课表失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"removed": removed})
}

// ImportCSV POST /api/schedule/import，接收含表头的 CSV 文件
func (h *ScheduleHandler) ImportCSV(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 40001, "缺少上传文件 file")
		return
	}
	defer file.Close()

	records, err := parseScheduleCSV(file)
	if err != nil {
		response.BadRequest(c, 40004, "CSV 格式不正确")
		return
	}
	result, err := h.schedule.Import(c.Request.Context(), userID, records)
	if err != nil {
		h.logger.Error("批量导入课表失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// parseScheduleCSV 按表头取列，列顺序不限，未知列忽略
func parseScheduleCSV(r io.Reader) ([]service.ImportRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []service.ImportRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rec := service.ImportRecord{
			CourseName: field(row, "course_name"),
			StartTime:  field(row, "start_time"),
			EndTime:    field(row, "end_time"),
		}
		if day := field(row, "day_of_week"); day != "" {
			rec.DayOfWeek, _ = strconv.Atoi(day)
		}
		if loc := field(row, "location"); loc != "" {
			rec.Location = &loc
		}
		records = append(records, rec)
	}
	return records, nil
}

// ExportXLSX GET /api/schedule/export/xlsx
func (h *ScheduleHandler) ExportXLSX(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	data, err := h.export.ExportXLSX(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("汇出 xlsx 失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="schedule.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ExportICS GET /api/schedule/export/ics
func (h *ScheduleHandler) ExportICS(c *gin.Context) {
	userID, ok := botUserID(c, h.auth)
	if !ok {
		return
	}
	user, err := h.settings.Get(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("查询用户设定失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	loc := h.settings.Location(user)
	now := time.Now().In(loc)
	day := int(now.Weekday())
	if day == 0 {
		day = 7
	}
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).
		AddDate(0, 0, -(day - 1))

	data, err := h.export.ExportICS(c.Request.Context(), userID, monday)
	if err != nil {
		h.logger.Error("汇出 ics 失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="schedule.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}
