package bot

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/internal/model"
	"github.com/400Ping/campus-bot/internal/service"
)

// ── LINE ──

type mockMessenger struct {
	replies []string
	pushes  []string
	content map[string][]byte
}

func newMockMessenger() *mockMessenger {
	return &mockMessenger{content: make(map[string][]byte)}
}

func (m *mockMessenger) ReplyText(_, text string) error {
	m.replies = append(m.replies, text)
	return nil
}

func (m *mockMessenger) PushText(_, text string) error {
	m.pushes = append(m.pushes, text)
	return nil
}

func (m *mockMessenger) GetMessageContent(messageID string) ([]byte, error) {
	data, ok := m.content[messageID]
	if !ok {
		return nil, errors.New("content not found")
	}
	return data, nil
}

// ── 业务服务 ──

type mockScheduleService struct {
	addFn     func(ctx context.Context, userID string, day int, start, end, name string, loc *string) (*model.Course, error)
	hasAny    bool
	importFn  func(ctx context.Context, userID string, records []service.ImportRecord) (*service.ImportResult, error)
	removeFn  func(ctx context.Context, userID string, index int) (string, error)
	numbered  []service.NumberedCourse
	dayCourse []model.Course
}

func (m *mockScheduleService) Add(ctx context.Context, userID string, day int, start, end, name string, loc *string) (*model.Course, error) {
	if m.addFn != nil {
		return m.addFn(ctx, userID, day, start, end, name, loc)
	}
	return &model.Course{UserID: userID, CourseName: name, DayOfWeek: day, StartTime: start, EndTime: end, Location: loc}, nil
}

func (m *mockScheduleService) ListDay(context.Context, string, int) ([]model.Course, error) {
	return m.dayCourse, nil
}

func (m *mockScheduleService) ListWeek(context.Context, string) ([]model.Course, error) {
	return m.dayCourse, nil
}

func (m *mockScheduleService) ListNumbered(context.Context, string) ([]service.NumberedCourse, error) {
	return m.numbered, nil
}

func (m *mockScheduleService) RemoveByIndex(ctx context.Context, userID string, index int) (string, error) {
	if m.removeFn != nil {
		return m.removeFn(ctx, userID, index)
	}
	return "", &service.IndexNotFoundError{Index: index}
}

func (m *mockScheduleService) ClearAll(context.Context, string) (int64, error) { return 0, nil }

func (m *mockScheduleService) ClearDay(context.Context, string, int) (int64, error) { return 0, nil }

func (m *mockScheduleService) HasAny(context.Context, string) (bool, error) { return m.hasAny, nil }

func (m *mockScheduleService) Upcoming(context.Context, string, time.Time, int) ([]service.UpcomingCourse, error) {
	return nil, nil
}

func (m *mockScheduleService) Import(ctx context.Context, userID string, records []service.ImportRecord) (*service.ImportResult, error) {
	if m.importFn != nil {
		return m.importFn(ctx, userID, records)
	}
	return &service.ImportResult{Added: len(records)}, nil
}

type mockNoteService struct {
	added []string
}

func (m *mockNoteService) Add(_ context.Context, _ string, content string, _ *string, _ time.Time) (*model.Note, error) {
	m.added = append(m.added, content)
	return &model.Note{Content: content}, nil
}

func (m *mockNoteService) ListRecent(context.Context, string, int) ([]model.Note, error) {
	return nil, nil
}

func (m *mockNoteService) Get(context.Context, string, int64) (*model.Note, error) {
	return nil, service.ErrNotFound
}

func (m *mockNoteService) Delete(context.Context, string, int64) error { return nil }

func (m *mockNoteService) RegenerateSummary(context.Context, string, int64) (*model.Note, error) {
	return nil, service.ErrNotFound
}

func (m *mockNoteService) ListToday(context.Context, string, time.Time) ([]model.Note, error) {
	return nil, nil
}

func (m *mockNoteService) ReviewToday(context.Context, string, time.Time) (string, error) {
	return "", nil
}

func (m *mockNoteService) BackfillSummaries(context.Context, int) (int, error) { return 0, nil }

type mockNewsService struct {
	keywords []string
	items    []service.NewsItem
	marked   []service.NewsItem
}

func (m *mockNewsService) AddKeyword(_ context.Context, _ string, keyword string) error {
	m.keywords = append(m.keywords, keyword)
	return nil
}

func (m *mockNewsService) RemoveKeyword(context.Context, string, string) (bool, error) {
	return false, nil
}

func (m *mockNewsService) ListKeywords(context.Context, string) ([]string, error) {
	return m.keywords, nil
}

func (m *mockNewsService) AddFeed(context.Context, string, string) error { return nil }

func (m *mockNewsService) RemoveFeed(context.Context, string, string) (bool, error) {
	return false, nil
}

func (m *mockNewsService) ListFeeds(context.Context, string) ([]string, bool, error) {
	return nil, true, nil
}

func (m *mockNewsService) FetchMatches(context.Context, string) ([]service.NewsItem, error) {
	return m.items, nil
}

func (m *mockNewsService) MarkSent(_ context.Context, item service.NewsItem) error {
	m.marked = append(m.marked, item)
	return nil
}

func (m *mockNewsService) ListSubscribers(context.Context) ([]string, error) { return nil, nil }

type mockSettingsService struct {
	user model.User
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{user: model.User{
		Locale:          "zh-TW",
		Timezone:        "Asia/Taipei",
		TargetLang:      "zh-Hant",
		NotificationsOn: true,
		ReminderWindow:  15,
	}}
}

func (m *mockSettingsService) Get(_ context.Context, userID string) (*model.User, error) {
	u := m.user
	u.UserID = userID
	return &u, nil
}

func (m *mockSettingsService) SetNotifications(_ context.Context, _ string, on bool) error {
	m.user.NotificationsOn = on
	return nil
}

func (m *mockSettingsService) SetReminderWindow(_ context.Context, _ string, minutes int) error {
	m.user.ReminderWindow = minutes
	return nil
}

func (m *mockSettingsService) SetTimezone(_ context.Context, _ string, tz string) error {
	m.user.Timezone = tz
	return nil
}

func (m *mockSettingsService) SetTranslate(_ context.Context, _ string, on bool) error {
	m.user.TranslateOn = on
	return nil
}

func (m *mockSettingsService) SetTargetLang(_ context.Context, _ string, lang string) error {
	m.user.TargetLang = lang
	return nil
}

func (m *mockSettingsService) Location(user *model.User) *time.Location {
	loc, err := time.LoadLocation(user.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return loc
}

type mockAuthService struct {
	linkCode string
}

func (m *mockAuthService) Register(context.Context, string, string, *string) (*model.Account, error) {
	return nil, nil
}

func (m *mockAuthService) Login(context.Context, string, string) (*service.TokenPair, *model.Account, error) {
	return nil, nil, nil
}

func (m *mockAuthService) Refresh(context.Context, string) (*service.TokenPair, error) {
	return nil, nil
}

func (m *mockAuthService) Logout(context.Context, string) error { return nil }

func (m *mockAuthService) GetAccount(context.Context, int64) (*model.Account, error) {
	return nil, service.ErrNotFound
}

func (m *mockAuthService) IssueLinkCode(context.Context, string) (string, time.Time, error) {
	code := m.linkCode
	if code == "" {
		code = "ABCD1234"
	}
	return code, time.Now().Add(15 * time.Minute), nil
}

func (m *mockAuthService) LinkAccount(context.Context, int64, string) error { return nil }

func (m *mockAuthService) ResolveBotUserID(*model.Account) string { return "" }

// ── AI ──

type mockOCR struct {
	records []service.ImportRecord
	err     error
	gotN    int
}

func (m *mockOCR) ExtractSchedule(_ context.Context, images [][]byte) ([]service.ImportRecord, error) {
	m.gotN = len(images)
	return m.records, m.err
}

type mockTranslator struct {
	out      string
	detected string
	err      error
}

func (m *mockTranslator) Translate(_ context.Context, _, _ string) (string, string, error) {
	return m.out, m.detected, m.err
}

type mockSpeech struct {
	text string
	lang string
	err  error
}

func (m *mockSpeech) Recognize(_ context.Context, _ []byte) (string, string, error) {
	return m.text, m.lang, m.err
}

// newTestRouter 组装带全套 mock 的路由
func newTestRouter(
	sched *mockScheduleService,
	ocr ScheduleOCR,
	translator TextTranslator,
	speech SpeechToText,
) (*Router, *mockMessenger) {
	messenger := newMockMessenger()
	svc := &service.Service{
		Schedule: sched,
		Note:     &mockNoteService{},
		News:     &mockNewsService{},
		Settings: newMockSettingsService(),
		Auth:     &mockAuthService{},
	}
	router := NewRouter(messenger, svc, ocr, translator, speech, zap.NewNop())
	return router, messenger
}
