package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/400Ping/campus-bot/internal/model"
	"github.com/400Ping/campus-bot/internal/repository"
)

// ── 课表 ──

type mockCourseRepo struct {
	courses []model.Course
	nextID  int64
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{nextID: 1}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	course.ID = m.nextID
	m.nextID++
	m.courses = append(m.courses, *course)
	return nil
}

func (m *mockCourseRepo) ListByUser(_ context.Context, userID string) ([]model.Course, error) {
	out := m.filter(userID, -1)
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *mockCourseRepo) ListByUserDay(_ context.Context, userID string, day int) ([]model.Course, error) {
	out := m.filter(userID, day)
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *mockCourseRepo) ListByUserOrderByID(_ context.Context, userID string) ([]model.Course, error) {
	out := m.filter(userID, -1)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCourseRepo) FindOverlapping(_ context.Context, userID string, day int, start, end string) ([]model.Course, error) {
	var out []model.Course
	for _, c := range m.courses {
		if c.UserID == userID && c.DayOfWeek == day && c.StartTime < end && c.EndTime > start {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, userID string, id int64) (*model.Course, error) {
	for _, c := range m.courses {
		if c.UserID == userID && c.ID == id {
			copied := c
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockCourseRepo) DeleteByID(_ context.Context, userID string, id int64) error {
	for i, c := range m.courses {
		if c.UserID == userID && c.ID == id {
			m.courses = append(m.courses[:i], m.courses[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockCourseRepo) DeleteAllByUser(_ context.Context, userID string) (int64, error) {
	return m.deleteWhere(func(c model.Course) bool { return c.UserID == userID }), nil
}

func (m *mockCourseRepo) DeleteByUserDay(_ context.Context, userID string, day int) (int64, error) {
	return m.deleteWhere(func(c model.Course) bool { return c.UserID == userID && c.DayOfWeek == day }), nil
}

func (m *mockCourseRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	return int64(len(m.filter(userID, -1))), nil
}

func (m *mockCourseRepo) filter(userID string, day int) []model.Course {
	var out []model.Course
	for _, c := range m.courses {
		if c.UserID == userID && (day < 0 || c.DayOfWeek == day) {
			out = append(out, c)
		}
	}
	return out
}

func (m *mockCourseRepo) deleteWhere(pred func(model.Course) bool) int64 {
	var kept []model.Course
	var n int64
	for _, c := range m.courses {
		if pred(c) {
			n++
			continue
		}
		kept = append(kept, c)
	}
	m.courses = kept
	return n
}

// ── 用户设定 ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) GetOrCreate(_ context.Context, userID string) (*model.User, error) {
	if u, ok := m.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	u := &model.User{
		UserID:          userID,
		Locale:          "zh-TW",
		Timezone:        "Asia/Taipei",
		TargetLang:      "zh-Hant",
		NotificationsOn: true,
		ReminderWindow:  15,
	}
	m.users[userID] = u
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) Get(_ context.Context, userID string) (*model.User, error) {
	if u, ok := m.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) Save(_ context.Context, user *model.User) error {
	copied := *user
	m.users[user.UserID] = &copied
	return nil
}

func (m *mockUserRepo) ListReminderEnabled(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		if u.NotificationsOn {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) MigrateUserID(_ context.Context, oldID, newID string) error {
	if u, ok := m.users[oldID]; ok {
		delete(m.users, oldID)
		if _, exists := m.users[newID]; !exists {
			u.UserID = newID
			m.users[newID] = u
		}
	}
	return nil
}

// ── 筆記 ──

type mockNoteRepo struct {
	notes  []model.Note
	nextID int64
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{nextID: 1}
}

func (m *mockNoteRepo) Create(_ context.Context, note *model.Note) error {
	note.ID = m.nextID
	m.nextID++
	m.notes = append(m.notes, *note)
	return nil
}

func (m *mockNoteRepo) ListRecent(_ context.Context, userID string, n int) ([]model.Note, error) {
	var out []model.Note
	for _, note := range m.notes {
		if note.UserID == userID {
			out = append(out, note)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TS.After(out[j].TS) })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (m *mockNoteRepo) ListByRange(_ context.Context, userID string, from, to time.Time) ([]model.Note, error) {
	var out []model.Note
	for _, note := range m.notes {
		if note.UserID == userID && !note.TS.Before(from) && note.TS.Before(to) {
			out = append(out, note)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TS.Before(out[j].TS) })
	return out, nil
}

func (m *mockNoteRepo) GetByID(_ context.Context, userID string, id int64) (*model.Note, error) {
	for _, note := range m.notes {
		if note.UserID == userID && note.ID == id {
			copied := note
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockNoteRepo) DeleteByID(_ context.Context, userID string, id int64) error {
	for i, note := range m.notes {
		if note.UserID == userID && note.ID == id {
			m.notes = append(m.notes[:i], m.notes[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockNoteRepo) UpdateSummary(_ context.Context, id int64, summary string) error {
	for i := range m.notes {
		if m.notes[i].ID == id {
			m.notes[i].Summary = &summary
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockNoteRepo) ListMissingSummary(_ context.Context, limit int) ([]model.Note, error) {
	var out []model.Note
	for _, note := range m.notes {
		if note.Summary == nil || *note.Summary == "" {
			out = append(out, note)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ── 订阅 ──

type mockSubscriptionRepo struct {
	keywords map[string][]string
	feeds    map[string][]string
	sent     map[string]bool
}

func newMockSubscriptionRepo() *mockSubscriptionRepo {
	return &mockSubscriptionRepo{
		keywords: make(map[string][]string),
		feeds:    make(map[string][]string),
		sent:     make(map[string]bool),
	}
}

func (m *mockSubscriptionRepo) AddKeyword(_ context.Context, userID, keyword string) error {
	for _, k := range m.keywords[userID] {
		if k == keyword {
			return nil
		}
	}
	m.keywords[userID] = append(m.keywords[userID], keyword)
	return nil
}

func (m *mockSubscriptionRepo) RemoveKeyword(_ context.Context, userID, keyword string) (bool, error) {
	list := m.keywords[userID]
	for i, k := range list {
		if k == keyword {
			m.keywords[userID] = append(list[:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSubscriptionRepo) ListKeywords(_ context.Context, userID string) ([]string, error) {
	return append([]string(nil), m.keywords[userID]...), nil
}

func (m *mockSubscriptionRepo) AddFeed(_ context.Context, userID, url string) error {
	for _, f := range m.feeds[userID] {
		if f == url {
			return nil
		}
	}
	m.feeds[userID] = append(m.feeds[userID], url)
	return nil
}

func (m *mockSubscriptionRepo) RemoveFeed(_ context.Context, userID, url string) (bool, error) {
	list := m.feeds[userID]
	for i, f := range list {
		if f == url {
			m.feeds[userID] = append(list[:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSubscriptionRepo) ListFeeds(_ context.Context, userID string) ([]string, error) {
	return append([]string(nil), m.feeds[userID]...), nil
}

func (m *mockSubscriptionRepo) ListSubscribers(_ context.Context) ([]string, error) {
	var out []string
	for userID, list := range m.keywords {
		if len(list) > 0 {
			out = append(out, userID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *mockSubscriptionRepo) IsSent(_ context.Context, url string) (bool, error) {
	return m.sent[url], nil
}

func (m *mockSubscriptionRepo) MarkSent(_ context.Context, url, _ string) error {
	m.sent[url] = true
	return nil
}

// ── 帳號 ──

type mockAccountRepo struct {
	accounts  map[int64]*model.Account
	linkCodes map[string]*model.LinkCode
	nextID    int64
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{
		accounts:  make(map[int64]*model.Account),
		linkCodes: make(map[string]*model.LinkCode),
		nextID:    1,
	}
}

func (m *mockAccountRepo) Create(_ context.Context, account *model.Account) error {
	account.ID = m.nextID
	m.nextID++
	copied := *account
	m.accounts[account.ID] = &copied
	return nil
}

func (m *mockAccountRepo) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockAccountRepo) GetByID(_ context.Context, id int64) (*model.Account, error) {
	if a, ok := m.accounts[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockAccountRepo) UpdateLineUserID(_ context.Context, id int64, lineUserID string) error {
	a, ok := m.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.LineUserID = &lineUserID
	return nil
}

func (m *mockAccountRepo) SaveLinkCode(_ context.Context, code *model.LinkCode) error {
	copied := *code
	m.linkCodes[code.Code] = &copied
	return nil
}

func (m *mockAccountRepo) ConsumeLinkCode(_ context.Context, code string, now time.Time) (*model.LinkCode, error) {
	lc, ok := m.linkCodes[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(m.linkCodes, code)
	if now.After(lc.ExpiresAt) {
		return nil, repository.ErrNotFound
	}
	return lc, nil
}

func (m *mockAccountRepo) DeleteExpiredLinkCodes(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for code, lc := range m.linkCodes {
		if lc.ExpiresAt.Before(now) {
			delete(m.linkCodes, code)
			n++
		}
	}
	return n, nil
}
