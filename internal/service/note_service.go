package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/internal/model"
	"github.com/400Ping/campus-bot/internal/repository"
)

// Summarizer 产生单则摘要与整日回顾
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
	Digest(ctx context.Context, notes []string) (string, error)
}

// NoteService 筆記业务
type NoteService interface {
	// Add 新增筆記并尽力产生摘要；摘要失败不阻塞写入
	Add(ctx context.Context, userID, content string, courseName *string, ts time.Time) (*model.Note, error)
	ListRecent(ctx context.Context, userID string, n int) ([]model.Note, error)
	// Get 取单条筆記，不存在返回 ErrNotFound
	Get(ctx context.Context, userID string, id int64) (*model.Note, error)
	// Delete 删除单条筆記，不存在返回 ErrNotFound
	Delete(ctx context.Context, userID string, id int64) error
	// RegenerateSummary 重新产生指定筆記的摘要并保存
	RegenerateSummary(ctx context.Context, userID string, id int64) (*model.Note, error)
	// ListToday 取 now 所在自然日（依 now 的时区）的筆記
	ListToday(ctx context.Context, userID string, now time.Time) ([]model.Note, error)
	// ReviewToday 汇整今日筆記为一段回顾；无筆記时返回空字符串
	ReviewToday(ctx context.Context, userID string, now time.Time) (string, error)
	// BackfillSummaries 为缺摘要的旧筆記补齐，返回成功补齐的条数
	BackfillSummaries(ctx context.Context, limit int) (int, error)
}

const (
	defaultNoteListSize = 5
	maxNoteListSize     = 50
)

type noteService struct {
	repo       repository.NoteRepository
	summarizer Summarizer
	logger     *zap.Logger
}

// NewNoteService 创建筆記服务。summarizer 可为 nil，此时不产生摘要。
func NewNoteService(repo repository.NoteRepository, summarizer Summarizer, logger *zap.Logger) NoteService {
	return &noteService{repo: repo, summarizer: summarizer, logger: logger}
}

func (s *noteService) Add(ctx context.Context, userID, content string, courseName *string, ts time.Time) (*model.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty note", ErrInvalidInput)
	}
	note := &model.Note{
		UserID:     userID,
		CourseName: courseName,
		TS:         ts,
		Content:    content,
	}
	if s.summarizer != nil {
		summary, err := s.summarizer.Summarize(ctx, content)
		if err != nil {
			s.logger.Warn("筆記摘要生成失败", zap.String("user_id", userID), zap.Error(err))
		} else if summary != "" {
			note.Summary = &summary
		}
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

func (s *noteService) ListRecent(ctx context.Context, userID string, n int) ([]model.Note, error) {
	if n <= 0 {
		n = defaultNoteListSize
	}
	if n > maxNoteListSize {
		n = maxNoteListSize
	}
	return s.repo.ListRecent(ctx, userID, n)
}

func (s *noteService) Get(ctx context.Context, userID string, id int64) (*model.Note, error) {
	note, err := s.repo.GetByID(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return note, err
}

func (s *noteService) Delete(ctx context.Context, userID string, id int64) error {
	err := s.repo.DeleteByID(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *noteService) RegenerateSummary(ctx context.Context, userID string, id int64) (*model.Note, error) {
	note, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if s.summarizer == nil {
		return note, nil
	}
	summary, err := s.summarizer.Summarize(ctx, note.Content)
	if err != nil {
		return nil, fmt.Errorf("regenerate summary: %w", err)
	}
	if summary == "" {
		return note, nil
	}
	if err := s.repo.UpdateSummary(ctx, note.ID, summary); err != nil {
		return nil, fmt.Errorf("save summary: %w", err)
	}
	note.Summary = &summary
	return note, nil
}

func (s *noteService) ListToday(ctx context.Context, userID string, now time.Time) ([]model.Note, error) {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.repo.ListByRange(ctx, userID, from, from.Add(24*time.Hour))
}

func (s *noteService) ReviewToday(ctx context.Context, userID string, now time.Time) (string, error) {
	notes, err := s.ListToday(ctx, userID, now)
	if err != nil {
		return "", err
	}
	if len(notes) == 0 {
		return "", nil
	}
	texts := make([]string, 0, len(notes))
	for _, n := range notes {
		texts = append(texts, n.Content)
	}
	if s.summarizer != nil {
		digest, err := s.summarizer.Digest(ctx, texts)
		if err == nil && digest != "" {
			return digest, nil
		}
		if err != nil {
			s.logger.Warn("回顾生成失败，退回逐条摘要", zap.String("user_id", userID), zap.Error(err))
		}
	}
	// AI 不可用时退回既有摘要或原文首行
	var b strings.Builder
	for i, n := range notes {
		line := n.Content
		if n.Summary != nil && *n.Summary != "" {
			line = *n.Summary
		}
		if idx := strings.IndexByte(line, '\n'); idx >= 0 {
			line = line[:idx]
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, line)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (s *noteService) BackfillSummaries(ctx context.Context, limit int) (int, error) {
	if s.summarizer == nil {
		return 0, nil
	}
	notes, err := s.repo.ListMissingSummary(ctx, limit)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, n := range notes {
		summary, err := s.summarizer.Summarize(ctx, n.Content)
		if err != nil || summary == "" {
			continue
		}
		if err := s.repo.UpdateSummary(ctx, n.ID, summary); err != nil {
			s.logger.Warn("摘要回填失败", zap.Int64("note_id", n.ID), zap.Error(err))
			continue
		}
		done++
	}
	return done, nil
}
