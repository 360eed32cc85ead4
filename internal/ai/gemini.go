package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/400Ping/campus-bot/internal/service"
)

// ErrEmptyResponse 模型没有给出任何文本
var ErrEmptyResponse = errors.New("empty model response")

// Gemini 封装 Google Gemini 的文本与视觉能力
type Gemini struct {
	client      *genai.Client
	model       string
	visionModel string
	logger      *zap.Logger
}

// NewGemini 创建 Gemini 客户端
func NewGemini(ctx context.Context, apiKey, model, visionModel string, logger *zap.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model, visionModel: visionModel, logger: logger}, nil
}

// Close 释放底层连接
func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) generate(ctx context.Context, modelName string, parts ...genai.Part) (string, error) {
	model := g.client.GenerativeModel(modelName)
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Summarize 为单则筆記产生两三句的繁体中文摘要
func (g *Gemini) Summarize(ctx context.Context, text string) (string, error) {
	prompt := "你是課堂筆記助理。請用繁體中文將以下筆記濃縮成兩到三句重點，" +
		"保留專有名詞與數字，不要加入筆記以外的內容：\n\n" + text
	return g.generate(ctx, g.model, genai.Text(prompt))
}

// Digest 汇整多则筆記为一段当日回顾
func (g *Gemini) Digest(ctx context.Context, notes []string) (string, error) {
	var b strings.Builder
	b.WriteString("你是課堂筆記助理。以下是使用者今天的多則筆記，" +
		"請用繁體中文整理成一段條列式的當日回顧，依主題歸納重點：\n")
	for i, n := range notes {
		fmt.Fprintf(&b, "\n[筆記 %d]\n%s\n", i+1, n)
	}
	return g.generate(ctx, g.model, genai.Text(b.String()))
}

// schedulePrompt 要求视觉模型输出固定结构的 JSON
const schedulePrompt = `這是一張課表照片。請辨識其中的課程並輸出 JSON 陣列，不要輸出任何其他文字。
每個元素格式如下：
{"course_name":"課名","day_of_week":1,"start_time":"09:10","end_time":"10:00","location":"教室（可省略）"}
day_of_week 以 1 代表週一、7 代表週日；時間一律用 24 小時制 HH:MM。
辨識不出的欄位請省略該課程。`

// ExtractSchedule 从课表照片辨识课程。多张图片会合并辨识。
func (g *Gemini) ExtractSchedule(ctx context.Context, images [][]byte) ([]service.ImportRecord, error) {
	parts := make([]genai.Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, genai.ImageData("jpeg", img))
	}
	parts = append(parts, genai.Text(schedulePrompt))

	text, err := g.generate(ctx, g.visionModel, parts...)
	if err != nil {
		return nil, err
	}

	raw := stripCodeFence(text)
	var records []service.ImportRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		g.logger.Warn("课表辨识结果解析失败", zap.String("raw", raw), zap.Error(err))
		return nil, fmt.Errorf("parse schedule json: %w", err)
	}
	return records, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// stripCodeFence 去掉模型习惯性包裹的 ```json 围栏
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
