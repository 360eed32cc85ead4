package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Translator 调用 Azure Translator REST API（v3.0）
type Translator struct {
	endpoint string
	key      string
	region   string
	client   *http.Client
	logger   *zap.Logger
}

// NewTranslator 创建翻译客户端
func NewTranslator(endpoint, key, region string, logger *zap.Logger) *Translator {
	return &Translator{
		endpoint: endpoint,
		key:      key,
		region:   region,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

type translateResult struct {
	DetectedLanguage struct {
		Language string  `json:"language"`
		Score    float64 `json:"score"`
	} `json:"detectedLanguage"`
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// Translate 将 text 翻译为 to 指定的语言，返回译文与侦测到的源语言
func (t *Translator) Translate(ctx context.Context, text, to string) (translated, detected string, err error) {
	endpoint := fmt.Sprintf("%s/translate?api-version=3.0&to=%s", t.endpoint, url.QueryEscape(to))

	body, err := json.Marshal([]map[string]string{{"Text": text}})
	if err != nil {
		return "", "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", t.key)
	req.Header.Set("Ocp-Apim-Subscription-Region", t.region)
	req.Header.Set("X-ClientTraceId", uuid.NewString())

	resp, err := t.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("call translator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		t.logger.Warn("翻译服务返回错误",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", data))
		return "", "", fmt.Errorf("translator status %d", resp.StatusCode)
	}

	var results []translateResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", "", fmt.Errorf("decode translator response: %w", err)
	}
	if len(results) == 0 || len(results[0].Translations) == 0 {
		return "", "", ErrEmptyResponse
	}
	return results[0].Translations[0].Text, results[0].DetectedLanguage.Language, nil
}
