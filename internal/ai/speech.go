package ai

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
)

// SpeechRecognizer 调用 Google Cloud Speech-to-Text 做语音辨识
type SpeechRecognizer struct {
	client         *speech.Client
	candidateLangs []string
	logger         *zap.Logger
}

// NewSpeechRecognizer 创建语音辨识客户端。
// candidateLangs 第一个为首选语言，其余作为候选自动侦测。
func NewSpeechRecognizer(ctx context.Context, candidateLangs []string, logger *zap.Logger) (*SpeechRecognizer, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	if len(candidateLangs) == 0 {
		candidateLangs = []string{"zh-TW"}
	}
	return &SpeechRecognizer{client: client, candidateLangs: candidateLangs, logger: logger}, nil
}

// Close 释放底层连接
func (r *SpeechRecognizer) Close() error {
	return r.client.Close()
}

// Recognize 辨识一段语音，返回文字与侦测到的语言
func (r *SpeechRecognizer) Recognize(ctx context.Context, audio []byte) (transcript, lang string, err error) {
	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			// LINE 语音为 AAC 容器，让服务端自行侦测编码与采样率
			Encoding:                   speechpb.RecognitionConfig_ENCODING_UNSPECIFIED,
			LanguageCode:               r.candidateLangs[0],
			AlternativeLanguageCodes:   r.candidateLangs[1:],
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}
	resp, err := r.client.Recognize(ctx, req)
	if err != nil {
		return "", "", fmt.Errorf("recognize: %w", err)
	}

	var text string
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		text += result.Alternatives[0].Transcript
		if lang == "" {
			lang = result.LanguageCode
		}
	}
	if text == "" {
		return "", "", ErrEmptyResponse
	}
	r.logger.Debug("语音辨识完成", zap.String("lang", lang), zap.Int("chars", len(text)))
	return text, lang, nil
}
