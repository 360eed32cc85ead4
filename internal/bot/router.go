package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/internal/service"
)

// maxReplyRunes 单则回复的长度上限，超出截断
const maxReplyRunes = 4000

// Messenger 收发 LINE 讯息所需的最小能力
type Messenger interface {
	ReplyText(replyToken, text string) error
	PushText(userID, text string) error
	GetMessageContent(messageID string) ([]byte, error)
}

// ScheduleOCR 从课表照片辨识课程
type ScheduleOCR interface {
	ExtractSchedule(ctx context.Context, images [][]byte) ([]service.ImportRecord, error)
}

// TextTranslator 即时翻译
type TextTranslator interface {
	Translate(ctx context.Context, text, to string) (translated, detected string, err error)
}

// SpeechToText 语音转文字
type SpeechToText interface {
	Recognize(ctx context.Context, audio []byte) (transcript, lang string, err error)
}

// Router 解析 LINE 事件并分派到各业务服务
type Router struct {
	messenger  Messenger
	schedule   service.ScheduleService
	notes      service.NoteService
	news       service.NewsService
	settings   service.SettingsService
	auth       service.AuthService
	ocr        ScheduleOCR    // 可为 nil
	translator TextTranslator // 可为 nil
	speech     SpeechToText   // 可为 nil
	sessions   *SessionStore
	logger     *zap.Logger
}

// NewRouter 创建指令路由
func NewRouter(
	messenger Messenger,
	svc *service.Service,
	ocr ScheduleOCR,
	translator TextTranslator,
	speech SpeechToText,
	logger *zap.Logger,
) *Router {
	return &Router{
		messenger:  messenger,
		schedule:   svc.Schedule,
		notes:      svc.Note,
		news:       svc.News,
		settings:   svc.Settings,
		auth:       svc.Auth,
		ocr:        ocr,
		translator: translator,
		speech:     speech,
		sessions:   NewSessionStore(),
		logger:     logger,
	}
}

// HandleEvents 处理一批 webhook 事件
func (r *Router) HandleEvents(ctx context.Context, events []*linebot.Event) {
	for _, event := range events {
		if event.Type != linebot.EventTypeMessage || event.Source == nil || event.Source.UserID == "" {
			continue
		}
		userID := event.Source.UserID

		var reply string
		var err error
		switch msg := event.Message.(type) {
		case *linebot.TextMessage:
			reply, err = r.handleText(ctx, userID, msg.Text)
		case *linebot.AudioMessage:
			reply, err = r.handleAudio(ctx, userID, msg.ID)
		case *linebot.ImageMessage:
			reply, err = r.handleImage(ctx, userID, msg.ID)
		default:
			continue
		}
		if err != nil {
			r.logger.Error("讯息处理失败", zap.String("user_id", userID), zap.Error(err))
			reply = "系統忙碌中，請稍後再試。"
		}
		if reply == "" {
			continue
		}
		if err := r.messenger.ReplyText(event.ReplyToken, truncateReply(reply)); err != nil {
			r.logger.Error("回覆发送失败", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

// uploadDoneWords 结束图片上传的关键词，小写比对
var uploadDoneWords = map[string]bool{
	"完成": true, "done": true, "ok": true, "沒有": true,
	"沒有了": true, "結束": true, "no": true,
}

func (r *Router) handleText(ctx context.Context, userID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	// 上传流程接管所有文字，结束关键词以外只回报进度
	if sess := r.sessions.Get(userID); sess != nil && sess.State == StateAwaitScheduleImage {
		if uploadDoneWords[strings.ToLower(text)] {
			return r.finishScheduleUpload(ctx, userID, sess)
		}
		return fmt.Sprintf("已收到 %d 張圖片。全部上傳後輸入「完成」開始匯入。", len(sess.Images)), nil
	}

	if rest, ok := cutTranslateShortcut(text); ok {
		return r.translateNow(ctx, userID, rest)
	}
	if strings.HasPrefix(text, "/") {
		return r.dispatch(ctx, userID, text)
	}
	return msgUnknownCommand, nil
}

func (r *Router) handleAudio(ctx context.Context, userID, messageID string) (string, error) {
	user, err := r.settings.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if !user.TranslateOn {
		return "語音翻譯未開啟。請輸入 /translate on", nil
	}
	if r.speech == nil {
		return "語音辨識功能未啟用。", nil
	}
	audio, err := r.messenger.GetMessageContent(messageID)
	if err != nil {
		return "", fmt.Errorf("download audio: %w", err)
	}
	transcript, lang, err := r.speech.Recognize(ctx, audio)
	if err != nil {
		r.logger.Warn("语音辨识失败", zap.String("user_id", userID), zap.Error(err))
		return "這段語音我聽不太清楚，請再試一次。", nil
	}

	reply := fmt.Sprintf("🎤 辨識結果（%s）：\n%s", lang, transcript)
	if r.translator != nil {
		translated, _, err := r.translator.Translate(ctx, transcript, user.TargetLang)
		if err != nil {
			r.logger.Warn("语音翻译失败", zap.String("user_id", userID), zap.Error(err))
		} else {
			reply += "\n\n🌍 翻譯：\n" + translated
		}
	}
	return reply, nil
}

func (r *Router) handleImage(ctx context.Context, userID, messageID string) (string, error) {
	sess := r.sessions.Get(userID)
	if sess == nil || sess.State != StateAwaitScheduleImage {
		return "如要以照片匯入課表，請先輸入 /schedule upload image。", nil
	}
	// 收到时就下载内容，失败立即让用户重传
	data, err := r.messenger.GetMessageContent(messageID)
	if err != nil {
		r.logger.Warn("图片下载失败", zap.String("message_id", messageID), zap.Error(err))
		return "圖片接收失敗，請重試。", nil
	}
	// 流程中的图片静默收下，避免连发多图时刷屏
	r.sessions.AppendImage(userID, data)
	return "", nil
}

func (r *Router) finishScheduleUpload(ctx context.Context, userID string, sess *Session) (string, error) {
	// 一张都没收到时流程继续，等用户补传
	if len(sess.Images) == 0 {
		return "您還沒有上傳任何圖片！請傳送圖片。", nil
	}
	r.sessions.Clear(userID)
	if r.ocr == nil {
		return "圖片辨識功能未啟用。", nil
	}

	records, err := r.ocr.ExtractSchedule(ctx, sess.Images)
	if err != nil {
		r.logger.Warn("课表辨识失败", zap.String("user_id", userID), zap.Error(err))
		return "課表辨識失敗，請換一張更清晰的照片試試。", nil
	}
	if len(records) == 0 {
		return "照片中沒有辨識出任何課程。", nil
	}

	result, err := r.schedule.Import(ctx, userID, records)
	if err != nil {
		return "", err
	}
	reply := fmt.Sprintf("匯入完成：新增 %d 門課程。", result.Added)
	if len(result.Errors) > 0 {
		reply += "\n部分課程未能匯入：\n- " + strings.Join(result.Errors, "\n- ")
	}
	return reply, nil
}

func (r *Router) translateNow(ctx context.Context, userID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "用法：/t <要翻譯的文字>", nil
	}
	if r.translator == nil {
		return "翻譯功能未啟用。", nil
	}
	user, err := r.settings.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	translated, detected, err := r.translator.Translate(ctx, text, user.TargetLang)
	if err != nil {
		r.logger.Warn("翻译失败", zap.String("user_id", userID), zap.Error(err))
		return "翻譯服務暫時無法使用，請稍後再試。", nil
	}
	if detected != "" {
		return fmt.Sprintf("🌍 （%s → %s）\n%s", detected, user.TargetLang, translated), nil
	}
	return "🌍 " + translated, nil
}

// cutTranslateShortcut 剥掉 "t:"/"t：" 快捷翻译前缀
func cutTranslateShortcut(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, prefix := range []string{"t:", "t："} {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(text[len(prefix):]), true
		}
	}
	return "", false
}

func truncateReply(s string) string {
	runes := []rune(s)
	if len(runes) <= maxReplyRunes {
		return s
	}
	return string(runes[:maxReplyRunes-1]) + "…"
}
