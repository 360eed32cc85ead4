package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/internal/model"
	"github.com/400Ping/campus-bot/internal/service"
)

const msgUnknownCommand = "指令未知。輸入 /help 取得說明。"

var weekdayNames = [...]string{"", "週一", "週二", "週三", "週四", "週五", "週六", "週日"}

func (r *Router) dispatch(ctx context.Context, userID, text string) (string, error) {
	fields := strings.Fields(text)
	// 指令词区分大小写，只有子指令做小写比对
	cmd := fields[0]
	args := fields[1:]
	// 保留原始空白的剩余部分，筆記内容等场景需要
	raw := strings.TrimSpace(text[len(fields[0]):])

	switch cmd {
	case "/help":
		topic := ""
		if len(args) > 0 {
			topic = args[0]
		}
		return helpFor(topic), nil
	case "/link":
		return r.cmdLink(ctx, userID)
	case "/t":
		return r.translateNow(ctx, userID, raw)
	case "/translate":
		return r.cmdTranslate(ctx, userID, args)
	case "/settings":
		return r.cmdSettings(ctx, userID, args)
	case "/schedule":
		return r.cmdSchedule(ctx, userID, args)
	case "/note":
		return r.cmdNote(ctx, userID, args, raw)
	case "/review":
		return r.cmdReview(ctx, userID, args)
	case "/news":
		return r.cmdNews(ctx, userID, args)
	default:
		return msgUnknownCommand, nil
	}
}

// ── 課表 ──

const usageScheduleAdd = "用法：\n/schedule add <週1-7> <節次或時間> <課名> [@地點]\n例：/schedule add 3 2-4 資料結構 @ R102\n（節次支援：1~13、2-4 或 09:00-12:00）"

func (r *Router) cmdSchedule(ctx context.Context, userID string, args []string) (string, error) {
	user, err := r.settings.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	now := time.Now().In(r.settings.Location(user))

	// 不带参数等同查今天
	if len(args) == 0 {
		return r.scheduleDayReply(ctx, userID, weekdayOf(now), "今天")
	}

	switch strings.ToLower(args[0]) {
	case "today":
		return r.scheduleDayReply(ctx, userID, weekdayOf(now), "今天")
	case "tomorrow":
		return r.scheduleDayReply(ctx, userID, weekdayOf(now.AddDate(0, 0, 1)), "明天")
	case "week":
		return r.scheduleWeekReply(ctx, userID, now)
	case "list":
		return r.scheduleListReply(ctx, userID)
	case "add":
		return r.scheduleAddReply(ctx, userID, args[1:])
	case "remove":
		return r.scheduleRemoveReply(ctx, userID, args[1:])
	case "clear":
		return r.scheduleClearReply(ctx, userID, args[1:])
	case "upload":
		if len(args) >= 2 && strings.ToLower(args[1]) == "image" {
			return r.scheduleUploadReply(ctx, userID)
		}
		return helpSchedule, nil
	default:
		// 其他任意词视为查整週
		return r.scheduleWeekReply(ctx, userID, now)
	}
}

func weekdayOf(t time.Time) int {
	d := int(t.Weekday())
	if d == 0 {
		return 7
	}
	return d
}

func formatCourseLine(c model.Course) string {
	line := fmt.Sprintf("%s-%s %s", c.StartTime, c.EndTime, c.CourseName)
	if c.Location != nil && *c.Location != "" {
		line += " @ " + *c.Location
	}
	return line
}

func (r *Router) scheduleDayReply(ctx context.Context, userID string, day int, label string) (string, error) {
	courses, err := r.schedule.ListDay(ctx, userID, day)
	if err != nil {
		return "", err
	}
	if len(courses) == 0 {
		return fmt.Sprintf("%s（%s）沒有課 🎉", label, weekdayNames[day]), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s（%s）的課：\n", label, weekdayNames[day])
	for _, c := range courses {
		b.WriteString(formatCourseLine(c) + "\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (r *Router) scheduleWeekReply(ctx context.Context, userID string, now time.Time) (string, error) {
	courses, err := r.schedule.ListWeek(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(courses) == 0 {
		return "本週沒有任何課程。用 /schedule add 新增課程吧。", nil
	}

	byDay := make(map[int][]model.Course)
	for _, c := range courses {
		byDay[c.DayOfWeek] = append(byDay[c.DayOfWeek], c)
	}
	// 以本週一为锚，给每天标注日期
	monday := now.AddDate(0, 0, -(weekdayOf(now) - 1))

	var b strings.Builder
	b.WriteString("📅 本週課表\n")
	for day := 1; day <= 7; day++ {
		dayCourses, ok := byDay[day]
		if !ok {
			continue
		}
		date := monday.AddDate(0, 0, day-1)
		fmt.Fprintf(&b, "\n%s %s\n", weekdayNames[day], date.Format("01/02"))
		for _, c := range dayCourses {
			b.WriteString("  " + formatCourseLine(c) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (r *Router) scheduleListReply(ctx context.Context, userID string) (string, error) {
	numbered, err := r.schedule.ListNumbered(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(numbered) == 0 {
		return "課表是空的，用 /schedule add 新增課程吧。", nil
	}
	var b strings.Builder
	b.WriteString("📋 全部課程：\n")
	for _, nc := range numbered {
		fmt.Fprintf(&b, "%d. %s %s\n", nc.Index, weekdayNames[nc.Course.DayOfWeek], formatCourseLine(nc.Course))
	}
	b.WriteString("\n刪除請用 /schedule remove <編號>")
	return b.String(), nil
}

func (r *Router) scheduleAddReply(ctx context.Context, userID string, args []string) (string, error) {
	if len(args) < 3 {
		return usageScheduleAdd, nil
	}
	day, err := strconv.Atoi(args[0])
	if err != nil || day < 1 || day > 7 {
		return usageScheduleAdd, nil
	}
	start, end, ok := resolveTimeSpec(args[1])
	if !ok {
		return usageScheduleAdd, nil
	}

	rest := strings.Join(args[2:], " ")
	name, locPart, _ := strings.Cut(rest, "@")
	name = strings.TrimSpace(name)
	if name == "" {
		return usageScheduleAdd, nil
	}
	var location *string
	if loc := strings.TrimSpace(locPart); loc != "" {
		location = &loc
	}

	course, err := r.schedule.Add(ctx, userID, day, start, end, name, location)
	if err != nil {
		var conflict *service.ConflictError
		var badRange *service.InvalidTimeRangeError
		switch {
		case errors.As(err, &conflict):
			return fmt.Sprintf("時段衝突：與「%s」重疊，請先調整既有課程。", conflict.CourseName), nil
		case errors.As(err, &badRange):
			return fmt.Sprintf("結束時間 (%s) 必須晚於開始時間 (%s)。", badRange.End, badRange.Start), nil
		case errors.Is(err, service.ErrInvalidInput):
			return usageScheduleAdd, nil
		}
		return "", err
	}
	return fmt.Sprintf("✅ 已新增課程：%s（%s %s-%s）", course.CourseName, weekdayNames[day], course.StartTime, course.EndTime), nil
}

func (r *Router) scheduleRemoveReply(ctx context.Context, userID string, args []string) (string, error) {
	const usage = "用法：/schedule remove <編號>（編號請看 /schedule list）"
	if len(args) != 1 {
		return usage, nil
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return usage, nil
	}
	name, err := r.schedule.RemoveByIndex(ctx, userID, index)
	if err != nil {
		var notFound *service.IndexNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Sprintf("找不到編號 %d 的課程。", notFound.Index), nil
		}
		return "", err
	}
	return fmt.Sprintf("🗑 已刪除課程「%s」。", name), nil
}

func (r *Router) scheduleClearReply(ctx context.Context, userID string, args []string) (string, error) {
	const usage = "用法：/schedule clear all 或 /schedule clear day <週1-7>"
	if len(args) == 0 {
		return usage, nil
	}
	switch strings.ToLower(args[0]) {
	case "all":
		n, err := r.schedule.ClearAll(ctx, userID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("已清空課表（共刪除 %d 門課程）。", n), nil
	case "day":
		if len(args) != 2 {
			return usage, nil
		}
		day, err := strconv.Atoi(args[1])
		if err != nil || day < 1 || day > 7 {
			return usage, nil
		}
		n, err := r.schedule.ClearDay(ctx, userID, day)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("已清空%s的課程（共 %d 門）。", weekdayNames[day], n), nil
	default:
		return usage, nil
	}
}

func (r *Router) scheduleUploadReply(ctx context.Context, userID string) (string, error) {
	hasAny, err := r.schedule.HasAny(ctx, userID)
	if err != nil {
		return "", err
	}
	if hasAny {
		return "課表已有課程。請先用 /schedule clear all 清空後再上傳，避免重複匯入。", nil
	}
	r.sessions.Begin(userID, StateAwaitScheduleImage)
	return "請上傳課表照片（可多張）。全部上傳後輸入「完成」開始匯入。", nil
}

// ── 筆記与回顧 ──

func (r *Router) cmdNote(ctx context.Context, userID string, args []string, raw string) (string, error) {
	if raw == "" {
		return helpNote, nil
	}

	switch strings.ToLower(args[0]) {
	case "list":
		n := 0
		if len(args) >= 2 {
			parsed, err := strconv.Atoi(args[1])
			if err != nil || parsed < 1 {
				return "用法：/note list [筆數]", nil
			}
			n = parsed
		}
		notes, err := r.notes.ListRecent(ctx, userID, n)
		if err != nil {
			return "", err
		}
		return formatNotes("📝 最近的筆記：", notes, "還沒有任何筆記。用 /note <內容> 新增一則吧。"), nil
	case "today":
		user, err := r.settings.Get(ctx, userID)
		if err != nil {
			return "", err
		}
		now := time.Now().In(r.settings.Location(user))
		notes, err := r.notes.ListToday(ctx, userID, now)
		if err != nil {
			return "", err
		}
		return formatNotes("📝 今天的筆記：", notes, "今天還沒有筆記。"), nil
	default:
		user, err := r.settings.Get(ctx, userID)
		if err != nil {
			return "", err
		}
		now := time.Now().In(r.settings.Location(user))
		note, err := r.notes.Add(ctx, userID, raw, nil, now)
		if err != nil {
			if errors.Is(err, service.ErrInvalidInput) {
				return helpNote, nil
			}
			return "", err
		}
		reply := "📝 筆記已儲存。"
		if note.Summary != nil && *note.Summary != "" {
			reply += "\n摘要：" + *note.Summary
		}
		return reply, nil
	}
}

func formatNotes(header string, notes []model.Note, emptyText string) string {
	if len(notes) == 0 {
		return emptyText
	}
	var b strings.Builder
	b.WriteString(header + "\n")
	for i, n := range notes {
		line := n.Content
		if n.Summary != nil && *n.Summary != "" {
			line = *n.Summary
		}
		if idx := strings.IndexByte(line, '\n'); idx >= 0 {
			line = line[:idx]
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, n.TS.Format("01/02 15:04"), line)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Router) cmdReview(ctx context.Context, userID string, args []string) (string, error) {
	if len(args) != 1 || strings.ToLower(args[0]) != "today" {
		return helpReview, nil
	}
	user, err := r.settings.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	now := time.Now().In(r.settings.Location(user))
	digest, err := r.notes.ReviewToday(ctx, userID, now)
	if err != nil {
		return "", err
	}
	if digest == "" {
		return "今天還沒有筆記，沒有可以回顧的內容。", nil
	}
	return "🔁 今日回顧\n" + digest, nil
}

// ── 新聞 ──

func (r *Router) cmdNews(ctx context.Context, userID string, args []string) (string, error) {
	if len(args) == 0 {
		return helpNews, nil
	}
	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) < 2 {
			return "用法：/news add <關鍵字>", nil
		}
		keyword := strings.Join(args[1:], " ")
		if err := r.news.AddKeyword(ctx, userID, keyword); err != nil {
			if errors.Is(err, service.ErrInvalidInput) {
				return "用法：/news add <關鍵字>", nil
			}
			return "", err
		}
		return fmt.Sprintf("已訂閱關鍵字「%s」。", keyword), nil
	case "remove":
		if len(args) < 2 {
			return "用法：/news remove <關鍵字>", nil
		}
		keyword := strings.Join(args[1:], " ")
		removed, err := r.news.RemoveKeyword(ctx, userID, keyword)
		if err != nil {
			return "", err
		}
		if !removed {
			return fmt.Sprintf("沒有訂閱「%s」這個關鍵字。", keyword), nil
		}
		return fmt.Sprintf("已取消關鍵字「%s」。", keyword), nil
	case "list":
		keywords, err := r.news.ListKeywords(ctx, userID)
		if err != nil {
			return "", err
		}
		if len(keywords) == 0 {
			return "目前沒有訂閱任何關鍵字。用 /news add <關鍵字> 開始訂閱。", nil
		}
		return "🔖 訂閱中的關鍵字：\n• " + strings.Join(keywords, "\n• "), nil
	case "refresh":
		items, err := r.news.FetchMatches(ctx, userID)
		if err != nil {
			return "", err
		}
		if len(items) == 0 {
			return "目前沒有符合關鍵字的新消息。", nil
		}
		// 所有命中都记为已推送，回复只列出前几条
		for _, item := range items {
			if err := r.news.MarkSent(ctx, item); err != nil {
				r.logger.Warn("新闻缓存写入失败", zap.String("url", item.URL), zap.Error(err))
			}
		}
		if len(items) > service.MaxNewsPerReply {
			items = items[:service.MaxNewsPerReply]
		}
		return formatNews("📰 最新相符新聞：", items), nil
	case "feed":
		return r.cmdNewsFeed(ctx, userID, args[1:])
	default:
		return helpNews, nil
	}
}

func (r *Router) cmdNewsFeed(ctx context.Context, userID string, args []string) (string, error) {
	if len(args) == 0 {
		return helpFeeds, nil
	}
	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) != 2 {
			return "用法：/news feed add <RSS網址>", nil
		}
		if err := r.news.AddFeed(ctx, userID, args[1]); err != nil {
			if errors.Is(err, service.ErrInvalidInput) {
				return "這個網址看起來不是合法的 RSS 來源（必須是 http/https）。", nil
			}
			return "", err
		}
		return "已加入新聞來源。", nil
	case "remove":
		if len(args) != 2 {
			return "用法：/news feed remove <RSS網址>", nil
		}
		removed, err := r.news.RemoveFeed(ctx, userID, args[1])
		if err != nil {
			return "", err
		}
		if !removed {
			return "來源清單中沒有這個網址。", nil
		}
		return "已移除新聞來源。", nil
	case "list":
		urls, usingDefault, err := r.news.ListFeeds(ctx, userID)
		if err != nil {
			return "", err
		}
		header := "🌐 自訂新聞來源："
		if usingDefault {
			header = "🌐 尚未自訂來源，目前使用預設來源："
		}
		if len(urls) == 0 {
			return "目前沒有任何新聞來源。", nil
		}
		return header + "\n• " + strings.Join(urls, "\n• "), nil
	default:
		return helpFeeds, nil
	}
}

func formatNews(header string, items []service.NewsItem) string {
	var b strings.Builder
	b.WriteString(header + "\n")
	for _, item := range items {
		fmt.Fprintf(&b, "• %s\n  %s\n", item.Title, item.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// ── 翻譯与設定 ──

func (r *Router) cmdTranslate(ctx context.Context, userID string, args []string) (string, error) {
	user, err := r.settings.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(args) == 0 || strings.ToLower(args[0]) == "status" {
		state := "關閉"
		if user.TranslateOn {
			state = "開啟"
		}
		return fmt.Sprintf("🌍 自動翻譯：%s\n目標語言：%s", state, user.TargetLang), nil
	}

	switch strings.ToLower(args[0]) {
	case "on":
		if len(args) >= 2 {
			if err := r.settings.SetTargetLang(ctx, userID, args[1]); err != nil {
				return "", err
			}
			user.TargetLang = args[1]
		}
		if err := r.settings.SetTranslate(ctx, userID, true); err != nil {
			return "", err
		}
		return fmt.Sprintf("自動翻譯已開啟（目標語言：%s）。", user.TargetLang), nil
	case "off":
		if err := r.settings.SetTranslate(ctx, userID, false); err != nil {
			return "", err
		}
		return "自動翻譯已關閉。", nil
	case "lang":
		if len(args) != 2 {
			return "用法：/translate lang <語言代碼>，例如 en、ja、zh-Hant", nil
		}
		if err := r.settings.SetTargetLang(ctx, userID, args[1]); err != nil {
			return "", err
		}
		return fmt.Sprintf("目標語言已設為 %s。", args[1]), nil
	default:
		return helpTranslate, nil
	}
}

func (r *Router) cmdSettings(ctx context.Context, userID string, args []string) (string, error) {
	user, err := r.settings.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		reminder := "關閉"
		if user.NotificationsOn {
			reminder = "開啟"
		}
		translate := "關閉"
		if user.TranslateOn {
			translate = "開啟"
		}
		return fmt.Sprintf("⚙️ 目前設定\n上課提醒：%s（提前 %d 分鐘）\n時區：%s\n自動翻譯：%s（目標語言：%s）",
			reminder, user.ReminderWindow, user.Timezone, translate, user.TargetLang), nil
	}

	switch strings.ToLower(args[0]) {
	case "reminder":
		if len(args) != 2 {
			return "用法：/settings reminder on|off", nil
		}
		switch strings.ToLower(args[1]) {
		case "on":
			if err := r.settings.SetNotifications(ctx, userID, true); err != nil {
				return "", err
			}
			return "上課提醒已開啟。", nil
		case "off":
			if err := r.settings.SetNotifications(ctx, userID, false); err != nil {
				return "", err
			}
			return "上課提醒已關閉。", nil
		default:
			return "用法：/settings reminder on|off", nil
		}
	case "window":
		const usage = "用法：/settings window <分鐘>（1-240）"
		if len(args) != 2 {
			return usage, nil
		}
		minutes, err := strconv.Atoi(args[1])
		if err != nil {
			return usage, nil
		}
		if err := r.settings.SetReminderWindow(ctx, userID, minutes); err != nil {
			if errors.Is(err, service.ErrInvalidInput) {
				return usage, nil
			}
			return "", err
		}
		return fmt.Sprintf("提醒提前量已設為 %d 分鐘。", minutes), nil
	case "tz":
		if len(args) != 2 {
			return "用法：/settings tz <時區>，例如 Asia/Taipei", nil
		}
		if err := r.settings.SetTimezone(ctx, userID, args[1]); err != nil {
			if errors.Is(err, service.ErrInvalidInput) {
				return fmt.Sprintf("無法辨識的時區：%s", args[1]), nil
			}
			return "", err
		}
		return fmt.Sprintf("時區已設為 %s。", args[1]), nil
	default:
		return helpSettings, nil
	}
}

// ── 帳號綁定 ──

func (r *Router) cmdLink(ctx context.Context, userID string) (string, error) {
	code, expiresAt, err := r.auth.IssueLinkCode(ctx, userID)
	if err != nil {
		return "", err
	}
	minutes := int(time.Until(expiresAt).Minutes())
	return fmt.Sprintf("🔗 綁定碼：%s\n請在 %d 分鐘內於網頁端的「帳號綁定」輸入此碼。", code, minutes), nil
}
