package jobs

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/internal/service"
)

// runNewsPoll 为每个设有关键字的用户抓取相符新闻并推送
func (j *Jobs) runNewsPoll(ctx context.Context) {
	subscribers, err := j.news.ListSubscribers(ctx)
	if err != nil {
		j.logger.Error("新闻任务查询订阅者失败", zap.Error(err))
		return
	}

	for _, userID := range subscribers {
		if !canPush(userID) {
			continue
		}
		items, err := j.news.FetchMatches(ctx, userID)
		if err != nil {
			j.logger.Warn("新闻抓取失败",
				zap.String("user_id", userID),
				zap.Error(err))
			continue
		}
		if len(items) == 0 {
			continue
		}
		if len(items) > service.MaxNewsPerReply {
			items = items[:service.MaxNewsPerReply]
		}

		var b strings.Builder
		b.WriteString("📰 你訂閱的關鍵字有新消息：\n")
		for _, item := range items {
			fmt.Fprintf(&b, "• %s\n  %s\n", item.Title, item.URL)
		}
		if err := j.pusher.PushText(userID, strings.TrimRight(b.String(), "\n")); err != nil {
			j.logger.Warn("新闻推送失败",
				zap.String("user_id", userID),
				zap.Error(err))
			continue
		}
		// 推送成功才记入去重缓存，失败的下轮重试
		for _, item := range items {
			if err := j.news.MarkSent(ctx, item); err != nil {
				j.logger.Warn("新闻缓存写入失败",
					zap.String("url", item.URL),
					zap.Error(err))
			}
		}
	}
}
