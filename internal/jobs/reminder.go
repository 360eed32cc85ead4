package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// runReminders 为每个开启提醒的用户检查即将开始的课程并推送
func (j *Jobs) runReminders(ctx context.Context) {
	users, err := j.users.ListReminderEnabled(ctx)
	if err != nil {
		j.logger.Error("提醒任务查询用户失败", zap.Error(err))
		return
	}

	for i := range users {
		user := &users[i]
		if !canPush(user.UserID) {
			continue
		}
		now := time.Now().In(j.settings.Location(user))
		upcoming, err := j.schedule.Upcoming(ctx, user.UserID, now, user.ReminderWindow)
		if err != nil {
			j.logger.Warn("提醒任务查询课表失败",
				zap.String("user_id", user.UserID),
				zap.Error(err))
			continue
		}
		for _, u := range upcoming {
			text := fmt.Sprintf("⏰ 上課提醒：「%s」將於 %d 分鐘後（%s）開始。",
				u.Course.CourseName, u.MinutesUntil, u.Course.StartTime)
			if u.Course.Location != nil && *u.Course.Location != "" {
				text += "\n地點：" + *u.Course.Location
			}
			if err := j.pusher.PushText(user.UserID, text); err != nil {
				j.logger.Warn("提醒推送失败",
					zap.String("user_id", user.UserID),
					zap.Error(err))
			}
		}
	}
}
