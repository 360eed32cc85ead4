package bot

import "strings"

const helpGeneral = `📖 指令一覽
/schedule　課表查詢與管理
/note　　　記筆記、看筆記
/review　　今日筆記回顧
/news　　　關鍵字新聞訂閱
/translate　自動翻譯開關
/t <文字>　立即翻譯（也可用「t: 文字」）
/settings　提醒與時區設定
/link　　　綁定網頁帳號

輸入 /help <主題> 看詳細用法，例如 /help schedule`

const helpSchedule = `📅 課表指令
/schedule today　今天的課
/schedule tomorrow　明天的課
/schedule week　本週課表
/schedule list　全部課程（含編號）
/schedule add <週1-7> <節次或時間> <課名> [@地點]
　例：/schedule add 3 2-4 資料結構 @ R102
　節次支援：1~13、2-4、09:00-12:00
/schedule remove <編號>　依 list 的編號刪除
/schedule clear all　清空課表
/schedule clear day <週1-7>　清空某天
/schedule upload image　上傳課表照片匯入`

const helpNote = `📝 筆記指令
/note <內容>　新增一則筆記（自動產生摘要）
/note list [筆數]　最近的筆記
/note today　今天的筆記`

const helpReview = `🔁 回顧指令
/review today　AI 彙整今天所有筆記的重點`

const helpNews = `📰 新聞指令
/news add <關鍵字>　訂閱關鍵字
/news remove <關鍵字>　取消訂閱
/news list　目前的關鍵字
/news refresh　立即抓取最新相符新聞
新聞來源管理請看 /help feeds`

const helpFeeds = `🌐 新聞來源指令
/news feed add <RSS網址>　加入自訂來源
/news feed remove <RSS網址>　移除來源
/news feed list　目前的來源
未設定任何來源時使用預設來源清單`

const helpTranslate = `🌍 翻譯指令
/t <文字>　立即翻譯成目標語言（也可用「t: 文字」）
/translate on [語言]　開啟自動翻譯
/translate off　關閉自動翻譯
/translate lang <語言代碼>　設定目標語言，例如 en、ja、zh-Hant
/translate status　查看目前狀態
開啟後，傳送語音訊息會自動辨識並翻譯`

const helpLink = `🔗 帳號綁定
/link　產生綁定碼，15 分鐘內到網頁端輸入即可綁定帳號`

const helpSettings = `⚙️ 設定指令
/settings　查看目前設定
/settings reminder on|off　上課提醒開關
/settings window <分鐘>　提醒提前量（1-240）
/settings tz <時區>　時區，例如 Asia/Taipei`

const helpShortcuts = `⚡ 快捷用法
t: 文字　等同 /t 文字
上傳課表照片流程中輸入「完成」或 done 即開始匯入`

// helpTopics 主題與別名都指到同一段说明
var helpTopics = map[string]string{
	"schedule":  helpSchedule,
	"課表":        helpSchedule,
	"note":      helpNote,
	"notes":     helpNote,
	"筆記":        helpNote,
	"review":    helpReview,
	"回顧":        helpReview,
	"news":      helpNews,
	"新聞":        helpNews,
	"feeds":     helpFeeds,
	"feed":      helpFeeds,
	"translate": helpTranslate,
	"翻譯":        helpTranslate,
	"link":      helpLink,
	"綁定":        helpLink,
	"settings":  helpSettings,
	"設定":        helpSettings,
	"shortcuts": helpShortcuts,
}

// helpFor 返回主题说明；主题未知时返回总览
func helpFor(topic string) string {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return helpGeneral
	}
	if text, ok := helpTopics[topic]; ok {
		return text
	}
	return helpGeneral
}
