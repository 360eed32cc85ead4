package bot

import "testing"

func TestResolveTimeSpec(t *testing.T) {
	cases := []struct {
		spec  string
		start string
		end   string
		ok    bool
	}{
		{"1", "08:10", "09:00", true},
		{"5", "12:10", "13:00", true},
		{"11", "18:30", "19:20", true}, // 晚间节次有较长的课间
		{"13", "20:30", "21:20", true},
		{"2-4", "09:10", "12:00", true},
		{"11-13", "18:30", "21:20", true},
		{"09:00-12:00", "09:00", "12:00", true},
		{"9:00-12:00", "09:00", "12:00", true}, // 单位数小时补零
		{"0", "", "", false},
		{"14", "", "", false},
		{"4-2", "", "", false},
		{"1-99", "", "", false},
		{"abc", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		start, end, ok := resolveTimeSpec(tc.spec)
		if ok != tc.ok || start != tc.start || end != tc.end {
			t.Errorf("resolveTimeSpec(%q) = (%q, %q, %v)，期望 (%q, %q, %v)",
				tc.spec, start, end, ok, tc.start, tc.end, tc.ok)
		}
	}
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()

	if store.Get("u1") != nil {
		t.Error("无会话时 Get 应返回 nil")
	}
	if n := store.AppendImage("u1", []byte("img1")); n != 0 {
		t.Errorf("不在上传流程时 AppendImage 应返回 0，实际 %d", n)
	}

	store.Begin("u1", StateAwaitScheduleImage)
	if n := store.AppendImage("u1", []byte("img1")); n != 1 {
		t.Errorf("AppendImage 第一次应返回 1，实际 %d", n)
	}
	if n := store.AppendImage("u1", []byte("img2")); n != 2 {
		t.Errorf("AppendImage 第二次应返回 2，实际 %d", n)
	}

	sess := store.Get("u1")
	if sess == nil || sess.State != StateAwaitScheduleImage || len(sess.Images) != 2 {
		t.Fatalf("会话内容不符: %+v", sess)
	}
	// Get 返回的是副本，外部修改不影响存储
	sess.Images[0] = []byte("tampered")
	if got := store.Get("u1"); string(got.Images[0]) != "img1" {
		t.Error("Get 应返回副本")
	}

	store.Clear("u1")
	if store.Get("u1") != nil {
		t.Error("Clear 后会话应消失")
	}
}

func TestHelpTopics(t *testing.T) {
	if helpFor("") != helpGeneral {
		t.Error("空主题应返回总览")
	}
	if helpFor("unknown-topic") != helpGeneral {
		t.Error("未知主题应返回总览")
	}
	if helpFor("SCHEDULE") != helpSchedule {
		t.Error("主题应大小写不敏感")
	}
	if helpFor("課表") != helpSchedule {
		t.Error("中文别名应可用")
	}
	if helpFor("feed") != helpFeeds || helpFor("feeds") != helpFeeds {
		t.Error("feed/feeds 都应指向来源说明")
	}
}

func TestTruncateReply(t *testing.T) {
	short := "你好"
	if truncateReply(short) != short {
		t.Error("短回复不应截断")
	}

	long := make([]rune, maxReplyRunes+100)
	for i := range long {
		long[i] = '字'
	}
	got := []rune(truncateReply(string(long)))
	if len(got) != maxReplyRunes {
		t.Errorf("截断后长度 = %d，期望 %d", len(got), maxReplyRunes)
	}
	if got[len(got)-1] != '…' {
		t.Error("截断应以省略号结尾")
	}
}

func TestCutTranslateShortcut(t *testing.T) {
	cases := []struct {
		in   string
		rest string
		ok   bool
	}{
		{"t: hello world", "hello world", true},
		{"T: Hello", "Hello", true},
		{"t：全形冒號", "全形冒號", true},
		{"today is fine", "", false},
		{"/t hello", "", false},
	}
	for _, tc := range cases {
		rest, ok := cutTranslateShortcut(tc.in)
		if ok != tc.ok || rest != tc.rest {
			t.Errorf("cutTranslateShortcut(%q) = (%q, %v)，期望 (%q, %v)",
				tc.in, rest, ok, tc.rest, tc.ok)
		}
	}
}
