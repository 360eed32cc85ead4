package bot

import (
	"regexp"
	"strconv"
	"strings"
)

// period 一节课的起讫时间
type period struct {
	start string
	end   string
}

// periodTable 校定节次表，1~13 节
var periodTable = map[int]period{
	1:  {"08:10", "09:00"},
	2:  {"09:10", "10:00"},
	3:  {"10:10", "11:00"},
	4:  {"11:10", "12:00"},
	5:  {"12:10", "13:00"},
	6:  {"13:10", "14:00"},
	7:  {"14:10", "15:00"},
	8:  {"15:10", "16:00"},
	9:  {"16:10", "17:00"},
	10: {"17:10", "18:00"},
	11: {"18:30", "19:20"},
	12: {"19:30", "20:20"},
	13: {"20:30", "21:20"},
}

var clockRangeRe = regexp.MustCompile(`^(\d{1,2}:\d{2})-(\d{1,2}:\d{2})$`)

// resolveTimeSpec 解析节次或时间区间。
// 支持单节 "3"、节次区间 "2-4"、时刻区间 "09:00-12:00"。
func resolveTimeSpec(spec string) (start, end string, ok bool) {
	spec = strings.TrimSpace(spec)

	if m := clockRangeRe.FindStringSubmatch(spec); m != nil {
		return padClock(m[1]), padClock(m[2]), true
	}

	if n, err := strconv.Atoi(spec); err == nil {
		p, found := periodTable[n]
		if !found {
			return "", "", false
		}
		return p.start, p.end, true
	}

	if lo, hi, found := strings.Cut(spec, "-"); found {
		a, err1 := strconv.Atoi(strings.TrimSpace(lo))
		b, err2 := strconv.Atoi(strings.TrimSpace(hi))
		if err1 != nil || err2 != nil || a > b {
			return "", "", false
		}
		pa, oka := periodTable[a]
		pb, okb := periodTable[b]
		if !oka || !okb {
			return "", "", false
		}
		return pa.start, pb.end, true
	}

	return "", "", false
}

// padClock 把 "9:00" 补成 "09:00"，保证字典序即时间序
func padClock(s string) string {
	if len(s) == 4 {
		return "0" + s
	}
	return s
}
