package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ExTimestamp 兼容多种格式的时间戳
//
// 支持 10/13/16/19 位整数（秒、毫秒、微秒、纳秒）以及 RFC3339 字符串，
// 序列化时保持输入格式。0、"" 与 null 解码为零值时间。
type ExTimestamp struct {
	time.Time
	sourceFormat string
}

// UnmarshalJSON 自定义反序列化
func (t *ExTimestamp) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	t.Time, t.sourceFormat = time.Time{}, ""
	if s == "" || s == "null" || s == "0" {
		return nil
	}

	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		switch len(strings.TrimPrefix(s, "-")) {
		case 10:
			t.Time, t.sourceFormat = time.Unix(ts, 0), "s"
		case 13:
			t.Time, t.sourceFormat = time.UnixMilli(ts), "ms"
		case 16:
			t.Time, t.sourceFormat = time.UnixMicro(ts), "us"
		case 19:
			t.Time, t.sourceFormat = time.Unix(0, ts), "ns"
		default:
			return fmt.Errorf("unsupported timestamp length: %d (%s)", len(s), s)
		}
		return nil
	}

	// Gate 部分接口返回带小数的秒级时间戳，例如 1700000000.123
	if i := strings.IndexByte(s, '.'); i > 0 {
		sec, err1 := strconv.ParseInt(s[:i], 10, 64)
		frac := s[i+1:]
		if len(frac) > 9 {
			frac = frac[:9]
		}
		nsec, err2 := strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		if err1 == nil && err2 == nil {
			t.Time, t.sourceFormat = time.Unix(sec, nsec), "s"
			return nil
		}
	}

	tt, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", s, err)
	}
	t.Time, t.sourceFormat = tt, "rfc3339"
	return nil
}

// MarshalJSON 按原始格式序列化，默认毫秒
func (t ExTimestamp) MarshalJSON() ([]byte, error) {
	switch t.sourceFormat {
	case "s":
		return []byte(strconv.FormatInt(t.Unix(), 10)), nil
	case "us":
		return []byte(strconv.FormatInt(t.UnixMicro(), 10)), nil
	case "ns":
		return []byte(strconv.FormatInt(t.UnixNano(), 10)), nil
	case "rfc3339":
		return json.Marshal(t.Format(time.RFC3339Nano))
	default:
		return []byte(strconv.FormatInt(t.UnixMilli(), 10)), nil
	}
}
