package util

import (
	"strconv"
	"strings"
	"time"
)

var layouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.DateTime,
}

// ParseTime tries RFC3339, RFC3339Nano, "2006-01-02 15:04:05" (UTC) and unix
// seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if ts, err := strconv.ParseFloat(s, 64); err == nil && ts > 0 {
		sec := int64(ts)
		return time.Unix(sec, int64((ts-float64(sec))*1e9)).UTC(), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// AlignTime truncates t to a step boundary (UTC based).
func AlignTime(t time.Time, step time.Duration) time.Time {
	if step <= 0 {
		return t
	}
	return t.UTC().Truncate(step)
}
