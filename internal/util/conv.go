package util

import (
	"strconv"
	"time"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// StartOfDay drops the time-of-day component, keeping the location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDate parses a YYYY-MM-DD value, reporting the violated rule on failure.
func ParseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, NewValidationError(field+".format", "expected YYYY-MM-DD, got "+strconv.Quote(s))
	}
	return t, nil
}
