package numeric

import (
	"math"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date layout used for data_date, expiry and report dates
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// ParseDate parses an ISO date or RFC3339 timestamp. Date-only values are UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if len(s) >= len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateKey formats t as its UTC calendar date
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Today returns now truncated to UTC midnight
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntilCeil returns max(0, ceil((target-now)/1 day)), or nil if target is unparsable
func DaysUntilCeil(target string, now time.Time) *int {
	t, ok := ParseDate(target)
	if !ok {
		return nil
	}
	days := int(math.Ceil(float64(t.Sub(now)) / float64(day)))
	if days < 0 {
		days = 0
	}
	return &days
}

// CalendarDaysBetween returns the whole number of calendar days from the UTC date
// of now to target (negative when target is in the past), or nil if unparsable
func CalendarDaysBetween(now time.Time, target string) *int {
	t, ok := ParseDate(target)
	if !ok {
		return nil
	}
	days := int(math.Round(float64(Today(t).Sub(Today(now))) / float64(day)))
	return &days
}
