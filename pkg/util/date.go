package util

import "time"

// DateLayout is the day format shared by all three vendor APIs.
const DateLayout = "2006-01-02"

// DayWindow returns [now-days, now] formatted as DateLayout strings, used
// for trailing-window query parameters (news, aggregate bars).
func DayWindow(now time.Time, days int) (from, to string) {
	to = now.UTC().Format(DateLayout)
	from = now.UTC().AddDate(0, 0, -days).Format(DateLayout)
	return from, to
}

// ParseDay parses a DateLayout string. Returns ok=false on failure.
func ParseDay(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// UnixToDay renders a unix timestamp (seconds or milliseconds) as a
// DateLayout string.
func UnixToDay(ts int64) string {
	if ts > 1e12 { // milliseconds
		ts /= 1000
	}
	return time.Unix(ts, 0).UTC().Format(DateLayout)
}
