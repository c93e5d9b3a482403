package utils

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used in positions, calendars and API queries.
const DateLayout = "2006-01-02"

// FormatDate renders t as YYYY-MM-DD in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateIn parses YYYY-MM-DD as midnight in loc.
func ParseDateIn(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// ResetTime truncates t to the start of its minute, hour or day.
// Day truncation keeps t's location.
func ResetTime(t time.Time, granularity string) time.Time {
	switch granularity {
	case "minute":
		return t.Truncate(time.Minute)
	case "hour":
		return t.Truncate(time.Hour)
	case "day":
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	default:
		return t
	}
}

// ParseClock parses an "HH:MM" wall clock value.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}
