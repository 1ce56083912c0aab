package utils

import (
	"errors"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrBadDate = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrBadTime = errors.New("invalid time format, expected HH:MM")
)

// ParseDate parses a YYYY-MM-DD string into midnight UTC. All persisted
// dates go through here so that equality comparisons are stable.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return t, nil
}

// ParseClock validates an HH:MM 24-hour string and returns it normalized.
func ParseClock(s string) (string, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return "", ErrBadTime
	}
	return t.Format(TimeLayout), nil
}

// Today returns the current date at midnight UTC.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// MonthBounds returns the first and last day of the calendar month before
// the given date. Used by the monthly report job.
func MonthBounds(today time.Time) (time.Time, time.Time) {
	firstOfThis := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := firstOfThis.AddDate(0, 0, -1)
	first := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first, last
}
