package utils

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr error
	}{
		{"valid date", "2026-03-15", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), nil},
		{"leap day", "2024-02-29", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), nil},
		{"wrong layout", "15-03-2026", time.Time{}, ErrBadDate},
		{"not a date", "tomorrow", time.Time{}, ErrBadDate},
		{"empty", "", time.Time{}, ErrBadDate},
		{"invalid day", "2026-02-30", time.Time{}, ErrBadDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseDate(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if err == nil && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"valid time", "09:30", "09:30", nil},
		{"midnight", "00:00", "00:00", nil},
		{"end of day", "23:59", "23:59", nil},
		{"hour out of range", "24:00", "", ErrBadTime},
		{"minute out of range", "10:60", "", ErrBadTime},
		{"missing minutes", "10", "", ErrBadTime},
		{"empty", "", "", ErrBadTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseClock(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseClock(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToday(t *testing.T) {
	today := Today()
	if today.Hour() != 0 || today.Minute() != 0 || today.Second() != 0 {
		t.Errorf("Today() = %v, want midnight", today)
	}
	if today.Location() != time.UTC {
		t.Errorf("Today() location = %v, want UTC", today.Location())
	}
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		first time.Time
		last  time.Time
	}{
		{
			"mid month",
			time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			"january rolls back a year",
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			"march after leap february",
			time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := MonthBounds(tt.today)
			if !first.Equal(tt.first) {
				t.Errorf("MonthBounds first = %v, want %v", first, tt.first)
			}
			if !last.Equal(tt.last) {
				t.Errorf("MonthBounds last = %v, want %v", last, tt.last)
			}
		})
	}
}
