package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day form used everywhere in the ledger.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar day. Lenient about zero padding on
// input so "2024-1-05" still lands in January.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	var y, m, d int
	if _, err := fmt.Sscanf(s, "%d-%d-%d", &y, &m, &d); err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range components, so a day like
	// February 30th would silently roll into March. Reject anything that
	// does not survive the round trip.
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

// NormalizeDate re-renders a calendar day with zero-padded month and day so
// month membership never depends on how the input was padded.
func NormalizeDate(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// FormatDate renders a time as a calendar day.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// MonthKey returns the zero-padded YYYY-MM month of a calendar day.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// DaysRemainingInMonth counts the days left in t's calendar month, inclusive
// of t itself.
func DaysRemainingInMonth(t time.Time) int {
	lastDay := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	return lastDay - t.Day() + 1
}
