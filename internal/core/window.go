package core

import (
	"strings"
	"time"
)

// DateWindow is an inclusive range of instants. Both bounds are midnight,
// so operations later on the End day fall outside the window.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// DateOf truncates t to its calendar day, keeping the wall-clock date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TrailingWindow returns the window [end - days, end] with both bounds at
// midnight of their day.
func TrailingWindow(end time.Time, days int) DateWindow {
	end = DateOf(end)
	return DateWindow{Start: end.AddDate(0, 0, -days), End: end}
}

// Contains reports whether Start <= t <= End.
func (w DateWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ParseTimestamp parses an export timestamp (dd.mm.yyyy HH:MM:SS).
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, &ParseError{Field: "timestamp", Value: s, Layout: "dd.mm.yyyy HH:MM:SS", Err: err}
	}
	return t, nil
}

// ParseDate parses a reference date (dd.mm.yyyy).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, &ParseError{Field: "date", Value: s, Layout: "dd.mm.yyyy", Err: err}
	}
	return t, nil
}

// ParseReportTime parses a report reference timestamp (YYYY-MM-DD HH:MM:SS).
func ParseReportTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation(ReportTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, &ParseError{Field: "reference time", Value: s, Layout: "YYYY-MM-DD HH:MM:SS", Err: err}
	}
	return t, nil
}
