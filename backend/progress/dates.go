// Package progress holds the pure aggregation logic behind the dashboard:
// completion percentages, the daily completion streak and activity series.
// Nothing here reads the wall clock; "today" and "now" are always passed in.
package progress

import "time"

// DateOf truncates t to its calendar date in t's own location, returned as
// midnight UTC so that dates compare and subtract exactly.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// weekStart returns the Monday of d's calendar week.
func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func monthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}
