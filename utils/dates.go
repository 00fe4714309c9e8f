// utils/dates.go
package utils

import "time"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// UTCDay collapses a timestamp to UTC midnight of the same calendar day.
func UTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

// MostRecentWeekday returns the latest occurrence of wd on or before day.
func MostRecentWeekday(day time.Time, wd time.Weekday) time.Time {
	day = BeginningOfDay(day)
	diff := (int(day.Weekday()) - int(wd) + 7) % 7
	return day.AddDate(0, 0, -diff)
}
