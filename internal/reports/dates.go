package reports

import (
	"strconv"
	"strings"
	"time"
)

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseShortDate parses report dates like "1/5/26" or "1/5". Two-digit years
// map into the 2000s; when the year is missing the pivot year applies.
func ParseShortDate(s string, pivotYear int) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) < 2 {
		return time.Time{}, false
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}

	year := pivotYear
	if len(parts) >= 3 {
		y, err := strconv.Atoi(parts[2])
		if err != nil {
			return time.Time{}, false
		}
		if y < 100 {
			y += 2000
		}
		year = y
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// WeekdayFromName maps an English day name to its time.Weekday; ok is false
// for anything unrecognised.
func WeekdayFromName(name string) (time.Weekday, bool) {
	wd, ok := weekdayByName[strings.ToLower(strings.TrimSpace(name))]
	return wd, ok
}

// MondayOf returns the Monday on or before d, the week key used by the
// weekly aggregation buckets.
func MondayOf(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
