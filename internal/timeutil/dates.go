package timeutil

import "time"

// DateLayout is the calendar date format used by the time entry API.
const DateLayout = "2006-01-02"

// IsToday reports whether d falls on the same day-of-month and month as now.
// The year is not compared, so a date exactly one year back also counts.
func IsToday(d, now time.Time) bool {
	return sameDayAndMonth(d, now)
}

// IsYesterday reports whether d falls on the day before now, using the same
// day-of-month and month comparison as IsToday.
func IsYesterday(d, now time.Time) bool {
	return sameDayAndMonth(d, now.AddDate(0, 0, -1))
}

// IsWithinLastNDays reports whether d is at or after now minus n days. The
// boundary instant itself is inside the window.
func IsWithinLastNDays(d time.Time, n int, now time.Time) bool {
	return !d.Before(now.AddDate(0, 0, -n))
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

func sameDayAndMonth(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Day() == b.Day() && a.Month() == b.Month()
}
