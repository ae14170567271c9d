package recurrence

import "time"

// The engine works on calendar dates, not instants. Every date that enters
// the package is normalized to midnight UTC so comparisons are unambiguous.

// Date constructs a calendar date at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf strips the time-of-day component of t and returns the calendar date
// at midnight UTC.
func DateOf(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// LengthOfYear returns the number of days in t's year (365 or 366).
func LengthOfYear(t time.Time) int {
	if isLeapYear(t.Year()) {
		return 366
	}
	return 365
}

// DayOfYear returns t's ordinal day within its year, starting at 1.
func DayOfYear(t time.Time) int {
	return t.YearDay()
}

// IsLastDayOfYear reports whether t is December 31st of its year.
func IsLastDayOfYear(t time.Time) bool {
	return t.YearDay() == LengthOfYear(t)
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	return daysIn(t.Year(), t.Month())
}

// IsLastDayOfMonth reports whether t is the final day of its month.
func IsLastDayOfMonth(t time.Time) bool {
	return t.Day() == DaysInMonth(t)
}

// WithDayOfYear returns the date in t's year with the given ordinal day,
// clamped to the length of the year.
func WithDayOfYear(t time.Time, day int) time.Time {
	if max := LengthOfYear(t); day > max {
		day = max
	}
	if day < 1 {
		day = 1
	}
	return Date(t.Year(), time.January, 1).AddDate(0, 0, day-1)
}

// WithDayOfMonth returns the date in t's month with the given day of month,
// clamped to the length of the month.
func WithDayOfMonth(t time.Time, day int) time.Time {
	if max := DaysInMonth(t); day > max {
		day = max
	}
	if day < 1 {
		day = 1
	}
	return Date(t.Year(), t.Month(), day)
}

// Before reports whether date a falls strictly before date b.
func Before(a, b time.Time) bool {
	return DateOf(a).Before(DateOf(b))
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysIn(year int, month time.Month) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// addMonths advances t by n calendar months (n may be negative), clamping
// the day of month so the result never spills into an adjacent month the way
// time.AddDate does (Jan 31 + 1 month must land in February, not March).
func addMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	idx := year*12 + int(month) - 1 + n
	newYear := idx / 12
	rem := idx % 12
	if rem < 0 {
		rem += 12
		newYear--
	}
	newMonth := time.Month(rem + 1)
	if max := daysIn(newYear, newMonth); day > max {
		day = max
	}
	return Date(newYear, newMonth, day)
}

// addYears advances t by n calendar years, clamping Feb 29 to Feb 28 in
// non-leap target years.
func addYears(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	newYear := year + n
	if max := daysIn(newYear, month); day > max {
		day = max
	}
	return Date(newYear, month, day)
}
