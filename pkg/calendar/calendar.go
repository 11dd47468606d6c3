// Package calendar holds the date arithmetic shared by membership expiry
// and the expiry sweep. All dates are normalised to UTC midnight.
package calendar

import (
	"time"

	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
)

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// AddMonths shifts t by n calendar months, clamping to the last day of the
// target month when the source day does not exist there (Jan 31 + 1 = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	first := time.Date(y, m+time.Month(n), 1, hh, mm, ss, t.Nanosecond(), t.Location())
	if last := DaysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// AddYears clamps Feb 29 onto Feb 28 in non-leap target years.
func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, 12*n)
}

// DaysIn reports the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Add advances base by count units of the plan duration type. Unknown types
// are treated as days.
func Add(base time.Time, count int, durationType enums.DurationType) time.Time {
	switch durationType.Unit() {
	case enums.DurationUnitWeek:
		return AddDays(base, 7*count)
	case enums.DurationUnitMonth:
		return AddMonths(base, count)
	case enums.DurationUnitYear:
		return AddYears(base, count)
	default:
		return AddDays(base, count)
	}
}

// IsPast reports whether date falls strictly before today's date.
func IsPast(date, now time.Time) bool {
	return Day(date).Before(Day(now))
}
