package timezone

import (
	"time"
)

// Unit is a calendar unit used for boundary snapping.
type Unit int

const (
	UnitDay Unit = iota
	UnitWeek
	UnitMonth
	UnitYear
)

func (u Unit) String() string {
	switch u {
	case UnitDay:
		return "day"
	case UnitWeek:
		return "week"
	case UnitMonth:
		return "month"
	case UnitYear:
		return "year"
	default:
		return "unknown"
	}
}

// StartOf snaps t to the first instant of its calendar unit in t's location.
// Weeks begin on weekStart.
func StartOf(t time.Time, unit Unit, weekStart time.Weekday) time.Time {
	loc := t.Location()
	switch unit {
	case UnitWeek:
		back := (int(t.Weekday()) - int(weekStart) + 7) % 7
		return time.Date(t.Year(), t.Month(), t.Day()-back, 0, 0, 0, 0, loc)
	case UnitMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	case UnitYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	}
}

// EndOf snaps t to the last millisecond of its calendar unit in t's location.
func EndOf(t time.Time, unit Unit, weekStart time.Weekday) time.Time {
	start := StartOf(t, unit, weekStart)
	var next time.Time
	switch unit {
	case UnitWeek:
		next = start.AddDate(0, 0, 7)
	case UnitMonth:
		next = start.AddDate(0, 1, 0)
	case UnitYear:
		next = start.AddDate(1, 0, 0)
	default:
		next = start.AddDate(0, 0, 1)
	}
	return next.Add(-time.Millisecond)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths adds n calendar months, clamping the day to the target month's length
// (Jan 31 + 1 month = Feb 28/29) instead of overflowing into the next month.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + n
	ty := y + floorDiv(total, 12)
	tm := time.Month(floorMod(total, 12) + 1)
	if last := DaysIn(ty, tm); d > last {
		d = last
	}
	return time.Date(ty, tm, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// AddYears adds n calendar years; Feb 29 clamps to Feb 28 in non-leap years.
func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, 12*n)
}

// CivilDaysBetween returns the number of calendar dates from a to b, each taken in loc.
// The result is negative when b's date precedes a's.
func CivilDaysBetween(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int((db.Unix() - da.Unix()) / 86400)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
