package natural

import (
	"fmt"
	"time"

	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
	"github.com/hrygo/timetext/plugin/timetext/timezone"
)

// env is the phase-two context: the reference wall clock and calendar settings.
type env struct {
	ref       time.Time
	loc       *time.Location
	weekStart time.Weekday
	// budget bounds recursion independently of how the tree was built.
	budget int
}

// eval resolves the anchor first, folds offsets and boundaries over it in
// textual order, and applies the time of day last.
func (e *env) eval(n Node, depth int) (time.Time, error) {
	if depth > e.budget {
		return time.Time{}, terrors.ParseDepthExceeded(e.budget, "")
	}
	switch n := n.(type) {
	case *Anchor:
		return e.anchor(n)
	case *Offset:
		base, err := e.eval(n.Base, depth+1)
		if err != nil {
			return time.Time{}, err
		}
		return applyOffset(base, n), nil
	case *BoundaryOf:
		base, err := e.eval(n.Base, depth+1)
		if err != nil {
			return time.Time{}, err
		}
		if n.Edge == EdgeEnd {
			return timezone.EndOf(base, n.Unit, e.weekStart), nil
		}
		return timezone.StartOf(base, n.Unit, e.weekStart), nil
	case *TimeOfDay:
		base, err := e.eval(n.Base, depth+1)
		if err != nil {
			return time.Time{}, err
		}
		y, m, d := base.Date()
		return time.Date(y, m, d, n.Hour, n.Minute, n.Second, 0, e.loc), nil
	default:
		return time.Time{}, terrors.ParseFailed(fmt.Sprintf("%T", n))
	}
}

func (e *env) midnight(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, e.loc)
}

func (e *env) anchor(a *Anchor) (time.Time, error) {
	r := e.ref
	switch a.Kind {
	case AnchorNow:
		return r, nil
	case AnchorDay:
		return e.midnight(r.Year(), r.Month(), r.Day()+a.Shift), nil
	case AnchorWeekday:
		return e.midnight(r.Year(), r.Month(), r.Day()+e.weekdayDelta(a)), nil
	case AnchorPeriod:
		start := timezone.StartOf(r, a.Unit, e.weekStart)
		switch a.Unit {
		case timezone.UnitWeek:
			return start.AddDate(0, 0, 7*a.Shift), nil
		case timezone.UnitMonth:
			return start.AddDate(0, a.Shift, 0), nil
		default:
			return start.AddDate(a.Shift, 0, 0), nil
		}
	case AnchorDate:
		year := a.Year
		if year == 0 {
			year = r.Year()
		}
		if a.Day > timezone.DaysIn(year, a.Month) {
			return time.Time{}, terrors.ParseFailed(fmt.Sprintf("%s %d %d", a.Month, a.Day, year))
		}
		return e.midnight(year, a.Month, a.Day), nil
	case AnchorInstant:
		return time.UnixMilli(a.Millis).In(e.loc), nil
	default:
		return time.Time{}, terrors.ParseFailed("anchor")
	}
}

// weekdayDelta returns the day offset from the reference date to the anchor's weekday.
func (e *env) weekdayDelta(a *Anchor) int {
	today := e.ref.Weekday()
	ahead := (int(a.Weekday) - int(today) + 7) % 7
	switch a.Qualifier {
	case QualNearest, QualNext:
		// The same weekday as today means a week out.
		if ahead == 0 {
			return 7
		}
		return ahead
	case QualLast:
		back := (int(today) - int(a.Weekday) + 7) % 7
		if back == 0 {
			back = 7
		}
		return -back
	case QualThis:
		sinceStart := (int(today) - int(e.weekStart) + 7) % 7
		intoWeek := (int(a.Weekday) - int(e.weekStart) + 7) % 7
		return intoWeek - sinceStart
	default:
		return ahead
	}
}

// applyOffset adds calendar units in the wall clock of t; sub-day units are exact durations.
func applyOffset(t time.Time, o *Offset) time.Time {
	n := o.Amount
	switch o.Unit {
	case OffsetSecond:
		return t.Add(time.Duration(n) * time.Second)
	case OffsetMinute:
		return t.Add(time.Duration(n) * time.Minute)
	case OffsetHour:
		return t.Add(time.Duration(n) * time.Hour)
	case OffsetDay:
		return t.AddDate(0, 0, int(n))
	case OffsetWeek:
		return t.AddDate(0, 0, 7*int(n))
	case OffsetMonth:
		return timezone.AddMonths(t, int(n))
	case OffsetYear:
		return timezone.AddYears(t, int(n))
	default:
		return t
	}
}
