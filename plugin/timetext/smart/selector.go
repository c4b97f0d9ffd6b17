package smart

import (
	"time"

	"github.com/hrygo/timetext/plugin/timetext/bucket"
	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
	"github.com/hrygo/timetext/plugin/timetext/locale"
	"github.com/hrygo/timetext/plugin/timetext/pattern"
	"github.com/hrygo/timetext/plugin/timetext/timezone"
	"github.com/hrygo/timetext/plugin/timetext/value"
)

// Selection is the outcome of Select.
type Selection struct {
	Rule Rule
	// Target and Reference are wall clocks in the selection zone.
	Target    time.Time
	Reference time.Time
	// ElapsedSeconds is reference minus target.
	ElapsedSeconds int64
	// CivilDays is the calendar-date distance from reference to target.
	CivilDays int
	Direction locale.Direction
}

// Selector holds the immutable inputs shared by every selection.
type Selector struct {
	Rules      []Rule
	Thresholds bucket.Table
	Zones      timezone.Provider
	Patterns   *pattern.Cache
}

// New creates a selector. Nil zones and patterns use the shared defaults.
func New(rules []Rule, thresholds bucket.Table, zones timezone.Provider, patterns *pattern.Cache) *Selector {
	if zones == nil {
		zones = timezone.Default()
	}
	if patterns == nil {
		patterns = pattern.NewCache(0)
	}
	return &Selector{Rules: rules, Thresholds: thresholds, Zones: zones, Patterns: patterns}
}

// Select classifies target against reference with day boundaries taken in zoneID.
// An empty zoneID is MISSING_TIMEZONE_CONTEXT; callers resolve defaults first.
func (s *Selector) Select(target, reference value.TimeValue, zoneID string) (Selection, error) {
	if zoneID == "" {
		return Selection{}, terrors.MissingTimezoneContext("smart format")
	}
	if err := target.Validate(); err != nil {
		return Selection{}, err
	}
	if err := reference.Validate(); err != nil {
		return Selection{}, err
	}
	loc, err := s.Zones.Location(zoneID)
	if err != nil {
		return Selection{}, err
	}

	tt := time.UnixMilli(target.Millis()).In(loc)
	rt := time.UnixMilli(reference.Millis()).In(loc)
	sel := Selection{
		Target:         tt,
		Reference:      rt,
		ElapsedSeconds: (reference.Millis() - target.Millis()) / 1000,
		CivilDays:      timezone.CivilDaysBetween(rt, tt, loc),
		Direction:      bucket.DirectionOf(target, reference),
	}
	for _, r := range s.Rules {
		if sel.matches(r.When) {
			sel.Rule = r
			return sel, nil
		}
	}
	return Selection{}, terrors.InvalidConfig("no smart rule matched; the list must end with the always predicate")
}

func (sel Selection) matches(p Predicate) bool {
	abs := sel.ElapsedSeconds
	if abs < 0 {
		abs = -abs
	}
	switch p {
	case WithinMinute:
		return abs < 60
	case WithinHour:
		return abs < 3600
	case SameDay:
		return sel.CivilDays == 0
	case PreviousDay:
		return sel.CivilDays == -1
	case NextDay:
		return sel.CivilDays == 1
	case WithinWeek:
		return sel.CivilDays > -7 && sel.CivilDays < 7
	case SameYear:
		return sel.Target.Year() == sel.Reference.Year()
	case Always:
		return true
	default:
		return false
	}
}

// Render produces the text of a selection in the given locale.
func (s *Selector) Render(sel Selection, loc locale.Locale) (string, error) {
	r := sel.Rule
	if r.Strategy == UseRelative {
		return s.relative(sel, loc)
	}

	tokens, err := s.Patterns.CompileAuto(r.Pattern)
	if err != nil {
		return "", err
	}
	text := pattern.RenderTime(tokens, sel.Target, loc)
	if r.Strategy != UseWeekdayTime {
		return text, nil
	}

	day := loc.WeekdayFull(sel.Target.Weekday())
	if r.DayKey != "" {
		if day, err = loc.Fixed(r.DayKey); err != nil {
			return "", err
		}
	}
	return loc.Fixed(locale.KeyAt, day, text)
}

func (s *Selector) relative(sel Selection, loc locale.Locale) (string, error) {
	if sel.Rule.Bucket == "" {
		name, magnitude := bucket.Classify(sel.ElapsedSeconds, s.Thresholds)
		return bucket.Phrase(name, magnitude, sel.Direction, loc)
	}

	var unit int64
	found := false
	for _, row := range s.Thresholds {
		if row.Name == sel.Rule.Bucket {
			unit, found = row.Unit, true
			break
		}
	}
	if !found {
		return "", terrors.InvalidConfig("smart rule names bucket " + sel.Rule.Bucket + " which is not in the threshold table")
	}
	var magnitude int64
	if unit > 0 {
		abs := sel.ElapsedSeconds
		if abs < 0 {
			abs = -abs
		}
		magnitude = max(abs/unit, 1)
	}
	return bucket.Phrase(sel.Rule.Bucket, magnitude, sel.Direction, loc)
}

// Format selects and renders in one step.
func (s *Selector) Format(target, reference value.TimeValue, zoneID string, loc locale.Locale) (string, error) {
	sel, err := s.Select(target, reference, zoneID)
	if err != nil {
		return "", err
	}
	return s.Render(sel, loc)
}
