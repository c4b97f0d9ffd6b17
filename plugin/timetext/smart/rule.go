// Package smart picks a rendering strategy from the calendar distance between
// a target and a reference instant.
package smart

import (
	"fmt"

	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
	"github.com/hrygo/timetext/plugin/timetext/locale"
)

// Predicate is a calendar-proximity test. Rules are checked in order.
type Predicate int

const (
	WithinMinute Predicate = iota + 1
	WithinHour
	SameDay
	PreviousDay
	NextDay
	WithinWeek
	SameYear
	Always
)

var predicateNames = map[Predicate]string{
	WithinMinute: "withinMinute",
	WithinHour:   "withinHour",
	SameDay:      "sameDay",
	PreviousDay:  "previousDay",
	NextDay:      "nextDay",
	WithinWeek:   "withinWeek",
	SameYear:     "sameYear",
	Always:       "always",
}

func (p Predicate) String() string {
	if s, ok := predicateNames[p]; ok {
		return s
	}
	return "unknown"
}

// ParsePredicate is the inverse of Predicate.String.
func ParsePredicate(s string) (Predicate, error) {
	for p, name := range predicateNames {
		if name == s {
			return p, nil
		}
	}
	return 0, terrors.InvalidConfig(fmt.Sprintf("unknown smart predicate %q", s))
}

// Strategy is how a matched rule renders.
type Strategy int

const (
	UseRelative Strategy = iota + 1
	UseTimeOnly
	UseWeekdayTime
	UseShortDate
	UseLongDate
)

var strategyNames = map[Strategy]string{
	UseRelative:    "relative",
	UseTimeOnly:    "timeOnly",
	UseWeekdayTime: "weekdayTime",
	UseShortDate:   "shortDate",
	UseLongDate:    "longDate",
}

func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return "unknown"
}

// ParseStrategy is the inverse of Strategy.String.
func ParseStrategy(s string) (Strategy, error) {
	for st, name := range strategyNames {
		if name == s {
			return st, nil
		}
	}
	return 0, terrors.InvalidConfig(fmt.Sprintf("unknown smart strategy %q", s))
}

// Rule pairs a predicate with the strategy used when it matches.
type Rule struct {
	When     Predicate
	Strategy Strategy
	// Pattern is the clock or date pattern for non-relative strategies.
	Pattern string
	// Bucket forces the relative bucket; empty classifies through the threshold table.
	Bucket string
	// DayKey is the locale fixed key used as the day word of UseWeekdayTime.
	// Empty uses the target's weekday name.
	DayKey string
}

var defaultRules = []Rule{
	{When: WithinMinute, Strategy: UseRelative, Bucket: locale.BucketJustNow},
	{When: WithinHour, Strategy: UseRelative, Bucket: locale.BucketMinutes},
	{When: SameDay, Strategy: UseTimeOnly, Pattern: "h:mm A"},
	{When: PreviousDay, Strategy: UseWeekdayTime, Pattern: "h:mm A", DayKey: locale.KeyYesterday},
	{When: NextDay, Strategy: UseWeekdayTime, Pattern: "h:mm A", DayKey: locale.KeyTomorrow},
	{When: WithinWeek, Strategy: UseWeekdayTime, Pattern: "h:mm A"},
	{When: SameYear, Strategy: UseShortDate, Pattern: "MMM D"},
	{When: Always, Strategy: UseLongDate, Pattern: "MMM D, YYYY"},
}

// DefaultRules returns a copy of the default rule list.
func DefaultRules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}

// ValidateRules checks that every rule is well formed and the list always matches.
func ValidateRules(rules []Rule) error {
	if len(rules) == 0 {
		return terrors.InvalidConfig("smart rule list is empty")
	}
	for i, r := range rules {
		if _, ok := predicateNames[r.When]; !ok {
			return terrors.InvalidConfig(fmt.Sprintf("smart rule %d has no predicate", i))
		}
		if _, ok := strategyNames[r.Strategy]; !ok {
			return terrors.InvalidConfig(fmt.Sprintf("smart rule %d has no strategy", i))
		}
		if r.Strategy != UseRelative && r.Pattern == "" {
			return terrors.InvalidConfig(fmt.Sprintf("smart rule %d (%s) needs a pattern", i, r.When))
		}
	}
	if rules[len(rules)-1].When != Always {
		return terrors.InvalidConfig("the last smart rule must use the always predicate")
	}
	return nil
}
