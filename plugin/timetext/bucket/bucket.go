// Package bucket classifies elapsed durations into named buckets and phrases them.
package bucket

import (
	"fmt"

	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
	"github.com/hrygo/timetext/plugin/timetext/locale"
	"github.com/hrygo/timetext/plugin/timetext/value"
)

// Unit sizes in seconds. Month and year use the mean Gregorian lengths.
const (
	UnitSecond int64 = 1
	UnitMinute int64 = 60
	UnitHour   int64 = 3600
	UnitDay    int64 = 86400
	UnitWeek   int64 = 604800
	UnitMonth  int64 = 2629746
	UnitYear   int64 = 31556952
)

// Threshold is one row of the table. A duration falls in the first row whose
// Cutoff exceeds it; Cutoff 0 marks the unbounded last row. Unit 0 marks a
// qualitative bucket whose magnitude is always 0.
type Threshold struct {
	Name   string `json:"name" mapstructure:"name" validate:"required"`
	Cutoff int64  `json:"cutoff" mapstructure:"cutoff" validate:"gte=0"`
	Unit   int64  `json:"unit" mapstructure:"unit" validate:"gte=0"`
}

// Table is an ordered threshold list.
type Table []Threshold

var defaultTable = Table{
	{Name: locale.BucketJustNow, Cutoff: 30, Unit: 0},
	{Name: locale.BucketSeconds, Cutoff: 60, Unit: UnitSecond},
	{Name: locale.BucketMinutes, Cutoff: 3600, Unit: UnitMinute},
	{Name: locale.BucketHours, Cutoff: 86400, Unit: UnitHour},
	{Name: locale.BucketDays, Cutoff: 604800, Unit: UnitDay},
	{Name: locale.BucketWeeks, Cutoff: 2592000, Unit: UnitWeek},
	{Name: locale.BucketMonths, Cutoff: 31536000, Unit: UnitMonth},
	{Name: locale.BucketYears, Cutoff: 0, Unit: UnitYear},
}

// DefaultTable returns a copy of the default thresholds.
func DefaultTable() Table {
	out := make(Table, len(defaultTable))
	copy(out, defaultTable)
	return out
}

// Validate checks the table is non-empty, strictly increasing, uniquely named
// and ends with the unbounded row.
func (t Table) Validate() error {
	if len(t) == 0 {
		return terrors.InvalidConfig("threshold table is empty")
	}
	seen := make(map[string]struct{}, len(t))
	var prev int64
	for i, row := range t {
		if row.Name == "" {
			return terrors.InvalidConfig(fmt.Sprintf("threshold %d has no name", i))
		}
		if _, dup := seen[row.Name]; dup {
			return terrors.InvalidConfig(fmt.Sprintf("threshold name %q is repeated", row.Name))
		}
		seen[row.Name] = struct{}{}
		if row.Unit < 0 {
			return terrors.InvalidConfig(fmt.Sprintf("threshold %q has a negative unit", row.Name))
		}

		last := i == len(t)-1
		switch {
		case last && row.Cutoff != 0:
			return terrors.InvalidConfig(fmt.Sprintf("last threshold %q must be unbounded (cutoff 0)", row.Name))
		case !last && row.Cutoff <= prev:
			return terrors.InvalidConfig(fmt.Sprintf("threshold %q cutoff %d does not exceed %d", row.Name, row.Cutoff, prev))
		}
		prev = row.Cutoff
	}
	return nil
}

// CheckLocale returns MISSING_LOCALE_ENTRY for the first bucket p cannot phrase.
func (t Table) CheckLocale(p locale.Phraser) error {
	for _, row := range t {
		if !p.Has(row.Name) {
			return terrors.MissingLocaleEntry("", row.Name).WithHint("every threshold needs a phrase in the active locale")
		}
	}
	return nil
}

// Classify maps an elapsed duration to its bucket and magnitude. The sign of
// elapsedSeconds is ignored; the caller tracks direction.
func Classify(elapsedSeconds int64, table Table) (string, int64) {
	abs := elapsedSeconds
	if abs < 0 {
		abs = -abs
	}
	row := table[len(table)-1]
	for _, r := range table {
		if r.Cutoff == 0 || abs < r.Cutoff {
			row = r
			break
		}
	}
	if row.Unit == 0 {
		return row.Name, 0
	}
	// Month and year units are longer than their buckets' lower cutoffs.
	return row.Name, max(abs/row.Unit, 1)
}

// DirectionOf is Past when target is at or before reference.
func DirectionOf(target, reference value.TimeValue) locale.Direction {
	if target.Millis()-reference.Millis() <= 0 {
		return locale.Past
	}
	return locale.Future
}

// Phrase renders a classified bucket. A one-day magnitude in the days bucket
// uses the locale's yesterday/tomorrow word.
func Phrase(bucket string, magnitude int64, dir locale.Direction, p locale.Phraser) (string, error) {
	if bucket == locale.BucketDays && magnitude == 1 {
		key := locale.KeyYesterday
		if dir == locale.Future {
			key = locale.KeyTomorrow
		}
		return p.Fixed(key)
	}
	return p.Phrase(bucket, magnitude, dir)
}

// Relative phrases target relative to reference, e.g. "5 minutes ago" or "in 3 days".
func Relative(target, reference value.TimeValue, table Table, p locale.Phraser) (string, error) {
	if err := target.Validate(); err != nil {
		return "", err
	}
	if err := reference.Validate(); err != nil {
		return "", err
	}
	diff := reference.Millis() - target.Millis()
	name, magnitude := Classify(diff/1000, table)
	return Phrase(name, magnitude, DirectionOf(target, reference), p)
}
