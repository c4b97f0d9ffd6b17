package natural

import (
	"time"

	"github.com/hrygo/timetext/plugin/timetext/timezone"
)

// Node is an expression tree node. Nodes are built by one parse call and not shared.
type Node interface {
	node()
}

// AnchorKind enumerates the starting points an expression can name.
type AnchorKind int

const (
	AnchorNow AnchorKind = iota + 1
	// AnchorDay is today shifted by Shift days, at 00:00.
	AnchorDay
	// AnchorWeekday is a named weekday, qualified by Qualifier.
	AnchorWeekday
	// AnchorPeriod is the start of the week, month or year shifted by Shift units.
	AnchorPeriod
	// AnchorDate is a calendar date at 00:00.
	AnchorDate
	// AnchorInstant is an absolute timestamp.
	AnchorInstant
)

// Qualifier narrows which occurrence of a weekday is meant.
type Qualifier int

const (
	// QualNearest is the next occurrence, 1-7 days ahead.
	QualNearest Qualifier = iota
	// QualNext is strictly within the following 1-7 days.
	QualNext
	// QualLast is strictly within the preceding 1-7 days.
	QualLast
	// QualThis is the occurrence inside the current week.
	QualThis
)

// Anchor is a leaf resolved against the reference instant.
type Anchor struct {
	Kind      AnchorKind
	Shift     int
	Weekday   time.Weekday
	Qualifier Qualifier
	Unit      timezone.Unit
	Year      int
	Month     time.Month
	Day       int
	Millis    int64
}

// OffsetUnit is the unit of an additive offset.
type OffsetUnit int

const (
	OffsetSecond OffsetUnit = iota + 1
	OffsetMinute
	OffsetHour
	OffsetDay
	OffsetWeek
	OffsetMonth
	OffsetYear
)

// Offset moves Base by Amount units; Amount is negative for past offsets.
type Offset struct {
	Base   Node
	Amount int64
	Unit   OffsetUnit
}

// Edge selects the first or last instant of a unit.
type Edge int

const (
	EdgeStart Edge = iota
	EdgeEnd
)

// BoundaryOf snaps Base to an edge of its calendar unit.
type BoundaryOf struct {
	Base Node
	Unit timezone.Unit
	Edge Edge
}

// TimeOfDay replaces the clock of Base, keeping its calendar date.
type TimeOfDay struct {
	Base   Node
	Hour   int
	Minute int
	Second int
}

func (*Anchor) node()     {}
func (*Offset) node()     {}
func (*BoundaryOf) node() {}
func (*TimeOfDay) node()  {}
