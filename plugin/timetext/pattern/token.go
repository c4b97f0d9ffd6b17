// Package pattern compiles format patterns into tokens and renders them.
//
// Two dialects are supported. The letter dialect follows moment.js conventions
// ("YYYY-MM-DD", "[at] h:mm A"); the bracket dialect names fields explicitly
// ("{year}-{month:pad}-{day:pad}").
package pattern

// FieldKind enumerates the renderable fields.
type FieldKind int

const (
	FieldYear FieldKind = iota + 1
	FieldYearShort
	FieldMonthNumeric
	FieldMonthShort
	FieldMonthFull
	FieldDay
	FieldDayOrdinal
	FieldWeekdayShort
	FieldWeekdayFull
	FieldHour12
	FieldHour24
	FieldMinute
	FieldSecond
	FieldMillisecond
	FieldAmPm
	FieldUTCOffset
)

var fieldNames = map[FieldKind]string{
	FieldYear:         "year",
	FieldYearShort:    "yearShort",
	FieldMonthNumeric: "month",
	FieldMonthShort:   "monthShort",
	FieldMonthFull:    "monthFull",
	FieldDay:          "day",
	FieldDayOrdinal:   "dayOrdinal",
	FieldWeekdayShort: "weekdayShort",
	FieldWeekdayFull:  "weekdayFull",
	FieldHour12:       "hour12",
	FieldHour24:       "hour24",
	FieldMinute:       "minute",
	FieldSecond:       "second",
	FieldMillisecond:  "millisecond",
	FieldAmPm:         "ampm",
	FieldUTCOffset:    "utcOffset",
}

// String returns the bracket-dialect name of the field.
func (k FieldKind) String() string {
	if s, ok := fieldNames[k]; ok {
		return s
	}
	return "unknown"
}

// numeric reports whether the field renders an integer and honors padding.
func (k FieldKind) numeric() bool {
	switch k {
	case FieldYear, FieldYearShort, FieldMonthNumeric, FieldDay,
		FieldHour12, FieldHour24, FieldMinute, FieldSecond, FieldMillisecond:
		return true
	}
	return false
}

// padWidth is the width used when a numeric field is declared padded.
func (k FieldKind) padWidth() int {
	switch k {
	case FieldYear:
		return 4
	case FieldMillisecond:
		return 3
	default:
		return 2
	}
}

// Case selects a case transform for text fields.
type Case int

const (
	CaseAsIs Case = iota
	CaseUpper
	CaseLower
)

// Token is one render step: a literal when Field is zero, a field otherwise.
type Token struct {
	Literal string
	Field   FieldKind
	// Pad is the zero-padding width; 0 renders the bare integer.
	Pad  int
	Case Case
	// Compact renders a utcOffset as +hhmm instead of +hh:mm.
	Compact bool
}

// IsLiteral reports whether t is literal text.
func (t Token) IsLiteral() bool {
	return t.Field == 0
}

// Lit builds a literal token.
func Lit(s string) Token {
	return Token{Literal: s}
}

// Dialect selects the pattern syntax.
type Dialect int

const (
	DialectLetter Dialect = iota
	DialectBracket
)

func (d Dialect) String() string {
	if d == DialectBracket {
		return "bracket"
	}
	return "letter"
}
