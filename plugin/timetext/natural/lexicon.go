package natural

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hrygo/timetext/plugin/timetext/timezone"
)

var (
	// 3, 3pm, 3:30, 3:30pm, 15:30:05
	clockPattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?(?::(\d{2}))?(am|pm|a\.m\.|p\.m\.)?$`)
	// 15, 15th, 1st
	dayOfMonthPattern = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?$`)
	isoDatePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearPattern       = regexp.MustCompile(`^\d{4}$`)
)

// maxAmount bounds offset amounts so evaluation cannot overflow.
const maxAmount = 1_000_000

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var offsetUnits = map[string]OffsetUnit{
	"second": OffsetSecond, "seconds": OffsetSecond, "sec": OffsetSecond, "secs": OffsetSecond,
	"minute": OffsetMinute, "minutes": OffsetMinute, "min": OffsetMinute, "mins": OffsetMinute,
	"hour": OffsetHour, "hours": OffsetHour, "hr": OffsetHour, "hrs": OffsetHour,
	"day": OffsetDay, "days": OffsetDay,
	"week": OffsetWeek, "weeks": OffsetWeek, "wk": OffsetWeek, "wks": OffsetWeek,
	"month": OffsetMonth, "months": OffsetMonth,
	"year": OffsetYear, "years": OffsetYear, "yr": OffsetYear, "yrs": OffsetYear,
}

var calendarUnits = map[string]timezone.Unit{
	"day":   timezone.UnitDay,
	"week":  timezone.UnitWeek,
	"month": timezone.UnitMonth,
	"year":  timezone.UnitYear,
}

var numberWords = map[string]int64{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

// namedTimes maps words to a clock time.
var namedTimes = map[string][2]int{
	"morning":   {9, 0},
	"noon":      {12, 0},
	"midday":    {12, 0},
	"afternoon": {14, 0},
	"evening":   {18, 0},
	"night":     {21, 0},
	"midnight":  {0, 0},
}

// dayWords maps single-word day anchors to their shift from today.
var dayWords = map[string]int{
	"today":     0,
	"tonight":   0,
	"tomorrow":  1,
	"tmr":       1,
	"yesterday": -1,
}

var qualifiers = map[string]Qualifier{
	"next": QualNext,
	"last": QualLast,
	"this": QualThis,
}

func amount(tok string) (int64, bool) {
	if n, ok := numberWords[tok]; ok {
		return n, true
	}
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil || n < 0 || n > maxAmount {
		return 0, false
	}
	return n, true
}

// clock parses a clock token. A bare hour is only a clock when explicit is
// set (it followed "at") or a meridiem is supplied by the next token.
func clock(tok, next string, explicit bool) (h, m, s int, consumed int, ok bool) {
	match := clockPattern.FindStringSubmatch(tok)
	if match == nil {
		return 0, 0, 0, 0, false
	}
	h, _ = strconv.Atoi(match[1])
	if match[2] != "" {
		m, _ = strconv.Atoi(match[2])
	}
	if match[3] != "" {
		s, _ = strconv.Atoi(match[3])
	}
	meridiem := strings.ReplaceAll(match[4], ".", "")
	consumed = 1
	if meridiem == "" {
		if mer := strings.ReplaceAll(next, ".", ""); mer == "am" || mer == "pm" {
			meridiem = mer
			consumed = 2
		}
	}
	if meridiem == "" && match[2] == "" && !explicit {
		return 0, 0, 0, 0, false
	}
	if m > 59 || s > 59 {
		return 0, 0, 0, 0, false
	}
	switch meridiem {
	case "am", "pm":
		if h < 1 || h > 12 {
			return 0, 0, 0, 0, false
		}
		h %= 12
		if meridiem == "pm" {
			h += 12
		}
	default:
		if h > 23 {
			return 0, 0, 0, 0, false
		}
	}
	return h, m, s, consumed, true
}
