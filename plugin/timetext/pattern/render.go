package pattern

import (
	"strconv"
	"strings"
	"time"

	"github.com/hrygo/timetext/plugin/timetext/locale"
	"github.com/hrygo/timetext/plugin/timetext/timezone"
	"github.com/hrygo/timetext/plugin/timetext/value"
)

// DisplayTime returns v's instant in the zone it should be shown in: its origin
// zone, else its origin offset, else UTC. Offsets are cut to whole minutes so
// the rendered offset and wall clock agree, and a wall clock outside years
// 1-9999 is shown in UTC.
func DisplayTime(v value.TimeValue, zones timezone.Provider) (time.Time, error) {
	t := time.UnixMilli(v.Millis())
	d := t.UTC()
	if zone, ok := v.Zone(); ok {
		loc, err := zones.Location(zone)
		if err != nil {
			return time.Time{}, err
		}
		d = t.In(loc)
		if name, off := d.Zone(); off%60 != 0 {
			d = t.In(time.FixedZone(name, off-off%60))
		}
	} else if off, ok := v.OffsetMinutes(); ok {
		d = t.In(timezone.FixedOffset(off))
	}
	if y := d.Year(); y < 1 || y > 9999 {
		return t.UTC(), nil
	}
	return d, nil
}

// Render renders tokens for v in v's display zone.
func Render(tokens []Token, v value.TimeValue, names locale.Names) (string, error) {
	return RenderWith(tokens, v, names, timezone.Default())
}

// RenderWith is Render with an explicit zone provider.
func RenderWith(tokens []Token, v value.TimeValue, names locale.Names, zones timezone.Provider) (string, error) {
	if err := v.Validate(); err != nil {
		return "", err
	}
	t, err := DisplayTime(v, zones)
	if err != nil {
		return "", err
	}
	return RenderTime(tokens, t, names), nil
}

// RenderTime renders tokens against the wall clock of t.
func RenderTime(tokens []Token, t time.Time, names locale.Names) string {
	var sb strings.Builder
	for _, tok := range tokens {
		if tok.IsLiteral() {
			sb.WriteString(tok.Literal)
			continue
		}
		sb.WriteString(renderField(tok, t, names))
	}
	return sb.String()
}

func renderField(tok Token, t time.Time, names locale.Names) string {
	switch tok.Field {
	case FieldYear:
		return pad(t.Year(), tok.Pad)
	case FieldYearShort:
		return pad(t.Year()%100, tok.Pad)
	case FieldMonthNumeric:
		return pad(int(t.Month()), tok.Pad)
	case FieldMonthShort:
		return applyCase(names.MonthShort(t.Month()), tok.Case)
	case FieldMonthFull:
		return applyCase(names.MonthFull(t.Month()), tok.Case)
	case FieldDay:
		return pad(t.Day(), tok.Pad)
	case FieldDayOrdinal:
		return Ordinal(t.Day())
	case FieldWeekdayShort:
		return applyCase(names.WeekdayShort(t.Weekday()), tok.Case)
	case FieldWeekdayFull:
		return applyCase(names.WeekdayFull(t.Weekday()), tok.Case)
	case FieldHour12:
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		return pad(h, tok.Pad)
	case FieldHour24:
		return pad(t.Hour(), tok.Pad)
	case FieldMinute:
		return pad(t.Minute(), tok.Pad)
	case FieldSecond:
		return pad(t.Second(), tok.Pad)
	case FieldMillisecond:
		return pad(t.Nanosecond()/int(time.Millisecond), tok.Pad)
	case FieldAmPm:
		return applyCase(names.Meridiem(t.Hour()), tok.Case)
	case FieldUTCOffset:
		_, off := t.Zone()
		return timezone.FormatOffset(int32(off/60), !tok.Compact)
	default:
		return ""
	}
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

func applyCase(s string, c Case) string {
	switch c {
	case CaseUpper:
		return strings.ToUpper(s)
	case CaseLower:
		return strings.ToLower(s)
	default:
		return s
	}
}

// Ordinal formats n with its English ordinal suffix: 1st, 2nd, 3rd, 4th, 11th, 21st.
func Ordinal(n int) string {
	suffix := "th"
	abs := n
	if abs < 0 {
		abs = -abs
	}
	if r := abs % 100; r < 11 || r > 13 {
		switch abs % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
