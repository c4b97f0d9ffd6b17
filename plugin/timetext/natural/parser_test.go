package natural

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
	"github.com/hrygo/timetext/plugin/timetext/value"
)

// Monday 2024-01-15 12:00 UTC
var monday = value.FromTime(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))

func newParser() *Parser {
	return NewParser(nil, time.Monday, Limits{})
}

func wall(t *testing.T, v value.TimeValue, zone string) string {
	t.Helper()
	loc, err := time.LoadLocation(zone)
	require.NoError(t, err)
	return v.Time().In(loc).Format("2006-01-02 15:04:05.000")
}

func TestParse_Expressions(t *testing.T) {
	p := newParser()

	tests := []struct {
		input string
		want  string
	}{
		// anchors
		{"now", "2024-01-15 12:00:00.000"},
		{"right now", "2024-01-15 12:00:00.000"},
		{"today", "2024-01-15 00:00:00.000"},
		{"tomorrow", "2024-01-16 00:00:00.000"},
		{"yesterday", "2024-01-14 00:00:00.000"},
		{"the day after tomorrow", "2024-01-17 00:00:00.000"},
		{"day before yesterday", "2024-01-13 00:00:00.000"},
		{"monday", "2024-01-22 00:00:00.000"},
		{"monday at 3pm", "2024-01-22 15:00:00.000"},
		{"friday", "2024-01-19 00:00:00.000"},
		{"next friday", "2024-01-19 00:00:00.000"},
		{"next monday", "2024-01-22 00:00:00.000"},
		{"last monday", "2024-01-08 00:00:00.000"},
		{"last friday", "2024-01-12 00:00:00.000"},
		{"this sunday", "2024-01-21 00:00:00.000"},
		{"next week", "2024-01-22 00:00:00.000"},
		{"last week", "2024-01-08 00:00:00.000"},
		{"this month", "2024-01-01 00:00:00.000"},
		{"last month", "2023-12-01 00:00:00.000"},
		{"next year", "2025-01-01 00:00:00.000"},
		{"2024-03-01", "2024-03-01 00:00:00.000"},
		{"2024-03-01 15:30", "2024-03-01 15:30:00.000"},
		{"2024-01-15T08:00:00Z", "2024-01-15 08:00:00.000"},
		{"jan 20", "2024-01-20 00:00:00.000"},
		{"March 5th, 2025 at 9:15am", "2025-03-05 09:15:00.000"},

		// offsets
		{"in 5 days", "2024-01-20 12:00:00.000"},
		{"5 days ago", "2024-01-10 12:00:00.000"},
		{"in 30 seconds", "2024-01-15 12:00:30.000"},
		{"in 10 mins", "2024-01-15 12:10:00.000"},
		{"an hour from now", "2024-01-15 13:00:00.000"},
		{"a week ago", "2024-01-08 12:00:00.000"},
		{"two weeks ago", "2024-01-01 12:00:00.000"},
		{"in 1 day and 2 hours", "2024-01-16 14:00:00.000"},
		{"1 year 2 months ago", "2022-11-15 12:00:00.000"},
		{"in 3 months", "2024-04-15 12:00:00.000"},
		{"tomorrow in 2 hours", "2024-01-16 02:00:00.000"},

		// time of day
		{"tomorrow at 3pm", "2024-01-16 15:00:00.000"},
		{"3pm tomorrow", "2024-01-16 15:00:00.000"},
		{"TOMORROW   At 3 PM", "2024-01-16 15:00:00.000"},
		{"tomorrow at 3:30 p.m.", "2024-01-16 15:30:00.000"},
		{"at 12am", "2024-01-15 00:00:00.000"},
		{"at 9", "2024-01-15 09:00:00.000"},
		{"17:45", "2024-01-15 17:45:00.000"},
		{"at noon", "2024-01-15 12:00:00.000"},
		{"midnight", "2024-01-15 00:00:00.000"},
		{"tomorrow morning", "2024-01-16 09:00:00.000"},
		{"friday afternoon", "2024-01-19 14:00:00.000"},
		{"tomorrow in the evening", "2024-01-16 18:00:00.000"},
		{"this evening", "2024-01-15 18:00:00.000"},
		{"tonight", "2024-01-15 21:00:00.000"},
		{"tonight at 10pm", "2024-01-15 22:00:00.000"},
		{"in 5 days at 9am", "2024-01-20 09:00:00.000"},
		{"at 9am in 5 days", "2024-01-20 09:00:00.000"},

		// boundaries
		{"start of week", "2024-01-15 00:00:00.000"},
		{"end of month", "2024-01-31 23:59:59.999"},
		{"end of the day", "2024-01-15 23:59:59.999"},
		{"beginning of the year", "2024-01-01 00:00:00.000"},
		{"end of next month", "2024-02-29 23:59:59.999"},
		{"start of last week", "2024-01-08 00:00:00.000"},
		{"end of month at 5pm", "2024-01-31 17:00:00.000"},
		{"next friday end of week", "2024-01-21 23:59:59.999"},
		{"in 2 weeks then start of week", "2024-01-29 00:00:00.000"},

		// normalization
		{"ｔｏｍｏｒｒｏｗ", "2024-01-16 00:00:00.000"},
		{"tomorrow,\tat 3pm", "2024-01-16 15:00:00.000"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := p.Parse(tt.input, monday, "UTC")
			require.NoError(t, err)
			assert.Equal(t, tt.want, wall(t, got, "UTC"))
		})
	}
}

func TestParse_NotRecognized(t *testing.T) {
	p := newParser()
	inputs := []string{
		"gibberish xyz",
		"",
		"   ",
		"next",
		"in days",
		"25:00",
		"at 13pm",
		"feb 30 2024",
		"tomorrow tomorrow",
		"3 days",
		"end of fortnight",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			v, ok, err := p.TryParse(input, monday, "UTC")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, value.TimeValue{}, v)
			assert.False(t, p.CanParse(input, monday, "UTC"))

			_, err = p.Parse(input, monday, "UTC")
			require.Error(t, err)
			assert.True(t, terrors.IsCode(err, terrors.ErrCodeParseFailed))
		})
	}
}

func TestParse_CapturesUnmatchedSubstring(t *testing.T) {
	_, err := newParser().Parse("tomorrow at 3pm xyzzy plugh", monday, "UTC")
	require.Error(t, err)
	e, ok := terrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "xyzzy plugh", e.Input)
}

func TestParse_InputTooLong(t *testing.T) {
	p := newParser()
	long := strings.Repeat("a", 600)

	_, err := p.Parse(long, monday, "UTC")
	require.Error(t, err)
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeInputTooLong))

	// The non-throwing form still reports bound violations.
	_, ok, err := p.TryParse(long, monday, "UTC")
	assert.False(t, ok)
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeInputTooLong))

	// At the limit the input reaches the grammar.
	_, err = p.Parse(strings.Repeat("a", DefaultMaxInputLength), monday, "UTC")
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeParseFailed))

	// The limit counts characters, not bytes.
	_, err = p.Parse(strings.Repeat("日", DefaultMaxInputLength), monday, "UTC")
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeParseFailed))
}

func TestParse_DepthBound(t *testing.T) {
	p := newParser()
	clauses := func(n int) string {
		return strings.TrimSpace(strings.Repeat("in 1 day ", n))
	}

	got, err := p.Parse(clauses(5), monday, "UTC")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-20 12:00:00.000", wall(t, got, "UTC"))

	_, err = p.Parse(clauses(6), monday, "UTC")
	require.Error(t, err)
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeParseDepthExceeded))

	_, err = p.Parse("end of month start of month end of month start of month end of month start of month", monday, "UTC")
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeParseDepthExceeded))

	// A tighter limit applies to each unit pair of a compound offset.
	tight := NewParser(nil, time.Monday, Limits{MaxDepth: 2})
	_, err = tight.Parse("1 day 2 hours 3 minutes ago", monday, "UTC")
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeParseDepthExceeded))
}

func TestParse_ZoneAwareDates(t *testing.T) {
	p := newParser()
	// 03:00 UTC is 22:00 on the 14th in New York.
	ref := value.FromTime(time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC))

	got, err := p.Parse("today", ref, "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-14 00:00:00.000", wall(t, got, "America/New_York"))

	zone, ok := got.Zone()
	require.True(t, ok)
	assert.Equal(t, "America/New_York", zone)
	off, ok := got.OffsetMinutes()
	require.True(t, ok)
	assert.Equal(t, int32(-300), off)
}

func TestParse_CalendarDaysAcrossDST(t *testing.T) {
	p := newParser()
	// Noon EST on the day before the 2024 spring-forward.
	ref := value.FromTime(time.Date(2024, 3, 9, 17, 0, 0, 0, time.UTC))

	got, err := p.Parse("in 1 day", ref, "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10 12:00:00.000", wall(t, got, "America/New_York"))
	assert.Equal(t, 23*time.Hour, got.Sub(ref))

	got, err = p.Parse("in 24 hours", ref, "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10 13:00:00.000", wall(t, got, "America/New_York"))
}

func TestParse_MonthArithmeticClamps(t *testing.T) {
	ref := value.FromTime(time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC))
	got, err := newParser().Parse("in 1 month", ref, "UTC")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29 12:00:00.000", wall(t, got, "UTC"))
}

func TestParse_WeekStart(t *testing.T) {
	p := NewParser(nil, time.Sunday, Limits{})
	got, err := p.Parse("start of week", monday, "UTC")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-14 00:00:00.000", wall(t, got, "UTC"))
}

func TestParse_InvalidZone(t *testing.T) {
	_, _, err := newParser().TryParse("tomorrow", monday, "Mars/Olympus")
	require.Error(t, err)
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeInvalidTimezone))
}

func TestBuild_TreeShape(t *testing.T) {
	root, err := newParser().Build("at 9am in 5 days")
	require.NoError(t, err)

	tod, ok := root.(*TimeOfDay)
	require.True(t, ok, "time of day is applied last")
	assert.Equal(t, 9, tod.Hour)

	off, ok := tod.Base.(*Offset)
	require.True(t, ok)
	assert.Equal(t, int64(5), off.Amount)
	assert.Equal(t, OffsetDay, off.Unit)

	anchor, ok := off.Base.(*Anchor)
	require.True(t, ok)
	assert.Equal(t, AnchorNow, anchor.Kind)
}

func TestParseRange(t *testing.T) {
	p := newParser()
	tests := []struct {
		input      string
		start, end string
	}{
		{"today", "2024-01-15 00:00:00.000", "2024-01-16 00:00:00.000"},
		{"yesterday", "2024-01-14 00:00:00.000", "2024-01-15 00:00:00.000"},
		{"friday", "2024-01-19 00:00:00.000", "2024-01-20 00:00:00.000"},
		{"this week", "2024-01-15 00:00:00.000", "2024-01-22 00:00:00.000"},
		{"next week", "2024-01-22 00:00:00.000", "2024-01-29 00:00:00.000"},
		{"this month", "2024-01-01 00:00:00.000", "2024-02-01 00:00:00.000"},
		{"last month", "2023-12-01 00:00:00.000", "2024-01-01 00:00:00.000"},
		{"last year", "2023-01-01 00:00:00.000", "2024-01-01 00:00:00.000"},
		{"tomorrow at 3pm", "2024-01-16 15:00:00.000", "2024-01-16 16:00:00.000"},
		{"in 2 hours", "2024-01-15 14:00:00.000", "2024-01-15 15:00:00.000"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, err := p.ParseRange(tt.input, monday, "UTC")
			require.NoError(t, err)
			assert.Equal(t, tt.start, wall(t, r.Start, "UTC"))
			assert.Equal(t, tt.end, wall(t, r.End, "UTC"))
		})
	}

	_, err := p.ParseRange("gibberish", monday, "UTC")
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeParseFailed))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "next friday at 3 pm", normalize("  Next​ FRIDAY\tat  3 PM "))
	assert.Equal(t, "tomorrow", normalize("ＴＯＭＯＲＲＯＷ"))
	assert.Equal(t, []string{"jan", "15", "2024"}, tokenize("jan 15, 2024"))
}
