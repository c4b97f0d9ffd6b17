package pattern

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
	"github.com/hrygo/timetext/plugin/timetext/locale"
	"github.com/hrygo/timetext/plugin/timetext/value"
)

// Monday 2024-01-15 12:00:00.123 UTC
var ref = value.FromMillis(time.Date(2024, 1, 15, 12, 0, 0, 123e6, time.UTC).UnixMilli())

func english(t *testing.T) *locale.Table {
	t.Helper()
	table, err := locale.Builtin().Lookup("en")
	require.NoError(t, err)
	return table
}

func render(t *testing.T, pattern string, v value.TimeValue) string {
	t.Helper()
	tokens, err := Compile(pattern, Detect(pattern))
	require.NoError(t, err)
	out, err := Render(tokens, v, english(t))
	require.NoError(t, err)
	return out
}

func TestCompileLetter_Tokens(t *testing.T) {
	tokens, err := Compile("YYYY-MM-DD", DialectLetter)
	require.NoError(t, err)
	require.Len(t, tokens, 5)
	assert.Equal(t, Token{Field: FieldYear, Pad: 4}, tokens[0])
	assert.Equal(t, Lit("-"), tokens[1])
	assert.Equal(t, Token{Field: FieldMonthNumeric, Pad: 2}, tokens[2])
	assert.Equal(t, Token{Field: FieldDay, Pad: 2}, tokens[4])
}

func TestCompileLetter_GreedyAndLiterals(t *testing.T) {
	tokens, err := Compile("YYYYY", DialectLetter)
	require.NoError(t, err)
	assert.Equal(t, []Token{{Field: FieldYear, Pad: 4}, Lit("Y")}, tokens)

	tokens, err = Compile("[at] h:mm", DialectLetter)
	require.NoError(t, err)
	assert.Equal(t, []Token{
		Lit("at "),
		{Field: FieldHour12},
		Lit(":"),
		{Field: FieldMinute, Pad: 2},
	}, tokens)

	// Unknown characters merge into one literal.
	tokens, err = Compile("QQ~", DialectLetter)
	require.NoError(t, err)
	assert.Equal(t, []Token{Lit("QQ~")}, tokens)
}

func TestCompileLetter_UnterminatedLiteral(t *testing.T) {
	_, err := Compile("YYYY [oops", DialectLetter)
	require.Error(t, err)
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeUnterminatedLiteral))
	e, ok := terrors.As(err)
	require.True(t, ok)
	assert.Equal(t, 5, e.Context["offset"])
}

func TestCompileBracket(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    string
		code    terrors.ErrorCode
	}{
		{"full date", "{weekdayFull}, {monthFull} {dayOrdinal} {year}", "Monday, January 15th 2024", ""},
		{"pad modifier", "{hour24:pad}:{minute}:{second}.{millisecond}", "12:00:00.123", ""},
		{"upper", "{monthShort:upper} {day}", "JAN 15", ""},
		{"lower ampm", "{hour12}{ampm:lower}", "12pm", ""},
		{"compact offset", "{utcOffset:compact}", "+0000", ""},
		{"malformed braces stay literal", "{ year } {year", "{ year } {year", ""},
		{"unknown field", "{year}-{fortnight}", "", terrors.ErrCodeUnknownField},
		{"unknown modifier", "{year:shout}", "", terrors.ErrCodeUnknownField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Compile(tt.pattern, DialectBracket)
			if tt.code != "" {
				require.Error(t, err)
				assert.True(t, terrors.IsCode(err, tt.code))
				return
			}
			require.NoError(t, err)
			out, err := Render(tokens, ref, english(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestDetect(t *testing.T) {
	assert.Equal(t, DialectBracket, Detect("{year}-{month}"))
	assert.Equal(t, DialectLetter, Detect("YYYY-MM-DD"))
	assert.Equal(t, DialectLetter, Detect("{ not a token }"))
}

func TestRender_Presets(t *testing.T) {
	presets := DefaultPresets()
	tests := []struct {
		preset string
		want   string
	}{
		{PresetISO, "2024-01-15T12:00:00.123+00:00"},
		{PresetDate, "2024-01-15"},
		{PresetTime, "12:00 PM"},
		{PresetDateTime, "Jan 15, 2024 12:00 PM"},
		{PresetShortDate, "Jan 15"},
		{PresetLongDate, "Jan 15, 2024"},
		{PresetWeekdayTime, "Monday"},
		{PresetRFC2822, "Mon, 15 Jan 2024 12:00:00 +0000"},
	}
	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, presets[tt.preset], ref))
		})
	}
}

func TestRender_DisplayZone(t *testing.T) {
	ny := ref.WithZone("America/New_York")
	assert.Equal(t, "2024-01-15 07:00 -05:00", render(t, "YYYY-MM-DD HH:mm Z", ny))

	india := ref.WithOffset(330)
	assert.Equal(t, "17:30 +05:30", render(t, "HH:mm Z", india))

	// New York kept local mean time (-4:56:02) until 1883.
	lmt := value.FromMillis(time.Date(1850, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli()).WithZone("America/New_York")
	assert.Equal(t, "07:04:00 -04:56", render(t, "HH:mm:ss Z", lmt))

	// A wall clock past year 9999 is shown in UTC.
	last := value.FromMillis(value.MaxMillis).WithOffset(345)
	assert.Equal(t, "9999-12-31 23:59", render(t, "YYYY-MM-DD HH:mm", last))

	_, err := Render([]Token{Lit("x")}, ref.WithZone("Mars/Olympus"), english(t))
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeInvalidTimezone))
}

func TestRender_Hour12AndPadding(t *testing.T) {
	midnight := value.FromMillis(time.Date(2024, 3, 5, 0, 7, 9, 0, time.UTC).UnixMilli())
	assert.Equal(t, "12:07 AM", render(t, "h:mm A", midnight))
	assert.Equal(t, "12:07:09 am", render(t, "hh:mm:ss a", midnight))
	assert.Equal(t, "3/5/24 0:7:9", render(t, "M/D/YY H:m:s", midnight))
	assert.Equal(t, "2024年3月5日", render(t, "YYYY年M月D日", midnight))

	early := value.FromMillis(time.Date(987, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli())
	assert.Equal(t, "0987", render(t, "YYYY", early))
}

func TestRender_InvalidInstant(t *testing.T) {
	tokens, err := Compile("YYYY", DialectLetter)
	require.NoError(t, err)
	_, err = Render(tokens, value.FromMillis(value.MaxMillis+1), english(t))
	require.Error(t, err)
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeInvalidInstant))
}

func TestISORoundTrip(t *testing.T) {
	tokens, err := Compile(DefaultPresets()[PresetISO], DialectLetter)
	require.NoError(t, err)

	values := []value.TimeValue{
		ref,
		value.FromMillis(0),
		value.FromMillis(value.MinMillis),
		value.FromMillis(value.MaxMillis),
		value.FromMillis(1705320000999).WithZone("Asia/Tokyo"),
		value.FromMillis(-1).WithOffset(-150),
		value.FromMillis(time.Date(1850, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli()).WithZone("America/New_York"),
		value.FromMillis(time.Date(1800, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()).WithZone("Asia/Kolkata"),
		value.FromMillis(value.MaxMillis).WithOffset(345),
		value.FromMillis(value.MinMillis).WithOffset(-300),
	}
	for _, v := range values {
		t.Run(v.String(), func(t *testing.T) {
			text, err := Render(tokens, v, english(t))
			require.NoError(t, err)
			back, err := value.ParseISO(text)
			require.NoError(t, err)
			assert.Equal(t, v.Millis(), back.Millis())
		})
	}
}

func TestOrdinal(t *testing.T) {
	tests := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th",
		20: "20th", 21: "21st", 22: "22nd", 23: "23rd", 101: "101st", 111: "111th", 112: "112th",
	}
	for n, want := range tests {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			assert.Equal(t, want, Ordinal(n))
		})
	}
}

func TestCache(t *testing.T) {
	c := NewCache(2)

	a, err := c.Compile("YYYY", DialectLetter)
	require.NoError(t, err)
	_, err = c.Compile("YYYY", DialectLetter)
	require.NoError(t, err)
	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)

	// Mutating a returned slice must not leak into the cache.
	a[0] = Lit("x")
	b, err := c.Compile("YYYY", DialectLetter)
	require.NoError(t, err)
	assert.Equal(t, FieldYear, b[0].Field)

	_, err = c.CompileAuto("{year}")
	require.NoError(t, err)
	_, err = c.Compile("MM", DialectLetter)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Size())

	_, err = c.Compile("[bad", DialectLetter)
	assert.Error(t, err)
	assert.Equal(t, 2, c.Size())

	c.Resize(1)
	assert.Equal(t, 1, c.Capacity())
	assert.Equal(t, 1, c.Size())
	_, err = c.Compile("MM", DialectLetter)
	require.NoError(t, err)
	hits, _ = c.Stats()
	assert.Equal(t, uint64(3), hits, "the most recently used pattern survives a shrink")

	c.Resize(0)
	assert.Equal(t, DefaultCacheSize, c.Capacity())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}
