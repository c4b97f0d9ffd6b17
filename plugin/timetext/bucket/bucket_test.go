package bucket

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
	"github.com/hrygo/timetext/plugin/timetext/locale"
	"github.com/hrygo/timetext/plugin/timetext/value"
)

func english(t *testing.T) *locale.Table {
	t.Helper()
	table, err := locale.Builtin().Lookup("en")
	require.NoError(t, err)
	return table
}

func TestClassify_Boundaries(t *testing.T) {
	table := DefaultTable()
	tests := []struct {
		elapsed   int64
		bucket    string
		magnitude int64
	}{
		{0, locale.BucketJustNow, 0},
		{29, locale.BucketJustNow, 0},
		{30, locale.BucketSeconds, 30},
		{59, locale.BucketSeconds, 59},
		{60, locale.BucketMinutes, 1},
		{-60, locale.BucketMinutes, 1},
		{3599, locale.BucketMinutes, 59},
		{3600, locale.BucketHours, 1},
		{86399, locale.BucketHours, 23},
		{86400, locale.BucketDays, 1},
		{604799, locale.BucketDays, 6},
		{604800, locale.BucketWeeks, 1},
		{2592000, locale.BucketMonths, 1},
		{31536000, locale.BucketYears, 1},
		{3 * UnitYear, locale.BucketYears, 3},
	}
	for _, tt := range tests {
		name, magnitude := Classify(tt.elapsed, table)
		assert.Equal(t, tt.bucket, name, "elapsed %d", tt.elapsed)
		assert.Equal(t, tt.magnitude, magnitude, "elapsed %d", tt.elapsed)

		// Classification is idempotent.
		again, mag2 := Classify(tt.elapsed, table)
		assert.Equal(t, name, again)
		assert.Equal(t, magnitude, mag2)
	}
}

func TestRelative(t *testing.T) {
	phraser := english(t)
	ref := value.FromMillis(1705320000000) // 2024-01-15T12:00:00Z

	tests := []struct {
		name    string
		offsetS int64 // target - reference
		want    string
	}{
		{"exact match is past", 0, "just now"},
		{"29s ago", -29, "just now"},
		{"30s ago", -30, "30 seconds ago"},
		{"59s ago", -59, "59 seconds ago"},
		{"60s ago singular", -60, "1 minute ago"},
		{"5 minutes ago", -300, "5 minutes ago"},
		{"in 2 hours", 7200, "in 2 hours"},
		{"exactly one day ago", -86400, "yesterday"},
		{"exactly one day ahead", 86400, "tomorrow"},
		{"36 hours ago is still one day", -129600, "yesterday"},
		{"3 days ahead", 3 * 86400, "in 3 days"},
		{"2 weeks ago", -14 * 86400, "2 weeks ago"},
		{"40 days ago", -40 * 86400, "1 month ago"},
		{"400 days ahead", 400 * 86400, "in 1 year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := value.FromMillis(ref.Millis() + tt.offsetS*1000)
			got, err := Relative(target, ref, DefaultTable(), phraser)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRelative_SubSecondFuture(t *testing.T) {
	ref := value.FromMillis(1705320000000)
	got, err := Relative(value.FromMillis(ref.Millis()+400), ref, DefaultTable(), english(t))
	require.NoError(t, err)
	assert.Equal(t, "just now", got)
}

func TestDirectionOf(t *testing.T) {
	ref := value.FromMillis(1000)
	assert.Equal(t, locale.Past, DirectionOf(ref, ref))
	assert.Equal(t, locale.Past, DirectionOf(value.FromMillis(999), ref))
	assert.Equal(t, locale.Future, DirectionOf(value.FromMillis(1001), ref))
}

func TestTableValidate(t *testing.T) {
	require.NoError(t, DefaultTable().Validate())

	tests := []struct {
		name  string
		table Table
	}{
		{"empty", Table{}},
		{"not increasing", Table{{Name: "a", Cutoff: 60, Unit: 1}, {Name: "b", Cutoff: 60, Unit: 60}, {Name: "c", Unit: 3600}}},
		{"bounded last", Table{{Name: "a", Cutoff: 60, Unit: 1}, {Name: "b", Cutoff: 120, Unit: 60}}},
		{"duplicate name", Table{{Name: "a", Cutoff: 60, Unit: 1}, {Name: "a", Unit: 60}}},
		{"zero first cutoff", Table{{Name: "a", Cutoff: 0, Unit: 1}, {Name: "b", Unit: 60}}},
		{"negative unit", Table{{Name: "a", Unit: -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			require.Error(t, err)
			assert.True(t, terrors.IsCode(err, terrors.ErrCodeInvalidConfig))
		})
	}
}

func TestMissingLocaleEntry(t *testing.T) {
	phraser := english(t)
	table := Table{{Name: "moments", Cutoff: 60, Unit: 0}, {Name: "fortnights", Unit: 1209600}}

	err := table.CheckLocale(phraser)
	require.Error(t, err)
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeMissingLocaleEntry))

	ref := value.FromMillis(0)
	_, err = Relative(value.FromMillis(-3600*1000), ref, table, phraser)
	require.Error(t, err)
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeMissingLocaleEntry))
}

func TestRelative_InvalidInstant(t *testing.T) {
	_, err := Relative(value.FromMillis(value.MaxMillis+1), value.FromMillis(0), DefaultTable(), english(t))
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeInvalidInstant))

	// An out-of-range reference would overflow the elapsed time.
	_, err = Relative(value.FromMillis(value.MinMillis), value.FromMillis(math.MaxInt64), DefaultTable(), english(t))
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeInvalidInstant))
	_, err = Relative(value.FromMillis(0), value.FromMillis(math.MinInt64), DefaultTable(), english(t))
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeInvalidInstant))

	got, err := Relative(value.FromMillis(value.MinMillis), value.FromMillis(value.MaxMillis), DefaultTable(), english(t))
	require.NoError(t, err)
	assert.Equal(t, "9998 years ago", got)
}
