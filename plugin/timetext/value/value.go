// Package value provides TimeValue, the immutable instant shared by the rendering and parsing pipelines.
package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
)

// Renderable instant range in epoch milliseconds: 0001-01-01T00:00:00Z .. 9999-12-31T23:59:59.999Z.
const (
	MinMillis int64 = -62135596800000
	MaxMillis int64 = 253402300799999
)

// TimeValue is an instant plus optional origin-zone metadata.
// The instant is authoritative; zone fields only affect display.
// The zero value is the Unix epoch with no zone metadata.
type TimeValue struct {
	millis    int64
	zone      string
	offset    int32
	hasOffset bool
}

// FromMillis creates a value from UTC epoch milliseconds.
func FromMillis(ms int64) TimeValue {
	return TimeValue{millis: ms}
}

// FromTime creates a value from t, recording t's zone name and offset as provenance.
// time.Local is recorded by offset only, since its name is not portable.
func FromTime(t time.Time) TimeValue {
	_, off := t.Zone()
	v := TimeValue{millis: t.UnixMilli(), offset: int32(off / 60), hasOffset: true}
	if loc := t.Location(); loc != time.Local {
		v.zone = loc.String()
	}
	return v
}

// Now creates a value from the given clock.
func Now(clock func() time.Time) TimeValue {
	if clock == nil {
		clock = time.Now
	}
	return FromMillis(clock().UnixMilli())
}

// Parse accepts either a bare epoch-millisecond integer or an RFC 3339 timestamp.
func Parse(s string) (TimeValue, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return FromMillis(ms), nil
	}
	return ParseISO(s)
}

// ParseISO parses an RFC 3339 timestamp; fractional seconds are optional.
// The parsed offset is kept as origin metadata.
func ParseISO(s string) (TimeValue, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimeValue{}, terrors.ParseFailed(s)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return TimeValue{}, terrors.Wrap(err, terrors.ErrCodeParseFailed, "not an RFC 3339 timestamp", s)
	}
	_, off := t.Zone()
	return FromMillis(t.UnixMilli()).WithOffset(int32(off / 60)), nil
}

// Millis returns the UTC epoch milliseconds.
func (v TimeValue) Millis() int64 {
	return v.millis
}

// Zone returns the origin zone id, if recorded.
func (v TimeValue) Zone() (string, bool) {
	return v.zone, v.zone != ""
}

// OffsetMinutes returns the origin UTC offset in minutes, if recorded.
func (v TimeValue) OffsetMinutes() (int32, bool) {
	return v.offset, v.hasOffset
}

// WithZone returns a copy carrying zone as its origin zone.
func (v TimeValue) WithZone(zone string) TimeValue {
	v.zone = zone
	return v
}

// WithOffset returns a copy carrying minutes as its origin offset.
func (v TimeValue) WithOffset(minutes int32) TimeValue {
	v.offset = minutes
	v.hasOffset = true
	return v
}

// Time returns the instant as a UTC time.Time.
func (v TimeValue) Time() time.Time {
	return time.UnixMilli(v.millis).UTC()
}

// Valid reports whether the instant lies within the renderable range.
func (v TimeValue) Valid() bool {
	return v.millis >= MinMillis && v.millis <= MaxMillis
}

// Validate returns INVALID_INSTANT when the instant is not renderable.
func (v TimeValue) Validate() error {
	if !v.Valid() {
		return terrors.InvalidInstant(v.millis)
	}
	return nil
}

// Equal reports whether both values represent the same instant, ignoring metadata.
func (v TimeValue) Equal(o TimeValue) bool {
	return v.millis == o.millis
}

// Before reports whether v is strictly earlier than o.
func (v TimeValue) Before(o TimeValue) bool {
	return v.millis < o.millis
}

// Sub returns v - o.
func (v TimeValue) Sub(o TimeValue) time.Duration {
	return time.Duration(v.millis-o.millis) * time.Millisecond
}

// String renders the value in UTC as RFC 3339 with milliseconds, plus its metadata.
func (v TimeValue) String() string {
	s := v.Time().Format("2006-01-02T15:04:05.000Z07:00")
	if v.zone != "" {
		s += "[" + v.zone + "]"
	} else if v.hasOffset {
		s += fmt.Sprintf("[%+d]", v.offset)
	}
	return s
}
