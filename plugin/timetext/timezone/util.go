// Package timezone provides the zone lookup collaborator and calendar arithmetic
// used by the smart selector and the expression parser.
//
// Zone data comes from the IANA database; the embedded copy in time/tzdata is
// used when the host has none.
package timezone

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
	_ "time/tzdata"

	"golang.org/x/sync/singleflight"

	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
)

// Common timezone constants
const (
	// TimezoneUTC is the UTC timezone identifier
	TimezoneUTC = "UTC"

	// TimezoneAsiaShanghai is the China Standard Time timezone
	TimezoneAsiaShanghai = "Asia/Shanghai"

	// TimezoneAmericaNewYork is the Eastern Time timezone
	TimezoneAmericaNewYork = "America/New_York"

	// TimezoneAmericaLosAngeles is the Pacific Time timezone
	TimezoneAmericaLosAngeles = "America/Los_Angeles"

	// TimezoneEuropeLondon is the GMT/BST timezone
	TimezoneEuropeLondon = "Europe/London"

	// TimezoneAsiaTokyo is the Japan Standard Time timezone
	TimezoneAsiaTokyo = "Asia/Tokyo"
)

// Provider is the host-platform timezone service the core calls into.
type Provider interface {
	// Location resolves an IANA zone id.
	Location(zoneID string) (*time.Location, error)
	// OffsetMinutes returns the UTC offset of zoneID at the given instant.
	OffsetMinutes(zoneID string, instantMillis int64) (int32, error)
	// Abbreviation returns the zone abbreviation (e.g. "EST") at the given instant.
	Abbreviation(zoneID string, instantMillis int64) (string, error)
}

// IANA implements Provider on top of time.LoadLocation with a process-wide cache.
// Concurrent first loads of the same zone share one lookup.
type IANA struct {
	cache  sync.Map // zone id -> *time.Location
	group  singleflight.Group
	logger *slog.Logger
}

// NewIANA creates a provider. A nil logger uses slog.Default().
func NewIANA(logger *slog.Logger) *IANA {
	if logger == nil {
		logger = slog.Default()
	}
	return &IANA{logger: logger}
}

var defaultProvider = NewIANA(nil)

// Default returns the shared IANA provider.
func Default() *IANA {
	return defaultProvider
}

// Location resolves zoneID, caching successful loads.
func (p *IANA) Location(zoneID string) (*time.Location, error) {
	if zoneID == "" || zoneID == TimezoneUTC {
		return time.UTC, nil
	}
	if loc, ok := p.cache.Load(zoneID); ok {
		return loc.(*time.Location), nil
	}

	v, err, _ := p.group.Do(zoneID, func() (interface{}, error) {
		loc, err := time.LoadLocation(zoneID)
		if err != nil {
			return nil, err
		}
		p.cache.Store(zoneID, loc)
		return loc, nil
	})
	if err != nil {
		p.logger.Warn("timezone: failed to load zone", "timezone", zoneID, "error", err)
		return nil, terrors.InvalidTimezone(zoneID, err)
	}
	return v.(*time.Location), nil
}

// OffsetMinutes returns the UTC offset of zoneID at instantMillis.
func (p *IANA) OffsetMinutes(zoneID string, instantMillis int64) (int32, error) {
	loc, err := p.Location(zoneID)
	if err != nil {
		return 0, err
	}
	_, off := time.UnixMilli(instantMillis).In(loc).Zone()
	return int32(off / 60), nil
}

// Abbreviation returns the zone abbreviation of zoneID at instantMillis.
func (p *IANA) Abbreviation(zoneID string, instantMillis int64) (string, error) {
	loc, err := p.Location(zoneID)
	if err != nil {
		return "", err
	}
	name, _ := time.UnixMilli(instantMillis).In(loc).Zone()
	return name, nil
}

// IsValidTimezone checks if a timezone identifier is valid.
func (p *IANA) IsValidTimezone(tz string) bool {
	_, err := p.Location(tz)
	return err == nil
}

// FixedOffset returns a location for a fixed UTC offset in minutes, named like "+05:30".
func FixedOffset(minutes int32) *time.Location {
	if minutes == 0 {
		return time.UTC
	}
	return time.FixedZone(FormatOffset(minutes, true), int(minutes)*60)
}

// FormatOffset renders an offset in minutes as "+hh:mm", or "+hhmm" when colon is false.
func FormatOffset(minutes int32, colon bool) string {
	sign := '+'
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	if colon {
		return fmt.Sprintf("%c%02d:%02d", sign, minutes/60, minutes%60)
	}
	return fmt.Sprintf("%c%02d%02d", sign, minutes/60, minutes%60)
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = time.UTC
	}
	lt := t.In(tz)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, tz)
}

// EndOfDay returns the last millisecond of the day (23:59:59.999) in the given timezone.
func EndOfDay(t time.Time, tz *time.Location) time.Time {
	return StartOfDay(t, tz).AddDate(0, 0, 1).Add(-time.Millisecond)
}
