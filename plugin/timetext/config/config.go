// Package config builds the immutable configuration snapshot shared by every
// timetext operation.
//
// Callers describe what they want to change in an Overrides value; Build merges
// it onto the defaults, validates the result as a whole and returns a Config
// that is never mutated afterwards. A Holder publishes snapshots to concurrent
// readers.
package config

import (
	"fmt"
	"maps"
	"sort"
	"time"

	"github.com/hrygo/timetext/plugin/timetext/bucket"
	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
	"github.com/hrygo/timetext/plugin/timetext/locale"
	"github.com/hrygo/timetext/plugin/timetext/natural"
	"github.com/hrygo/timetext/plugin/timetext/pattern"
	"github.com/hrygo/timetext/plugin/timetext/smart"
	"github.com/hrygo/timetext/plugin/timetext/timezone"
)

// Defaults applied when an override is absent. Fallback is off unless a
// caller names a fallback locale.
const (
	DefaultLocale         = "en"
	DefaultFallbackLocale = ""
	DefaultWeekStart      = time.Monday
	DefaultStrictTimezone = true
)

// Overrides lists the settings a caller may change. Nil fields keep the default.
type Overrides struct {
	Locale         *string           `json:"locale" validate:"omitempty,bcp47_language_tag"`
	FallbackLocale *string           `json:"fallbackLocale" validate:"omitempty,bcp47_language_tag"`
	Thresholds     bucket.Table      `json:"thresholds" validate:"omitempty,dive"`
	SmartRules     []smart.Rule      `json:"-"`
	Presets        map[string]string `json:"presets" validate:"omitempty,dive,keys,required,endkeys,required"`
	WeekStart      *time.Weekday     `json:"weekStart" validate:"omitempty,min=0,max=6"`
	DefaultZone    *string           `json:"defaultZone" validate:"omitempty,iana_zone"`
	StrictTimezone *bool             `json:"strictTimezone"`
	MaxInputLength *int              `json:"maxInputLength" validate:"omitempty,min=1,max=100000"`
	MaxDepth       *int              `json:"maxDepth" validate:"omitempty,min=1,max=64"`
	CacheSize      *int              `json:"cacheSize" validate:"omitempty,min=1,max=1000000"`

	// Registry replaces the built-in locale registry.
	Registry *locale.Registry `json:"-" validate:"-"`
	// Zones replaces the shared IANA provider.
	Zones timezone.Provider `json:"-" validate:"-"`
}

// Config is a validated snapshot. Accessors return copies.
type Config struct {
	registry       *locale.Registry
	zones          timezone.Provider
	localeTag      string
	fallbackLocale string
	table          *locale.Table
	thresholds     bucket.Table
	rules          []smart.Rule
	presets        map[string]string
	weekStart      time.Weekday
	defaultZone    string
	strictTimezone bool
	limits         natural.Limits
	cacheSize      int
}

// Build merges o onto the defaults and validates the result.
func Build(o Overrides) (*Config, error) {
	if err := Struct(o); err != nil {
		return nil, err
	}

	c := &Config{
		registry:       o.Registry,
		zones:          o.Zones,
		localeTag:      DefaultLocale,
		fallbackLocale: DefaultFallbackLocale,
		thresholds:     bucket.DefaultTable(),
		rules:          smart.DefaultRules(),
		presets:        pattern.DefaultPresets(),
		weekStart:      DefaultWeekStart,
		strictTimezone: DefaultStrictTimezone,
		limits: natural.Limits{
			MaxInputLength: natural.DefaultMaxInputLength,
			MaxDepth:       natural.DefaultMaxDepth,
		},
		cacheSize: pattern.DefaultCacheSize,
	}
	if c.registry == nil {
		c.registry = locale.Builtin()
	}
	if c.zones == nil {
		c.zones = timezone.Default()
	}

	if o.Locale != nil {
		c.localeTag = *o.Locale
	}
	if o.FallbackLocale != nil {
		c.fallbackLocale = *o.FallbackLocale
	}
	if o.Thresholds != nil {
		c.thresholds = append(bucket.Table(nil), o.Thresholds...)
	}
	if o.SmartRules != nil {
		c.rules = append([]smart.Rule(nil), o.SmartRules...)
	}
	maps.Copy(c.presets, o.Presets)
	if o.WeekStart != nil {
		c.weekStart = *o.WeekStart
	}
	if o.DefaultZone != nil {
		c.defaultZone = *o.DefaultZone
	}
	if o.StrictTimezone != nil {
		c.strictTimezone = *o.StrictTimezone
	}
	if o.MaxInputLength != nil {
		c.limits.MaxInputLength = *o.MaxInputLength
	}
	if o.MaxDepth != nil {
		c.limits.MaxDepth = *o.MaxDepth
	}
	if o.CacheSize != nil {
		c.cacheSize = *o.CacheSize
	}

	if err := c.resolve(); err != nil {
		return nil, err
	}
	return c, nil
}

// resolve checks the merged settings against each other.
func (c *Config) resolve() error {
	table, err := c.registry.Resolve(c.localeTag, c.fallbackLocale)
	if err != nil {
		return err
	}
	c.table = table

	if c.defaultZone != "" {
		if _, err := c.zones.Location(c.defaultZone); err != nil {
			return err
		}
	}

	if err := c.thresholds.Validate(); err != nil {
		return err
	}
	if err := c.thresholds.CheckLocale(table); err != nil {
		return err
	}

	if err := smart.ValidateRules(c.rules); err != nil {
		return err
	}
	known := make(map[string]struct{}, len(c.thresholds))
	for _, row := range c.thresholds {
		known[row.Name] = struct{}{}
	}
	for i, r := range c.rules {
		if r.Bucket != "" {
			if _, ok := known[r.Bucket]; !ok {
				return terrors.InvalidConfig(fmt.Sprintf("smart rule %d names bucket %q which is not in the threshold table", i, r.Bucket))
			}
		}
		if r.DayKey != "" {
			if _, err := table.Fixed(r.DayKey); err != nil {
				return err
			}
		}
		if r.Pattern != "" {
			if _, err := pattern.Compile(r.Pattern, pattern.Detect(r.Pattern)); err != nil {
				return terrors.Wrap(err, terrors.ErrCodeInvalidConfig,
					fmt.Sprintf("smart rule %d (%s) has an invalid pattern", i, r.When), r.Pattern)
			}
		}
	}

	for _, name := range sortedKeys(c.presets) {
		p := c.presets[name]
		if _, err := pattern.Compile(p, pattern.Detect(p)); err != nil {
			return terrors.Wrap(err, terrors.ErrCodeInvalidConfig,
				fmt.Sprintf("preset %q has an invalid pattern", name), p)
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Default returns the configuration with no overrides applied.
func Default() *Config {
	c, err := Build(Overrides{})
	if err != nil {
		panic(fmt.Sprintf("default timetext configuration is invalid: %v", err))
	}
	return c
}

// Locale returns the active locale table, with its fallback attached.
func (c *Config) Locale() *locale.Table { return c.table }

// LocaleTag returns the requested locale tag.
func (c *Config) LocaleTag() string { return c.localeTag }

// FallbackLocale returns the fallback tag, empty when fallback is disabled.
func (c *Config) FallbackLocale() string { return c.fallbackLocale }

// Registry returns the locale registry the table was resolved from.
func (c *Config) Registry() *locale.Registry { return c.registry }

// Zones returns the zone provider.
func (c *Config) Zones() timezone.Provider { return c.zones }

// Thresholds returns a copy of the bucket table.
func (c *Config) Thresholds() bucket.Table {
	return append(bucket.Table(nil), c.thresholds...)
}

// SmartRules returns a copy of the smart rule list.
func (c *Config) SmartRules() []smart.Rule {
	return append([]smart.Rule(nil), c.rules...)
}

// Presets returns a copy of the preset map.
func (c *Config) Presets() map[string]string {
	return maps.Clone(c.presets)
}

// Preset returns the pattern registered under name.
func (c *Config) Preset(name string) (string, bool) {
	p, ok := c.presets[name]
	return p, ok
}

func (c *Config) WeekStart() time.Weekday { return c.weekStart }

// DefaultZone returns the configured default zone, empty when unset.
func (c *Config) DefaultZone() string { return c.defaultZone }

func (c *Config) StrictTimezone() bool { return c.strictTimezone }

func (c *Config) Limits() natural.Limits { return c.limits }

func (c *Config) CacheSize() int { return c.cacheSize }
