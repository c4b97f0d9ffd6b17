package profile

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/timetext/plugin/timetext/config"
)

// Profile is the configuration to start the timetext CLI and server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string `json:"mode" mapstructure:"mode"`
	// Addr is the binding address for server
	Addr string `json:"addr" mapstructure:"addr"`
	// Port is the binding port for server
	Port int `json:"port" mapstructure:"port" validate:"min=0,max=65535"`
	// Version is the current version of server
	Version string `json:"version" mapstructure:"version"`

	// Locale is the BCP 47 tag of the output locale (TIMETEXT_LOCALE, default en)
	Locale string `json:"locale" mapstructure:"locale" validate:"omitempty,bcp47_language_tag"`
	// FallbackLocale serves entries Locale lacks (TIMETEXT_FALLBACK_LOCALE, empty disables fallback)
	FallbackLocale string `json:"fallbackLocale" mapstructure:"fallback-locale" validate:"omitempty,bcp47_language_tag"`
	// Timezone is the default IANA zone (TIMETEXT_TIMEZONE, default unset)
	Timezone       string            `json:"timezone" mapstructure:"timezone" validate:"omitempty,iana_zone"`
	StrictTimezone bool              `json:"strictTimezone" mapstructure:"strict-timezone"`
	WeekStart      string            `json:"weekStart" mapstructure:"week-start" validate:"omitempty,oneof=sunday monday tuesday wednesday thursday friday saturday"`
	Presets        map[string]string `json:"presets" mapstructure:"presets"`
	CacheSize      int               `json:"cacheSize" mapstructure:"cache-size" validate:"gte=0"`
	MaxInputLength int               `json:"maxInputLength" mapstructure:"max-input-length" validate:"gte=0"`
	MaxDepth       int               `json:"maxDepth" mapstructure:"max-depth" validate:"gte=0"`

	LogLevel  string `json:"logLevel" mapstructure:"log-level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `json:"logFormat" mapstructure:"log-format" validate:"omitempty,oneof=text json"`

	// RateLimit is requests per second per client on the HTTP API; 0 disables limiting.
	RateLimit float64 `json:"rateLimit" mapstructure:"rate-limit" validate:"gte=0"`
	RateBurst int     `json:"rateBurst" mapstructure:"rate-burst" validate:"gte=0"`
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from TIMETEXT_* environment variables.
// Unset variables leave defaults in place; set but malformed numbers are ignored
// with a warning.
func (p *Profile) FromEnv() {
	getIntEnv := func(key string, defaultValue int) int {
		raw := os.Getenv(key)
		if raw == "" {
			return defaultValue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			slog.Warn("ignoring malformed integer env", slog.String("key", key), slog.String("value", raw))
			return defaultValue
		}
		return n
	}
	getBoolEnv := func(key string, defaultValue bool) bool {
		raw := os.Getenv(key)
		if raw == "" {
			return defaultValue
		}
		return raw == "true" || raw == "1"
	}

	p.Mode = getEnvOrDefault("TIMETEXT_MODE", "dev")
	p.Addr = getEnvOrDefault("TIMETEXT_ADDR", "")
	p.Port = getIntEnv("TIMETEXT_PORT", 8081)
	p.Locale = getEnvOrDefault("TIMETEXT_LOCALE", config.DefaultLocale)
	p.FallbackLocale = getEnvOrDefault("TIMETEXT_FALLBACK_LOCALE", config.DefaultFallbackLocale)
	p.Timezone = os.Getenv("TIMETEXT_TIMEZONE")
	p.StrictTimezone = getBoolEnv("TIMETEXT_STRICT_TIMEZONE", config.DefaultStrictTimezone)
	p.WeekStart = getEnvOrDefault("TIMETEXT_WEEK_START", "monday")
	p.CacheSize = getIntEnv("TIMETEXT_CACHE_SIZE", 0)
	p.MaxInputLength = getIntEnv("TIMETEXT_MAX_INPUT_LENGTH", 0)
	p.MaxDepth = getIntEnv("TIMETEXT_MAX_DEPTH", 0)
	p.LogLevel = getEnvOrDefault("TIMETEXT_LOG_LEVEL", "info")
	p.LogFormat = getEnvOrDefault("TIMETEXT_LOG_FORMAT", "text")

	if raw := os.Getenv("TIMETEXT_RATE_LIMIT"); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			p.RateLimit = f
		}
	}
	p.RateBurst = getIntEnv("TIMETEXT_RATE_BURST", 20)
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}
	p.WeekStart = strings.ToLower(strings.TrimSpace(p.WeekStart))
	p.LogLevel = strings.ToLower(p.LogLevel)
	p.LogFormat = strings.ToLower(p.LogFormat)

	if err := config.Struct(p); err != nil {
		slog.Error("invalid profile", slog.String("error", err.Error()))
		return errors.Wrap(err, "invalid profile")
	}
	if p.RateLimit > 0 && p.RateBurst == 0 {
		p.RateBurst = 1
	}
	return nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday parses an English weekday name.
func ParseWeekday(s string) (time.Weekday, error) {
	d, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, errors.Errorf("unknown weekday %q", s)
	}
	return d, nil
}

// Overrides converts the profile into configuration overrides. Zero values
// keep the configuration defaults, except FallbackLocale where empty turns
// fallback off.
func (p *Profile) Overrides() (config.Overrides, error) {
	o := config.Overrides{
		StrictTimezone: &p.StrictTimezone,
		FallbackLocale: &p.FallbackLocale,
	}
	if p.Locale != "" {
		o.Locale = &p.Locale
	}
	if p.Timezone != "" {
		o.DefaultZone = &p.Timezone
	}
	if p.WeekStart != "" {
		d, err := ParseWeekday(p.WeekStart)
		if err != nil {
			return config.Overrides{}, errors.Wrap(err, "week start")
		}
		o.WeekStart = &d
	}
	if len(p.Presets) > 0 {
		o.Presets = p.Presets
	}
	if p.CacheSize > 0 {
		o.CacheSize = &p.CacheSize
	}
	if p.MaxInputLength > 0 {
		o.MaxInputLength = &p.MaxInputLength
	}
	if p.MaxDepth > 0 {
		o.MaxDepth = &p.MaxDepth
	}
	return o, nil
}

// Config builds the engine configuration described by the profile.
func (p *Profile) Config() (*config.Config, error) {
	o, err := p.Overrides()
	if err != nil {
		return nil, err
	}
	c, err := config.Build(o)
	if err != nil {
		return nil, errors.Wrapf(err, "build configuration for locale %s", p.Locale)
	}
	return c, nil
}
