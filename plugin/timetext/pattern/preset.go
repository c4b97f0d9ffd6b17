package pattern

import "maps"

// Built-in preset names.
const (
	PresetISO         = "iso"
	PresetDate        = "date"
	PresetTime        = "time"
	PresetDateTime    = "datetime"
	PresetShortDate   = "shortDate"
	PresetLongDate    = "longDate"
	PresetWeekdayTime = "weekdayTime"
	PresetRFC2822     = "rfc2822"
)

var defaultPresets = map[string]string{
	PresetISO:         "YYYY-MM-DD[T]HH:mm:ss.SSSZ",
	PresetDate:        "YYYY-MM-DD",
	PresetTime:        "h:mm A",
	PresetDateTime:    "MMM D, YYYY h:mm A",
	PresetShortDate:   "MMM D",
	PresetLongDate:    "MMM D, YYYY",
	PresetWeekdayTime: "dddd",
	PresetRFC2822:     "ddd, DD MMM YYYY HH:mm:ss ZZ",
}

// DefaultPresets returns a fresh copy of the built-in presets.
func DefaultPresets() map[string]string {
	return maps.Clone(defaultPresets)
}
