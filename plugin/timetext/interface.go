// Package timetext renders instants as human-readable text and parses English
// time expressions back into instants.
//
// Engine is the entry point. It reads one immutable configuration snapshot per
// call, so a configuration update never affects a render or parse in flight.
package timetext

import (
	"github.com/hrygo/timetext/plugin/timetext/natural"
	"github.com/hrygo/timetext/plugin/timetext/value"
)

// Service is the rendering and parsing surface consumed by the HTTP API and the CLI.
type Service interface {
	// Format renders v with a letter or bracket pattern.
	Format(v value.TimeValue, pattern string) (string, error)
	// FormatPreset renders v with a named preset.
	FormatPreset(v value.TimeValue, name string) (string, error)
	// Relative phrases v against reference, e.g. "5 minutes ago".
	// A nil reference uses the current time.
	Relative(v value.TimeValue, reference *value.TimeValue) (string, error)
	// Smart picks a rendering by calendar proximity, e.g. "yesterday at 12:00 PM".
	Smart(v value.TimeValue, opts SmartOptions) (string, error)
	// ParseNatural parses an expression such as "tomorrow at 3pm".
	// An unrecognized expression returns ok == false and a nil error.
	ParseNatural(text string, opts ParseOptions) (v value.TimeValue, ok bool, err error)
	// ParseRange parses an expression into a [start, end) range.
	ParseRange(text string, opts ParseOptions) (natural.Range, error)
}

// SmartOptions controls Smart.
type SmartOptions struct {
	// Zone is the IANA zone whose calendar days are compared.
	Zone string
	// Reference defaults to the engine clock.
	Reference *value.TimeValue
}

// ParseOptions controls ParseNatural and its variants.
type ParseOptions struct {
	// Reference defaults to the engine clock.
	Reference *value.TimeValue
	// Zone is the IANA zone used for calendar arithmetic.
	Zone string
}
