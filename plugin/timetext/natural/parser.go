// Package natural parses English date expressions such as "tomorrow at 3pm",
// "in 3 days", "next friday" and "end of month".
//
// Parsing runs in two phases. The grammar builds an expression tree, rejecting
// oversized input and excess clauses before anything is evaluated; the tree is
// then folded against the reference instant in the caller's zone.
package natural

import (
	"time"
	"unicode/utf8"

	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
	"github.com/hrygo/timetext/plugin/timetext/timezone"
	"github.com/hrygo/timetext/plugin/timetext/value"
)

// Default bounds.
const (
	DefaultMaxInputLength = 500
	DefaultMaxDepth       = 5
)

// Limits bounds the work a single parse may do.
type Limits struct {
	// MaxInputLength is measured in runes of the raw input.
	MaxInputLength int
	// MaxDepth is the number of offset and boundary clauses allowed.
	MaxDepth int
}

// Parser parses natural language time expressions. It is safe for concurrent use.
type Parser struct {
	zones     timezone.Provider
	weekStart time.Weekday
	limits    Limits
}

// NewParser creates a parser. Zero limits use the defaults and a nil provider
// uses the shared IANA provider.
func NewParser(zones timezone.Provider, weekStart time.Weekday, limits Limits) *Parser {
	if zones == nil {
		zones = timezone.Default()
	}
	if limits.MaxInputLength <= 0 {
		limits.MaxInputLength = DefaultMaxInputLength
	}
	if limits.MaxDepth <= 0 {
		limits.MaxDepth = DefaultMaxDepth
	}
	return &Parser{zones: zones, weekStart: weekStart, limits: limits}
}

// Limits returns the parser bounds.
func (p *Parser) Limits() Limits {
	return p.limits
}

// Build runs phase one only and returns the expression tree.
func (p *Parser) Build(input string) (Node, error) {
	if n := utf8.RuneCountInString(input); n > p.limits.MaxInputLength {
		return nil, terrors.InputTooLong(p.limits.MaxInputLength, n, input)
	}
	normalized := normalize(input)
	if normalized == "" {
		return nil, terrors.ParseFailed(input)
	}
	g := &grammar{toks: tokenize(normalized), maxDepth: p.limits.MaxDepth, input: normalized}
	return g.build()
}

// Parse is the throwing form: an unrecognized expression is PARSE_FAILED.
// An empty zoneID means UTC.
func (p *Parser) Parse(input string, reference value.TimeValue, zoneID string) (value.TimeValue, error) {
	root, err := p.Build(input)
	if err != nil {
		return value.TimeValue{}, err
	}
	return p.Evaluate(root, reference, zoneID)
}

// TryParse is the non-throwing form. A PARSE_FAILED outcome is reported as
// ok == false with a nil error; bound violations and zone errors are returned.
func (p *Parser) TryParse(input string, reference value.TimeValue, zoneID string) (value.TimeValue, bool, error) {
	v, err := p.Parse(input, reference, zoneID)
	if err != nil {
		if terrors.IsCode(err, terrors.ErrCodeParseFailed) {
			return value.TimeValue{}, false, nil
		}
		return value.TimeValue{}, false, err
	}
	return v, true, nil
}

// CanParse reports whether Parse would succeed.
func (p *Parser) CanParse(input string, reference value.TimeValue, zoneID string) bool {
	_, err := p.Parse(input, reference, zoneID)
	return err == nil
}

// Evaluate runs phase two on a tree produced by Build.
func (p *Parser) Evaluate(root Node, reference value.TimeValue, zoneID string) (value.TimeValue, error) {
	if zoneID == "" {
		zoneID = timezone.TimezoneUTC
	}
	loc, err := p.zones.Location(zoneID)
	if err != nil {
		return value.TimeValue{}, err
	}
	e := &env{
		ref:       time.UnixMilli(reference.Millis()).In(loc),
		loc:       loc,
		weekStart: p.weekStart,
		budget:    p.limits.MaxDepth + 1,
	}
	t, err := e.eval(root, 0)
	if err != nil {
		return value.TimeValue{}, err
	}
	return stamp(t, zoneID)
}

func stamp(t time.Time, zoneID string) (value.TimeValue, error) {
	_, off := t.Zone()
	v := value.FromMillis(t.UnixMilli()).WithZone(zoneID).WithOffset(int32(off / 60))
	if err := v.Validate(); err != nil {
		return value.TimeValue{}, err
	}
	return v, nil
}
