package natural

import (
	"time"

	"github.com/hrygo/timetext/plugin/timetext/timezone"
	"github.com/hrygo/timetext/plugin/timetext/value"
)

// PointSpan is the length of the range given to expressions naming an instant.
const PointSpan = time.Hour

// Range is a half-open interval [Start, End).
type Range struct {
	Start value.TimeValue `json:"start"`
	End   value.TimeValue `json:"end"`
}

// ParseRange parses input as a range. A bare day, weekday, date or
// this/next/last week|month|year spans that calendar unit; any other
// expression spans one hour from the instant it names.
func (p *Parser) ParseRange(input string, reference value.TimeValue, zoneID string) (Range, error) {
	root, err := p.Build(input)
	if err != nil {
		return Range{}, err
	}
	start, err := p.Evaluate(root, reference, zoneID)
	if err != nil {
		return Range{}, err
	}

	unit, spans := spanOf(root)
	if !spans {
		end, err := stamp(start.Time().Add(PointSpan), zoneIDOr(zoneID))
		if err != nil {
			return Range{}, err
		}
		return Range{Start: start, End: end}, nil
	}

	loc, err := p.zones.Location(zoneIDOr(zoneID))
	if err != nil {
		return Range{}, err
	}
	endWall := timezone.EndOf(start.Time().In(loc), unit, p.weekStart).Add(time.Millisecond)
	end, err := stamp(endWall, zoneIDOr(zoneID))
	if err != nil {
		return Range{}, err
	}
	return Range{Start: start, End: end}, nil
}

func spanOf(root Node) (timezone.Unit, bool) {
	a, ok := root.(*Anchor)
	if !ok {
		return 0, false
	}
	switch a.Kind {
	case AnchorDay, AnchorWeekday, AnchorDate:
		return timezone.UnitDay, true
	case AnchorPeriod:
		return a.Unit, true
	default:
		return 0, false
	}
}

func zoneIDOr(zoneID string) string {
	if zoneID == "" {
		return timezone.TimezoneUTC
	}
	return zoneID
}
