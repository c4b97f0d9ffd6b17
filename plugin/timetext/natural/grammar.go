package natural

import (
	"strconv"
	"strings"
	"time"

	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
	"github.com/hrygo/timetext/plugin/timetext/timezone"
	"github.com/hrygo/timetext/plugin/timetext/value"
)

// clause is an offset or boundary waiting for its base node.
type clause struct {
	offset   *Offset
	boundary *BoundaryOf
}

// grammar is the phase-one state of a single parse call.
type grammar struct {
	toks     []string
	pos      int
	maxDepth int
	input    string

	anchor  *Anchor
	clauses []clause
	tod     *TimeOfDay
	// impliedTime is set by words like "tonight"; an explicit clock replaces it.
	impliedTime bool
}

func (g *grammar) peek(k int) string {
	if g.pos+k < len(g.toks) {
		return g.toks[g.pos+k]
	}
	return ""
}

func (g *grammar) done() bool {
	return g.pos >= len(g.toks)
}

func (g *grammar) accept(words ...string) bool {
	tok := g.peek(0)
	for _, w := range words {
		if tok == w {
			g.pos++
			return true
		}
	}
	return false
}

func (g *grammar) failAt(start int) error {
	return terrors.ParseFailed(strings.Join(g.toks[start:], " "))
}

// build turns the token stream into an expression tree.
// Clauses beyond maxDepth are rejected before any evaluation takes place.
func (g *grammar) build() (Node, error) {
	for !g.done() {
		start := g.pos
		if start > 0 && g.accept("and", "then") {
			continue
		}
		ok, err := g.step()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, g.failAt(start)
		}
	}
	if g.anchor == nil && len(g.clauses) == 0 && g.tod == nil {
		return nil, terrors.ParseFailed(g.input)
	}

	var root Node = g.anchor
	if g.anchor == nil {
		root = &Anchor{Kind: AnchorNow}
	}
	for _, c := range g.clauses {
		if c.offset != nil {
			c.offset.Base = root
			root = c.offset
		} else {
			c.boundary.Base = root
			root = c.boundary
		}
	}
	// The time of day always refines the final date.
	if g.tod != nil {
		g.tod.Base = root
		root = g.tod
	}
	return root, nil
}

// step consumes one construct, trying each production in turn.
func (g *grammar) step() (bool, error) {
	if g.tod == nil || g.impliedTime {
		if g.timeClause() {
			return true, nil
		}
	}
	if g.anchor == nil && len(g.clauses) == 0 {
		ok, err := g.anchorClause()
		if err != nil || ok {
			return ok, err
		}
	}
	if ok, err := g.offsetClause(); err != nil || ok {
		return ok, err
	}
	return g.boundaryClause()
}

func (g *grammar) addClause(c clause) error {
	if len(g.clauses) >= g.maxDepth {
		return terrors.ParseDepthExceeded(g.maxDepth, g.input)
	}
	g.clauses = append(g.clauses, c)
	return nil
}

func (g *grammar) setTime(h, m, s int, implied bool) {
	g.tod = &TimeOfDay{Hour: h, Minute: m, Second: s}
	g.impliedTime = implied
}

// timeClause matches "at 3pm", "15:30", "3 pm", "noon", "at midnight",
// "in the morning" and "this evening".
func (g *grammar) timeClause() bool {
	start := g.pos
	explicit := g.accept("at", "@")

	if !explicit && (g.peek(0) == "in" || g.peek(0) == "this") && g.peek(1) != "" {
		word := g.peek(1)
		if word == "the" {
			word = g.peek(2)
		}
		if hm, ok := namedTimes[word]; ok && word != "noon" && word != "midnight" {
			if g.peek(1) == "the" {
				g.pos += 3
			} else {
				g.pos += 2
			}
			g.setTime(hm[0], hm[1], 0, false)
			return true
		}
	}

	if hm, ok := namedTimes[g.peek(0)]; ok {
		g.pos++
		g.setTime(hm[0], hm[1], 0, false)
		return true
	}
	if h, m, s, n, ok := clock(g.peek(0), g.peek(1), explicit); ok {
		g.pos += n
		g.setTime(h, m, s, false)
		return true
	}
	g.pos = start
	return false
}

// anchorClause matches the starting point of an expression.
func (g *grammar) anchorClause() (bool, error) {
	tok := g.peek(0)

	if tok == "now" || tok == "right" && g.peek(1) == "now" {
		if tok == "right" {
			g.pos++
		}
		g.pos++
		g.anchor = &Anchor{Kind: AnchorNow}
		return true, nil
	}

	if shift, ok := dayWords[tok]; ok {
		g.pos++
		g.anchor = &Anchor{Kind: AnchorDay, Shift: shift}
		if tok == "tonight" && g.tod == nil {
			hm := namedTimes["night"]
			g.setTime(hm[0], hm[1], 0, true)
		}
		return true, nil
	}

	// the day after tomorrow, the day before yesterday
	if g.peek(0) == "the" && g.peek(1) == "day" || tok == "day" {
		k := 0
		if tok == "the" {
			k = 1
		}
		switch {
		case g.peek(k+1) == "after" && g.peek(k+2) == "tomorrow":
			g.pos += k + 3
			g.anchor = &Anchor{Kind: AnchorDay, Shift: 2}
			return true, nil
		case g.peek(k+1) == "before" && g.peek(k+2) == "yesterday":
			g.pos += k + 3
			g.anchor = &Anchor{Kind: AnchorDay, Shift: -2}
			return true, nil
		}
	}

	if wd, ok := weekdays[tok]; ok {
		g.pos++
		g.anchor = &Anchor{Kind: AnchorWeekday, Weekday: wd, Qualifier: QualNearest}
		return true, nil
	}

	if q, ok := qualifiers[tok]; ok {
		if a, ok := qualifiedAnchor(q, g.peek(1)); ok {
			g.pos += 2
			g.anchor = a
			return true, nil
		}
	}

	if isoDatePattern.MatchString(tok) {
		t, err := time.Parse("2006-01-02", tok)
		if err != nil {
			return false, nil
		}
		g.pos++
		g.anchor = &Anchor{Kind: AnchorDate, Year: t.Year(), Month: t.Month(), Day: t.Day()}
		return true, nil
	}
	if strings.Contains(tok, "t") && strings.ContainsAny(tok, "-:") {
		// RFC 3339 timestamps arrive case-folded.
		if v, err := value.ParseISO(strings.ToUpper(tok)); err == nil {
			g.pos++
			g.anchor = &Anchor{Kind: AnchorInstant, Millis: v.Millis()}
			return true, nil
		}
	}

	if m, ok := months[tok]; ok {
		return g.monthDay(m), nil
	}
	return false, nil
}

func qualifiedAnchor(q Qualifier, word string) (*Anchor, bool) {
	if wd, ok := weekdays[word]; ok {
		return &Anchor{Kind: AnchorWeekday, Weekday: wd, Qualifier: q}, true
	}
	unit, ok := calendarUnits[word]
	if !ok || unit == timezone.UnitDay {
		return nil, false
	}
	shift := 0
	switch q {
	case QualNext:
		shift = 1
	case QualLast:
		shift = -1
	}
	return &Anchor{Kind: AnchorPeriod, Unit: unit, Shift: shift}, true
}

// monthDay matches "jan 15", "january 15th 2025" and "jan 15, 2025".
// Without a year the reference year is used.
func (g *grammar) monthDay(m time.Month) bool {
	match := dayOfMonthPattern.FindStringSubmatch(g.peek(1))
	if match == nil {
		return false
	}
	day, _ := strconv.Atoi(match[1])
	a := &Anchor{Kind: AnchorDate, Month: m, Day: day}
	n := 2
	if yearPattern.MatchString(g.peek(2)) {
		a.Year, _ = strconv.Atoi(g.peek(2))
		if a.Year < 1 || day > timezone.DaysIn(a.Year, m) {
			return false
		}
		n = 3
	} else if day > timezone.DaysIn(2024, m) {
		// Checked against a leap year; Feb 29 resolves later against the reference year.
		return false
	}
	if day < 1 {
		return false
	}
	g.pos += n
	g.anchor = a
	return true
}

// offsetClause matches "in 3 days", "in 1 day and 2 hours", "2 weeks ago" and
// "an hour from now". Each unit amount becomes its own clause.
func (g *grammar) offsetClause() (bool, error) {
	start := g.pos
	future := g.accept("in", "+")

	type pair struct {
		n    int64
		unit OffsetUnit
	}
	var pairs []pair
	for {
		n, ok := amount(g.peek(0))
		if !ok {
			break
		}
		unit, ok := offsetUnits[g.peek(1)]
		if !ok {
			break
		}
		g.pos += 2
		pairs = append(pairs, pair{n, unit})

		// "and" continues the list only when another amount follows.
		if g.peek(0) == "and" {
			if _, ok := amount(g.peek(1)); ok {
				g.pos++
			}
		}
	}
	if len(pairs) == 0 {
		g.pos = start
		return false, nil
	}

	if !future {
		switch {
		case g.accept("ago", "earlier", "before"):
		case g.peek(0) == "from" && g.peek(1) == "now":
			g.pos += 2
			future = true
		case g.accept("later", "hence"):
			future = true
		default:
			g.pos = start
			return false, nil
		}
		if !future {
			for i := range pairs {
				pairs[i].n = -pairs[i].n
			}
		}
	}

	for _, p := range pairs {
		if err := g.addClause(clause{offset: &Offset{Amount: p.n, Unit: p.unit}}); err != nil {
			return false, err
		}
	}
	return true, nil
}

// boundaryClause matches "start of month", "end of the week",
// "beginning of next year".
func (g *grammar) boundaryClause() (bool, error) {
	start := g.pos
	var edge Edge
	switch {
	case g.accept("start", "beginning"):
		edge = EdgeStart
	case g.accept("end"):
		edge = EdgeEnd
	default:
		return false, nil
	}
	if !g.accept("of") {
		g.pos = start
		return false, nil
	}
	g.accept("the")

	var anchor *Anchor
	if q, ok := qualifiers[g.peek(0)]; ok && g.anchor == nil && len(g.clauses) == 0 {
		if a, ok := qualifiedAnchor(q, g.peek(1)); ok && a.Kind == AnchorPeriod {
			anchor = a
			g.pos++
		}
	}
	unit, ok := calendarUnits[g.peek(0)]
	if !ok {
		g.pos = start
		return false, nil
	}
	if anchor != nil {
		g.anchor = anchor
	}
	g.pos++
	if err := g.addClause(clause{boundary: &BoundaryOf{Unit: unit, Edge: edge}}); err != nil {
		return false, err
	}
	return true, nil
}
