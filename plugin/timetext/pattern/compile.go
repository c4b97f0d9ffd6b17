package pattern

import (
	"strings"

	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
)

// letterTokens is ordered longest first so the scanner takes the longest
// recognized run at each position.
var letterTokens = []struct {
	text  string
	token Token
}{
	{"YYYY", Token{Field: FieldYear, Pad: 4}},
	{"MMMM", Token{Field: FieldMonthFull}},
	{"dddd", Token{Field: FieldWeekdayFull}},
	{"MMM", Token{Field: FieldMonthShort}},
	{"ddd", Token{Field: FieldWeekdayShort}},
	{"SSS", Token{Field: FieldMillisecond, Pad: 3}},
	{"YY", Token{Field: FieldYearShort, Pad: 2}},
	{"MM", Token{Field: FieldMonthNumeric, Pad: 2}},
	{"Do", Token{Field: FieldDayOrdinal}},
	{"DD", Token{Field: FieldDay, Pad: 2}},
	{"HH", Token{Field: FieldHour24, Pad: 2}},
	{"hh", Token{Field: FieldHour12, Pad: 2}},
	{"mm", Token{Field: FieldMinute, Pad: 2}},
	{"ss", Token{Field: FieldSecond, Pad: 2}},
	{"ZZ", Token{Field: FieldUTCOffset, Compact: true}},
	{"M", Token{Field: FieldMonthNumeric}},
	{"D", Token{Field: FieldDay}},
	{"H", Token{Field: FieldHour24}},
	{"h", Token{Field: FieldHour12}},
	{"m", Token{Field: FieldMinute}},
	{"s", Token{Field: FieldSecond}},
	{"A", Token{Field: FieldAmPm, Case: CaseUpper}},
	{"a", Token{Field: FieldAmPm, Case: CaseLower}},
	{"Z", Token{Field: FieldUTCOffset}},
}

// bracket-dialect names and their default padding.
var bracketFields = map[string]Token{
	"year":         {Field: FieldYear, Pad: 4},
	"yearShort":    {Field: FieldYearShort, Pad: 2},
	"month":        {Field: FieldMonthNumeric},
	"monthShort":   {Field: FieldMonthShort},
	"monthFull":    {Field: FieldMonthFull},
	"day":          {Field: FieldDay},
	"dayOrdinal":   {Field: FieldDayOrdinal},
	"weekdayShort": {Field: FieldWeekdayShort},
	"weekdayFull":  {Field: FieldWeekdayFull},
	"hour12":       {Field: FieldHour12},
	"hour24":       {Field: FieldHour24},
	"minute":       {Field: FieldMinute, Pad: 2},
	"second":       {Field: FieldSecond, Pad: 2},
	"millisecond":  {Field: FieldMillisecond, Pad: 3},
	"ampm":         {Field: FieldAmPm},
	"utcOffset":    {Field: FieldUTCOffset},
}

// Detect returns DialectBracket when the pattern contains a {identifier} token.
func Detect(pattern string) Dialect {
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '{' {
			continue
		}
		if _, n := bracketIdentifier(pattern[i:]); n > 0 {
			return DialectBracket
		}
	}
	return DialectLetter
}

// Compile turns pattern into an ordered token list in the given dialect.
// Adjacent literal text is merged into one token.
func Compile(pattern string, d Dialect) ([]Token, error) {
	if d == DialectBracket {
		return compileBracket(pattern)
	}
	return compileLetter(pattern)
}

type builder struct {
	tokens []Token
	lit    strings.Builder
}

func (b *builder) literal(s string) {
	b.lit.WriteString(s)
}

func (b *builder) field(t Token) {
	b.flush()
	b.tokens = append(b.tokens, t)
}

func (b *builder) flush() {
	if b.lit.Len() > 0 {
		b.tokens = append(b.tokens, Lit(b.lit.String()))
		b.lit.Reset()
	}
}

func (b *builder) done() []Token {
	b.flush()
	return b.tokens
}

func compileLetter(pattern string) ([]Token, error) {
	var b builder
	i := 0
scan:
	for i < len(pattern) {
		if pattern[i] == '[' {
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				return nil, terrors.UnterminatedLiteral(pattern, i)
			}
			b.literal(pattern[i+1 : i+1+end])
			i += end + 2
			continue
		}
		for _, lt := range letterTokens {
			if strings.HasPrefix(pattern[i:], lt.text) {
				b.field(lt.token)
				i += len(lt.text)
				continue scan
			}
		}
		// Unrecognized text passes through, one byte at a time; multi-byte
		// runes are copied intact because no token starts with a continuation byte.
		b.literal(pattern[i : i+1])
		i++
	}
	return b.done(), nil
}

func compileBracket(pattern string) ([]Token, error) {
	var b builder
	i := 0
	for i < len(pattern) {
		if pattern[i] != '{' {
			b.literal(pattern[i : i+1])
			i++
			continue
		}
		ident, n := bracketIdentifier(pattern[i:])
		if n == 0 {
			b.literal("{")
			i++
			continue
		}
		tok, err := bracketToken(ident, pattern)
		if err != nil {
			return nil, err
		}
		b.field(tok)
		i += n
	}
	return b.done(), nil
}

func bracketToken(ident, pattern string) (Token, error) {
	name, modifier, _ := strings.Cut(ident, ":")
	tok, ok := bracketFields[name]
	if !ok {
		return Token{}, terrors.UnknownField(name, pattern)
	}
	switch modifier {
	case "":
	case "pad":
		if tok.Field.numeric() {
			tok.Pad = tok.Field.padWidth()
		}
	case "nopad":
		tok.Pad = 0
	case "upper":
		tok.Case = CaseUpper
	case "lower":
		tok.Case = CaseLower
	case "compact":
		tok.Compact = true
	default:
		return Token{}, terrors.UnknownField(ident, pattern).WithHint("modifiers are pad, nopad, upper, lower and compact")
	}
	return tok, nil
}

// bracketIdentifier matches "{name}" or "{name:modifier}" at the start of s.
// It returns the inner text and the matched length, or 0 if s does not start
// with a well-formed token.
func bracketIdentifier(s string) (string, int) {
	if len(s) < 3 || s[0] != '{' {
		return "", 0
	}
	end := strings.IndexByte(s, '}')
	if end < 0 {
		return "", 0
	}
	inner := s[1:end]
	name, modifier, hasMod := strings.Cut(inner, ":")
	if !isIdentifier(name) || (hasMod && !isIdentifier(modifier)) {
		return "", 0
	}
	return inner, end + 1
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
