package natural

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Chains are stateful, so each call takes one from the pool.
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Cf)), // zero-width joiners, BOM
			width.Fold,
		)
	},
}

// normalize folds case and width, drops format characters and collapses
// whitespace to single spaces.
func normalize(s string) string {
	s = strings.ToValidUTF8(s, "")
	if s == "" {
		return ""
	}
	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		ns = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(ns), " ")
}

// tokenize splits normalized text into words. Commas and semicolons separate
// words like spaces do.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';'
	})
}
