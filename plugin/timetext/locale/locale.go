// Package locale holds the phrase tables used by the renderers.
//
// A Table is built once from a Definition and is read-only afterwards. Month and
// weekday names and plural rules come from github.com/go-playground/locales; the
// phrase templates are stored in a github.com/go-playground/universal-translator
// Translator, which selects the plural form for a count.
package locale

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/locales"
	ut "github.com/go-playground/universal-translator"

	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
)

// Direction tells a phrase whether the target lies before or after the reference.
type Direction int

const (
	Past Direction = iota
	Future
)

func (d Direction) String() string {
	if d == Future {
		return "future"
	}
	return "past"
}

// Fixed string keys every table must provide.
const (
	KeyToday     = "today"
	KeyYesterday = "yesterday"
	KeyTomorrow  = "tomorrow"
	// KeyAt joins a day word ({0}) and a clock time ({1}).
	KeyAt = "at"
)

// RequiredFixed lists the fixed keys checked at build time.
var RequiredFixed = []string{KeyToday, KeyYesterday, KeyTomorrow, KeyAt}

// Names is the part of a table the pattern renderer needs.
type Names interface {
	MonthShort(m time.Month) string
	MonthFull(m time.Month) string
	WeekdayShort(d time.Weekday) string
	WeekdayFull(d time.Weekday) string
	// Meridiem returns the AM or PM marker for a 0-23 hour.
	Meridiem(hour int) string
}

// Phraser turns a bucket and its magnitude into text.
type Phraser interface {
	Phrase(bucket string, count int64, dir Direction) (string, error)
	Fixed(key string, params ...string) (string, error)
	Has(bucket string) bool
}

// Locale is everything a renderer needs from a table.
type Locale interface {
	Names
	Phraser
	Locale() string
}

// BucketPhrases holds the templates of one bucket. Templates containing {0}
// are plural forms keyed by rule; a template without {0} is a qualitative
// phrase and must be registered under locales.PluralRuleOther.
type BucketPhrases struct {
	Past   map[locales.PluralRule]string
	Future map[locales.PluralRule]string
}

// Definition describes a locale before it is loaded into a Table.
type Definition struct {
	// Translator supplies names and plural rules.
	Translator locales.Translator
	Meridiem   [2]string
	Fixed      map[string]string
	Buckets    map[string]BucketPhrases
}

type entryKind int

const (
	entryCardinal entryKind = iota + 1
	entryQualitative
)

// Table is an immutable, loaded locale.
type Table struct {
	tag      string
	trans    ut.Translator
	months   [12][2]string
	weekdays [7][2]string
	meridiem [2]string
	entries  map[string]entryKind
	fallback *Table
}

// NewTable loads def into a translator obtained from uni.
func NewTable(uni *ut.UniversalTranslator, def Definition) (*Table, error) {
	if def.Translator == nil {
		return nil, terrors.InvalidConfig("locale definition has no translator")
	}
	tag := def.Translator.Locale()
	trans, found := uni.GetTranslator(tag)
	if !found {
		return nil, terrors.MissingLocaleEntry(tag, "translator")
	}

	t := &Table{
		tag:      tag,
		trans:    trans,
		meridiem: def.Meridiem,
		entries:  make(map[string]entryKind, len(def.Buckets)),
	}
	for m := time.January; m <= time.December; m++ {
		t.months[m-1] = [2]string{def.Translator.MonthAbbreviated(m), def.Translator.MonthWide(m)}
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		t.weekdays[d] = [2]string{def.Translator.WeekdayAbbreviated(d), def.Translator.WeekdayWide(d)}
	}

	for _, key := range RequiredFixed {
		if _, ok := def.Fixed[key]; !ok {
			return nil, terrors.MissingLocaleEntry(tag, key)
		}
	}
	for key, text := range def.Fixed {
		if err := trans.Add(key, text, true); err != nil {
			return nil, terrors.Wrap(err, terrors.ErrCodeInvalidConfig, "bad fixed phrase", key)
		}
	}

	for bucket, phrases := range def.Buckets {
		kind, err := t.loadBucket(bucket, phrases)
		if err != nil {
			return nil, err
		}
		t.entries[bucket] = kind
	}
	if err := trans.VerifyTranslations(); err != nil {
		return nil, terrors.Wrap(err, terrors.ErrCodeMissingLocaleEntry, "incomplete plural forms", tag)
	}
	return t, nil
}

func (t *Table) loadBucket(bucket string, p BucketPhrases) (entryKind, error) {
	if len(p.Past) == 0 || len(p.Future) == 0 {
		return 0, terrors.MissingLocaleEntry(t.tag, bucket)
	}
	var kind entryKind
	for dir, forms := range map[Direction]map[locales.PluralRule]string{Past: p.Past, Future: p.Future} {
		key := phraseKey(bucket, dir)
		for rule, text := range forms {
			k := entryCardinal
			if !strings.Contains(text, "{0}") {
				k = entryQualitative
			}
			if kind != 0 && kind != k {
				return 0, terrors.InvalidConfig("bucket " + bucket + " mixes counted and qualitative phrases")
			}
			kind = k

			var err error
			if k == entryQualitative {
				if rule != locales.PluralRuleOther {
					return 0, terrors.InvalidConfig("qualitative phrase for " + bucket + " must use the other rule")
				}
				err = t.trans.Add(key, text, true)
			} else {
				err = t.trans.AddCardinal(key, text, rule, true)
			}
			if err != nil {
				return 0, terrors.Wrap(err, terrors.ErrCodeInvalidConfig, "bad phrase for bucket "+bucket, text)
			}
		}
	}
	return kind, nil
}

func phraseKey(bucket string, dir Direction) string {
	return bucket + "." + dir.String()
}

// WithFallback returns a copy that consults fb for entries this table lacks.
func (t *Table) WithFallback(fb *Table) *Table {
	if fb == nil || fb == t {
		return t
	}
	c := *t
	c.fallback = fb
	return &c
}

// Locale returns the BCP 47 tag of the table.
func (t *Table) Locale() string {
	return t.tag
}

// Has reports whether bucket resolves in this table or its fallback.
func (t *Table) Has(bucket string) bool {
	if _, ok := t.entries[bucket]; ok {
		return true
	}
	return t.fallback != nil && t.fallback.Has(bucket)
}

// Phrase renders bucket for count in the given direction.
func (t *Table) Phrase(bucket string, count int64, dir Direction) (string, error) {
	kind, ok := t.entries[bucket]
	if !ok {
		if t.fallback != nil {
			return t.fallback.Phrase(bucket, count, dir)
		}
		return "", terrors.MissingLocaleEntry(t.tag, bucket)
	}
	key := phraseKey(bucket, dir)
	var (
		s   string
		err error
	)
	if kind == entryQualitative {
		s, err = t.trans.T(key)
	} else {
		s, err = t.trans.C(key, float64(count), 0, strconv.FormatInt(count, 10))
	}
	if err != nil {
		return "", terrors.Wrap(err, terrors.ErrCodeMissingLocaleEntry, "phrase lookup failed", key).
			WithContext("locale", t.tag)
	}
	return s, nil
}

// Fixed renders one of the fixed strings, substituting {0}, {1}, ... with params.
func (t *Table) Fixed(key string, params ...string) (string, error) {
	s, err := t.trans.T(key, params...)
	if err != nil {
		if t.fallback != nil {
			return t.fallback.Fixed(key, params...)
		}
		return "", terrors.Wrap(err, terrors.ErrCodeMissingLocaleEntry, "fixed phrase lookup failed", key).
			WithContext("locale", t.tag)
	}
	return s, nil
}

func (t *Table) MonthShort(m time.Month) string { return t.months[m-1][0] }

func (t *Table) MonthFull(m time.Month) string { return t.months[m-1][1] }

func (t *Table) WeekdayShort(d time.Weekday) string { return t.weekdays[d][0] }

func (t *Table) WeekdayFull(d time.Weekday) string { return t.weekdays[d][1] }

// Meridiem returns the AM marker for hours 0-11 and PM for 12-23.
func (t *Table) Meridiem(hour int) string {
	if hour < 12 {
		return t.meridiem[0]
	}
	return t.meridiem[1]
}
