package locale

import (
	"sync"

	"github.com/go-playground/locales"
	ut "github.com/go-playground/universal-translator"
	"golang.org/x/text/language"

	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
)

// Registry resolves BCP 47 tags to loaded tables.
// The first definition is the default for an empty tag.
type Registry struct {
	uni     *ut.UniversalTranslator
	tables  []*Table
	matcher language.Matcher
}

// NewRegistry loads every definition into one universal translator.
func NewRegistry(defs ...Definition) (*Registry, error) {
	if len(defs) == 0 {
		return nil, terrors.InvalidConfig("locale registry needs at least one definition")
	}
	translators := make([]locales.Translator, 0, len(defs))
	for _, d := range defs {
		if d.Translator == nil {
			return nil, terrors.InvalidConfig("locale definition has no translator")
		}
		translators = append(translators, d.Translator)
	}
	uni := ut.New(translators[0], translators...)

	r := &Registry{uni: uni}
	tags := make([]language.Tag, 0, len(defs))
	for _, d := range defs {
		t, err := NewTable(uni, d)
		if err != nil {
			return nil, err
		}
		tag, err := language.Parse(t.Locale())
		if err != nil {
			return nil, terrors.Wrap(err, terrors.ErrCodeInvalidConfig, "locale tag is not BCP 47", t.Locale())
		}
		r.tables = append(r.tables, t)
		tags = append(tags, tag)
	}
	r.matcher = language.NewMatcher(tags)
	return r, nil
}

var (
	builtinOnce sync.Once
	builtin     *Registry
)

// Builtin returns the shared registry with the en and zh tables.
func Builtin() *Registry {
	builtinOnce.Do(func() {
		r, err := NewRegistry(English(), Chinese())
		if err != nil {
			panic("locale: built-in tables failed to load: " + err.Error())
		}
		builtin = r
	})
	return builtin
}

// Locales returns the tags of the loaded tables in registration order.
func (r *Registry) Locales() []string {
	out := make([]string, len(r.tables))
	for i, t := range r.tables {
		out[i] = t.Locale()
	}
	return out
}

// Lookup returns the table best matching tag ("en-US" matches "en").
// A tag no table can serve is MISSING_LOCALE_ENTRY; there is no silent fallback.
func (r *Registry) Lookup(tag string) (*Table, error) {
	if tag == "" {
		return r.tables[0], nil
	}
	want, err := language.Parse(tag)
	if err != nil {
		return nil, terrors.Wrap(err, terrors.ErrCodeMissingLocaleEntry, "locale tag is not BCP 47", tag)
	}
	_, idx, conf := r.matcher.Match(want)
	if conf == language.No {
		return nil, terrors.MissingLocaleEntry(tag, "locale")
	}
	return r.tables[idx], nil
}

// Resolve is the fallback-enabled resolver: entries missing from tag's table,
// or a tag with no table at all, are served by the fallback table.
// An empty fallback behaves like Lookup.
func (r *Registry) Resolve(tag, fallback string) (*Table, error) {
	if fallback == "" {
		return r.Lookup(tag)
	}
	fb, err := r.Lookup(fallback)
	if err != nil {
		return nil, err
	}
	t, err := r.Lookup(tag)
	if err != nil {
		if terrors.IsCode(err, terrors.ErrCodeMissingLocaleEntry) {
			return fb, nil
		}
		return nil, err
	}
	return t.WithFallback(fb), nil
}
