package timetext

import (
	"log/slog"
	"time"

	"github.com/hrygo/timetext/plugin/timetext/bucket"
	"github.com/hrygo/timetext/plugin/timetext/config"
	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
	"github.com/hrygo/timetext/plugin/timetext/natural"
	"github.com/hrygo/timetext/plugin/timetext/pattern"
	"github.com/hrygo/timetext/plugin/timetext/smart"
	"github.com/hrygo/timetext/plugin/timetext/timezone"
	"github.com/hrygo/timetext/plugin/timetext/value"
)

// Engine implements Service over a swappable configuration snapshot.
type Engine struct {
	holder *config.Holder
	cache  *pattern.Cache
	clock  func() time.Time
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used when a call omits its reference.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHolder shares an existing configuration holder.
func WithHolder(h *config.Holder) Option {
	return func(e *Engine) {
		if h != nil {
			e.holder = h
		}
	}
}

// New creates an engine. A nil cfg uses config.Default().
func New(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.holder == nil {
		e.holder = config.NewHolder(cfg)
	} else if cfg != nil {
		e.holder.Swap(cfg)
	}
	e.cache = pattern.NewCache(e.holder.Load().CacheSize())
	return e
}

// patterns returns the compile cache sized for c. Snapshots published straight
// into a shared holder are picked up here on the next call.
func (e *Engine) patterns(c *config.Config) *pattern.Cache {
	if e.cache.Capacity() != c.CacheSize() {
		e.cache.Resize(c.CacheSize())
	}
	return e.cache
}

// Config returns the current snapshot.
func (e *Engine) Config() *config.Config {
	return e.holder.Load()
}

// Apply builds a snapshot from o and publishes it if valid.
func (e *Engine) Apply(o config.Overrides) error {
	c, err := e.holder.Apply(o)
	if err != nil {
		return err
	}
	e.patterns(c)
	e.logger.Debug("timetext configuration updated",
		slog.String("locale", c.Locale().Locale()),
		slog.String("default_zone", c.DefaultZone()))
	return nil
}

// CacheStats reports pattern cache hits and misses.
func (e *Engine) CacheStats() (hits, misses uint64) {
	return e.cache.Stats()
}

// Format renders v with pattern in v's display zone.
func (e *Engine) Format(v value.TimeValue, p string) (string, error) {
	c := e.holder.Load()
	tokens, err := e.patterns(c).CompileAuto(p)
	if err != nil {
		return "", err
	}
	return pattern.RenderWith(tokens, v, c.Locale(), c.Zones())
}

// FormatPreset renders v with the preset registered under name.
func (e *Engine) FormatPreset(v value.TimeValue, name string) (string, error) {
	p, ok := e.holder.Load().Preset(name)
	if !ok {
		return "", terrors.UnknownField(name, name).WithHint("use a configured preset name")
	}
	return e.Format(v, p)
}

// Relative phrases v against reference.
func (e *Engine) Relative(v value.TimeValue, reference *value.TimeValue) (string, error) {
	c := e.holder.Load()
	return bucket.Relative(v, e.reference(reference), c.Thresholds(), c.Locale())
}

// Smart selects a rendering strategy by calendar proximity in the resolved zone.
func (e *Engine) Smart(v value.TimeValue, opts SmartOptions) (string, error) {
	c := e.holder.Load()
	ref := e.reference(opts.Reference)
	zone, err := e.resolveZone(c, opts.Zone, opts.Reference, "smart format")
	if err != nil {
		return "", err
	}
	sel := smart.New(c.SmartRules(), c.Thresholds(), c.Zones(), e.patterns(c))
	return sel.Format(v, ref, zone, c.Locale())
}

// ParseNatural is the non-throwing parse.
func (e *Engine) ParseNatural(text string, opts ParseOptions) (value.TimeValue, bool, error) {
	v, err := e.MustParseNatural(text, opts)
	if err != nil {
		if terrors.IsCode(err, terrors.ErrCodeParseFailed) {
			return value.TimeValue{}, false, nil
		}
		return value.TimeValue{}, false, err
	}
	return v, true, nil
}

// MustParseNatural is the throwing parse: an unrecognized expression is PARSE_FAILED.
// Length and depth bounds are checked before anything else.
func (e *Engine) MustParseNatural(text string, opts ParseOptions) (value.TimeValue, error) {
	c := e.holder.Load()
	p := natural.NewParser(c.Zones(), c.WeekStart(), c.Limits())
	root, err := p.Build(text)
	if err != nil {
		return value.TimeValue{}, e.parseFailed(err, text)
	}
	v, err := p.Evaluate(root, e.reference(opts.Reference), parseZone(c, opts))
	if err != nil {
		return value.TimeValue{}, e.parseFailed(err, text)
	}
	return v, nil
}

func (e *Engine) parseFailed(err error, text string) error {
	e.logger.Debug("natural parse failed",
		slog.String("code", string(terrors.GetCodeFromError(err, ""))),
		slog.Int("length", len(text)))
	return err
}

// CanParse reports whether MustParseNatural would succeed.
func (e *Engine) CanParse(text string, opts ParseOptions) bool {
	_, err := e.MustParseNatural(text, opts)
	return err == nil
}

// ParseRange parses text into a [start, end) range.
func (e *Engine) ParseRange(text string, opts ParseOptions) (natural.Range, error) {
	c := e.holder.Load()
	p := natural.NewParser(c.Zones(), c.WeekStart(), c.Limits())
	return p.ParseRange(text, e.reference(opts.Reference), parseZone(c, opts))
}

// parseZone picks the zone for calendar arithmetic in a parse: the explicit
// zone, the reference's origin zone, the configured default, then UTC.
// Parsing never fails for want of a zone.
func parseZone(c *config.Config, opts ParseOptions) string {
	if opts.Zone != "" {
		return opts.Zone
	}
	if opts.Reference != nil {
		if zone, ok := opts.Reference.Zone(); ok {
			return zone
		}
	}
	if zone := c.DefaultZone(); zone != "" {
		return zone
	}
	return timezone.TimezoneUTC
}

func (e *Engine) reference(ref *value.TimeValue) value.TimeValue {
	if ref != nil {
		return *ref
	}
	return value.Now(e.clock)
}

// resolveZone picks the zone for smart formatting: the explicit zone, then the
// reference's origin zone, then the configured default. Without any of them a
// strict configuration fails and a lenient one uses UTC.
func (e *Engine) resolveZone(c *config.Config, explicit string, ref *value.TimeValue, op string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if ref != nil {
		if zone, ok := ref.Zone(); ok {
			return zone, nil
		}
	}
	if zone := c.DefaultZone(); zone != "" {
		return zone, nil
	}
	if c.StrictTimezone() {
		return "", terrors.MissingTimezoneContext(op)
	}
	return timezone.TimezoneUTC, nil
}

var _ Service = (*Engine)(nil)
