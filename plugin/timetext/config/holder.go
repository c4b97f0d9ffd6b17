package config

import "sync/atomic"

// Holder publishes configuration snapshots. Readers always observe one whole
// snapshot; an update replaces it rather than editing it in place.
type Holder struct {
	p atomic.Pointer[Config]
}

// NewHolder creates a holder. A nil c publishes Default().
func NewHolder(c *Config) *Holder {
	if c == nil {
		c = Default()
	}
	h := &Holder{}
	h.p.Store(c)
	return h
}

// Load returns the current snapshot.
func (h *Holder) Load() *Config {
	return h.p.Load()
}

// Swap publishes c and returns the snapshot it replaced. A nil c is ignored.
func (h *Holder) Swap(c *Config) *Config {
	if c == nil {
		return h.p.Load()
	}
	return h.p.Swap(c)
}

// Apply builds a snapshot from o and publishes it only if it is valid.
func (h *Holder) Apply(o Overrides) (*Config, error) {
	c, err := Build(o)
	if err != nil {
		return nil, err
	}
	h.p.Store(c)
	return c, nil
}
