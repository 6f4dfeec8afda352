package card

import (
	"context"
	"errors"
	"fmt"
)

// SelectionPolicy decides what happens to selected ids when a new snapshot arrives
type SelectionPolicy string

const (
	// PolicyPrune drops selected ids that are no longer pending
	PolicyPrune SelectionPolicy = "prune"
	// PolicyPreserve keeps every selected id until the user unchecks it
	PolicyPreserve SelectionPolicy = "preserve"
)

// ParsePolicy maps a config value to a policy, defaulting to prune
func ParsePolicy(s string) (SelectionPolicy, error) {
	switch SelectionPolicy(s) {
	case "", PolicyPrune:
		return PolicyPrune, nil
	case PolicyPreserve:
		return PolicyPreserve, nil
	default:
		return "", fmt.Errorf("unknown selection policy %q (valid: prune, preserve)", s)
	}
}

// Invoker sends service calls to the backend
type Invoker interface {
	CallService(ctx context.Context, domain, service string, data map[string]any) error
}

// ErrNotConfigured is returned by operations that need a configured entity
var ErrNotConfigured = errors.New("card is not configured")

// ErrNoInvoker is returned by UpdateSelected on a card built without an invoker, such as a one-shot render
var ErrNoInvoker = errors.New("card has no service invoker")

// Card is one widget instance. It is not safe for concurrent use; the host
// delivers every event from a single loop.
type Card struct {
	config     Config
	configured bool
	selection  *Selection
	invoker    Invoker
	policy     SelectionPolicy
	format     TimeFormatter
}

// Option customizes a card
type Option func(*Card)

// WithPolicy sets the selection policy applied on Refresh
func WithPolicy(p SelectionPolicy) Option {
	return func(c *Card) { c.policy = p }
}

// WithTimeFormatter sets how history timestamps are rendered
func WithTimeFormatter(f TimeFormatter) Option {
	return func(c *Card) { c.format = f }
}

// New creates an unconfigured card sending commands through invoker
func New(invoker Invoker, opts ...Option) *Card {
	c := &Card{
		selection: NewSelection(),
		invoker:   invoker,
		policy:    PolicyPrune,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetConfig validates and stores the config used by every later render
func (c *Card) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.config = cfg
	c.configured = true
	return nil
}

// Config returns the stored config
func (c *Card) Config() Config {
	return c.config
}

// Render looks up the configured entity and renders it with the current selection
func (c *Card) Render(states States) View {
	snap, _ := states.Lookup(c.config.Entity)
	return Render(c.config, snap, c.selection, c.format)
}

// Mode returns the mode the next render will be in
func (c *Card) Mode(states States) Mode {
	if _, ok := states.Lookup(c.config.Entity); ok {
		return ModeNormal
	}
	return ModeEntityNotFound
}

// CardSize is the layout size hint for the current states
func (c *Card) CardSize(states States) int {
	snap, _ := states.Lookup(c.config.Entity)
	return Size(snap)
}

// OnCheckboxChange is the only mutator of the selection. It never calls the backend.
func (c *Card) OnCheckboxChange(entityID string, checked bool) {
	if checked {
		c.selection.Add(entityID)
		return
	}
	c.selection.Remove(entityID)
}

// Selected returns the current selection in iteration order
func (c *Card) Selected() []string {
	return c.selection.IDs()
}

// Refresh applies the selection policy to a new registry snapshot and returns any dropped ids.
// Nothing is pruned while the entity is missing.
func (c *Card) Refresh(states States) []string {
	if c.policy != PolicyPrune {
		return nil
	}
	snap, ok := states.Lookup(c.config.Entity)
	if !ok {
		return nil
	}
	pending := make(map[string]bool, len(snap.PendingUpdates))
	for _, u := range snap.PendingUpdates {
		pending[u.EntityID] = true
	}
	return c.selection.Retain(pending)
}

// UpdateSelected sends exactly one update_selected call carrying the whole selection,
// including an empty one. The backend owns rejecting empty requests.
func (c *Card) UpdateSelected(ctx context.Context) error {
	if !c.configured {
		return ErrNotConfigured
	}
	if c.invoker == nil {
		return ErrNoInvoker
	}
	ids := c.selection.IDs()
	if err := c.invoker.CallService(ctx, ServiceDomain, ServiceUpdateSelected, map[string]any{
		"entity_id": ids,
	}); err != nil {
		return fmt.Errorf("call %s.%s: %w", ServiceDomain, ServiceUpdateSelected, err)
	}
	return nil
}
