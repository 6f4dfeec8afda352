package dashboard

import (
	"fmt"
	"sort"
	"sync"

	"github.com/egoavara/smart-updater/internal/card"
	"github.com/egoavara/smart-updater/internal/search"
)

// Widget is a card the host can place on a dashboard
type Widget interface {
	Render(states card.States) card.View
	CardSize(states card.States) int
}

// Factory builds a widget from its raw layout properties
type Factory func(props map[string]any) (Widget, error)

// Catalog maps card type tags to factories. Hosts register every card they support at startup.
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[string]Factory)}
}

// Register adds a factory for tag. Registering a tag twice is an error.
func (c *Catalog) Register(tag string, f Factory) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.factories[tag]; exists {
		return fmt.Errorf("card type %q is already registered", tag)
	}
	c.factories[tag] = f
	return nil
}

// Types returns every registered tag, sorted
func (c *Catalog) Types() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tags := make([]string, 0, len(c.factories))
	for tag := range c.factories {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Build instantiates the card described by cfg.
// Factory errors such as *card.ConfigurationError are returned unchanged in the chain.
func (c *Catalog) Build(cfg CardConfig) (Widget, error) {
	c.mu.RLock()
	f, ok := c.factories[cfg.Type]
	c.mu.RUnlock()
	if !ok {
		if hint := search.Closest(cfg.Type, c.Types()); hint != "" {
			return nil, fmt.Errorf("unknown card type %q (did you mean %q?)", cfg.Type, hint)
		}
		return nil, fmt.Errorf("unknown card type %q", cfg.Type)
	}

	w, err := f(cfg.Props())
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", cfg.Type, err)
	}
	return w, nil
}

// SmartUpdaterFactory builds smart updater cards that send commands through invoker
func SmartUpdaterFactory(invoker card.Invoker, opts ...card.Option) Factory {
	return func(props map[string]any) (Widget, error) {
		cfg, err := card.ParseConfig(props)
		if err != nil {
			return nil, err
		}
		c := card.New(invoker, opts...)
		if err := c.SetConfig(cfg); err != nil {
			return nil, err
		}
		return c, nil
	}
}

// NewDefaultCatalog returns a catalog with the smart updater card registered
func NewDefaultCatalog(invoker card.Invoker, opts ...card.Option) *Catalog {
	c := NewCatalog()
	// cannot fail on an empty catalog
	_ = c.Register(card.Type, SmartUpdaterFactory(invoker, opts...))
	return c
}
