package dashboard

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/mordilloSan/go-logger/logger"
)

// CardConfig is one card entry of a layout: a type tag plus free-form properties
type CardConfig struct {
	Type       string
	Properties map[string]any
}

// UnmarshalYAML splits the type tag from the remaining keys
func (c *CardConfig) UnmarshalYAML(data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Type, _ = raw["type"].(string)
	delete(raw, "type")
	c.Properties = raw
	return nil
}

// Props returns the card properties without the type tag
func (c CardConfig) Props() map[string]any {
	props := make(map[string]any, len(c.Properties))
	for k, v := range c.Properties {
		props[k] = v
	}
	return props
}

// Layout is a dashboard view made of cards
type Layout struct {
	Title string       `yaml:"title"`
	Cards []CardConfig `yaml:"cards"`
}

// Parse decodes a YAML layout
func Parse(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Load reads a YAML layout file
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}

	l, err := Parse(data)
	if err != nil {
		logYAMLError(err, path)
		return nil, fmt.Errorf("failed to parse layout %s: %w", path, err)
	}
	return l, nil
}

// logYAMLError logs the position of a YAML syntax error when goccy/go-yaml reports one
func logYAMLError(err error, path string) {
	var syntaxErr *yaml.SyntaxError
	if errors.As(err, &syntaxErr) {
		if tok := syntaxErr.GetToken(); tok != nil {
			logger.Errorf("layout error in %s at line %d, column %d: %s",
				path,
				tok.Position.Line,
				tok.Position.Column,
				syntaxErr.GetMessage())
			return
		}
		logger.Errorf("layout error in %s: %s", path, syntaxErr.GetMessage())
		return
	}
	logger.Errorf("layout error in %s: %v", path, err)
}

// Validate builds every card in the layout and reports all failures at once
func (c *Catalog) Validate(l *Layout) error {
	if l == nil {
		return errors.New("layout is empty")
	}

	var errs []error
	for i, cc := range l.Cards {
		if cc.Type == "" {
			errs = append(errs, fmt.Errorf("cards[%d]: missing type", i))
			continue
		}
		if _, err := c.Build(cc); err != nil {
			errs = append(errs, fmt.Errorf("cards[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Placed is a card instantiated from a layout entry
type Placed struct {
	Index  int
	Config CardConfig
	Widget Widget
}

// Instantiate builds every card of the layout in order. Cards that fail to build
// are refused and reported together; the rest are still placed.
func (c *Catalog) Instantiate(l *Layout) ([]Placed, error) {
	var (
		placed []Placed
		errs   []error
	)
	for i, cc := range l.Cards {
		w, err := c.Build(cc)
		if err != nil {
			logger.WarnKV("refusing card", "index", i, "type", cc.Type, "error", err)
			errs = append(errs, fmt.Errorf("cards[%d]: %w", i, err))
			continue
		}
		placed = append(placed, Placed{Index: i, Config: cc, Widget: w})
	}
	return placed, errors.Join(errs...)
}
