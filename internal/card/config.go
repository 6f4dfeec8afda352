package card

import (
	"fmt"
	"strings"
)

// Config is the declarative card configuration, `{entity: ...}` in a layout
type Config struct {
	Entity string `json:"entity" yaml:"entity"`
}

// ConfigurationError is returned when a card cannot be instantiated from its config.
// Hosts must refuse to place the card when they get one.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid card configuration: %s: %s", e.Field, e.Reason)
}

// Validate checks the required entity id
func (c Config) Validate() error {
	if strings.TrimSpace(c.Entity) == "" {
		return &ConfigurationError{Field: "entity", Reason: "you need to define an entity"}
	}
	return nil
}

// ParseConfig reads a card config out of a generic property bag, as found in a layout file
func ParseConfig(raw map[string]any) (Config, error) {
	v, ok := raw["entity"]
	if !ok || v == nil {
		return Config{}, &ConfigurationError{Field: "entity", Reason: "you need to define an entity"}
	}
	entity, ok := v.(string)
	if !ok {
		return Config{}, &ConfigurationError{Field: "entity", Reason: fmt.Sprintf("expected a string, got %T", v)}
	}

	cfg := Config{Entity: entity}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
