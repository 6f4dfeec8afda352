package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"github.com/egoavara/smart-updater/internal/card"
	"github.com/egoavara/smart-updater/internal/search"
)

// Environment variables that override the config file
const (
	EnvURL   = "HASS_URL"
	EnvToken = "HASS_TOKEN"
)

// HomeAssistantConfig contains the connection settings
type HomeAssistantConfig struct {
	URL   string `json:"url"`
	Token string `json:"token,omitempty"`
}

// SelectionConfig contains card selection settings
type SelectionConfig struct {
	Policy card.SelectionPolicy `json:"policy"` // "prune" (default) or "preserve"
}

// Config represents the main configuration file structure
type Config struct {
	Locale        string              `json:"locale"` // "auto" or ISO format (e.g., "ko-KR", "en-US")
	Entity        string              `json:"entity"` // entity the card observes when no --entity is given
	HomeAssistant HomeAssistantConfig `json:"homeAssistant"`
	Selection     SelectionConfig     `json:"selection"`
	Layout        string              `json:"layout,omitempty"` // optional YAML dashboard layout
}

// DefaultEntity is the sensor created by the Smart Updater integration
const DefaultEntity = "sensor.smart_updater_updates"

var (
	cfg     *Config
	cfgOnce sync.Once
	cfgMu   sync.RWMutex
)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Locale: "auto", // default: auto-detect system locale
		Entity: DefaultEntity,
		HomeAssistant: HomeAssistantConfig{
			URL: "http://homeassistant.local:8123",
		},
		Selection: SelectionConfig{
			Policy: card.PolicyPrune,
		},
	}
}

// Load loads the configuration from file and applies environment overrides
func Load() (*Config, error) {
	cfgMu.RLock()
	defer cfgMu.RUnlock()

	config, err := loadFile(ConfigPath())
	if err != nil {
		return nil, err
	}
	applyEnv(config)
	return config, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewConfig(), nil
		}
		return nil, err
	}

	config := NewConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// Set default locale if empty
	if config.Locale == "" {
		config.Locale = "auto"
	}

	if config.Entity == "" {
		config.Entity = DefaultEntity
	}

	// Set default selection policy if empty
	if config.Selection.Policy == "" {
		config.Selection.Policy = card.PolicyPrune
	}

	return config, nil
}

// applyEnv reads a .env file from the working directory, if any, then the process environment
func applyEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv(EnvURL); v != "" {
		config.HomeAssistant.URL = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		config.HomeAssistant.Token = v
	}
}

// Save saves the configuration to file
func Save(config *Config) error {
	cfgMu.Lock()
	defer cfgMu.Unlock()

	if err := EnsureDir(Dir()); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	// The file may carry an access token
	return os.WriteFile(ConfigPath(), data, 0600)
}

// Get returns the current configuration (singleton)
func Get() *Config {
	cfgOnce.Do(func() {
		var err error
		cfg, err = Load()
		if err != nil {
			cfg = NewConfig()
			applyEnv(cfg)
		}
	})
	return cfg
}

// GetLocale returns the configured locale
func GetLocale() string {
	return Get().Locale
}

// setters maps dotted config keys to their setters
var setters = map[string]func(*Config, string) error{
	"locale": func(c *Config, v string) error {
		c.Locale = v
		return nil
	},
	"entity": func(c *Config, v string) error {
		if err := (card.Config{Entity: v}).Validate(); err != nil {
			return err
		}
		c.Entity = v
		return nil
	},
	"homeAssistant.url": func(c *Config, v string) error {
		c.HomeAssistant.URL = strings.TrimRight(v, "/")
		return nil
	},
	"homeAssistant.token": func(c *Config, v string) error {
		c.HomeAssistant.Token = v
		return nil
	},
	"selection.policy": func(c *Config, v string) error {
		p, err := card.ParsePolicy(v)
		if err != nil {
			return err
		}
		c.Selection.Policy = p
		return nil
	},
	"layout": func(c *Config, v string) error {
		c.Layout = v
		return nil
	},
}

// Keys returns every settable key, sorted
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnknownKeyError is returned by Set for keys not listed by Keys
type UnknownKeyError struct {
	Key        string
	Suggestion string // closest valid key, if any
}

func (e *UnknownKeyError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown config key %q (did you mean %q?)", e.Key, e.Suggestion)
	}
	return fmt.Sprintf("unknown config key %q", e.Key)
}

// Apply sets one dotted key on config without saving
func Apply(config *Config, key, value string) error {
	set, ok := setters[key]
	if !ok {
		return &UnknownKeyError{Key: key, Suggestion: search.Closest(key, Keys())}
	}
	return set(config, value)
}

// Set sets one dotted key on the file config and saves.
// Environment overrides are not written back.
func Set(key, value string) error {
	cfgMu.RLock()
	config, err := loadFile(ConfigPath())
	cfgMu.RUnlock()
	if err != nil {
		return err
	}

	if err := Apply(config, key, value); err != nil {
		return err
	}
	if err := Save(config); err != nil {
		return err
	}

	// keep the singleton in sync
	_ = Apply(Get(), key, value)
	return nil
}

// Redacted returns a copy safe to print
func (c Config) Redacted() Config {
	if c.HomeAssistant.Token != "" {
		c.HomeAssistant.Token = "********"
	}
	return c
}
