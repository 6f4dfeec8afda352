package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/mordilloSan/go-logger/logger"

	"github.com/egoavara/smart-updater/internal/card"
	"github.com/egoavara/smart-updater/internal/config"
	"github.com/egoavara/smart-updater/internal/dashboard"
	"github.com/egoavara/smart-updater/internal/hass"
	"github.com/egoavara/smart-updater/internal/i18n"
)

// connect dials Home Assistant with the configured URL and token
func connect(ctx context.Context) (*hass.Client, error) {
	cfg := config.Get()
	if cfg.HomeAssistant.URL == "" {
		return nil, errors.New(i18n.T("config.missingURL", nil))
	}
	if cfg.HomeAssistant.Token == "" {
		return nil, errors.New(i18n.T("config.missingToken", nil))
	}

	logger.DebugKV("connecting", "url", cfg.HomeAssistant.URL)
	client, err := hass.Dial(ctx, cfg.HomeAssistant.URL, cfg.HomeAssistant.Token)
	if err != nil {
		return nil, fmt.Errorf("connect to Home Assistant: %w", err)
	}
	return client, nil
}

// cardOptions turns the configuration into card options
func cardOptions() ([]card.Option, error) {
	cfg := config.Get()
	policy, err := card.ParsePolicy(string(cfg.Selection.Policy))
	if err != nil {
		return nil, err
	}
	return []card.Option{
		card.WithPolicy(policy),
		card.WithTimeFormatter(i18n.FormatTimestamp),
	}, nil
}

// newCatalog registers every card this host can place
func newCatalog(invoker card.Invoker) (*dashboard.Catalog, error) {
	opts, err := cardOptions()
	if err != nil {
		return nil, err
	}
	return dashboard.NewDefaultCatalog(invoker, opts...), nil
}

// buildCard instantiates a smart updater card for entity through the catalog
func buildCard(invoker card.Invoker, entity string) (*card.Card, error) {
	catalog, err := newCatalog(invoker)
	if err != nil {
		return nil, err
	}

	w, err := catalog.Build(dashboard.CardConfig{
		Type:       card.Type,
		Properties: map[string]any{"entity": entity},
	})
	if err != nil {
		return nil, err
	}
	return w.(*card.Card), nil
}

// entityOrDefault returns the --entity flag value or the configured entity
func entityOrDefault(flag string) string {
	if flag != "" {
		return flag
	}
	return config.Get().Entity
}
