package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jeandeaual/go-locale"
	"github.com/spf13/cobra"

	"github.com/egoavara/smart-updater/internal/card"
	"github.com/egoavara/smart-updater/internal/config"
	"github.com/egoavara/smart-updater/internal/i18n"
	"github.com/egoavara/smart-updater/internal/tui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage smart-updater configuration",
	Long: `Manage smart-updater configuration settings.

Example:
  smart-updater config show
  smart-updater config set homeAssistant.url http://homeassistant.local:8123`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Available keys:
  locale               - Language setting
                         Values: auto, en-US, ko-KR, etc.
  entity               - Sensor entity the card observes
  homeAssistant.url    - Home Assistant base URL
  homeAssistant.token  - Long-lived access token (HASS_TOKEN overrides it)
  selection.policy     - What happens to selected updates that are no longer pending
                         Values: prune, preserve (interactive when omitted)
  layout               - YAML dashboard layout used by render

Example:
  smart-updater config set locale ko-KR
  smart-updater config set selection.policy preserve`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get().Redacted()

	fmt.Println("Configuration:")
	fmt.Println("----------------------------------------")
	fmt.Printf("  locale: %s\n", cfg.Locale)
	fmt.Printf("  entity: %s\n", cfg.Entity)
	fmt.Printf("  homeAssistant.url: %s\n", cfg.HomeAssistant.URL)
	fmt.Printf("  homeAssistant.token: %s\n", cfg.HomeAssistant.Token)
	fmt.Printf("  selection.policy: %s\n", cfg.Selection.Policy)
	fmt.Printf("  layout: %s\n", cfg.Layout)
	fmt.Println()
	fmt.Printf("  File: %s\n", config.ConfigPath())

	// Explain current settings
	fmt.Println()
	fmt.Println("Locale:")
	if cfg.Locale == "auto" {
		fmt.Println("  auto: System locale is auto-detected")
	} else {
		fmt.Printf("  %s: Using fixed locale\n", cfg.Locale)
	}
	fmt.Printf("  messages: %s\n", i18n.Language())

	fmt.Println()
	fmt.Println("Selection policy:")
	switch cfg.Selection.Policy {
	case card.PolicyPrune:
		fmt.Println("  prune: " + i18n.T("policy.prune.desc", nil))
	case card.PolicyPreserve:
		fmt.Println("  preserve: " + i18n.T("policy.preserve.desc", nil))
	}

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]

	if len(args) == 1 {
		if key != "selection.policy" {
			return fmt.Errorf("missing value for %s", key)
		}
		policy, ok, err := tui.RunPolicySelector(config.Get().Selection.Policy)
		if err != nil || !ok {
			return err
		}
		args = append(args, string(policy))
	}
	value := args[1]

	if err := config.Set(key, value); err != nil {
		var keyErr *config.UnknownKeyError
		if errors.As(err, &keyErr) {
			return errors.New(i18n.T("config.unknownKey", map[string]any{
				"Key":  key,
				"Keys": strings.Join(config.Keys(), ", "),
			}))
		}
		return err
	}

	switch key {
	case "locale":
		applyLocale(value)
		fmt.Println(i18n.T("config.localeSet", map[string]any{"Locale": value}))
	case "selection.policy":
		fmt.Println(i18n.T("config.policySet", map[string]any{"Policy": value}))
	default:
		fmt.Println(i18n.T("config.saved", map[string]any{"Key": key}))
	}
	return nil
}

// ResolveLocale maps a configured locale to a language tag, detecting the system locale for "auto"
func ResolveLocale(configured string) string {
	if configured != "auto" {
		return configured
	}
	userLocale, err := locale.GetLocale()
	if err != nil || userLocale == "" {
		return "en-US"
	}
	return userLocale
}

// applyLocale switches messages to the new locale for the rest of the run
func applyLocale(configured string) {
	i18n.SetLocale(ResolveLocale(configured))
}
