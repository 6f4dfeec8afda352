package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/egoavara/smart-updater/internal/config"
	"github.com/egoavara/smart-updater/internal/dashboard"
	"github.com/egoavara/smart-updater/internal/i18n"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Manage dashboard layouts",
	Long: `Manage YAML dashboard layouts.

A layout lists cards by type tag:

  title: Updates
  cards:
    - type: custom:smart-updater-card
      entity: sensor.smart_updater_updates`,
}

var layoutValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check that every card of a layout can be placed",
	Long: `Build every card of a layout and report all cards that would be
refused, such as a smart updater card without an entity.

Without a file the configured layout is validated.

Example:
  smart-updater layout validate dashboard.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLayoutValidate,
}

func init() {
	layoutCmd.AddCommand(layoutValidateCmd)
}

func runLayoutValidate(cmd *cobra.Command, args []string) error {
	path := config.Get().Layout
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no layout given and none configured")
	}

	layout, err := dashboard.Load(path)
	if err != nil {
		return err
	}

	catalog, err := newCatalog(nil)
	if err != nil {
		return err
	}
	if err := catalog.Validate(layout); err != nil {
		return err
	}

	fmt.Println(i18n.T("layout.valid", map[string]any{"Count": len(layout.Cards)}, len(layout.Cards)))
	return nil
}
