package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/egoavara/smart-updater/internal/card"
	"github.com/egoavara/smart-updater/internal/hass"
	"github.com/egoavara/smart-updater/internal/i18n"
	"github.com/egoavara/smart-updater/internal/search"
)

var scanStates string

var scanCmd = &cobra.Command{
	Use:   "scan [keyword]",
	Short: "List pending updates found on update.* entities",
	Long: `List every pending update found on update.* entities, the same way
the Smart Updater sensor computes them. Updates are listed by entity id
and the Home Assistant core update, when pending, is listed last.

An optional keyword filters the list with fuzzy matching on name and
entity id.

Example:
  smart-updater scan
  smart-updater scan mushroom
  smart-updater scan --states states.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanStates, "states", "s", "", "read states from a JSON file instead of Home Assistant")
}

func runScan(cmd *cobra.Command, args []string) error {
	states, err := loadStates(cmd.Context(), scanStates)
	if err != nil {
		return err
	}

	items := hass.ScanPending(hass.NewStore(states...).All())
	if len(args) == 1 {
		results := search.FuzzySearch(items, args[0])
		items = make([]card.UpdateItem, len(results))
		for i, r := range results {
			items[i] = r.Item
		}
	}

	if len(items) == 0 {
		fmt.Println(i18n.T("scan.none", nil))
		return nil
	}

	fmt.Println(i18n.T("scan.header", map[string]any{"Count": len(items)}, len(items)))
	fmt.Println()

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("ENTITY", i18n.T("card.col.name", nil), i18n.T("card.col.installed", nil), i18n.T("card.col.available", nil)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, item := range items {
		t.Row(item.EntityID, item.Name, item.InstalledVersion, item.LatestVersion)
	}
	fmt.Println(t.Render())
	return nil
}
