package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mordilloSan/go-logger/logger"
	"github.com/spf13/cobra"

	"github.com/egoavara/smart-updater/internal/card"
	"github.com/egoavara/smart-updater/internal/config"
	"github.com/egoavara/smart-updater/internal/dashboard"
	"github.com/egoavara/smart-updater/internal/hass"
	"github.com/egoavara/smart-updater/internal/tui"
)

var (
	renderEntity string
	renderStates string
	renderLayout string
	renderWidth  int
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the Smart Updater card once",
	Long: `Render the card once and print it.

States come from Home Assistant, or from a JSON file in the format
served by /api/states when --states is given. With --layout (or the
layout config key) every card of a YAML dashboard layout is rendered.

Example:
  smart-updater render
  smart-updater render --states states.json
  smart-updater render --layout dashboard.yaml --width 100`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderEntity, "entity", "e", "", "entity to render (default from config)")
	renderCmd.Flags().StringVarP(&renderStates, "states", "s", "", "read states from a JSON file instead of Home Assistant")
	renderCmd.Flags().StringVarP(&renderLayout, "layout", "l", "", "YAML dashboard layout to render")
	renderCmd.Flags().IntVarP(&renderWidth, "width", "w", 80, "card width in columns (0 to fit content)")
}

// loadStates reads path when given, otherwise fetches every state from Home Assistant
func loadStates(ctx context.Context, path string) ([]hass.State, error) {
	if path != "" {
		return hass.LoadStatesFile(path)
	}

	client, err := connect(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return client.GetStates(ctx)
}

func runRender(cmd *cobra.Command, args []string) error {
	states, err := loadStates(cmd.Context(), renderStates)
	if err != nil {
		return err
	}
	registry := hass.NewStore(states...).Registry()

	layoutPath := renderLayout
	if layoutPath == "" && renderEntity == "" {
		layoutPath = config.Get().Layout
	}
	if layoutPath != "" {
		return renderLayoutFile(layoutPath, registry)
	}

	// A one-shot render never sends commands
	c, err := buildCard(nil, entityOrDefault(renderEntity))
	if err != nil {
		return err
	}
	logger.DebugKV("rendering card", "entity", c.Config().Entity, "mode", c.Mode(registry), "size", c.CardSize(registry))
	fmt.Println(tui.RenderCard(c.Render(registry), renderWidth))
	return nil
}

func renderLayoutFile(path string, registry card.States) error {
	layout, err := dashboard.Load(path)
	if err != nil {
		return err
	}

	catalog, err := newCatalog(nil)
	if err != nil {
		return err
	}

	placed, buildErr := catalog.Instantiate(layout)
	if layout.Title != "" {
		fmt.Println(lipgloss.NewStyle().Bold(true).Render(layout.Title))
		fmt.Println()
	}
	for _, p := range placed {
		logger.DebugKV("rendering card", "index", p.Index, "size", p.Widget.CardSize(registry))
		fmt.Println(tui.RenderCard(p.Widget.Render(registry), renderWidth))
	}
	return buildErr
}
