package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mordilloSan/go-logger/logger"
	"github.com/spf13/cobra"

	"github.com/egoavara/smart-updater/internal/card"
	"github.com/egoavara/smart-updater/internal/i18n"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Call Smart Updater services",
	Long: `Call Smart Updater services in Home Assistant.

Commands:
  update-selected  Install the given updates in one batch`,
}

var serviceEntity string

var serviceUpdateSelectedCmd = &cobra.Command{
	Use:   "update-selected [update-entity-id...]",
	Short: "Install the given updates in one batch",
	Long: `Send one smart_updater.update_selected call carrying every given
update entity id, in the given order. Duplicates are sent once.

The command returns as soon as the call is sent; installation
progress shows up on the sensor.

Example:
  smart-updater service update-selected update.mushroom_update update.hacs_update
  smart-updater update update.home_assistant_core_update`,
	Args: cobra.ArbitraryArgs,
	RunE: runServiceUpdateSelected,
}

func init() {
	serviceUpdateSelectedCmd.Flags().StringVarP(&serviceEntity, "entity", "e", "", "sensor entity the card is bound to (default from config)")
	serviceCmd.AddCommand(serviceUpdateSelectedCmd)
}

func runServiceUpdateSelected(cmd *cobra.Command, args []string) error {
	client, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	c, err := buildCard(client, entityOrDefault(serviceEntity))
	if err != nil {
		return err
	}
	for _, id := range args {
		c.OnCheckboxChange(id, true)
	}

	selected := c.Selected()
	logger.InfoKV("sending update", "entity_ids", selected)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	if err := c.UpdateSelected(ctx); err != nil {
		return err
	}

	fmt.Println(i18n.T("service.sent", map[string]any{
		"Domain":  card.ServiceDomain,
		"Service": card.ServiceUpdateSelected,
		"Count":   len(selected),
	}, len(selected)))
	return nil
}
