package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mordilloSan/go-logger/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/egoavara/smart-updater/internal/hass"
	"github.com/egoavara/smart-updater/internal/tui"
)

var cardEntity string

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Show the interactive Smart Updater card",
	Long: `Show the Smart Updater card bound to the live sensor.

The card follows every state change of the sensor. Select pending
updates with space and press enter to install them in one batch.

Example:
  smart-updater card
  smart-updater card --entity sensor.smart_updater_updates`,
	Args: cobra.NoArgs,
	RunE: runCard,
}

func init() {
	cardCmd.Flags().StringVarP(&cardEntity, "entity", "e", "", "entity to observe (default from config)")
}

func runCard(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	entity := entityOrDefault(cardEntity)
	c, err := buildCard(client, entity)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates, err := hass.Watch(ctx, client, hass.NewStore(), entity)
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal from here on
	if !verbose {
		logger.Init(logger.Config{Levels: []logger.Level{logger.ErrorLevel}})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return tui.Run(gctx, c, updates, client.Err)
	})
	g.Go(func() error {
		<-gctx.Done()
		return client.Close()
	})
	return g.Wait()
}
