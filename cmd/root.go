package cmd

import (
	"fmt"
	"os"

	"github.com/mordilloSan/go-logger/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose bool

	rootCmd = &cobra.Command{
		Use:           "smart-updater",
		Short:         "Terminal dashboard for the Home Assistant Smart Updater",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `smart-updater shows the pending updates and update history reported
by the Smart Updater sensor in Home Assistant, and lets you pick
updates and install them in one batch.

Commands:
  card     Interactive card bound to the live sensor
  render   Print the card once (live or from a states file)
  service  Call Smart Updater services
  scan     List pending updates found on update.* entities
  layout   Validate dashboard layouts
  config   Manage configuration

Shortcuts (aliases):
  update-selected, update = service update-selected`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogger()
		},
	}
)

func initLogger() {
	levels := []logger.Level{logger.InfoLevel, logger.WarnLevel, logger.ErrorLevel}
	if verbose {
		levels = logger.AllLevels()
	}
	logger.Init(logger.Config{Levels: levels})
}

// createAliasCommand creates a root-level alias that shares flags with a subcommand
func createAliasCommand(subCmd *cobra.Command, aliases []string) *cobra.Command {
	aliasCmd := &cobra.Command{
		Use:     subCmd.Use,
		Short:   subCmd.Short + " (alias)",
		Long:    subCmd.Long,
		Args:    subCmd.Args,
		Aliases: aliases,
		RunE:    subCmd.RunE,
	}
	// Copy all flags from the original command
	subCmd.Flags().VisitAll(func(f *pflag.Flag) {
		aliasCmd.Flags().AddFlag(f)
	})
	return aliasCmd
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Main commands
	rootCmd.AddCommand(cardCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(serviceCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(configCmd)
}

// RegisterAliases registers root-level aliases for subcommands.
// Must be called after subcommands are initialized.
func RegisterAliases() {
	rootCmd.AddCommand(createAliasCommand(serviceUpdateSelectedCmd, []string{"update"}))
}
