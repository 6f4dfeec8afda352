package main

import (
	"fmt"
	"os"

	"github.com/egoavara/smart-updater/cmd"
	"github.com/egoavara/smart-updater/internal/config"
	"github.com/egoavara/smart-updater/internal/i18n"
)

func main() {
	lang := getLocale()
	if err := i18n.Init(nil, lang); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Register root aliases (update)
	cmd.RegisterAliases()

	cmd.Execute()
}

// getLocale returns the locale based on config
func getLocale() string {
	return cmd.ResolveLocale(config.GetLocale())
}
