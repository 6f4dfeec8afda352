package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mordilloSan/go-logger/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/egoavara/smart-updater/internal/card"
	"github.com/egoavara/smart-updater/internal/i18n"
	"github.com/egoavara/smart-updater/internal/version"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Config{Levels: []logger.Level{logger.ErrorLevel}})
	RegisterAliases()
	os.Exit(m.Run())
}

func TestUpdateAliasSharesFlags(t *testing.T) {
	alias, _, err := rootCmd.Find([]string{"update"})
	require.NoError(t, err)
	assert.Equal(t, "update-selected [update-entity-id...]", serviceUpdateSelectedCmd.Use)
	assert.NotNil(t, alias.Flags().Lookup("entity"))
	assert.Contains(t, alias.Short, "(alias)")
}

func TestLayoutValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(good, []byte("cards:\n  - type: custom:smart-updater-card\n    entity: sensor.smart_updater_updates\n"), 0644))
	require.NoError(t, os.WriteFile(bad, []byte("cards:\n  - type: custom:smart-updater-card\n"), 0644))

	rootCmd.SetArgs([]string{"layout", "validate", good})
	assert.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"layout", "validate", bad})
	err := rootCmd.Execute()
	var cfgErr *card.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRenderFromStatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "states.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"entity_id": "sensor.smart_updater_updates", "state": "1",
		 "attributes": {"updates": [{"entity_id": "update.x", "name": "X", "installed_version": "1", "latest_version": "2"}]}}
	]`), 0644))

	rootCmd.SetArgs([]string{"render", "--states", path, "--entity", "sensor.smart_updater_updates"})
	assert.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"render", "--states", path, "--entity", " "})
	var cfgErr *card.ConfigurationError
	assert.ErrorAs(t, rootCmd.Execute(), &cfgErr)
}

func TestVersionShort(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		versionShort = false
	})

	rootCmd.SetArgs([]string{"version", "--short"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, version.Version+"\n", buf.String())
}

func TestApplyLocale(t *testing.T) {
	t.Cleanup(func() { i18n.SetLocale("en-US") })

	assert.Equal(t, "ko-KR", ResolveLocale("ko-KR"))
	assert.NotEmpty(t, ResolveLocale("auto"))

	applyLocale("ko-KR")
	assert.Equal(t, language.Korean, i18n.Language())

	applyLocale("en-US")
	assert.Equal(t, language.AmericanEnglish, i18n.Language())
}
