package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egoavara/smart-updater/internal/card"
)

func withHome(t *testing.T) string {
	t.Helper()
	prev := homeDir
	homeDir = t.TempDir()
	t.Cleanup(func() { homeDir = prev })
	t.Chdir(t.TempDir())
	return homeDir
}

func TestLoadDefaults(t *testing.T) {
	withHome(t)
	t.Setenv(EnvURL, "")
	t.Setenv(EnvToken, "")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), c)
	assert.Equal(t, card.PolicyPrune, c.Selection.Policy)
}

func TestLoadFillsEmptyFields(t *testing.T) {
	home := withHome(t)
	t.Setenv(EnvURL, "")
	t.Setenv(EnvToken, "")

	require.NoError(t, EnsureDir(filepath.Join(home, ".config", "smart-updater")))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte(`{"locale":"","homeAssistant":{"url":"http://ha:8123"}}`), 0600))

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "auto", c.Locale)
	assert.Equal(t, DefaultEntity, c.Entity)
	assert.Equal(t, "http://ha:8123", c.HomeAssistant.URL)
	assert.Equal(t, card.PolicyPrune, c.Selection.Policy)

	require.NoError(t, os.WriteFile(ConfigPath(), []byte(`{`), 0600))
	_, err = Load()
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	withHome(t)
	t.Setenv(EnvURL, "https://ha.example.com")
	t.Setenv(EnvToken, "from-env")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://ha.example.com", c.HomeAssistant.URL)
	assert.Equal(t, "from-env", c.HomeAssistant.Token)
}

func TestDotEnv(t *testing.T) {
	withHome(t)
	t.Setenv(EnvURL, "")
	t.Setenv(EnvToken, "")
	// godotenv never overrides variables that are already set
	os.Unsetenv(EnvToken)

	require.NoError(t, os.WriteFile(".env", []byte("HASS_TOKEN=from-dotenv\n"), 0600))
	t.Cleanup(func() { os.Unsetenv(EnvToken) })

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", c.HomeAssistant.Token)
}

func TestApply(t *testing.T) {
	c := NewConfig()

	require.NoError(t, Apply(c, "selection.policy", "preserve"))
	assert.Equal(t, card.PolicyPreserve, c.Selection.Policy)
	assert.Error(t, Apply(c, "selection.policy", "keep-everything"))

	require.NoError(t, Apply(c, "homeAssistant.url", "http://ha:8123/"))
	assert.Equal(t, "http://ha:8123", c.HomeAssistant.URL)

	var cfgErr *card.ConfigurationError
	assert.ErrorAs(t, Apply(c, "entity", "  "), &cfgErr)

	var keyErr *UnknownKeyError
	require.ErrorAs(t, Apply(c, "homeAssistant.port", "8123"), &keyErr)
	assert.Equal(t, "homeAssistant.port", keyErr.Key)

	require.ErrorAs(t, Apply(c, "selection.polcy", "prune"), &keyErr)
	assert.Equal(t, "selection.policy", keyErr.Suggestion)
	assert.Contains(t, keyErr.Error(), `did you mean "selection.policy"`)

	assert.Contains(t, Keys(), "homeAssistant.token")
}

func TestSetWritesFileWithoutEnv(t *testing.T) {
	withHome(t)
	t.Setenv(EnvURL, "")
	t.Setenv(EnvToken, "from-env")

	require.NoError(t, Set("selection.policy", "preserve"))

	data, err := os.ReadFile(ConfigPath())
	require.NoError(t, err)
	var onDisk Config
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, card.PolicyPreserve, onDisk.Selection.Policy)
	assert.Empty(t, onDisk.HomeAssistant.Token, "environment token must not be persisted")

	info, err := os.Stat(ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestRedacted(t *testing.T) {
	c := NewConfig()
	c.HomeAssistant.Token = "secret"
	assert.Equal(t, "********", c.Redacted().HomeAssistant.Token)
	assert.Equal(t, "secret", c.HomeAssistant.Token)
}
