package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egoavara/smart-updater/internal/card"
)

var pending = []card.UpdateItem{
	{EntityID: "update.mushroom_update", Name: "Mushroom", InstalledVersion: "3.2.0", LatestVersion: "3.3.0"},
	{EntityID: "update.hacs_update", Name: "HACS", InstalledVersion: "1.33.0", LatestVersion: "1.34.0"},
	{EntityID: "update.home_assistant_core_update", Name: "Home Assistant Core", InstalledVersion: "2024.4.0", LatestVersion: "2024.5.0"},
}

func TestFuzzySearchEmptyQuery(t *testing.T) {
	results := FuzzySearch(pending, "  ")
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, pending[i], r.Item)
	}
}

func TestFuzzySearch(t *testing.T) {
	results := FuzzySearch(pending, "mush")
	require.NotEmpty(t, results)
	assert.Equal(t, "update.mushroom_update", results[0].Item.EntityID)
	assert.Equal(t, 0, results[0].Index)

	results = FuzzySearch(pending, "CORE")
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Index)

	assert.Empty(t, FuzzySearch(pending, "zzz"))
	assert.Empty(t, FuzzySearch(nil, "x"))
}

func TestClosest(t *testing.T) {
	keys := []string{"entity", "homeAssistant.token", "homeAssistant.url", "layout", "locale", "selection.policy"}

	assert.Equal(t, "homeAssistant.url", Closest("homeassistant.uri", keys))
	assert.Equal(t, "selection.policy", Closest("selection.polcy", keys))
	assert.Equal(t, "custom:smart-updater-card", Closest("custom:smart-updater", []string{"custom:smart-updater-card"}))
	assert.Empty(t, Closest("entities", []string{"custom:smart-updater-card"}))
	assert.Empty(t, Closest("", keys))
	assert.Empty(t, Closest("x", nil))
}
