package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/egoavara/smart-updater/internal/card"
)

func TestRenderCardNormal(t *testing.T) {
	snap := &card.Snapshot{
		Status: "2",
		PendingUpdates: []card.UpdateItem{
			{EntityID: "a.x", Name: "X", InstalledVersion: "1.0", LatestVersion: "1.1"},
			{EntityID: "a.y", InstalledVersion: "2.0", LatestVersion: "2.1"},
		},
	}
	v := card.Render(card.Config{Entity: sensor}, snap, card.NewSelection("a.x"), nil)

	out := RenderCard(v, 0)
	assert.Contains(t, out, "Smart Updater")
	assert.Contains(t, out, "2 updates available (2 pending updates)")
	assert.Contains(t, out, "[x]")
	assert.Contains(t, out, "[ ]")
	assert.Contains(t, out, "a.y", "unnamed rows fall back to the entity id")
	assert.Contains(t, out, "Update Selected")
	assert.Contains(t, out, "No update history.")
	assert.NotContains(t, out, "No updates available.")
}

func TestRenderCardHistoryOnly(t *testing.T) {
	when := time.Date(2024, 5, 4, 3, 2, 1, 0, time.Local)
	snap := &card.Snapshot{
		Status: "0",
		UpdateHistory: []card.HistoryItem{
			{Name: "HACS", OldVersion: "1.33.0", NewVersion: "1.34.0", Timestamp: when},
		},
	}
	v := card.Render(card.Config{Entity: sensor}, snap, nil, func(time.Time) string { return "yesterday" })

	out := RenderCard(v, 80)
	assert.Contains(t, out, "No updates available.")
	assert.NotContains(t, out, "Update Selected")
	assert.Contains(t, out, "Update History")
	assert.Contains(t, out, "1.34.0")
	assert.Contains(t, out, "yesterday")

	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 80)
	}
}

func TestRenderCardEntityNotFound(t *testing.T) {
	v := card.Render(card.Config{Entity: "sensor.gone"}, nil, nil, nil)
	out := RenderCard(v, 0)
	assert.Contains(t, out, "Entity not found: sensor.gone")
	assert.NotContains(t, out, "Update History")
}

func TestPolicySelector(t *testing.T) {
	m := NewPolicySelectorModel(card.PolicyPreserve)
	assert.Equal(t, 1, m.cursor)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)

	sel := next.(PolicySelectorModel)
	assert.True(t, sel.IsConfirmed())
	assert.Equal(t, card.PolicyPrune, sel.Selected())

	next, _ = NewPolicySelectorModel(card.PolicyPrune).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.False(t, next.(PolicySelectorModel).IsConfirmed())
	assert.Empty(t, next.View())
}
