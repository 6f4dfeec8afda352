package card

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	domain  string
	service string
	data    map[string]any
}

type recordingInvoker struct {
	calls []call
	err   error
}

func (r *recordingInvoker) CallService(_ context.Context, domain, service string, data map[string]any) error {
	r.calls = append(r.calls, call{domain: domain, service: service, data: data})
	return r.err
}

const sensor = "sensor.smart_updater_updates"

func twoPending() States {
	return States{
		sensor: {
			Status: "2",
			PendingUpdates: []UpdateItem{
				{EntityID: "a.x", Name: "X", InstalledVersion: "1.0", LatestVersion: "1.1"},
				{EntityID: "a.y", Name: "Y", InstalledVersion: "2.0", LatestVersion: "2.1"},
			},
			UpdateHistory: []HistoryItem{},
		},
	}
}

func newCard(t *testing.T, inv Invoker, opts ...Option) *Card {
	t.Helper()
	c := New(inv, opts...)
	require.NoError(t, c.SetConfig(Config{Entity: sensor}))
	return c
}

func TestSetConfig(t *testing.T) {
	t.Run("empty_entity", func(t *testing.T) {
		for _, entity := range []string{"", "   "} {
			err := New(nil).SetConfig(Config{Entity: entity})
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "entity", cfgErr.Field)
		}
	})

	t.Run("valid_entity_is_idempotent", func(t *testing.T) {
		c := New(nil)
		require.NoError(t, c.SetConfig(Config{Entity: sensor}))
		first := c.Render(twoPending())
		require.NoError(t, c.SetConfig(Config{Entity: sensor}))
		assert.Empty(t, cmp.Diff(first, c.Render(twoPending())))
	})
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(map[string]any{"type": Type, "entity": sensor})
	require.NoError(t, err)
	assert.Equal(t, sensor, cfg.Entity)

	for name, raw := range map[string]map[string]any{
		"missing":    {"type": Type},
		"nil":        {"entity": nil},
		"empty":      {"entity": ""},
		"not_string": {"entity": 42},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig(raw)
			var cfgErr *ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestRenderTwoPending(t *testing.T) {
	c := newCard(t, &recordingInvoker{})
	states := twoPending()

	v := c.Render(states)
	assert.Equal(t, ModeNormal, v.Mode)
	assert.Equal(t, "2", v.Status)
	assert.Equal(t, 2, v.PendingCount)
	assert.Len(t, v.Pending, 2)
	assert.True(t, v.ShowAction)
	assert.False(t, v.HasHistory())
	assert.Equal(t, 5, c.CardSize(states))

	want := []PendingRow{
		{EntityID: "a.x", Name: "X", InstalledVersion: "1.0", LatestVersion: "1.1"},
		{EntityID: "a.y", Name: "Y", InstalledVersion: "2.0", LatestVersion: "2.1"},
	}
	if diff := cmp.Diff(want, v.Pending); diff != "" {
		t.Fatalf("pending rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderEntityNotFound(t *testing.T) {
	c := newCard(t, &recordingInvoker{})
	for _, states := range []States{nil, {}, {"sensor.other": {Status: "0"}}} {
		v := c.Render(states)
		assert.Equal(t, ModeEntityNotFound, v.Mode)
		assert.Equal(t, sensor, v.Entity)
		assert.Empty(t, v.Pending)
		assert.False(t, v.ShowAction)
		assert.Equal(t, 1, c.CardSize(states))
		assert.Equal(t, ModeEntityNotFound, c.Mode(states))
	}
}

func TestRenderHistoryOnly(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	states := States{sensor: {
		Status: "0",
		UpdateHistory: []HistoryItem{
			{Name: "A", OldVersion: "1", NewVersion: "2", Timestamp: ts},
			{Name: "B", OldVersion: "1", NewVersion: "2", Timestamp: ts},
			{Name: "C", OldVersion: "1", NewVersion: "2", Timestamp: ts},
		},
	}}
	c := newCard(t, &recordingInvoker{}, WithTimeFormatter(func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04")
	}))

	v := c.Render(states)
	assert.False(t, v.ShowAction)
	assert.False(t, v.HasPending())
	assert.Len(t, v.History, 3)
	assert.Equal(t, "2024-03-01 10:30", v.History[0].When)
	assert.Equal(t, 6, c.CardSize(states))
}

func TestRenderIsPure(t *testing.T) {
	c := newCard(t, &recordingInvoker{})
	states := twoPending()
	c.OnCheckboxChange("a.y", true)

	first := c.Render(states)
	second := c.Render(states)
	assert.Empty(t, cmp.Diff(first, second))
	assert.True(t, first.Pending[1].Checked)
	assert.False(t, first.Pending[0].Checked)
	assert.Len(t, states[sensor].PendingUpdates, 2)
}

func TestCheckboxRoundTrip(t *testing.T) {
	inv := &recordingInvoker{}
	c := newCard(t, inv)

	c.OnCheckboxChange("a.x", true)
	before := c.Selected()

	c.OnCheckboxChange("a.y", true)
	c.OnCheckboxChange("a.y", false)
	assert.Equal(t, before, c.Selected())

	c.OnCheckboxChange("a.x", true)
	assert.Equal(t, []string{"a.x"}, c.Selected())

	c.OnCheckboxChange("a.z", false)
	assert.Equal(t, []string{"a.x"}, c.Selected())
	assert.Empty(t, inv.calls, "checkbox changes must not call the backend")
}

func TestUpdateSelected(t *testing.T) {
	t.Run("sends_selection", func(t *testing.T) {
		inv := &recordingInvoker{}
		c := newCard(t, inv)
		c.OnCheckboxChange("a.x", true)

		require.NoError(t, c.UpdateSelected(context.Background()))
		require.Len(t, inv.calls, 1)
		assert.Equal(t, ServiceDomain, inv.calls[0].domain)
		assert.Equal(t, ServiceUpdateSelected, inv.calls[0].service)
		assert.Equal(t, map[string]any{"entity_id": []string{"a.x"}}, inv.calls[0].data)
	})

	t.Run("empty_selection_sends_empty_list", func(t *testing.T) {
		inv := &recordingInvoker{}
		c := newCard(t, inv)

		require.NoError(t, c.UpdateSelected(context.Background()))
		require.Len(t, inv.calls, 1)
		ids, ok := inv.calls[0].data["entity_id"].([]string)
		require.True(t, ok)
		assert.NotNil(t, ids)
		assert.Empty(t, ids)
	})

	t.Run("insertion_order", func(t *testing.T) {
		inv := &recordingInvoker{}
		c := newCard(t, inv)
		c.OnCheckboxChange("a.y", true)
		c.OnCheckboxChange("a.x", true)

		require.NoError(t, c.UpdateSelected(context.Background()))
		assert.Equal(t, []string{"a.y", "a.x"}, inv.calls[0].data["entity_id"])
	})

	t.Run("invoker_error_is_wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		c := newCard(t, &recordingInvoker{err: boom})
		assert.ErrorIs(t, c.UpdateSelected(context.Background()), boom)
	})

	t.Run("unconfigured", func(t *testing.T) {
		inv := &recordingInvoker{}
		assert.ErrorIs(t, New(inv).UpdateSelected(context.Background()), ErrNotConfigured)
		assert.Empty(t, inv.calls)
	})

	t.Run("no_invoker", func(t *testing.T) {
		c := New(nil)
		require.NoError(t, c.SetConfig(Config{Entity: "sensor.x"}))
		c.OnCheckboxChange("a.x", true)
		assert.ErrorIs(t, c.UpdateSelected(context.Background()), ErrNoInvoker)
	})
}

func TestRefreshPolicy(t *testing.T) {
	applied := States{sensor: {
		Status:         "1",
		PendingUpdates: []UpdateItem{{EntityID: "a.y", Name: "Y"}},
	}}

	t.Run("prune", func(t *testing.T) {
		c := newCard(t, &recordingInvoker{})
		c.OnCheckboxChange("a.x", true)
		c.OnCheckboxChange("a.y", true)

		dropped := c.Refresh(applied)
		assert.Equal(t, []string{"a.x"}, dropped)
		assert.Equal(t, []string{"a.y"}, c.Selected())
	})

	t.Run("prune_skipped_when_entity_missing", func(t *testing.T) {
		c := newCard(t, &recordingInvoker{})
		c.OnCheckboxChange("a.x", true)

		assert.Empty(t, c.Refresh(States{}))
		assert.Equal(t, []string{"a.x"}, c.Selected())
	})

	t.Run("preserve", func(t *testing.T) {
		c := newCard(t, &recordingInvoker{}, WithPolicy(PolicyPreserve))
		c.OnCheckboxChange("a.x", true)

		assert.Empty(t, c.Refresh(applied))
		assert.Equal(t, []string{"a.x"}, c.Selected())
	})
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyPrune, p)

	p, err = ParsePolicy("preserve")
	require.NoError(t, err)
	assert.Equal(t, PolicyPreserve, p)

	_, err = ParsePolicy("keep")
	assert.Error(t, err)
}
