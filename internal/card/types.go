package card

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// Type is the tag the host catalog uses to build this card from a layout
	Type = "custom:smart-updater-card"

	// ServiceDomain and ServiceUpdateSelected name the outbound command
	ServiceDomain         = "smart_updater"
	ServiceUpdateSelected = "update_selected"

	attrUpdates       = "updates"
	attrUpdateHistory = "update_history"
)

// UpdateItem is one pending update reported by the sensor
type UpdateItem struct {
	EntityID         string `json:"entity_id"`
	Name             string `json:"name"`
	InstalledVersion string `json:"installed_version"`
	LatestVersion    string `json:"latest_version"`
}

// HistoryItem is one applied update recorded by the backend
type HistoryItem struct {
	Name       string    `json:"name"`
	OldVersion string    `json:"old_version"`
	NewVersion string    `json:"new_version"`
	Timestamp  time.Time `json:"timestamp"`
}

// UnmarshalJSON accepts any ISO-8601 timestamp the backend writes.
// An unparsable timestamp leaves the zero time instead of failing the whole snapshot.
func (h *HistoryItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name       string `json:"name"`
		OldVersion string `json:"old_version"`
		NewVersion string `json:"new_version"`
		Timestamp  string `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	h.Name = raw.Name
	h.OldVersion = raw.OldVersion
	h.NewVersion = raw.NewVersion
	h.Timestamp = parseTimestamp(raw.Timestamp)
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Snapshot is the state of the observed entity at one point in time.
// A new snapshot always replaces the previous one.
type Snapshot struct {
	Status         string
	PendingUpdates []UpdateItem
	UpdateHistory  []HistoryItem
}

// States maps entity ids to their latest snapshot
type States map[string]Snapshot

// Lookup returns the snapshot for an entity id
func (s States) Lookup(entityID string) (*Snapshot, bool) {
	snap, ok := s[entityID]
	if !ok {
		return nil, false
	}
	return &snap, true
}

// SnapshotFromState builds a snapshot from an entity state string and its raw attributes.
// Missing or null attributes yield empty sequences. A sequence that cannot be decoded
// is left empty and reported in the returned error; the snapshot is usable either way.
func SnapshotFromState(state string, attrs json.RawMessage) (Snapshot, error) {
	snap := Snapshot{Status: state}
	if len(attrs) == 0 || string(attrs) == "null" {
		return snap, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(attrs, &fields); err != nil {
		return snap, fmt.Errorf("attributes: %w", err)
	}

	var errs []error
	if raw, ok := fields[attrUpdates]; ok {
		if err := json.Unmarshal(raw, &snap.PendingUpdates); err != nil {
			snap.PendingUpdates = nil
			errs = append(errs, fmt.Errorf("%s: %w", attrUpdates, err))
		}
	}
	if raw, ok := fields[attrUpdateHistory]; ok {
		if err := json.Unmarshal(raw, &snap.UpdateHistory); err != nil {
			snap.UpdateHistory = nil
			errs = append(errs, fmt.Errorf("%s: %w", attrUpdateHistory, err))
		}
	}
	return snap, errors.Join(errs...)
}
