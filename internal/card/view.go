package card

import "time"

// Mode is the observable mode of a rendered card
type Mode int

const (
	// ModeEntityNotFound renders a minimal card naming the missing entity
	ModeEntityNotFound Mode = iota
	// ModeNormal renders status, pending updates and history
	ModeNormal
)

func (m Mode) String() string {
	switch m {
	case ModeEntityNotFound:
		return "entity_not_found"
	case ModeNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// Title is the card header in normal mode
const Title = "Smart Updater"

// PendingRow is one row of the pending updates table
type PendingRow struct {
	EntityID         string
	Name             string
	InstalledVersion string
	LatestVersion    string
	Checked          bool
}

// HistoryRow is one row of the history table
type HistoryRow struct {
	Name       string
	OldVersion string
	NewVersion string
	Timestamp  time.Time
	When       string
}

// View is the rendered card, independent of any output surface
type View struct {
	Mode         Mode
	Entity       string
	Title        string
	Status       string
	PendingCount int
	Pending      []PendingRow
	ShowAction   bool
	History      []HistoryRow
}

// HasPending reports whether the pending table is shown instead of the "no updates" message
func (v View) HasPending() bool { return len(v.Pending) > 0 }

// HasHistory reports whether the history table is shown instead of the "no history" message
func (v View) HasHistory() bool { return len(v.History) > 0 }

// TimeFormatter turns a history instant into display text
type TimeFormatter func(time.Time) string

// Render is a pure function of the configured entity, its snapshot and the selection.
// A nil snapshot renders the entity-not-found card.
func Render(cfg Config, snap *Snapshot, sel *Selection, format TimeFormatter) View {
	if snap == nil {
		return View{Mode: ModeEntityNotFound, Entity: cfg.Entity}
	}
	if format == nil {
		format = func(t time.Time) string { return t.Local().Format(time.DateTime) }
	}

	v := View{
		Mode:         ModeNormal,
		Entity:       cfg.Entity,
		Title:        Title,
		Status:       snap.Status,
		PendingCount: len(snap.PendingUpdates),
		ShowAction:   len(snap.PendingUpdates) > 0,
	}

	for _, u := range snap.PendingUpdates {
		v.Pending = append(v.Pending, PendingRow{
			EntityID:         u.EntityID,
			Name:             u.Name,
			InstalledVersion: u.InstalledVersion,
			LatestVersion:    u.LatestVersion,
			Checked:          sel.Has(u.EntityID),
		})
	}
	for _, h := range snap.UpdateHistory {
		v.History = append(v.History, HistoryRow{
			Name:       h.Name,
			OldVersion: h.OldVersion,
			NewVersion: h.NewVersion,
			Timestamp:  h.Timestamp,
			When:       format(h.Timestamp),
		})
	}
	return v
}

// Size returns the number of layout rows a snapshot needs: one per pending and
// history item plus the updates header, action row and history header
func Size(snap *Snapshot) int {
	if snap == nil {
		return 1
	}
	return len(snap.PendingUpdates) + len(snap.UpdateHistory) + 3
}
