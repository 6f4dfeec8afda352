package hass

import (
	"encoding/json"
	"strings"

	"github.com/egoavara/smart-updater/internal/card"
	"github.com/mordilloSan/go-logger/logger"
)

// CoreUpdateEntity is the update entity of Home Assistant itself
const CoreUpdateEntity = "update.home_assistant_core_update"

type updateAttributes struct {
	FriendlyName     string `json:"friendly_name"`
	InstalledVersion string `json:"installed_version"`
	LatestVersion    string `json:"latest_version"`
}

// ScanPending derives the pending update list from update.* entities the same
// way the Smart Updater sensor does. The core update, when pending, comes last.
func ScanPending(states []State) []card.UpdateItem {
	var (
		items []card.UpdateItem
		core  *card.UpdateItem
	)

	for _, st := range states {
		if !strings.HasPrefix(st.EntityID, "update.") || st.State == "off" {
			continue
		}

		var attrs updateAttributes
		if len(st.Attributes) > 0 {
			if err := json.Unmarshal(st.Attributes, &attrs); err != nil {
				logger.DebugKV("malformed update attributes", "entity_id", st.EntityID, "error", err)
			}
		}

		latest := attrs.LatestVersion
		if latest == "" && st.State != "on" {
			latest = st.State
		}
		if latest == "" || latest == attrs.InstalledVersion {
			continue
		}

		item := card.UpdateItem{
			EntityID:         st.EntityID,
			Name:             attrs.FriendlyName,
			InstalledVersion: attrs.InstalledVersion,
			LatestVersion:    latest,
		}
		if item.Name == "" {
			item.Name = st.EntityID
		}

		if st.EntityID == CoreUpdateEntity {
			item.Name = "Home Assistant Core"
			core = &item
			continue
		}
		items = append(items, item)
	}

	if core != nil {
		items = append(items, *core)
	}
	return items
}
