package hass

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// State is one entity state as returned by get_states and state_changed events
type State struct {
	EntityID    string          `json:"entity_id"`
	State       string          `json:"state"`
	Attributes  json.RawMessage `json:"attributes"`
	LastChanged time.Time       `json:"last_changed"`
	LastUpdated time.Time       `json:"last_updated"`
}

// StateChange is the payload of a state_changed event. NewState is nil when the entity was removed.
type StateChange struct {
	EntityID string `json:"entity_id"`
	OldState *State `json:"old_state"`
	NewState *State `json:"new_state"`
}

// message is the websocket envelope for both directions
type message struct {
	ID          int64           `json:"id,omitempty"`
	Type        string          `json:"type"`
	AccessToken string          `json:"access_token,omitempty"`
	HAVersion   string          `json:"ha_version,omitempty"`
	Message     string          `json:"message,omitempty"`
	EventType   string          `json:"event_type,omitempty"`
	Domain      string          `json:"domain,omitempty"`
	Service     string          `json:"service,omitempty"`
	ServiceData map[string]any  `json:"service_data,omitempty"`
	Success     *bool           `json:"success,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       *ResultError    `json:"error,omitempty"`
	Event       *event          `json:"event,omitempty"`
}

type event struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

// ResultError is the error object of a failed command result
type ResultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("home assistant: %s: %s", e.Code, e.Message)
}

// AuthError is returned when the server rejects the access token
type AuthError struct {
	URL     string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication to %s failed: %s", e.URL, e.Message)
}

// ErrClosed is returned by calls on a closed client
var ErrClosed = errors.New("home assistant connection closed")
