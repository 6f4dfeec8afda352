package hass

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/egoavara/smart-updater/internal/card"
	"github.com/mordilloSan/go-logger/logger"
)

// Store holds the latest known state of every entity
type Store struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewStore creates a store seeded with states
func NewStore(states ...State) *Store {
	s := &Store{states: make(map[string]State, len(states))}
	s.Reset(states)
	return s
}

// Reset replaces every known state
func (s *Store) Reset(states []State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = make(map[string]State, len(states))
	for _, st := range states {
		s.states[st.EntityID] = st
	}
}

// Apply records one state change and reports whether anything changed
func (s *Store) Apply(change StateChange) bool {
	if change.EntityID == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if change.NewState == nil {
		_, existed := s.states[change.EntityID]
		delete(s.states, change.EntityID)
		return existed
	}
	s.states[change.EntityID] = *change.NewState
	return true
}

// Get returns the raw state of an entity
func (s *Store) Get(entityID string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[entityID]
	return st, ok
}

// All returns every state ordered by entity id
func (s *Store) All() []State {
	s.mu.RLock()
	out := make([]State, 0, len(s.states))
	for _, st := range s.states {
		out = append(out, st)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}

// Registry builds card snapshots for the given entity ids, or for every entity when none are given.
// Attribute fields that cannot be decoded are logged and render as empty; the entity stays present.
func (s *Store) Registry(entityIDs ...string) card.States {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(card.States)
	add := func(st State) {
		snap, err := card.SnapshotFromState(st.State, st.Attributes)
		if err != nil {
			logger.WarnKV("malformed entity attributes", "entity_id", st.EntityID, "error", err)
		}
		out[st.EntityID] = snap
	}

	if len(entityIDs) == 0 {
		for _, st := range s.states {
			add(st)
		}
		return out
	}
	for _, id := range entityIDs {
		if st, ok := s.states[id]; ok {
			add(st)
		}
	}
	return out
}

// LoadStatesFile reads a JSON array of states, as served by /api/states
func LoadStatesFile(path string) ([]State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read states file: %w", err)
	}

	var states []State
	if err := json.Unmarshal(data, &states); err != nil {
		return nil, fmt.Errorf("failed to parse states file: %w", err)
	}
	return states, nil
}
