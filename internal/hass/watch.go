package hass

import (
	"context"
	"fmt"

	"github.com/egoavara/smart-updater/internal/card"
	"github.com/mordilloSan/go-logger/logger"
)

// StateSource is the part of Client that Watch needs
type StateSource interface {
	GetStates(ctx context.Context) ([]State, error)
	SubscribeStateChanges(ctx context.Context) (<-chan StateChange, error)
}

// Watch loads the initial states into store and then emits a fresh registry for
// entityIDs every time one of them changes. The first registry is sent before
// any change. The returned channel is closed when ctx ends or the subscription closes.
func Watch(ctx context.Context, src StateSource, store *Store, entityIDs ...string) (<-chan card.States, error) {
	changes, err := src.SubscribeStateChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscribe to state changes: %w", err)
	}

	states, err := src.GetStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load states: %w", err)
	}
	store.Reset(states)

	watched := make(map[string]bool, len(entityIDs))
	for _, id := range entityIDs {
		watched[id] = true
	}

	out := make(chan card.States, 1)
	out <- store.Registry(entityIDs...)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case change, ok := <-changes:
				if !ok {
					return
				}
				if len(watched) > 0 && !watched[change.EntityID] {
					continue
				}
				if !store.Apply(change) {
					continue
				}
				if st, ok := store.Get(change.EntityID); ok {
					logger.DebugKV("state changed", "entity_id", change.EntityID, "state", st.State)
				} else {
					logger.DebugKV("entity removed", "entity_id", change.EntityID)
				}

				select {
				case out <- store.Registry(entityIDs...):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
