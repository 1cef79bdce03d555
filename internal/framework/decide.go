package framework

import (
	"errors"
	"fmt"
	"time"

	"casegraph/internal/behavior"
	"casegraph/internal/store"
)

var ErrNoProfile = errors.New("entity has no behavioral profile")

// Decide asks the entity's profile how it would respond to ctx and records
// the decision in the profile's current state.
func Decide(st *store.Store, entityID string, ctx behavior.Context, at time.Time) (behavior.Decision, error) {
	entity, ok := st.Entity(entityID)
	if !ok {
		return behavior.Decision{}, fmt.Errorf("%s: %w", entityID, ErrEntityNotFound)
	}
	if entity.Profile == nil {
		return behavior.Decision{}, fmt.Errorf("%s: %w", entityID, ErrNoProfile)
	}
	if ctx.EventID != "" {
		if _, ok := st.Event(ctx.EventID); !ok {
			return behavior.Decision{}, fmt.Errorf("%s: %w", ctx.EventID, ErrEventNotFound)
		}
	}
	return entity.Profile.Decide(ctx, at), nil
}
