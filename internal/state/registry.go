package state

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// Registry maps trackable ids to behaviours. An id is bound to at most one
// behaviour. Every binding carries the behaviour's Origin: auto-created
// placeholders may be replaced by a later Bind, user-authored ones may not.
type Registry struct {
	entries map[types.TrackableID]*TrackableBehaviour

	// pending holds behaviours destroyed since the last RemoveDestroyed.
	pending []*TrackableBehaviour
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[types.TrackableID]*TrackableBehaviour)}
}

// Bind associates id with b. Rebinding the same behaviour is a no-op.
// Returns ErrBindingProtected when id is held by a different user-authored
// behaviour and ErrBehaviourDeleted when b was destroyed.
func (r *Registry) Bind(id types.TrackableID, b *TrackableBehaviour) error {
	if b == nil {
		return types.ErrNilBehaviour
	}
	if r.IsDestroyed(b) {
		return fmt.Errorf("binding %d: %w", id, types.ErrBehaviourDeleted)
	}
	if existing, ok := r.entries[id]; ok && existing != b && existing.Origin == types.OriginUserAuthored {
		return fmt.Errorf("binding %d: %w", id, types.ErrBindingProtected)
	}
	r.entries[id] = b
	return nil
}

// Unbind removes the binding for id. Unbinding an unbound id does nothing.
func (r *Registry) Unbind(id types.TrackableID) {
	delete(r.entries, id)
}

// Lookup returns the behaviour bound to id.
func (r *Registry) Lookup(id types.TrackableID) (*TrackableBehaviour, bool) {
	b, ok := r.entries[id]
	return b, ok
}

// Len returns the number of bound ids.
func (r *Registry) Len() int { return len(r.entries) }

// IDs returns the bound ids in ascending order.
func (r *Registry) IDs() []types.TrackableID {
	ids := make([]types.TrackableID, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Behaviours returns the bound behaviours ordered by id.
func (r *Registry) Behaviours() []*TrackableBehaviour {
	ids := r.IDs()
	out := make([]*TrackableBehaviour, len(ids))
	for i, id := range ids {
		out[i] = r.entries[id]
	}
	return out
}

// MarkDestroyed unbinds every id bound to b and prevents b from being bound
// again. b stays pending until the next RemoveDestroyed.
func (r *Registry) MarkDestroyed(b *TrackableBehaviour) {
	for id, cur := range r.entries {
		if cur == b {
			delete(r.entries, id)
		}
	}
	if !b.destroyed {
		b.destroyed = true
		r.pending = append(r.pending, b)
	}
}

// IsDestroyed reports whether b was passed to MarkDestroyed.
func (r *Registry) IsDestroyed(b *TrackableBehaviour) bool {
	return b != nil && b.destroyed
}

// RemoveDestroyed returns the behaviours destroyed since the previous call,
// in destruction order, and forgets them. They remain unbindable.
func (r *Registry) RemoveDestroyed() []*TrackableBehaviour {
	out := r.pending
	r.pending = nil
	return out
}
