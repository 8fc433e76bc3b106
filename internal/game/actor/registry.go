package actor

import "fmt"

// Registry is the arena owning every live actor in a level session.
//
// Removal is mark-then-compact: Remove and kills mark the actor dead and
// hide it from lookups immediately, while the backing order slice is only
// rewritten by Compact. Snapshot returns an independent slice, so callers may
// add or remove while iterating it.
//
// A Registry is driven by a single tick loop and is not safe for concurrent
// use.
type Registry struct {
	next  ID
	byID  map[ID]*Actor
	order []*Actor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[ID]*Actor)}
}

// Add assigns a fresh ID to a and inserts it.
//
// Precondition: a must be non-nil, alive, and not already registered.
// Postcondition: a.ID is non-zero and Get(a.ID) returns a.
func (r *Registry) Add(a *Actor) ID {
	if a == nil {
		panic("actor: Add called with nil actor")
	}
	if a.ID != 0 {
		panic(fmt.Sprintf("actor: Add called with already-registered actor %d", a.ID))
	}
	r.next++
	a.ID = r.next
	r.byID[a.ID] = a
	r.order = append(r.order, a)
	return a.ID
}

// Remove marks the actor dead and unindexes it.
//
// Postcondition: returns false if id was unknown or already removed.
func (r *Registry) Remove(id ID) bool {
	a, ok := r.byID[id]
	if !ok {
		return false
	}
	a.Kill()
	delete(r.byID, id)
	return true
}

// Get returns the live actor for id.
func (r *Registry) Get(id ID) (*Actor, bool) {
	a, ok := r.byID[id]
	if !ok || !a.Alive() {
		return nil, false
	}
	return a, true
}

// Snapshot returns the actors alive at the time of the call in insertion
// order. The slice is a copy; mutating the registry does not affect it.
func (r *Registry) Snapshot() []*Actor {
	out := make([]*Actor, 0, len(r.order))
	for _, a := range r.order {
		if a.Alive() {
			out = append(out, a)
		}
	}
	return out
}

// Select returns a snapshot of live actors satisfying pred.
func (r *Registry) Select(pred func(*Actor) bool) []*Actor {
	var out []*Actor
	for _, a := range r.order {
		if a.Alive() && pred(a) {
			out = append(out, a)
		}
	}
	return out
}

// Count returns how many live actors satisfy pred.
func (r *Registry) Count(pred func(*Actor) bool) int {
	n := 0
	for _, a := range r.order {
		if a.Alive() && pred(a) {
			n++
		}
	}
	return n
}

// Len returns the number of live actors.
func (r *Registry) Len() int {
	return r.Count(func(*Actor) bool { return true })
}

// Compact drops dead actors from storage and returns how many were dropped.
//
// Postcondition: every stored actor is alive.
func (r *Registry) Compact() int {
	kept := r.order[:0]
	dropped := 0
	for _, a := range r.order {
		if a.Alive() {
			kept = append(kept, a)
			continue
		}
		delete(r.byID, a.ID)
		dropped++
	}
	for i := len(kept); i < len(r.order); i++ {
		r.order[i] = nil
	}
	r.order = kept
	return dropped
}

// Stored returns the number of entries awaiting or surviving compaction.
func (r *Registry) Stored() int { return len(r.order) }

// OfKind is a Select predicate matching kind k.
func OfKind(k Kind) func(*Actor) bool {
	return func(a *Actor) bool { return a.Kind == k }
}

// OfFaction is a Select predicate matching faction f.
func OfFaction(f Faction) func(*Actor) bool {
	return func(a *Actor) bool { return a.Faction == f }
}
