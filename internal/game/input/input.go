// Package input defines the immutable per-tick input snapshot consumed by the
// simulation core. Front-ends translate devices into a Snapshot; the core
// never polls a device.
package input

import "github.com/cory-johannsen/skirmish/internal/game/geom"

// Key is a logical action key.
type Key uint8

const (
	KeyLeft Key = iota
	KeyRight
	KeyUp
	KeyDown
	KeyFire
	KeyJump
	KeyReload
	KeySelect1
	KeySelect2
	KeySelect3
	KeySelect4
)

// KeySet is a bitset of keys.
type KeySet uint32

// Of builds a KeySet from keys.
func Of(keys ...Key) KeySet {
	var s KeySet
	for _, k := range keys {
		s |= 1 << k
	}
	return s
}

// Has reports whether k is in the set.
func (s KeySet) Has(k Key) bool { return s&(1<<k) != 0 }

// With returns s with k added.
func (s KeySet) With(k Key) KeySet { return s | 1<<k }

// Snapshot is the input state for one tick.
//
// Held lists keys currently down; Pressed lists keys that went down this tick.
// Aim is the pointer position in play-field coordinates and is meaningful
// only when HasAim is set. Primary and Secondary are pointer clicks at Aim.
type Snapshot struct {
	Held      KeySet
	Pressed   KeySet
	Aim       geom.Vec2
	HasAim    bool
	Primary   bool
	Secondary bool
}

// Axis returns the movement direction implied by the held arrow keys, with
// each component in {-1, 0, 1}.
func (s Snapshot) Axis() geom.Vec2 {
	var d geom.Vec2
	if s.Held.Has(KeyLeft) {
		d.X--
	}
	if s.Held.Has(KeyRight) {
		d.X++
	}
	if s.Held.Has(KeyUp) {
		d.Y--
	}
	if s.Held.Has(KeyDown) {
		d.Y++
	}
	return d
}

// SelectedSlot returns the 1-based slot of the first selection key pressed
// this tick, or 0.
func (s Snapshot) SelectedSlot() int {
	for i, k := range []Key{KeySelect1, KeySelect2, KeySelect3, KeySelect4} {
		if s.Pressed.Has(k) {
			return i + 1
		}
	}
	return 0
}
