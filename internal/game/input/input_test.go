package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

func TestAxis_OpposingKeysCancel(t *testing.T) {
	s := Snapshot{Held: Of(KeyLeft, KeyRight, KeyDown)}
	assert.Equal(t, geom.V(0, 1), s.Axis())
}

func TestSelectedSlot(t *testing.T) {
	assert.Equal(t, 0, Snapshot{}.SelectedSlot())
	assert.Equal(t, 3, Snapshot{Pressed: Of(KeySelect3)}.SelectedSlot())
	assert.Equal(t, 1, Snapshot{Pressed: Of(KeySelect4, KeySelect1)}.SelectedSlot())
}

func TestKeySetWith(t *testing.T) {
	s := KeySet(0).With(KeyFire)
	assert.True(t, s.Has(KeyFire))
	assert.False(t, s.Has(KeyJump))
}
