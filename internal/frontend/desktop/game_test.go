package desktop

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/skirmish/internal/game/input"
	"github.com/cory-johannsen/skirmish/internal/game/session"
)

type recordingSink struct {
	got []input.Snapshot
}

func (r *recordingSink) Submit(in input.Snapshot) { r.got = append(r.got, in) }

func newTestGame(sink Submitter, frames chan session.Snapshot, done chan error) *Game {
	g := NewGame(sink, frames, done)
	g.device = fakeDevice{held: map[ebiten.Key]bool{ebiten.KeySpace: true}}
	return g
}

func TestUpdate_SubmitsInputAndKeepsLatestFrame(t *testing.T) {
	sink := &recordingSink{}
	frames := make(chan session.Snapshot, 2)
	g := newTestGame(sink, frames, make(chan error, 1))

	frames <- session.Snapshot{Tick: 1}
	frames <- session.Snapshot{Tick: 2}
	require.NoError(t, g.Update())

	require.Len(t, sink.got, 1)
	assert.True(t, sink.got[0].Held.Has(input.KeyFire))
	assert.Equal(t, uint64(2), g.last.Tick)
}

func TestUpdate_EndsWhenSimulationFinishes(t *testing.T) {
	sink := &recordingSink{}
	done := make(chan error, 1)
	g := newTestGame(sink, make(chan session.Snapshot), done)

	done <- nil
	assert.ErrorIs(t, g.Update(), ebiten.Termination)
	assert.Empty(t, sink.got)

	boom := errors.New("runner failed")
	done <- boom
	assert.ErrorIs(t, g.Update(), boom)
}
