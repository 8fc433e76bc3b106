package spectator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/session"
)

func TestBroadcast_FullViewerDropsFrame(t *testing.T) {
	h := NewHub(config.SpectatorConfig{BroadcastEvery: 1, SendBuffer: 1}, zap.NewNop())
	v := &viewer{send: make(chan []byte, 1)}
	h.clients[v] = struct{}{}

	h.Broadcast(session.Snapshot{Tick: 1})
	h.Broadcast(session.Snapshot{Tick: 2})
	assert.Equal(t, uint64(1), h.Dropped())

	f, err := DecodeFrame(<-v.send)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), f.Snapshot.Tick, "the oldest frame is kept")
}

// Property: of n ongoing snapshots offered, exactly n/every are broadcast.
func TestProperty_OfferRespectsInterval(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		every := rapid.IntRange(1, 10).Draw(rt, "every")
		n := rapid.IntRange(0, 100).Draw(rt, "n")
		h := NewHub(config.SpectatorConfig{BroadcastEvery: every, SendBuffer: 1}, zap.NewNop())
		for i := 0; i < n; i++ {
			h.Offer(session.Snapshot{Status: session.Ongoing.String()})
		}
		assert.Equal(rt, uint64(n/every), h.seq)
	})
}
