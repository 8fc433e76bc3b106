package gameserver

import (
	"sync"

	"github.com/cory-johannsen/skirmish/internal/game/input"
)

// mailbox holds the input for the next tick. Continuous state (held keys,
// aim) is last-writer-wins; edges (pressed keys, clicks) accumulate until the
// tick consumes them, so a press between two ticks is never lost.
type mailbox struct {
	mu sync.Mutex
	in input.Snapshot
}

func (m *mailbox) put(in input.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in.Pressed |= m.in.Pressed
	in.Primary = in.Primary || m.in.Primary
	in.Secondary = in.Secondary || m.in.Secondary
	m.in = in
}

// take returns the pending snapshot and clears its edges.
func (m *mailbox) take() input.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.in
	m.in.Pressed = 0
	m.in.Primary = false
	m.in.Secondary = false
	return out
}

// reset drops all pending input, used between levels.
func (m *mailbox) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.in = input.Snapshot{}
}
