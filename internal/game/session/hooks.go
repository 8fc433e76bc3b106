package session

// Hooks lets level content react to session events. Implementations must
// not block; they run inside the tick.
type Hooks interface {
	// WaveComplete is called with the number of the wave that finished and
	// returns bonus currency to pay on top of the wave reward.
	WaveComplete(wave int) int
	// PhaseEnter is called on the first tick of each boss phase.
	PhaseEnter(phase int)
	// Capture is called after each detection capture with the running count.
	Capture(count int)
	// LevelEnd is called once with the terminal outcome.
	LevelEnd(outcome Status)
}

// NopHooks ignores every event.
type NopHooks struct{}

func (NopHooks) WaveComplete(int) int { return 0 }

func (NopHooks) PhaseEnter(int) {}

func (NopHooks) Capture(int) {}

func (NopHooks) LevelEnd(Status) {}
