package actor

import "github.com/cory-johannsen/skirmish/internal/game/geom"

// Payload is the kind-specific state carried by an actor. The set of
// variants is closed; switch on the concrete type.
type Payload interface {
	payload()
}

// Melee is carried by actors that strike targets within reach on a cooldown:
// zombies, strategy combat units and their enemy counterparts.
type Melee struct {
	Range    float64
	Interval int
	Cooldown int
	// Target is the current victim, zero when idle.
	Target ID
	// Goal is a commanded destination; HasGoal gates it.
	Goal    geom.Vec2
	HasGoal bool
}

// Ready reports whether the cooldown has elapsed.
func (m *Melee) Ready() bool { return m.Cooldown <= 0 }

// Tick counts the cooldown down by one.
func (m *Melee) Tick() {
	if m.Cooldown > 0 {
		m.Cooldown--
	}
}

// Fire restarts the cooldown.
func (m *Melee) Fire() { m.Cooldown = m.Interval }

// Harvester is carried by strategy workers.
type Harvester struct {
	Carry    int
	Capacity int
	Deposit  ID
	// Returning is set while the worker walks back to its command center.
	Returning bool
}

// Deposit is carried by mineral patches.
type Deposit struct {
	Remaining int
}

// Take removes up to n units and returns how many were taken.
func (d *Deposit) Take(n int) int {
	if n > d.Remaining {
		n = d.Remaining
	}
	if n < 0 {
		n = 0
	}
	d.Remaining -= n
	return n
}

func (*Melee) payload()     {}
func (*Harvester) payload() {}
func (*Deposit) payload()   {}
