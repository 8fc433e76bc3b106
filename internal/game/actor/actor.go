// Package actor holds the simulation's live entities and the arena that owns
// them. Other components keep non-owning references to actors by ID.
package actor

import (
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/input"
)

// ID is a stable actor identity, unique within one registry. Zero is never
// assigned.
type ID uint64

// Faction decides which projectiles may hit an actor.
type Faction uint8

const (
	FactionNeutral Faction = iota
	FactionPlayer
	FactionHostile
	FactionStructure
)

func (f Faction) String() string {
	switch f {
	case FactionPlayer:
		return "player"
	case FactionHostile:
		return "hostile"
	case FactionStructure:
		return "structure"
	default:
		return "neutral"
	}
}

// Kind is the behavioral class of an actor.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindMissile
	KindRunner
	KindMinion
	KindZombie
	KindGuard
	KindTower
	KindBoss
	KindHazard
	KindWorker
	KindMarine
	KindTank
	KindBuilding
	KindDeposit
)

var kindNames = [...]string{
	KindPlayer:   "player",
	KindMissile:  "missile",
	KindRunner:   "runner",
	KindMinion:   "minion",
	KindZombie:   "zombie",
	KindGuard:    "guard",
	KindTower:    "tower",
	KindBoss:     "boss",
	KindHazard:   "hazard",
	KindWorker:   "worker",
	KindMarine:   "marine",
	KindTank:     "tank",
	KindBuilding: "building",
	KindDeposit:  "deposit",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Capability is a bitset of behavioral tags.
type Capability uint16

const (
	CanShoot Capability = 1 << iota
	CanPatrol
	Regenerates
	// Intangible actors are never hit by projectiles.
	Intangible
)

// Outcome is what a movement step reports back to the caller.
type Outcome uint8

const (
	Moving Outcome = iota
	// ReachedEnd means a path-following actor arrived at its final waypoint.
	ReachedEnd
	// OutOfBounds means the actor left the play field and should be removed.
	OutOfBounds
)

// Env is the read-only view of the world a Mover may consult.
type Env interface {
	// Lookup returns the live actor for id. Removed or dead actors are not found.
	Lookup(id ID) (*Actor, bool)
	// Input returns this tick's input snapshot.
	Input() input.Snapshot
	// Field returns the play-field rectangle.
	Field() geom.Rect
}

// Mover is a per-kind motion rule. Each implementation carries exactly the
// state its rule needs (waypoint index, last heading, oscillation phase).
type Mover interface {
	Move(a *Actor, env Env) Outcome
}

// Movable is implemented by anything the movement phase can advance.
type Movable interface {
	Move(env Env) Outcome
}

// Targetable is implemented by anything collision tests can reach.
type Targetable interface {
	Bounds() geom.Rect
	Alive() bool
}

// Damageable is implemented by anything that can lose health.
type Damageable interface {
	Targetable
	TakeDamage(amount int) (killed bool)
}

// Actor is one simulated entity. Pos is the center of its bounding box.
type Actor struct {
	ID        ID
	Kind      Kind
	Variant   string
	Faction   Faction
	Pos       geom.Vec2
	Size      geom.Vec2
	Vel       geom.Vec2
	Heading   float64
	Health    int
	MaxHealth int
	Caps      Capability
	// Frozen counts ticks during which the actor skips movement.
	Frozen int
	// Reward is paid to the attacker's owner when this actor is killed.
	Reward int
	// Damage is the harm this actor inflicts on contact or on reaching its goal.
	Damage int
	// Immune rejects all damage while set.
	Immune bool
	Motion  Mover
	Payload Payload

	dead bool
}

var (
	_ Movable    = (*Actor)(nil)
	_ Damageable = (*Actor)(nil)
)

// Bounds returns the actor's bounding rectangle.
func (a *Actor) Bounds() geom.Rect {
	return geom.CenteredRect(a.Pos, a.Size.X, a.Size.Y)
}

// Alive reports whether the actor has not been killed or removed.
func (a *Actor) Alive() bool { return !a.dead }

// Has reports whether the actor carries capability c.
func (a *Actor) Has(c Capability) bool { return a.Caps&c != 0 }

// Kill marks the actor dead without touching its health.
func (a *Actor) Kill() { a.dead = true }

// TakeDamage subtracts amount from health.
//
// Precondition: amount >= 0.
// Postcondition: Health >= 0. Returns true exactly when this call killed the
// actor. Dead or immune actors are unaffected.
func (a *Actor) TakeDamage(amount int) bool {
	if a.dead || a.Immune || amount <= 0 {
		return false
	}
	a.Health -= amount
	if a.Health <= 0 {
		a.Health = 0
		a.dead = true
		return true
	}
	return false
}

// Heal restores up to amount health without exceeding MaxHealth.
func (a *Actor) Heal(amount int) {
	if a.dead || amount <= 0 {
		return
	}
	a.Health += amount
	if a.Health > a.MaxHealth {
		a.Health = a.MaxHealth
	}
}

// Fraction returns Health/MaxHealth, or 0 when MaxHealth is not positive.
func (a *Actor) Fraction() float64 {
	if a.MaxHealth <= 0 {
		return 0
	}
	return float64(a.Health) / float64(a.MaxHealth)
}

// Move advances the actor by its motion rule. A frozen actor burns one frozen
// tick instead of moving.
func (a *Actor) Move(env Env) Outcome {
	if a.dead || a.Motion == nil {
		return Moving
	}
	if a.Frozen > 0 {
		a.Frozen--
		return Moving
	}
	return a.Motion.Move(a, env)
}
