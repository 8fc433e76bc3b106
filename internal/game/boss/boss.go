// Package boss implements the multi-phase boss encounter. The phase is never
// stored: it is recomputed from the boss's health fraction on every query.
package boss

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/ballistics"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
)

// PhaseFor returns the phase for health out of maxHealth given descending
// thresholds: 1 plus the number of thresholds at or above the health fraction.
// With thresholds [0.66, 0.33], a fraction of 0.34 is phase 2 and 0.32 is
// phase 3.
//
// Postcondition: 1 <= result <= len(thresholds)+1; for fixed thresholds the
// result is non-increasing in health.
func PhaseFor(health, maxHealth int, thresholds []float64) int {
	if maxHealth <= 0 {
		return len(thresholds) + 1
	}
	frac := float64(health) / float64(maxHealth)
	phase := 1
	for _, t := range thresholds {
		if frac <= t {
			phase++
		}
	}
	return phase
}

// Cadence derives a per-phase interval: max(Min, Base - PerPhase*phase).
type Cadence struct {
	Base     int `yaml:"base"`
	PerPhase int `yaml:"per_phase"`
	Min      int `yaml:"min"`
}

// Interval returns the cadence's interval in ticks for phase.
func (c Cadence) Interval(phase int) int {
	iv := c.Base - c.PerPhase*phase
	if iv < c.Min {
		iv = c.Min
	}
	if iv < 1 {
		iv = 1
	}
	return iv
}

// Special binds a volley set to one phase.
type Special struct {
	Phase    int                  `yaml:"phase"`
	Patterns []ballistics.Pattern `yaml:"patterns"`
}

// Shield toggles damage immunity every Period ticks from FromPhase on.
type Shield struct {
	FromPhase int `yaml:"from_phase"`
	Period    int `yaml:"period"`
}

// Teleport relocates the boss to a random x in [MinX, MaxX] every Every
// ticks from FromPhase on.
type Teleport struct {
	FromPhase int     `yaml:"from_phase"`
	Every     int     `yaml:"every"`
	MinX      float64 `yaml:"min_x"`
	MaxX      float64 `yaml:"max_x"`
}

// Minions spawns max(1, phase/Divisor) companions on Cadence.
type Minions struct {
	Cadence Cadence `yaml:"cadence"`
	Divisor int     `yaml:"divisor"`
}

// Count returns the number of minions released at phase.
func (m Minions) Count(phase int) int {
	if n := phase / m.Divisor; n > 1 {
		return n
	}
	return 1
}

// Config describes one boss encounter.
type Config struct {
	MaxHealth  int       `yaml:"max_health"`
	Thresholds []float64 `yaml:"thresholds"`
	Basic      Cadence   `yaml:"basic"`
	// SpecialEvery is the special-attack period, shared by all phases.
	SpecialEvery int       `yaml:"special_every"`
	Specials     []Special `yaml:"specials"`
	Shield       *Shield   `yaml:"shield"`
	Teleport     *Teleport `yaml:"teleport"`
	Minions      *Minions  `yaml:"minions"`
	// BaseSpeed + SpeedPerPhase*(phase-1) drives a Bounce mover, when present.
	BaseSpeed     float64 `yaml:"base_speed"`
	SpeedPerPhase float64 `yaml:"speed_per_phase"`
}

// Phases returns the number of phases.
func (c Config) Phases() int { return len(c.Thresholds) + 1 }

// Validate checks the configuration.
//
// Postcondition: Returns nil if valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	if c.MaxHealth < 1 {
		errs = append(errs, fmt.Sprintf("max_health must be >= 1, got %d", c.MaxHealth))
	}
	prev := 1.0
	for i, t := range c.Thresholds {
		if t <= 0 || t >= prev {
			errs = append(errs, fmt.Sprintf("threshold %d (%.2f) must be in (0, %.2f)", i, t, prev))
		}
		prev = t
	}
	if c.Basic.Base < 1 {
		errs = append(errs, "basic cadence base must be >= 1")
	}
	if len(c.Specials) > 0 && c.SpecialEvery < 1 {
		errs = append(errs, "special_every must be >= 1 when specials are configured")
	}
	for _, s := range c.Specials {
		if s.Phase < 1 || s.Phase > c.Phases() {
			errs = append(errs, fmt.Sprintf("special phase %d out of range 1..%d", s.Phase, c.Phases()))
		}
		for _, p := range s.Patterns {
			if err := p.Validate(); err != nil {
				errs = append(errs, fmt.Sprintf("special phase %d: %v", s.Phase, err))
			}
		}
	}
	if c.Shield != nil && c.Shield.Period < 1 {
		errs = append(errs, "shield period must be >= 1")
	}
	if c.Teleport != nil && (c.Teleport.Every < 1 || c.Teleport.MaxX < c.Teleport.MinX) {
		errs = append(errs, "teleport needs every >= 1 and min_x <= max_x")
	}
	if c.Minions != nil && c.Minions.Divisor < 1 {
		errs = append(errs, "minion divisor must be >= 1")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (c Config) specialsFor(phase int) []ballistics.Pattern {
	for _, s := range c.Specials {
		if s.Phase == phase {
			return s.Patterns
		}
	}
	return nil
}

// Orders is what the boss asks of the session for one tick.
type Orders struct {
	Phase int
	// Entered is set on the first tick observed in a new phase.
	Entered bool
	// Basic requests the encounter's basic attack.
	Basic bool
	// Special holds the volleys of a special attack firing this tick.
	Special []ballistics.Pattern
	// Minions is the number of companions to spawn this tick.
	Minions    int
	Teleported bool
	Defeated   bool
}

// Boss drives one boss actor. It holds only cadence timers; phase, rage
// and defeat are read from the actor's health.
type Boss struct {
	cfg   Config
	actor *actor.Actor

	basic, special, shield, teleport, minion int
	seen                                     int
}

// New binds cfg to a.
//
// Precondition: cfg.Validate() == nil; a.MaxHealth == cfg.MaxHealth.
func New(cfg Config, a *actor.Actor) *Boss {
	return &Boss{cfg: cfg, actor: a}
}

// Actor returns the boss actor.
func (b *Boss) Actor() *actor.Actor { return b.actor }

// Config returns the encounter configuration.
func (b *Boss) Config() Config { return b.cfg }

// Phase returns the current phase derived from health.
func (b *Boss) Phase() int {
	return PhaseFor(b.actor.Health, b.actor.MaxHealth, b.cfg.Thresholds)
}

// Rage reports whether the boss is in its final phase.
func (b *Boss) Rage() bool { return b.Phase() == b.cfg.Phases() }

// Shielded reports whether damage is currently refused.
func (b *Boss) Shielded() bool { return b.actor.Immune }

// Defeated reports whether the boss has no health left.
func (b *Boss) Defeated() bool { return b.actor.Health <= 0 || !b.actor.Alive() }

// Tick advances every cadence by one tick and returns the orders due.
func (b *Boss) Tick(src dice.Source) Orders {
	if b.Defeated() {
		b.actor.Immune = false
		return Orders{Phase: b.Phase(), Defeated: true}
	}
	phase := b.Phase()
	o := Orders{Phase: phase}
	if phase != b.seen {
		o.Entered = true
		b.seen = phase
	}

	if bounce, ok := b.actor.Motion.(*movement.Bounce); ok && (b.cfg.BaseSpeed > 0 || b.cfg.SpeedPerPhase > 0) {
		bounce.Speed = b.cfg.BaseSpeed + b.cfg.SpeedPerPhase*float64(phase-1)
	}

	b.basic++
	if b.basic >= b.cfg.Basic.Interval(phase) {
		b.basic = 0
		o.Basic = true
	}

	if b.cfg.SpecialEvery > 0 {
		b.special++
		if b.special >= b.cfg.SpecialEvery {
			b.special = 0
			o.Special = b.cfg.specialsFor(phase)
		}
	}

	if sh := b.cfg.Shield; sh != nil {
		if phase >= sh.FromPhase {
			b.shield++
			if b.shield >= sh.Period {
				b.shield = 0
				b.actor.Immune = !b.actor.Immune
			}
		} else {
			b.shield = 0
			b.actor.Immune = false
		}
	}

	if tp := b.cfg.Teleport; tp != nil && phase >= tp.FromPhase {
		b.teleport++
		if b.teleport >= tp.Every {
			b.teleport = 0
			b.actor.Pos.X = dice.FloatRange(src, tp.MinX, tp.MaxX)
			o.Teleported = true
		}
	}

	if m := b.cfg.Minions; m != nil {
		b.minion++
		if b.minion >= m.Cadence.Interval(phase) {
			b.minion = 0
			o.Minions = m.Count(phase)
		}
	}
	return o
}
