// Package detection models guard vision, per-guard alert levels, the global
// detection accumulator and the alarm.
package detection

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
)

// Kind is a guard archetype.
type Kind string

const (
	KindPatrol Kind = "patrol"
	KindOffice Kind = "office"
	KindElite  Kind = "elite"
	KindSniper Kind = "sniper"
)

// Stats are the per-kind detection rate and resting patrol speed.
type Stats struct {
	Rate  float64
	Speed float64
}

var kindStats = map[Kind]Stats{
	KindPatrol: {Rate: 1, Speed: 1.0},
	KindOffice: {Rate: 2, Speed: 1.1},
	KindElite:  {Rate: 3, Speed: 1.4},
	KindSniper: {Rate: 4, Speed: 0},
}

// StatsFor returns the stats for k.
func StatsFor(k Kind) (Stats, bool) {
	s, ok := kindStats[k]
	return s, ok
}

// Tuning holds the model constants.
type Tuning struct {
	Max            float64 `yaml:"max"`
	AlertGain      float64 `yaml:"alert_gain"`
	AlertMax       float64 `yaml:"alert_max"`
	AlarmThreshold float64 `yaml:"alarm_threshold"`
	AlarmFloor     float64 `yaml:"alarm_floor"`
	AlarmDuration  int     `yaml:"alarm_duration"`
	AlarmVision    float64 `yaml:"alarm_vision"`
	AlarmSpeed     float64 `yaml:"alarm_speed"`
	SpeedCap       float64 `yaml:"speed_cap"`
	AlarmRate      float64 `yaml:"alarm_rate"`
	CoverMargin    float64 `yaml:"cover_margin"`
	HiddenDecay    float64 `yaml:"hidden_decay"`
	ExposedDecay   float64 `yaml:"exposed_decay"`
	AlertDecay     float64 `yaml:"alert_decay"`
	SniperTurn     int     `yaml:"sniper_turn"`
}

// DefaultTuning returns the stock constants.
func DefaultTuning() Tuning {
	return Tuning{
		Max:            100,
		AlertGain:      2,
		AlertMax:       100,
		AlarmThreshold: 50,
		AlarmFloor:     30,
		AlarmDuration:  300,
		AlarmVision:    1.5,
		AlarmSpeed:     1.5,
		SpeedCap:       3.0,
		AlarmRate:      1.5,
		CoverMargin:    5,
		HiddenDecay:    0.3,
		ExposedDecay:   0.1,
		AlertDecay:     0.3,
		SniperTurn:     120,
	}
}

// GuardSpec is the level-supplied starting state of one guard.
type GuardSpec struct {
	Kind Kind      `yaml:"kind"`
	Pos  geom.Vec2 `yaml:"pos"`
	// Range is the patrol half-extent along x.
	Range  float64 `yaml:"range"`
	Vision float64 `yaml:"vision"`
	// Dir is the initial patrol direction or sniper facing, -1 or +1.
	Dir float64 `yaml:"dir"`
	// Speed overrides the kind's resting speed when positive.
	Speed float64 `yaml:"speed"`
}

// Validate checks one guard entry.
func (g GuardSpec) Validate() error {
	if _, ok := kindStats[g.Kind]; !ok {
		return fmt.Errorf("unknown guard kind %q", g.Kind)
	}
	if g.Vision <= 0 {
		return fmt.Errorf("guard vision must be > 0, got %.1f", g.Vision)
	}
	if g.Range < 0 {
		return fmt.Errorf("guard patrol range must be >= 0, got %.1f", g.Range)
	}
	return nil
}

// Guard is one live guard.
type Guard struct {
	Spec   GuardSpec
	Actor  *actor.Actor
	Alert  float64
	Facing float64
	patrol movement.Patrol
}

// NewGuard builds a guard and its actor at the spec's origin.
//
// Precondition: spec.Validate() == nil.
func NewGuard(spec GuardSpec) *Guard {
	g := &Guard{
		Spec: spec,
		Actor: &actor.Actor{
			Kind:      actor.KindGuard,
			Variant:   string(spec.Kind),
			Faction:   actor.FactionHostile,
			Size:      geom.V(20, 30),
			Health:    1,
			MaxHealth: 1,
			Caps:      actor.CanPatrol,
		},
	}
	g.reset()
	return g
}

func (g *Guard) reset() {
	dir := g.Spec.Dir
	if dir == 0 {
		dir = 1
	}
	g.Alert = 0
	g.Facing = dir
	g.Actor.Pos = g.Spec.Pos
	g.patrol = movement.Patrol{Axis: movement.AxisX, Origin: g.Spec.Pos.X, Range: g.Spec.Range, Dir: dir}
}

// BaseSpeed is the guard's resting speed.
func (g *Guard) BaseSpeed() float64 {
	if g.Spec.Speed > 0 {
		return g.Spec.Speed
	}
	return kindStats[g.Spec.Kind].Speed
}

// Rate is the guard's detection rate per sighting.
func (g *Guard) Rate() float64 { return kindStats[g.Spec.Kind].Rate }

// Result reports what one update observed.
type Result struct {
	Hidden bool
	// Spotted counts guards that saw the player this tick.
	Spotted      int
	AlarmRaised  bool
	AlarmCleared bool
	// Captured is set when the accumulator reached its maximum; the model has
	// already reset itself and the caller must return the player to the start.
	Captured bool
}

// Model is the detection state of one stealth level session.
//
// Invariant: 0 <= Level() <= Max, and 0 <= g.Alert <= AlertMax for every guard.
type Model struct {
	tuning Tuning
	guards []*Guard
	cover  []geom.Rect

	level      float64
	alarm      bool
	alarmTimer int
	tick       int
	captures   int
}

// NewModel returns a model over guards and static cover rectangles.
func NewModel(t Tuning, guards []*Guard, cover []geom.Rect) *Model {
	return &Model{tuning: t, guards: guards, cover: cover}
}

// Guards returns the guards in roster order.
func (m *Model) Guards() []*Guard { return m.guards }

// Level returns the global detection accumulator.
func (m *Model) Level() float64 { return m.level }

// Max returns the accumulator's capture threshold.
func (m *Model) Max() float64 { return m.tuning.Max }

// Alarm reports whether the global alarm is active.
func (m *Model) Alarm() bool { return m.alarm }

// Captures returns how many times the player has been captured.
func (m *Model) Captures() int { return m.captures }

// Hidden reports whether p lies inside any cover rectangle expanded by the
// cover margin.
func (m *Model) Hidden(p geom.Vec2) bool {
	for _, c := range m.cover {
		if c.Expand(m.tuning.CoverMargin).Contains(p) {
			return true
		}
	}
	return false
}

// Occluded reports whether any obstacle overlaps the box spanned by a and b.
func Occluded(a, b geom.Vec2, obstacles []geom.Rect) bool {
	span := geom.Span(a, b)
	for _, o := range obstacles {
		if span.Intersects(o) {
			return true
		}
	}
	return false
}

// Sees reports whether g can see a player at p.
func (m *Model) Sees(g *Guard, p geom.Vec2) bool {
	vision := g.Spec.Vision
	if m.alarm {
		vision *= m.tuning.AlarmVision
	}
	gp := g.Actor.Pos
	if geom.Distance(gp, p) >= vision {
		return false
	}
	return !Occluded(gp, p, m.cover)
}

// Update runs one tick of guard motion, visibility, accumulation, decay and
// capture for a player at p.
func (m *Model) Update(p geom.Vec2) Result {
	var r Result
	m.tick++
	if m.alarm {
		m.alarmTimer++
		if m.alarmTimer > m.tuning.AlarmDuration {
			m.alarm = false
			m.alarmTimer = 0
			r.AlarmCleared = true
		}
	}

	m.moveGuards()

	r.Hidden = m.Hidden(p)
	if r.Hidden {
		for _, g := range m.guards {
			g.Alert = clamp(g.Alert-m.tuning.AlertDecay, 0, m.tuning.AlertMax)
		}
	} else {
		for _, g := range m.guards {
			if !m.Sees(g, p) {
				continue
			}
			r.Spotted++
			rate := g.Rate()
			if m.alarm {
				rate *= m.tuning.AlarmRate
			}
			m.level = clamp(m.level+rate, 0, m.tuning.Max)
			g.Alert = clamp(g.Alert+m.tuning.AlertGain, 0, m.tuning.AlertMax)
			if g.Alert > m.tuning.AlarmThreshold && !m.alarm {
				m.raiseAlarm()
				r.AlarmRaised = true
			}
		}
	}

	if m.level >= m.tuning.Max {
		m.capture()
		r.Captured = true
		return r
	}

	decay := m.tuning.ExposedDecay
	if r.Hidden {
		decay = m.tuning.HiddenDecay
	}
	m.level = clamp(m.level-decay, 0, m.tuning.Max)
	return r
}

func (m *Model) moveGuards() {
	for _, g := range m.guards {
		if g.Spec.Kind == KindSniper {
			if m.tuning.SniperTurn > 0 && m.tick%m.tuning.SniperTurn == 0 {
				g.Facing = -g.Facing
			}
			continue
		}
		speed := g.BaseSpeed()
		if m.alarm {
			speed = min(speed*m.tuning.AlarmSpeed, m.tuning.SpeedCap)
		}
		g.patrol.Advance(&g.Actor.Pos, speed)
		g.Facing = g.patrol.Dir
		g.Actor.Vel = geom.V(g.patrol.Dir*speed, 0)
	}
}

func (m *Model) raiseAlarm() {
	m.alarm = true
	m.alarmTimer = 0
	for _, g := range m.guards {
		g.Alert = max(g.Alert, m.tuning.AlarmFloor)
	}
}

// capture performs the full reset: accumulator, alarm, and every guard's
// alert level and position.
func (m *Model) capture() {
	m.captures++
	m.level = 0
	m.alarm = false
	m.alarmTimer = 0
	for _, g := range m.guards {
		g.reset()
	}
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

// Stage returns the mission stage for a player at height y given descending
// y thresholds: 1 below the first threshold, rising by one per threshold
// crossed.
func Stage(y float64, thresholds []float64) int {
	stage := 1
	for _, t := range thresholds {
		if y <= t {
			stage++
		}
	}
	return stage
}
