// Package movement implements the per-kind motion rules applied during the
// movement phase of each tick. Every rule is an actor.Mover carrying only
// the state it needs.
package movement

import (
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/input"
)

// Axis selects the coordinate a one-dimensional rule acts on.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

func (ax Axis) get(p geom.Vec2) float64 {
	if ax == AxisY {
		return p.Y
	}
	return p.X
}

func (ax Axis) set(p *geom.Vec2, v float64) {
	if ax == AxisY {
		p.Y = v
		return
	}
	p.X = v
}

// outside reports whether p lies beyond field grown by margin.
func outside(field geom.Rect, p geom.Vec2, margin float64) bool {
	return p.X < field.X-margin || p.X > field.Right()+margin ||
		p.Y < field.Y-margin || p.Y > field.Bottom()+margin
}

// inner returns field shrunk so that an actor of the given size centered
// anywhere inside stays fully on the field.
func inner(field geom.Rect, size geom.Vec2) geom.Rect {
	return geom.Rect{
		X: field.X + size.X/2,
		Y: field.Y + size.Y/2,
		W: math.Max(0, field.W-size.X),
		H: math.Max(0, field.H-size.Y),
	}
}

// Straight moves at constant velocity a.Vel.
type Straight struct {
	// Clip holds the actor inside the field instead of removing it.
	Clip bool
	// Margin is how far past the field edge the actor may travel before it is
	// reported out of bounds.
	Margin float64
}

// Move implements actor.Mover.
func (s *Straight) Move(a *actor.Actor, env actor.Env) actor.Outcome {
	a.Pos = a.Pos.Add(a.Vel)
	if s.Clip {
		a.Pos = inner(env.Field(), a.Size).Clamp(a.Pos)
		return actor.Moving
	}
	if outside(env.Field(), a.Pos, s.Margin) {
		return actor.OutOfBounds
	}
	return actor.Moving
}

// Homing steers toward a live target at a fixed speed, recomputing the unit
// vector every tick. When the target is gone it keeps its last heading.
type Homing struct {
	Target  actor.ID
	Speed   float64
	Heading geom.Vec2
	Margin  float64
}

// NewHoming returns a Homing rule with an initial heading used until the
// target is first seen.
func NewHoming(target actor.ID, speed float64, initial geom.Vec2) *Homing {
	return &Homing{Target: target, Speed: speed, Heading: geom.Normalize(initial), Margin: 50}
}

// Move implements actor.Mover.
func (h *Homing) Move(a *actor.Actor, env actor.Env) actor.Outcome {
	dir := h.Heading
	if t, ok := env.Lookup(h.Target); ok {
		dir = geom.Direction(a.Pos, t.Pos)
		if !dir.IsZero() {
			h.Heading = dir
		}
	}
	a.Vel = dir.Scale(h.Speed)
	a.Pos = a.Pos.Add(a.Vel)
	if !dir.IsZero() {
		a.Heading = dir.Angle()
	}
	if outside(env.Field(), a.Pos, h.Margin) {
		return actor.OutOfBounds
	}
	return actor.Moving
}

// Patrol oscillates between Origin-Range and Origin+Range along one axis,
// reversing once the bound is passed.
type Patrol struct {
	Axis   Axis
	Origin float64
	Range  float64
	Speed  float64
	// Dir is +1 or -1.
	Dir float64
}

// Advance moves p by speed in the current direction and reverses at the bound.
func (p *Patrol) Advance(pos *geom.Vec2, speed float64) {
	if p.Dir == 0 {
		p.Dir = 1
	}
	v := p.Axis.get(*pos) + p.Dir*speed
	p.Axis.set(pos, v)
	if math.Abs(v-p.Origin) > p.Range {
		p.Dir = -p.Dir
	}
}

// Move implements actor.Mover.
func (p *Patrol) Move(a *actor.Actor, _ actor.Env) actor.Outcome {
	p.Advance(&a.Pos, p.Speed)
	a.Vel = geom.Vec2{}
	p.Axis.set(&a.Vel, p.Dir*p.Speed)
	return actor.Moving
}

// Oscillate places the actor at Origin + sin(Phase)*Range/2 along Axis,
// advancing Phase by Step each tick. Motion is periodic and restartable.
type Oscillate struct {
	Origin geom.Vec2
	Axis   Axis
	Range  float64
	Step   float64
	Phase  float64
}

// Position returns the position for the current phase.
func (o *Oscillate) Position() geom.Vec2 {
	p := o.Origin
	o.Axis.set(&p, o.Axis.get(o.Origin)+math.Sin(o.Phase)*o.Range/2)
	return p
}

// Reset rewinds the phase to zero.
func (o *Oscillate) Reset() { o.Phase = 0 }

// Move implements actor.Mover.
func (o *Oscillate) Move(a *actor.Actor, _ actor.Env) actor.Outcome {
	o.Phase += o.Step
	a.Pos = o.Position()
	return actor.Moving
}

// PathFollow walks an ordered waypoint sequence. Index is the waypoint the
// actor last reached; it heads for Path[Index+1].
type PathFollow struct {
	Path      []geom.Vec2
	Speed     float64
	Tolerance float64
	Index     int
}

// NewPathFollow returns a rule walking path.
//
// Precondition: len(path) >= 2 and tolerance > 0. Panics otherwise.
func NewPathFollow(path []geom.Vec2, speed, tolerance float64) *PathFollow {
	if len(path) < 2 {
		panic("movement: NewPathFollow requires at least two waypoints")
	}
	if tolerance <= 0 {
		panic("movement: NewPathFollow requires a positive tolerance")
	}
	return &PathFollow{Path: path, Speed: speed, Tolerance: tolerance}
}

// Done reports whether the final waypoint has been reached.
func (p *PathFollow) Done() bool { return p.Index >= len(p.Path)-1 }

// Move implements actor.Mover.
func (p *PathFollow) Move(a *actor.Actor, _ actor.Env) actor.Outcome {
	if p.Done() {
		return actor.ReachedEnd
	}
	next := p.Path[p.Index+1]
	dir := geom.Direction(a.Pos, next)
	a.Vel = dir.Scale(p.Speed)
	a.Pos = a.Pos.Add(a.Vel)
	if !dir.IsZero() {
		a.Heading = dir.Angle()
	}
	if geom.Distance(a.Pos, next) < p.Tolerance {
		p.Index++
		if p.Done() {
			return actor.ReachedEnd
		}
	}
	return actor.Moving
}

// Pursuit chases a live target at a fixed speed. It idles when the target
// is gone or coincident.
type Pursuit struct {
	Target actor.ID
	Speed  float64
}

// Move implements actor.Mover.
func (p *Pursuit) Move(a *actor.Actor, env actor.Env) actor.Outcome {
	t, ok := env.Lookup(p.Target)
	if !ok {
		a.Vel = geom.Vec2{}
		return actor.Moving
	}
	dir := geom.Direction(a.Pos, t.Pos)
	a.Vel = dir.Scale(p.Speed)
	a.Pos = a.Pos.Add(a.Vel)
	if !dir.IsZero() {
		a.Heading = dir.Angle()
	}
	return actor.Moving
}

// Seek walks toward a fixed point and reports ReachedEnd on arrival.
type Seek struct {
	Goal   geom.Vec2
	Speed  float64
	Arrive float64
	Active bool
}

// Move implements actor.Mover.
func (s *Seek) Move(a *actor.Actor, _ actor.Env) actor.Outcome {
	if !s.Active {
		a.Vel = geom.Vec2{}
		return actor.Moving
	}
	if geom.Distance(a.Pos, s.Goal) <= s.Arrive {
		s.Active = false
		a.Vel = geom.Vec2{}
		return actor.ReachedEnd
	}
	dir := geom.Direction(a.Pos, s.Goal)
	step := math.Min(s.Speed, geom.Distance(a.Pos, s.Goal))
	a.Vel = dir.Scale(step)
	a.Pos = a.Pos.Add(a.Vel)
	if !dir.IsZero() {
		a.Heading = dir.Angle()
	}
	return actor.Moving
}

// PointerSteer turns the actor toward an aim point without translating it.
// With Target zero the aim point is the input pointer; otherwise it is the
// target actor's position.
type PointerSteer struct {
	Target actor.ID
}

// Move implements actor.Mover.
func (p *PointerSteer) Move(a *actor.Actor, env actor.Env) actor.Outcome {
	var aim geom.Vec2
	if p.Target != 0 {
		t, ok := env.Lookup(p.Target)
		if !ok {
			return actor.Moving
		}
		aim = t.Pos
	} else {
		in := env.Input()
		if !in.HasAim {
			return actor.Moving
		}
		aim = in.Aim
	}
	d := aim.Sub(a.Pos)
	if !d.IsZero() {
		a.Heading = math.Atan2(d.Y, d.X)
	}
	return actor.Moving
}

// KeyDrive translates the actor by the held arrow keys, keeping it on the field.
type KeyDrive struct {
	Speed float64
	// Horizontal restricts motion to the x axis.
	Horizontal bool
}

// Move implements actor.Mover.
func (k *KeyDrive) Move(a *actor.Actor, env actor.Env) actor.Outcome {
	axis := env.Input().Axis()
	if k.Horizontal {
		axis.Y = 0
	}
	a.Vel = axis.Scale(k.Speed)
	a.Pos = inner(env.Field(), a.Size).Clamp(a.Pos.Add(a.Vel))
	return actor.Moving
}

// Jumper is side-view motion under gravity with a charged jump: holding the
// jump key while grounded builds charge, releasing launches with power
// interpolated between MinPower and MaxPower.
type Jumper struct {
	Speed     float64
	Gravity   float64
	MinPower  float64
	MaxPower  float64
	MaxCharge int
	// OnGround is set by obstacle resolution after each move.
	OnGround bool

	charge   int
	charging bool
}

// Charge returns the accumulated jump charge.
func (j *Jumper) Charge() int { return j.charge }

// Move implements actor.Mover.
func (j *Jumper) Move(a *actor.Actor, env actor.Env) actor.Outcome {
	in := env.Input()
	a.Vel.X = in.Axis().X * j.Speed
	switch {
	case in.Held.Has(input.KeyJump) && j.OnGround:
		j.charging = true
		if j.charge < j.MaxCharge {
			j.charge++
		}
	case j.charging:
		frac := 0.0
		if j.MaxCharge > 0 {
			frac = float64(j.charge) / float64(j.MaxCharge)
		}
		a.Vel.Y = -(j.MinPower + (j.MaxPower-j.MinPower)*frac)
		j.OnGround = false
		j.charging = false
		j.charge = 0
	}
	a.Vel.Y += j.Gravity
	a.Pos = a.Pos.Add(a.Vel)
	field := env.Field()
	half := a.Size.X / 2
	a.Pos.X = math.Max(field.X+half, math.Min(a.Pos.X, field.Right()-half))
	j.OnGround = false
	if a.Pos.Y-a.Size.Y/2 > field.Bottom() {
		return actor.OutOfBounds
	}
	return actor.Moving
}

// Bounce drifts inside Box, reflecting off its edges. Box bounds the actor's
// center. Vertical motion runs at Speed*VerticalFactor.
type Bounce struct {
	Box            geom.Rect
	Speed          float64
	VerticalFactor float64
	Dir            geom.Vec2
}

// Move implements actor.Mover.
func (b *Bounce) Move(a *actor.Actor, _ actor.Env) actor.Outcome {
	a.Vel = geom.V(b.Dir.X*b.Speed, b.Dir.Y*b.Speed*b.VerticalFactor)
	a.Pos = a.Pos.Add(a.Vel)
	if a.Pos.X < b.Box.X || a.Pos.X > b.Box.Right() {
		b.Dir.X = -b.Dir.X
	}
	if a.Pos.Y < b.Box.Y || a.Pos.Y > b.Box.Bottom() {
		b.Dir.Y = -b.Dir.Y
	}
	a.Pos = b.Box.Clamp(a.Pos)
	return actor.Moving
}

// Chain runs several rules in order and returns the first outcome that is
// not Moving.
type Chain []actor.Mover

// Move implements actor.Mover.
func (c Chain) Move(a *actor.Actor, env actor.Env) actor.Outcome {
	out := actor.Moving
	for _, m := range c {
		if o := m.Move(a, env); o != actor.Moving && out == actor.Moving {
			out = o
		}
	}
	return out
}
