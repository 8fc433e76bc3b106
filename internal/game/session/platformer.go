package session

import (
	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/collision"
	"github.com/cory-johannsen/skirmish/internal/game/level"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
)

// platformerRules: climb to the goal under gravity. Spikes and saws kill on
// contact; falling below the field is defeat.
type platformerRules struct {
	baseRules
	jumper  *movement.Jumper
	hazards []*actor.Actor
	reached bool
}

func (r *platformerRules) setup(s *Session) {
	j := s.cfg.Player.Jump
	r.jumper = &movement.Jumper{
		Speed:     s.cfg.Player.Speed,
		Gravity:   j.Gravity,
		MinPower:  j.MinPower,
		MaxPower:  j.MaxPower,
		MaxCharge: j.MaxCharge,
	}
	s.spawnPlayer(r.jumper)
	for _, h := range s.cfg.Hazards {
		a := &actor.Actor{
			Kind:      actor.KindHazard,
			Variant:   h.Kind,
			Faction:   actor.FactionHostile,
			Pos:       h.Pos,
			Size:      h.Size,
			Health:    1,
			MaxHealth: 1,
			Caps:      actor.Intangible,
		}
		if h.Kind == level.HazardSaw {
			axis := movement.AxisX
			if h.Axis == "y" {
				axis = movement.AxisY
			}
			a.Motion = &movement.Oscillate{Origin: h.Pos, Axis: axis, Range: h.Range, Step: h.Step}
		}
		r.hazards = append(r.hazards, s.spawn(a))
	}
}

func (r *platformerRules) moved(s *Session, a *actor.Actor, o actor.Outcome) {
	if a == s.player && o == actor.OutOfBounds {
		s.player.Kill()
	}
}

func (r *platformerRules) afterMove(s *Session) {
	p := s.player
	if !p.Alive() {
		return
	}
	r.jumper.OnGround = collision.PushOut(p, s.cfg.Obstacles)
	if len(collision.Touching(p, r.hazards)) > 0 {
		p.Kill()
		return
	}
	if s.cfg.Goal != nil && p.Bounds().Intersects(*s.cfg.Goal) {
		r.reached = true
	}
}

func (r *platformerRules) status(s *Session) Status {
	switch {
	case !s.player.Alive():
		return Defeat
	case r.reached:
		return Victory
	}
	return Ongoing
}

func (r *platformerRules) view(_ *Session, snap *Snapshot) {
	snap.HUD.Charge = r.jumper.Charge()
}
