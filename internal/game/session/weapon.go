package session

import (
	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/ballistics"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/input"
	"github.com/cory-johannsen/skirmish/internal/game/level"
)

// gun is the player's weapon: a cooldown and an optional magazine.
type gun struct {
	spec     level.WeaponSpec
	cooldown int
	ammo     int
	reload   int
}

func newGun(spec level.WeaponSpec) *gun {
	return &gun{spec: spec, ammo: spec.Ammo}
}

func (g *gun) magazine() bool { return g.spec.Ammo > 0 }

// tick counts the cooldown and any reload down. A finished reload refills.
func (g *gun) tick() {
	if g.cooldown > 0 {
		g.cooldown--
	}
	if g.reload > 0 {
		g.reload--
		if g.reload == 0 {
			g.ammo = g.spec.Ammo
		}
	}
}

// startReload begins a reload when the magazine is not full.
func (g *gun) startReload() bool {
	if !g.magazine() || g.reload > 0 || g.ammo >= g.spec.Ammo {
		return false
	}
	g.reload = g.spec.Reload
	return true
}

// refill loads a full magazine immediately.
func (g *gun) refill() {
	g.ammo = g.spec.Ammo
	g.reload = 0
}

// trigger fires one shot from shooter if the fire key or primary click is
// down and the weapon is ready. Aimed weapons fire at the pointer, falling
// back to the shooter's heading; others fire straight up.
func (g *gun) trigger(s *Session, shooter *actor.Actor) bool {
	in := s.in
	if !in.Held.Has(input.KeyFire) && !in.Primary {
		return false
	}
	if g.cooldown > 0 || g.reload > 0 || (g.magazine() && g.ammo <= 0) {
		return false
	}
	origin := shooter.Pos
	vel := geom.V(0, -g.spec.Speed)
	if g.spec.Aimed {
		if in.HasAim {
			vel = ballistics.Aimed(origin, in.Aim, g.spec.Speed)
		} else {
			vel = geom.FromAngle(shooter.Heading).Scale(g.spec.Speed)
		}
		if vel.IsZero() {
			return false
		}
	} else {
		origin.Y -= shooter.Size.Y / 2
	}
	s.shots.Add(ballistics.Volley(ballistics.Shot{
		Owner:   shooter.ID,
		Faction: shooter.Faction,
		Size:    g.spec.Size,
		Damage:  g.spec.Damage,
	}, origin, []geom.Vec2{vel})...)
	g.cooldown = g.spec.Cooldown
	if g.magazine() {
		g.ammo--
	}
	return true
}
