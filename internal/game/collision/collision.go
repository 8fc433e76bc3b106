// Package collision resolves overlaps between projectiles, actors and static
// obstacles using axis-aligned bounding rectangles.
package collision

import (
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/ballistics"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// Hit records one projectile-vs-actor resolution.
type Hit struct {
	Projectile *ballistics.Projectile
	Target     *actor.Actor
	// Killed is set when this hit took the target's last health.
	Killed bool
	// Absorbed is set when the target was immune and took no damage.
	Absorbed bool
}

// Eligible reports whether p may hit a: both live, factions differ, and the
// target is not intangible.
func Eligible(p *ballistics.Projectile, a *actor.Actor) bool {
	return !p.Spent() && a.Alive() && p.Faction != a.Faction && !a.Has(actor.Intangible)
}

// ResolveProjectiles tests every live projectile against targets in order and
// applies at most one hit per projectile. The first overlapping eligible
// target in slice order is chosen. Every projectile that hits is spent,
// whether or not the target died or was immune.
//
// Postcondition: each returned Hit names a distinct projectile.
func ResolveProjectiles(shots []*ballistics.Projectile, targets []*actor.Actor) []Hit {
	var hits []Hit
	for _, p := range shots {
		if p.Spent() {
			continue
		}
		pb := p.Bounds()
		for _, a := range targets {
			if !Eligible(p, a) || !pb.Intersects(a.Bounds()) {
				continue
			}
			absorbed := a.Immune
			killed := a.TakeDamage(p.Damage)
			if p.FreezeTicks > 0 && a.Alive() && !absorbed && a.Frozen < p.FreezeTicks {
				a.Frozen = p.FreezeTicks
			}
			p.Spend()
			hits = append(hits, Hit{Projectile: p, Target: a, Killed: killed, Absorbed: absorbed})
			break
		}
	}
	return hits
}

// Touching returns the live actors among others whose bounds overlap subject.
func Touching(subject *actor.Actor, others []*actor.Actor) []*actor.Actor {
	var out []*actor.Actor
	sb := subject.Bounds()
	for _, o := range others {
		if o == subject || !o.Alive() {
			continue
		}
		if sb.Intersects(o.Bounds()) {
			out = append(out, o)
		}
	}
	return out
}

// Obstacle is a static rectangle blocking motion. Walls always resolve
// sideways.
type Obstacle struct {
	Rect geom.Rect `yaml:",inline"`
	Wall bool      `yaml:"wall"`
}

// PushOut moves a out of every obstacle it penetrates. Penetration is
// resolved along the axis of least overlap: vertically onto the nearest top
// or bottom face (zeroing vertical velocity), or horizontally onto the
// nearest side face. Walls are always resolved horizontally.
//
// Postcondition: returns true when a was placed on top of an obstacle.
func PushOut(a *actor.Actor, obstacles []Obstacle) (grounded bool) {
	for _, ob := range obstacles {
		b := a.Bounds()
		r := ob.Rect
		if !b.Intersects(r) {
			continue
		}
		overlapX := math.Min(b.Right(), r.Right()) - math.Max(b.X, r.X)
		overlapY := math.Min(b.Bottom(), r.Bottom()) - math.Max(b.Y, r.Y)
		if !ob.Wall && overlapY <= overlapX {
			if a.Pos.Y < r.Center().Y {
				a.Pos.Y = r.Y - a.Size.Y/2
				if a.Vel.Y > 0 {
					a.Vel.Y = 0
				}
				grounded = true
			} else {
				a.Pos.Y = r.Bottom() + a.Size.Y/2
				if a.Vel.Y < 0 {
					a.Vel.Y = 0
				}
			}
			continue
		}
		if a.Pos.X < r.Center().X {
			a.Pos.X = r.X - a.Size.X/2
		} else {
			a.Pos.X = r.Right() + a.Size.X/2
		}
		a.Vel.X = 0
	}
	return grounded
}
