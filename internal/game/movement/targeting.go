package movement

import (
	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// Nearest returns the live candidate closest to from within maxRange. Ties
// keep the earlier candidate. A non-positive maxRange means unlimited.
func Nearest(from geom.Vec2, candidates []*actor.Actor, maxRange float64) (*actor.Actor, bool) {
	var best *actor.Actor
	bestDist := 0.0
	for _, c := range candidates {
		if !c.Alive() {
			continue
		}
		d := geom.Distance(from, c.Pos)
		if maxRange > 0 && d > maxRange {
			continue
		}
		if best == nil || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, best != nil
}
