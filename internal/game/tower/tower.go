// Package tower implements the static defensive structures of the tower
// defense genre: kinds, build spots, target acquisition and upgrades.
package tower

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/ballistics"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
)

// Kind names a tower type.
type Kind string

const (
	KindBasic  Kind = "basic"
	KindRapid  Kind = "rapid"
	KindHeavy  Kind = "heavy"
	KindFreeze Kind = "freeze"
)

// Stats are a tower's combat parameters.
type Stats struct {
	Range  float64
	Damage int
	// Rate is the cooldown in ticks between shots.
	Rate int
	Cost int
	// Freeze is the frozen counter applied by each shot.
	Freeze int
}

var catalog = map[Kind]Stats{
	KindBasic:  {Range: 100, Damage: 25, Rate: 30, Cost: 50},
	KindRapid:  {Range: 80, Damage: 15, Rate: 10, Cost: 75},
	KindHeavy:  {Range: 120, Damage: 50, Rate: 60, Cost: 100},
	KindFreeze: {Range: 90, Damage: 10, Rate: 20, Cost: 80, Freeze: 60},
}

// slotKinds maps selection keys 1-4 to kinds.
var slotKinds = [...]Kind{KindBasic, KindRapid, KindHeavy, KindFreeze}

const (
	// ShotSpeed is the travel speed of every tower projectile.
	ShotSpeed = 5
	// MaxLevel caps upgrades.
	MaxLevel = 3
	// Size is the tower's square footprint.
	Size = 40
)

// Lookup returns the base stats for k.
func Lookup(k Kind) (Stats, error) {
	s, ok := catalog[k]
	if !ok {
		return Stats{}, fmt.Errorf("unknown tower kind %q", k)
	}
	return s, nil
}

// KindForSlot maps a selection slot (1..4) to a kind.
func KindForSlot(slot int) (Kind, bool) {
	if slot < 1 || slot > len(slotKinds) {
		return "", false
	}
	return slotKinds[slot-1], true
}

// Tower is one built structure.
type Tower struct {
	Kind  Kind
	Stats Stats
	Level int
	Kills int
	// Spot is the index of the build spot this tower occupies.
	Spot     int
	Actor    *actor.Actor
	cooldown int
}

// New returns a level-1 tower of kind k centered at pos.
//
// Precondition: k is a catalog kind.
func New(k Kind, pos geom.Vec2, spot int) *Tower {
	stats, err := Lookup(k)
	if err != nil {
		panic("tower: " + err.Error())
	}
	return &Tower{
		Kind:  k,
		Stats: stats,
		Level: 1,
		Spot:  spot,
		Actor: &actor.Actor{
			Kind:      actor.KindTower,
			Variant:   string(k),
			Faction:   actor.FactionStructure,
			Pos:       pos,
			Size:      geom.V(Size, Size),
			Health:    1,
			MaxHealth: 1,
			Caps:      actor.CanShoot,
			Heading:   -math.Pi / 2,
		},
	}
}

// CanUpgrade reports whether the tower has earned its next level.
func (t *Tower) CanUpgrade() bool {
	return t.Level < MaxLevel && t.Kills >= 3*t.Level
}

// UpgradeCost is the money required for the next level.
func (t *Tower) UpgradeCost() int { return 25 + 15*t.Level }

// Upgrade raises the level: +10 damage, +15 range, and a faster rate for
// rapid towers.
//
// Postcondition: Returns false and leaves t unchanged when CanUpgrade is false.
func (t *Tower) Upgrade() bool {
	if !t.CanUpgrade() {
		return false
	}
	t.Level++
	t.Stats.Damage += 10
	t.Stats.Range += 15
	if t.Kind == KindRapid {
		t.Stats.Rate = max(5, t.Stats.Rate-3)
	}
	return true
}

// Tick counts down the cooldown and, when ready, fires at the nearest live
// target in range. The tower turns toward whatever it fires at.
func (t *Tower) Tick(targets []*actor.Actor) (*ballistics.Projectile, bool) {
	if t.cooldown > 0 {
		t.cooldown--
		return nil, false
	}
	target, ok := movement.Nearest(t.Actor.Pos, targets, t.Stats.Range)
	if !ok {
		return nil, false
	}
	vel := ballistics.Aimed(t.Actor.Pos, target.Pos, ShotSpeed)
	if vel.IsZero() {
		return nil, false
	}
	t.cooldown = t.Stats.Rate
	if steer, ok := t.Actor.Motion.(*movement.PointerSteer); ok {
		steer.Target = target.ID
	} else {
		t.Actor.Motion = &movement.PointerSteer{Target: target.ID}
	}
	tag := ballistics.TagNormal
	if t.Stats.Freeze > 0 {
		tag = ballistics.TagFreeze
	}
	return &ballistics.Projectile{
		Owner:       t.Actor.ID,
		Faction:     actor.FactionStructure,
		Pos:         t.Actor.Pos,
		Vel:         vel,
		Size:        geom.V(6, 6),
		Damage:      t.Stats.Damage,
		Tag:         tag,
		FreezeTicks: t.Stats.Freeze,
	}, true
}

// Spot is one place a tower may be built.
type Spot struct {
	Pos      geom.Vec2 `yaml:"pos" msgpack:"pos"`
	Occupied bool      `yaml:"-" msgpack:"occupied"`
}

// Grid is the set of build spots of a level.
type Grid struct {
	Spots []Spot
}

// NewGrid lays spots on a regular lattice inside area, skipping any that
// fall within one of the excluded rectangles.
func NewGrid(area geom.Rect, step float64, exclude []geom.Rect) *Grid {
	g := &Grid{}
	if step <= 0 {
		return g
	}
	for x := area.X; x < area.Right(); x += step {
		for y := area.Y; y < area.Bottom(); y += step {
			p := geom.V(x, y)
			blocked := false
			for _, r := range exclude {
				if r.Contains(p) {
					blocked = true
					break
				}
			}
			if !blocked {
				g.Spots = append(g.Spots, Spot{Pos: p})
			}
		}
	}
	return g
}

// NearestFree returns the index of the free spot closest to p and strictly
// within reach.
func (g *Grid) NearestFree(p geom.Vec2, reach float64) (int, bool) {
	best, bestDist := -1, reach
	for i, s := range g.Spots {
		if s.Occupied {
			continue
		}
		if d := geom.Distance(p, s.Pos); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// Occupy marks spot i taken.
func (g *Grid) Occupy(i int) { g.Spots[i].Occupied = true }

// Release frees spot i.
func (g *Grid) Release(i int) {
	if i >= 0 && i < len(g.Spots) {
		g.Spots[i].Occupied = false
	}
}

// Free returns the number of unoccupied spots.
func (g *Grid) Free() int {
	n := 0
	for _, s := range g.Spots {
		if !s.Occupied {
			n++
		}
	}
	return n
}

// At returns the tower whose footprint contains p.
func At(towers []*Tower, p geom.Vec2) (*Tower, bool) {
	for _, t := range towers {
		if t.Actor.Alive() && t.Actor.Bounds().Contains(p) {
			return t, true
		}
	}
	return nil, false
}
