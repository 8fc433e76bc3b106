package ballistics

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// Tag is the visual and behavioral class of a projectile.
type Tag uint8

const (
	TagNormal Tag = iota
	TagSpread
	TagCircle
	TagLaser
	TagRocket
	TagFire
	TagAcid
	TagFreeze
)

var tagNames = map[Tag]string{
	TagNormal: "normal",
	TagSpread: "spread",
	TagCircle: "circle",
	TagLaser:  "laser",
	TagRocket: "rocket",
	TagFire:   "fire",
	TagAcid:   "acid",
	TagFreeze: "freeze",
}

func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseTag maps a content name to a Tag. The empty string is TagNormal.
func ParseTag(s string) (Tag, error) {
	if s == "" {
		return TagNormal, nil
	}
	for t, name := range tagNames {
		if name == s {
			return t, nil
		}
	}
	return TagNormal, fmt.Errorf("unknown projectile tag %q", s)
}

// Projectile is a shot travelling at constant velocity. Owner is a weak
// reference to the firing actor, used only to credit rewards.
type Projectile struct {
	ID      uint64
	Owner   actor.ID
	Faction actor.Faction
	Pos     geom.Vec2
	Vel     geom.Vec2
	Size    geom.Vec2
	Damage  int
	Tag     Tag
	// FreezeTicks is applied to the target's frozen counter on hit.
	FreezeTicks int

	spent bool
}

// Bounds returns the projectile's bounding rectangle centered on Pos.
func (p *Projectile) Bounds() geom.Rect {
	return geom.CenteredRect(p.Pos, p.Size.X, p.Size.Y)
}

// Spent reports whether the projectile has hit or despawned.
func (p *Projectile) Spent() bool { return p.spent }

// Spend retires the projectile.
func (p *Projectile) Spend() { p.spent = true }

// Shot is the template shared by every projectile in one volley.
type Shot struct {
	Owner       actor.ID
	Faction     actor.Faction
	Size        geom.Vec2
	Damage      int
	Tag         Tag
	FreezeTicks int
}

// Volley builds one projectile per velocity at origin. Zero velocities are
// dropped.
func Volley(s Shot, origin geom.Vec2, velocities []geom.Vec2) []*Projectile {
	out := make([]*Projectile, 0, len(velocities))
	for _, v := range velocities {
		if v.IsZero() {
			continue
		}
		out = append(out, &Projectile{
			Owner:       s.Owner,
			Faction:     s.Faction,
			Pos:         origin,
			Vel:         v,
			Size:        s.Size,
			Damage:      s.Damage,
			Tag:         s.Tag,
			FreezeTicks: s.FreezeTicks,
		})
	}
	return out
}

// Fire builds the projectiles for pattern p fired by owner from origin.
//
// Precondition: p.Validate() == nil.
func (p Pattern) Fire(owner actor.ID, faction actor.Faction, origin, aim geom.Vec2, area geom.Rect, src dice.Source) []*Projectile {
	tag, _ := ParseTag(p.Tag)
	size := p.Size
	if size <= 0 {
		size = 8
	}
	return Volley(Shot{
		Owner:   owner,
		Faction: faction,
		Size:    geom.V(size, size),
		Damage:  p.Damage,
		Tag:     tag,
	}, origin, p.Velocities(origin, aim, area, src))
}

// Field stores the live projectiles of a level session. Like the actor
// registry it uses mark-then-compact removal.
type Field struct {
	next   uint64
	shots  []*Projectile
	margin float64
}

// NewField returns an empty store that despawns shots once they exit the
// play field by more than margin.
func NewField(margin float64) *Field {
	return &Field{margin: margin}
}

// Add assigns IDs and stores shots.
func (f *Field) Add(shots ...*Projectile) {
	for _, p := range shots {
		f.next++
		p.ID = f.next
		f.shots = append(f.shots, p)
	}
}

// Advance moves every live projectile by its velocity and retires those
// outside bounds grown by the margin. It returns how many were retired.
func (f *Field) Advance(bounds geom.Rect) int {
	limit := bounds.Expand(f.margin)
	retired := 0
	for _, p := range f.shots {
		if p.spent {
			continue
		}
		p.Pos = p.Pos.Add(p.Vel)
		if !limit.Contains(p.Pos) {
			p.spent = true
			retired++
		}
	}
	return retired
}

// Live returns a snapshot of projectiles that are not spent.
func (f *Field) Live() []*Projectile {
	out := make([]*Projectile, 0, len(f.shots))
	for _, p := range f.shots {
		if !p.spent {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of live projectiles.
func (f *Field) Len() int {
	n := 0
	for _, p := range f.shots {
		if !p.spent {
			n++
		}
	}
	return n
}

// Compact drops spent projectiles from storage.
func (f *Field) Compact() int {
	kept := f.shots[:0]
	for _, p := range f.shots {
		if !p.spent {
			kept = append(kept, p)
		}
	}
	dropped := len(f.shots) - len(kept)
	for i := len(kept); i < len(f.shots); i++ {
		f.shots[i] = nil
	}
	f.shots = kept
	return dropped
}

// Clear retires every projectile.
func (f *Field) Clear() {
	for _, p := range f.shots {
		p.spent = true
	}
}
