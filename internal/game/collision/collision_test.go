package collision_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/ballistics"
	"github.com/cory-johannsen/skirmish/internal/game/collision"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

func hostile(pos geom.Vec2, hp int) *actor.Actor {
	return &actor.Actor{
		Kind: actor.KindRunner, Faction: actor.FactionHostile,
		Pos: pos, Size: geom.V(30, 30), Health: hp, MaxHealth: hp, Reward: 30,
	}
}

func shot(pos geom.Vec2, dmg int) *ballistics.Projectile {
	return &ballistics.Projectile{Faction: actor.FactionStructure, Pos: pos, Size: geom.V(6, 6), Damage: dmg}
}

func TestResolve_OneTargetPerProjectile(t *testing.T) {
	a := hostile(geom.V(100, 100), 50)
	b := hostile(geom.V(105, 100), 50)
	p := shot(geom.V(102, 100), 25)

	hits := collision.ResolveProjectiles([]*ballistics.Projectile{p}, []*actor.Actor{a, b})
	require.Len(t, hits, 1)
	assert.Same(t, a, hits[0].Target, "first-found order")
	assert.Equal(t, 25, a.Health)
	assert.Equal(t, 50, b.Health)
	assert.True(t, p.Spent())
}

func TestResolve_KillMarksDead(t *testing.T) {
	a := hostile(geom.V(100, 100), 10)
	hits := collision.ResolveProjectiles([]*ballistics.Projectile{shot(geom.V(100, 100), 25)}, []*actor.Actor{a})
	require.Len(t, hits, 1)
	assert.True(t, hits[0].Killed)
	assert.False(t, a.Alive())
	assert.Equal(t, 0, a.Health)
}

func TestResolve_SecondShotSkipsCorpse(t *testing.T) {
	a := hostile(geom.V(100, 100), 10)
	p1, p2 := shot(geom.V(100, 100), 25), shot(geom.V(100, 100), 25)
	hits := collision.ResolveProjectiles([]*ballistics.Projectile{p1, p2}, []*actor.Actor{a})
	assert.Len(t, hits, 1)
	assert.False(t, p2.Spent())
}

func TestResolve_SameFactionIgnored(t *testing.T) {
	tower := &actor.Actor{Faction: actor.FactionStructure, Pos: geom.V(0, 0), Size: geom.V(20, 20), Health: 1, MaxHealth: 1}
	hits := collision.ResolveProjectiles([]*ballistics.Projectile{shot(geom.V(0, 0), 5)}, []*actor.Actor{tower})
	assert.Empty(t, hits)
}

func TestResolve_ImmuneTargetStillConsumesShot(t *testing.T) {
	boss := hostile(geom.V(0, 0), 100)
	boss.Immune = true
	p := shot(geom.V(0, 0), 10)
	hits := collision.ResolveProjectiles([]*ballistics.Projectile{p}, []*actor.Actor{boss})
	require.Len(t, hits, 1)
	assert.True(t, hits[0].Absorbed)
	assert.Equal(t, 100, boss.Health)
	assert.True(t, p.Spent())
}

func TestResolve_FreezeAppliesFrozenCounter(t *testing.T) {
	a := hostile(geom.V(0, 0), 100)
	p := shot(geom.V(0, 0), 10)
	p.FreezeTicks = 60
	collision.ResolveProjectiles([]*ballistics.Projectile{p}, []*actor.Actor{a})
	assert.Equal(t, 60, a.Frozen)
}

func TestResolve_IntangibleIgnored(t *testing.T) {
	saw := hostile(geom.V(0, 0), 1)
	saw.Caps |= actor.Intangible
	hits := collision.ResolveProjectiles([]*ballistics.Projectile{shot(geom.V(0, 0), 5)}, []*actor.Actor{saw})
	assert.Empty(t, hits)
}

func TestTouching(t *testing.T) {
	player := &actor.Actor{Faction: actor.FactionPlayer, Pos: geom.V(100, 100), Size: geom.V(30, 20), Health: 1, MaxHealth: 1}
	near := hostile(geom.V(120, 100), 1)
	far := hostile(geom.V(300, 100), 1)
	got := collision.Touching(player, []*actor.Actor{player, near, far})
	assert.Equal(t, []*actor.Actor{near}, got)
}

func TestPushOut_LandsOnPlatform(t *testing.T) {
	a := &actor.Actor{Pos: geom.V(100, 286), Size: geom.V(20, 30), Vel: geom.V(0, 4)}
	platform := collision.Obstacle{Rect: geom.Rect{X: 50, Y: 300, W: 200, H: 20}}
	grounded := collision.PushOut(a, []collision.Obstacle{platform})
	assert.True(t, grounded)
	assert.Equal(t, 285.0, a.Pos.Y)
	assert.Equal(t, 0.0, a.Vel.Y)
}

func TestPushOut_HeadBumpFromBelow(t *testing.T) {
	a := &actor.Actor{Pos: geom.V(100, 334), Size: geom.V(20, 30), Vel: geom.V(0, -6)}
	platform := collision.Obstacle{Rect: geom.Rect{X: 50, Y: 300, W: 200, H: 20}}
	grounded := collision.PushOut(a, []collision.Obstacle{platform})
	assert.False(t, grounded)
	assert.Equal(t, 335.0, a.Pos.Y)
	assert.Equal(t, 0.0, a.Vel.Y)
}

func TestPushOut_WallPushesSideways(t *testing.T) {
	a := &actor.Actor{Pos: geom.V(195, 300), Size: geom.V(20, 30), Vel: geom.V(5, 0.8)}
	wall := collision.Obstacle{Rect: geom.Rect{X: 200, Y: 200, W: 20, H: 200}, Wall: true}
	collision.PushOut(a, []collision.Obstacle{wall})
	assert.Equal(t, 190.0, a.Pos.X)
	assert.Equal(t, 0.0, a.Vel.X)
}

// Property: however many projectiles overlap however many targets, each
// projectile resolves at most once, every hit projectile is spent, and no
// target loses more health than the damage of the shots that hit it.
func TestPropertyExactlyOneResolutionPerProjectile(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		nt := rapid.IntRange(1, 8).Draw(rt, "targets")
		ns := rapid.IntRange(1, 12).Draw(rt, "shots")
		var targets []*actor.Actor
		start := map[*actor.Actor]int{}
		for i := 0; i < nt; i++ {
			a := hostile(geom.V(rapid.Float64Range(0, 60).Draw(rt, "tx"), rapid.Float64Range(0, 60).Draw(rt, "ty")),
				rapid.IntRange(1, 60).Draw(rt, "hp"))
			targets = append(targets, a)
			start[a] = a.Health
		}
		var shots []*ballistics.Projectile
		for i := 0; i < ns; i++ {
			shots = append(shots, shot(geom.V(rapid.Float64Range(0, 60).Draw(rt, "sx"), rapid.Float64Range(0, 60).Draw(rt, "sy")),
				rapid.IntRange(1, 30).Draw(rt, "dmg")))
		}
		hits := collision.ResolveProjectiles(shots, targets)
		seen := map[*ballistics.Projectile]bool{}
		dealt := map[*actor.Actor]int{}
		for _, h := range hits {
			if seen[h.Projectile] {
				rt.Fatalf("projectile %p resolved twice", h.Projectile)
			}
			seen[h.Projectile] = true
			if !h.Projectile.Spent() {
				rt.Fatalf("projectile that hit was not spent")
			}
			dealt[h.Target] += h.Projectile.Damage
		}
		for _, p := range shots {
			if p.Spent() && !seen[p] {
				rt.Fatalf("projectile spent without a hit")
			}
		}
		for _, a := range targets {
			lost := start[a] - a.Health
			if lost > dealt[a] || a.Health < 0 {
				rt.Fatalf("target lost %d health but only %d was dealt", lost, dealt[a])
			}
		}
	})
}
