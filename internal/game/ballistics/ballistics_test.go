package ballistics_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/ballistics"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

func TestFan_SpreadCountAndSymmetry(t *testing.T) {
	v := ballistics.Fan(-45, 45, 15, 4)
	require.Len(t, v, 7)
	// Center shot points straight down.
	assert.InDelta(t, 0, v[3].X, 1e-9)
	assert.InDelta(t, 4, v[3].Y, 1e-9)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, -v[6-i].X, v[i].X, 1e-9)
		assert.InDelta(t, v[6-i].Y, v[i].Y, 1e-9)
	}
	for _, s := range v {
		assert.InDelta(t, 4, s.Len(), 1e-9)
	}
}

func TestRing_FullCircle(t *testing.T) {
	v := ballistics.Ring(30, 3)
	require.Len(t, v, 12)
	assert.InDelta(t, 3, v[0].X, 1e-9)
	assert.InDelta(t, 0, v[0].Y, 1e-9)
	var sum geom.Vec2
	for _, s := range v {
		sum = sum.Add(s)
	}
	assert.InDelta(t, 0, sum.Len(), 1e-9, "a closed ring sums to zero")
}

func TestArc_HalfRingInclusive(t *testing.T) {
	v := ballistics.Arc(0, 150, 30, 3)
	assert.Len(t, v, 6)
}

func TestAimed_CoincidentIsZero(t *testing.T) {
	assert.Equal(t, geom.Vec2{}, ballistics.Aimed(geom.V(1, 1), geom.V(1, 1), 5))
	v := ballistics.Aimed(geom.V(0, 0), geom.V(0, 10), 5)
	assert.InDelta(t, 5, v.Y, 1e-9)
}

func TestFan_InvalidStepPanics(t *testing.T) {
	assert.Panics(t, func() { ballistics.Fan(-10, 10, 0, 1) })
	assert.Panics(t, func() { ballistics.Fan(10, -10, 5, 1) })
	assert.Panics(t, func() { ballistics.Ring(0, 1) })
}

func TestScatter_DeterministicForSameSeed(t *testing.T) {
	a := ballistics.Scatter(dice.NewSeededSource(9), 5, 2, 5)
	b := ballistics.Scatter(dice.NewSeededSource(9), 5, 2, 5)
	assert.Equal(t, a, b)
	for _, v := range a {
		assert.GreaterOrEqual(t, v.Len(), 2-1e-9)
		assert.LessOrEqual(t, v.Len(), 5+1e-9)
	}
}

func TestLob_ArrivesInFlightTicks(t *testing.T) {
	origin := geom.V(400, 50)
	area := geom.Rect{X: 100, Y: 100, W: 0, H: 0}
	v := ballistics.Lob(dice.NewSequence(0), origin, area, 1, 30)
	require.Len(t, v, 1)
	end := origin.Add(v[0].Scale(30))
	assert.InDelta(t, 100, end.X, 1e-9)
	assert.InDelta(t, 100, end.Y, 1e-9)
}

func TestPatternValidate(t *testing.T) {
	ok := ballistics.Pattern{Kind: ballistics.KindFan, From: -45, To: 45, Step: 15, Speed: 4, Damage: 15, Tag: "spread"}
	assert.NoError(t, ok.Validate())

	bad := ballistics.Pattern{Kind: "spiral", Speed: 0, Tag: "plasma", Damage: -1}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown pattern kind")
	assert.Contains(t, err.Error(), "unknown projectile tag")
	assert.Contains(t, err.Error(), "damage")
}

func TestPatternFire_BuildsTaggedProjectiles(t *testing.T) {
	p := ballistics.Pattern{Kind: ballistics.KindRing, Step: 30, Speed: 3, Damage: 20, Tag: "circle", Size: 12}
	shots := p.Fire(7, actor.FactionHostile, geom.V(100, 100), geom.Vec2{}, geom.Rect{}, dice.NewSequence(0))
	require.Len(t, shots, 12)
	for _, s := range shots {
		assert.Equal(t, actor.ID(7), s.Owner)
		assert.Equal(t, ballistics.TagCircle, s.Tag)
		assert.Equal(t, 20, s.Damage)
		assert.Equal(t, geom.V(12, 12), s.Size)
	}
}

func TestVolley_DropsZeroVelocity(t *testing.T) {
	shots := ballistics.Volley(ballistics.Shot{Damage: 1}, geom.V(0, 0), []geom.Vec2{{}, geom.V(1, 0)})
	assert.Len(t, shots, 1)
}

func TestField_AdvanceDespawnsOutsideMargin(t *testing.T) {
	f := ballistics.NewField(10)
	bounds := geom.Rect{W: 800, H: 600}
	inside := &ballistics.Projectile{Pos: geom.V(400, 300), Vel: geom.V(0, -1)}
	leaving := &ballistics.Projectile{Pos: geom.V(400, 5), Vel: geom.V(0, -8)}
	f.Add(inside, leaving)

	assert.Equal(t, 0, f.Advance(bounds), "y=-3 is within the margin")
	assert.Equal(t, 1, f.Advance(bounds), "y=-11 is past the margin")
	assert.True(t, leaving.Spent())
	assert.Equal(t, 1, f.Len())
	assert.Equal(t, 1, f.Compact())
	assert.Equal(t, []*ballistics.Projectile{inside}, f.Live())
}

func TestParseTag(t *testing.T) {
	tag, err := ballistics.ParseTag("acid")
	require.NoError(t, err)
	assert.Equal(t, ballistics.TagAcid, tag)
	assert.Equal(t, "acid", tag.String())
	tag, err = ballistics.ParseTag("")
	require.NoError(t, err)
	assert.Equal(t, ballistics.TagNormal, tag)
}

// Property: fan and ring generators are deterministic and every velocity has
// exactly the requested speed.
func TestPropertyPatternsDeterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		from := rapid.IntRange(-180, 180).Draw(rt, "from")
		to := from + rapid.IntRange(0, 180).Draw(rt, "width")
		step := rapid.IntRange(1, 90).Draw(rt, "step")
		speed := rapid.Float64Range(0.1, 10).Draw(rt, "speed")

		a := ballistics.Fan(from, to, step, speed)
		b := ballistics.Fan(from, to, step, speed)
		if len(a) != (to-from)/step+1 {
			rt.Fatalf("fan produced %d shots, want %d", len(a), (to-from)/step+1)
		}
		for i := range a {
			if a[i] != b[i] {
				rt.Fatalf("fan shot %d differs across runs: %v vs %v", i, a[i], b[i])
			}
			if math.Abs(a[i].Len()-speed) > 1e-9 {
				rt.Fatalf("fan shot %d has speed %f, want %f", i, a[i].Len(), speed)
			}
		}

		ringStep := rapid.IntRange(1, 360).Draw(rt, "ring_step")
		r1 := ballistics.Ring(ringStep, speed)
		r2 := ballistics.Ring(ringStep, speed)
		if len(r1) != (359)/ringStep+1 {
			rt.Fatalf("ring produced %d shots for step %d", len(r1), ringStep)
		}
		for i := range r1 {
			if r1[i] != r2[i] {
				rt.Fatalf("ring shot %d differs across runs", i)
			}
		}
	})
}
