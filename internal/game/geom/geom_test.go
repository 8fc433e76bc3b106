package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNormalize_ZeroVector(t *testing.T) {
	assert.Equal(t, Vec2{}, Normalize(Vec2{}))
}

func TestDirection_Coincident(t *testing.T) {
	p := V(12, 34)
	assert.Equal(t, Vec2{}, Direction(p, p))
}

func TestDirection_Downward(t *testing.T) {
	d := Direction(V(400, 100), V(400, 400))
	assert.InDelta(t, 0, d.X, 1e-12)
	assert.InDelta(t, 1, d.Y, 1e-12)
}

func TestRectIntersects_TouchingEdgesDoNotOverlap(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: 10, Y: 0, W: 10, H: 10}
	assert.False(t, a.Intersects(b))
	assert.False(t, b.Intersects(a))
}

func TestRectIntersects_Overlap(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: 5, Y: 5, W: 10, H: 10}
	assert.True(t, a.Intersects(b))
}

func TestSpan_VerticalSegmentThroughObstacle(t *testing.T) {
	s := Span(V(50, 0), V(50, 100))
	assert.Equal(t, 0.0, s.W)
	assert.True(t, s.Intersects(Rect{X: 40, Y: 40, W: 20, H: 20}))
	assert.False(t, s.Intersects(Rect{X: 60, Y: 40, W: 20, H: 20}))
}

func TestCenteredRect(t *testing.T) {
	r := CenteredRect(V(100, 50), 30, 20)
	assert.Equal(t, Rect{X: 85, Y: 40, W: 30, H: 20}, r)
	assert.Equal(t, V(100, 50), r.Center())
}

func TestExpandContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 10, H: 10}
	assert.False(t, r.Contains(V(7, 15)))
	assert.True(t, r.Expand(5).Contains(V(7, 15)))
}

func TestPropertyNormalizeIsUnitOrZero(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := V(
			rapid.Float64Range(-1e6, 1e6).Draw(rt, "x"),
			rapid.Float64Range(-1e6, 1e6).Draw(rt, "y"),
		)
		n := Normalize(v)
		if v.IsZero() {
			if !n.IsZero() {
				rt.Fatalf("zero input produced %v", n)
			}
			return
		}
		if math.Abs(n.Len()-1) > 1e-9 {
			rt.Fatalf("Normalize(%v) has length %f", v, n.Len())
		}
	})
}

func TestPropertyIntersectsIsSymmetric(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		gen := func(label string) Rect {
			return Rect{
				X: rapid.Float64Range(-100, 100).Draw(rt, label+"_x"),
				Y: rapid.Float64Range(-100, 100).Draw(rt, label+"_y"),
				W: rapid.Float64Range(0, 50).Draw(rt, label+"_w"),
				H: rapid.Float64Range(0, 50).Draw(rt, label+"_h"),
			}
		}
		a, b := gen("a"), gen("b")
		if a.Intersects(b) != b.Intersects(a) {
			rt.Fatalf("asymmetric intersection for %v and %v", a, b)
		}
	})
}
