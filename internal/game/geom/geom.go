// Package geom provides the planar value types shared by every simulation
// component: vectors, axis-aligned rectangles and the degenerate-safe helpers
// built on them.
package geom

import "math"

// Vec2 is a point or displacement in play-field coordinates.
// The y axis grows downward.
type Vec2 struct {
	X float64 `yaml:"x" msgpack:"x"`
	Y float64 `yaml:"y" msgpack:"y"`
}

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v*k.
func (v Vec2) Scale(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// IsZero reports whether both components are exactly zero.
func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Angle returns atan2(v.Y, v.X) in radians.
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) }

// Normalize returns the unit vector of v.
//
// Postcondition: a zero-length input yields the zero vector, never NaN.
func Normalize(v Vec2) Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Direction returns the unit vector pointing from one point toward another.
//
// Postcondition: coincident points yield the zero vector.
func Direction(from, to Vec2) Vec2 {
	return Normalize(to.Sub(from))
}

// Distance returns the straight-line distance between a and b.
func Distance(a, b Vec2) float64 {
	return b.Sub(a).Len()
}

// FromAngle returns the unit vector at angle rad (standard orientation).
func FromAngle(rad float64) Vec2 {
	return Vec2{math.Cos(rad), math.Sin(rad)}
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X float64 `yaml:"x" msgpack:"x"`
	Y float64 `yaml:"y" msgpack:"y"`
	W float64 `yaml:"w" msgpack:"w"`
	H float64 `yaml:"h" msgpack:"h"`
}

// CenteredRect returns the rectangle of size (w, h) centered on c.
func CenteredRect(c Vec2, w, h float64) Rect {
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// Span returns the bounding box of the segment between a and b.
// The result may have zero width or height.
func Span(a, b Vec2) Rect {
	minX, maxX := math.Min(a.X, b.X), math.Max(a.X, b.X)
	minY, maxY := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the center point of r.
func (r Rect) Center() Vec2 { return Vec2{r.X + r.W/2, r.Y + r.H/2} }

// Intersects reports whether r and o overlap with positive area on both
// axes. Touching edges do not intersect. A degenerate r (zero width or
// height) still intersects o when it passes strictly through o's interior.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && r.Right() > o.X && r.Y < o.Bottom() && r.Bottom() > o.Y
}

// Contains reports whether p lies inside r, edges inclusive.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Expand returns r grown by m on every side.
func (r Rect) Expand(m float64) Rect {
	return Rect{X: r.X - m, Y: r.Y - m, W: r.W + 2*m, H: r.H + 2*m}
}

// Clamp returns p moved to the nearest point inside r.
func (r Rect) Clamp(p Vec2) Vec2 {
	return Vec2{
		X: math.Max(r.X, math.Min(p.X, r.Right())),
		Y: math.Max(r.Y, math.Min(p.Y, r.Bottom())),
	}
}
