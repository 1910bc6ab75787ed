// Package geom holds the polygon types and planar geometry routines used by
// the terrain: area and centroid computation, triangulation, convex
// decomposition, convex clipping and subtraction, and contact tests.
package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Vec is a point or direction in the plane.
type Vec struct {
	X, Y float64
}

func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

func (v Vec) Add(o Vec) Vec        { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec        { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec) Scale(s float64) Vec  { return Vec{X: v.X * s, Y: v.Y * s} }
func (v Vec) Neg() Vec             { return Vec{X: -v.X, Y: -v.Y} }
func (v Vec) Dot(o Vec) float64    { return v.X*o.X + v.Y*o.Y }
func (v Vec) Cross(o Vec) float64  { return v.X*o.Y - v.Y*o.X }
func (v Vec) LenSq() float64       { return v.X*v.X + v.Y*v.Y }
func (v Vec) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec) Dist(o Vec) float64   { return v.Sub(o).Len() }
func (v Vec) DistSq(o Vec) float64 { return v.Sub(o).LenSq() }

// Perp returns v rotated 90 degrees counter-clockwise.
func (v Vec) Perp() Vec { return Vec{X: -v.Y, Y: v.X} }

func (v Vec) Normalize() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return v.Scale(1 / l)
}

func (v Vec) Rotate(angle float64) Vec {
	s, c := math.Sincos(angle)
	return Vec{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
}

func (v Vec) Lerp(o Vec, t float64) Vec {
	return Vec{X: v.X + (o.X-v.X)*t, Y: v.Y + (o.Y-v.Y)*t}
}

func (v Vec) Equal(o Vec, tol float64) bool {
	return math.Abs(v.X-o.X) <= tol && math.Abs(v.Y-o.Y) <= tol
}

func (v Vec) CP() cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

func FromCP(v cp.Vector) Vec {
	return Vec{X: v.X, Y: v.Y}
}

// BB is an axis aligned bounding box using Chipmunk's L/B/R/T naming.
type BB struct {
	L, B, R, T float64
}

// EmptyBB returns an inverted box that any Extend call will replace.
func EmptyBB() BB {
	return BB{L: math.Inf(1), B: math.Inf(1), R: math.Inf(-1), T: math.Inf(-1)}
}

func BBForPoints(pts []Vec) BB {
	bb := EmptyBB()
	for _, p := range pts {
		bb = bb.Extend(p)
	}
	return bb
}

func (bb BB) Empty() bool {
	return bb.L > bb.R || bb.B > bb.T
}

func (bb BB) Extend(p Vec) BB {
	return BB{
		L: math.Min(bb.L, p.X),
		B: math.Min(bb.B, p.Y),
		R: math.Max(bb.R, p.X),
		T: math.Max(bb.T, p.Y),
	}
}

func (bb BB) Union(o BB) BB {
	if bb.Empty() {
		return o
	}
	if o.Empty() {
		return bb
	}
	return BB{
		L: math.Min(bb.L, o.L),
		B: math.Min(bb.B, o.B),
		R: math.Max(bb.R, o.R),
		T: math.Max(bb.T, o.T),
	}
}

func (bb BB) Grow(r float64) BB {
	return BB{L: bb.L - r, B: bb.B - r, R: bb.R + r, T: bb.T + r}
}

func (bb BB) Intersects(o BB) bool {
	return bb.L <= o.R && o.L <= bb.R && bb.B <= o.T && o.B <= bb.T
}

func (bb BB) Contains(p Vec) bool {
	return p.X >= bb.L && p.X <= bb.R && p.Y >= bb.B && p.Y <= bb.T
}

func (bb BB) Width() float64  { return bb.R - bb.L }
func (bb BB) Height() float64 { return bb.T - bb.B }

func (bb BB) Center() Vec {
	return Vec{X: (bb.L + bb.R) / 2, Y: (bb.B + bb.T) / 2}
}

func (bb BB) CP() cp.BB {
	return cp.BB{L: bb.L, B: bb.B, R: bb.R, T: bb.T}
}
