package geom

import (
	"math"
	"testing"
)

func rect(x0, y0, x1, y1 float64) Polygon {
	return Polygon{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

func sumArea(polys []Polygon) float64 {
	var a float64
	for _, p := range polys {
		a += p.Area()
	}
	return a
}

func TestPolygonAreaAndCentroid(t *testing.T) {
	cases := []struct {
		name     string
		poly     Polygon
		area     float64
		centroid Vec
		ccw      bool
	}{
		{"unit_square", rect(0, 0, 1, 1), 1, Vec{0.5, 0.5}, true},
		{"cw_rect", rect(0, 0, 4, 2).Reversed(), 8, Vec{2, 1}, false},
		{"triangle", Polygon{{0, 0}, {3, 0}, {0, 3}}, 4.5, Vec{1, 1}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.poly.Area(); math.Abs(got-c.area) > 1e-9 {
				t.Fatalf("area: expected %v, got %v", c.area, got)
			}
			if got := c.poly.Centroid(); !got.Equal(c.centroid, 1e-9) {
				t.Fatalf("centroid: expected %v, got %v", c.centroid, got)
			}
			if c.poly.IsCCW() != c.ccw {
				t.Fatalf("winding: expected ccw=%v", c.ccw)
			}
		})
	}
}

func TestContains(t *testing.T) {
	sq := rect(0, 0, 10, 10)
	if !sq.Contains(Vec{5, 5}, 0) {
		t.Fatalf("centre should be inside")
	}
	if sq.Contains(Vec{11, 5}, 0) {
		t.Fatalf("outside point reported inside")
	}
	if !sq.Contains(Vec{10.01, 5}, 0.05) {
		t.Fatalf("point within tolerance of the boundary should count")
	}
}

func TestRegionsAssignsHoles(t *testing.T) {
	t.Run("by_nesting", func(t *testing.T) {
		regions := Regions([]Contour{
			{Points: rect(4, 4, 6, 6)},
			{Points: rect(0, 0, 10, 10)},
			{Points: rect(20, 0, 30, 10)},
		})
		if len(regions) != 2 {
			t.Fatalf("expected 2 regions, got %d", len(regions))
		}
		holes := 0
		for _, r := range regions {
			holes += len(r.Holes)
			if !r.Outer.IsCCW() {
				t.Fatalf("outer ring should be ccw")
			}
		}
		if holes != 1 {
			t.Fatalf("expected 1 hole, got %d", holes)
		}
	})
	t.Run("explicit_flag", func(t *testing.T) {
		regions := Regions([]Contour{
			{Points: rect(0, 0, 10, 10)},
			{Points: rect(1, 1, 2, 2), Hole: true},
		})
		if len(regions) != 1 || len(regions[0].Holes) != 1 {
			t.Fatalf("expected one region with one hole, got %+v", regions)
		}
		if math.Abs(regions[0].Area()-99) > 1e-9 {
			t.Fatalf("expected area 99, got %v", regions[0].Area())
		}
	})
	t.Run("degenerate_dropped", func(t *testing.T) {
		regions := Regions([]Contour{{Points: Polygon{{0, 0}, {1, 1}, {2, 2}}}})
		if len(regions) != 0 {
			t.Fatalf("expected degenerate contour to be dropped")
		}
	})
}

func TestTriangulateAndDecompose(t *testing.T) {
	cases := []struct {
		name   string
		region Region
	}{
		{"l_shape", Region{Outer: Polygon{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}}}},
		{"square_with_hole", Region{Outer: rect(0, 0, 10, 10), Holes: []Polygon{rect(4, 4, 6, 6)}}},
		{"two_holes", Region{Outer: rect(0, 0, 20, 10), Holes: []Polygon{rect(2, 2, 5, 5), rect(12, 4, 16, 8)}}},
		{"comb", Region{Outer: Polygon{{0, 0}, {9, 0}, {9, 3}, {8, 3}, {8, 1}, {6, 1}, {6, 3}, {5, 3}, {5, 1}, {3, 1}, {3, 3}, {0, 3}}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			want := c.region.Area()
			tris := Triangulate(c.region)
			if got := sumArea(tris); math.Abs(got-want) > 1e-6 {
				t.Fatalf("triangulation area: expected %v, got %v", want, got)
			}
			parts := ConvexDecompose(c.region)
			if got := sumArea(parts); math.Abs(got-want) > 1e-6 {
				t.Fatalf("decomposition area: expected %v, got %v", want, got)
			}
			for i, p := range parts {
				if !p.IsConvex() || !p.IsCCW() {
					t.Fatalf("part %d is not a convex ccw polygon: %v", i, p)
				}
			}
			if len(parts) > len(tris) {
				t.Fatalf("merge should never add pieces: %d > %d", len(parts), len(tris))
			}
		})
	}
}

func TestSubtractConvexConservesArea(t *testing.T) {
	square := rect(0, 0, 10, 10)
	cases := []struct {
		name    string
		cutter  Polygon
		removed float64
	}{
		{"inner_square", rect(4, 4, 6, 6), 4},
		{"edge_disk", Disk(Vec{10, 5}, 2, 32), -1},
		{"through_capsule", Capsule(Vec{5, -5}, Vec{5, 15}, 1, 16), -1},
		{"miss", rect(20, 20, 30, 30), 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			frags, removed := SubtractConvex(square, c.cutter)
			removedArea := 0.0
			if removed != nil {
				removedArea = removed.Area()
			}
			if c.removed >= 0 && math.Abs(removedArea-c.removed) > 1e-9 {
				t.Fatalf("removed: expected %v, got %v", c.removed, removedArea)
			}
			if got := sumArea(frags) + removedArea; math.Abs(got-100) > 1e-6 {
				t.Fatalf("area not conserved: %v", got)
			}
			for _, f := range frags {
				if !f.IsConvex() {
					t.Fatalf("fragment not convex: %v", f)
				}
			}
		})
	}
}

func TestSubtractNonConvexCutter(t *testing.T) {
	center := Vec{5, 5}
	star := RadialCrack(center, 3, CrackParams{Spokes: 7, Rings: 2, Variance: 0.4, Seed: 11})
	if len(star) < 7 {
		t.Fatalf("expected a jagged polygon, got %d vertices", len(star))
	}
	parts := RadialCrackParts(center, star)
	if got := sumArea(parts); math.Abs(got-star.Area()) > 1e-6 {
		t.Fatalf("fan decomposition lost area: %v vs %v", got, star.Area())
	}
	frags, removed := Subtract(rect(0, 0, 10, 10), parts)
	if got := sumArea(frags) + removed; math.Abs(got-100) > 1e-6 {
		t.Fatalf("area not conserved: %v", got)
	}
	if removed <= 0 || removed > star.Area()+1e-6 {
		t.Fatalf("removed area %v outside (0, %v]", removed, star.Area())
	}
}

func TestSplitByLine(t *testing.T) {
	left, right := SplitByLine(rect(0, 0, 10, 4), Vec{3, 0}, Vec{0, 1})
	if math.Abs(left.Area()-12) > 1e-9 || math.Abs(right.Area()-28) > 1e-9 {
		t.Fatalf("unexpected split areas %v / %v", left.Area(), right.Area())
	}
	if l, r := SplitByLine(rect(0, 0, 10, 4), Vec{20, 0}, Vec{0, 1}); l == nil || r != nil {
		t.Fatalf("line outside the polygon should leave it whole on one side")
	}
}

func TestTouching(t *testing.T) {
	cases := []struct {
		name string
		a, b Polygon
		want bool
	}{
		{"shared_edge", rect(0, 0, 1, 1), rect(1, 0, 2, 1), true},
		{"corner", rect(0, 0, 1, 1), rect(1, 1, 2, 2), true},
		{"overlap", rect(0, 0, 2, 2), rect(1, 1, 3, 3), true},
		{"contained", rect(0, 0, 10, 10), rect(4, 4, 5, 5), true},
		{"near_within_tol", rect(0, 0, 1, 1), rect(1.01, 0, 2, 1), true},
		{"gap", rect(0, 0, 1, 1), rect(2, 0, 3, 1), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Touching(c.a, c.b, 0.05); got != c.want {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
		})
	}
}

func TestCuttersAreCCW(t *testing.T) {
	polys := map[string]Polygon{
		"disk":    Disk(Vec{1, 2}, 3, 24),
		"capsule": Capsule(Vec{0, 0}, Vec{10, 3}, 2, 16),
		"crack":   RadialCrack(Vec{0, 0}, 5, CrackParams{Spokes: 5, Rings: 1, Variance: 0.3, Seed: 3}),
	}
	for name, p := range polys {
		if !p.IsCCW() {
			t.Fatalf("%s should be ccw", name)
		}
	}
	if !polys["capsule"].IsConvex() || !polys["disk"].IsConvex() {
		t.Fatalf("capsule and disk must be convex")
	}
	if Disk(Vec{}, 0, 8) != nil || Capsule(Vec{}, Vec{1, 0}, -1, 8) != nil {
		t.Fatalf("non-positive radius must produce no cutter")
	}
}

func TestTransformRoundTrip(t *testing.T) {
	xf := Transform{Pos: Vec{3, -2}, Angle: 0.7}
	p := Vec{5, 1}
	if got := xf.ApplyInverse(xf.Apply(p)); !got.Equal(p, 1e-9) {
		t.Fatalf("round trip: expected %v, got %v", p, got)
	}
	if got := ApplyMat3(xf.Mat3(), p); !got.Equal(xf.Apply(p), 1e-9) {
		t.Fatalf("matrix form disagrees: %v vs %v", got, xf.Apply(p))
	}
	back := TransformFromMat3(xf.Mat3())
	if !back.Pos.Equal(xf.Pos, 1e-9) || math.Abs(back.Angle-xf.Angle) > 1e-9 {
		t.Fatalf("unexpected transform from matrix: %+v", back)
	}
	if got := xf.Inverse().Apply(xf.Apply(p)); !got.Equal(p, 1e-9) {
		t.Fatalf("inverse: expected %v, got %v", p, got)
	}
}
