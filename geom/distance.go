package geom

import "math"

// PointSegmentDistance is the distance from p to the segment a-b.
func PointSegmentDistance(p, a, b Vec) float64 {
	ab := b.Sub(a)
	l := ab.LenSq()
	if l == 0 {
		return p.Dist(a)
	}
	t := p.Sub(a).Dot(ab) / l
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Dist(a.Add(ab.Scale(t)))
}

// SegmentsIntersect reports whether a-b and c-d share at least one point.
func SegmentsIntersect(a, b, c, d Vec) bool {
	d1 := orient(c, d, a)
	d2 := orient(c, d, b)
	d3 := orient(a, b, c)
	d4 := orient(a, b, d)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(c, d, a)) ||
		(d2 == 0 && onSegment(c, d, b)) ||
		(d3 == 0 && onSegment(a, b, c)) ||
		(d4 == 0 && onSegment(a, b, d))
}

func orient(a, b, c Vec) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

func onSegment(a, b, p Vec) bool {
	return p.X >= math.Min(a.X, b.X) && p.X <= math.Max(a.X, b.X) &&
		p.Y >= math.Min(a.Y, b.Y) && p.Y <= math.Max(a.Y, b.Y)
}

// SegmentDistance is the closest distance between two segments.
func SegmentDistance(a, b, c, d Vec) float64 {
	if SegmentsIntersect(a, b, c, d) {
		return 0
	}
	return math.Min(
		math.Min(PointSegmentDistance(a, c, d), PointSegmentDistance(b, c, d)),
		math.Min(PointSegmentDistance(c, a, b), PointSegmentDistance(d, a, b)),
	)
}

// Distance is the gap between two polygons; zero when they touch or
// overlap.
func Distance(a, b Polygon) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}
	if a.ContainsStrict(b[0]) || b.ContainsStrict(a[0]) {
		return 0
	}
	best := math.Inf(1)
	for i := range a {
		p, q := a.Edge(i)
		for j := range b {
			r, s := b.Edge(j)
			if d := SegmentDistance(p, q, r, s); d < best {
				best = d
				if best == 0 {
					return 0
				}
			}
		}
	}
	return best
}

// Touching reports whether the boundaries of a and b touch or overlap within
// tol. This is the adjacency rule of the connectivity graph.
func Touching(a, b Polygon, tol float64) bool {
	if !a.BB().Grow(tol).Intersects(b.BB()) {
		return false
	}
	return Distance(a, b) <= tol
}
