package geom

import "math"

// ClipHalfPlane keeps the part of a convex polygon where (v-origin)·normal <= 0
// (Sutherland-Hodgman against a single plane). The result is convex and keeps
// the input winding; it is nil when nothing remains.
func ClipHalfPlane(p Polygon, origin, normal Vec) Polygon {
	n := len(p)
	if n < 3 {
		return nil
	}
	out := make(Polygon, 0, n+1)
	for i := 0; i < n; i++ {
		a := p[i]
		b := p[(i+1)%n]
		da := a.Sub(origin).Dot(normal)
		db := b.Sub(origin).Dot(normal)
		if da <= 0 {
			out = append(out, a)
		}
		if (da < 0 && db > 0) || (da > 0 && db < 0) {
			t := da / (da - db)
			out = append(out, a.Lerp(b, t))
		}
	}
	out = out.Clean(1e-12)
	if out == nil || out.Area() <= 1e-12 {
		return nil
	}
	return out
}

// SplitByLine cuts a convex polygon along the infinite line through origin
// with the given direction. left is on the CCW side of dir.
func SplitByLine(p Polygon, origin, dir Vec) (left, right Polygon) {
	normal := Vec{X: dir.Y, Y: -dir.X}
	left = ClipHalfPlane(p, origin, normal)
	right = ClipHalfPlane(p, origin, normal.Neg())
	return left, right
}

// Intersect returns the overlap of two convex CCW polygons.
func Intersect(subject, clip Polygon) Polygon {
	out := subject
	n := len(clip)
	for i := 0; i < n && out != nil; i++ {
		a, b := clip.Edge(i)
		e := b.Sub(a)
		out = ClipHalfPlane(out, a, Vec{X: e.Y, Y: -e.X})
	}
	return out
}

// OverlapsConvex is a separating axis test. Touching polygons do not overlap.
func OverlapsConvex(a, b Polygon) bool {
	if len(a) < 3 || len(b) < 3 {
		return false
	}
	return !hasSeparatingAxis(a, b) && !hasSeparatingAxis(b, a)
}

func hasSeparatingAxis(a, b Polygon) bool {
	for i := range a {
		p, q := a.Edge(i)
		e := q.Sub(p)
		axis := Vec{X: e.Y, Y: -e.X}
		minB := math.Inf(1)
		for _, v := range b {
			if d := v.Sub(p).Dot(axis); d < minB {
				minB = d
			}
		}
		if minB >= -1e-12*axis.Len() {
			return true
		}
	}
	return false
}

// SubtractConvex removes a convex cutter from a convex subject. The part of
// the subject outside the cutter comes back as convex fragments, one per
// cutter edge it lies beyond; removed is the overlap. When the two do not
// overlap, fragments is the untouched subject and removed is nil.
func SubtractConvex(subject, cutter Polygon) (fragments []Polygon, removed Polygon) {
	if !subject.BB().Intersects(cutter.BB()) || !OverlapsConvex(subject, cutter) {
		return []Polygon{subject}, nil
	}
	rest := subject
	n := len(cutter)
	for i := 0; i < n; i++ {
		a, b := cutter.Edge(i)
		e := b.Sub(a)
		outward := Vec{X: e.Y, Y: -e.X}
		if outside := ClipHalfPlane(rest, a, outward.Neg()); outside != nil {
			fragments = append(fragments, outside)
		}
		rest = ClipHalfPlane(rest, a, outward)
		if rest == nil {
			break
		}
	}
	if rest == nil {
		return []Polygon{subject}, nil
	}
	return fragments, rest
}

// Subtract removes a cutter given as convex parts from a convex subject.
// The returned area is the total removed.
func Subtract(subject Polygon, cutterParts []Polygon) (fragments []Polygon, removedArea float64) {
	fragments = []Polygon{subject}
	for _, part := range cutterParts {
		pbb := part.BB()
		next := make([]Polygon, 0, len(fragments)+4)
		for _, f := range fragments {
			if !f.BB().Intersects(pbb) {
				next = append(next, f)
				continue
			}
			out, removed := SubtractConvex(f, part)
			if removed != nil {
				removedArea += removed.Area()
			}
			next = append(next, out...)
		}
		fragments = next
	}
	return fragments, removedArea
}
