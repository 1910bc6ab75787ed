package geom

// IsConvex reports whether a CCW ring turns left (or goes straight) at every
// vertex.
func (p Polygon) IsConvex() bool {
	n := len(p)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a := p[i]
		b := p[(i+1)%n]
		c := p[(i+2)%n]
		if b.Sub(a).Cross(c.Sub(b)) < -1e-9 {
			return false
		}
	}
	return true
}

// ConvexDecompose splits a region into convex CCW polygons suitable for
// Chipmunk poly shapes.
func ConvexDecompose(r Region) []Polygon {
	outer := r.Outer.Clean(1e-12)
	if outer == nil {
		return nil
	}
	if len(r.Holes) == 0 {
		if c := outer.CCW(); c.IsConvex() {
			return []Polygon{c}
		}
	}
	return MergeConvex(Triangulate(r))
}

// MergeConvex greedily joins polygons that share an edge whenever the union
// is still convex (Hertel-Mehlhorn). Inputs must be convex and CCW.
func MergeConvex(polys []Polygon) []Polygon {
	out := make([]Polygon, 0, len(polys))
	for _, p := range polys {
		if len(p) >= 3 {
			out = append(out, p)
		}
	}
	bbs := make([]BB, len(out))
	for i, p := range out {
		bbs[i] = p.BB()
	}

	changed := true
	for changed {
		changed = false
		for i := 0; i < len(out); i++ {
			for j := i + 1; j < len(out); j++ {
				if !bbs[i].Grow(1e-9).Intersects(bbs[j]) {
					continue
				}
				merged, ok := mergePair(out[i], out[j])
				if !ok {
					continue
				}
				out[i] = merged
				bbs[i] = merged.BB()
				out = append(out[:j], out[j+1:]...)
				bbs = append(bbs[:j], bbs[j+1:]...)
				changed = true
				j = i
			}
		}
	}
	return out
}

// mergePair joins a and b across a shared edge. The shared edge runs a[i] to
// a[i+1] in a and the opposite way in b.
func mergePair(a, b Polygon) (Polygon, bool) {
	const tol = 1e-9
	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		a0 := a[i]
		a1 := a[(i+1)%na]
		for j := 0; j < nb; j++ {
			if !b[j].Equal(a1, tol) || !b[(j+1)%nb].Equal(a0, tol) {
				continue
			}
			merged := make(Polygon, 0, na+nb-2)
			for k := 1; k <= na; k++ {
				merged = append(merged, a[(i+k)%na])
			}
			for k := 2; k < nb; k++ {
				merged = append(merged, b[(j+k)%nb])
			}
			merged = merged.Clean(1e-9)
			if merged == nil || !merged.IsConvex() {
				return nil, false
			}
			return merged, true
		}
	}
	return nil, false
}
