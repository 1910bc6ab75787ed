package geom

import "math"

// Triangulate splits a region into CCW triangles by ear clipping. Holes are
// first spliced into the outer ring through bridge edges.
func Triangulate(r Region) []Polygon {
	r = r.Normalized()
	ring := r.Outer.Clean(1e-12)
	if ring == nil {
		return nil
	}
	holes := make([]Polygon, 0, len(r.Holes))
	for _, h := range r.Holes {
		if c := h.Clean(1e-12); c != nil {
			holes = append(holes, c.CW())
		}
	}
	// rightmost holes first so later bridges never cross earlier ones
	for len(holes) > 0 {
		best := 0
		bestX := math.Inf(-1)
		for i, h := range holes {
			for _, v := range h {
				if v.X > bestX {
					bestX = v.X
					best = i
				}
			}
		}
		ring = bridgeHole(ring, holes[best])
		holes = append(holes[:best], holes[best+1:]...)
	}
	return earClip(ring)
}

// bridgeHole splices hole into ring with a zero-width channel from the
// hole's rightmost vertex to a visible ring vertex.
func bridgeHole(ring, hole Polygon) Polygon {
	mi := 0
	for i, v := range hole {
		if v.X > hole[mi].X || (v.X == hole[mi].X && v.Y < hole[mi].Y) {
			mi = i
		}
	}
	m := hole[mi]

	n := len(ring)
	bestX := math.Inf(1)
	edge := -1
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		if (a.Y-m.Y)*(b.Y-m.Y) > 0 {
			continue
		}
		var x float64
		if a.Y == b.Y {
			if a.Y != m.Y {
				continue
			}
			x = math.Min(a.X, b.X)
		} else {
			x = a.X + (m.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
		}
		if x < m.X {
			continue
		}
		if x < bestX {
			bestX = x
			edge = i
		}
	}
	if edge < 0 {
		// hole is not inside the ring; ignore it
		return ring
	}

	a := ring[edge]
	b := ring[(edge+1)%n]
	p := edge
	if b.X > a.X {
		p = (edge + 1) % n
	}
	hit := Vec{X: bestX, Y: m.Y}
	if a.Equal(hit, 1e-12) {
		p = edge
	} else if b.Equal(hit, 1e-12) {
		p = (edge + 1) % n
	} else {
		// a reflex vertex inside triangle (m, hit, ring[p]) would block the
		// bridge; pick the one closest in angle to the ray
		tri := Polygon{m, hit, ring[p]}.CCW()
		bestAngle := math.Inf(1)
		bestDist := math.Inf(1)
		for i := 0; i < n; i++ {
			if i == p {
				continue
			}
			v := ring[i]
			if !isReflex(ring[(i+n-1)%n], v, ring[(i+1)%n]) {
				continue
			}
			if !pointInTriangle(v, tri[0], tri[1], tri[2]) {
				continue
			}
			d := v.Sub(m)
			angle := math.Abs(math.Atan2(d.Y, d.X))
			dist := d.LenSq()
			if angle < bestAngle || (angle == bestAngle && dist < bestDist) {
				bestAngle = angle
				bestDist = dist
				p = i
			}
		}
	}

	out := make(Polygon, 0, n+len(hole)+2)
	out = append(out, ring[:p+1]...)
	for k := 0; k <= len(hole); k++ {
		out = append(out, hole[(mi+k)%len(hole)])
	}
	out = append(out, ring[p])
	out = append(out, ring[p+1:]...)
	return out
}

func isReflex(prev, cur, next Vec) bool {
	return cur.Sub(prev).Cross(next.Sub(cur)) < 0
}

func pointInTriangle(p, a, b, c Vec) bool {
	d1 := b.Sub(a).Cross(p.Sub(a))
	d2 := c.Sub(b).Cross(p.Sub(b))
	d3 := a.Sub(c).Cross(p.Sub(c))
	return d1 >= 0 && d2 >= 0 && d3 >= 0
}

func earClip(ring Polygon) []Polygon {
	if len(ring) < 3 {
		return nil
	}
	idx := make([]int, len(ring))
	for i := range idx {
		idx[i] = i
	}
	var tris []Polygon
	emit := func(a, b, c Vec) {
		t := Polygon{a, b, c}
		if t.SignedArea() > 1e-12 {
			tris = append(tris, t)
		}
	}

	guard := 0
	for len(idx) > 3 && guard < 4*len(ring)*len(ring) {
		guard++
		n := len(idx)
		clipped := false
		for i := 0; i < n; i++ {
			pi, ci, ni := idx[(i+n-1)%n], idx[i], idx[(i+1)%n]
			a, b, c := ring[pi], ring[ci], ring[ni]
			if b.Sub(a).Cross(c.Sub(b)) <= 1e-12 {
				continue
			}
			if earBlocked(ring, idx, a, b, c, pi, ci, ni) {
				continue
			}
			emit(a, b, c)
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if clipped {
			continue
		}
		// no clean ear: drop a degenerate vertex if there is one, otherwise
		// force the most convex vertex so the loop always terminates
		removed := false
		for i := 0; i < n; i++ {
			a, b, c := ring[idx[(i+n-1)%n]], ring[idx[i]], ring[idx[(i+1)%n]]
			if math.Abs(b.Sub(a).Cross(c.Sub(b))) <= 1e-12 {
				idx = append(idx[:i], idx[i+1:]...)
				removed = true
				break
			}
		}
		if removed {
			continue
		}
		best := -1
		bestCross := 0.0
		for i := 0; i < n; i++ {
			a, b, c := ring[idx[(i+n-1)%n]], ring[idx[i]], ring[idx[(i+1)%n]]
			if cr := b.Sub(a).Cross(c.Sub(b)); cr > bestCross {
				bestCross = cr
				best = i
			}
		}
		if best < 0 {
			return tris
		}
		emit(ring[idx[(best+n-1)%n]], ring[idx[best]], ring[idx[(best+1)%n]])
		idx = append(idx[:best], idx[best+1:]...)
	}
	if len(idx) == 3 {
		emit(ring[idx[0]], ring[idx[1]], ring[idx[2]])
	}
	return tris
}

func earBlocked(ring Polygon, idx []int, a, b, c Vec, pi, ci, ni int) bool {
	for _, j := range idx {
		if j == pi || j == ci || j == ni {
			continue
		}
		v := ring[j]
		if v.Equal(a, 1e-12) || v.Equal(b, 1e-12) || v.Equal(c, 1e-12) {
			continue
		}
		if pointInTriangle(v, a, b, c) {
			return true
		}
	}
	return false
}
