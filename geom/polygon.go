package geom

import (
	"math"
	"sort"
)

// Polygon is a closed ring of vertices. The closing edge from the last vertex
// back to the first is implicit.
type Polygon []Vec

// Contour is one loop of authored geometry, either an outer boundary or a
// hole.
type Contour struct {
	Points Polygon
	Hole   bool
}

// Region is an outer boundary with the holes it encloses. Outer is CCW and
// every hole is CW once normalised.
type Region struct {
	Outer Polygon
	Holes []Polygon
}

func (p Polygon) Clone() Polygon {
	if p == nil {
		return nil
	}
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// SignedArea is positive for counter-clockwise rings.
func (p Polygon) SignedArea() float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a := p[i]
		b := p[(i+1)%n]
		sum += a.Cross(b)
	}
	return sum / 2
}

func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

func (p Polygon) IsCCW() bool {
	return p.SignedArea() > 0
}

// Reversed returns a copy with the winding flipped.
func (p Polygon) Reversed() Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

// CCW returns p with counter-clockwise winding, copying only when needed.
func (p Polygon) CCW() Polygon {
	if p.SignedArea() < 0 {
		return p.Reversed()
	}
	return p
}

// CW returns p with clockwise winding, copying only when needed.
func (p Polygon) CW() Polygon {
	if p.SignedArea() > 0 {
		return p.Reversed()
	}
	return p
}

// Centroid is the area-weighted centre. Degenerate rings fall back to the
// vertex average.
func (p Polygon) Centroid() Vec {
	n := len(p)
	if n == 0 {
		return Vec{}
	}
	var cx, cy, a2 float64
	for i := 0; i < n; i++ {
		a := p[i]
		b := p[(i+1)%n]
		cross := a.Cross(b)
		a2 += cross
		cx += (a.X + b.X) * cross
		cy += (a.Y + b.Y) * cross
	}
	if math.Abs(a2) < 1e-12 {
		var sum Vec
		for _, v := range p {
			sum = sum.Add(v)
		}
		return sum.Scale(1 / float64(n))
	}
	return Vec{X: cx / (3 * a2), Y: cy / (3 * a2)}
}

func (p Polygon) BB() BB {
	return BBForPoints(p)
}

func (p Polygon) Translate(d Vec) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = v.Add(d)
	}
	return out
}

// Map returns a copy with f applied to every vertex. Winding is restored to
// the original orientation if f mirrors the ring.
func (p Polygon) Map(f func(Vec) Vec) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = f(v)
	}
	if (p.SignedArea() > 0) != (out.SignedArea() > 0) {
		return out.Reversed()
	}
	return out
}

// Edge returns the i-th edge endpoints.
func (p Polygon) Edge(i int) (Vec, Vec) {
	return p[i], p[(i+1)%len(p)]
}

// ContainsStrict reports whether pt lies inside the ring using the even-odd
// crossing rule. Points exactly on the boundary may go either way.
func (p Polygon) ContainsStrict(pt Vec) bool {
	n := len(p)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		a := p[i]
		b := p[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y) + a.X
			if pt.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Contains reports whether pt lies inside the ring or within tol of its
// boundary.
func (p Polygon) Contains(pt Vec, tol float64) bool {
	if p.ContainsStrict(pt) {
		return true
	}
	if tol <= 0 {
		return false
	}
	return p.BoundaryDistance(pt) <= tol
}

// BoundaryDistance is the distance from pt to the closest edge.
func (p Polygon) BoundaryDistance(pt Vec) float64 {
	best := math.Inf(1)
	for i := range p {
		a, b := p.Edge(i)
		if d := PointSegmentDistance(pt, a, b); d < best {
			best = d
		}
	}
	return best
}

// Clean drops repeated vertices and vertices collinear with their neighbours.
func (p Polygon) Clean(tol float64) Polygon {
	if len(p) < 3 {
		return p.Clone()
	}
	out := make(Polygon, 0, len(p))
	for _, v := range p {
		if len(out) > 0 && out[len(out)-1].Equal(v, tol) {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && out[0].Equal(out[len(out)-1], tol) {
		out = out[:len(out)-1]
	}

	changed := true
	for changed && len(out) >= 3 {
		changed = false
		for i := 0; i < len(out) && len(out) >= 3; i++ {
			prev := out[(i+len(out)-1)%len(out)]
			cur := out[i]
			next := out[(i+1)%len(out)]
			e := next.Sub(prev)
			l := e.Len()
			if l == 0 || math.Abs(cur.Sub(prev).Cross(e))/l <= tol {
				out = append(out[:i], out[i+1:]...)
				changed = true
				i--
			}
		}
	}
	if len(out) < 3 {
		return nil
	}
	return out
}

// Degenerate reports whether the ring encloses no area.
func (p Polygon) Degenerate() bool {
	return len(p) < 3 || p.Area() <= 1e-12
}

func (r Region) Area() float64 {
	a := r.Outer.Area()
	for _, h := range r.Holes {
		a -= h.Area()
	}
	return a
}

func (r Region) BB() BB {
	return r.Outer.BB()
}

// Normalized returns the region with a CCW outer ring and CW holes.
func (r Region) Normalized() Region {
	out := Region{Outer: r.Outer.CCW()}
	for _, h := range r.Holes {
		out.Holes = append(out.Holes, h.CW())
	}
	return out
}

func (r Region) Contains(pt Vec, tol float64) bool {
	if !r.Outer.Contains(pt, tol) {
		return false
	}
	for _, h := range r.Holes {
		if h.ContainsStrict(pt) && h.BoundaryDistance(pt) > tol {
			return false
		}
	}
	return true
}

func (r Region) Map(f func(Vec) Vec) Region {
	out := Region{Outer: r.Outer.Map(f)}
	for _, h := range r.Holes {
		out.Holes = append(out.Holes, h.Map(f))
	}
	return out
}

// Regions pairs hole contours with the smallest outer contour that contains
// them. Contours with no explicit Hole flag are classified by nesting depth:
// odd depth means hole. Degenerate loops are dropped.
func Regions(contours []Contour) []Region {
	type loop struct {
		poly  Polygon
		area  float64
		hole  bool
		depth int
	}
	loops := make([]loop, 0, len(contours))
	explicit := false
	for _, c := range contours {
		pts := c.Points.Clean(1e-12)
		if pts.Degenerate() {
			continue
		}
		if c.Hole {
			explicit = true
		}
		loops = append(loops, loop{poly: pts, area: pts.Area(), hole: c.Hole})
	}
	sort.SliceStable(loops, func(i, j int) bool { return loops[i].area > loops[j].area })

	containsLoop := func(outer, inner Polygon) bool {
		return outer.ContainsStrict(inner.Centroid()) || outer.ContainsStrict(inner[0])
	}

	if !explicit {
		for i := range loops {
			for j := 0; j < i; j++ {
				if containsLoop(loops[j].poly, loops[i].poly) {
					loops[i].depth++
				}
			}
			loops[i].hole = loops[i].depth%2 == 1
		}
	}

	var regions []Region
	outerIdx := make([]int, len(loops))
	for i := range loops {
		outerIdx[i] = -1
		if loops[i].hole {
			continue
		}
		outerIdx[i] = len(regions)
		regions = append(regions, Region{Outer: loops[i].poly.CCW()})
	}
	for i := range loops {
		if !loops[i].hole {
			continue
		}
		// loops are sorted by decreasing area, so the last containing outer
		// is the smallest one
		owner := -1
		for j := 0; j < i; j++ {
			if outerIdx[j] >= 0 && containsLoop(loops[j].poly, loops[i].poly) {
				owner = outerIdx[j]
			}
		}
		if owner < 0 {
			continue
		}
		regions[owner].Holes = append(regions[owner].Holes, loops[i].poly.CW())
	}
	return regions
}
