package terrain

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/terrain/geom"
)

// Group is a connected cluster of shapes sharing one physics body. Static
// groups sit on an immovable body at the origin, so their local frame is the
// world frame.
type Group struct {
	handle  GroupHandle
	dynamic bool
	body    *cp.Body
	shapes  []*Shape
	seq     uint64
	speeds  speedHistory
}

func (g *Group) Handle() GroupHandle {
	return g.handle
}

func (g *Group) IsDynamic() bool {
	return g.dynamic
}

// Body exposes the Chipmunk body so game code can apply impulses.
func (g *Group) Body() *cp.Body {
	return g.body
}

func (g *Group) Position() geom.Vec {
	if g.body == nil {
		return geom.Vec{}
	}
	return geom.FromCP(g.body.Position())
}

func (g *Group) Angle() float64 {
	if g.body == nil {
		return 0
	}
	return g.body.Angle()
}

func (g *Group) Transform() geom.Transform {
	if g.body == nil || !g.dynamic {
		return geom.Identity()
	}
	return geom.Transform{Pos: geom.FromCP(g.body.Position()), Angle: g.body.Angle()}
}

// Velocity is zero for static groups.
func (g *Group) Velocity() geom.Vec {
	if !g.dynamic || g.body == nil {
		return geom.Vec{}
	}
	return geom.FromCP(g.body.Velocity())
}

func (g *Group) AngularVelocity() float64 {
	if !g.dynamic || g.body == nil {
		return 0
	}
	return g.body.AngularVelocity()
}

// Speed is linear plus angular speed. A sleeping body reports zero.
func (g *Group) Speed() float64 {
	if !g.dynamic || g.body == nil || g.body.IsSleeping() {
		return 0
	}
	return g.Velocity().Len() + math.Abs(g.AngularVelocity())
}

// Shapes returns a copy of the group's shape list.
func (g *Group) Shapes() []*Shape {
	out := make([]*Shape, len(g.shapes))
	copy(out, g.shapes)
	return out
}

func (g *Group) ShapeCount() int {
	return len(g.shapes)
}

func (g *Group) Area() float64 {
	var a float64
	for _, s := range g.shapes {
		a += s.poly.Area()
	}
	return a
}

// Seq orders groups by creation; lower is older.
func (g *Group) Seq() uint64 {
	return g.seq
}

func (g *Group) localPolygons() []geom.Polygon {
	out := make([]geom.Polygon, len(g.shapes))
	for i, s := range g.shapes {
		out[i] = s.poly
	}
	return out
}

// WorldPolygons returns every shape polygon at the current placement.
func (g *Group) WorldPolygons() []geom.Polygon {
	xf := g.Transform()
	out := make([]geom.Polygon, len(g.shapes))
	for i, s := range g.shapes {
		out[i] = xf.ApplyPolygon(s.poly)
	}
	return out
}

func (g *Group) BB() geom.BB {
	bb := geom.EmptyBB()
	for _, p := range g.WorldPolygons() {
		bb = bb.Union(p.BB())
	}
	return bb
}

// shapeAt returns the shape containing a world point, if any.
func (g *Group) shapeAt(p geom.Vec, tol float64) *Shape {
	local := g.Transform().ApplyInverse(p)
	for _, s := range g.shapes {
		if s.poly.BB().Grow(tol).Contains(local) && s.poly.Contains(local, tol) {
			return s
		}
	}
	return nil
}

// speedHistory folds speed samples into runs, oldest first, each holding
// its peak and duration. A new sample swallows every newer run whose peak it
// reaches, so peaks strictly fall towards the newest run and a run's peak is
// its newest sample. A group at rest collapses to one run however long it
// sleeps. Past capacity runs the two oldest merge, which can only shorten
// the answer of stillFor.
type speedHistory struct {
	runs []speedRun
}

type speedRun struct {
	peak float64
	dur  float64
}

func (h *speedHistory) add(dt, speed float64, capacity int) {
	if capacity <= 0 {
		return
	}
	run := speedRun{peak: speed, dur: dt}
	for n := len(h.runs); n > 0 && h.runs[n-1].peak <= speed; n-- {
		run.dur += h.runs[n-1].dur
		h.runs = h.runs[:n-1]
	}
	h.runs = append(h.runs, run)
	if len(h.runs) > capacity && len(h.runs) > 1 {
		h.runs[1].peak = math.Max(h.runs[0].peak, h.runs[1].peak)
		h.runs[1].dur += h.runs[0].dur
		copy(h.runs, h.runs[1:])
		h.runs = h.runs[:len(h.runs)-1]
	}
}

// stillFor is how long speed has stayed below threshold, newest first.
func (h *speedHistory) stillFor(threshold float64) float64 {
	var total float64
	for i := len(h.runs) - 1; i >= 0 && h.runs[i].peak < threshold; i-- {
		total += h.runs[i].dur
	}
	return total
}

func (h *speedHistory) reset() {
	h.runs = h.runs[:0]
}
