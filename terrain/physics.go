package terrain

import (
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/terrain/geom"
)

// physics owns every Chipmunk object the terrain creates and maps Chipmunk
// shapes back to terrain shapes.
type physics struct {
	space      *cp.Space
	behaviors  collisionTable
	shapeOwner map[*cp.Shape]*Shape
	anchorOf   map[*cp.Shape]*Anchor
	// stepping counts the space steps in progress. cp keeps its own lock
	// count private.
	stepping int
}

func newPhysics(space *cp.Space) *physics {
	return &physics{
		space:      space,
		behaviors:  newCollisionTable(),
		shapeOwner: make(map[*cp.Shape]*Shape),
		anchorOf:   make(map[*cp.Shape]*Anchor),
	}
}

// mustBeUnlocked panics when called from inside a space step or callback.
func (p *physics) mustBeUnlocked(op string) {
	if p.stepping > 0 {
		panic("World: " + op + " while the physics space is locked")
	}
}

func (p *physics) locked(fn func()) {
	p.stepping++
	defer func() { p.stepping-- }()
	fn()
}

func (p *physics) newStaticBody() *cp.Body {
	body := cp.NewStaticBody()
	p.space.AddBody(body)
	return body
}

func (p *physics) newDynamicBody(mass, moment float64, xf geom.Transform) *cp.Body {
	body := cp.NewBody(mass, moment)
	body.SetPosition(xf.Pos.CP())
	body.SetAngle(xf.Angle)
	p.space.AddBody(body)
	return body
}

func (p *physics) removeBody(body *cp.Body) {
	if body == nil || body == p.space.StaticBody {
		return
	}
	p.space.RemoveBody(body)
}

// attach creates the Chipmunk poly for s on its group's body.
func (p *physics) attach(s *Shape) {
	g := s.group
	verts := make([]cp.Vector, len(s.poly))
	for i, v := range s.poly {
		verts[i] = v.CP()
	}
	m := s.material
	behavior := p.behaviors.lookup(m.CollisionType)

	shape := cp.NewPolyShapeRaw(g.body, len(verts), verts, m.Radius)
	shape.SetFriction(m.Friction)
	shape.SetElasticity(m.Elasticity)
	shape.SetSensor(behavior.sensor)
	categories := m.Categories
	cpType := behavior.cpType
	if g.dynamic {
		categories |= CategoryRubble
		if cpType == CPTypeTerrain {
			cpType = CPTypeRubble
		}
	}
	shape.SetCollisionType(cpType)
	shape.SetFilter(cp.ShapeFilter{Group: cp.NO_GROUP, Categories: categories, Mask: m.Mask})
	p.space.AddShape(shape)

	s.cpShape = shape
	p.shapeOwner[shape] = s
}

func (p *physics) detach(s *Shape) {
	if s.cpShape == nil {
		return
	}
	p.space.RemoveShape(s.cpShape)
	delete(p.shapeOwner, s.cpShape)
	s.cpShape = nil
}

func (p *physics) attachAnchor(a *Anchor) {
	behavior := p.behaviors.lookup(a.material.CollisionType)
	for _, part := range a.parts {
		verts := make([]cp.Vector, len(part))
		for i, v := range part {
			verts[i] = v.CP()
		}
		shape := cp.NewPolyShapeRaw(p.space.StaticBody, len(verts), verts, 0)
		shape.SetSensor(true)
		shape.SetCollisionType(behavior.cpType)
		shape.SetFilter(cp.ShapeFilter{Group: cp.NO_GROUP, Categories: a.material.Categories, Mask: a.material.Mask})
		p.space.AddShape(shape)
		a.cpShapes = append(a.cpShapes, shape)
		p.anchorOf[shape] = a
	}
}

// queryShapes runs a broad-phase box query and returns the terrain shapes it
// found, ordered by id so results do not depend on the spatial index.
func (p *physics) queryShapes(bb geom.BB, filter cp.ShapeFilter) []*Shape {
	var out []*Shape
	seen := make(map[*Shape]struct{})
	p.space.BBQuery(bb.CP(), filter, func(shape *cp.Shape, data interface{}) {
		s, ok := p.shapeOwner[shape]
		if !ok {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}, nil)
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// massProperties sums density-weighted area and the moment about the
// polygons' common centroid, which must already be the local origin.
func massProperties(shapes []*Shape) (mass, moment float64) {
	for _, s := range shapes {
		density := s.material.Density
		if density <= 0 {
			density = 1
		}
		m := s.poly.Area() * density
		if m <= 0 {
			continue
		}
		verts := make([]cp.Vector, len(s.poly))
		for i, v := range s.poly {
			verts[i] = v.CP()
		}
		mass += m
		moment += cp.MomentForPoly(m, len(verts), verts, cp.Vector{}, s.material.Radius)
	}
	if mass <= 0 {
		mass = 1
	}
	if moment <= 0 {
		moment = mass
	}
	return mass, moment
}

// centroidOf is the area-weighted centre of a set of polygons.
func centroidOf(polys []geom.Polygon) geom.Vec {
	var sum geom.Vec
	var area float64
	for _, p := range polys {
		a := p.Area()
		sum = sum.Add(p.Centroid().Scale(a))
		area += a
	}
	if area <= 0 {
		return geom.Vec{}
	}
	return sum.Scale(1 / area)
}
