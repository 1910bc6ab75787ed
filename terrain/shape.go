package terrain

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/terrain/geom"
)

// ShapeDef is one authored terrain piece handed to Build or Partition.
type ShapeDef struct {
	Name     string
	Region   geom.Region
	Material *Material
	// Hardness is raised to the material hardness when lower.
	Hardness uint8
	// Dynamic pieces start life as free bodies regardless of anchors.
	Dynamic bool
	// Tile is set by Partition; shapes only group with shapes of the same
	// tile at build time.
	Tile int
}

func (d ShapeDef) material() *Material {
	if d.Material == nil {
		return DefaultMaterial()
	}
	return d.Material
}

func (d ShapeDef) hardness() uint8 {
	m := d.material()
	if m.Hardness > d.Hardness {
		return m.Hardness
	}
	return d.Hardness
}

// Shape is one convex terrain polygon owned by exactly one Group. Its
// polygon is stored in the group body's local frame.
type Shape struct {
	id       uint64
	poly     geom.Polygon
	material *Material
	hardness uint8
	group    *Group
	cpShape  *cp.Shape
}

func (s *Shape) ID() uint64 {
	return s.id
}

func (s *Shape) Material() *Material {
	return s.material
}

func (s *Shape) Hardness() uint8 {
	return s.hardness
}

// LocalPolygon returns a copy of the polygon in the group's body frame.
func (s *Shape) LocalPolygon() geom.Polygon {
	return s.poly.Clone()
}

// WorldPolygon returns the polygon at the group's current placement.
func (s *Shape) WorldPolygon() geom.Polygon {
	if s.group == nil {
		return s.poly.Clone()
	}
	return s.group.Transform().ApplyPolygon(s.poly)
}

func (s *Shape) Area() float64 {
	return s.poly.Area()
}

// Group returns the handle of the owning group.
func (s *Shape) Group() GroupHandle {
	if s.group == nil {
		return 0
	}
	return s.group.handle
}

// CP exposes the Chipmunk shape, for collision handlers and debug drawing.
func (s *Shape) CP() *cp.Shape {
	return s.cpShape
}
