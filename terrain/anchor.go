package terrain

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/terrain/geom"
)

// AnchorDef is an authored anchor region.
type AnchorDef struct {
	Name     string
	Region   geom.Region
	Material *Material
}

// Anchor pins every group it overlaps to the static world. Anchors are owned
// by the World and never move.
type Anchor struct {
	name     string
	parts    []geom.Polygon
	bb       geom.BB
	material *Material
	cpShapes []*cp.Shape
}

func (a *Anchor) Name() string {
	return a.name
}

// Parts returns the convex pieces of the anchor in world space.
func (a *Anchor) Parts() []geom.Polygon {
	return a.parts
}

func (a *Anchor) Material() *Material {
	return a.material
}

func (a *Anchor) BB() geom.BB {
	return a.bb
}

// touches reports whether any world polygon overlaps or touches the anchor.
func (a *Anchor) touches(polys []geom.Polygon, bb geom.BB, tol float64) bool {
	if !a.bb.Grow(tol).Intersects(bb) {
		return false
	}
	for _, p := range polys {
		for _, part := range a.parts {
			if geom.Touching(p, part, tol) {
				return true
			}
		}
	}
	return false
}
