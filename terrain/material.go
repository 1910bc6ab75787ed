package terrain

import (
	"image/color"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/terrain/common"
	"golang.org/x/image/colornames"
)

// CollisionType tags a material with how its shapes behave in the physics
// space and under cuts.
type CollisionType int

const (
	CollisionTerrain CollisionType = iota
	CollisionBedrock
	CollisionAnchor
	CollisionSensor
	collisionTypeCount
)

func (t CollisionType) String() string {
	switch t {
	case CollisionTerrain:
		return "terrain"
	case CollisionBedrock:
		return "bedrock"
	case CollisionAnchor:
		return "anchor"
	case CollisionSensor:
		return "sensor"
	default:
		return "unknown"
	}
}

// ParseCollisionType maps a config name to a CollisionType.
func ParseCollisionType(name string) (CollisionType, bool) {
	for t := CollisionTerrain; t < collisionTypeCount; t++ {
		if t.String() == name {
			return t, true
		}
	}
	return CollisionTerrain, false
}

// Filter categories carried by terrain shapes.
const (
	CategoryTerrain uint = 1 << iota
	CategoryAnchor
	CategoryRubble
)

// Chipmunk collision types assigned to terrain shapes. Games register their
// own collision handlers against these.
const (
	CPTypeTerrain cp.CollisionType = iota + 100
	CPTypeRubble
	CPTypeAnchor
	CPTypeSensor
)

// FilterTerrain is the cut filter that only touches terrain shapes.
var FilterTerrain = cp.ShapeFilter{Group: cp.NO_GROUP, Categories: cp.ALL_CATEGORIES, Mask: CategoryTerrain}

// FilterAll matches every shape.
var FilterAll = cp.ShapeFilter{Group: cp.NO_GROUP, Categories: cp.ALL_CATEGORIES, Mask: cp.ALL_CATEGORIES}

// Material describes the physical and cut properties shared by shapes.
type Material struct {
	Name       string
	Density    float64
	Friction   float64
	Elasticity float64
	// Radius inflates the collision shape beyond the polygon.
	Radius         float64
	Categories     uint
	Mask           uint
	CollisionType  CollisionType
	MinSurfaceArea float64
	Hardness       uint8
	Color          color.NRGBA
}

// DefaultMaterial is used for shapes authored without one.
func DefaultMaterial() *Material {
	c := colornames.Sienna
	return &Material{
		Name:          "default",
		Density:       1,
		Friction:      0.8,
		Categories:    CategoryTerrain,
		Mask:          cp.ALL_CATEGORIES,
		CollisionType: CollisionTerrain,
		Color:         color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255},
	}
}

// DefaultAnchorMaterial is used for anchors authored without one.
func DefaultAnchorMaterial() *Material {
	c := colornames.Steelblue
	return &Material{
		Name:          "anchor",
		Categories:    CategoryAnchor,
		Mask:          cp.ALL_CATEGORIES,
		CollisionType: CollisionAnchor,
		Color:         color.NRGBA{R: c.R, G: c.G, B: c.B, A: 128},
	}
}

type collisionBehavior struct {
	cpType   cp.CollisionType
	sensor   bool
	cuttable bool
}

// collisionTable resolves every CollisionType to its behavior once, when the
// world is created.
type collisionTable [collisionTypeCount]collisionBehavior

func newCollisionTable() collisionTable {
	var t collisionTable
	t[CollisionTerrain] = collisionBehavior{cpType: CPTypeTerrain, cuttable: true}
	t[CollisionBedrock] = collisionBehavior{cpType: CPTypeTerrain}
	t[CollisionAnchor] = collisionBehavior{cpType: CPTypeAnchor, sensor: true}
	t[CollisionSensor] = collisionBehavior{cpType: CPTypeSensor, sensor: true, cuttable: true}
	return t
}

func (t *collisionTable) lookup(ct CollisionType) collisionBehavior {
	if ct < 0 || ct >= collisionTypeCount {
		return t[CollisionTerrain]
	}
	return t[ct]
}

// uncuttable reports whether a shape with this hardness and material must
// survive every cut.
func (t *collisionTable) uncuttable(m *Material, hardness uint8) bool {
	if hardness >= common.HardnessUncuttable {
		return true
	}
	return !t.lookup(m.CollisionType).cuttable
}
