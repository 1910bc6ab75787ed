package prefabs

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/terrain/terrain"
)

var categoryBits = map[string]uint{
	"terrain": terrain.CategoryTerrain,
	"anchor":  terrain.CategoryAnchor,
	"rubble":  terrain.CategoryRubble,
	"all":     cp.ALL_CATEGORIES,
}

func bits(names []string, fallback uint) (uint, error) {
	if len(names) == 0 {
		return fallback, nil
	}
	var out uint
	for _, n := range names {
		b, ok := categoryBits[n]
		if !ok {
			return 0, fmt.Errorf("unknown category %q", n)
		}
		out |= b
	}
	return out, nil
}

// Build converts the material spec into a terrain material, starting from the
// default terrain material for anything left unset.
func (s MaterialSpec) Build() (*terrain.Material, error) {
	m := terrain.DefaultMaterial()
	if s.Name == "" {
		return nil, fmt.Errorf("prefabs: material without a name")
	}
	m.Name = s.Name
	if s.Density > 0 {
		m.Density = s.Density
	}
	if s.Friction > 0 {
		m.Friction = s.Friction
	}
	m.Elasticity = s.Elasticity
	m.Radius = s.Radius
	m.MinSurfaceArea = s.MinSurfaceArea

	if s.CollisionType != "" {
		ct, ok := terrain.ParseCollisionType(s.CollisionType)
		if !ok {
			return nil, fmt.Errorf("prefabs: material %s: unknown collision type %q", s.Name, s.CollisionType)
		}
		m.CollisionType = ct
	}
	if s.Hardness < 0 || s.Hardness > 255 {
		return nil, fmt.Errorf("prefabs: material %s: hardness %d out of range", s.Name, s.Hardness)
	}
	m.Hardness = uint8(s.Hardness)

	var err error
	if m.Categories, err = bits(s.Categories, m.Categories); err != nil {
		return nil, fmt.Errorf("prefabs: material %s: %w", s.Name, err)
	}
	if m.Mask, err = bits(s.Mask, m.Mask); err != nil {
		return nil, fmt.Errorf("prefabs: material %s: %w", s.Name, err)
	}
	m.Color = s.Color.NRGBA(m.Color)
	return m, nil
}

// LoadMaterials reads materials.yaml into a name keyed table.
func LoadMaterials() (map[string]*terrain.Material, error) {
	spec, err := LoadSpec[MaterialsSpec]("materials.yaml")
	if err != nil {
		return nil, err
	}
	return spec.Build()
}

func (s MaterialsSpec) Build() (map[string]*terrain.Material, error) {
	out := make(map[string]*terrain.Material, len(s.Materials))
	for _, ms := range s.Materials {
		m, err := ms.Build()
		if err != nil {
			return nil, err
		}
		if _, dup := out[m.Name]; dup {
			return nil, fmt.Errorf("prefabs: duplicate material %q", m.Name)
		}
		out[m.Name] = m
	}
	return out, nil
}

func LoadWorldSpec() (WorldSpec, error) {
	return LoadSpec[WorldSpec]("world.yaml")
}

// Config maps the world spec onto a terrain config. Zero values fall back to the
// terrain defaults.
func (s WorldSpec) Config(materials map[string]*terrain.Material) terrain.Config {
	return terrain.Config{
		Gravity:        s.Gravity,
		Iterations:     s.Iterations,
		MaxTileExtent:  s.MaxTileExtent,
		TouchTolerance: s.TouchTolerance,
		DiskSegments:   s.DiskSegments,
		MinSurfaceArea: s.MinSurfaceArea,
		SpeedHistory:   s.SpeedHistory,
		Materials:      materials,
		Debug:          s.Debug,
	}
}
