package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type MaterialSpec struct {
	Name           string     `yaml:"name"`
	Density        float64    `yaml:"density"`
	Friction       float64    `yaml:"friction"`
	Elasticity     float64    `yaml:"elasticity"`
	Radius         float64    `yaml:"radius"`
	Categories     []string   `yaml:"categories"`
	Mask           []string   `yaml:"mask"`
	CollisionType  string     `yaml:"collision_type"`
	MinSurfaceArea float64    `yaml:"min_surface_area"`
	Hardness       int        `yaml:"hardness"`
	Color          *YAMLColor `yaml:"color"`
}

type MaterialsSpec struct {
	Materials []MaterialSpec `yaml:"materials"`
}

type CullSpec struct {
	MaxGroups       int     `yaml:"max_groups"`
	SettleThreshold float64 `yaml:"settle_threshold"`
}

type PetrifySpec struct {
	MinSleepSeconds float64 `yaml:"min_sleep_seconds"`
	SettleThreshold float64 `yaml:"settle_threshold"`
}

type CrackSpec struct {
	Spokes   int     `yaml:"spokes"`
	Rings    int     `yaml:"rings"`
	Variance float64 `yaml:"variance"`
}

type CutSpec struct {
	DiskRadius float64   `yaml:"disk_radius"`
	LineRadius float64   `yaml:"line_radius"`
	Crack      CrackSpec `yaml:"crack"`
}

type WorldSpec struct {
	Gravity        float64     `yaml:"gravity"`
	Iterations     uint        `yaml:"iterations"`
	MaxTileExtent  float64     `yaml:"max_tile_extent"`
	TouchTolerance float64     `yaml:"touch_tolerance"`
	DiskSegments   int         `yaml:"disk_segments"`
	MinSurfaceArea float64     `yaml:"min_surface_area"`
	SpeedHistory   int         `yaml:"speed_history"`
	Debug          bool        `yaml:"debug"`
	Cull           CullSpec    `yaml:"cull"`
	Petrify        PetrifySpec `yaml:"petrify"`
	Cut            CutSpec     `yaml:"cut"`
}

// YAMLColor accepts #rrggbb, #rrggbbaa or an SVG color name.
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	if named, ok := colornames.Map[strings.ToLower(value.Value)]; ok {
		c.Color = color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}
		return nil
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}

// NRGBA returns the color, or fallback when unset.
func (c *YAMLColor) NRGBA(fallback color.NRGBA) color.NRGBA {
	if c == nil || c.Color == nil {
		return fallback
	}
	return color.NRGBAModel.Convert(c.Color).(color.NRGBA)
}
