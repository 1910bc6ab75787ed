// Package levels holds the terrain levels shipped with the module and loads
// them into a terrain.World.
package levels

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/terrain/terrain"
	"gopkg.in/yaml.v3"
)

//go:embed *.yaml *.svg
var LevelsFS embed.FS

// Dir is where on-disk overrides are looked up, relative to the working
// directory.
const Dir = "levels"

type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Level describes how to turn an SVG file into terrain.
type Level struct {
	Name      string  `yaml:"name"`
	SVG       string  `yaml:"svg"`
	Origin    Vec2    `yaml:"origin"`
	Scale     float64 `yaml:"scale"`
	FlipY     bool    `yaml:"flip_y"`
	Partition bool    `yaml:"partition"`
}

// Read returns a level file, preferring the on-disk copy.
func Read(name string) ([]byte, error) {
	if data, err := os.ReadFile(filepath.Join(Dir, filepath.FromSlash(name))); err == nil {
		return data, nil
	}
	return LevelsFS.ReadFile(filepath.ToSlash(name))
}

func LoadLevel(name string) (*Level, error) {
	data, err := Read(name)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", name, err)
	}
	var lvl Level
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("levels: unmarshal %s: %w", name, err)
	}
	if lvl.SVG == "" {
		return nil, fmt.Errorf("levels: %s names no svg", name)
	}
	return &lvl, nil
}

// Transform maps SVG document space to terrain space.
func (l *Level) Transform() mgl64.Mat3 {
	s := l.Scale
	if s == 0 {
		s = 1
	}
	sy := s
	if l.FlipY {
		sy = -s
	}
	return mgl64.Translate2D(l.Origin.X, l.Origin.Y).Mul3(mgl64.Scale2D(s, sy))
}

// Populate loads the level's SVG into w and builds it, partitioning the
// shapes into tiles first when the level asks for it.
func (l *Level) Populate(w *terrain.World) error {
	data, err := Read(l.SVG)
	if err != nil {
		return fmt.Errorf("levels: read %s: %w", l.SVG, err)
	}
	shapes, anchors, elements, err := w.LoadSvg(bytes.NewReader(data), l.Transform())
	if err != nil {
		return fmt.Errorf("levels: load %s: %w", l.SVG, err)
	}
	if l.Partition {
		tiles := w.Partition(shapes)
		if tiles == nil && len(shapes) > 0 {
			return fmt.Errorf("levels: %s has degenerate shapes", l.SVG)
		}
		shapes = shapes[:0]
		for _, tile := range tiles {
			shapes = append(shapes, tile...)
		}
	}
	if err := w.Build(shapes, anchors, elements); err != nil {
		return fmt.Errorf("levels: build %s: %w", l.Name, err)
	}
	return nil
}
