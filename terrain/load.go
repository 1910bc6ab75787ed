package terrain

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/terrain/geom"
	"github.com/milk9111/terrain/svg"
)

// LoadSvg parses SVG markup into Build inputs, mapping every point through
// xf. Elements are chosen by their data attributes:
//
//	data-role="anchor"   anchor region
//	data-role="element"  element at the shape's centroid
//	data-material        material name from Config.Materials
//	data-hardness        0-255
//	data-dynamic="true"  starts as a free body
//
// Zero radius circles are elements too. Other data-* attributes end up in
// Element.Props without the prefix.
func (w *World) LoadSvg(r io.Reader, xf mgl64.Mat3) ([]ShapeDef, []AnchorDef, []Element, error) {
	doc, err := svg.Parse(r)
	if err != nil {
		return nil, nil, nil, err
	}
	apply := func(v geom.Vec) geom.Vec { return geom.ApplyMat3(xf, v) }

	var (
		shapes   []ShapeDef
		anchors  []AnchorDef
		elements []Element
	)
	for _, p := range doc.Points {
		elements = append(elements, Element{ID: p.ID, Pos: apply(p.Pos), Props: props(p.Attrs)})
	}

	for _, p := range doc.Paths {
		contours := p.Contours()
		for i := range contours {
			contours[i].Points = contours[i].Points.Map(apply)
		}
		regions := geom.Regions(contours)

		role := p.Attrs["data-role"]
		if role == "element" {
			if len(regions) > 0 {
				elements = append(elements, Element{ID: p.ID, Pos: regions[0].Outer.Centroid(), Props: props(p.Attrs)})
			}
			continue
		}

		var material *Material
		if name, ok := p.Attrs["data-material"]; ok && name != "" {
			material, ok = w.cfg.Materials[name]
			if !ok {
				return nil, nil, nil, fmt.Errorf("terrain: svg %s %q: unknown material %q", p.Tag, p.ID, name)
			}
		}

		if role == "anchor" {
			for _, region := range regions {
				anchors = append(anchors, AnchorDef{Name: p.ID, Region: region, Material: material})
			}
			continue
		}

		var hardness uint8
		if s, ok := p.Attrs["data-hardness"]; ok {
			v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("terrain: svg %s %q: hardness: %w", p.Tag, p.ID, err)
			}
			hardness = uint8(v)
		}
		dynamic := p.Attrs["data-dynamic"] == "true"
		for _, region := range regions {
			shapes = append(shapes, ShapeDef{
				Name:     p.ID,
				Region:   region,
				Material: material,
				Hardness: hardness,
				Dynamic:  dynamic,
			})
		}
	}
	return shapes, anchors, elements, nil
}

func props(attrs map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range attrs {
		switch k {
		case "data-role", "data-material", "data-hardness", "data-dynamic":
			continue
		}
		if name, ok := strings.CutPrefix(k, "data-"); ok {
			out[name] = v
		}
	}
	return out
}
