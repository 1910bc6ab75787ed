// Package svg reads the subset of SVG used to author terrain: filled shapes
// flattened into closed loops, plus zero radius circles as named points.
package svg

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/terrain/geom"
)

const ellipseSteps = 32

// Path is one filled element, flattened into document space.
type Path struct {
	ID    string
	Tag   string
	Attrs map[string]string
	Loops []geom.Polygon
}

// Contours returns the loops with holes left to nesting.
func (p Path) Contours() []geom.Contour {
	out := make([]geom.Contour, len(p.Loops))
	for i, l := range p.Loops {
		out[i] = geom.Contour{Points: l}
	}
	return out
}

// Point is a zero radius circle.
type Point struct {
	ID    string
	Pos   geom.Vec
	Attrs map[string]string
}

type Document struct {
	Width  float64
	Height float64
	Paths  []Path
	Points []Point
}

// inherited attributes flow from <g> to its children unless overridden.
func inherited(name string) bool {
	return name == "class" || strings.HasPrefix(name, "data-")
}

type frame struct {
	m     mgl64.Mat3
	attrs map[string]string
}

// Parse reads an SVG document.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	doc := &Document{}
	stack := []frame{{m: mgl64.Ident3(), attrs: map[string]string{}}}
	sawRoot := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("svg: decode: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			parent := stack[len(stack)-1]
			attrs := make(map[string]string, len(t.Attr)+len(parent.attrs))
			for k, v := range parent.attrs {
				attrs[k] = v
			}
			for _, a := range t.Attr {
				attrs[a.Name.Local] = a.Value
			}
			m := parent.m
			if tr, ok := attrs["transform"]; ok {
				local, err := ParseTransform(tr)
				if err != nil {
					return nil, err
				}
				m = m.Mul3(local)
			}
			delete(attrs, "transform")

			if t.Name.Local == "svg" && !sawRoot {
				sawRoot = true
				doc.Width = number(attrs["width"])
				doc.Height = number(attrs["height"])
			}
			if err := doc.add(t.Name.Local, attrs, m); err != nil {
				return nil, err
			}

			keep := make(map[string]string)
			for k, v := range attrs {
				if inherited(k) {
					keep[k] = v
				}
			}
			stack = append(stack, frame{m: m, attrs: keep})
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if !sawRoot {
		return nil, errors.New("svg: no <svg> root element")
	}
	return doc, nil
}

// number parses a length, ignoring a trailing unit.
func number(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "abcdefghijklmnopqrstuvwxyz%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func (d *Document) add(tag string, attrs map[string]string, m mgl64.Mat3) error {
	var loops [][]geom.Vec
	switch tag {
	case "path":
		var err error
		loops, err = ParsePathData(attrs["d"])
		if err != nil {
			return fmt.Errorf("svg: path %q: %w", attrs["id"], err)
		}
	case "polygon", "polyline":
		vals, err := parseNumbers(attrs["points"])
		if err != nil {
			return fmt.Errorf("svg: %s %q: %w", tag, attrs["id"], err)
		}
		var loop []geom.Vec
		for i := 0; i+1 < len(vals); i += 2 {
			loop = append(loop, geom.Vec{X: vals[i], Y: vals[i+1]})
		}
		loops = append(loops, loop)
	case "rect":
		x, y := number(attrs["x"]), number(attrs["y"])
		w, h := number(attrs["width"]), number(attrs["height"])
		loops = append(loops, []geom.Vec{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}})
	case "circle":
		r := number(attrs["r"])
		c := geom.Vec{X: number(attrs["cx"]), Y: number(attrs["cy"])}
		if r <= 0 {
			d.Points = append(d.Points, Point{ID: attrs["id"], Pos: geom.ApplyMat3(m, c), Attrs: attrs})
			return nil
		}
		loops = append(loops, ellipse(c, r, r))
	case "ellipse":
		c := geom.Vec{X: number(attrs["cx"]), Y: number(attrs["cy"])}
		loops = append(loops, ellipse(c, number(attrs["rx"]), number(attrs["ry"])))
	default:
		return nil
	}

	p := Path{ID: attrs["id"], Tag: tag, Attrs: attrs}
	for _, loop := range loops {
		poly := make(geom.Polygon, len(loop))
		for i, v := range loop {
			poly[i] = geom.ApplyMat3(m, v)
		}
		if poly = poly.Clean(1e-9); !poly.Degenerate() {
			p.Loops = append(p.Loops, poly)
		}
	}
	if len(p.Loops) > 0 {
		d.Paths = append(d.Paths, p)
	}
	return nil
}

func ellipse(c geom.Vec, rx, ry float64) []geom.Vec {
	if rx <= 0 || ry <= 0 {
		return nil
	}
	out := make([]geom.Vec, ellipseSteps)
	for i := range out {
		t := 2 * math.Pi * float64(i) / ellipseSteps
		out[i] = geom.Vec{X: c.X + rx*math.Cos(t), Y: c.Y + ry*math.Sin(t)}
	}
	return out
}
