package svg

import (
	"math"
	"strings"
	"testing"

	"github.com/milk9111/terrain/geom"
)

func TestParsePathData(t *testing.T) {
	tests := []struct {
		name  string
		d     string
		loops int
		area  float64
	}{
		{name: "absolute square", d: "M0 0 L10 0 L10 10 L0 10 Z", loops: 1, area: 100},
		{name: "relative square", d: "m0,0 l10,0 l0,10 l-10,0 z", loops: 1, area: 100},
		{name: "implicit lineto", d: "M0 0 10 0 10 10 0 10z", loops: 1, area: 100},
		{name: "h and v", d: "M0 0 H20 V5 H0 Z", loops: 1, area: 100},
		{name: "packed numbers", d: "M0,0L10,0L10-10L0-10Z", loops: 1, area: 100},
		{name: "two subpaths", d: "M0 0 h10 v10 h-10 z M20 0 h5 v5 h-5 z", loops: 2, area: 125},
		{name: "unclosed", d: "M0 0 L4 0 L4 4 L0 4", loops: 1, area: 16},
		{name: "degenerate dropped", d: "M0 0 L4 0 Z", loops: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loops, err := ParsePathData(tt.d)
			if err != nil {
				t.Fatalf("ParsePathData: %v", err)
			}
			if len(loops) != tt.loops {
				t.Fatalf("expected %d loops, got %d", tt.loops, len(loops))
			}
			var area float64
			for _, l := range loops {
				area += geom.Polygon(l).Area()
			}
			if math.Abs(area-tt.area) > 1e-9 {
				t.Fatalf("expected area %.3f, got %.3f", tt.area, area)
			}
		})
	}
}

func TestParsePathDataCurves(t *testing.T) {
	loops, err := ParsePathData("M0 0 C0 10 10 10 10 0 Z")
	if err != nil {
		t.Fatalf("ParsePathData: %v", err)
	}
	if len(loops) != 1 || len(loops[0]) != cubicSteps+1 {
		t.Fatalf("expected one flattened loop of %d points, got %v", cubicSteps+1, loops)
	}
	last := loops[0][len(loops[0])-1]
	if !last.Equal(geom.Vec{X: 10}, 1e-9) {
		t.Fatalf("curve should end at (10,0), got %v", last)
	}

	loops, err = ParsePathData("M0 0 Q5 10 10 0 T20 0 Z")
	if err != nil {
		t.Fatalf("ParsePathData: %v", err)
	}
	if len(loops[0]) != 2*quadSteps+1 {
		t.Fatalf("expected %d points, got %d", 2*quadSteps+1, len(loops[0]))
	}
}

func TestParsePathDataErrors(t *testing.T) {
	for _, d := range []string{"10 10 L 5 5", "M0 0 L10", "M0 0 L1 1 L2 0 Z 4"} {
		if _, err := ParsePathData(d); err == nil {
			t.Fatalf("expected error for %q", d)
		}
	}
}

func TestParseTransform(t *testing.T) {
	tests := []struct {
		name string
		tr   string
		in   geom.Vec
		want geom.Vec
	}{
		{name: "translate", tr: "translate(5, -2)", in: geom.Vec{X: 1, Y: 1}, want: geom.Vec{X: 6, Y: -1}},
		{name: "scale one arg", tr: "scale(2)", in: geom.Vec{X: 1, Y: 3}, want: geom.Vec{X: 2, Y: 6}},
		{name: "rotate", tr: "rotate(90)", in: geom.Vec{X: 1}, want: geom.Vec{Y: 1}},
		{name: "rotate about point", tr: "rotate(180 1 1)", in: geom.Vec{}, want: geom.Vec{X: 2, Y: 2}},
		{name: "matrix", tr: "matrix(1 0 0 1 3 4)", in: geom.Vec{}, want: geom.Vec{X: 3, Y: 4}},
		{name: "list applies right to left", tr: "translate(10 0) scale(2)", in: geom.Vec{X: 1}, want: geom.Vec{X: 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseTransform(tt.tr)
			if err != nil {
				t.Fatalf("ParseTransform: %v", err)
			}
			if got := geom.ApplyMat3(m, tt.in); !got.Equal(tt.want, 1e-9) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
	if _, err := ParseTransform("wobble(3)"); err == nil {
		t.Fatalf("expected error for unknown transform")
	}
}

const sample = `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="200px" height="100">
  <g transform="translate(10 0)" data-material="rock">
    <rect id="floor" x="0" y="50" width="100" height="50"/>
    <path id="ring" d="M0 0 H40 V40 H0 Z M10 10 V30 H30 V10 Z" data-hardness="255"/>
  </g>
  <polygon id="pin" points="0,0 5,0 5,5" data-role="anchor"/>
  <circle id="spawn" cx="3" cy="4" r="0" data-kind="player"/>
  <ellipse cx="0" cy="0" rx="4" ry="2"/>
</svg>`

func TestParseDocument(t *testing.T) {
	doc, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Width != 200 || doc.Height != 100 {
		t.Fatalf("unexpected size %vx%v", doc.Width, doc.Height)
	}
	if len(doc.Paths) != 4 {
		t.Fatalf("expected 4 paths, got %d", len(doc.Paths))
	}

	floor := doc.Paths[0]
	if floor.ID != "floor" || floor.Attrs["data-material"] != "rock" {
		t.Fatalf("floor should inherit data-material, got %+v", floor.Attrs)
	}
	if bb := floor.Loops[0].BB(); bb.L != 10 || bb.R != 110 {
		t.Fatalf("group transform not applied: %+v", bb)
	}

	ring := doc.Paths[1]
	regions := geom.Regions(ring.Contours())
	if len(regions) != 1 || len(regions[0].Holes) != 1 {
		t.Fatalf("expected one region with a hole, got %+v", regions)
	}
	if got := regions[0].Area(); math.Abs(got-1200) > 1e-9 {
		t.Fatalf("expected ring area 1200, got %v", got)
	}

	if doc.Paths[2].Attrs["data-role"] != "anchor" {
		t.Fatalf("anchor role lost")
	}
	if _, ok := doc.Paths[2].Attrs["data-material"]; ok {
		t.Fatalf("attributes must not leak out of their group")
	}

	if len(doc.Points) != 1 || doc.Points[0].ID != "spawn" || !doc.Points[0].Pos.Equal(geom.Vec{X: 3, Y: 4}, 0) {
		t.Fatalf("unexpected points %+v", doc.Points)
	}
}

func TestParseRequiresRoot(t *testing.T) {
	if _, err := Parse(strings.NewReader(`<g/>`)); err == nil {
		t.Fatalf("expected error without <svg> root")
	}
}
