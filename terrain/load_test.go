package terrain

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/terrain/geom"
)

const loadSample = `<svg xmlns="http://www.w3.org/2000/svg">
  <rect id="ground" x="0" y="0" width="100" height="20" data-material="rock" data-hardness="7"/>
  <rect id="pin" x="0" y="0" width="10" height="10" data-role="anchor"/>
  <rect id="box" x="0" y="40" width="10" height="10" data-dynamic="true"/>
  <circle id="spawn" cx="5" cy="30" r="0" data-kind="player"/>
  <rect id="flag" x="50" y="50" width="10" height="10" data-role="element" data-team="red"/>
</svg>`

func loadWorld() *World {
	rock := DefaultMaterial()
	rock.Name = "rock"
	return NewWorld(cp.NewSpace(), Config{Materials: map[string]*Material{"rock": rock}})
}

func TestLoadSvg(t *testing.T) {
	w := loadWorld()
	shapes, anchors, elements, err := w.LoadSvg(strings.NewReader(loadSample), mgl64.Ident3())
	if err != nil {
		t.Fatalf("LoadSvg: %v", err)
	}
	if len(shapes) != 2 || len(anchors) != 1 || len(elements) != 2 {
		t.Fatalf("expected 2 shapes, 1 anchor, 2 elements, got %d/%d/%d", len(shapes), len(anchors), len(elements))
	}

	ground := shapes[0]
	if ground.Name != "ground" || ground.Material == nil || ground.Material.Name != "rock" || ground.Hardness != 7 || ground.Dynamic {
		t.Fatalf("unexpected ground %+v", ground)
	}
	if box := shapes[1]; box.Name != "box" || !box.Dynamic || box.Material != nil {
		t.Fatalf("unexpected box %+v", box)
	}
	if anchors[0].Name != "pin" {
		t.Fatalf("unexpected anchor %+v", anchors[0])
	}

	spawn := elements[0]
	if spawn.ID != "spawn" || !spawn.Pos.Equal(geom.Vec{X: 5, Y: 30}, 1e-9) || spawn.Props["kind"] != "player" {
		t.Fatalf("unexpected spawn %+v", spawn)
	}
	flag := elements[1]
	if flag.ID != "flag" || !flag.Pos.Equal(geom.Vec{X: 55, Y: 55}, 1e-9) || flag.Props["team"] != "red" {
		t.Fatalf("unexpected flag %+v", flag)
	}
	if _, ok := flag.Props["role"]; ok {
		t.Fatalf("reserved attributes should not leak into props")
	}

	if err := w.Build(shapes, anchors, elements); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := w.DynamicGroupCount(); got != 1 {
		t.Fatalf("expected the box to be the only dynamic group, got %d", got)
	}
}

func TestLoadSvgTransform(t *testing.T) {
	w := loadWorld()
	xf := mgl64.Translate2D(0, 100).Mul3(mgl64.Scale2D(2, -2))
	shapes, _, elements, err := w.LoadSvg(strings.NewReader(loadSample), xf)
	if err != nil {
		t.Fatalf("LoadSvg: %v", err)
	}
	bb := shapes[0].Region.BB()
	if bb.L != 0 || bb.R != 200 || bb.B != 60 || bb.T != 100 {
		t.Fatalf("unexpected ground bounds %+v", bb)
	}
	if !elements[0].Pos.Equal(geom.Vec{X: 10, Y: 40}, 1e-9) {
		t.Fatalf("unexpected spawn %v", elements[0].Pos)
	}
}

func TestLoadSvgErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"unknown material", `<svg><rect id="r" width="1" height="1" data-material="cheese"/></svg>`},
		{"bad hardness", `<svg><rect id="r" width="1" height="1" data-hardness="300"/></svg>`},
		{"not svg", `<html></html>`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, _, _, err := loadWorld().LoadSvg(strings.NewReader(c.doc), mgl64.Ident3()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestShapeOf(t *testing.T) {
	w := buildWorld(t, threeRects(), []AnchorDef{{Name: "pin", Region: rectRegion(0, 0, 10, 10)}}, nil)
	for _, g := range w.Groups() {
		for _, s := range g.Shapes() {
			got, ok := w.ShapeOf(s.CP())
			if !ok || got != s {
				t.Fatalf("shape %d did not map back", s.ID())
			}
		}
	}
	for _, a := range w.Anchors() {
		if got, ok := w.AnchorOf(a.cpShapes[0]); !ok || got != a {
			t.Fatalf("anchor %q did not map back", a.Name())
		}
	}
	if _, ok := w.ShapeOf(nil); ok {
		t.Fatalf("nil shape should not resolve")
	}
}
