package levels

import (
	"testing"

	"github.com/milk9111/terrain/geom"
	"github.com/milk9111/terrain/prefabs"
	"github.com/milk9111/terrain/terrain"
)

func TestLoadLevel(t *testing.T) {
	lvl, err := LoadLevel("cavern.yaml")
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	if lvl.SVG != "cavern.svg" || !lvl.FlipY || !lvl.Partition {
		t.Fatalf("unexpected level %+v", lvl)
	}
	p := geom.ApplyMat3(lvl.Transform(), geom.Vec{X: 10, Y: 500})
	if !p.Equal(geom.Vec{X: 10, Y: 12}, 1e-9) {
		t.Fatalf("expected y to flip about the origin, got %v", p)
	}

	if _, err := LoadLevel("missing.yaml"); err == nil {
		t.Fatalf("expected error for a missing level")
	}
}

func TestPopulateCavern(t *testing.T) {
	mats, err := prefabs.LoadMaterials()
	if err != nil {
		t.Fatalf("LoadMaterials: %v", err)
	}
	lvl, err := LoadLevel("cavern.yaml")
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	w := terrain.NewWorld(nil, terrain.Config{Materials: mats})
	if err := lvl.Populate(w); err != nil {
		t.Fatalf("Populate: %v", err)
	}

	if len(w.Anchors()) != 2 {
		t.Fatalf("expected 2 anchors, got %d", len(w.Anchors()))
	}
	crate, ok := w.GroupAt(geom.Vec{X: 655, Y: 317})
	if !ok || !crate.IsDynamic() {
		t.Fatalf("crate should be a dynamic group")
	}
	floor, ok := w.GroupAt(geom.Vec{X: 500, Y: 16})
	if !ok || floor.IsDynamic() {
		t.Fatalf("anchored floor should be static")
	}
	ledge, ok := w.GroupAt(geom.Vec{X: 200, Y: 340})
	if !ok || ledge.IsDynamic() {
		t.Fatalf("pinned ledge should be static")
	}

	beacon, ok := w.GetElementByID("beacon")
	if !ok || beacon.Props["kind"] != "light" {
		t.Fatalf("beacon element missing: %+v", beacon)
	}
	if _, ok := w.ElementGroup("beacon"); !ok {
		t.Fatalf("beacon sits inside the pillar and should ride on it")
	}
	if _, ok := w.GetElementByID("spawn"); !ok {
		t.Fatalf("spawn element missing")
	}
}
