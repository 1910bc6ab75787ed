package prefabs

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/terrain/terrain"
	"gopkg.in/yaml.v3"
)

func TestYAMLColor(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"hex", `"#ff8000"`, color.NRGBA{R: 255, G: 128, A: 255}, false},
		{"hex_alpha", `"#0000ff80"`, color.NRGBA{B: 255, A: 128}, false},
		{"named", `sienna`, color.NRGBA{R: 160, G: 82, B: 45, A: 255}, false},
		{"short", `"#fff"`, color.NRGBA{}, true},
		{"not_scalar", `[1, 2]`, color.NRGBA{}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var got YAMLColor
			err := yaml.Unmarshal([]byte(c.in), &got)
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", c.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if n := got.NRGBA(color.NRGBA{}); n != c.want {
				t.Fatalf("expected %v, got %v", c.want, n)
			}
		})
	}
}

func TestLoadMaterials(t *testing.T) {
	mats, err := LoadMaterials()
	if err != nil {
		t.Fatalf("LoadMaterials: %v", err)
	}
	for _, name := range []string{"dirt", "rock", "ice", "bedrock", "anchor"} {
		if _, ok := mats[name]; !ok {
			t.Fatalf("missing material %q", name)
		}
	}
	if mats["bedrock"].CollisionType != terrain.CollisionBedrock || mats["bedrock"].Hardness != 255 {
		t.Fatalf("bedrock should be uncuttable: %+v", mats["bedrock"])
	}
	if mats["anchor"].Categories != terrain.CategoryAnchor {
		t.Fatalf("anchor categories not applied: %b", mats["anchor"].Categories)
	}
	if mats["rock"].Density != 2.5 || mats["rock"].MinSurfaceArea != 8 {
		t.Fatalf("rock fields not applied: %+v", mats["rock"])
	}
}

func TestMaterialSpecBuildErrors(t *testing.T) {
	cases := []struct {
		name string
		spec MaterialSpec
	}{
		{"no_name", MaterialSpec{}},
		{"bad_collision_type", MaterialSpec{Name: "x", CollisionType: "lava"}},
		{"bad_category", MaterialSpec{Name: "x", Categories: []string{"sky"}}},
		{"hardness_range", MaterialSpec{Name: "x", Hardness: 300}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := c.spec.Build(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	dup := MaterialsSpec{Materials: []MaterialSpec{{Name: "a"}, {Name: "a"}}}
	if _, err := dup.Build(); err == nil {
		t.Fatalf("expected duplicate material error")
	}
}

func TestLoadWorldSpec(t *testing.T) {
	spec, err := LoadWorldSpec()
	if err != nil {
		t.Fatalf("LoadWorldSpec: %v", err)
	}
	if spec.Cull.MaxGroups != 128 || spec.Cull.SettleThreshold != 0.75 {
		t.Fatalf("unexpected cull policy %+v", spec.Cull)
	}
	cfg := spec.Config(nil)
	if cfg.Gravity >= 0 || cfg.MaxTileExtent != 512 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadSpecMissingFile(t *testing.T) {
	if _, err := LoadSpec[WorldSpec]("does_not_exist.yaml"); err == nil {
		t.Fatalf("expected error for a missing prefab")
	}
}

func TestWatcherReportsShapeFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	target := filepath.Join(dir, "cave.svg")
	if err := os.WriteFile(target, []byte("<svg/>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-w.Events:
		if got != target {
			t.Fatalf("expected %s, got %s", target, got)
		}
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
}
