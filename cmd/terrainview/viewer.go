package main

import (
	"fmt"
	"image/color"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/terrain/geom"
	"github.com/milk9111/terrain/levels"
	"github.com/milk9111/terrain/prefabs"
	"github.com/milk9111/terrain/terrain"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720
	tickRate   = 60
	// lifecycle passes run this often, in ticks
	maintainEvery = 30
)

type marker struct {
	att      *terrain.Attachment
	orphaned bool
}

// Viewer is an ebiten.Game that loads a level and lets you carve it up.
type Viewer struct {
	levelName string
	debug     bool

	world   *terrain.World
	spec    prefabs.WorldSpec
	cam     camera
	watcher *prefabs.Watcher

	frames    int
	paused    bool
	outlines  bool
	dragStart *cp.Vector
	markers   []*marker
	seed      uint64
	lastCut   terrain.CutReport
	lastOp    string
}

func NewViewer(levelName string, debug, watch bool) (*Viewer, error) {
	v := &Viewer{levelName: levelName, debug: debug, outlines: debug}
	if err := v.load(); err != nil {
		return nil, err
	}
	if watch {
		w, err := prefabs.NewWatcher(prefabs.Dir, levels.Dir)
		if err != nil {
			log.Printf("terrainview: hot reload disabled: %v", err)
		} else {
			v.watcher = w
		}
	}
	return v, nil
}

func (v *Viewer) Close() {
	if v.watcher != nil {
		_ = v.watcher.Close()
	}
}

// load rebuilds the world from the current prefabs and level files.
func (v *Viewer) load() error {
	materials, err := prefabs.LoadMaterials()
	if err != nil {
		return err
	}
	spec, err := prefabs.LoadWorldSpec()
	if err != nil {
		return err
	}
	if v.debug {
		spec.Debug = true
	}
	lvl, err := levels.LoadLevel(v.levelName)
	if err != nil {
		return err
	}
	world := terrain.NewWorld(nil, spec.Config(materials))
	if err := lvl.Populate(world); err != nil {
		return err
	}

	v.world = world
	v.spec = spec
	v.markers = nil
	v.dragStart = nil
	v.cam = fitCamera(world)
	return nil
}

func fitCamera(w *terrain.World) camera {
	bb := geom.EmptyBB()
	for _, g := range w.Groups() {
		bb = bb.Union(g.BB())
	}
	if bb.Empty() {
		return camera{zoom: 1, height: baseHeight}
	}
	zoom := 0.9 * math.Min(baseWidth/bb.Width(), baseHeight/bb.Height())
	c := bb.Center()
	return camera{
		x:      c.X - baseWidth/(2*zoom),
		y:      c.Y - baseHeight/(2*zoom),
		zoom:   zoom,
		height: baseHeight,
	}
}

func (v *Viewer) mouseWorld() geom.Vec {
	return geom.FromCP(v.cam.toWorld(ebiten.CursorPosition()))
}

func (v *Viewer) Update() error {
	v.frames++
	v.pollReload()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.paused = !v.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		v.outlines = !v.outlines
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		v.reload("manual")
	}

	v.handleCuts()

	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		v.addMarker(v.mouseWorld())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		n := v.world.CullDynamicGroups(v.spec.Cull.MaxGroups, v.spec.Cull.SettleThreshold)
		v.lastOp = fmt.Sprintf("cull: %d removed", n)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		n := v.world.MakeSleepingDynamicGroupsStatic(v.spec.Petrify.MinSleepSeconds, v.spec.Petrify.SettleThreshold)
		v.lastOp = fmt.Sprintf("petrify: %d converted", n)
	}

	if !v.paused {
		v.world.Step(1.0 / tickRate)
		if v.frames%maintainEvery == 0 {
			v.world.CullDynamicGroups(v.spec.Cull.MaxGroups, v.spec.Cull.SettleThreshold)
			v.world.MakeSleepingDynamicGroupsStatic(v.spec.Petrify.MinSleepSeconds, v.spec.Petrify.SettleThreshold)
		}
	}

	for _, evt := range v.world.Events().Drain() {
		if v.debug {
			log.Printf("terrainview: %s group=%d into=%d", evt.Type, evt.Group, evt.Into)
		}
	}
	return nil
}

func (v *Viewer) handleCuts() {
	cuts := v.spec.Cut
	mouse := v.mouseWorld()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		v.record("disk", v.world.CutDisk(mouse, cuts.DiskRadius, terrain.FilterTerrain))
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		start := mouse.CP()
		v.dragStart = &start
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight) && v.dragStart != nil {
		start := geom.FromCP(*v.dragStart)
		v.dragStart = nil
		v.record("line", v.world.CutLine(start, mouse, cuts.LineRadius, terrain.FilterTerrain))
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.seed++
		params := geom.CrackParams{
			Spokes:   cuts.Crack.Spokes,
			Rings:    cuts.Crack.Rings,
			Variance: cuts.Crack.Variance,
			Seed:     v.seed,
		}
		v.record("crack", v.world.CutRadialCrack(mouse, 2*cuts.DiskRadius, params, terrain.FilterTerrain))
	}
}

func (v *Viewer) record(op string, result terrain.CutResult) {
	v.lastCut = v.world.LastCutReport()
	v.lastOp = fmt.Sprintf("%s: %s", op, result)
	if v.debug {
		log.Printf("terrainview: %s cut removed %.1f, debris %.1f, %d shapes, +%d/-%d groups",
			op, v.lastCut.RemovedArea, v.lastCut.DebrisArea, v.lastCut.ShapesCut, len(v.lastCut.Created), len(v.lastCut.Destroyed))
	}
}

func (v *Viewer) addMarker(p geom.Vec) {
	m := &marker{}
	m.att = &terrain.Attachment{
		OnOrphaned: func(*terrain.Attachment) {
			m.orphaned = true
		},
	}
	if !v.world.AddAttachment(m.att, p) {
		v.lastOp = "attach: nothing under cursor"
		return
	}
	v.markers = append(v.markers, m)
	v.lastOp = fmt.Sprintf("attach: group %d", m.att.Group())
}

// pollReload drains the watcher without blocking the frame.
func (v *Viewer) pollReload() {
	if v.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-v.watcher.Events:
			if !ok {
				v.watcher = nil
				return
			}
			v.reload(name)
		case err, ok := <-v.watcher.Errors:
			if ok {
				log.Printf("terrainview: watcher: %v", err)
			}
			return
		default:
			return
		}
	}
}

func (v *Viewer) reload(reason string) {
	if err := v.load(); err != nil {
		log.Printf("terrainview: reload after %s failed: %v", reason, err)
		return
	}
	log.Printf("terrainview: reloaded after %s", reason)
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Lightsteelblue)

	drawer := &terrainDrawer{screen: screen, world: v.world, cam: v.cam, outlines: v.outlines}
	cp.DrawSpace(v.world.Space(), drawer)

	for _, e := range v.world.Elements() {
		x, y := v.cam.toScreen(e.Pos.CP())
		vector.StrokeRect(screen, x-3, y-3, 6, 6, 1, colornames.Gold, false)
	}
	for _, m := range v.markers {
		x, y := v.cam.toScreen(m.att.WorldPosition().CP())
		var c color.Color = colornames.Limegreen
		if m.orphaned {
			c = colornames.Crimson
		}
		vector.FillCircle(screen, x, y, 4, c, false)
	}
	if v.dragStart != nil {
		x1, y1 := v.cam.toScreen(*v.dragStart)
		x2, y2 := ebiten.CursorPosition()
		vector.StrokeLine(screen, x1, y1, float32(x2), float32(y2), 1, colornames.White, false)
	}

	hud := fmt.Sprintf("FPS: %.2f  groups: %d (%d dynamic)  area: %.0f  attachments: %d\n%s\n"+
		"LMB disk  RMB drag line  R crack  A attach  C cull  P petrify  Space pause  F1 outlines  F5 reload",
		ebiten.ActualFPS(), len(v.world.Groups()), v.world.DynamicGroupCount(), v.world.TotalArea(),
		v.world.AttachmentCount(), v.lastOp)
	if v.paused {
		hud += "\n[paused]"
	}
	ebitenutil.DebugPrint(screen, hud)
}

func (v *Viewer) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
