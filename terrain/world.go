package terrain

import (
	"errors"
	"log"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/terrain/common"
	"github.com/milk9111/terrain/geom"
)

// ErrAlreadyBuilt is returned by a second Build on the same World.
var ErrAlreadyBuilt = errors.New("terrain: world already built")

// Config tunes a World. Zero fields take their defaults.
type Config struct {
	// Gravity and Iterations configure the space NewWorld creates. A space
	// passed to NewWorld keeps its own settings.
	Gravity    float64
	Iterations uint
	// MaxTileExtent is the tile size used by World.Partition.
	MaxTileExtent float64
	// TouchTolerance is the gap under which two shapes count as connected.
	TouchTolerance float64
	DiskSegments   int
	// MinSurfaceArea is the floor below which cut fragments become debris.
	MinSurfaceArea float64
	// SpeedHistory is the number of speed samples kept per dynamic group.
	SpeedHistory int
	Materials    map[string]*Material
	Debug        bool
}

func DefaultConfig() Config {
	return Config{
		Gravity:        common.DefaultGravity,
		Iterations:     20,
		MaxTileExtent:  common.DefaultTileExtent,
		TouchTolerance: common.DefaultTouchTolerance,
		DiskSegments:   common.DefaultDiskSegments,
		MinSurfaceArea: 1,
		SpeedHistory:   240,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Gravity == 0 {
		c.Gravity = d.Gravity
	}
	if c.Iterations == 0 {
		c.Iterations = d.Iterations
	}
	if c.MaxTileExtent <= 0 {
		c.MaxTileExtent = d.MaxTileExtent
	}
	if c.TouchTolerance <= 0 {
		c.TouchTolerance = d.TouchTolerance
	}
	if c.DiskSegments < 3 {
		c.DiskSegments = d.DiskSegments
	}
	if c.MinSurfaceArea < 0 {
		c.MinSurfaceArea = 0
	}
	if c.SpeedHistory <= 0 {
		c.SpeedHistory = d.SpeedHistory
	}
	if c.Materials == nil {
		c.Materials = map[string]*Material{}
	}
	return c
}

// World owns every group, shape and anchor of one terrain, plus the Chipmunk
// objects backing them. It is the only type game code needs to touch.
type World struct {
	cfg     Config
	phys    *physics
	handles handleStore
	groups  sparseSet[*Group]
	anchors []*Anchor

	elements     map[string]*elementEntry
	elementOrder []string
	attachments  *attachmentRegistry
	events       EventQueue

	built       bool
	nextShapeID uint64
	nextSeq     uint64
	lastCut     CutReport
}

// NewWorld wraps an existing space, or creates one from cfg when space is
// nil. A caller-owned space is never reconfigured, so cfg.Gravity and
// cfg.Iterations only apply to the space created here.
func NewWorld(space *cp.Space, cfg Config) *World {
	cfg = cfg.withDefaults()
	if space == nil {
		space = cp.NewSpace()
		space.Iterations = cfg.Iterations
		space.SetGravity(cp.Vector{X: 0, Y: cfg.Gravity})
	}
	w := &World{
		cfg:      cfg,
		phys:     newPhysics(space),
		elements: make(map[string]*elementEntry),
	}
	w.attachments = newAttachmentRegistry(w.groupByHandle, &w.events)
	return w
}

func (w *World) Space() *cp.Space {
	return w.phys.space
}

func (w *World) Config() Config {
	return w.cfg
}

// Events returns the queue of group lifecycle events.
func (w *World) Events() *EventQueue {
	return &w.events
}

// Materials returns the named materials LoadSvg resolves against.
func (w *World) Materials() map[string]*Material {
	return w.cfg.Materials
}

func (w *World) Anchors() []*Anchor {
	return w.anchors
}

func (w *World) Built() bool {
	return w.built
}

// Group resolves a handle. It returns nil once the group is gone.
func (w *World) Group(h GroupHandle) *Group {
	return w.groupByHandle(h)
}

func (w *World) groupByHandle(h GroupHandle) *Group {
	if !w.handles.isAlive(h) {
		return nil
	}
	g, ok := w.groups.get(h.id())
	if !ok {
		return nil
	}
	return g
}

// Groups returns the live groups ordered by creation.
func (w *World) Groups() []*Group {
	out := make([]*Group, len(w.groups.values()))
	copy(out, w.groups.values())
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (w *World) DynamicGroupCount() int {
	n := 0
	for _, g := range w.groups.values() {
		if g.dynamic {
			n++
		}
	}
	return n
}

// TotalArea sums the area of every live shape.
func (w *World) TotalArea() float64 {
	var a float64
	for _, g := range w.groups.values() {
		a += g.Area()
	}
	return a
}

// ShapeOf maps a Chipmunk shape back to the terrain shape that owns it.
func (w *World) ShapeOf(shape *cp.Shape) (*Shape, bool) {
	s, ok := w.phys.shapeOwner[shape]
	return s, ok
}

// AnchorOf maps a Chipmunk sensor back to its anchor.
func (w *World) AnchorOf(shape *cp.Shape) (*Anchor, bool) {
	a, ok := w.phys.anchorOf[shape]
	return a, ok
}

// GroupAt returns the group whose shape contains p.
func (w *World) GroupAt(p geom.Vec) (*Group, bool) {
	s := w.shapeAt(p)
	if s == nil {
		return nil, false
	}
	return s.group, true
}

func (w *World) shapeAt(p geom.Vec) *Shape {
	tol := w.cfg.TouchTolerance
	bb := geom.BB{L: p.X, B: p.Y, R: p.X, T: p.Y}.Grow(tol)
	for _, s := range w.phys.queryShapes(bb, FilterAll) {
		if s.WorldPolygon().Contains(p, common.Epsilon) {
			return s
		}
	}
	return nil
}

// piece is one convex polygon in world space waiting to become a Shape.
type piece struct {
	poly     geom.Polygon
	material *Material
	hardness uint8
	dynamic  bool
	tile     int
	// src is the live shape the piece was copied from, nil for new geometry.
	src *Shape
}

// Build turns authored shapes, anchors and elements into groups. Shapes
// that touch are grouped together when they share a tile and a Dynamic
// flag. Without anchors every non-dynamic group is static; with anchors a
// group is static only when it touches an anchor, or touches another static
// group across a tile border.
func (w *World) Build(shapes []ShapeDef, anchors []AnchorDef, elements []Element) error {
	if w.built {
		return ErrAlreadyBuilt
	}
	w.phys.mustBeUnlocked("Build")
	w.built = true

	for _, def := range anchors {
		region := def.Region.Normalized()
		if region.Area() <= common.Epsilon {
			continue
		}
		m := def.Material
		if m == nil {
			m = DefaultAnchorMaterial()
		}
		a := &Anchor{name: def.Name, material: m, bb: geom.EmptyBB()}
		a.parts = geom.ConvexDecompose(region)
		for _, part := range a.parts {
			a.bb = a.bb.Union(part.BB())
		}
		w.phys.attachAnchor(a)
		w.anchors = append(w.anchors, a)
	}

	var pieces []piece
	for _, def := range shapes {
		region := def.Region.Normalized()
		if region.Area() <= common.Epsilon {
			if w.cfg.Debug {
				log.Printf("World: Build skipped degenerate shape %q", def.Name)
			}
			continue
		}
		for _, part := range geom.ConvexDecompose(region) {
			pieces = append(pieces, piece{
				poly:     part,
				material: def.material(),
				hardness: def.hardness(),
				dynamic:  def.Dynamic,
				tile:     def.Tile,
			})
		}
	}

	polys := make([]geom.Polygon, len(pieces))
	for i, p := range pieces {
		polys[i] = p.poly
	}
	gr := buildGraph(polys, w.cfg.TouchTolerance)
	comps := gr.components(func(i, j int) bool {
		return pieces[i].tile == pieces[j].tile && pieces[i].dynamic == pieces[j].dynamic
	})

	compOf := make([]int, len(pieces))
	for c, comp := range comps {
		for _, i := range comp {
			compOf[i] = c
		}
	}
	static := make([]bool, len(comps))
	var queue []int
	for c, comp := range comps {
		if pieces[comp[0]].dynamic {
			continue
		}
		if len(w.anchors) == 0 || w.touchesAnchor(gr, comp) {
			static[c] = true
			queue = append(queue, c)
		}
	}
	// static spreads across tile borders to touching non-dynamic components
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, i := range comps[c] {
			for _, j := range gr.adj[i] {
				o := compOf[j]
				if static[o] || pieces[j].dynamic {
					continue
				}
				static[o] = true
				queue = append(queue, o)
			}
		}
	}

	for c, comp := range comps {
		group := make([]piece, len(comp))
		for k, i := range comp {
			group[k] = pieces[i]
		}
		w.createGroup(group, !static[c], geom.Vec{}, 0)
	}

	for _, e := range elements {
		w.addElement(e)
	}

	if w.cfg.Debug {
		log.Printf("World: Build created %d groups from %d pieces (%d edges, %d anchors, %d elements)",
			w.groups.len(), len(pieces), gr.edgeCount(), len(w.anchors), len(w.elements))
	}
	return nil
}

func (w *World) touchesAnchor(gr *graph, comp []int) bool {
	polys := make([]geom.Polygon, len(comp))
	bb := geom.EmptyBB()
	for k, i := range comp {
		polys[k] = gr.polys[i]
		bb = bb.Union(gr.bbs[i])
	}
	return w.anchored(polys, bb)
}

func (w *World) anchored(polys []geom.Polygon, bb geom.BB) bool {
	for _, a := range w.anchors {
		if a.touches(polys, bb, w.cfg.TouchTolerance) {
			return true
		}
	}
	return false
}

// createGroup allocates a handle, a body and one Shape per piece.
func (w *World) createGroup(pieces []piece, dynamic bool, vel geom.Vec, angVel float64) *Group {
	h := w.handles.create()
	w.nextSeq++
	g := &Group{handle: h, seq: w.nextSeq}
	w.groups.set(h.id(), g)
	w.populate(g, pieces, dynamic, vel, angVel)
	w.events.Push(Event{Type: EventGroupCreated, Group: h})
	if dynamic {
		w.events.Push(Event{Type: EventGroupDynamic, Group: h})
	}
	return g
}

// populate gives an empty group a fresh body and shapes. Dynamic bodies are
// centred on the pieces' centre of mass with zero angle.
func (w *World) populate(g *Group, pieces []piece, dynamic bool, vel geom.Vec, angVel float64) {
	g.dynamic = dynamic
	g.speeds.reset()

	polys := make([]geom.Polygon, len(pieces))
	for i, p := range pieces {
		polys[i] = p.poly
	}
	var origin geom.Vec
	if dynamic {
		origin = centroidOf(polys)
	}
	g.shapes = make([]*Shape, 0, len(pieces))
	for _, p := range pieces {
		g.shapes = append(g.shapes, w.newShape(g, p, origin))
	}

	if dynamic {
		mass, moment := massProperties(g.shapes)
		g.body = w.phys.newDynamicBody(mass, moment, geom.Transform{Pos: origin})
		g.body.SetVelocityVector(vel.CP())
		g.body.SetAngularVelocity(angVel)
	} else {
		g.body = w.phys.newStaticBody()
	}
	for _, s := range g.shapes {
		w.phys.attach(s)
	}
}

func (w *World) newShape(g *Group, p piece, origin geom.Vec) *Shape {
	w.nextShapeID++
	return &Shape{
		id:       w.nextShapeID,
		poly:     p.poly.Translate(origin.Neg()),
		material: p.material,
		hardness: p.hardness,
		group:    g,
	}
}

// clear removes the group's shapes and body from the space, leaving the
// handle alive.
func (w *World) clear(g *Group) {
	for _, s := range g.shapes {
		w.phys.detach(s)
		s.group = nil
	}
	g.shapes = nil
	w.phys.removeBody(g.body)
	g.body = nil
}

// destroyGroup orphans the group's attachments, then frees everything.
func (w *World) destroyGroup(g *Group) {
	w.attachments.groupDestroyed(g.handle)
	w.clear(g)
	w.release(g)
	w.events.Push(Event{Type: EventGroupDestroyed, Group: g.handle})
}

func (w *World) release(g *Group) {
	w.groups.remove(g.handle.id())
	w.handles.destroy(g.handle)
}

// worldPieces returns the group's shapes as world space pieces.
func (w *World) worldPieces(g *Group) []piece {
	xf := g.Transform()
	out := make([]piece, len(g.shapes))
	for i, s := range g.shapes {
		out[i] = piece{poly: xf.ApplyPolygon(s.poly), material: s.material, hardness: s.hardness}
	}
	return out
}

// AddAttachment binds a to the shape under worldPos. It fails, leaving a
// untouched, when no shape contains the point or a is already attached.
func (w *World) AddAttachment(a *Attachment, worldPos geom.Vec) bool {
	if a == nil || a.Attached() {
		return false
	}
	g, ok := w.GroupAt(worldPos)
	if !ok {
		return false
	}
	w.attachments.bind(a, g, worldPos, 0)
	return true
}

// AttachmentCount is the number of live attachments, element bindings
// included.
func (w *World) AttachmentCount() int {
	return w.attachments.count()
}

func (w *World) addElement(e Element) {
	if e.ID == "" {
		return
	}
	entry := &elementEntry{element: e, binding: &Attachment{}}
	if g, ok := w.GroupAt(e.Pos); ok {
		w.attachments.bind(entry.binding, g, e.Pos, 0)
	} else {
		entry.binding.lastPos = e.Pos
	}
	if _, dup := w.elements[e.ID]; !dup {
		w.elementOrder = append(w.elementOrder, e.ID)
	}
	w.elements[e.ID] = entry
}

// GetElementByID returns the element with its current position. Elements
// riding on a group follow it; the rest keep their last known position.
func (w *World) GetElementByID(id string) (Element, bool) {
	entry, ok := w.elements[id]
	if !ok {
		return Element{}, false
	}
	e := entry.element
	e.Pos = entry.position()
	return e, true
}

// Elements returns every element in authoring order.
func (w *World) Elements() []Element {
	out := make([]Element, 0, len(w.elementOrder))
	for _, id := range w.elementOrder {
		if e, ok := w.GetElementByID(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// ElementGroup returns the group an element currently rides on.
func (w *World) ElementGroup(id string) (GroupHandle, bool) {
	entry, ok := w.elements[id]
	if !ok || !entry.binding.Attached() {
		return 0, false
	}
	return entry.binding.Group(), true
}
