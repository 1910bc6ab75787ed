package terrain

import (
	"log"
	"sort"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/terrain/common"
	"github.com/milk9111/terrain/geom"
)

// CutResult is a bitmask describing what a cut did.
type CutResult uint8

const CutNone CutResult = 0

const (
	// CutAffectedVoxels is set when at least one shape lost area.
	CutAffectedVoxels CutResult = 1 << iota
	// CutAffectedIslandConnectivity is set when a group split in several or
	// a static group was set free.
	CutAffectedIslandConnectivity
	// CutHitFixedVoxels is set when the cutter overlapped an uncuttable
	// shape.
	CutHitFixedVoxels
)

func (r CutResult) Has(flag CutResult) bool {
	return r&flag == flag
}

func (r CutResult) String() string {
	if r == CutNone {
		return "none"
	}
	var parts []string
	if r.Has(CutAffectedVoxels) {
		parts = append(parts, "voxels")
	}
	if r.Has(CutAffectedIslandConnectivity) {
		parts = append(parts, "islands")
	}
	if r.Has(CutHitFixedVoxels) {
		parts = append(parts, "fixed")
	}
	return strings.Join(parts, "|")
}

// CutReport details the most recent cut.
type CutReport struct {
	Result CutResult
	// RemovedArea is the area inside the cutter.
	RemovedArea float64
	// DebrisArea is the area of fragments dropped as too small to keep.
	DebrisArea float64
	ShapesCut  int
	Created    []GroupHandle
	Destroyed  []GroupHandle
	// Freed lists groups that were static before the cut and are now
	// dynamic, new groups excluded.
	Freed []GroupHandle
}

// LastCutReport returns the report of the most recent cut.
func (w *World) LastCutReport() CutReport {
	return w.lastCut
}

// CutLine removes a capsule of the given radius swept along a-b.
func (w *World) CutLine(a, b geom.Vec, radius float64, filter cp.ShapeFilter) CutResult {
	w.phys.mustBeUnlocked("CutLine")
	if radius <= 0 {
		w.lastCut = CutReport{}
		return CutNone
	}
	capsule := geom.Capsule(a, b, radius, w.cfg.DiskSegments)
	return w.cut([]geom.Polygon{capsule}, capsule.BB(), w.cfg.MinSurfaceArea, filter)
}

// CutDisk removes a disk.
func (w *World) CutDisk(center geom.Vec, radius float64, filter cp.ShapeFilter) CutResult {
	w.phys.mustBeUnlocked("CutDisk")
	if radius <= 0 {
		w.lastCut = CutReport{}
		return CutNone
	}
	disk := geom.Disk(center, radius, w.cfg.DiskSegments)
	return w.cut([]geom.Polygon{disk}, disk.BB(), w.cfg.MinSurfaceArea, filter)
}

// CutPolygon removes an arbitrary simple polygon. bb bounds the broad-phase
// query and defaults to the polygon's box when empty. Fragments left smaller
// than minSurfaceArea are discarded.
func (w *World) CutPolygon(poly geom.Polygon, bb geom.BB, minSurfaceArea float64, filter cp.ShapeFilter) CutResult {
	w.phys.mustBeUnlocked("CutPolygon")
	poly = poly.Clean(common.Epsilon)
	if poly.Degenerate() {
		w.lastCut = CutReport{}
		return CutNone
	}
	if bb.Empty() {
		bb = poly.BB()
	}
	parts := geom.ConvexDecompose(geom.Region{Outer: poly.CCW()})
	return w.cut(parts, bb, minSurfaceArea, filter)
}

// CutRadialCrack removes a jagged star around center, the shape left by a
// shattering impact.
func (w *World) CutRadialCrack(center geom.Vec, radius float64, params geom.CrackParams, filter cp.ShapeFilter) CutResult {
	w.phys.mustBeUnlocked("CutRadialCrack")
	star := geom.RadialCrack(center, radius, params)
	if star.Degenerate() {
		w.lastCut = CutReport{}
		return CutNone
	}
	return w.cut(geom.RadialCrackParts(center, star), star.BB(), w.cfg.MinSurfaceArea, filter)
}

func overlapsAny(p geom.Polygon, parts []geom.Polygon) bool {
	pbb := p.BB()
	for _, part := range parts {
		if pbb.Intersects(part.BB()) && geom.OverlapsConvex(p, part) {
			return true
		}
	}
	return false
}

// cut subtracts convex world space cutter parts from every shape the
// broad phase finds, then re-splits the groups it touched.
func (w *World) cut(parts []geom.Polygon, bb geom.BB, minArea float64, filter cp.ShapeFilter) CutResult {
	report := CutReport{}
	edits := make(map[*Shape][]geom.Polygon)
	var touched []*Group
	seen := make(map[*Group]bool)

	for _, s := range w.phys.queryShapes(bb, filter) {
		world := s.WorldPolygon()
		if !world.BB().Intersects(bb) || !overlapsAny(world, parts) {
			continue
		}
		if w.phys.behaviors.uncuttable(s.material, s.hardness) {
			report.Result |= CutHitFixedVoxels
			continue
		}
		frags, removed := geom.Subtract(world, parts)
		if removed <= common.Epsilon {
			continue
		}
		report.Result |= CutAffectedVoxels
		report.RemovedArea += removed
		report.ShapesCut++

		kept := make([]geom.Polygon, 0, len(frags))
		for _, f := range geom.MergeConvex(frags) {
			if f.Area() <= common.Epsilon {
				report.DebrisArea += f.Area()
				continue
			}
			kept = append(kept, f)
		}
		edits[s] = kept
		if !seen[s.group] {
			seen[s.group] = true
			touched = append(touched, s.group)
		}
	}

	if len(touched) > 0 {
		sort.Slice(touched, func(i, j int) bool { return touched[i].seq < touched[j].seq })
		if w.resplit(touched, edits, minArea, &report) {
			report.Result |= CutAffectedIslandConnectivity
		}
	}
	if w.cfg.Debug && report.Result != CutNone {
		log.Printf("World: cut %s removed %.2f from %d shapes (+%d/-%d groups)",
			report.Result, report.RemovedArea, report.ShapesCut, len(report.Created), len(report.Destroyed))
	}
	w.lastCut = report
	return report.Result
}

type heldAttachment struct {
	a     *Attachment
	pos   geom.Vec
	angle float64
}

// island is one connected component of a touched group after a cut.
type island struct {
	origin *splitOrigin
	pieces []piece
	polys  []geom.Polygon
	bb     geom.BB
	area   float64
	static bool
}

// splitOrigin is the state of a touched group captured before it is
// rebuilt.
type splitOrigin struct {
	group   *Group
	dynamic bool
	vel     geom.Vec
	angVel  float64
	com     geom.Vec
	held    []heldAttachment
	islands []*island
	pieces  int
}

// resplit rebuilds every touched group from its remaining pieces. It reports
// whether island connectivity changed.
func (w *World) resplit(touched []*Group, edits map[*Shape][]geom.Polygon, minArea float64, report *CutReport) bool {
	tol := w.cfg.TouchTolerance
	touchedSet := make(map[*Group]bool, len(touched))
	origins := make([]*splitOrigin, 0, len(touched))
	var islands []*island

	for _, g := range touched {
		touchedSet[g] = true
		o := &splitOrigin{group: g, dynamic: g.dynamic}
		if g.dynamic {
			o.vel = g.Velocity()
			o.angVel = g.AngularVelocity()
			o.com = g.Position()
		}
		for _, a := range w.attachments.of(g.handle) {
			pos, angle := a.placement()
			o.held = append(o.held, heldAttachment{a: a, pos: pos, angle: angle})
		}

		xf := g.Transform()
		var pieces []piece
		for _, s := range g.shapes {
			if frags, ok := edits[s]; ok {
				for _, f := range frags {
					pieces = append(pieces, piece{poly: f, material: s.material, hardness: s.hardness})
				}
				continue
			}
			pieces = append(pieces, piece{poly: xf.ApplyPolygon(s.poly), material: s.material, hardness: s.hardness, src: s})
		}
		o.pieces = len(pieces)
		polys := make([]geom.Polygon, len(pieces))
		for i, p := range pieces {
			polys[i] = p.poly
		}

		for _, comp := range buildGraph(polys, tol).components(nil) {
			isl := &island{origin: o, bb: geom.EmptyBB()}
			floor := minArea
			for _, i := range comp {
				p := pieces[i]
				isl.pieces = append(isl.pieces, p)
				isl.polys = append(isl.polys, p.poly)
				isl.bb = isl.bb.Union(p.poly.BB())
				isl.area += p.poly.Area()
				if p.material.MinSurfaceArea > floor {
					floor = p.material.MinSurfaceArea
				}
			}
			if isl.area <= common.Epsilon || isl.area < floor {
				report.DebrisArea += isl.area
				continue
			}
			o.islands = append(o.islands, isl)
			islands = append(islands, isl)
		}
		origins = append(origins, o)
	}

	for _, isl := range islands {
		switch {
		case w.anchored(isl.polys, isl.bb):
			isl.static = true
		case isl.origin.dynamic:
		case len(w.anchors) == 0 && len(isl.origin.islands) == 1:
			// nothing pins an anchorless world, so an unsplit group stays put
			isl.static = true
		case w.touchesStaticGroup(isl, touchedSet):
			isl.static = true
		}
	}
	for changed := true; changed; {
		changed = false
		for _, isl := range islands {
			if isl.static || isl.origin.dynamic {
				continue
			}
			for _, other := range islands {
				if other == isl || !other.static {
					continue
				}
				if polysTouch(isl.polys, isl.bb, other.polys, other.bb, tol) {
					isl.static = true
					changed = true
					break
				}
			}
		}
	}

	islandsChanged := false
	for _, o := range origins {
		g := o.group
		if isl := o.unsplit(); isl != nil {
			w.reshape(g, isl, o.held)
			continue
		}
		for _, h := range o.held {
			w.attachments.suspend(h.a)
		}
		w.clear(g)

		if len(o.islands) == 0 {
			for _, h := range o.held {
				w.attachments.orphanAt(h.a, g.handle, h.pos, h.angle)
			}
			w.release(g)
			w.events.Push(Event{Type: EventGroupDestroyed, Group: g.handle})
			report.Destroyed = append(report.Destroyed, g.handle)
			continue
		}

		keep := o.keeper()
		results := make([]*Group, 0, len(o.islands))
		for _, isl := range o.islands {
			dynamic := !isl.static
			vel, angVel := o.inherited(isl)
			if dynamic && !o.dynamic {
				islandsChanged = true
			}
			if isl != keep {
				ng := w.createGroup(isl.pieces, dynamic, vel, angVel)
				report.Created = append(report.Created, ng.handle)
				results = append(results, ng)
				continue
			}
			w.populate(g, isl.pieces, dynamic, vel, angVel)
			switch {
			case dynamic && !o.dynamic:
				w.events.Push(Event{Type: EventGroupDynamic, Group: g.handle})
				report.Freed = append(report.Freed, g.handle)
			case !dynamic && o.dynamic:
				w.events.Push(Event{Type: EventGroupPetrified, Group: g.handle})
			}
			results = append(results, g)
		}
		if len(o.islands) > 1 {
			islandsChanged = true
		}

		for _, h := range o.held {
			if target := groupContaining(results, h.pos, tol); target != nil {
				w.attachments.rebind(h.a, target, h.pos, h.angle)
				continue
			}
			w.attachments.orphanAt(h.a, g.handle, h.pos, h.angle)
		}
	}
	return islandsChanged
}

// unsplit returns the single island of a static origin that stays static
// and lost no piece to debris. Dynamic origins always rebuild since their
// centre of mass moves.
func (o *splitOrigin) unsplit() *island {
	if o.dynamic || len(o.islands) != 1 {
		return nil
	}
	isl := o.islands[0]
	if !isl.static || len(isl.pieces) != o.pieces {
		return nil
	}
	return isl
}

// reshape swaps the edited shapes of a static group for their fragments in
// place. The body, the handle and every untouched shape survive. Static
// frames are the world frame, so attachments keep their placement unless
// the ground under them was cut away.
func (w *World) reshape(g *Group, isl *island, held []heldAttachment) {
	keep := make(map[*Shape]bool, len(isl.pieces))
	var fresh []piece
	for _, p := range isl.pieces {
		if p.src != nil {
			keep[p.src] = true
			continue
		}
		fresh = append(fresh, p)
	}
	shapes := g.shapes[:0]
	for _, s := range g.shapes {
		if keep[s] {
			shapes = append(shapes, s)
			continue
		}
		w.phys.detach(s)
		s.group = nil
	}
	g.shapes = shapes
	for _, p := range fresh {
		s := w.newShape(g, p, geom.Vec{})
		g.shapes = append(g.shapes, s)
		w.phys.attach(s)
	}
	for _, h := range held {
		if g.shapeAt(h.pos, w.cfg.TouchTolerance) == nil {
			w.attachments.orphanAt(h.a, g.handle, h.pos, h.angle)
		}
	}
}

// keeper picks the island that keeps the original handle: the largest one
// whose kind did not change, else the largest.
func (o *splitOrigin) keeper() *island {
	var same, largest *island
	for _, isl := range o.islands {
		if largest == nil || isl.area > largest.area {
			largest = isl
		}
		if isl.static == !o.dynamic && (same == nil || isl.area > same.area) {
			same = isl
		}
	}
	if same != nil {
		return same
	}
	return largest
}

// inherited is the velocity a piece of the origin carries away: zero for a
// static origin, the rigid body velocity at the piece's centre otherwise.
func (o *splitOrigin) inherited(isl *island) (geom.Vec, float64) {
	if !o.dynamic || isl.static {
		return geom.Vec{}, 0
	}
	r := centroidOf(isl.polys).Sub(o.com)
	return o.vel.Add(geom.Vec{X: -o.angVel * r.Y, Y: o.angVel * r.X}), o.angVel
}

// touchesStaticGroup reports whether the island touches a static group the
// cut left alone.
func (w *World) touchesStaticGroup(isl *island, touched map[*Group]bool) bool {
	tol := w.cfg.TouchTolerance
	for _, s := range w.phys.queryShapes(isl.bb.Grow(tol), FilterAll) {
		g := s.group
		if g == nil || g.dynamic || touched[g] {
			continue
		}
		for _, p := range isl.polys {
			if geom.Touching(p, s.poly, tol) {
				return true
			}
		}
	}
	return false
}

func groupContaining(groups []*Group, p geom.Vec, tol float64) *Group {
	for _, g := range groups {
		if g.shapeAt(p, tol) != nil {
			return g
		}
	}
	return nil
}
