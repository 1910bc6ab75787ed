package terrain

import (
	"log"
	"sort"

	"github.com/milk9111/terrain/geom"
)

// Step advances the physics space by dt and then runs Update.
func (w *World) Step(dt float64) {
	w.phys.mustBeUnlocked("Step")
	w.phys.locked(func() { w.phys.space.Step(dt) })
	w.Update(dt)
}

// StepLocked runs fn, typically the game's own space.Step, with the terrain
// treating the space as locked. Cuts, Build, culling and petrification
// called from inside fn (from collision handlers, say) panic. Call Update
// afterwards.
func (w *World) StepLocked(fn func()) {
	w.phys.locked(fn)
}

// Update samples group speeds and notifies attachments that moved. Call it
// once per tick after stepping the space yourself.
func (w *World) Update(dt float64) {
	for _, g := range w.groups.values() {
		if g.dynamic {
			g.speeds.add(dt, g.Speed(), w.cfg.SpeedHistory)
		}
	}
	w.attachments.tick()
}

// CullDynamicGroups deletes settled dynamic groups, oldest first, until at
// most maxGroups dynamic groups remain. Only groups whose speed is below
// settleThreshold are candidates. Attachments riding on a culled group are
// orphaned before it goes. It returns the number removed.
func (w *World) CullDynamicGroups(maxGroups int, settleThreshold float64) int {
	w.phys.mustBeUnlocked("CullDynamicGroups")
	if maxGroups < 0 {
		maxGroups = 0
	}
	var live, settled []*Group
	for _, g := range w.groups.values() {
		if !g.dynamic {
			continue
		}
		live = append(live, g)
		if g.Speed() < settleThreshold {
			settled = append(settled, g)
		}
	}
	excess := len(live) - maxGroups
	if excess <= 0 {
		return 0
	}
	sort.Slice(settled, func(i, j int) bool {
		if settled[i].seq != settled[j].seq {
			return settled[i].seq < settled[j].seq
		}
		return settled[i].Speed() < settled[j].Speed()
	})
	if excess > len(settled) {
		excess = len(settled)
	}
	for _, g := range settled[:excess] {
		w.destroyGroup(g)
	}
	if w.cfg.Debug && excess > 0 {
		log.Printf("World: culled %d dynamic groups (%d live, cap %d)", excess, len(live), maxGroups)
	}
	return excess
}

// MakeSleepingDynamicGroupsStatic petrifies dynamic groups that have stayed
// below settleThreshold for at least minSleepSeconds. Their shapes become
// static geometry at their current world placement and merge into any
// static group they touch. It returns the number converted.
func (w *World) MakeSleepingDynamicGroupsStatic(minSleepSeconds, settleThreshold float64) int {
	w.phys.mustBeUnlocked("MakeSleepingDynamicGroupsStatic")
	var sleepers []*Group
	for _, g := range w.groups.values() {
		if !g.dynamic || g.Speed() >= settleThreshold {
			continue
		}
		if g.speeds.stillFor(settleThreshold) >= minSleepSeconds {
			sleepers = append(sleepers, g)
		}
	}
	sort.Slice(sleepers, func(i, j int) bool { return sleepers[i].seq < sleepers[j].seq })

	for _, g := range sleepers {
		w.petrify(g)
	}
	if w.cfg.Debug && len(sleepers) > 0 {
		log.Printf("World: petrified %d dynamic groups", len(sleepers))
	}
	return len(sleepers)
}

// petrify freezes g in place and merges it with the static groups it
// touches. The oldest of them absorbs the rest.
func (w *World) petrify(g *Group) {
	var held []heldAttachment
	for _, a := range w.attachments.of(g.handle) {
		pos, angle := a.placement()
		held = append(held, heldAttachment{a: a, pos: pos, angle: angle})
		w.attachments.suspend(a)
	}
	pieces := w.worldPieces(g)
	w.clear(g)
	w.populate(g, pieces, false, geom.Vec{}, 0)
	for _, h := range held {
		w.attachments.rebind(h.a, g, h.pos, h.angle)
	}
	w.events.Push(Event{Type: EventGroupPetrified, Group: g.handle})

	merged := append([]*Group{g}, w.touchingStaticGroups(g)...)
	if len(merged) == 1 {
		return
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].seq < merged[j].seq })
	into := merged[0]
	for _, other := range merged[1:] {
		w.mergeStatic(other, into)
	}
}

func (w *World) touchingStaticGroups(g *Group) []*Group {
	tol := w.cfg.TouchTolerance
	polys := g.localPolygons()
	bb := bbOf(polys)
	seen := map[*Group]bool{g: true}
	var out []*Group
	for _, s := range w.phys.queryShapes(bb.Grow(tol), FilterAll) {
		o := s.group
		if o == nil || o.dynamic || seen[o] {
			continue
		}
		if polysTouch(polys, bb, []geom.Polygon{s.poly}, s.poly.BB(), tol) {
			seen[o] = true
			out = append(out, o)
		}
	}
	return out
}

// mergeStatic moves every shape of from onto into's static body and retires
// from's handle. Attachments follow without being orphaned.
func (w *World) mergeStatic(from, into *Group) {
	for _, s := range from.shapes {
		w.phys.detach(s)
		s.group = into
		into.shapes = append(into.shapes, s)
		w.phys.attach(s)
	}
	from.shapes = nil
	w.phys.removeBody(from.body)
	from.body = nil
	w.attachments.reassign(from.handle, into.handle)
	w.release(from)
	w.events.Push(Event{Type: EventGroupMerged, Group: from.handle, Into: into.handle})
}
