package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/terrain/geom"
)

// Attachment binds a point and rotation to a group's surface. It holds only
// a weak handle to the group; when the group goes away, or the shape under
// the point is cut out, OnOrphaned fires once and the attachment goes quiet.
type Attachment struct {
	OnMoved    func(a *Attachment)
	OnOrphaned func(a *Attachment)

	reg        *attachmentRegistry
	group      GroupHandle
	local      geom.Vec
	localAngle float64
	lastPos    geom.Vec
	lastAngle  float64
	orphaned   bool
}

// Group returns the handle the attachment currently rides on, or zero.
func (a *Attachment) Group() GroupHandle {
	if a.reg == nil {
		return 0
	}
	return a.group
}

func (a *Attachment) Attached() bool {
	return a.reg != nil
}

func (a *Attachment) Orphaned() bool {
	return a.orphaned
}

func (a *Attachment) placement() (geom.Vec, float64) {
	if a.reg != nil {
		if g := a.reg.resolve(a.group); g != nil {
			xf := g.Transform()
			return xf.Apply(a.local), xf.Angle + a.localAngle
		}
	}
	return a.lastPos, a.lastAngle
}

// WorldPosition is the current world position, or the last known one once
// detached or orphaned.
func (a *Attachment) WorldPosition() geom.Vec {
	p, _ := a.placement()
	return p
}

func (a *Attachment) WorldRotation() float64 {
	_, r := a.placement()
	return r
}

// WorldTransform returns the homogeneous 2D matrix of the attachment.
func (a *Attachment) WorldTransform() mgl64.Mat3 {
	p, r := a.placement()
	return geom.Transform{Pos: p, Angle: r}.Mat3()
}

// Detach unbinds the attachment without firing OnOrphaned.
func (a *Attachment) Detach() {
	if a.reg == nil {
		return
	}
	a.reg.unbind(a)
}

const attachmentEpsilon = 1e-6

// attachmentRegistry keeps one observer list per group plus a flat list in
// insertion order for ticking.
type attachmentRegistry struct {
	resolve func(GroupHandle) *Group
	byGroup map[GroupHandle][]*Attachment
	all     []*Attachment
	events  *EventQueue
}

func newAttachmentRegistry(resolve func(GroupHandle) *Group, events *EventQueue) *attachmentRegistry {
	return &attachmentRegistry{
		resolve: resolve,
		byGroup: make(map[GroupHandle][]*Attachment),
		events:  events,
	}
}

func (r *attachmentRegistry) bind(a *Attachment, g *Group, worldPos geom.Vec, worldAngle float64) {
	xf := g.Transform()
	a.reg = r
	a.group = g.handle
	a.local = xf.ApplyInverse(worldPos)
	a.localAngle = worldAngle - xf.Angle
	a.lastPos = worldPos
	a.lastAngle = worldAngle
	a.orphaned = false
	r.byGroup[g.handle] = append(r.byGroup[g.handle], a)
	r.all = append(r.all, a)
}

// rebind moves a to group g keeping its world placement.
func (r *attachmentRegistry) rebind(a *Attachment, g *Group, worldPos geom.Vec, worldAngle float64) {
	r.removeFromGroup(a)
	xf := g.Transform()
	a.group = g.handle
	a.local = xf.ApplyInverse(worldPos)
	a.localAngle = worldAngle - xf.Angle
	r.byGroup[g.handle] = append(r.byGroup[g.handle], a)
}

func (r *attachmentRegistry) unbind(a *Attachment) {
	a.lastPos, a.lastAngle = a.placement()
	r.removeFromGroup(a)
	for i, o := range r.all {
		if o == a {
			r.all = append(r.all[:i], r.all[i+1:]...)
			break
		}
	}
	a.reg = nil
	a.group = 0
}

func (r *attachmentRegistry) removeFromGroup(a *Attachment) {
	list := r.byGroup[a.group]
	for i, o := range list {
		if o == a {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.byGroup, a.group)
	} else {
		r.byGroup[a.group] = list
	}
}

// orphan fires the signal exactly once and detaches.
func (r *attachmentRegistry) orphan(a *Attachment) {
	r.orphanFrom(a, a.group)
}

func (r *attachmentRegistry) orphanFrom(a *Attachment, h GroupHandle) {
	if a.orphaned || a.reg == nil {
		return
	}
	r.unbind(a)
	a.orphaned = true
	r.events.Push(Event{Type: EventAttachmentOrphan, Group: h})
	if a.OnOrphaned != nil {
		a.OnOrphaned(a)
	}
}

func (r *attachmentRegistry) of(h GroupHandle) []*Attachment {
	list := r.byGroup[h]
	out := make([]*Attachment, len(list))
	copy(out, list)
	return out
}

// suspend takes a off its group's list while the group is rebuilt. Until
// it is rebound or orphaned it resolves to its last ticked placement.
func (r *attachmentRegistry) suspend(a *Attachment) {
	r.removeFromGroup(a)
	a.group = 0
}

// orphanAt orphans a suspended attachment that last rode on h, recording
// where it was.
func (r *attachmentRegistry) orphanAt(a *Attachment, h GroupHandle, pos geom.Vec, angle float64) {
	a.lastPos = pos
	a.lastAngle = angle
	r.orphanFrom(a, h)
}

// reassign moves every attachment from one static group to another. Static
// frames are the world frame, so local placements carry over unchanged.
func (r *attachmentRegistry) reassign(from, to GroupHandle) {
	list := r.byGroup[from]
	if len(list) == 0 {
		return
	}
	for _, a := range list {
		a.group = to
	}
	r.byGroup[to] = append(r.byGroup[to], list...)
	delete(r.byGroup, from)
}

// groupDestroyed orphans every attachment observing h. It must run while
// the group can still be resolved so last positions are accurate.
func (r *attachmentRegistry) groupDestroyed(h GroupHandle) {
	for _, a := range r.of(h) {
		r.orphan(a)
	}
}

// tick reports movement since the previous tick.
func (r *attachmentRegistry) tick() {
	for _, a := range append([]*Attachment(nil), r.all...) {
		if a.reg == nil {
			continue
		}
		pos, angle := a.placement()
		moved := pos.DistSq(a.lastPos) > attachmentEpsilon*attachmentEpsilon ||
			math.Abs(angle-a.lastAngle) > attachmentEpsilon
		a.lastPos = pos
		a.lastAngle = angle
		if moved && a.OnMoved != nil {
			a.OnMoved(a)
		}
	}
}

func (r *attachmentRegistry) count() int {
	return len(r.all)
}
