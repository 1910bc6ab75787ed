package terrain

import "strconv"

// GroupHandle is a weak reference to a Group. It packs a slot id with a
// generation so a handle to a destroyed group never resolves to whatever
// reuses the slot.
type GroupHandle uint64

const handleIDBits = 32

func makeHandle(id, gen uint32) GroupHandle {
	return GroupHandle(uint64(gen)<<handleIDBits | uint64(id))
}

func (h GroupHandle) id() uint32 {
	return uint32(h)
}

func (h GroupHandle) generation() uint32 {
	return uint32(uint64(h) >> handleIDBits)
}

func (h GroupHandle) String() string {
	return strconv.FormatUint(uint64(h.id()), 10) + "v" + strconv.FormatUint(uint64(h.generation()), 10)
}

// Valid reports whether h was ever issued. It says nothing about liveness;
// use World.Group for that.
func (h GroupHandle) Valid() bool {
	return h.id() > 0
}

// handleStore tracks slot generations and free slots.
type handleStore struct {
	gen  []uint32
	free []uint32
}

func (s *handleStore) create() GroupHandle {
	var id uint32
	if len(s.free) > 0 {
		id = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		s.gen = append(s.gen, 0)
		id = uint32(len(s.gen))
	}
	return makeHandle(id, s.gen[id-1])
}

func (s *handleStore) destroy(h GroupHandle) bool {
	if !s.isAlive(h) {
		return false
	}
	s.gen[h.id()-1]++
	s.free = append(s.free, h.id())
	return true
}

func (s *handleStore) isAlive(h GroupHandle) bool {
	id := h.id()
	if id == 0 || int(id) > len(s.gen) {
		return false
	}
	return s.gen[id-1] == h.generation()
}
