package terrain

import "github.com/milk9111/terrain/geom"

// Element is a named point of interest embedded in the source geometry. It
// rides along with the group it was authored inside but takes no part in
// physics.
type Element struct {
	ID    string
	Pos   geom.Vec
	Props map[string]string
}

type elementEntry struct {
	element Element
	binding *Attachment
}

// position is the binding's placement; a binding that lost its group keeps
// the last position it saw.
func (e *elementEntry) position() geom.Vec {
	return e.binding.WorldPosition()
}
