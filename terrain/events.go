package terrain

// EventType identifies terrain lifecycle events.
type EventType string

const (
	EventGroupCreated     EventType = "group_created"
	EventGroupDestroyed   EventType = "group_destroyed"
	EventGroupDynamic     EventType = "group_dynamic"
	EventGroupPetrified   EventType = "group_petrified"
	EventGroupMerged      EventType = "group_merged"
	EventAttachmentOrphan EventType = "attachment_orphaned"
)

// Event is emitted when the set of groups changes. Into is set for merges.
type Event struct {
	Type  EventType
	Group GroupHandle
	Into  GroupHandle
}

// EventQueue is a simple FIFO queue drained by the game once per tick.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
