package simulation

import (
	"container/heap"
	"fmt"
)

// AnyTime matches pending events regardless of their scheduled time.
const AnyTime float64 = -1

// Queue is the deterministic event queue: a min-heap ordered by scheduled
// time, then priority class, then insertion sequence. The insertion sequence
// guarantees FIFO tie-breaking among equal time and priority, which makes
// replays reproducible. The queue never mutates the environment; the
// reference only serves convenience lookups by event constructors.
type Queue struct {
	env   *Environment
	items queueItems
	seq   uint64
}

// NewQueue creates an empty queue bound to the environment.
func NewQueue(env *Environment) *Queue {
	return &Queue{env: env}
}

// Env returns the environment the queue schedules for.
func (q *Queue) Env() *Environment { return q.env }

// IsEmpty reports whether no event is pending.
func (q *Queue) IsEmpty() bool { return len(q.items) == 0 }

// Len returns the number of pending events.
func (q *Queue) Len() int { return len(q.items) }

// Push stamps the event with the next insertion sequence and schedules it.
func (q *Queue) Push(ev Event) {
	heap.Push(&q.items, &queueItem{event: ev, seq: q.seq})
	q.seq++
}

// Pop removes and returns the next event. Popping an empty queue is an error;
// callers must check IsEmpty first.
func (q *Queue) Pop() (Event, error) {
	if len(q.items) == 0 {
		return nil, fmt.Errorf("pop from empty event queue")
	}
	item := heap.Pop(&q.items).(*queueItem)
	return item.event, nil
}

// IsEventInQueue reports whether a pending event matches the given name, the
// given time (AnyTime matches all) and the given owner (empty matches all;
// only owned events and events attached to a lifecycle machine have an
// owner).
func (q *Queue) IsEventInQueue(name string, at float64, owner string) bool {
	for _, item := range q.items {
		if item.event.Name() != name {
			continue
		}
		if at != AnyTime && item.event.Time() != at {
			continue
		}
		if owner != "" && eventOwner(item.event) != owner {
			continue
		}
		return true
	}
	return false
}

func eventOwner(ev Event) string {
	switch e := ev.(type) {
	case OwnedEvent:
		return e.Owner()
	case ActionableEvent:
		return e.Machine().Owner()
	}
	return ""
}

type queueItem struct {
	event Event
	seq   uint64
}

type queueItems []*queueItem

func (h queueItems) Len() int { return len(h) }

func (h queueItems) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.event.Time() != b.event.Time() {
		return a.event.Time() < b.event.Time()
	}
	if a.event.Priority() != b.event.Priority() {
		return a.event.Priority() < b.event.Priority()
	}
	return a.seq < b.seq
}

func (h queueItems) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *queueItems) Push(x any) { *h = append(*h, x.(*queueItem)) }

func (h *queueItems) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
