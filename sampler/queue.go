package sampler

import (
	"sync"
	"sync/atomic"
)

const eventQueueSize = 1024

// eventQueue is a fixed ring with many serialised producers and one
// lock-free consumer (the render actor).
type eventQueue struct {
	mu   sync.Mutex
	buf  [eventQueueSize]Event
	head atomic.Uint32 // next slot to read
	tail atomic.Uint32 // next slot to write
}

// push appends ev, returning false when the ring is full.
func (q *eventQueue) push(ev Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	tail := q.tail.Load()
	if tail-q.head.Load() >= eventQueueSize {
		return false
	}
	q.buf[tail%eventQueueSize] = ev
	q.tail.Store(tail + 1)
	return true
}

// pop removes the oldest event. Only the render actor calls it.
func (q *eventQueue) pop() (Event, bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		return Event{}, false
	}
	ev := q.buf[head%eventQueueSize]
	q.head.Store(head + 1)
	return ev, true
}

func (q *eventQueue) len() int {
	return int(q.tail.Load() - q.head.Load())
}
