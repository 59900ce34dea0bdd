package sched

import (
	"time"

	"github.com/zyedidia/generic/heap"
)

// Handle identifies a scheduled event. The zero Handle is never issued.
type Handle uint64

type entry struct {
	due       time.Time
	seq       uint64
	handle    Handle
	name      string
	fn        func()
	cancelled bool
}

// Queue is the single scheduled-event queue keyed by due time. Events with
// the same due time fire in scheduling order. Cancelled events stay in the
// heap and are skipped when popped.
type Queue struct {
	clock *Clock
	heap  *heap.Heap[*entry]
	live  map[Handle]*entry
	seq   uint64
}

func NewQueue(clock *Clock) *Queue {
	return &Queue{
		clock: clock,
		heap: heap.New[*entry](func(a, b *entry) bool {
			if a.due.Equal(b.due) {
				return a.seq < b.seq
			}
			return a.due.Before(b.due)
		}),
		live: make(map[Handle]*entry),
	}
}

func (q *Queue) Clock() *Clock { return q.clock }

// After schedules fn to run once d of simulated time has elapsed.
func (q *Queue) After(d time.Duration, name string, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	return q.At(q.clock.Now().Add(d), name, fn)
}

// At schedules fn for an absolute simulated time.
func (q *Queue) At(due time.Time, name string, fn func()) Handle {
	q.seq++
	e := &entry{due: due, seq: q.seq, handle: Handle(q.seq), name: name, fn: fn}
	q.heap.Push(e)
	q.live[e.handle] = e
	return e.handle
}

// Cancel prevents a pending event from firing. Returns false if the event
// already fired or was cancelled.
func (q *Queue) Cancel(h Handle) bool {
	e, ok := q.live[h]
	if !ok {
		return false
	}
	e.cancelled = true
	delete(q.live, h)
	return true
}

// Pending reports whether h is still waiting to fire.
func (q *Queue) Pending(h Handle) bool {
	_, ok := q.live[h]
	return ok
}

// DueAt returns the due time of a pending event.
func (q *Queue) DueAt(h Handle) (time.Time, bool) {
	e, ok := q.live[h]
	if !ok {
		return time.Time{}, false
	}
	return e.due, true
}

// Len returns the number of pending events.
func (q *Queue) Len() int { return len(q.live) }

// RunDue fires every event due at or before the clock's current time, in
// (due, scheduling) order, and returns how many fired. Events scheduled by a
// callback that are already due fire within the same call.
func (q *Queue) RunDue() int {
	now := q.clock.Now()
	fired := 0
	for {
		e, ok := q.heap.Peek()
		if !ok || e.due.After(now) {
			return fired
		}
		q.heap.Pop()
		if e.cancelled {
			continue
		}
		delete(q.live, e.handle)
		e.fn()
		fired++
	}
}
