package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueue() (*Queue, *Clock) {
	c := NewClock(time.Unix(0, 0))
	return NewQueue(c), c
}

func TestRunDueOrder(t *testing.T) {
	q, c := newQueue()
	var got []string
	q.After(2*time.Second, "b", func() { got = append(got, "b") })
	q.After(time.Second, "a", func() { got = append(got, "a") })
	q.After(2*time.Second, "c", func() { got = append(got, "c") })

	assert.Equal(t, 0, q.RunDue())

	c.Advance(1999 * time.Millisecond)
	assert.Equal(t, 1, q.RunDue())

	c.Advance(time.Millisecond)
	assert.Equal(t, 2, q.RunDue())
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 0, q.Len())
}

func TestCancelledEventNeverFires(t *testing.T) {
	q, c := newQueue()
	fired := false
	h := q.After(time.Second, "chop", func() { fired = true })
	require.True(t, q.Pending(h))

	assert.True(t, q.Cancel(h))
	assert.False(t, q.Cancel(h))
	assert.False(t, q.Pending(h))

	c.Advance(time.Minute)
	q.RunDue()
	assert.False(t, fired)
}

func TestCallbackMayScheduleDueWork(t *testing.T) {
	q, c := newQueue()
	var got []int
	q.After(time.Second, "outer", func() {
		got = append(got, 1)
		q.After(0, "inner", func() { got = append(got, 2) })
		q.After(time.Second, "later", func() { got = append(got, 3) })
	})

	c.Advance(time.Second)
	assert.Equal(t, 2, q.RunDue())
	assert.Equal(t, []int{1, 2}, got)

	due, ok := q.DueAt(Handle(3))
	require.True(t, ok)
	assert.Equal(t, c.Now().Add(time.Second), due)
}
