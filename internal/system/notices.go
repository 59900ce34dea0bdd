package system

import (
	"time"

	"github.com/grokyworld/server/internal/core/event"
	"github.com/grokyworld/server/internal/core/sched"
)

type notice struct {
	text  string
	until time.Time
}

// NoticeBoard keeps transient messages until their TTL passes.
type NoticeBoard struct {
	clock *sched.Clock
	ttl   time.Duration
	items []notice
}

func NewNoticeBoard(bus *event.Bus, clock *sched.Clock, ttl time.Duration) *NoticeBoard {
	b := &NoticeBoard{clock: clock, ttl: ttl}
	event.Subscribe(bus, func(n event.Notice) { b.Push(n.Text) })
	return b
}

func (b *NoticeBoard) Push(text string) {
	b.items = append(b.items, notice{text: text, until: b.clock.Now().Add(b.ttl)})
}

// Active drops expired notices and returns the rest, oldest first.
func (b *NoticeBoard) Active(now time.Time) []string {
	kept := b.items[:0]
	for _, n := range b.items {
		if now.Before(n.until) {
			kept = append(kept, n)
		}
	}
	b.items = kept
	if len(kept) == 0 {
		return nil
	}
	out := make([]string, len(kept))
	for i, n := range kept {
		out[i] = n.text
	}
	return out
}
