package system

import (
	"time"

	"github.com/grokyworld/server/internal/core/event"
	coresys "github.com/grokyworld/server/internal/core/system"
	"github.com/grokyworld/server/internal/handler"
	"github.com/grokyworld/server/internal/persist"
	"go.uber.org/zap"
)

// JournalSink accepts journal entries without blocking.
type JournalSink interface {
	Enqueue(e persist.JournalEntry) bool
}

// PersistenceSystem turns purchases and quest turn-ins into journal entries
// and hands them to the background writer once per tick. Without a sink the
// entries are only logged. Phase 5 (Persist).
type PersistenceSystem struct {
	sink    JournalSink
	pending []persist.JournalEntry
	log     *zap.Logger
}

func NewPersistenceSystem(deps *handler.Deps, sink JournalSink) *PersistenceSystem {
	s := &PersistenceSystem{sink: sink, log: deps.Log}
	event.Subscribe(deps.Bus, func(ev event.ItemPurchased) {
		s.pending = append(s.pending, persist.JournalEntry{
			Kind: persist.JournalPurchase, Subject: ev.Item, Detail: ev.Cost, At: deps.Now(),
		})
	})
	event.Subscribe(deps.Bus, func(ev event.QuestCompleted) {
		s.pending = append(s.pending, persist.JournalEntry{
			Kind: persist.JournalQuest, Subject: ev.Quest, Detail: ev.Reward, At: deps.Now(),
		})
	})
	return s
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	if len(s.pending) == 0 {
		return
	}
	for _, e := range s.pending {
		if s.sink == nil {
			s.log.Debug("journal entry (no database)", zap.String("kind", e.Kind), zap.String("subject", e.Subject))
			continue
		}
		s.sink.Enqueue(e)
	}
	s.pending = s.pending[:0]
}
