package system

import (
	"sync/atomic"
	"time"

	"github.com/grokyworld/server/internal/core/event"
	coresys "github.com/grokyworld/server/internal/core/system"
	"github.com/grokyworld/server/internal/handler"
	"github.com/grokyworld/server/internal/world"
)

// OutboundEvent is a domain event as sent to observers.
type OutboundEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Publisher receives every published snapshot with the events collected
// since the previous one. Publish is called from the game loop and must not
// block.
type Publisher interface {
	Publish(snap *world.Snapshot, events []OutboundEvent)
}

// OutputSystem builds a read-only snapshot every PublishInterval, keeps the
// latest one for concurrent readers and hands it to publishers.
// Phase 4 (Output).
type OutputSystem struct {
	deps         *handler.Deps
	interactions *InteractionSystem
	notices      *NoticeBoard
	publishers   []Publisher
	latest       atomic.Pointer[world.Snapshot]
	pending      []OutboundEvent
	acc          time.Duration
}

func NewOutputSystem(deps *handler.Deps, interactions *InteractionSystem, notices *NoticeBoard) *OutputSystem {
	s := &OutputSystem{deps: deps, interactions: interactions, notices: notices}
	collect[event.EntitySpawned](s, "entity_spawned")
	collect[event.EntityKilled](s, "entity_killed")
	collect[event.EntityDamaged](s, "entity_damaged")
	collect[event.PlayerDamaged](s, "player_damaged")
	collect[event.PlayerDied](s, "player_died")
	collect[event.PlayerRevived](s, "player_revived")
	collect[event.LevelChanged](s, "level_changed")
	collect[event.ItemCredited](s, "item_credited")
	collect[event.ItemPurchased](s, "item_purchased")
	collect[event.QuestCompleted](s, "quest_completed")
	collect[event.WaveAdvanced](s, "wave_advanced")
	collect[event.LevelCompleted](s, "level_completed")
	collect[event.InteractionEnded](s, "interaction_ended")
	return s
}

func collect[T any](s *OutputSystem, name string) {
	event.Subscribe(s.deps.Bus, func(ev T) {
		s.pending = append(s.pending, OutboundEvent{Type: name, Data: ev})
	})
}

// AddPublisher registers an observer. Call before the loop starts.
func (s *OutputSystem) AddPublisher(p Publisher) {
	s.publishers = append(s.publishers, p)
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(dt time.Duration) {
	s.acc += dt
	if s.acc < s.deps.Config.Simulation.PublishInterval && s.latest.Load() != nil {
		return
	}
	s.acc = 0
	snap := s.Build()
	s.latest.Store(snap)

	events := s.pending
	s.pending = nil
	for _, p := range s.publishers {
		p.Publish(snap, events)
	}
}

// Build assembles a fresh snapshot from the live state.
func (s *OutputSystem) Build() *world.Snapshot {
	now := s.deps.Now()
	snap := s.deps.World.Snapshot(now)
	snap.Interaction = s.interactions.View(now)
	snap.Notices = s.notices.Active(now)
	for key, typ := range snap.Objects {
		if m := s.interactions.QuestMarker(typ); m != "" {
			if snap.QuestMarkers == nil {
				snap.QuestMarkers = make(map[string]string)
			}
			snap.QuestMarkers[key] = m
		}
	}
	return &snap
}

// Latest returns the most recently published snapshot. Safe to call from
// any goroutine.
func (s *OutputSystem) Latest() *world.Snapshot { return s.latest.Load() }
