package system

import (
	"time"

	"github.com/grokyworld/server/internal/core/event"
	"github.com/grokyworld/server/internal/core/sched"
	coresys "github.com/grokyworld/server/internal/core/system"
	"go.uber.org/zap"
)

// EventDispatchSystem delivers the events emitted during the previous tick.
// Phase 1 (PreUpdate), registered ahead of TimerSystem.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// TimerSystem fires every scheduled event that is due: respawns, chop
// completions, wave spawns, teleports. Phase 1 (PreUpdate).
type TimerSystem struct {
	queue *sched.Queue
	log   *zap.Logger
}

func NewTimerSystem(queue *sched.Queue, log *zap.Logger) *TimerSystem {
	return &TimerSystem{queue: queue, log: log}
}

func (s *TimerSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *TimerSystem) Update(_ time.Duration) {
	if n := s.queue.RunDue(); n > 0 {
		s.log.Debug("timers fired", zap.Int("count", n), zap.Int("pending", s.queue.Len()))
	}
}
