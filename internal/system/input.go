package system

import (
	"time"

	coresys "github.com/grokyworld/server/internal/core/system"
	"github.com/grokyworld/server/internal/handler"
	"github.com/grokyworld/server/internal/world"
	"go.uber.org/zap"
)

// InputSystem drains the intent queue and dispatches each intent through
// the handler registry, at most maxPerTick per tick. Phase 0 (Input).
type InputSystem struct {
	intents    <-chan handler.Intent
	registry   *handler.Registry
	world      *world.State
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(intents <-chan handler.Intent, registry *handler.Registry, ws *world.State, maxPerTick int, log *zap.Logger) *InputSystem {
	if maxPerTick <= 0 {
		maxPerTick = 1
	}
	return &InputSystem{
		intents:    intents,
		registry:   registry,
		world:      ws,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case in := <-s.intents:
			s.dispatch(in)
		default:
			return
		}
	}
}

func (s *InputSystem) dispatch(in handler.Intent) {
	state := handler.StateAlive
	if s.world.Player().Dead {
		state = handler.StateDead
	}
	if _, err := s.registry.Dispatch(state, in); err != nil {
		s.log.Error("intent dispatch failed", zap.String("type", string(in.Type)), zap.Error(err))
	}
}
