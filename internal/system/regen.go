package system

import (
	"time"

	coresys "github.com/grokyworld/server/internal/core/system"
	"github.com/grokyworld/server/internal/handler"
	"github.com/grokyworld/server/internal/scripting"
)

// RegenSystem heals the player every RegenInterval once RegenDelay has
// passed since the last hit. The amount comes from the regen script.
// Phase 3 (PostUpdate).
type RegenSystem struct {
	deps *handler.Deps
	acc  time.Duration
}

func NewRegenSystem(deps *handler.Deps) *RegenSystem {
	return &RegenSystem{deps: deps}
}

func (s *RegenSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *RegenSystem) Update(dt time.Duration) {
	s.acc += dt
	if s.acc < s.deps.Config.Simulation.RegenInterval {
		return
	}
	s.acc = 0

	p := s.deps.World.Player()
	if p.Dead || p.Health >= p.MaxHealth {
		return
	}
	now := s.deps.Now()
	if !p.LastDamageAt.IsZero() && now.Sub(p.LastDamageAt) < s.deps.Config.Simulation.RegenDelay {
		return
	}
	amount := s.deps.Scripting.CalcRegenAmount(scripting.RegenContext{
		Health:    p.Health,
		MaxHealth: p.MaxHealth,
	})
	p.Heal(amount)
}
