package system

import (
	"time"

	coresys "github.com/grokyworld/server/internal/core/system"
	"github.com/grokyworld/server/internal/world"
	"go.uber.org/zap"
)

// SweepSystem periodically reconciles the entity registry with the level
// tiles and logs every repair. Phase 3 (PostUpdate).
type SweepSystem struct {
	world    *world.State
	interval time.Duration
	acc      time.Duration
	log      *zap.Logger
}

func NewSweepSystem(ws *world.State, interval time.Duration, log *zap.Logger) *SweepSystem {
	return &SweepSystem{world: ws, interval: interval, log: log}
}

func (s *SweepSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *SweepSystem) Update(dt time.Duration) {
	s.acc += dt
	if s.acc < s.interval {
		return
	}
	s.acc = 0
	s.Sweep()
}

// Sweep runs one reconciliation now and returns what it repaired.
func (s *SweepSystem) Sweep() []world.Repair {
	repairs := s.world.Reconcile()
	for _, r := range repairs {
		s.log.Warn("sweep repaired world state",
			zap.String("kind", string(r.Kind)),
			zap.Int("level", r.LevelID),
			zap.Stringer("pos", r.Pos),
			zap.Stringer("entity", r.ID),
		)
	}
	return repairs
}
