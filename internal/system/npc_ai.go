package system

import (
	"time"

	coresys "github.com/grokyworld/server/internal/core/system"
	"github.com/grokyworld/server/internal/data"
	"github.com/grokyworld/server/internal/handler"
	"github.com/grokyworld/server/internal/world"
	"go.uber.org/zap"
)

// NpcAISystem moves hostiles on the player's level one step toward the
// player every AIInterval. Moves are proposed against one view of the
// level and committed in a single batch. Phase 2 (Update).
type NpcAISystem struct {
	deps *handler.Deps
	acc  time.Duration
}

func NewNpcAISystem(deps *handler.Deps) *NpcAISystem {
	return &NpcAISystem{deps: deps}
}

func (s *NpcAISystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *NpcAISystem) Update(dt time.Duration) {
	s.acc += dt
	if s.acc < s.deps.Config.Simulation.AIInterval {
		return
	}
	s.acc = 0
	s.Step()
}

// Step runs one AI round immediately.
func (s *NpcAISystem) Step() (applied, rejected []world.Move) {
	ws := s.deps.World
	l := ws.Current()
	if l == nil || ws.Player().Dead {
		return nil, nil
	}
	moves := ProposeMoves(ws, l, s.deps.Catalog)
	if len(moves) == 0 {
		return nil, nil
	}
	applied, rejected = ws.MoveEntities(l.ID, moves)
	if len(rejected) > 0 {
		s.deps.Log.Debug("ai moves vetoed", zap.Int("level", l.ID), zap.Int("rejected", len(rejected)))
	}
	return applied, rejected
}

// ProposeMoves computes one greedy chase step per hostile on l. A hostile
// moves only if the player is within its chase radius and not already next
// to it (diagonals count), and only onto an empty, unrestricted tile that
// strictly reduces its Manhattan distance to the player. Ties go to the
// first of up, down, left, right.
func ProposeMoves(ws *world.State, l *world.Level, cat *data.Catalog) []world.Move {
	pp, ok := l.PlayerPos()
	if !ok {
		return nil
	}
	var moves []world.Move
	for _, e := range ws.Entities(l.ID) {
		def := cat.Hostiles.Get(ws.Registry().TypeOf(e.ID))
		if def == nil {
			continue
		}
		d := e.Pos.Manhattan(pp)
		if d > def.ChaseRadius {
			continue
		}
		if chebyshev(e.Pos, pp) <= 1 {
			continue
		}
		best, bestDist := e.Pos, d
		for _, n := range e.Pos.Neighbors4() {
			if n == pp || !l.InBounds(n) || l.IsRestricted(n) || !l.IsEmpty(n) {
				continue
			}
			if nd := n.Manhattan(pp); nd < bestDist {
				best, bestDist = n, nd
			}
		}
		if best != e.Pos {
			moves = append(moves, world.Move{ID: e.ID, From: e.Pos, To: best})
		}
	}
	return moves
}

func chebyshev(a, b world.Pos) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
