package system

import (
	"time"

	"github.com/grokyworld/server/internal/core/event"
	"github.com/grokyworld/server/internal/core/sched"
	"github.com/grokyworld/server/internal/handler"
	"github.com/grokyworld/server/internal/world"
	"go.uber.org/zap"
)

// defaultEntityHealth is used for entity types missing from the hostile
// table.
const defaultEntityHealth = 100

// RespawnScheduler re-materializes a type at a tile after a delay. Items
// live in the level's respawn queue and fire from the shared event queue.
// Flow: Schedule → due time → place at the tile, else the first free
// neighbor → all nine blocked → retry after RespawnRetry.
type RespawnScheduler struct {
	deps *handler.Deps
}

func NewRespawnScheduler(deps *handler.Deps) *RespawnScheduler {
	return &RespawnScheduler{deps: deps}
}

// Delay returns the respawn delay configured for typ.
func (s *RespawnScheduler) Delay(typ string) time.Duration {
	return s.deps.Catalog.Tiles.RespawnDelay(typ)
}

// Schedule queues typ at p. Scheduling the same (p, typ) again before it
// fires replaces the pending item, so there is never more than one timer
// per pair.
func (s *RespawnScheduler) Schedule(levelID int, p world.Pos, typ string, delay time.Duration, isEntity bool) bool {
	return s.enqueue(levelID, world.RespawnItem{Pos: p, Type: typ, IsEntity: isEntity, Origin: p}, delay)
}

// ScheduleWave queues a hostile that belongs to a wave. Until it is placed
// it counts as pending for that wave.
func (s *RespawnScheduler) ScheduleWave(levelID int, p world.Pos, typ string, delay time.Duration, wave int) bool {
	return s.enqueue(levelID, world.RespawnItem{Pos: p, Type: typ, IsEntity: true, Wave: wave, Origin: p}, delay)
}

func (s *RespawnScheduler) enqueue(levelID int, item world.RespawnItem, delay time.Duration) bool {
	ws := s.deps.World
	l, ok := ws.Level(levelID)
	if !ok {
		s.deps.Log.Warn("respawn: unknown level", zap.Int("level", levelID), zap.String("type", item.Type))
		return false
	}
	if delay < 0 {
		delay = 0
	}
	item.DueAt = s.deps.Now().Add(delay)

	var h sched.Handle
	pos, typ := item.Pos, item.Type
	h = s.deps.Queue.At(item.DueAt, "respawn:"+typ, func() {
		s.fire(levelID, pos, typ, h)
	})
	item.Handle = h

	old, had, err := ws.QueueRespawn(levelID, item)
	if err != nil {
		s.deps.Queue.Cancel(h)
		s.deps.Log.Warn("respawn: queue failed", zap.Error(err))
		return false
	}
	if had {
		s.deps.Queue.Cancel(old.Handle)
	}
	if w := l.Wave(); w != nil {
		if item.Wave > 0 && !(had && old.Wave > 0) {
			w.Pending++
		} else if item.Wave == 0 && had && old.Wave > 0 {
			w.Pending--
		}
	}
	s.deps.Log.Debug("respawn scheduled",
		zap.Int("level", levelID),
		zap.Stringer("pos", item.Pos),
		zap.String("type", item.Type),
		zap.Duration("delay", delay),
	)
	return true
}

// fire runs when a queued item is due. A handle that no longer matches the
// queued item belongs to a replaced schedule and does nothing.
func (s *RespawnScheduler) fire(levelID int, p world.Pos, typ string, h sched.Handle) {
	ws := s.deps.World
	l, ok := ws.Level(levelID)
	if !ok {
		return
	}
	if it, ok := l.Respawn(p, typ); !ok || it.Handle != h {
		return
	}
	item, _ := ws.DequeueRespawn(levelID, p, typ)
	w := l.Wave()
	if w != nil && item.Wave > 0 {
		w.Pending--
	}

	if at, ok := s.place(l, item); ok {
		s.deps.Log.Debug("respawned",
			zap.Int("level", levelID),
			zap.String("type", typ),
			zap.Stringer("pos", at),
		)
		return
	}

	s.deps.Log.Debug("respawn blocked, retrying",
		zap.Int("level", levelID),
		zap.String("type", typ),
		zap.Stringer("pos", p),
	)
	s.enqueue(levelID, item, s.deps.Config.Gameplay.RespawnRetry)
}

// place tries the item's tile, then its eight neighbors in Neighbors8 order.
func (s *RespawnScheduler) place(l *world.Level, item world.RespawnItem) (world.Pos, bool) {
	candidates := make([]world.Pos, 0, 9)
	candidates = append(candidates, item.Pos)
	for _, n := range item.Pos.Neighbors8() {
		candidates = append(candidates, n)
	}
	for _, p := range candidates {
		if !s.placeable(l, p) {
			continue
		}
		if !item.IsEntity {
			if s.deps.World.SetDecor(l.ID, p, item.Type) {
				return p, true
			}
			continue
		}
		hp := defaultEntityHealth
		if def := s.deps.Catalog.Hostiles.Get(item.Type); def != nil {
			hp = def.Health
		} else {
			s.deps.Log.Warn("respawn: no hostile definition, using default health", zap.String("type", item.Type))
		}
		info := world.EntityInfo{Type: item.Type, Wave: item.Wave, Origin: item.Origin}
		id, err := s.deps.World.SpawnEntity(l.ID, p, info, hp)
		if err != nil {
			continue
		}
		if w := l.Wave(); w != nil && item.Wave > 0 {
			w.Active.Put(id)
		}
		event.Emit(s.deps.Bus, event.EntitySpawned{
			EntityID: id, Type: item.Type, LevelID: l.ID, X: p.X, Y: p.Y, Wave: item.Wave,
		})
		return p, true
	}
	return world.Pos{}, false
}

// placeable: in bounds, not restricted, not under the player, and empty or
// holding a weak occupant.
func (s *RespawnScheduler) placeable(l *world.Level, p world.Pos) bool {
	if !l.InBounds(p) || l.IsRestricted(p) {
		return false
	}
	if pp, ok := l.PlayerPos(); ok && pp == p {
		return false
	}
	ref, occupied := l.At(p)
	if !occupied {
		return true
	}
	return !ref.IsEntity() && s.deps.Catalog.Tiles.IsWeak(ref.Decor)
}
