package system

import (
	"github.com/grokyworld/server/internal/core/ecs"
	"github.com/grokyworld/server/internal/core/event"
	"github.com/grokyworld/server/internal/handler"
	"go.uber.org/zap"
)

// Reaper performs death transitions. An entity's registry entry and its
// tile go in one World Store call; drops, respawns and wave bookkeeping
// follow from the returned info.
type Reaper struct {
	deps    *handler.Deps
	respawn *RespawnScheduler
	waves   *WaveController
}

func NewReaper(deps *handler.Deps, respawn *RespawnScheduler, waves *WaveController) *Reaper {
	return &Reaper{deps: deps, respawn: respawn, waves: waves}
}

// KillEntity removes a hostile, leaves its drop marker and schedules its
// respawn when it stood on its level's original spawn record.
func (r *Reaper) KillEntity(id ecs.EntityID) bool {
	ws := r.deps.World
	info, ok := ws.Registry().Info(id)
	if !ok {
		return false
	}
	def := r.deps.Catalog.Hostiles.Get(info.Type)
	drop := ""
	if def != nil {
		drop = def.Drop
	}
	info, at, placed := ws.KillEntity(id, drop)
	if !placed {
		r.deps.Log.Warn("killed entity had no tile", zap.Stringer("entity", id), zap.String("type", info.Type))
	}
	event.Emit(r.deps.Bus, event.EntityKilled{
		EntityID: id, Type: info.Type, LevelID: info.LevelID, X: at.X, Y: at.Y, Drop: drop,
	})

	if info.Wave > 0 {
		r.waves.EntityKilled(info.LevelID, id)
		return true
	}
	if def == nil || !def.Respawnable {
		return true
	}
	l, ok := ws.Level(info.LevelID)
	if !ok {
		return true
	}
	if orig, ok := l.OriginalSpawn(info.Origin); ok && orig == info.Type {
		r.respawn.Schedule(info.LevelID, info.Origin, info.Type, r.respawn.Delay(info.Type), true)
	}
	return true
}

// KillPlayer marks the player fallen. The player's tile shows the fallen
// marker; a decoration the player stood on is kept on the player and put
// back by revive.
func (r *Reaper) KillPlayer() {
	ws := r.deps.World
	p := ws.Player()
	if p.Dead {
		return
	}
	p.Dead = true
	p.Health = 0
	r.deps.Interactions.Cancel()

	l := ws.Current()
	if l == nil {
		return
	}
	pp, ok := l.PlayerPos()
	if !ok {
		return
	}
	ref, ok := l.At(pp)
	if ok && !ref.IsEntity() && !ref.IsDecor(ws.PlayerMarker()) {
		p.FallenOn = ref.Decor
	}
	if !ok || !ref.IsEntity() {
		ws.SetDecor(l.ID, pp, r.deps.Catalog.Tiles.Player().FallenMarker)
	}
	event.Emit(r.deps.Bus, event.PlayerDied{LevelID: l.ID, X: pp.X, Y: pp.Y})
	r.deps.Log.Info("player fell", zap.Int("level", l.ID), zap.Stringer("pos", pp))
}
