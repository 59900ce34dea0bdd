package handler

import (
	"errors"
	"fmt"

	"github.com/grokyworld/server/internal/core/event"
	"github.com/grokyworld/server/internal/data"
	"github.com/grokyworld/server/internal/world"
	"go.uber.org/zap"
)

// scheduleTeleport changes level once the teleport delay has passed, as
// long as the player is still standing on the teleport tile by then.
func scheduleTeleport(deps *Deps, levelID int, at world.Pos, tp data.TeleportDef) {
	name := fmt.Sprintf("teleport:%s", tp.Type)
	deps.Queue.After(deps.Config.Simulation.TeleportDelay, name, func() {
		ws := deps.World
		if ws.CurrentID() != levelID || ws.Player().Dead {
			return
		}
		if pp, ok := ws.PlayerPos(); !ok || pp != at {
			return
		}
		spawn, ok := teleportSpawn(deps, tp)
		if !ok {
			deps.Log.Warn("teleport: no spawn point", zap.String("type", tp.Type), zap.Int("level", tp.Level))
			return
		}
		ChangeLevel(deps, tp.Level, spawn)
	})
}

// teleportSpawn returns the custom spawn of the teleport, else the target
// level's entry point.
func teleportSpawn(deps *Deps, tp data.TeleportDef) (world.Pos, bool) {
	if tp.Spawn != nil {
		return world.FromPoint(*tp.Spawn), true
	}
	p, ok := deps.Catalog.Tiles.EntryPoint(tp.Level)
	if !ok {
		return world.Pos{}, false
	}
	return world.FromPoint(p), true
}

// ChangeLevel moves the player to spawn on level target. If the spawn tile
// is blocked by an entity or restricted terrain, the nearest free tile is
// used instead. An unknown level or a level with no free tile is logged and
// changes nothing.
func ChangeLevel(deps *Deps, target int, spawn world.Pos) bool {
	ws := deps.World
	from := ws.CurrentID()

	err := ws.ChangeLevel(target, spawn)
	if errors.Is(err, world.ErrOccupied) || errors.Is(err, world.ErrRestricted) {
		if alt, ok := freeTileNear(ws, target, spawn); ok {
			err = ws.ChangeLevel(target, alt)
			spawn = alt
		}
	}
	if err != nil {
		deps.Log.Warn("change level failed", zap.Int("from", from), zap.Int("to", target), zap.Error(err))
		return false
	}

	deps.Interactions.Cancel()
	event.Emit(deps.Bus, event.LevelChanged{From: from, To: target, X: spawn.X, Y: spawn.Y})
	deps.Log.Debug("level changed",
		zap.Int("from", from),
		zap.Int("to", target),
		zap.Stringer("pos", spawn),
	)
	return true
}

func freeTileNear(ws *world.State, levelID int, center world.Pos) (world.Pos, bool) {
	l, ok := ws.Level(levelID)
	if !ok {
		return world.Pos{}, false
	}
	reach := l.Width()
	if l.Height() > reach {
		reach = l.Height()
	}
	return l.RingSearch(center, reach, func(p world.Pos) bool {
		return !l.IsRestricted(p) && l.IsEmpty(p)
	})
}
