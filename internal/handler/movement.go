package handler

import (
	"github.com/grokyworld/server/internal/data"
	"github.com/grokyworld/server/internal/world"
	"go.uber.org/zap"
)

// HandleMove processes a "move" intent: one orthogonal step of the player.
func HandleMove(in Intent, deps *Deps) bool {
	dir, ok := world.ParseDirection(in.Dir)
	if !ok {
		deps.Log.Debug("move: bad direction", zap.String("dir", in.Dir))
		return false
	}
	return Move(deps, dir)
}

// Move steps the player one tile. Restricted, out-of-bounds and blocked
// targets are rejected without any state change. Interactive targets start
// an interaction instead of moving. Pickups are credited and cleared before
// the step; teleports change level shortly after it.
func Move(deps *Deps, dir world.Direction) bool {
	ws := deps.World
	l := ws.Current()
	if l == nil || ws.Player().Dead {
		return false
	}
	from, ok := l.PlayerPos()
	if !ok {
		return false
	}
	to := from.Add(dir.Delta())

	if !l.InBounds(to) {
		deps.Log.Debug("move rejected: out of bounds", zap.Stringer("to", to))
		return false
	}
	if l.IsRestricted(to) {
		deps.Log.Debug("move rejected: restricted", zap.Stringer("to", to), zap.String("terrain", l.Terrain(to)))
		return false
	}

	var (
		pickup   string
		teleport *data.TeleportDef
	)
	if ref, occupied := l.At(to); occupied {
		if ref.IsEntity() {
			deps.Log.Debug("move rejected: entity", zap.Stringer("to", to), zap.Stringer("entity", ref.Entity))
			return false
		}
		sem := deps.Catalog.Semantics(ref.Decor)
		switch sem.Kind {
		case data.TileInteractive:
			return deps.Interactions.Start(to)
		case data.TilePickup:
			pickup = ref.Decor
		case data.TileTeleport:
			tp := sem.Teleport
			teleport = &tp
		case data.TileWalkable:
		default:
			deps.Log.Debug("move rejected: blocked", zap.Stringer("to", to), zap.String("type", ref.Decor))
			return false
		}
	}

	// A valid step leaves whatever the player was doing.
	deps.Interactions.Cancel()

	if pickup != "" {
		ws.ClearDecor(l.ID, to)
		Credit(deps, pickup, 1, "pickup")
		deps.Notify("+1 " + data.DisplayName(pickup))
	}
	if err := ws.SetPlayerPos(l.ID, to); err != nil {
		deps.Log.Warn("move failed", zap.Stringer("to", to), zap.Error(err))
		return false
	}
	if teleport != nil {
		scheduleTeleport(deps, l.ID, to, *teleport)
	}
	return true
}
