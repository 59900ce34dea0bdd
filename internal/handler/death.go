package handler

import (
	"github.com/grokyworld/server/internal/core/event"
	"github.com/grokyworld/server/internal/world"
	"go.uber.org/zap"
)

// HandleRevive processes a "revive" intent from a fallen player. The fallen
// marker gives way to the decoration it covered, if any, and the player
// returns at full health on the revive point.
func HandleRevive(_ Intent, deps *Deps) bool {
	ws := deps.World
	p := ws.Player()
	if !p.Dead {
		return false
	}
	def := deps.Catalog.Tiles.Player()

	if l := ws.Current(); l != nil {
		if pp, ok := l.PlayerPos(); ok {
			if ref, ok := l.At(pp); ok && ref.IsDecor(def.FallenMarker) {
				if p.FallenOn != "" {
					ws.SetDecor(l.ID, pp, p.FallenOn)
				} else {
					ws.ClearDecor(l.ID, pp)
				}
			}
		}
	}

	p.FallenOn = ""
	p.Dead = false
	p.Health = p.MaxHealth
	target := world.FromPoint(def.RevivePos)
	if !ChangeLevel(deps, def.ReviveLevel, target) {
		deps.Log.Warn("revive: could not place player", zap.Int("level", def.ReviveLevel), zap.Stringer("pos", target))
	}
	pos, _ := ws.PlayerPos()
	event.Emit(deps.Bus, event.PlayerRevived{LevelID: ws.CurrentID(), X: pos.X, Y: pos.Y})
	return true
}
