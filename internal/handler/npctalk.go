package handler

import (
	"github.com/grokyworld/server/internal/world"
	"go.uber.org/zap"
)

// HandleInteract processes an "interact" intent aimed at a tile next to the
// player. Targets that are not adjacent are ignored.
func HandleInteract(in Intent, deps *Deps) bool {
	target := world.P(in.X, in.Y)
	pp, ok := deps.World.PlayerPos()
	if !ok {
		return false
	}
	if pp.Manhattan(target) != 1 {
		deps.Log.Debug("interact: target not adjacent", zap.Stringer("player", pp), zap.Stringer("target", target))
		return false
	}
	return deps.Interactions.Start(target)
}
