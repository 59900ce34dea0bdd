package system

import (
	"sort"
	"strconv"

	"github.com/grokyworld/server/internal/core/ecs"
	"github.com/grokyworld/server/internal/core/event"
	"github.com/grokyworld/server/internal/handler"
	"github.com/grokyworld/server/internal/world"
	"go.uber.org/zap"
)

// WaveController advances wave levels. A wave is cleared when none of its
// entities is alive or still pending placement; the next one spawns
// WaveDelay later, and a level without a next wave is completed.
type WaveController struct {
	deps    *handler.Deps
	respawn *RespawnScheduler
}

func NewWaveController(deps *handler.Deps, respawn *RespawnScheduler) *WaveController {
	w := &WaveController{deps: deps, respawn: respawn}
	event.Subscribe(deps.Bus, w.onLevelChanged)
	return w
}

// Start spawns the first wave of a level. It does nothing for levels
// without waves or whose waves already started.
func (c *WaveController) Start(levelID int) bool {
	l, ok := c.deps.World.Level(levelID)
	if !ok || l.Wave() == nil {
		return false
	}
	w := l.Wave()
	if w.Current != 0 || w.Completed {
		return false
	}
	if _, ok := w.Definitions[1]; !ok {
		c.deps.Log.Warn("wave level has no wave 1", zap.Int("level", levelID))
		return false
	}
	w.Current = 1
	c.spawn(l, 1)
	return true
}

// EntityKilled removes a dead wave entity from its wave.
func (c *WaveController) EntityKilled(levelID int, id ecs.EntityID) {
	l, ok := c.deps.World.Level(levelID)
	if !ok || l.Wave() == nil {
		return
	}
	l.Wave().Active.Remove(id)
	c.check(l)
}

// check advances or completes the level once the current wave is clear.
func (c *WaveController) check(l *world.Level) {
	w := l.Wave()
	if w.Completed || w.Incoming || w.Active.Size() > 0 || w.Pending > 0 {
		return
	}
	if !w.HasNext() {
		w.Completed = true
		event.Emit(c.deps.Bus, event.LevelCompleted{LevelID: l.ID})
		c.deps.Notify("Level cleared!")
		c.deps.Log.Info("wave level completed", zap.Int("level", l.ID), zap.Int("waves", w.Current))
		return
	}

	// Observers see the upcoming index while the spawn is delayed.
	w.Current++
	w.Incoming = true
	next := w.Current
	c.deps.Queue.After(c.deps.Config.Gameplay.WaveDelay, "wave", func() {
		w.Incoming = false
		c.spawn(l, next)
	})
}

// spawn queues every entity of wave idx for immediate placement.
func (c *WaveController) spawn(l *world.Level, idx int) {
	w := l.Wave()
	def := w.Definitions[idx]
	positions := make([]world.Pos, 0, len(def))
	for p := range def {
		positions = append(positions, p)
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Y == positions[j].Y {
			return positions[i].X < positions[j].X
		}
		return positions[i].Y < positions[j].Y
	})
	for _, p := range positions {
		c.respawn.ScheduleWave(l.ID, p, def[p], 0, idx)
	}
	event.Emit(c.deps.Bus, event.WaveAdvanced{LevelID: l.ID, Wave: idx})
	c.deps.Notify(waveNotice(idx))
	c.deps.Log.Info("wave spawned", zap.Int("level", l.ID), zap.Int("wave", idx), zap.Int("entities", len(positions)))
	if len(positions) == 0 {
		c.check(l)
	}
}

// onLevelChanged starts the survival timer the first time the player
// enters a wave level.
func (c *WaveController) onLevelChanged(ev event.LevelChanged) {
	l, ok := c.deps.World.Level(ev.To)
	if !ok || l.Wave() == nil {
		return
	}
	if l.Wave().StartedAt.IsZero() {
		l.Wave().StartedAt = c.deps.Now()
	}
}

func waveNotice(idx int) string {
	return "Wave " + strconv.Itoa(idx)
}
