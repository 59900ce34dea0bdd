package handler

import (
	"time"

	"github.com/grokyworld/server/internal/config"
	"github.com/grokyworld/server/internal/core/event"
	"github.com/grokyworld/server/internal/core/sched"
	"github.com/grokyworld/server/internal/data"
	"github.com/grokyworld/server/internal/scripting"
	"github.com/grokyworld/server/internal/world"
	"go.uber.org/zap"
)

// Interactions is the single-slot interaction state machine as seen by the
// intent handlers. Every method reports whether anything changed.
type Interactions interface {
	Start(target world.Pos) bool
	Choose(slot int) bool
	Close() bool
	Cancel() bool
	Active() bool
}

// Deps holds shared dependencies injected into all intent handlers.
type Deps struct {
	Config       *config.Config
	Log          *zap.Logger
	World        *world.State
	Catalog      *data.Catalog
	Queue        *sched.Queue
	Bus          *event.Bus
	Scripting    *scripting.Engine
	Interactions Interactions
}

// Now returns the simulated time.
func (d *Deps) Now() time.Time { return d.Queue.Clock().Now() }

// Notify queues a transient message for observers.
func (d *Deps) Notify(text string) {
	event.Emit(d.Bus, event.Notice{Text: text})
}

// RegisterAll registers all intent handlers into the registry.
func RegisterAll(reg *Registry, deps *Deps) {
	alive := []PlayerState{StateAlive}

	reg.Register(IntentMove, alive, func(in Intent) bool {
		return HandleMove(in, deps)
	})
	reg.Register(IntentInteract, alive, func(in Intent) bool {
		return HandleInteract(in, deps)
	})
	reg.Register(IntentChoose, alive, func(in Intent) bool {
		return deps.Interactions.Choose(in.Slot)
	})
	reg.Register(IntentClose, alive, func(in Intent) bool {
		return deps.Interactions.Close()
	})
	reg.Register(IntentCancel, alive, func(in Intent) bool {
		return deps.Interactions.Cancel()
	})
	reg.Register(IntentEquip, alive, func(in Intent) bool {
		return HandleEquip(in, deps)
	})

	reg.Register(IntentRevive, []PlayerState{StateDead}, func(in Intent) bool {
		return HandleRevive(in, deps)
	})
}
