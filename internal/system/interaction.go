package system

import (
	"time"

	"github.com/grokyworld/server/internal/core/event"
	"github.com/grokyworld/server/internal/core/sched"
	"github.com/grokyworld/server/internal/data"
	"github.com/grokyworld/server/internal/handler"
	"github.com/grokyworld/server/internal/world"
	"go.uber.org/zap"
)

// maxChoiceSlots is how many dialogue choices an input can address.
const maxChoiceSlots = data.MaxChoices

type choice struct {
	text string
	run  func()
}

// interaction is the occupant of the single interaction slot.
type interaction struct {
	kind      data.InteractKind
	level     int
	target    world.Pos
	typ       string // object type at target when the interaction began
	timer     sched.Handle
	startedAt time.Time
	message   string
	choices   []choice
}

// InteractionSystem is the single-slot state machine behind chopping,
// talking and opening. A slot that is taken rejects every new start until
// it returns to None.
type InteractionSystem struct {
	deps    *handler.Deps
	respawn *RespawnScheduler
	active  *interaction
}

func NewInteractionSystem(deps *handler.Deps, respawn *RespawnScheduler) *InteractionSystem {
	return &InteractionSystem{deps: deps, respawn: respawn}
}

// Active reports whether the slot is taken.
func (s *InteractionSystem) Active() bool { return s.active != nil }

// Kind returns the kind of the active interaction, InteractNone if free.
func (s *InteractionSystem) Kind() data.InteractKind {
	if s.active == nil {
		return data.InteractNone
	}
	return s.active.kind
}

// Start begins the interaction the object at target calls for. The target
// must be next to the player and hold an interactive decoration.
func (s *InteractionSystem) Start(target world.Pos) bool {
	if s.active != nil {
		s.deps.Log.Debug("interaction rejected: slot busy",
			zap.Stringer("kind", s.active.kind),
			zap.Stringer("target", target),
		)
		return false
	}
	ws := s.deps.World
	l := ws.Current()
	if l == nil || ws.Player().Dead {
		return false
	}
	pp, ok := l.PlayerPos()
	if !ok || pp.Manhattan(target) != 1 {
		return false
	}
	ref, ok := l.At(target)
	if !ok || ref.IsEntity() {
		return false
	}
	sem := s.deps.Catalog.Semantics(ref.Decor)
	if sem.Kind != data.TileInteractive {
		s.deps.Log.Debug("interaction rejected: not interactive", zap.String("type", ref.Decor))
		return false
	}

	a := &interaction{
		kind:      sem.Interact,
		level:     l.ID,
		target:    target,
		typ:       ref.Decor,
		startedAt: s.deps.Now(),
	}
	switch sem.Interact {
	case data.InteractChop:
		return s.startChop(a)
	case data.InteractTalk:
		return s.startTalk(a)
	case data.InteractOpen:
		return s.open(a)
	}
	return false
}

// Cancel ends the active interaction without its completion effects.
func (s *InteractionSystem) Cancel() bool {
	a := s.active
	if a == nil {
		return false
	}
	if a.timer != 0 {
		s.deps.Queue.Cancel(a.timer)
	}
	s.end(false)
	s.deps.Log.Debug("interaction cancelled", zap.Stringer("kind", a.kind), zap.Stringer("target", a.target))
	return true
}

// Close ends a conversation.
func (s *InteractionSystem) Close() bool {
	if s.active == nil || s.active.kind != data.InteractTalk {
		return false
	}
	s.end(true)
	return true
}

// Choose runs the dialogue choice in slot.
func (s *InteractionSystem) Choose(slot int) bool {
	a := s.active
	if a == nil || a.kind != data.InteractTalk {
		return false
	}
	if slot < 0 || slot >= maxChoiceSlots || slot >= len(a.choices) {
		s.deps.Log.Debug("choice out of range", zap.Int("slot", slot), zap.Int("choices", len(a.choices)))
		return false
	}
	a.choices[slot].run()
	return true
}

func (s *InteractionSystem) end(completed bool) {
	a := s.active
	s.active = nil
	event.Emit(s.deps.Bus, event.InteractionEnded{
		Kind: a.kind.String(), X: a.target.X, Y: a.target.Y, Completed: completed,
	})
}

// --- chop ---

func (s *InteractionSystem) startChop(a *interaction) bool {
	def := s.deps.Catalog.Interactions.Choppable(a.typ)
	if def == nil {
		s.deps.Log.Warn("chop: no definition", zap.String("type", a.typ))
		return false
	}
	s.active = a
	a.timer = s.deps.Queue.After(s.deps.Config.Gameplay.ChopDuration, "chop", func() {
		s.finishChop(a, def)
	})
	return true
}

// finishChop swaps the target to its chopped result, drops the yield on the
// nearest empty tile and schedules the original to grow back.
func (s *InteractionSystem) finishChop(a *interaction, def *data.ChoppableDef) {
	if s.active != a {
		return
	}
	s.end(true)

	ws := s.deps.World
	l, ok := ws.Level(a.level)
	if !ok {
		return
	}
	if ref, ok := l.At(a.target); !ok || !ref.IsDecor(a.typ) {
		return
	}
	ws.SetDecor(a.level, a.target, def.Result)

	reach := l.Width()
	if l.Height() > reach {
		reach = l.Height()
	}
	pp, hasPlayer := l.PlayerPos()
	at, found := l.RingSearch(a.target, reach, func(p world.Pos) bool {
		return l.IsEmpty(p) && !l.IsRestricted(p) && !(hasPlayer && p == pp)
	})
	if found {
		ws.SetDecor(a.level, at, def.Drop)
	} else {
		s.deps.Log.Warn("chop: no free tile for drop, crediting directly", zap.String("drop", def.Drop))
		handler.Credit(s.deps, def.Drop, 1, "chop")
	}
	s.respawn.Schedule(a.level, a.target, a.typ, s.respawn.Delay(a.typ), false)
}

// --- open ---

// open resolves at once: result swap, credit, message and an optional
// delayed ambush around the target.
func (s *InteractionSystem) open(a *interaction) bool {
	def := s.deps.Catalog.Interactions.Openable(a.typ)
	if def == nil {
		s.deps.Log.Warn("open: no definition", zap.String("type", a.typ))
		return false
	}
	s.active = a
	ws := s.deps.World
	ws.SetDecor(a.level, a.target, def.Result)
	if def.Drop != "" {
		handler.Credit(s.deps, def.Drop, 1, "open")
	}
	if def.Message != "" {
		s.deps.Notify(def.Message)
	}
	if def.Ambush != nil {
		s.ambush(a, def.Ambush)
	}
	s.end(true)
	return true
}

func (s *InteractionSystem) ambush(a *interaction, amb *data.AmbushDef) {
	l, ok := s.deps.World.Level(a.level)
	if !ok {
		return
	}
	scheduled := 0
	for _, n := range a.target.Neighbors8() {
		if scheduled == amb.Count {
			break
		}
		if !l.InBounds(n) || l.IsRestricted(n) {
			continue
		}
		if s.respawn.Schedule(a.level, n, amb.Type, s.deps.Config.Gameplay.AmbushDelay, true) {
			scheduled++
		}
	}
	s.deps.Log.Debug("ambush scheduled", zap.String("type", amb.Type), zap.Int("count", scheduled))
}

// --- view ---

// View copies the slot for snapshots.
func (s *InteractionSystem) View(now time.Time) world.InteractionView {
	a := s.active
	if a == nil {
		return world.InteractionView{Kind: data.InteractNone.String()}
	}
	v := world.InteractionView{
		Kind:    a.kind.String(),
		X:       a.target.X,
		Y:       a.target.Y,
		Message: a.message,
	}
	for i, c := range a.choices {
		if i == maxChoiceSlots {
			break
		}
		v.Choices = append(v.Choices, c.text)
	}
	if a.kind == data.InteractChop {
		if d := s.deps.Config.Gameplay.ChopDuration; d > 0 {
			v.Progress = float64(now.Sub(a.startedAt)) / float64(d)
			if v.Progress > 1 {
				v.Progress = 1
			}
		}
	}
	return v
}
