package handler

import (
	"fmt"

	"go.uber.org/zap"
)

// IntentKind names a decoded player intent.
type IntentKind string

const (
	IntentMove     IntentKind = "move"
	IntentInteract IntentKind = "interact"
	IntentChoose   IntentKind = "choose"
	IntentClose    IntentKind = "close"
	IntentCancel   IntentKind = "cancel"
	IntentRevive   IntentKind = "revive"
	IntentEquip    IntentKind = "equip"
)

// Intent is one already-decoded player input. Only the fields of its kind
// are meaningful.
type Intent struct {
	Type IntentKind `json:"type"`
	Dir  string     `json:"dir,omitempty"`  // move
	X    int        `json:"x,omitempty"`    // interact
	Y    int        `json:"y,omitempty"`    // interact
	Slot int        `json:"slot,omitempty"` // choose
	Item string     `json:"item,omitempty"` // equip
}

// PlayerState gates which intents are accepted.
type PlayerState int

const (
	StateAlive PlayerState = iota
	StateDead
)

func (s PlayerState) String() string {
	switch s {
	case StateAlive:
		return "Alive"
	case StateDead:
		return "Dead"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// HandlerFunc handles one intent and reports whether the world changed.
type HandlerFunc func(in Intent) bool

type handlerEntry struct {
	fn            HandlerFunc
	allowedStates map[PlayerState]bool
}

// Registry maps intent kinds to handlers with state-based access control.
type Registry struct {
	handlers map[IntentKind]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[IntentKind]*handlerEntry),
		log:      log,
	}
}

// Register maps an intent kind to a handler, restricted to the given states.
func (reg *Registry) Register(kind IntentKind, states []PlayerState, fn HandlerFunc) {
	allowed := make(map[PlayerState]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.handlers[kind] = &handlerEntry{
		fn:            fn,
		allowedStates: allowed,
	}
}

// Dispatch finds the handler for in.Type, validates the player state and
// calls the handler. Unknown kinds and intents not allowed in the current
// state are dropped; only a handler panic is returned as an error.
func (reg *Registry) Dispatch(state PlayerState, in Intent) (bool, error) {
	entry, ok := reg.handlers[in.Type]
	if !ok {
		reg.log.Debug("unknown intent", zap.String("type", string(in.Type)))
		return false, nil
	}
	if !entry.allowedStates[state] {
		reg.log.Debug("intent not allowed in state",
			zap.String("type", string(in.Type)),
			zap.Stringer("state", state),
		)
		return false, nil
	}
	return reg.safeCall(entry.fn, in)
}

// safeCall executes a handler with panic recovery so that one bad intent
// cannot take down the game loop.
func (reg *Registry) safeCall(fn HandlerFunc, in Intent) (changed bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("intent handler panic recovered",
				zap.String("type", string(in.Type)),
				zap.Any("panic", rec),
			)
			changed = false
			err = fmt.Errorf("handler panic for intent %s: %v", in.Type, rec)
		}
	}()
	return fn(in), nil
}
