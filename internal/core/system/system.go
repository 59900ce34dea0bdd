package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain the intent queue
	PhasePreUpdate               // 1: fire due timers, dispatch last tick's events
	PhaseUpdate                  // 2: AI movement, combat
	PhasePostUpdate              // 3: regen, integrity sweep
	PhaseOutput                  // 4: publish snapshots
	PhasePersist                 // 5: hand journal entries to the writer
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	}
	return "unknown"
}

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
