package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each tick. Systems sharing a phase
// run in registration order.
type Runner struct {
	systems []System
	sorted  bool
	before  []func(dt time.Duration)
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// BeforeTick registers a hook that runs ahead of every phase, e.g. to
// advance the simulation clock.
func (r *Runner) BeforeTick(fn func(dt time.Duration)) {
	r.before = append(r.before, fn)
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, fn := range r.before {
		fn(dt)
	}
	for _, s := range r.systems {
		s.Update(dt)
	}
}

// TickPhase runs only the systems of the given phase.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
