// Package schedule orders the work done inside one simulation step. Systems
// register under a phase; the runner executes them phase by phase, stable
// within a phase by registration order.
package schedule

import "sort"

// Phase defines execution ordering within a single step.
type Phase int

const (
	PhaseSetup    Phase = iota // 0: one-off preparation before the first step
	PhasePreStep               // 1: read inputs, advance the clock
	PhaseStep                  // 2: agent behavior
	PhasePostStep              // 3: environment response, births and deaths
	PhaseCollect               // 4: reporters sample the state
	PhaseCleanup               // 5: drop expired state
)

// System is one schedulable unit of per-step work.
type System interface {
	Phase() Phase
	Step(tick int)
}

// Func adapts a bare function into a System at the given phase.
func Func(phase Phase, fn func(tick int)) System {
	return funcSystem{phase: phase, fn: fn}
}

type funcSystem struct {
	phase Phase
	fn    func(tick int)
}

func (s funcSystem) Phase() Phase  { return s.phase }
func (s funcSystem) Step(tick int) { s.fn(tick) }

// Runner executes systems in phase order each step.
type Runner struct {
	systems []entry
	sorted  bool
}

type entry struct {
	system System
	seq    int
}

func NewRunner() *Runner {
	return &Runner{systems: make([]entry, 0, 8)}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, entry{system: s, seq: len(r.systems)})
	r.sorted = false
}

// Step runs every per-step system once, in phase order. Setup systems are
// excluded; they run through StepPhase before the loop starts.
func (r *Runner) Step(tick int) {
	r.ensureSorted()
	for _, e := range r.systems {
		if e.system.Phase() == PhaseSetup {
			continue
		}
		e.system.Step(tick)
	}
}

// StepPhase runs only the systems of one phase. Used for PhaseSetup, which
// runs once before the loop rather than every step.
func (r *Runner) StepPhase(phase Phase, tick int) {
	r.ensureSorted()
	for _, e := range r.systems {
		if e.system.Phase() == phase {
			e.system.Step(tick)
		}
	}
}

func (r *Runner) ensureSorted() {
	if r.sorted {
		return
	}
	sort.SliceStable(r.systems, func(i, j int) bool {
		if r.systems[i].system.Phase() != r.systems[j].system.Phase() {
			return r.systems[i].system.Phase() < r.systems[j].system.Phase()
		}
		return r.systems[i].seq < r.systems[j].seq
	})
	r.sorted = true
}
