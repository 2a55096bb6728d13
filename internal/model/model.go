// Package model composes a world, a clock, data collection and user modules
// into one runnable simulation. A model walks a strict lifecycle: built, then
// initialized, then stepping, then complete.
package model

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sesimgo/sesim/internal/clock"
	"github.com/sesimgo/sesim/internal/collect"
	"github.com/sesimgo/sesim/internal/config"
	"github.com/sesimgo/sesim/internal/core/schedule"
	"github.com/sesimgo/sesim/internal/data"
	"github.com/sesimgo/sesim/internal/notify"
	"github.com/sesimgo/sesim/internal/scripting"
	"github.com/sesimgo/sesim/internal/world"
)

// State is the model lifecycle position.
type State int

const (
	StateNew State = iota
	StateInit
	StateReady
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateInit:
		return "init"
	case StateReady:
		return "ready"
	case StateComplete:
		return "complete"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// InvalidStateError reports an operation attempted out of lifecycle order.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: model is %s", e.Op, e.State)
}

// Module is one named piece of model logic. Initialize runs once during model
// setup, Step runs every tick before the scheduled systems.
type Module interface {
	Name() string
	Initialize(m *Model) error
	Step(m *Model)
}

// Ender is an optional Module extension that runs when the model completes.
type Ender interface {
	End(m *Model)
}

// Model is the root simulation object.
type Model struct {
	name      string
	cfg       *config.Config
	state     State
	world     *world.World
	clock     *clock.Clock
	notice    *notify.Notice
	collector *collect.Collector
	runner    *schedule.Runner
	engine    *scripting.Engine
	rules     []scripting.RuleSpec
	modules   []Module
	globVars  map[string]func() any
	log       *zap.Logger
}

// New builds a model from config: clock, world, breeds, layers and their
// raster data. Modules attach afterwards, before Initialize.
func New(cfg *config.Config, log *zap.Logger) (*Model, error) {
	if log == nil {
		log = zap.NewNop()
	}
	clk, err := clock.New(cfg.Time)
	if err != nil {
		return nil, err
	}
	m := &Model{
		name:      cfg.Model.Name,
		cfg:       cfg,
		world:     world.NewWorld(cfg.Model.Seed, cfg.Model.MaxAgents, log),
		clock:     clk,
		collector: collect.NewCollector(),
		runner:    schedule.NewRunner(),
		globVars:  make(map[string]func() any),
		log:       log.Named(cfg.Model.Name),
	}
	m.notice = notify.NewNotice(m)
	m.world.RegisterBreed(cfg.Model.Breeds...)

	for _, lc := range cfg.Layers {
		layer, err := m.world.NewLayer(lc.Name, lc.Width, lc.Height)
		if err != nil {
			return nil, err
		}
		if lc.Data == "" {
			continue
		}
		table, err := data.LoadRasters(lc.Data)
		if err != nil {
			return nil, err
		}
		if err := table.Apply(layer); err != nil {
			return nil, err
		}
	}

	m.globVars["tick"] = func() any { return m.clock.Tick() }
	m.globVars["population"] = func() any { return m.world.Agents().Len() }
	if err := m.notice.AddGlobVars("tick", "population"); err != nil {
		return nil, err
	}

	m.runner.Register(schedule.Func(schedule.PhaseCollect, func(tick int) {
		agents, err := m.world.Agents().Get()
		if err != nil {
			return
		}
		m.collector.Collect(tick, agents)
	}))
	return m, nil
}

func (m *Model) Name() string                  { return m.name }
func (m *Model) State() State                  { return m.state }
func (m *Model) World() *world.World           { return m.world }
func (m *Model) Clock() *clock.Clock           { return m.clock }
func (m *Model) Notice() *notify.Notice        { return m.notice }
func (m *Model) Collector() *collect.Collector { return m.collector }
func (m *Model) Runner() *schedule.Runner      { return m.runner }
func (m *Model) Log() *zap.Logger              { return m.log }

// GlobVar answers the notification source interface.
func (m *Model) GlobVar(name string) (any, bool) {
	get, ok := m.globVars[name]
	if !ok {
		return nil, false
	}
	return get(), true
}

// AddGlobVar registers a named model-level variable and makes it observable.
func (m *Model) AddGlobVar(name string, get func() any) error {
	if _, dup := m.globVars[name]; dup {
		return fmt.Errorf("glob var %q already registered", name)
	}
	m.globVars[name] = get
	return m.notice.AddGlobVars(name)
}

// AddModule attaches a module. Only a new model accepts modules.
func (m *Model) AddModule(mods ...Module) error {
	if m.state != StateNew {
		return &InvalidStateError{Op: "add module", State: m.state}
	}
	m.modules = append(m.modules, mods...)
	return nil
}

// Initialize moves the model from new to ready: loads scripted rules, runs
// every module's Initialize in attach order, then the setup phase.
func (m *Model) Initialize() error {
	if m.state != StateNew {
		return &InvalidStateError{Op: "initialize", State: m.state}
	}
	m.state = StateInit

	if path := m.cfg.Scripting.Rules; path != "" {
		m.engine = scripting.NewEngine(m.log)
		if err := m.engine.LoadFile(path); err != nil {
			return err
		}
		specs, err := m.engine.Rules()
		if err != nil {
			return err
		}
		m.rules = specs
	}

	for _, mod := range m.modules {
		if err := mod.Initialize(m); err != nil {
			return fmt.Errorf("initialize module %s: %w", mod.Name(), err)
		}
		m.log.Debug("module initialized", zap.String("module", mod.Name()))
	}

	agents, err := m.world.Agents().Get()
	if err != nil {
		return err
	}
	for _, a := range agents {
		if err := m.BindRules(a); err != nil {
			return err
		}
	}

	m.runner.StepPhase(schedule.PhaseSetup, 0)
	m.state = StateReady
	m.log.Info("model ready",
		zap.Int("modules", len(m.modules)),
		zap.Int("agents", m.world.Agents().Len()))
	return nil
}

// BindRules registers every scripted rule matching the actor's breed.
// Modules call this for actors born after initialization.
func (m *Model) BindRules(a *world.Actor) error {
	for _, spec := range m.rules {
		if spec.Breed != a.Breed() {
			continue
		}
		if err := a.Rule(spec.Name, spec.When, spec.Then, spec.Level, spec.Disposable, false); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the model one tick: clock, modules in attach order, then the
// scheduled systems.
func (m *Model) Step() error {
	if m.state != StateReady {
		return &InvalidStateError{Op: "step", State: m.state}
	}
	m.clock.Advance(1)
	tick := m.clock.Tick()
	m.world.SetTick(tick)

	for _, mod := range m.modules {
		mod.Step(m)
	}
	m.runner.Step(tick)
	m.notice.Notify()
	return nil
}

// ShouldEnd reports whether the run is over: the step budget is spent or the
// calendar expired.
func (m *Model) ShouldEnd() bool {
	if m.state == StateComplete {
		return true
	}
	if m.cfg.Model.Steps > 0 && m.clock.Tick() >= m.cfg.Model.Steps {
		return true
	}
	return m.clock.Expired()
}

// Run drives the model start to finish: initialize when needed, step until
// ShouldEnd, then complete.
func (m *Model) Run() error {
	if m.state == StateNew {
		if err := m.Initialize(); err != nil {
			return err
		}
	}
	if m.state != StateReady {
		return &InvalidStateError{Op: "run", State: m.state}
	}
	for !m.ShouldEnd() {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return m.Complete()
}

// Complete finishes the run, giving Ender modules their hook. Completing
// twice errors; a complete model never steps again.
func (m *Model) Complete() error {
	if m.state != StateReady {
		return &InvalidStateError{Op: "complete", State: m.state}
	}
	for _, mod := range m.modules {
		if ender, ok := mod.(Ender); ok {
			ender.End(m)
		}
	}
	if m.engine != nil {
		m.engine.Close()
	}
	m.state = StateComplete
	m.log.Info("model complete", zap.Int("ticks", m.clock.Tick()))
	return nil
}
