// Package collect samples model and agent state into in-memory tables, one
// row per tick. The tables are what experiments persist and what tests assert
// against.
package collect

import (
	"fmt"

	"github.com/sesimgo/sesim/internal/core/entity"
	"github.com/sesimgo/sesim/internal/world"
)

// ModelReporter samples one model-level value. Closures capture the model.
type ModelReporter func() any

// AgentReporter samples one value from an actor.
type AgentReporter func(a *world.Actor) any

// AttrReporter reports a named actor attribute, nil when unset.
func AttrReporter(attr string) AgentReporter {
	return func(a *world.Actor) any {
		v, _ := a.Attr(attr)
		return v
	}
}

// ModelRow is one tick's model-level sample.
type ModelRow struct {
	Tick   int
	Values map[string]any
}

// AgentRow is one actor's sample at one tick.
type AgentRow struct {
	Tick   int
	ID     entity.ID
	Breed  string
	Values map[string]any
}

// Collector runs the registered reporters each tick and accumulates rows.
// Registration order is column order.
type Collector struct {
	modelOrder []string
	model      map[string]ModelReporter
	agentOrder []string
	agent      map[string]AgentReporter

	modelRows []ModelRow
	agentRows []AgentRow
}

func NewCollector() *Collector {
	return &Collector{
		model: make(map[string]ModelReporter),
		agent: make(map[string]AgentReporter),
	}
}

// AddModelReporter registers a model-level column. Duplicate names error.
func (c *Collector) AddModelReporter(name string, r ModelReporter) error {
	if _, ok := c.model[name]; ok {
		return fmt.Errorf("model reporter %q already registered", name)
	}
	c.model[name] = r
	c.modelOrder = append(c.modelOrder, name)
	return nil
}

// AddAgentReporter registers an agent-level column. Duplicate names error.
func (c *Collector) AddAgentReporter(name string, r AgentReporter) error {
	if _, ok := c.agent[name]; ok {
		return fmt.Errorf("agent reporter %q already registered", name)
	}
	c.agent[name] = r
	c.agentOrder = append(c.agentOrder, name)
	return nil
}

// ModelColumns lists the model-level column names in registration order.
func (c *Collector) ModelColumns() []string {
	out := make([]string, len(c.modelOrder))
	copy(out, c.modelOrder)
	return out
}

// AgentColumns lists the agent-level column names in registration order.
func (c *Collector) AgentColumns() []string {
	out := make([]string, len(c.agentOrder))
	copy(out, c.agentOrder)
	return out
}

// Collect runs every reporter once for the given tick. Actors arrive in the
// container's deterministic order and are sampled in that order.
func (c *Collector) Collect(tick int, actors []*world.Actor) {
	if len(c.model) > 0 {
		values := make(map[string]any, len(c.model))
		for _, name := range c.modelOrder {
			values[name] = c.model[name]()
		}
		c.modelRows = append(c.modelRows, ModelRow{Tick: tick, Values: values})
	}
	if len(c.agent) == 0 {
		return
	}
	for _, a := range actors {
		values := make(map[string]any, len(c.agent))
		for _, name := range c.agentOrder {
			values[name] = c.agent[name](a)
		}
		c.agentRows = append(c.agentRows, AgentRow{
			Tick:   tick,
			ID:     a.EntityID(),
			Breed:  a.Breed(),
			Values: values,
		})
	}
}

// ModelFrame returns the accumulated model rows. The slice is shared; callers
// must not mutate it.
func (c *Collector) ModelFrame() []ModelRow { return c.modelRows }

// AgentFrame returns the accumulated agent rows.
func (c *Collector) AgentFrame() []AgentRow { return c.agentRows }

// ModelSeries extracts one model column across all ticks.
func (c *Collector) ModelSeries(name string) []any {
	out := make([]any, 0, len(c.modelRows))
	for _, row := range c.modelRows {
		out = append(out, row.Values[name])
	}
	return out
}
