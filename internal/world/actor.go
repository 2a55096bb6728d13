package world

import (
	"fmt"

	"github.com/sesimgo/sesim/internal/core/entity"
	"github.com/sesimgo/sesim/internal/link"
)

// Actor is a mobile entity. It stands on at most one cell at a time, belongs
// to the world container exactly while it is alive, and can form links with
// actors and cells. All mutation runs on the model goroutine.
type Actor struct {
	id        entity.ID
	breed     string
	world     *World
	cell      *Cell
	alive     bool
	attrs     map[string]any
	rules     *ruleBook
	birthTick int
}

func (a *Actor) EntityID() entity.ID { return a.id }
func (a *Actor) Breed() string       { return a.breed }
func (a *Actor) Alive() bool         { return a.alive }

func (a *Actor) String() string {
	return fmt.Sprintf("<%s %s>", a.breed, a.id)
}

// OnEarth reports whether the actor stands on a cell.
func (a *Actor) OnEarth() bool { return a.cell != nil }

// At returns the occupied cell, nil when unplaced.
func (a *Actor) At() *Cell { return a.cell }

// Layer returns the layer the actor operates on, nil when unplaced.
func (a *Actor) Layer() *Layer {
	if a.cell == nil {
		return nil
	}
	return a.cell.layer
}

// Pos returns the occupied position; ok is false when unplaced.
func (a *Actor) Pos() (Coord, bool) {
	if a.cell == nil {
		return Coord{}, false
	}
	return a.cell.pos, true
}

// Age returns ticks lived so far.
func (a *Actor) Age() int { return a.world.tick - a.birthTick }

// Attr returns an attribute value.
func (a *Actor) Attr(name string) (any, bool) {
	v, ok := a.attrs[name]
	return v, ok
}

// AttrOr returns the attribute or a fallback.
func (a *Actor) AttrOr(name string, fallback any) any {
	if v, ok := a.attrs[name]; ok {
		return v
	}
	return fallback
}

// Attrs snapshots all attributes. Mutating the returned map does not touch
// the actor.
func (a *Actor) Attrs() map[string]any {
	out := make(map[string]any, len(a.attrs))
	for k, v := range a.attrs {
		out[k] = v
	}
	return out
}

// SetAttr sets an attribute and gives update-level rules a chance to fire.
func (a *Actor) SetAttr(name string, value any) {
	if !a.alive {
		return
	}
	a.attrs[name] = value
	a.CheckRules(TriggerUpdate)
}

func (a *Actor) guard() error {
	if !a.alive {
		return &DeadError{ID: a.id, Breed: a.breed}
	}
	return nil
}

// ─── Links ───────────────────────────────────────────────────────

// LinkTo creates an outgoing link to another node; with mutual the reverse
// edge is created too.
func (a *Actor) LinkTo(other link.Node, name string, mutual bool) error {
	if err := a.guard(); err != nil {
		return err
	}
	a.world.links.Connect(name, a, other, mutual)
	return nil
}

// LinkBy creates a link from another node to this actor.
func (a *Actor) LinkBy(other link.Node, name string, mutual bool) error {
	if err := a.guard(); err != nil {
		return err
	}
	a.world.links.Connect(name, other, a, mutual)
	return nil
}

// Unlink removes the outgoing link to other.
func (a *Actor) Unlink(other link.Node, name string, mutual bool) error {
	if err := a.guard(); err != nil {
		return err
	}
	return a.world.links.Disconnect(name, a, other, mutual)
}

// Linked returns partners under name in the given direction.
func (a *Actor) Linked(name string, dir link.Direction) ([]link.Node, error) {
	return a.world.links.Linked(name, a, dir)
}

// HasLink reports (to, by) against a specific partner.
func (a *Actor) HasLink(name string, other link.Node) (to, by bool, err error) {
	return a.world.links.HasEdge(name, a, other)
}

// OwnsLink reports whether the actor has any edge under name at all.
func (a *Actor) OwnsLink(name string) bool {
	hasOut, hasIn := a.world.links.Owns(name, a)
	return hasOut || hasIn
}

// CleanLinks bulk-removes this actor's links; empty name means all names.
func (a *Actor) CleanLinks(name string, dir link.Direction) error {
	if err := a.guard(); err != nil {
		return err
	}
	return a.world.links.Clean(a, name, dir)
}

// ─── Movement ────────────────────────────────────────────────────

// MoveTo places the actor on the cell, vacating any current cell first. The
// vacate completes fully, including the occupancy index, before the place
// begins, so the actor is never in two cells or lost halfway. Moving across
// layers without an explicit MoveOff is refused.
func (a *Actor) MoveTo(cell *Cell) error {
	if err := a.guard(); err != nil {
		return err
	}
	if a.cell != nil && a.cell.layer != cell.layer {
		return &CrossLayerError{Have: a.cell.layer.name, Want: cell.layer.name}
	}
	if a.cell != nil {
		if err := a.cell.remove(a); err != nil {
			return err
		}
	}
	if err := cell.add(a); err != nil {
		return err
	}
	a.cell = cell
	a.CheckRules(TriggerMove)
	return nil
}

// MoveToCoord resolves a coordinate against the given layer, or against the
// actor's current layer when layer is nil.
func (a *Actor) MoveToCoord(layer *Layer, pos Coord) error {
	if err := a.guard(); err != nil {
		return err
	}
	if layer == nil {
		layer = a.Layer()
		if layer == nil {
			return ErrNoLayer
		}
	}
	cell, err := layer.Cell(pos)
	if err != nil {
		return err
	}
	return a.MoveTo(cell)
}

// MoveBy steps the actor along a heading. Requires the actor to be placed.
func (a *Actor) MoveBy(h Heading, distance int) error {
	if err := a.guard(); err != nil {
		return err
	}
	if a.cell == nil {
		return ErrNotPlaced
	}
	pos, err := a.cell.pos.Step(h, distance)
	if err != nil {
		return err
	}
	return a.MoveToCoord(a.cell.layer, pos)
}

// MoveRandom moves to a seeded-random neighboring cell.
func (a *Actor) MoveRandom(moore bool, radius int) error {
	if err := a.guard(); err != nil {
		return err
	}
	if a.cell == nil {
		return ErrNotPlaced
	}
	cells := a.cell.Neighboring(moore, radius, false, false)
	if len(cells) == 0 {
		return nil
	}
	return a.MoveTo(cells[a.world.rng.Intn(len(cells))])
}

// MoveOff vacates the actor from its cell. A no-op when already unplaced.
func (a *Actor) MoveOff() error {
	if err := a.guard(); err != nil {
		return err
	}
	if a.cell == nil {
		return nil
	}
	return a.cell.remove(a)
}

// ─── Lifecycle ───────────────────────────────────────────────────

// Die removes the actor from the world: vacates its cell, drops it from the
// container, purges every link it participates in (both directions, all
// names, partners included) and releases its handle. Dying twice is a no-op;
// death is permanent.
func (a *Actor) Die() {
	if !a.alive {
		return
	}
	if a.cell != nil {
		// cannot fail: single occupancy says the cell holds the actor
		_ = a.cell.remove(a)
	}
	a.world.registry.RemoveAll(a.id)
	a.world.pool.Release(a.id)
	a.alive = false
	a.world.log.Debug("actor died",
		zapBreed(a.breed), zapID(a.id))
}

// ─── Rules ───────────────────────────────────────────────────────

// Rule registers a conditional trigger: when the predicate passes at a
// context of at least level, the action runs. Disposable rules run at most
// once. With checkNow the rule is evaluated immediately after registration.
func (a *Actor) Rule(name string, when Predicate, then Action, level TriggerLevel, disposable, checkNow bool) error {
	if err := a.guard(); err != nil {
		return err
	}
	if !level.valid() {
		return &InvalidLevelError{Level: level}
	}
	a.rules.put(&rule{name: name, when: when, then: then, level: level, disposable: disposable})
	if checkNow {
		a.fireRule(name)
	}
	return nil
}

// DropRule unregisters a rule by name. Unknown names are ignored.
func (a *Actor) DropRule(name string) {
	a.rules.delete(name)
}

// CheckRules evaluates every registered rule whose level is at or below the
// triggering context and fires the ones whose predicate passes. Disposable
// rules are deleted right after firing. Returns how many fired. Link or
// state mutations performed by one rule are visible to the next.
func (a *Actor) CheckRules(level TriggerLevel) int {
	if !a.alive {
		return 0
	}
	fired := 0
	for _, name := range a.rules.snapshot() {
		r, ok := a.rules.rules[name]
		if !ok || r.level > level {
			continue
		}
		if a.fireRule(name) {
			fired++
		}
		if !a.alive {
			break // a rule may kill its own actor
		}
	}
	return fired
}

func (a *Actor) fireRule(name string) bool {
	r, ok := a.rules.rules[name]
	if !ok || !r.when.Match(a) {
		return false
	}
	if r.disposable {
		a.rules.delete(name)
	}
	r.then(a)
	return true
}
