package world

import (
	"fmt"
	"reflect"
	"strings"
)

// TriggerLevel orders the contexts in which rules fire. A rule fires when the
// triggering context's level is at or above the rule's own level.
type TriggerLevel int

const (
	TriggerNow    TriggerLevel = 0 // only explicit checks
	TriggerUpdate TriggerLevel = 1 // attribute updates
	TriggerMove   TriggerLevel = 2 // movement
	TriggerAny    TriggerLevel = 3 // every opportunity
)

func (l TriggerLevel) valid() bool {
	return l >= TriggerNow && l <= TriggerAny
}

// Predicate is the closed condition type rules and selections are built from.
// No string expressions in the core; the string form is parsed only at the
// scripting and demo boundaries.
type Predicate interface {
	Match(a *Actor) bool
}

// Equals matches when the actor's attribute equals the value. Missing
// attributes never match.
type Equals struct {
	Attr  string
	Value any
}

func (e Equals) Match(a *Actor) bool {
	got, ok := a.Attr(e.Attr)
	if !ok {
		return false
	}
	return looseEqual(got, e.Value)
}

// Custom wraps an arbitrary condition.
type Custom func(a *Actor) bool

func (c Custom) Match(a *Actor) bool { return c(a) }

type conjunction []Predicate

func (ps conjunction) Match(a *Actor) bool {
	for _, p := range ps {
		if !p.Match(a) {
			return false
		}
	}
	return true
}

// And matches when every sub-predicate matches. And() matches everything.
func And(ps ...Predicate) Predicate { return conjunction(ps) }

// looseEqual compares attribute values the way user models expect: direct
// equality when comparable, string rendering as the fallback so 1 and "1"
// from a config file still line up.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a).Comparable() && reflect.TypeOf(b).Comparable() && a == b {
		return true
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// ParseSelection parses the "attr == value" string form, comma-separated for
// conjunction. A clause with no "==" selects on breed.
func ParseSelection(selection string) Predicate {
	clauses := strings.Split(selection, ",")
	ps := make([]Predicate, 0, len(clauses))
	for _, clause := range clauses {
		attr, value, found := strings.Cut(clause, "==")
		if !found {
			breed := strings.TrimSpace(clause)
			ps = append(ps, Custom(func(a *Actor) bool { return a.Breed() == breed }))
			continue
		}
		ps = append(ps, Equals{
			Attr:  strings.TrimSpace(attr),
			Value: strings.TrimSpace(value),
		})
	}
	return And(ps...)
}

// Action is what a rule does when its predicate passes.
type Action func(a *Actor)

type rule struct {
	name       string
	when       Predicate
	then       Action
	level      TriggerLevel
	disposable bool
}

// ruleBook keeps rules in registration order. Re-registering a name replaces
// the rule but keeps its original position.
type ruleBook struct {
	order []string
	rules map[string]*rule
}

func newRuleBook() *ruleBook {
	return &ruleBook{rules: make(map[string]*rule)}
}

func (b *ruleBook) put(r *rule) {
	if _, ok := b.rules[r.name]; !ok {
		b.order = append(b.order, r.name)
	}
	b.rules[r.name] = r
}

func (b *ruleBook) delete(name string) {
	if _, ok := b.rules[name]; !ok {
		return
	}
	delete(b.rules, name)
	for i, n := range b.order {
		if n == name {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// snapshot returns a copy of the current ordering, so evaluation can delete
// disposable rules without mutating the slice it iterates.
func (b *ruleBook) snapshot() []string {
	names := make([]string, len(b.order))
	copy(names, b.order)
	return names
}
