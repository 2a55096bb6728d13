package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/sesimgo/sesim/internal/world"
)

// RuleSpec is one rule declared by a Lua rules file, bound and ready to
// register on actors of its breed.
type RuleSpec struct {
	Name       string
	Breed      string
	Level      world.TriggerLevel
	Disposable bool
	When       world.Predicate
	Then       world.Action
}

// Rules reads the global `rules` declaration table:
//
//	rules = {
//	  { name = "starve", breed = "Farmer",
//	    when = "is_starving", action = "starve",
//	    level = "update", disposable = false },
//	}
//
// The when and action fields name Lua functions defined in the same file.
// A missing `rules` global yields no rules.
func (e *Engine) Rules() ([]RuleSpec, error) {
	decl := e.vm.GetGlobal("rules")
	if decl == lua.LNil {
		return nil, nil
	}
	table, ok := decl.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("lua global rules is %s, want table", decl.Type())
	}

	var specs []RuleSpec
	var fail error
	table.ForEach(func(_, entry lua.LValue) {
		if fail != nil {
			return
		}
		spec, err := e.ruleSpec(entry)
		if err != nil {
			fail = err
			return
		}
		specs = append(specs, spec)
	})
	if fail != nil {
		return nil, fail
	}
	return specs, nil
}

func (e *Engine) ruleSpec(entry lua.LValue) (RuleSpec, error) {
	t, ok := entry.(*lua.LTable)
	if !ok {
		return RuleSpec{}, fmt.Errorf("rules entry is %s, want table", entry.Type())
	}
	name := lua.LVAsString(t.RawGetString("name"))
	if name == "" {
		return RuleSpec{}, fmt.Errorf("rules entry has no name")
	}
	breed := lua.LVAsString(t.RawGetString("breed"))
	if breed == "" {
		return RuleSpec{}, fmt.Errorf("rule %s: no breed", name)
	}
	level, err := parseLevel(lua.LVAsString(t.RawGetString("level")))
	if err != nil {
		return RuleSpec{}, fmt.Errorf("rule %s: %w", name, err)
	}
	when, err := e.Predicate(lua.LVAsString(t.RawGetString("when")))
	if err != nil {
		return RuleSpec{}, fmt.Errorf("rule %s: when: %w", name, err)
	}
	then, err := e.Action(lua.LVAsString(t.RawGetString("action")))
	if err != nil {
		return RuleSpec{}, fmt.Errorf("rule %s: action: %w", name, err)
	}
	return RuleSpec{
		Name:       name,
		Breed:      breed,
		Level:      level,
		Disposable: t.RawGetString("disposable") == lua.LTrue,
		When:       when,
		Then:       then,
	}, nil
}

func parseLevel(s string) (world.TriggerLevel, error) {
	switch s {
	case "", "now":
		return world.TriggerNow, nil
	case "update":
		return world.TriggerUpdate, nil
	case "move":
		return world.TriggerMove, nil
	case "any":
		return world.TriggerAny, nil
	}
	return 0, fmt.Errorf("parse level %q: want now, update, move or any", s)
}
