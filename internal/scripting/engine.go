// Package scripting hosts model rules written in Lua. A rules file declares
// predicates and actions as Lua functions; the engine packs actor state into
// a table on the way in and applies the returned table on the way out, so
// scripts never hold live references into the world.
package scripting

import (
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/sesimgo/sesim/internal/world"
)

// Engine wraps a single gopher-lua VM. Single-goroutine access only, the
// simulation loop owns it.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	return &Engine{vm: vm, log: log}
}

func (e *Engine) Close() { e.vm.Close() }

// LoadFile executes a Lua rules file in the VM.
func (e *Engine) LoadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("rules file %s: %w", path, err)
	}
	if err := e.vm.DoFile(path); err != nil {
		return fmt.Errorf("load rules %s: %w", path, err)
	}
	e.log.Debug("loaded lua rules", zap.String("file", path))
	return nil
}

// LoadString executes Lua source in the VM.
func (e *Engine) LoadString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	return nil
}

// Predicate binds a Lua function as a rule condition. The function receives
// an actor table and must return a boolean; script errors log and count as
// no match.
func (e *Engine) Predicate(fnName string) (world.Predicate, error) {
	if e.vm.GetGlobal(fnName) == lua.LNil {
		return nil, fmt.Errorf("lua function %q not found", fnName)
	}
	return world.Custom(func(a *world.Actor) bool {
		fn := e.vm.GetGlobal(fnName)
		if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, e.actorTable(a)); err != nil {
			e.log.Error("lua predicate error",
				zap.String("fn", fnName), zap.Error(err))
			return false
		}
		ret := e.vm.Get(-1)
		e.vm.Pop(1)
		return lua.LVAsBool(ret)
	}), nil
}

// Action binds a Lua function as a rule effect. The function receives an
// actor table and may return a result table:
//
//	{ set = { attr = value, ... }, die = true }
//
// Attribute writes apply first; die applies last.
func (e *Engine) Action(fnName string) (world.Action, error) {
	if e.vm.GetGlobal(fnName) == lua.LNil {
		return nil, fmt.Errorf("lua function %q not found", fnName)
	}
	return func(a *world.Actor) {
		fn := e.vm.GetGlobal(fnName)
		if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, e.actorTable(a)); err != nil {
			e.log.Error("lua action error",
				zap.String("fn", fnName), zap.Error(err))
			return
		}
		ret := e.vm.Get(-1)
		e.vm.Pop(1)
		rt, ok := ret.(*lua.LTable)
		if !ok {
			return
		}
		if set, ok := rt.RawGetString("set").(*lua.LTable); ok {
			set.ForEach(func(k, v lua.LValue) {
				a.SetAttr(k.String(), fromLua(v))
			})
		}
		if rt.RawGetString("die") == lua.LTrue {
			a.Die()
		}
	}, nil
}

// actorTable packs an actor snapshot for Lua.
func (e *Engine) actorTable(a *world.Actor) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("id", lua.LString(a.EntityID().String()))
	t.RawSetString("breed", lua.LString(a.Breed()))
	t.RawSetString("age", lua.LNumber(a.Age()))
	t.RawSetString("on_earth", lua.LBool(a.OnEarth()))
	if pos, ok := a.Pos(); ok {
		t.RawSetString("x", lua.LNumber(pos.X))
		t.RawSetString("y", lua.LNumber(pos.Y))
	}
	attrs := e.vm.NewTable()
	for k, v := range a.Attrs() {
		attrs.RawSetString(k, toLua(v))
	}
	t.RawSetString("attrs", attrs)
	return t
}

func toLua(v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	}
	return lua.LString(fmt.Sprint(v))
}

func fromLua(v lua.LValue) any {
	switch x := v.(type) {
	case lua.LBool:
		return bool(x)
	case lua.LNumber:
		return float64(x)
	case lua.LString:
		return string(x)
	}
	return v.String()
}
