package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/darkhall/sim/internal/core/ecs"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrUnknownFunction is returned when a script function is not defined.
var ErrUnknownFunction = errors.New("lua function not defined")

// Engine wraps a single gopher-lua VM for scripted actions.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory and its actions/ subdirectory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, dir := range []string{scriptsDir, filepath.Join(scriptsDir, "actions")} {
		if err := e.loadDir(dir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// Register exposes a Go function to scripts as a global.
func (e *Engine) Register(name string, fn lua.LGFunction) {
	e.vm.SetGlobal(name, e.vm.NewFunction(fn))
}

// HasFunction reports whether a global function with the given name exists.
func (e *Engine) HasFunction(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// ActionContext is passed to an action function as a table.
type ActionContext struct {
	Entity  ecs.EntityID // the action itself
	Target  ecs.EntityID // zero when the action has no target
	Elapsed time.Duration
	Runs    int
}

// RunAction calls the named Lua function with the action context. The
// function returns true when the action is finished.
func (e *Engine) RunAction(name string, ctx ActionContext) (bool, error) {
	fn, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return false, fmt.Errorf("%s: %w", name, ErrUnknownFunction)
	}

	t := e.vm.NewTable()
	t.RawSetString("entity", EntityValue(ctx.Entity))
	t.RawSetString("target", EntityValue(ctx.Target))
	t.RawSetString("elapsed_ms", lua.LNumber(ctx.Elapsed.Milliseconds()))
	t.RawSetString("runs", lua.LNumber(ctx.Runs))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		return false, fmt.Errorf("lua %s: %w", name, err)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return lua.LVAsBool(result), nil
}

// EntityValue converts an entity id to a Lua number. Ids stay below 2^53
// for any realistic generation count, so the conversion is exact.
func EntityValue(id ecs.EntityID) lua.LNumber {
	return lua.LNumber(float64(id))
}

// CheckEntity reads an entity id argument from the Lua stack.
func CheckEntity(L *lua.LState, n int) ecs.EntityID {
	return ecs.EntityID(uint64(L.CheckNumber(n)))
}
