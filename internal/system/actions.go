package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/darkhall/sim/internal/component"
	"github.com/darkhall/sim/internal/core/ecs"
	coresys "github.com/darkhall/sim/internal/core/system"
	"github.com/darkhall/sim/internal/scripting"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ActionsSystem runs Lua-scripted actions. Each action calls its script
// function once per tick until the function returns true; the action is then
// queued for destruction at tick end.
//
// Scripts may call:
//
//	destroy(id)     -> bool   destroy an entity now; false if already gone
//	damage(id, n)   -> bool   hurt an agent (needs the agent system)
//	enemies()       -> table  ids of live enemies
//	now()           -> number simulation time in milliseconds
//
// Phase 6 (Late).
type ActionsSystem struct {
	coresys.Base
	world   *ecs.World
	actions *ecs.Store[component.Action]
	lua     *scripting.Engine
	agents  *AgentSystem
	now     time.Duration
	log     *zap.Logger
}

func NewActionsSystem(w *ecs.World, scripts *scripting.Engine) *ActionsSystem {
	return &ActionsSystem{
		Base:    coresys.NewBase("actions", coresys.PhaseLate),
		world:   w,
		actions: ecs.NewStore[component.Action](w, "actions"),
		lua:     scripts,
		log:     zap.NewNop(),
	}
}

// Init binds the script API. The agent system is optional.
func (s *ActionsSystem) Init(ctx *coresys.Context) error {
	s.log = ctx.Log
	agents, err := coresys.Lookup[*AgentSystem](ctx.Engine)
	switch {
	case err == nil:
		s.agents = agents
	case errors.Is(err, coresys.ErrNotRegistered):
		s.agents = nil
	default:
		return err
	}

	s.lua.Register("destroy", s.luaDestroy)
	s.lua.Register("damage", s.luaDamage)
	s.lua.Register("enemies", s.luaEnemies)
	s.lua.Register("now", s.luaNow)
	return nil
}

// Spawn starts the named script, optionally aimed at target.
func (s *ActionsSystem) Spawn(script string, target ecs.EntityID, at time.Duration) (ecs.EntityID, error) {
	if !s.lua.HasFunction(script) {
		return 0, fmt.Errorf("action %s: %w", script, scripting.ErrUnknownFunction)
	}
	id := s.world.Spawn()
	if err := s.actions.Add(id, &component.Action{Script: script, Target: target, StartedAt: at}); err != nil {
		_ = s.world.Discard(id)
		return 0, err
	}
	return id, nil
}

func (s *ActionsSystem) Entities() *ecs.Store[component.Action] { return s.actions }

func (s *ActionsSystem) Update(ctx *coresys.Context) {
	s.now = ctx.Time
	s.actions.Each(func(id ecs.EntityID, a *component.Action) {
		a.Runs++
		done, err := s.lua.RunAction(a.Script, scripting.ActionContext{
			Entity:  id,
			Target:  a.Target,
			Elapsed: ctx.Time - a.StartedAt,
			Runs:    a.Runs,
		})
		if err != nil {
			ctx.Log.Warn("action failed, dropping",
				zap.Stringer("entity", id),
				zap.String("script", a.Script),
				zap.Error(err),
			)
			ctx.World.MarkForDestruction(id)
			return
		}
		if done {
			ctx.World.MarkForDestruction(id)
		}
	})
}

func (s *ActionsSystem) Clear() {
	s.actions.Clear()
	s.agents = nil
	s.now = 0
}

func (s *ActionsSystem) luaDestroy(L *lua.LState) int {
	id := scripting.CheckEntity(L, 1)
	err := s.world.Destroy(id)
	if err != nil {
		s.log.Debug("script destroy of dead entity", zap.Stringer("entity", id))
	}
	L.Push(lua.LBool(err == nil))
	return 1
}

func (s *ActionsSystem) luaDamage(L *lua.LState) int {
	id := scripting.CheckEntity(L, 1)
	amount := L.CheckInt(2)
	ok := s.agents != nil && s.agents.Damage(id, amount)
	L.Push(lua.LBool(ok))
	return 1
}

func (s *ActionsSystem) luaNow(L *lua.LState) int {
	L.Push(lua.LNumber(s.now.Milliseconds()))
	return 1
}

func (s *ActionsSystem) luaEnemies(L *lua.LState) int {
	t := L.NewTable()
	if s.agents != nil {
		for _, id := range s.agents.EnemyIDs() {
			t.Append(scripting.EntityValue(id))
		}
	}
	L.Push(t)
	return 1
}
