package system

import (
	"math/rand"

	"github.com/darkhall/sim/internal/config"
	coresys "github.com/darkhall/sim/internal/core/system"
	"github.com/darkhall/sim/internal/scripting"
)

// Deps bundles what the standard system set needs.
type Deps struct {
	Config *config.Config
	Rand   *rand.Rand
	Lua    *scripting.Engine // nil disables scripted actions
}

// RegisterAll builds a fresh system set for one run and registers it in the
// reference tick order: static props and walls, agent intents, physics,
// collision, lighting, scripted actions.
func RegisterAll(e *coresys.Engine, deps Deps) error {
	w := e.World()

	props := NewPropsSystem(w)
	collision := NewCollisionSystem(w, deps.Config.Collision.CellSize)
	barriers := NewBarrierSystem(w, collision)
	velocity := NewVelocitySystem(w)
	agents := NewAgentSystem(w, velocity, collision)
	lights := NewLightingSystem(w, collision, props, deps.Config.Lighting, deps.Rand)

	ordered := []coresys.System{props, barriers, agents, velocity, collision, lights}
	if deps.Lua != nil {
		ordered = append(ordered, NewActionsSystem(w, deps.Lua))
	}
	for _, s := range ordered {
		if err := e.Register(s); err != nil {
			return err
		}
	}
	return nil
}
