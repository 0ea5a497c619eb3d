package system

import (
	"time"

	"github.com/darkhall/sim/internal/core/ecs"
	"github.com/darkhall/sim/internal/core/event"
	"go.uber.org/zap"
)

// Phase defines execution ordering within a single tick. Systems must be
// registered in non-decreasing phase order.
type Phase int

const (
	PhaseStatic     Phase = iota // 0: props, barriers
	PhaseIntent                  // 1: player / AI intents
	PhasePhysics                 // 2: velocity integration, projectiles
	PhaseCollision               // 3: contact detection
	PhasePerception              // 4: AI perception
	PhaseVisual                  // 5: lighting, particles, blood
	PhaseLate                    // 6: scripted actions, doors, pickups
)

var phaseNames = [...]string{"static", "intent", "physics", "collision", "perception", "visual", "late"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is the interface every ECS system implements.
type System interface {
	Name() string
	Phase() Phase
	// Init runs once per run, after every system of the run is registered.
	Init(ctx *Context) error
	Update(ctx *Context)
	// Clear drops every entity the system holds.
	Clear()
}

// Context is handed to Init and Update. It carries the run's shared state
// so systems do not need a captured engine back-reference.
type Context struct {
	Engine *Engine
	World  *ecs.World
	Bus    *event.Bus
	Log    *zap.Logger
	Time   time.Duration
}

// Base supplies no-op Init and a Name; concrete systems embed it.
type Base struct {
	name  string
	phase Phase
}

func NewBase(name string, phase Phase) Base {
	return Base{name: name, phase: phase}
}

func (b Base) Name() string          { return b.name }
func (b Base) Phase() Phase          { return b.phase }
func (b Base) Init(_ *Context) error { return nil }
