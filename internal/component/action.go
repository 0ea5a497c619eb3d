package component

import (
	"time"

	"github.com/darkhall/sim/internal/core/ecs"
)

// Action is a scripted behavior run every tick until its script reports done.
type Action struct {
	Script    string // Lua function name
	Target    ecs.EntityID
	StartedAt time.Duration
	Runs      int
}
