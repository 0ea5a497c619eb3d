package event

import (
	"time"

	"github.com/darkhall/sim/internal/core/ecs"
)

// EntityDestroyed is emitted when a system destroys one of its own entities.
type EntityDestroyed struct {
	EntityID ecs.EntityID
	System   string
}

// LightToggled is emitted when a broken light flips state.
type LightToggled struct {
	EntityID ecs.EntityID
	Enabled  bool
	At       time.Duration
}

// NumericFault reports a body whose velocity or position went non-finite.
type NumericFault struct {
	EntityID ecs.EntityID
	Field    string
}

// Contact is a hitter/receiver overlap found by the collision pass.
type Contact struct {
	Hitter   ecs.EntityID
	Receiver ecs.EntityID
}
