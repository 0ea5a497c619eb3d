package component

import "github.com/go-gl/mathgl/mgl64"

// AgentKind distinguishes the player from enemies.
type AgentKind uint8

const (
	AgentPlayer AgentKind = iota
	AgentEnemy
)

// Agent is an actor with health and a movement intent. Its motion lives in
// the Body the agent system attaches to the same entity.
type Agent struct {
	Kind   AgentKind
	Health int
	Intent mgl64.Vec2 // desired direction, applied as acceleration
	Speed  float64
}
