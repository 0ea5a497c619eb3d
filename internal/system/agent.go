package system

import (
	"github.com/darkhall/sim/internal/component"
	"github.com/darkhall/sim/internal/core/ecs"
	"github.com/darkhall/sim/internal/core/event"
	coresys "github.com/darkhall/sim/internal/core/system"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

const (
	agentFriction = 1.5
	agentRadius   = 6
)

var agentDefaults = map[component.AgentKind]component.Agent{
	component.AgentPlayer: {Kind: component.AgentPlayer, Health: 100, Speed: 0.6},
	component.AgentEnemy:  {Kind: component.AgentEnemy, Health: 40, Speed: 0.4},
}

var agentCollider = component.ColliderSpec{
	Shape:          component.ShapeCircle,
	Radius:         agentRadius,
	CanHit:         true,
	CanReceive:     true,
	ShouldDecouple: true,
}

// AgentSystem owns the player and enemies. Each agent is composed of an
// Agent record here, a Body in the velocity system and a collider.
// Phase 1 (Intent): intents become velocity before physics runs.
type AgentSystem struct {
	coresys.Base
	world     *ecs.World
	agents    *ecs.Store[component.Agent]
	velocity  *VelocitySystem
	colliders *CollisionSystem
}

func NewAgentSystem(w *ecs.World, velocity *VelocitySystem, colliders *CollisionSystem) *AgentSystem {
	return &AgentSystem{
		Base:      coresys.NewBase("agents", coresys.PhaseIntent),
		world:     w,
		agents:    ecs.NewStore[component.Agent](w, "agents"),
		velocity:  velocity,
		colliders: colliders,
	}
}

// Spawn creates an agent of the given kind at pos.
func (s *AgentSystem) Spawn(kind component.AgentKind, pos component.Point) (ecs.EntityID, error) {
	agent := agentDefaults[kind]
	id := s.world.Spawn()

	body, err := s.velocity.Attach(id, pos, agentFriction)
	if err != nil {
		_ = s.world.Discard(id)
		return 0, err
	}
	if _, err := s.colliders.MakeCollidable(id, agentCollider, &body.Pos); err != nil {
		_ = s.world.Discard(id)
		return 0, err
	}
	if err := s.agents.Add(id, &agent); err != nil {
		_ = s.world.Discard(id)
		return 0, err
	}
	return id, nil
}

// Damage subtracts health. The agent is removed on its next update once
// health reaches zero. Returns false for unknown agents.
func (s *AgentSystem) Damage(id ecs.EntityID, amount int) bool {
	a, ok := s.agents.Get(id)
	if !ok {
		return false
	}
	a.Health -= amount
	return true
}

// SetIntent sets the movement direction of an agent.
func (s *AgentSystem) SetIntent(id ecs.EntityID, dir mgl64.Vec2) bool {
	a, ok := s.agents.Get(id)
	if !ok {
		return false
	}
	a.Intent = dir
	return true
}

// Enemies counts live enemies. A level is complete when it reaches zero.
func (s *AgentSystem) Enemies() int {
	n := 0
	s.agents.Each(func(_ ecs.EntityID, a *component.Agent) {
		if a.Kind == component.AgentEnemy {
			n++
		}
	})
	return n
}

// EnemyIDs returns live enemy ids in spawn order.
func (s *AgentSystem) EnemyIDs() []ecs.EntityID {
	var ids []ecs.EntityID
	s.agents.Each(func(id ecs.EntityID, a *component.Agent) {
		if a.Kind == component.AgentEnemy {
			ids = append(ids, id)
		}
	})
	return ids
}

// Player returns the first player agent.
func (s *AgentSystem) Player() (ecs.EntityID, bool) {
	for _, id := range s.agents.IDs() {
		if a, _ := s.agents.Get(id); a.Kind == component.AgentPlayer {
			return id, true
		}
	}
	return 0, false
}

func (s *AgentSystem) Entities() *ecs.Store[component.Agent] { return s.agents }

func (s *AgentSystem) Update(ctx *coresys.Context) {
	ecs.Each2(s.agents, s.velocity.Entities(), func(id ecs.EntityID, a *component.Agent, b *component.Body) {
		if a.Health <= 0 {
			if err := ctx.World.Destroy(id); err == nil {
				event.Emit(ctx.Bus, event.EntityDestroyed{EntityID: id, System: s.Name()})
				ctx.Log.Debug("agent died", zap.Stringer("entity", id))
			}
			return
		}
		if a.Intent.Len() == 0 {
			return
		}
		b.Vel = b.Vel.Add(a.Intent.Normalize().Mul(a.Speed))
	})
}

func (s *AgentSystem) Clear() { s.agents.Clear() }
