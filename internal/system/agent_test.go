package system

import (
	"testing"

	"github.com/darkhall/sim/internal/component"
	"github.com/darkhall/sim/internal/core/ecs"
	"github.com/darkhall/sim/internal/core/event"
	coresys "github.com/darkhall/sim/internal/core/system"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentSpawnComposes(t *testing.T) {
	e := startEngine(t, nil, nil)
	agents := coresys.MustLookup[*AgentSystem](e)
	velocity := coresys.MustLookup[*VelocitySystem](e)
	collision := coresys.MustLookup[*CollisionSystem](e)

	id, err := agents.Spawn(component.AgentEnemy, component.Point{X: 32, Y: 48})
	require.NoError(t, err)

	owner, _ := e.World().Owner(id)
	assert.Equal(t, "agents", owner)

	b, ok := velocity.Entities().Get(id)
	require.True(t, ok)
	assert.Equal(t, agentFriction, b.Friction)

	c, ok := collision.Entities().Get(id)
	require.True(t, ok)
	assert.Same(t, &b.Pos, c.Pos, "the collider tracks the body position")

	a, _ := agents.Entities().Get(id)
	assert.Equal(t, 40, a.Health)
	assert.Equal(t, 1, agents.Enemies())

	_, ok = agents.Player()
	assert.False(t, ok)
}

func TestAgentIntentDrivesBody(t *testing.T) {
	e := startEngine(t, nil, nil)
	agents := coresys.MustLookup[*AgentSystem](e)
	velocity := coresys.MustLookup[*VelocitySystem](e)

	id, err := agents.Spawn(component.AgentPlayer, component.Point{})
	require.NoError(t, err)
	require.True(t, agents.SetIntent(id, mgl64.Vec2{3, 0}))
	b, _ := velocity.Entities().Get(id)

	tick(e, 1)
	assert.InDelta(t, 0.6, b.Exact[0], 1e-9, "intent is normalized and scaled by speed")
	assert.Equal(t, 1, b.Pos.X)
	assert.InDelta(t, 0.4, b.Vel[0], 1e-9)

	require.True(t, agents.SetIntent(id, mgl64.Vec2{}))
	tick(e, 1)
	assert.InDelta(t, 1.0, b.Exact[0], 1e-9)
}

func TestAgentDeath(t *testing.T) {
	e := startEngine(t, nil, nil)
	agents := coresys.MustLookup[*AgentSystem](e)
	velocity := coresys.MustLookup[*VelocitySystem](e)
	collision := coresys.MustLookup[*CollisionSystem](e)

	var destroyed []event.EntityDestroyed
	event.Subscribe(e.Bus(), func(ev event.EntityDestroyed) { destroyed = append(destroyed, ev) })

	first, err := agents.Spawn(component.AgentEnemy, component.Point{})
	require.NoError(t, err)
	second, err := agents.Spawn(component.AgentEnemy, component.Point{X: 200})
	require.NoError(t, err)
	player, err := agents.Spawn(component.AgentPlayer, component.Point{X: 400})
	require.NoError(t, err)

	assert.True(t, agents.Damage(first, 40))
	assert.True(t, agents.Damage(second, 10))
	assert.Equal(t, 2, agents.Enemies(), "death is resolved on update")

	tick(e, 2)
	assert.False(t, e.World().Alive(first))
	assert.False(t, velocity.Entities().Has(first))
	assert.False(t, collision.Entities().Has(first))
	assert.Equal(t, []ecs.EntityID{second}, agents.EnemyIDs())
	require.Len(t, destroyed, 1)
	assert.Equal(t, event.EntityDestroyed{EntityID: first, System: "agents"}, destroyed[0])

	got, ok := agents.Player()
	require.True(t, ok)
	assert.Equal(t, player, got)

	assert.False(t, agents.Damage(first, 1))
	assert.False(t, agents.SetIntent(first, mgl64.Vec2{1, 0}))
}

