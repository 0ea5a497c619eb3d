package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/darkhall/sim/internal/component"
	coresys "github.com/darkhall/sim/internal/core/system"
	"github.com/darkhall/sim/internal/scripting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testActions = `
function twice(ctx)
  return ctx.runs >= 2
end

function smite(ctx)
  for _, id in ipairs(enemies()) do
    damage(id, 1000)
  end
  return true
end

function wait_target(ctx)
  if ctx.elapsed_ms >= 3 then
    return destroy(ctx.target)
  end
  return false
end

function broken(ctx)
  error("boom")
end
`

func newLua(t *testing.T) *scripting.Engine {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "actions"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "actions", "test.lua"), []byte(testActions), 0o644))
	lua, err := scripting.NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(lua.Close)
	return lua
}

func TestActionRunsUntilDone(t *testing.T) {
	e := startEngine(t, nil, newLua(t))
	actions := coresys.MustLookup[*ActionsSystem](e)

	id, err := actions.Spawn("twice", 0, e.Time())
	require.NoError(t, err)

	tick(e, 1)
	a, ok := actions.Entities().Get(id)
	require.True(t, ok)
	assert.Equal(t, 1, a.Runs)

	tick(e, 1)
	assert.False(t, e.World().Alive(id))
	assert.Equal(t, 0, actions.Entities().Len())
}

func TestActionDamagesEnemies(t *testing.T) {
	e := startEngine(t, nil, newLua(t))
	actions := coresys.MustLookup[*ActionsSystem](e)
	agents := coresys.MustLookup[*AgentSystem](e)

	for i := 0; i < 3; i++ {
		_, err := agents.Spawn(component.AgentEnemy, component.Point{X: i * 100})
		require.NoError(t, err)
	}
	_, err := actions.Spawn("smite", 0, e.Time())
	require.NoError(t, err)

	tick(e, 1)
	assert.Equal(t, 3, agents.Enemies(), "actions run after agents")
	tick(e, 1)
	assert.Equal(t, 0, agents.Enemies())
}

func TestActionTargetAndClock(t *testing.T) {
	e := startEngine(t, nil, newLua(t))
	actions := coresys.MustLookup[*ActionsSystem](e)
	props := coresys.MustLookup[*PropsSystem](e)

	target, err := props.Spawn(component.Point{}, "crate")
	require.NoError(t, err)
	id, err := actions.Spawn("wait_target", target, e.Time())
	require.NoError(t, err)

	tick(e, 2)
	assert.True(t, e.World().Alive(target))
	assert.True(t, e.World().Alive(id))

	tick(e, 1)
	assert.Equal(t, 3*time.Millisecond, e.Time())
	assert.False(t, e.World().Alive(target))
	assert.False(t, e.World().Alive(id))
}

func TestActionFailureDropsAction(t *testing.T) {
	e := startEngine(t, nil, newLua(t))
	actions := coresys.MustLookup[*ActionsSystem](e)

	id, err := actions.Spawn("broken", 0, e.Time())
	require.NoError(t, err)
	tick(e, 1)
	assert.False(t, e.World().Alive(id))
}

func TestActionUnknownScript(t *testing.T) {
	e := startEngine(t, nil, newLua(t))
	actions := coresys.MustLookup[*ActionsSystem](e)

	_, err := actions.Spawn("missing", 0, e.Time())
	assert.ErrorIs(t, err, scripting.ErrUnknownFunction)
	assert.Equal(t, 0, e.World().Live())
}

func TestActionsWithoutAgents(t *testing.T) {
	e := newTestEngine()
	actions := NewActionsSystem(e.World(), newLua(t))
	require.NoError(t, e.Register(actions))
	require.NoError(t, e.Init())

	_, err := actions.Spawn("smite", 0, e.Time())
	require.NoError(t, err)
	tick(e, 1)
	assert.Equal(t, 0, actions.Entities().Len())
}
