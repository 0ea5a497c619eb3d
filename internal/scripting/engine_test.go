package scripting

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/darkhall/sim/internal/core/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T, files map[string]string) *Engine {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestEngineLoadsBothDirs(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"lib.lua":         "function helper() return 1 end",
		"actions/a.lua":   "function act(ctx) return helper() == 1 end",
		"actions/note.md": "not lua",
	})
	assert.True(t, e.HasFunction("helper"))
	assert.True(t, e.HasFunction("act"))
	assert.False(t, e.HasFunction("missing"))

	done, err := e.RunAction("act", ActionContext{})
	require.NoError(t, err)
	assert.True(t, done)
}

func TestEngineMissingDir(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()
	assert.False(t, e.HasFunction("anything"))
}

func TestEngineSyntaxError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("function ("), 0o644))
	_, err := NewEngine(dir, zap.NewNop())
	assert.ErrorContains(t, err, "bad.lua")
}

func TestRunActionContext(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"actions/probe.lua": `
seen = {}
function probe(ctx)
  seen.entity = ctx.entity
  seen.target = ctx.target
  seen.elapsed = ctx.elapsed_ms
  seen.runs = ctx.runs
  return ctx.runs > 2
end
function fail(ctx)
  error("boom")
end
`,
	})

	var got []ecs.EntityID
	e.Register("report", func(L *lua.LState) int {
		got = append(got, CheckEntity(L, 1))
		return 0
	})

	entity := ecs.EntityID(3 | 2<<32)
	done, err := e.RunAction("probe", ActionContext{Entity: entity, Target: 9, Elapsed: 1500 * time.Millisecond, Runs: 1})
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, e.vm.DoString(`report(seen.entity) report(seen.target)`))
	assert.Equal(t, []ecs.EntityID{entity, 9}, got)

	seen := e.vm.GetGlobal("seen").(*lua.LTable)
	assert.Equal(t, lua.LNumber(1500), seen.RawGetString("elapsed"))
	assert.Equal(t, lua.LNumber(1), seen.RawGetString("runs"))

	done, err = e.RunAction("probe", ActionContext{Runs: 3})
	require.NoError(t, err)
	assert.True(t, done)

	_, err = e.RunAction("fail", ActionContext{})
	assert.ErrorContains(t, err, "boom")

	_, err = e.RunAction("nope", ActionContext{})
	assert.ErrorIs(t, err, ErrUnknownFunction)
}
