package system

import (
	"math/rand"
	"testing"
	"time"

	"github.com/darkhall/sim/internal/config"
	"github.com/darkhall/sim/internal/core/ecs"
	"github.com/darkhall/sim/internal/core/event"
	coresys "github.com/darkhall/sim/internal/core/system"
	"github.com/darkhall/sim/internal/scripting"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine() *coresys.Engine {
	return coresys.NewEngine(ecs.NewWorld(), event.NewBus(), zap.NewNop())
}

// startEngine registers the standard system set with a fixed seed and
// initializes it.
func startEngine(t *testing.T, cfg *config.Config, lua *scripting.Engine) *coresys.Engine {
	t.Helper()
	if cfg == nil {
		cfg = config.Defaults()
	}
	e := newTestEngine()
	require.NoError(t, RegisterAll(e, Deps{Config: cfg, Rand: rand.New(rand.NewSource(7)), Lua: lua}))
	require.NoError(t, e.Init())
	return e
}

// tick advances the clock by one millisecond and runs one update.
func tick(e *coresys.Engine, n int) {
	for i := 0; i < n; i++ {
		e.Advance(time.Millisecond)
		e.Update()
	}
}
