package main

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/darkhall/sim/internal/config"
	"github.com/darkhall/sim/internal/core/event"
	coresys "github.com/darkhall/sim/internal/core/system"
	"github.com/darkhall/sim/internal/data"
	"github.com/darkhall/sim/internal/persist"
	"github.com/darkhall/sim/internal/scripting"
	"github.com/darkhall/sim/internal/system"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// game drives runs: one run per level attempt. Restarting or moving on is
// always Clear, fresh systems, Init, then level load.
type game struct {
	engine *coresys.Engine
	cfg    *config.Config
	levels *data.LevelTable
	lua    *scripting.Engine
	scores *persist.ScoreRepo
	rng    *rand.Rand
	log    *zap.Logger

	runID   uuid.UUID
	levelID int
	ticks   int64

	agents *system.AgentSystem
	lights *system.LightingSystem

	flickers int
	faults   int
	restarts int
}

func newGame(engine *coresys.Engine, cfg *config.Config, levels *data.LevelTable, lua *scripting.Engine,
	scores *persist.ScoreRepo, rng *rand.Rand, log *zap.Logger) *game {
	return &game{
		engine: engine,
		cfg:    cfg,
		levels: levels,
		lua:    lua,
		scores: scores,
		rng:    rng,
		log:    log,
	}
}

// subscribe wires bus handlers once; subscriptions survive engine.Clear.
func (g *game) subscribe() {
	bus := g.engine.Bus()
	event.Subscribe(bus, func(ev event.LightToggled) {
		g.flickers++
	})
	event.Subscribe(bus, func(ev event.NumericFault) {
		g.faults++
		g.log.Warn("numeric fault", zap.Stringer("entity", ev.EntityID), zap.String("field", ev.Field))
	})
	event.Subscribe(bus, func(ev event.EntityDestroyed) {
		g.log.Debug("entity destroyed", zap.Stringer("entity", ev.EntityID), zap.String("system", ev.System))
	})
}

func (g *game) start(levelID int) error {
	lvl, ok := g.levels.Get(levelID)
	if !ok {
		return fmt.Errorf("level %d not found", levelID)
	}

	g.engine.Clear()
	if err := system.RegisterAll(g.engine, system.Deps{Config: g.cfg, Rand: g.rng, Lua: g.lua}); err != nil {
		return fmt.Errorf("register systems: %w", err)
	}
	if err := g.engine.Init(); err != nil {
		return fmt.Errorf("init systems: %w", err)
	}
	if err := system.LoadLevel(g.engine, lvl); err != nil {
		return fmt.Errorf("load level: %w", err)
	}

	g.agents = coresys.MustLookup[*system.AgentSystem](g.engine)
	g.lights = coresys.MustLookup[*system.LightingSystem](g.engine)
	g.runID = uuid.New()
	g.levelID = levelID

	w, h := g.engine.WorldSize()
	g.log.Info("level started",
		zap.Int("level", levelID),
		zap.String("name", lvl.Info.Name),
		zap.Stringer("run", g.runID),
		zap.Int("entities", g.engine.World().Live()),
		zap.Int("width", w),
		zap.Int("height", h),
	)
	return nil
}

// tick advances one frame and reports whether the simulation is over.
// A dead player restarts the current level.
func (g *game) tick() (bool, error) {
	g.engine.Advance(g.cfg.Sim.TickRate)
	g.engine.Update()
	g.ticks++

	if g.lights.ConsumeRerender() {
		g.log.Debug("lighting changed", zap.Int64("tick", g.ticks))
	}

	if g.cfg.Sim.MaxTicks > 0 && g.ticks >= g.cfg.Sim.MaxTicks {
		return true, nil
	}
	if _, alive := g.agents.Player(); !alive {
		g.restarts++
		g.log.Info("player died, restarting level",
			zap.Int("level", g.levelID),
			zap.Duration("time", g.engine.Time()),
		)
		return false, g.start(g.levelID)
	}
	if g.agents.Enemies() > 0 {
		return false, nil
	}
	return g.complete()
}

func (g *game) complete() (bool, error) {
	elapsed := g.engine.Time()
	g.log.Info("level completed",
		zap.Int("level", g.levelID),
		zap.Duration("time", elapsed),
		zap.Stringer("run", g.runID),
	)
	g.recordScore(elapsed)

	ids := g.levels.IDs()
	for _, id := range ids {
		if id > g.levelID {
			return false, g.start(id)
		}
	}
	return true, nil
}

func (g *game) recordScore(elapsed time.Duration) {
	if g.scores == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	prev, err := g.scores.Best(ctx, g.cfg.Sim.Difficulty, g.levelID)
	if err != nil {
		g.log.Error("load best time failed", zap.Error(err))
		return
	}
	best, err := g.scores.Record(ctx, g.cfg.Sim.Difficulty, g.levelID, elapsed, g.runID)
	if err != nil {
		g.log.Error("record score failed", zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.Int("level", g.levelID),
		zap.Duration("time", elapsed),
		zap.Bool("new_best", best),
	}
	if prev != nil {
		fields = append(fields, zap.Duration("previous_best", prev.Best))
	}
	g.log.Info("score recorded", fields...)
}

// firstLevel clamps the configured start level to the levels unlocked on
// this difficulty. Without score storage every level is open.
func (g *game) firstLevel(want int) (int, error) {
	if g.scores == nil {
		return want, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	completed, err := g.scores.Completed(ctx, g.cfg.Sim.Difficulty)
	if err != nil {
		return 0, err
	}
	id := unlockedLevel(g.levels.IDs(), len(completed), want)
	if id != want {
		g.log.Info("start level locked",
			zap.Int("wanted", want),
			zap.Int("level", id),
			zap.Int("completed", len(completed)),
		)
	}
	return id, nil
}

// unlockedLevel returns want if it is among the first completed+1 level ids,
// else the last unlocked one.
func unlockedLevel(ids []int, completed, want int) int {
	if len(ids) == 0 {
		return want
	}
	unlocked := ids[:min(len(ids), completed+1)]
	if slices.Contains(unlocked, want) {
		return want
	}
	return unlocked[len(unlocked)-1]
}

func (g *game) logStats() {
	for _, st := range g.engine.Stats() {
		g.log.Info("system stats",
			zap.String("system", st.Name),
			zap.Int64("runs", st.ExecutionCount),
			zap.Duration("avg", st.AvgDuration),
			zap.Duration("max", st.MaxDuration),
		)
	}
	g.log.Info("run summary",
		zap.Int("flickers", g.flickers),
		zap.Int("faults", g.faults),
		zap.Int("restarts", g.restarts),
	)
}
