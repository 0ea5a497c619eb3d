package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/darkhall/sim/internal/config"
	"github.com/darkhall/sim/internal/core/ecs"
	"github.com/darkhall/sim/internal/core/event"
	coresys "github.com/darkhall/sim/internal/core/system"
	"github.com/darkhall/sim/internal/data"
	"github.com/darkhall/sim/internal/persist"
	"github.com/darkhall/sim/internal/scripting"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/sim.toml"
	if p := os.Getenv("SIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Level data and scripts
	levels, err := data.LoadLevels(cfg.Data.LevelList, cfg.Data.LevelDir)
	if err != nil {
		return fmt.Errorf("load levels: %w", err)
	}
	log.Info("levels loaded", zap.Int("count", levels.Count()))

	lua, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer lua.Close()

	// 4. Optional score storage
	var scores *persist.ScoreRepo
	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()

		if err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		scores = persist.NewScoreRepo(db)
	}

	// 5. Engine
	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	engine := coresys.NewEngine(ecs.NewWorld(), event.NewBus(), log)
	g := newGame(engine, cfg, levels, lua, scores, rand.New(rand.NewSource(seed)), log)
	g.subscribe()

	first, err := g.firstLevel(cfg.Sim.StartLevel)
	if err != nil {
		return fmt.Errorf("unlocked levels: %w", err)
	}
	if err := g.start(first); err != nil {
		return err
	}

	// 6. Tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sim.TickRate)
	defer ticker.Stop()

	log.Info("simulation running",
		zap.Duration("tick", cfg.Sim.TickRate),
		zap.Int64("seed", seed),
		zap.String("difficulty", cfg.Sim.Difficulty),
	)

	for {
		select {
		case <-ticker.C:
			done, err := g.tick()
			if err != nil {
				return err
			}
			if done {
				g.logStats()
				log.Info("simulation finished", zap.Int64("ticks", g.ticks))
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			g.logStats()
			engine.Clear()
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
