package system

import (
	"math/rand"
	"time"

	"github.com/darkhall/sim/internal/component"
	"github.com/darkhall/sim/internal/config"
	"github.com/darkhall/sim/internal/core/ecs"
	"github.com/darkhall/sim/internal/core/event"
	coresys "github.com/darkhall/sim/internal/core/system"
	"go.uber.org/zap"
)

// lightCollider marks a light as something projectiles can hit without the
// light itself hitting or pushing anything.
var lightCollider = component.ColliderSpec{
	Shape:          component.ShapeCircle,
	Radius:         0,
	CanHit:         false,
	CanReceive:     true,
	ShouldDecouple: false,
}

// LightingSystem owns lights. Broken lights flicker: once MinInterval has
// passed since their last toggle, each tick flips them with FlickerChance.
// Phase 5 (Visual).
type LightingSystem struct {
	coresys.Base
	world     *ecs.World
	lights    *ecs.Store[component.Light]
	colliders *CollisionSystem
	props     *PropsSystem

	rng         *rand.Rand
	chance      float64
	minInterval time.Duration

	needRerender bool
}

func NewLightingSystem(w *ecs.World, colliders *CollisionSystem, props *PropsSystem, cfg config.LightingConfig, rng *rand.Rand) *LightingSystem {
	return &LightingSystem{
		Base:         coresys.NewBase("lights", coresys.PhaseVisual),
		world:        w,
		lights:       ecs.NewStore[component.Light](w, "lights"),
		colliders:    colliders,
		props:        props,
		rng:          rng,
		chance:       cfg.FlickerChance,
		minInterval:  cfg.MinInterval,
		needRerender: true,
	}
}

// Spawn builds a light record, attaches its sibling registrations, then
// makes it live in this system. A physical light gets a collider and a
// "light" prop; both are released when the light is destroyed.
func (s *LightingSystem) Spawn(pos component.Point, opts component.LightOptions) (ecs.EntityID, error) {
	light := &component.Light{Pos: pos, Options: opts}
	id := s.world.Spawn()

	if opts.Physical {
		if err := s.attachFixture(id, light); err != nil {
			_ = s.world.Discard(id)
			return 0, err
		}
	}

	if err := s.lights.Add(id, light); err != nil {
		_ = s.world.Discard(id)
		return 0, err
	}
	s.needRerender = true
	return id, nil
}

func (s *LightingSystem) attachFixture(id ecs.EntityID, light *component.Light) error {
	if _, err := s.colliders.MakeCollidable(id, lightCollider, &light.Pos); err != nil {
		return err
	}
	propID, err := s.props.Spawn(light.Pos, "light")
	if err != nil {
		return err
	}
	return s.world.OnDestroy(id, func() {
		// The prop may already be gone; that is fine.
		_ = s.world.Destroy(propID)
	})
}

func (s *LightingSystem) Entities() *ecs.Store[component.Light] { return s.lights }

// NeedRerender reports whether any light changed since the last ConsumeRerender.
func (s *LightingSystem) NeedRerender() bool { return s.needRerender }

// ConsumeRerender returns NeedRerender and resets it.
func (s *LightingSystem) ConsumeRerender() bool {
	v := s.needRerender
	s.needRerender = false
	return v
}

func (s *LightingSystem) Update(ctx *coresys.Context) {
	s.lights.Each(func(id ecs.EntityID, l *component.Light) {
		if !l.Options.Broken {
			return
		}
		if ctx.Time-l.LastUpdated <= s.minInterval {
			return
		}
		if s.rng.Float64() >= s.chance {
			return
		}
		l.Options.Enabled = !l.Options.Enabled
		l.LastUpdated = ctx.Time
		s.needRerender = true
		event.Emit(ctx.Bus, event.LightToggled{EntityID: id, Enabled: l.Options.Enabled, At: ctx.Time})
		ctx.Log.Debug("light flicker",
			zap.Stringer("entity", id),
			zap.Bool("enabled", l.Options.Enabled),
		)
	})
}

func (s *LightingSystem) Clear() {
	s.lights.Clear()
	s.needRerender = true
}
