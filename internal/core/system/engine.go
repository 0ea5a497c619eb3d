package system

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/darkhall/sim/internal/core/ecs"
	"github.com/darkhall/sim/internal/core/event"
	"go.uber.org/zap"
)

var (
	ErrDuplicateSystem = errors.New("system type already registered")
	ErrNotRegistered   = errors.New("system type not registered")
	ErrPhaseOrder      = errors.New("system registered out of phase order")
	ErrStarted         = errors.New("engine already initialized")
)

// Engine holds one instance per system type and runs them in registration
// order each tick. Single-goroutine access only (game loop).
type Engine struct {
	world *ecs.World
	bus   *event.Bus
	log   *zap.Logger

	systems []System
	byType  map[reflect.Type]System
	stats   []*systemStatsInternal

	initialized bool
	now         time.Duration
	width       int
	height      int
}

func NewEngine(world *ecs.World, bus *event.Bus, log *zap.Logger) *Engine {
	return &Engine{
		world:  world,
		bus:    bus,
		log:    log,
		byType: make(map[reflect.Type]System, 16),
	}
}

func (e *Engine) World() *ecs.World { return e.world }
func (e *Engine) Bus() *event.Bus   { return e.bus }

// Register appends s to the tick order. A second system of the same
// concrete type is rejected, as is registration after Init.
func (e *Engine) Register(s System) error {
	if e.initialized {
		return fmt.Errorf("register %s: %w", s.Name(), ErrStarted)
	}
	t := reflect.TypeOf(s)
	if _, ok := e.byType[t]; ok {
		return fmt.Errorf("register %s: %w", s.Name(), ErrDuplicateSystem)
	}
	if n := len(e.systems); n > 0 && s.Phase() < e.systems[n-1].Phase() {
		last := e.systems[n-1]
		return fmt.Errorf("register %s (%s) after %s (%s): %w",
			s.Name(), s.Phase(), last.Name(), last.Phase(), ErrPhaseOrder)
	}
	e.byType[t] = s
	e.systems = append(e.systems, s)
	e.stats = append(e.stats, &systemStatsInternal{
		name:        s.Name(),
		minDuration: time.Duration(1<<63 - 1),
	})
	return nil
}

// Lookup returns the registered system of type T.
func Lookup[T System](e *Engine) (T, error) {
	var zero T
	s, ok := e.byType[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return zero, fmt.Errorf("lookup %T: %w", zero, ErrNotRegistered)
	}
	return s.(T), nil
}

// MustLookup is Lookup for callers that registered T themselves; a miss is
// a wiring bug and panics.
func MustLookup[T System](e *Engine) T {
	s, err := Lookup[T](e)
	if err != nil {
		panic("system: " + err.Error())
	}
	return s
}

// Systems returns the registered systems in tick order.
func (e *Engine) Systems() []System {
	return append([]System(nil), e.systems...)
}

// Init calls Init on every system in registration order, once per run.
func (e *Engine) Init() error {
	if e.initialized {
		return ErrStarted
	}
	ctx := e.context()
	for _, s := range e.systems {
		if err := s.Init(ctx); err != nil {
			return fmt.Errorf("init %s: %w", s.Name(), err)
		}
	}
	e.initialized = true
	e.log.Debug("engine initialized", zap.Int("systems", len(e.systems)))
	return nil
}

// Update runs one tick: last tick's events are dispatched, every system
// updates once in registration order, then queued destructions are flushed.
func (e *Engine) Update() {
	if !e.initialized {
		panic("system: Update before Init")
	}
	e.bus.SwapBuffers()
	e.bus.DispatchAll()

	ctx := e.context()
	for i, s := range e.systems {
		start := time.Now()
		s.Update(ctx)
		e.stats[i].record(time.Since(start))
	}

	e.world.FlushDestroyQueue()
}

// Clear tears the run down: every system drops its entities, then the
// world, bus, clock, world bounds and registrations reset so fresh systems
// can register.
func (e *Engine) Clear() {
	for _, s := range e.systems {
		s.Clear()
	}
	e.world.Reset()
	e.bus.Reset()
	e.systems = nil
	e.stats = nil
	e.byType = make(map[reflect.Type]System, 16)
	e.initialized = false
	e.now = 0
	e.width, e.height = 0, 0
}

// Advance moves the simulation clock. The driver calls it once per tick;
// the engine never advances time on its own.
func (e *Engine) Advance(d time.Duration) { e.now += d }

func (e *Engine) Time() time.Duration { return e.now }

// SetWorldSize records the world bounds used by spatial systems.
func (e *Engine) SetWorldSize(width, height int) {
	e.width = width
	e.height = height
}

func (e *Engine) WorldSize() (width, height int) { return e.width, e.height }

func (e *Engine) context() *Context {
	return &Context{
		Engine: e,
		World:  e.world,
		Bus:    e.bus,
		Log:    e.log,
		Time:   e.now,
	}
}
