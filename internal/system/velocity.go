package system

import (
	"errors"
	"fmt"
	"math"

	"github.com/darkhall/sim/internal/component"
	"github.com/darkhall/sim/internal/core/ecs"
	"github.com/darkhall/sim/internal/core/event"
	coresys "github.com/darkhall/sim/internal/core/system"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// ErrInvalidFriction rejects friction divisors below 1 or non-finite.
var ErrInvalidFriction = errors.New("friction must be finite and >= 1")

// maxCoord bounds accumulator components so rounding stays inside int range.
const maxCoord = 1 << 40

// VelocitySystem integrates bodies: the accumulator advances by velocity,
// the authoritative position is its rounding, and velocity decays by the
// friction divisor. Bodies do not interact with one another here.
// Phase 2 (Physics): runs before collision so contacts see settled positions.
type VelocitySystem struct {
	coresys.Base
	world  *ecs.World
	bodies *ecs.Store[component.Body]
}

func NewVelocitySystem(w *ecs.World) *VelocitySystem {
	return &VelocitySystem{
		Base:   coresys.NewBase("velocity", coresys.PhasePhysics),
		world:  w,
		bodies: ecs.NewStore[component.Body](w, "velocity"),
	}
}

func newBody(pos component.Point, friction float64) (*component.Body, error) {
	if math.IsNaN(friction) || math.IsInf(friction, 0) || friction < 1 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidFriction, friction)
	}
	return &component.Body{
		Pos:      pos,
		Exact:    mgl64.Vec2{float64(pos.X), float64(pos.Y)},
		Friction: friction,
	}, nil
}

// Spawn creates a standalone body owned by this system.
func (s *VelocitySystem) Spawn(pos component.Point, friction float64) (ecs.EntityID, *component.Body, error) {
	b, err := newBody(pos, friction)
	if err != nil {
		return 0, nil, err
	}
	id := s.world.Spawn()
	if err := s.bodies.Add(id, b); err != nil {
		_ = s.world.Discard(id)
		return 0, nil, err
	}
	return id, b, nil
}

// Attach gives an entity owned elsewhere a body.
func (s *VelocitySystem) Attach(id ecs.EntityID, pos component.Point, friction float64) (*component.Body, error) {
	b, err := newBody(pos, friction)
	if err != nil {
		return nil, err
	}
	if err := s.bodies.Attach(id, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *VelocitySystem) Entities() *ecs.Store[component.Body] { return s.bodies }

func (s *VelocitySystem) Update(ctx *coresys.Context) {
	s.bodies.Each(func(id ecs.EntityID, b *component.Body) {
		integrate(ctx, id, b)
	})
}

func (s *VelocitySystem) Clear() { s.bodies.Clear() }

func integrate(ctx *coresys.Context, id ecs.EntityID, b *component.Body) {
	next := b.Exact.Add(b.Vel)
	if field := degenerate(b, next); field != "" {
		// Keep the last good accumulator and stop the body.
		ctx.Log.Warn("non-finite body state, velocity reset",
			zap.Stringer("entity", id),
			zap.String("field", field),
			zap.Float64s("vel", b.Vel[:]),
		)
		event.Emit(ctx.Bus, event.NumericFault{EntityID: id, Field: field})
		b.Vel = mgl64.Vec2{}
		next = b.Exact
		if !inRange(next) {
			next = mgl64.Vec2{float64(b.Pos.X), float64(b.Pos.Y)}
		}
	}

	b.Exact = next
	b.Pos.X = int(math.Round(next[0]))
	b.Pos.Y = int(math.Round(next[1]))

	b.Vel[0] /= b.Friction
	b.Vel[1] /= b.Friction
}

// degenerate names the first field that would leave the representable range.
func degenerate(b *component.Body, next mgl64.Vec2) string {
	if !finite(b.Vel) {
		return "velocity"
	}
	if !inRange(next) {
		return "position"
	}
	return ""
}

func inRange(v mgl64.Vec2) bool {
	return finite(v) && math.Abs(v[0]) <= maxCoord && math.Abs(v[1]) <= maxCoord
}

func finite(v mgl64.Vec2) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
