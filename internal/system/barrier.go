package system

import (
	"github.com/darkhall/sim/internal/component"
	"github.com/darkhall/sim/internal/core/ecs"
	coresys "github.com/darkhall/sim/internal/core/system"
	"github.com/darkhall/sim/internal/data"
)

var wallCollider = component.ColliderSpec{
	Shape:          component.ShapeBox,
	Radius:         data.TileSize / 2,
	CanHit:         false,
	CanReceive:     true,
	ShouldDecouple: true,
}

// BarrierSystem holds wall tiles. Each wall carries a box collider.
// Phase 0 (Static).
type BarrierSystem struct {
	coresys.Base
	world     *ecs.World
	barriers  *ecs.Store[component.Barrier]
	colliders *CollisionSystem
}

func NewBarrierSystem(w *ecs.World, colliders *CollisionSystem) *BarrierSystem {
	return &BarrierSystem{
		Base:      coresys.NewBase("barriers", coresys.PhaseStatic),
		world:     w,
		barriers:  ecs.NewStore[component.Barrier](w, "barriers"),
		colliders: colliders,
	}
}

// Spawn creates a wall at pos. The collider is attached before the wall
// joins the barrier store.
func (s *BarrierSystem) Spawn(pos component.Point, sprite string) (ecs.EntityID, error) {
	b := &component.Barrier{Pos: pos, Sprite: sprite}
	id := s.world.Spawn()
	if _, err := s.colliders.MakeCollidable(id, wallCollider, &b.Pos); err != nil {
		_ = s.world.Discard(id)
		return 0, err
	}
	if err := s.barriers.Add(id, b); err != nil {
		_ = s.world.Discard(id)
		return 0, err
	}
	return id, nil
}

func (s *BarrierSystem) Entities() *ecs.Store[component.Barrier] { return s.barriers }

func (s *BarrierSystem) Update(_ *coresys.Context) {}

func (s *BarrierSystem) Clear() { s.barriers.Clear() }
