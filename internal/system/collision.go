package system

import (
	"math"
	"slices"

	"github.com/darkhall/sim/internal/component"
	"github.com/darkhall/sim/internal/core/ecs"
	"github.com/darkhall/sim/internal/core/event"
	coresys "github.com/darkhall/sim/internal/core/system"
	"github.com/darkhall/sim/internal/world"
)

// CollisionSystem indexes collider proxies in a spatial grid and finds
// hitter/receiver overlaps each tick. Collision response belongs to the
// consumers of Contacts.
// Phase 3 (Collision).
type CollisionSystem struct {
	coresys.Base
	colliders *ecs.Store[component.Collider]
	grid      *world.Grid

	contacts  []event.Contact
	nearby    []ecs.EntityID
	maxRadius float64
}

func NewCollisionSystem(w *ecs.World, cellSize int) *CollisionSystem {
	s := &CollisionSystem{
		Base:      coresys.NewBase("collision", coresys.PhaseCollision),
		colliders: ecs.NewStore[component.Collider](w, "collision"),
		grid:      world.NewGrid(cellSize, 0, 0),
	}
	s.colliders.OnRemove(func(id ecs.EntityID, c *component.Collider) {
		s.grid.Remove(id, c.Cell.X, c.Cell.Y)
	})
	return s
}

// MakeCollidable registers a proxy for id bound to pos. The proxy does not
// own the entity: it leaves the grid when the entity is destroyed or Release
// is called.
func (s *CollisionSystem) MakeCollidable(id ecs.EntityID, spec component.ColliderSpec, pos *component.Point) (*component.Collider, error) {
	c := &component.Collider{Spec: spec, Pos: pos}
	c.Cell.X, c.Cell.Y = s.grid.Cell(pos.X, pos.Y)
	if err := s.colliders.Attach(id, c); err != nil {
		return nil, err
	}
	s.grid.Add(id, c.Cell.X, c.Cell.Y)
	s.maxRadius = math.Max(s.maxRadius, spec.Radius)
	return c, nil
}

// Release drops the proxy of id. Releasing twice is a no-op.
func (s *CollisionSystem) Release(id ecs.EntityID) bool {
	return s.colliders.Remove(id)
}

func (s *CollisionSystem) Entities() *ecs.Store[component.Collider] { return s.colliders }

// Contacts returns the overlaps found by the last Update, hitters in store
// order and receivers by id.
func (s *CollisionSystem) Contacts() []event.Contact {
	return append([]event.Contact(nil), s.contacts...)
}

func (s *CollisionSystem) Update(ctx *coresys.Context) {
	s.grid.SetBounds(ctx.Engine.WorldSize())
	s.contacts = s.contacts[:0]

	s.colliders.Each(func(id ecs.EntityID, c *component.Collider) {
		cx, cy := s.grid.Cell(c.Pos.X, c.Pos.Y)
		s.grid.Move(id, c.Cell.X, c.Cell.Y, cx, cy)
		c.Cell.X, c.Cell.Y = cx, cy
	})

	s.colliders.Each(func(id ecs.EntityID, c *component.Collider) {
		if !c.Spec.CanHit || !s.grid.InBounds(c.Pos.X, c.Pos.Y) {
			return
		}
		s.nearby = s.grid.Nearby(c.Cell.X, c.Cell.Y, s.span(c), s.nearby[:0])
		slices.Sort(s.nearby)
		for _, other := range s.nearby {
			if other == id {
				continue
			}
			oc, ok := s.colliders.Get(other)
			if !ok || !oc.Spec.CanReceive {
				continue
			}
			if overlaps(c, oc) {
				contact := event.Contact{Hitter: id, Receiver: other}
				s.contacts = append(s.contacts, contact)
				event.Emit(ctx.Bus, contact)
			}
		}
	})
}

func (s *CollisionSystem) Clear() {
	s.colliders.Clear()
	s.grid.Reset()
	s.contacts = s.contacts[:0]
	s.maxRadius = 0
}

// span is the number of cells a hitter's reach can cross on either axis.
func (s *CollisionSystem) span(c *component.Collider) int {
	reach := c.Spec.Radius + s.maxRadius
	return int(math.Ceil(reach / float64(s.grid.CellSize())))
}

// overlaps tests two proxies. Circles use their true distance; if either
// side is a box both are treated as squares of half extent Radius.
func overlaps(a, b *component.Collider) bool {
	dx := float64(a.Pos.X - b.Pos.X)
	dy := float64(a.Pos.Y - b.Pos.Y)
	reach := a.Spec.Radius + b.Spec.Radius
	if a.Spec.Shape == component.ShapeCircle && b.Spec.Shape == component.ShapeCircle {
		return dx*dx+dy*dy <= reach*reach
	}
	return math.Abs(dx) <= reach && math.Abs(dy) <= reach
}
