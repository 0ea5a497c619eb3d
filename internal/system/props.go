package system

import (
	"github.com/darkhall/sim/internal/component"
	"github.com/darkhall/sim/internal/core/ecs"
	coresys "github.com/darkhall/sim/internal/core/system"
)

// PropsSystem holds static visual placeholders: floor tiles, light fixtures.
// Phase 0 (Static), nothing to do per tick.
type PropsSystem struct {
	coresys.Base
	world *ecs.World
	props *ecs.Store[component.Prop]
}

func NewPropsSystem(w *ecs.World) *PropsSystem {
	return &PropsSystem{
		Base:  coresys.NewBase("props", coresys.PhaseStatic),
		world: w,
		props: ecs.NewStore[component.Prop](w, "props"),
	}
}

// Spawn creates a prop entity at pos.
func (s *PropsSystem) Spawn(pos component.Point, sprite string) (ecs.EntityID, error) {
	id := s.world.Spawn()
	if err := s.props.Add(id, &component.Prop{Pos: pos, Sprite: sprite}); err != nil {
		_ = s.world.Discard(id)
		return 0, err
	}
	return id, nil
}

func (s *PropsSystem) Entities() *ecs.Store[component.Prop] { return s.props }

func (s *PropsSystem) Update(_ *coresys.Context) {}

func (s *PropsSystem) Clear() { s.props.Clear() }
