package system

import (
	"fmt"

	"github.com/darkhall/sim/internal/component"
	coresys "github.com/darkhall/sim/internal/core/system"
	"github.com/darkhall/sim/internal/data"
)

// LoadLevel sets the world size from the level grid and spawns one set of
// entities per tile. The systems it needs must already be registered.
func LoadLevel(e *coresys.Engine, lvl *data.Level) error {
	props := coresys.MustLookup[*PropsSystem](e)
	barriers := coresys.MustLookup[*BarrierSystem](e)
	agents := coresys.MustLookup[*AgentSystem](e)
	lights := coresys.MustLookup[*LightingSystem](e)

	e.SetWorldSize(lvl.Width*data.TileSize, lvl.Height*data.TileSize)

	for y := 0; y < lvl.Height; y++ {
		for x := 0; x < len(lvl.Rows[y]); x++ {
			pos := component.Point{X: x * data.TileSize, Y: y * data.TileSize}
			if err := spawnTile(lvl.Tile(x, y), pos, props, barriers, agents, lights); err != nil {
				return fmt.Errorf("level %d tile (%d,%d): %w", lvl.Info.ID, x, y, err)
			}
		}
	}

	if len(lvl.Info.Actions) == 0 {
		return nil
	}
	actions, err := coresys.Lookup[*ActionsSystem](e)
	if err != nil {
		return fmt.Errorf("level %d actions: %w", lvl.Info.ID, err)
	}
	for _, script := range lvl.Info.Actions {
		if _, err := actions.Spawn(script, 0, e.Time()); err != nil {
			return fmt.Errorf("level %d: %w", lvl.Info.ID, err)
		}
	}
	return nil
}

func spawnTile(tile byte, pos component.Point, props *PropsSystem, barriers *BarrierSystem, agents *AgentSystem, lights *LightingSystem) error {
	var err error
	switch tile {
	case data.TilePlayer:
		_, err = agents.Spawn(component.AgentPlayer, pos)
	case data.TileEnemy:
		_, err = agents.Spawn(component.AgentEnemy, pos)
	case data.TileWall:
		_, err = barriers.Spawn(pos, "wall")
		return err
	case data.TileLight:
		_, err = lights.Spawn(pos, component.LightOptions{Physical: true, Enabled: true, Size: 1})
	case data.TileBrokenLight:
		_, err = lights.Spawn(pos, component.LightOptions{Physical: true, Enabled: true, Broken: true, Size: 1})
	case data.TileFloor:
	default:
		return nil
	}
	if err != nil {
		return err
	}
	_, err = props.Spawn(pos, "floor")
	return err
}
