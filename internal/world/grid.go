package world

import "github.com/darkhall/sim/internal/core/ecs"

// Grid implements a cell-based spatial index over entity ids.
// Callers size the Nearby span from the largest reach they need to cover.
// Accessed only from the game loop goroutine, no locks.
type Grid struct {
	cellSize int
	width    int
	height   int
	cells    map[cellKey]map[ecs.EntityID]struct{}
	count    int
}

type cellKey struct {
	cx int
	cy int
}

func NewGrid(cellSize, width, height int) *Grid {
	if cellSize < 1 {
		cellSize = 1
	}
	return &Grid{
		cellSize: cellSize,
		width:    width,
		height:   height,
		cells:    make(map[cellKey]map[ecs.EntityID]struct{}),
	}
}

func (g *Grid) toCellCoord(v int) int {
	if v < 0 {
		return (v - g.cellSize + 1) / g.cellSize
	}
	return v / g.cellSize
}

// Cell returns the cell coordinates containing (x, y).
func (g *Grid) Cell(x, y int) (cx, cy int) {
	return g.toCellCoord(x), g.toCellCoord(y)
}

// InBounds reports whether (x, y) lies inside the world. A grid with no
// bounds (zero width or height) accepts every position.
func (g *Grid) InBounds(x, y int) bool {
	if g.width <= 0 || g.height <= 0 {
		return true
	}
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// Add places an entity into the cell (cx, cy).
func (g *Grid) Add(id ecs.EntityID, cx, cy int) {
	k := cellKey{cx: cx, cy: cy}
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[ecs.EntityID]struct{})
		g.cells[k] = cell
	}
	if _, ok := cell[id]; !ok {
		cell[id] = struct{}{}
		g.count++
	}
}

// Remove takes an entity out of the cell (cx, cy).
func (g *Grid) Remove(id ecs.EntityID, cx, cy int) {
	k := cellKey{cx: cx, cy: cy}
	cell := g.cells[k]
	if cell == nil {
		return
	}
	if _, ok := cell[id]; ok {
		delete(cell, id)
		g.count--
	}
	if len(cell) == 0 {
		delete(g.cells, k)
	}
}

// Move re-indexes an entity when its cell changes.
func (g *Grid) Move(id ecs.EntityID, oldCX, oldCY, newCX, newCY int) {
	if oldCX == newCX && oldCY == newCY {
		return
	}
	g.Remove(id, oldCX, oldCY)
	g.Add(id, newCX, newCY)
}

// Nearby returns all ids in the cells within span of (cx, cy), a
// (2*span+1)^2 block. A span below 1 scans the 3x3 neighbourhood.
// Caller does fine-grained overlap filtering.
func (g *Grid) Nearby(cx, cy, span int, out []ecs.EntityID) []ecs.EntityID {
	if span < 1 {
		span = 1
	}
	for dx := -span; dx <= span; dx++ {
		for dy := -span; dy <= span; dy++ {
			for id := range g.cells[cellKey{cx: cx + dx, cy: cy + dy}] {
				out = append(out, id)
			}
		}
	}
	return out
}

// CellSize returns the edge of one cell in world units.
func (g *Grid) CellSize() int { return g.cellSize }

// Len returns the number of indexed entities.
func (g *Grid) Len() int { return g.count }

// SetBounds applies new world bounds without touching indexed entities.
func (g *Grid) SetBounds(width, height int) {
	g.width = width
	g.height = height
}

// Reset empties the grid.
func (g *Grid) Reset() {
	g.cells = make(map[cellKey]map[ecs.EntityID]struct{})
	g.count = 0
}
