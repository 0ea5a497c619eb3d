package component

// Prop is a static visual placeholder (floor tile, light fixture, ...).
type Prop struct {
	Pos    Point
	Sprite string
}

// Barrier is a static wall tile.
type Barrier struct {
	Pos    Point
	Sprite string
}
