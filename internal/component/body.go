package component

import "github.com/go-gl/mathgl/mgl64"

// Point is an integer world position in pixels.
type Point struct {
	X int
	Y int
}

// Body is a positioned, velocity-bearing object integrated by the velocity system.
// Pure data, zero methods: all mutations happen in system functions.
type Body struct {
	Pos      Point      // authoritative, rounded from Exact each tick
	Exact    mgl64.Vec2 // sub-pixel accumulator, never rounded
	Vel      mgl64.Vec2
	Friction float64 // ≥ 1; 1 means no decay
}
