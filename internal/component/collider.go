package component

// Shape selects the overlap test of a collider.
type Shape uint8

const (
	ShapeCircle Shape = iota
	ShapeBox          // axis-aligned square, Radius is the half extent
)

// ColliderSpec describes how an entity participates in collision.
type ColliderSpec struct {
	Shape          Shape
	Radius         float64
	CanHit         bool // produces contacts against receivers
	CanReceive     bool // can be hit
	ShouldDecouple bool // collision response should push the pair apart
}

// Collider is the proxy handed back by the collision system. Pos points at
// the owner's authoritative position; the collider never owns it.
type Collider struct {
	Spec ColliderSpec
	Pos  *Point
	Cell Point // grid cell currently indexed
}
