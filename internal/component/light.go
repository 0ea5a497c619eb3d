package component

import "time"

// LightOptions are the level-authored properties of a light.
type LightOptions struct {
	Physical bool // occupies a collision proxy and a "light" prop
	Enabled  bool
	Broken   bool // flickers at random
	Size     float64
}

// Light is a stateful light source.
type Light struct {
	Pos         Point
	Options     LightOptions
	LastUpdated time.Duration
}
