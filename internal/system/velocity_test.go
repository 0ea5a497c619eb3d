package system

import (
	"math"
	"testing"

	"github.com/darkhall/sim/internal/component"
	"github.com/darkhall/sim/internal/core/ecs"
	"github.com/darkhall/sim/internal/core/event"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startVelocity(t *testing.T) (*VelocitySystem, func(n int)) {
	t.Helper()
	e := newTestEngine()
	v := NewVelocitySystem(e.World())
	require.NoError(t, e.Register(v))
	require.NoError(t, e.Init())
	return v, func(n int) { tick(e, n) }
}

func TestVelocityNoFriction(t *testing.T) {
	v, run := startVelocity(t)
	_, b, err := v.Spawn(component.Point{X: 10, Y: 20}, 1)
	require.NoError(t, err)
	b.Vel = mgl64.Vec2{3.5, -1.25}

	for n := 1; n <= 10; n++ {
		run(1)
		assert.Equal(t, mgl64.Vec2{3.5, -1.25}, b.Vel)
		assert.InDelta(t, 10+3.5*float64(n), b.Exact[0], 1e-9)
		assert.InDelta(t, 20-1.25*float64(n), b.Exact[1], 1e-9)
		assert.Equal(t, int(math.Round(b.Exact[0])), b.Pos.X)
		assert.Equal(t, int(math.Round(b.Exact[1])), b.Pos.Y)
	}
}

func TestVelocityFrictionDecay(t *testing.T) {
	v, run := startVelocity(t)
	_, b, err := v.Spawn(component.Point{}, 2)
	require.NoError(t, err)
	b.Vel = mgl64.Vec2{8, -8}

	prev := b.Vel.Len()
	for n := 1; n <= 20; n++ {
		run(1)
		want := 8 / math.Pow(2, float64(n))
		assert.InDelta(t, want, b.Vel[0], 1e-12)
		assert.InDelta(t, -want, b.Vel[1], 1e-12)
		assert.Less(t, b.Vel.Len(), prev)
		prev = b.Vel.Len()
	}
	// Geometric series: 8 + 4 + 2 + ... approaches 16.
	assert.InDelta(t, 16, b.Exact[0], 1e-3)
	assert.Equal(t, 16, b.Pos.X)
	assert.Equal(t, -16, b.Pos.Y)
}

func TestVelocityAccumulatorKeepsFraction(t *testing.T) {
	v, run := startVelocity(t)
	_, b, err := v.Spawn(component.Point{}, 1)
	require.NoError(t, err)
	b.Vel = mgl64.Vec2{0.4, 0}

	run(1)
	assert.InDelta(t, 0.4, b.Exact[0], 1e-12)
	assert.Equal(t, 0, b.Pos.X)

	run(1)
	assert.InDelta(t, 0.8, b.Exact[0], 1e-12)
	assert.Equal(t, 1, b.Pos.X, "sub-pixel motion adds up")
}

func TestVelocityRoundsHalfAwayFromZero(t *testing.T) {
	v, run := startVelocity(t)
	_, pos, err := v.Spawn(component.Point{}, 1)
	require.NoError(t, err)
	_, neg, err := v.Spawn(component.Point{}, 1)
	require.NoError(t, err)
	pos.Vel = mgl64.Vec2{0.5, 2.5}
	neg.Vel = mgl64.Vec2{-0.5, -2.5}

	run(1)
	assert.Equal(t, component.Point{X: 1, Y: 3}, pos.Pos)
	assert.Equal(t, component.Point{X: -1, Y: -3}, neg.Pos)
}

func TestVelocityNonFinite(t *testing.T) {
	e := newTestEngine()
	v := NewVelocitySystem(e.World())
	require.NoError(t, e.Register(v))
	require.NoError(t, e.Init())

	var faults []event.NumericFault
	event.Subscribe(e.Bus(), func(ev event.NumericFault) { faults = append(faults, ev) })

	id, b, err := v.Spawn(component.Point{X: 5, Y: 5}, 1.5)
	require.NoError(t, err)
	b.Vel = mgl64.Vec2{1, 0}
	tick(e, 1)
	good := b.Exact

	b.Vel = mgl64.Vec2{math.NaN(), 0}
	tick(e, 1)
	assert.Equal(t, mgl64.Vec2{}, b.Vel)
	assert.Equal(t, good, b.Exact)
	assert.Equal(t, component.Point{X: 6, Y: 5}, b.Pos)

	b.Vel = mgl64.Vec2{math.Inf(1), 0}
	tick(e, 1)
	assert.Equal(t, good, b.Exact)

	b.Vel = mgl64.Vec2{0, 2 * maxCoord}
	tick(e, 1)
	assert.Equal(t, good, b.Exact)
	assert.Equal(t, mgl64.Vec2{}, b.Vel)

	tick(e, 1)
	require.Len(t, faults, 3)
	assert.Equal(t, event.NumericFault{EntityID: id, Field: "velocity"}, faults[0])
	assert.Equal(t, "velocity", faults[1].Field)
	assert.Equal(t, "position", faults[2].Field)
}

func TestVelocityInvalidFriction(t *testing.T) {
	e := newTestEngine()
	v := NewVelocitySystem(e.World())

	for _, f := range []float64{0, 0.99, -2, math.NaN(), math.Inf(1)} {
		_, _, err := v.Spawn(component.Point{}, f)
		assert.ErrorIs(t, err, ErrInvalidFriction, "friction %g", f)
	}
	assert.Equal(t, 0, e.World().Live(), "rejected bodies leave no entity behind")
}

func TestVelocityAttachDoesNotOwn(t *testing.T) {
	e := newTestEngine()
	v := NewVelocitySystem(e.World())
	id := e.World().Spawn()

	_, err := v.Attach(id, component.Point{X: 1}, 1)
	require.NoError(t, err)
	_, owned := e.World().Owner(id)
	assert.False(t, owned)

	assert.ErrorIs(t, e.World().Destroy(id), ecs.ErrNotOwned)
	require.NoError(t, e.World().Discard(id))
	assert.Equal(t, 0, v.Entities().Len())
}
