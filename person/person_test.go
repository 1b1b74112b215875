package person

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivanpozdin/patchsim/geometry"
)

func testContext() Context {
	return Context{
		Grid:            geometry.NewRectangle(geometry.XY{}, geometry.XY{X: 10, Y: 10}),
		IncubationTicks: 2,
		RecoveryTicks:   3,
		Rand:            rand.New(rand.NewSource(1)),
	}
}

func TestSIRPerson_StateProgression(t *testing.T) {
	p := NewSIRPerson(1, geometry.XY{X: 5, Y: 5})
	ctx := testContext()

	require.True(t, p.IsSusceptible())
	p.Infect()
	require.True(t, p.IsInfected())
	require.False(t, p.IsInfectious())

	// Incubation lasts 2 ticks before becoming infectious.
	for i := 0; i < 2; i++ {
		p.Tick(ctx)
		p.BustGhost(ctx)
	}
	require.True(t, p.IsInfectious())
	require.True(t, p.IsCoughing())

	for i := 0; i < 3; i++ {
		p.Tick(ctx)
		p.BustGhost(ctx)
	}
	require.True(t, p.IsRecovered())
	require.False(t, p.IsInfectious())
}

func TestSIRPerson_InfectNoOpUnlessSusceptible(t *testing.T) {
	p := NewSIRPerson(1, geometry.XY{})
	p.Infect()
	require.True(t, p.IsInfected())

	// A second Infect() call while already infected must not reset the timer.
	ctx := testContext()
	p.Tick(ctx)
	p.Infect()
	require.Equal(t, 1, p.Info().AgeInState)
}

func TestSIRPerson_GhostBustingRevertsOnObstacle(t *testing.T) {
	p := NewSIRPerson(1, geometry.XY{X: 5, Y: 5})
	ctx := testContext()
	ctx.Obstacle = func(c geometry.XY) bool { return true } // everywhere blocked

	// Tick proposes a move without consulting obstacles; with seed 1 the
	// proposal is one step up.
	p.Tick(ctx)
	require.Equal(t, geometry.XY{X: 5, Y: 4}, p.ghost)
	p.BustGhost(ctx)
	require.Equal(t, geometry.XY{X: 5, Y: 5}, p.Position())
}

func TestSIRPerson_MovementStaysInGrid(t *testing.T) {
	p := NewSIRPerson(1, geometry.XY{X: 0, Y: 0})
	ctx := testContext()

	for i := 0; i < 50; i++ {
		p.Tick(ctx)
		p.BustGhost(ctx)
		require.True(t, ctx.Grid.Contains(p.Position()))
	}
}

func TestSIRPerson_CloneIsIndependent(t *testing.T) {
	p := NewSIRPerson(1, geometry.XY{X: 1, Y: 1})
	ctx := testContext()
	clone := p.Clone(ctx).(*SIRPerson)

	clone.Infect()
	require.False(t, p.IsInfected())
	require.True(t, clone.IsInfected())
}
