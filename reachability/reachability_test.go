package reachability

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivanpozdin/patchsim/geometry"
)

func TestMayPropagateFrom_NoObstacles(t *testing.T) {
	gr, err := New(
		geometry.XY{X: 10, Y: 10},
		nil,
		[]geometry.XY{{X: 0, Y: 0}},
		1,
	)
	require.NoError(t, err)

	source := geometry.NewRectangle(geometry.XY{X: 0, Y: 0}, geometry.XY{X: 2, Y: 2})
	target := geometry.NewRectangle(geometry.XY{X: 8, Y: 8}, geometry.XY{X: 2, Y: 2})
	require.True(t, gr.MayPropagateFrom(source, target))
}

func TestMayPropagateFrom_WalledOff(t *testing.T) {
	// A full-height wall at x=5 splits the grid into two disconnected halves.
	wall := geometry.NewRectangle(geometry.XY{X: 5, Y: 0}, geometry.XY{X: 1, Y: 10})
	gr, err := New(
		geometry.XY{X: 10, Y: 10},
		[]geometry.Rectangle{wall},
		[]geometry.XY{{X: 0, Y: 0}, {X: 9, Y: 9}},
		1,
	)
	require.NoError(t, err)

	left := geometry.NewRectangle(geometry.XY{X: 0, Y: 0}, geometry.XY{X: 2, Y: 2})
	right := geometry.NewRectangle(geometry.XY{X: 8, Y: 8}, geometry.XY{X: 2, Y: 2})
	require.False(t, gr.MayPropagateFrom(left, right))
	require.False(t, gr.MayPropagateFrom(right, left))
}

func TestMayPropagateFrom_EmptyComponentExcluded(t *testing.T) {
	// Split grid in half with a wall, but only seed a person on the left:
	// the right half is a connected-but-uninhabited ("empty") component.
	wall := geometry.NewRectangle(geometry.XY{X: 5, Y: 0}, geometry.XY{X: 1, Y: 10})
	gr, err := New(
		geometry.XY{X: 10, Y: 10},
		[]geometry.Rectangle{wall},
		[]geometry.XY{{X: 0, Y: 0}},
		1,
	)
	require.NoError(t, err)

	right := geometry.NewRectangle(geometry.XY{X: 8, Y: 8}, geometry.XY{X: 2, Y: 2})
	other := geometry.NewRectangle(geometry.XY{X: 6, Y: 0}, geometry.XY{X: 2, Y: 2})
	// Both cells are in the same free component (the right half), but since
	// it is uninhabited, no source cell within it can ever propagate.
	require.False(t, gr.MayPropagateFrom(other, right))
}

func TestMayPropagateFrom_AdjacentTrue(t *testing.T) {
	gr, err := New(
		geometry.XY{X: 4, Y: 4},
		nil,
		[]geometry.XY{{X: 0, Y: 0}},
		0,
	)
	require.NoError(t, err)

	a := geometry.NewRectangle(geometry.XY{X: 0, Y: 0}, geometry.XY{X: 1, Y: 1})
	b := geometry.NewRectangle(geometry.XY{X: 1, Y: 1}, geometry.XY{X: 1, Y: 1})
	// Even with R=0, a single Chebyshev-1 diagonal step connects adjacent cells.
	require.True(t, gr.MayPropagateFrom(a, b))
}
