// Package reachability decides, at orchestrator setup, whether a padding
// channel between two patches is worth creating at all: if no free-space
// path lets an infection starting in a source rectangle ever influence a
// target rectangle, no channel is needed between them. Construction is
// built on github.com/katalvlaran/lvlath/gridgraph's connected-component
// flood fill; the per-query frontier expansion is bespoke (lvlath's bfs
// package runs single-source, unbounded-depth BFS over a plain graph, not a
// multi-source frontier bounded by the union of two distinct distance
// metrics, so it does not fit this query directly).
package reachability

import (
	"github.com/katalvlaran/lvlath/gridgraph"

	"github.com/ivanpozdin/patchsim/geometry"
)

// GridReachability precomputes obstacle-aware connectivity over a grid so
// that MayPropagateFrom queries are cheap at orchestrator setup time.
// Immutable after construction.
type GridReachability struct {
	grid      geometry.Rectangle
	radius    int
	obstacle  func(geometry.XY) bool
	component map[geometry.XY]int
	empty     map[int]bool
}

// New builds a GridReachability for a grid of the given size, with the
// given obstacle rectangles, an initial population used to determine which
// connected components are inhabited ("empty" components are excluded from
// propagation since they can never harbor an infectious person), and the
// scenario's infection radius R.
func New(gridSize geometry.XY, obstacles []geometry.Rectangle, initialPositions []geometry.XY, infectionRadius int) (*GridReachability, error) {
	grid := geometry.NewRectangle(geometry.XY{}, gridSize)

	blocked := make(map[geometry.XY]bool)
	for _, o := range obstacles {
		for y := o.TopLeft.Y; y < o.BottomRight().Y; y++ {
			for x := o.TopLeft.X; x < o.BottomRight().X; x++ {
				blocked[geometry.XY{X: x, Y: y}] = true
			}
		}
	}

	values := make([][]int, gridSize.Y)
	for y := 0; y < gridSize.Y; y++ {
		values[y] = make([]int, gridSize.X)
		for x := 0; x < gridSize.X; x++ {
			if !blocked[geometry.XY{X: x, Y: y}] {
				values[y][x] = 1
			}
		}
	}

	gg, err := gridgraph.NewGridGraph(values, gridgraph.GridOptions{
		LandThreshold: 1,
		Conn:          gridgraph.Conn8,
	})
	if err != nil {
		return nil, err
	}

	components := gg.ConnectedComponents()
	componentOf := make(map[geometry.XY]int)
	var comps [][]gridgraph.Cell
	for _, group := range components {
		comps = append(comps, group...)
	}
	for id, comp := range comps {
		for _, cell := range comp {
			componentOf[geometry.XY{X: cell.X, Y: cell.Y}] = id
		}
	}

	occupied := make(map[int]bool)
	for _, p := range initialPositions {
		if id, ok := componentOf[p]; ok {
			occupied[id] = true
		}
	}
	empty := make(map[int]bool, len(comps))
	for id := range comps {
		if !occupied[id] {
			empty[id] = true
		}
	}

	return &GridReachability{
		grid:      grid,
		radius:    infectionRadius,
		obstacle:  func(c geometry.XY) bool { return blocked[c] },
		component: componentOf,
		empty:     empty,
	}, nil
}

// MayPropagateFrom reports whether an infection that starts anywhere in
// source could ever influence target, via free-space cells only. It is
// conservative: it may return true for a pair that can never actually
// transmit (the caller still creates a padding channel it didn't strictly
// need), but never returns false for a pair that can.
func (gr *GridReachability) MayPropagateFrom(source, target geometry.Rectangle) bool {
	visited := make(map[geometry.XY]bool)
	var frontier []geometry.XY

	for y := target.TopLeft.Y; y < target.BottomRight().Y; y++ {
		for x := target.TopLeft.X; x < target.BottomRight().X; x++ {
			c := geometry.XY{X: x, Y: y}
			if gr.usable(c) && !visited[c] {
				visited[c] = true
				frontier = append(frontier, c)
				if source.Contains(c) {
					return true
				}
			}
		}
	}

	for len(frontier) > 0 {
		var next []geometry.XY
		for _, cell := range frontier {
			for _, n := range gr.influenceSet(cell) {
				if visited[n] || !gr.usable(n) {
					continue
				}
				visited[n] = true
				if source.Contains(n) {
					return true
				}
				next = append(next, n)
			}
		}
		frontier = next
	}

	return false
}

// usable reports whether c is in-grid, not an obstacle, and not part of an
// empty (uninhabited) connected component.
func (gr *GridReachability) usable(c geometry.XY) bool {
	if !gr.grid.Contains(c) || gr.obstacle(c) {
		return false
	}
	id, ok := gr.component[c]
	if !ok {
		return false
	}
	return !gr.empty[id]
}

// influenceSet returns the cells reachable from cell in one per-tick
// propagation step: every cell within Manhattan distance R, union every
// cell within Chebyshev distance 1 (a single diagonal move).
func (gr *GridReachability) influenceSet(cell geometry.XY) []geometry.XY {
	seen := make(map[geometry.XY]bool)
	var out []geometry.XY
	add := func(c geometry.XY) {
		if c == cell || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}

	for dy := -gr.radius; dy <= gr.radius; dy++ {
		remaining := gr.radius - absInt(dy)
		for dx := -remaining; dx <= remaining; dx++ {
			add(geometry.XY{X: cell.X + dx, Y: cell.Y + dy})
		}
	}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			add(geometry.XY{X: cell.X + dx, Y: cell.Y + dy})
		}
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
