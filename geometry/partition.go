package geometry

import "sort"

// Patches enumerates the rectangles of a partition given ordered interior
// cut-lines on each axis (xCuts, yCuts need not be sorted or deduplicated on
// entry). Cells are
//
//	{ (xi, yj, xi+1-xi, yj+1-yj) }
//
// for xi ranging over (0, xCuts...) and xi+1 ranging over (xCuts..., gridWidth),
// likewise for y. Yield order is row-major, row index slowest — so callers
// that enumerate patches to assign deterministic ids get the same ids run to
// run for the same partition.
func Patches(gridSize XY, xCuts, yCuts []int) []Rectangle {
	xBounds := bounds(xCuts, gridSize.X)
	yBounds := bounds(yCuts, gridSize.Y)

	patches := make([]Rectangle, 0, (len(xBounds)-1)*(len(yBounds)-1))
	for yi := 0; yi < len(yBounds)-1; yi++ {
		for xi := 0; xi < len(xBounds)-1; xi++ {
			top := XY{X: xBounds[xi], Y: yBounds[yi]}
			size := XY{X: xBounds[xi+1] - xBounds[xi], Y: yBounds[yi+1] - yBounds[yi]}
			patches = append(patches, NewRectangle(top, size))
		}
	}
	return patches
}

// bounds builds the sorted, deduplicated sequence of axis boundaries
// 0, cuts..., extent, from which consecutive pairs define patch edges.
func bounds(cuts []int, extent int) []int {
	set := make(map[int]struct{}, len(cuts)+2)
	set[0] = struct{}{}
	set[extent] = struct{}{}
	for _, c := range cuts {
		set[c] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
