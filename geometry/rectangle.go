// Package geometry implements the rectangle algebra the partitioned
// simulation is built on: cell coordinates, half-open rectangles, and the
// intersection/subtraction/padding operations patches and padding channels
// are derived from.
package geometry

import "fmt"

// XY is an integer cell coordinate. Both components are non-negative in any
// rectangle that has been clipped to a grid, but intermediate padded
// rectangles may carry negative values before clipping.
type XY struct {
	X, Y int
}

// Add returns the componentwise sum of p and q.
func (p XY) Add(q XY) XY {
	return XY{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the componentwise difference p - q.
func (p XY) Sub(q XY) XY {
	return XY{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rectangle is anchored at TopLeft with a strictly positive Size. It is
// half-open in the bottom-right: a cell c is inside iff
// TopLeft.X <= c.X < BottomRight().X and likewise for Y.
type Rectangle struct {
	TopLeft XY
	Size    XY
}

// NewRectangle builds a Rectangle, panicking if the size is not positive in
// both dimensions — callers construct rectangles from trusted scenario data,
// never from unchecked external input, so a panic surfaces a programmer
// error immediately rather than propagating a degenerate rectangle.
func NewRectangle(topLeft, size XY) Rectangle {
	if size.X <= 0 || size.Y <= 0 {
		panic(fmt.Sprintf("geometry: non-positive rectangle size %+v", size))
	}
	return Rectangle{TopLeft: topLeft, Size: size}
}

// BottomRight returns the exclusive bottom-right corner.
func (r Rectangle) BottomRight() XY {
	return r.TopLeft.Add(r.Size)
}

// Contains reports whether c lies inside r under half-open semantics.
func (r Rectangle) Contains(c XY) bool {
	br := r.BottomRight()
	return c.X >= r.TopLeft.X && c.X < br.X && c.Y >= r.TopLeft.Y && c.Y < br.Y
}

// Overlaps reports whether r and o share at least one cell.
func (r Rectangle) Overlaps(o Rectangle) bool {
	rbr, obr := r.BottomRight(), o.BottomRight()
	return r.TopLeft.X < obr.X && o.TopLeft.X < rbr.X &&
		r.TopLeft.Y < obr.Y && o.TopLeft.Y < rbr.Y
}

// Intersect returns the intersection of r and o and true, or the zero
// Rectangle and false if they do not overlap. Callers that already know the
// two rectangles overlap (e.g. having just called Overlaps) may ignore the
// bool.
func (r Rectangle) Intersect(o Rectangle) (Rectangle, bool) {
	if !r.Overlaps(o) {
		return Rectangle{}, false
	}
	rbr, obr := r.BottomRight(), o.BottomRight()
	top := XY{X: max(r.TopLeft.X, o.TopLeft.X), Y: max(r.TopLeft.Y, o.TopLeft.Y)}
	bottom := XY{X: min(rbr.X, obr.X), Y: min(rbr.Y, obr.Y)}
	return Rectangle{TopLeft: top, Size: bottom.Sub(top)}, true
}

// Padded returns area expanded by padding cells on every side, then clipped
// to grid. grid is itself a Rectangle anchored at the origin spanning the
// full simulated world.
func Padded(area Rectangle, padding int, grid Rectangle) Rectangle {
	expanded := Rectangle{
		TopLeft: XY{X: area.TopLeft.X - padding, Y: area.TopLeft.Y - padding},
		Size:    XY{X: area.Size.X + 2*padding, Y: area.Size.Y + 2*padding},
	}
	clipped, ok := expanded.Intersect(grid)
	if !ok {
		// A padded area always overlaps the grid that contains its source
		// area; failure here means the caller passed an area outside grid.
		panic("geometry: padded area does not overlap grid")
	}
	return clipped
}

// RectangleMinus returns up to four rectangles covering big \ small, in the
// fixed order top, left, bottom, right, omitting any that would be empty.
// Top and bottom span big's full width, left and right its full height, so
// the pieces may overlap at the corners. Precondition: big ∩ small == small (small lies entirely within big).
func RectangleMinus(big, small Rectangle) []Rectangle {
	bigBR := big.BottomRight()
	smallBR := small.BottomRight()

	var out []Rectangle

	// Top: full width of big, from big's top to small's top.
	if small.TopLeft.Y > big.TopLeft.Y {
		out = append(out, Rectangle{
			TopLeft: XY{X: big.TopLeft.X, Y: big.TopLeft.Y},
			Size:    XY{X: big.Size.X, Y: small.TopLeft.Y - big.TopLeft.Y},
		})
	}

	// Left: full height of big, from big's left to small's left.
	if small.TopLeft.X > big.TopLeft.X {
		out = append(out, Rectangle{
			TopLeft: XY{X: big.TopLeft.X, Y: big.TopLeft.Y},
			Size:    XY{X: small.TopLeft.X - big.TopLeft.X, Y: big.Size.Y},
		})
	}

	// Bottom: full width of big, from small's bottom to big's bottom.
	if smallBR.Y < bigBR.Y {
		out = append(out, Rectangle{
			TopLeft: XY{X: big.TopLeft.X, Y: smallBR.Y},
			Size:    XY{X: big.Size.X, Y: bigBR.Y - smallBR.Y},
		})
	}

	// Right: full height of big, from small's right to big's right.
	if smallBR.X < bigBR.X {
		out = append(out, Rectangle{
			TopLeft: XY{X: smallBR.X, Y: big.TopLeft.Y},
			Size:    XY{X: bigBR.X - smallBR.X, Y: big.Size.Y},
		})
	}

	return out
}

// ManhattanDistance returns |a.X-b.X| + |a.Y-b.Y|.
func ManhattanDistance(a, b XY) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

// ChebyshevDistance returns max(|a.X-b.X|, |a.Y-b.Y|).
func ChebyshevDistance(a, b XY) int {
	return max(absInt(a.X-b.X), absInt(a.Y-b.Y))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
