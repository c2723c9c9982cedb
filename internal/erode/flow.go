// Package erode implements basin filling and drainage-area accumulation over
// an 8-connected lattice.
package erode

import (
	"math"

	"github.com/MeKo-Tech/hflab/internal/hfield"
)

// Neighbour directions, clockwise from the upper left:
//
//	1 2 3
//	8 0 4
//	7 6 5
//
// 0 means "no direction".
var (
	xo = [9]int{0, -1, 0, 1, 1, 1, 0, -1, -1}
	yo = [9]int{0, -1, -1, -1, 0, 1, 1, 1, 0}
)

// diagonal distances are scaled by this approximation of √2
const diag = 1.414

func isDiagonal(i int) bool { return i == 1 || i == 3 || i == 5 || i == 7 }

// pointsBack reports whether a neighbour reached through direction i, whose own
// flow direction is dir, points back at the cell we came from.
func pointsBack(i int, dir uint8) bool {
	return xo[i]+xo[dir] == 0 && yo[i]+yo[dir] == 0
}

// FlowDirection returns the direction of steepest descent from (x, y) and the
// (distance-weighted) height difference toward it. The lowest neighbour is
// chosen even when it is higher than (x, y); ties go to the first direction in
// order 1..8.
func FlowDirection(f *hfield.Field, p hfield.Policy, x, y int) (dir int, slope float64) {
	here := f.At(x, y)
	slope = math.MaxFloat32
	for i := 1; i < 9; i++ {
		s := f.AtPolicy(p, x+xo[i], y+yo[i]) - here
		if isDiagonal(i) {
			s /= diag
		}
		if s < slope {
			dir, slope = i, s
		}
	}
	return dir, slope
}

// IsDepression reports whether no neighbour of (x, y) is lower than it.
func IsDepression(f *hfield.Field, p hfield.Policy, x, y int) bool {
	here := f.AtPolicy(p, x, y)
	for i := 1; i < 9; i++ {
		if f.AtPolicy(p, x+xo[i], y+yo[i]) < here {
			return false
		}
	}
	return true
}

// FlowField returns the flow direction of every cell in row-major order.
func FlowField(f *hfield.Field, p hfield.Policy) []uint8 {
	fl := make([]uint8, f.Len())
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			d, _ := FlowDirection(f, p, x, y)
			fl[f.Index(x, y)] = uint8(d)
		}
	}
	return fl
}
