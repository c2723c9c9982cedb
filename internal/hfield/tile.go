package hfield

import "math"

// TileReport holds the seam measurements behind a tileability verdict.
// XDiff compares the top/bottom seam, YDiff the left/right seam.
type TileReport struct {
	XDiff     float64
	YDiff     float64
	Tolerance float64
	Tilable   bool
}

// MeasureTiling compares the discontinuity across each wrap seam with the
// discontinuity just inside the edge. Both deltas are normalized by the
// element count along the seam and the value range of the field.
func MeasureTiling(f *Field, tol float64) TileReport {
	r := TileReport{Tolerance: tol}
	if f.Width < 2 || f.Height < 2 {
		return r
	}

	rng := f.Range()
	if rng == 0 {
		rng = 1
	}

	w, h := f.Width, f.Height
	for y := 0; y < h; y++ {
		v1 := f.At(w-1, y)
		v2 := f.At(0, y)
		v3 := f.At(1, y)
		r.YDiff += math.Abs(v1-v2) - math.Abs(v3-v2)
	}
	r.YDiff /= float64(h) * rng

	for x := 0; x < w; x++ {
		v1 := f.At(x, h-1)
		v2 := f.At(x, 0)
		v3 := f.At(x, 1)
		r.XDiff += math.Abs(v1-v2) - math.Abs(v3-v2)
	}
	r.XDiff /= float64(w) * rng

	r.Tilable = math.Abs(r.XDiff) < tol && math.Abs(r.YDiff) < tol
	return r
}
