// Package geom implements spatial transforms: smoothing, resampling, warping,
// layout changes and additive terrain features.
package geom

import (
	"fmt"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
)

func lerp(a, b, t float64) float64 { return a + t*(b-a) }

// avg4 is the mean of the four edge neighbours of (x, y).
func avg4(f *hfield.Field, p hfield.Policy, x, y int) float64 {
	return (f.AtPolicy(p, x-1, y) + f.AtPolicy(p, x, y-1) +
		f.AtPolicy(p, x+1, y) + f.AtPolicy(p, x, y+1)) / 4
}

// Smooth returns a copy of f in which each cell moves toward the mean of its
// four neighbours by frac: 0 leaves the field unchanged, 1 replaces every cell
// with the neighbour mean. Only the real plane is smoothed.
func Smooth(sess *session.Session, f *hfield.Field, frac float64) (*hfield.Field, error) {
	if f.IsComplex() {
		sess.Logger().Warn("smoothing real part only")
	}
	p := sess.Policy(f)

	out := f.Clone()
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			orig := f.At(x, y)
			out.Set(x, y, orig+frac*(avg4(f, p, x, y)-orig))
		}
	}
	out.UpdateExtrema()
	return out, nil
}

// smoothBand writes one pass from src into dst, averaging only cells whose
// value lies strictly between lo and hi.
func smoothBand(dst, src *hfield.Field, p hfield.Policy, lo, hi float64) {
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			v := src.At(x, y)
			if v > lo && v < hi {
				v = avg4(src, p, x, y)
			}
			dst.Set(x, y, v)
		}
	}
}

// ElevationSmooth returns a copy of f smoothed iter times, restricted to cells
// with lo < h < hi. f is not modified.
func ElevationSmooth(sess *session.Session, f *hfield.Field, iter int, lo, hi float64) (*hfield.Field, error) {
	if f.IsComplex() {
		return nil, fmt.Errorf("elevation smooth: %w", hfield.ErrComplex)
	}
	p := sess.Policy(f)

	out := f.Clone()
	scratch, err := hfield.New(f.Width, f.Height)
	if err != nil {
		return nil, fmt.Errorf("elevation smooth: %w", err)
	}
	defer scratch.Release()

	for rep := 0; ; {
		smoothBand(scratch, out, p, lo, hi)
		smoothBand(out, scratch, p, lo, hi)
		rep++
		if rep >= iter {
			break
		}
	}
	out.UpdateExtrema()
	return out, nil
}
