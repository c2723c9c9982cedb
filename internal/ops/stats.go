package ops

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
)

// Normalize linearly maps the real plane of f onto [lo, hi] in place.
// Passing lo > hi inverts the field.
func Normalize(f *hfield.Field, lo, hi float64) (*hfield.Field, error) {
	if f.IsConstant() {
		return nil, fmt.Errorf("normalize: %w (%g)", hfield.ErrConstant, f.Min)
	}
	fmin := float64(f.Min)
	scale := (hi - lo) / f.Range()
	for i, v := range f.Re {
		f.Re[i] = float32((float64(v)-fmin)*scale + lo)
	}
	f.UpdateExtrema()
	return f, nil
}

// Negate mirrors every element about the midpoint of the field's range, so each
// element e becomes max+min-e.
func Negate(f *hfield.Field) (*hfield.Field, error) {
	return Normalize(f, float64(f.Max), float64(f.Min))
}

// Histogram counts the real values of f into bins equal-width buckets spanning
// [Min, Max].
func Histogram(f *hfield.Field, bins int) ([]int, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("histogram: bins must be positive, got %d: %w", bins, hfield.ErrParam)
	}
	if f.IsConstant() {
		return nil, fmt.Errorf("histogram: %w (%g)", hfield.ErrConstant, f.Min)
	}

	hist := make([]int, bins)
	fmin := float64(f.Min)
	scale := 0.999999 / f.Range()
	for _, v := range f.Re {
		t := (float64(v) - fmin) * scale
		if t < 0 || t > 1 {
			return nil, fmt.Errorf("histogram: stale extrema for value %g", v)
		}
		idx := int(float64(bins) * t)
		if idx >= bins {
			idx = bins - 1
		}
		hist[idx]++
	}
	return hist, nil
}

// PeakShift offsets f in place so that its most populated elevation bin lands
// on target, to within half a bin width.
func PeakShift(sess *session.Session, f *hfield.Field, target float64) (*hfield.Field, error) {
	bins := sess.Config().HistBins
	hist, err := Histogram(f, bins)
	if err != nil {
		return nil, fmt.Errorf("peak shift: %w", err)
	}

	best, idx := 0, 0
	for i, n := range hist {
		if n > best {
			best = n
			idx = i
		}
	}
	if best == 0 {
		return nil, fmt.Errorf("peak shift: histogram is empty")
	}

	peak := float64(idx)*(f.Range()/float64(bins)) + float64(f.Min)
	return Apply1(f, Add(target-peak)), nil
}

// Equalize returns a histogram-equalized copy of f. frac blends between the
// identity transfer (0) and full equalization (1).
func Equalize(sess *session.Session, f *hfield.Field, frac float64) (*hfield.Field, error) {
	if f.IsComplex() {
		return nil, fmt.Errorf("equalize: %w", hfield.ErrComplex)
	}
	if f.IsConstant() {
		return nil, fmt.Errorf("equalize: %w", hfield.ErrConstant)
	}

	bins := sess.Config().HistBins
	fmin := float64(f.Min)
	rng := f.Range()

	hist := make([]float64, bins+1)
	norm := make([]float64, len(f.Re))
	for i, v := range f.Re {
		t := (float64(v) - fmin) / rng
		norm[i] = t
		hist[int(float64(bins)*t)]++
	}

	trans := make([]float64, bins+1)
	var total float64
	for i := 0; i < bins; i++ {
		trans[i] = total
		total += hist[i]
	}
	trans[bins] = total
	for i := range trans {
		trans[i] /= total
		lin := float64(i) / float64(bins)
		trans[i] = lin + frac*(trans[i]-lin)
	}

	out, err := hfield.New(f.Width, f.Height)
	if err != nil {
		return nil, fmt.Errorf("equalize: %w", err)
	}
	for i, t := range norm {
		pos := t * float64(bins)
		in := int(pos)
		if in > bins-1 {
			in = bins - 1
		}
		part := pos - float64(in)
		v := (1-part)*trans[in] + part*trans[in+1]
		out.Re[i] = float32(rng*v + fmin)
	}
	out.UpdateExtrema()
	return out, nil
}

// DiffMode selects first or second differences.
type DiffMode int

const (
	// Slope is the magnitude of the backward first difference.
	Slope DiffMode = iota
	// Curvature is the magnitude of the second difference.
	Curvature
)

func (m DiffMode) String() string {
	if m == Curvature {
		return "curvature"
	}
	return "slope"
}

// neighbours returns left, up, right and down values of (x, y) under p.
func neighbours(f *hfield.Field, p hfield.Policy, x, y int) (l, u, r, d float64) {
	return f.AtPolicy(p, x-1, y), f.AtPolicy(p, x, y-1), f.AtPolicy(p, x+1, y), f.AtPolicy(p, x, y+1)
}

func measure(mode DiffMode, here, l, u, r, d float64) float64 {
	if mode == Curvature {
		return math.Hypot(here-(l+r)/2, here-(u+d)/2)
	}
	return math.Hypot(here-l, here-u)
}

// Differential returns a new raster holding the slope or curvature magnitude
// of f at every cell.
func Differential(sess *session.Session, f *hfield.Field, mode DiffMode) (*hfield.Field, error) {
	if f.IsComplex() {
		return nil, fmt.Errorf("differential: %w", hfield.ErrComplex)
	}
	p := sess.Policy(f)
	out, err := hfield.New(f.Width, f.Height)
	if err != nil {
		return nil, fmt.Errorf("differential: %w", err)
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			l, u, r, d := neighbours(f, p, x, y)
			out.Set(x, y, measure(mode, f.At(x, y), l, u, r, d))
		}
	}
	out.UpdateExtrema()
	return out, nil
}

// slopePass writes one limiting pass from src into dst and returns the number
// of cells that were averaged.
func slopePass(dst, src *hfield.Field, p hfield.Policy, mode DiffMode, thresh float64) int {
	changed := 0
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			here := src.At(x, y)
			l, u, r, d := neighbours(src, p, x, y)
			if measure(mode, here, l, u, r, d) > thresh {
				dst.Set(x, y, (l+u+r+d)/4)
				changed++
			} else {
				dst.Set(x, y, here)
			}
		}
	}
	return changed
}

// SlopeLimit returns a copy of f smoothed wherever its slope (or curvature)
// exceeds thresh. Passes alternate between two buffers until a pass changes
// nothing or iter double passes have run. f is left untouched.
func SlopeLimit(sess *session.Session, f *hfield.Field, mode DiffMode, thresh float64, iter int) (*hfield.Field, error) {
	if f.IsComplex() {
		return nil, fmt.Errorf("slope limit: %w", hfield.ErrComplex)
	}
	p := sess.Policy(f)

	out := f.Clone()
	scratch, err := hfield.New(f.Width, f.Height)
	if err != nil {
		return nil, fmt.Errorf("slope limit: %w", err)
	}
	defer scratch.Release()

	for rep := 0; ; {
		slopePass(scratch, out, p, mode, thresh)
		changed := slopePass(out, scratch, p, mode, thresh)
		rep++
		if changed == 0 || rep >= iter {
			break
		}
	}

	out.UpdateExtrema()
	return out, nil
}
