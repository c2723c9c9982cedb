package spectral

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/ops"
	"github.com/MeKo-Tech/hflab/internal/session"
)

// FillSpectrum returns a complex w×h spectrum of 1/f noise. Coefficients are
// generated shell by shell outward from the origin so that, with a fixed seed,
// larger rasters share the low-frequency content of smaller ones. Each mirrored
// coefficient gets its own draw, so the spectrum is only roughly Hermitian and
// the inverse transform leaves some energy in the imaginary plane.
func FillSpectrum(sess *session.Session, w, h int, exp float64) (*hfield.Field, error) {
	f, err := hfield.NewComplex(w, h)
	if err != nil {
		return nil, fmt.Errorf("fill spectrum: %w", err)
	}

	sess.InitGauss()

	coeff := func(x, y int) (float64, float64) {
		phase := sess.Phase()
		rad := 0.0
		if x != 0 || y != 0 {
			rad = math.Pow(float64(x*x+y*y), -(exp+1)/2) * sess.Gauss()
		}
		return rad * math.Cos(phase), rad * math.Sin(phase)
	}
	put := func(x, y int, re, im float64) {
		f.Set(x, y, re)
		f.SetImag(x, y, im)
	}

	xcent := int(float64(w)/2 - 0.5)
	ycent := int(float64(h)/2 - 0.5)
	rankmax := min(xcent, ycent)

	for rank := 0; rank <= rankmax; rank++ {
		// quadrants 2 and 4
		for k := 0; k <= rank; k++ {
			for _, p := range [2][2]int{{k, rank}, {rank, k}} {
				x, y := p[0], p[1]
				re, im := coeff(x, y)
				put(x, y, re, im)
				if x != 0 || y != 0 {
					put(w-x-1, h-y-1, re, im)
				}
			}
		}
		// quadrants 1 and 3
		for k := 0; k <= rank; k++ {
			for _, p := range [2][2]int{{k, rank}, {rank, k}} {
				x, y := p[0], p[1]
				re, im := coeff(x, y)
				put(x, h-y-1, re, im)
				put(w-x-1, y, re, im)
			}
		}
	}

	f.SetImag(w/2, 0, 0)
	f.SetImag(0, h/2, 0)
	f.SetImag(w/2, h/2, 0)

	f.UpdateExtrema()
	return f, nil
}

// Forge synthesizes a size×size fractal heightfield with fractal dimension dim
// by inverse transforming a 1/f spectrum. The result is normalized to [0, 1].
func Forge(sess *session.Session, size int, dim float64) (*hfield.Field, error) {
	if size < 3 {
		return nil, fmt.Errorf("forge: minimum size is 3, got %d: %w", size, hfield.ErrParam)
	}
	if dim < 0 || dim > 4 {
		return nil, fmt.Errorf("forge: dimension %g outside [0, 4]: %w", dim, hfield.ErrParam)
	}

	f, err := FillSpectrum(sess, size, size, 3-dim)
	if err != nil {
		return nil, fmt.Errorf("forge: %w", err)
	}
	if _, err := FFT(f, Inverse, NoScale); err != nil {
		return nil, fmt.Errorf("forge: %w", err)
	}
	f.DropImag()
	f.UpdateExtrema()

	if _, err := ops.Normalize(f, 0, 1); err != nil {
		return nil, fmt.Errorf("forge: %w", err)
	}
	sess.Logger().Debug("forged heightfield", "size", size, "dim", dim, "seed", sess.Seed())
	return f, nil
}
