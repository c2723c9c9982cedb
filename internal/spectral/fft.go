// Package spectral implements the frequency-domain side of the engine: a 2-D
// complex FFT, 1/f fractal synthesis and radial transfer-function filters.
package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/MeKo-Tech/hflab/internal/hfield"
)

// Direction selects the transform direction.
type Direction int

const (
	Forward Direction = 1
	Inverse Direction = -1
)

func (d Direction) String() string {
	if d == Inverse {
		return "inverse"
	}
	return "forward"
}

// Scale is the normalization applied after a transform. 1 leaves the result
// untouched, any other positive value divides by that value, ByCount divides by
// the element count and anything below ByCount divides by its square root.
type Scale float64

const (
	NoScale Scale = 1
	ByCount Scale = -1
	BySqrt  Scale = -2
)

func (s Scale) divisor(n int) float64 {
	switch {
	case s == ByCount:
		return float64(n)
	case s < ByCount:
		return math.Sqrt(float64(n))
	case s > 0:
		return float64(s)
	}
	return 1
}

// Transformer performs an in-place 2-D complex transform over row-major planes.
type Transformer interface {
	Transform(re, im []float32, w, h int, dir Direction, scale Scale) error
}

// Gonum is the default Transformer, built from separable row and column passes
// of gonum's complex FFT. Neither pass normalizes.
type Gonum struct{}

// Transform implements Transformer.
func (Gonum) Transform(re, im []float32, w, h int, dir Direction, scale Scale) error {
	n := w * h
	if w <= 0 || h <= 0 || len(re) != n || len(im) != n {
		return fmt.Errorf("fft: planes do not match %dx%d: %w", w, h, hfield.ErrSize)
	}
	if dir != Forward && dir != Inverse {
		return fmt.Errorf("fft: invalid direction %d: %w", int(dir), hfield.ErrParam)
	}

	run := func(p *fourier.CmplxFFT, buf []complex128) {
		if dir == Forward {
			p.Coefficients(buf, buf)
		} else {
			p.Sequence(buf, buf)
		}
	}

	rowFFT := fourier.NewCmplxFFT(w)
	row := make([]complex128, w)
	for y := 0; y < h; y++ {
		off := y * w
		for x := 0; x < w; x++ {
			row[x] = complex(float64(re[off+x]), float64(im[off+x]))
		}
		run(rowFFT, row)
		for x := 0; x < w; x++ {
			re[off+x] = float32(real(row[x]))
			im[off+x] = float32(imag(row[x]))
		}
	}

	colFFT := fourier.NewCmplxFFT(h)
	col := make([]complex128, h)
	div := scale.divisor(n)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = complex(float64(re[y*w+x]), float64(im[y*w+x]))
		}
		run(colFFT, col)
		for y := 0; y < h; y++ {
			re[y*w+x] = float32(real(col[y]) / div)
			im[y*w+x] = float32(imag(col[y]) / div)
		}
	}
	return nil
}

// Transform runs t over both planes of the complex field f in place.
func Transform(t Transformer, f *hfield.Field, dir Direction, scale Scale) (*hfield.Field, error) {
	if !f.IsComplex() {
		return nil, fmt.Errorf("fft: %w", hfield.ErrNotComplex)
	}
	if err := t.Transform(f.Re, f.Im, f.Width, f.Height, dir, scale); err != nil {
		return nil, err
	}
	f.UpdateExtrema()
	return f, nil
}

// FFT transforms f in place with the default gonum transformer.
func FFT(f *hfield.Field, dir Direction, scale Scale) (*hfield.Field, error) {
	return Transform(Gonum{}, f, dir, scale)
}
