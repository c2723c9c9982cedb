// Package cplx holds the operations that create, split and transform complex
// rasters.
package cplx

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
)

// atan2 returns 0 for the origin instead of relying on signed zeros.
func atan2(y, x float64) float64 {
	if x == 0 && y == 0 {
		return 0
	}
	return math.Atan2(y, x)
}

// ToPolar converts (re, im) to (magnitude, phase) in place.
func ToPolar(f *hfield.Field) (*hfield.Field, error) {
	if !f.IsComplex() {
		return nil, fmt.Errorf("to polar: %w", hfield.ErrNotComplex)
	}
	for i := range f.Re {
		re, im := float64(f.Re[i]), float64(f.Im[i])
		f.Re[i] = float32(math.Hypot(re, im))
		f.Im[i] = float32(atan2(im, re))
	}
	f.UpdateExtrema()
	return f, nil
}

// ToRect converts (magnitude, phase) back to (re, im) in place.
func ToRect(f *hfield.Field) (*hfield.Field, error) {
	if !f.IsComplex() {
		return nil, fmt.Errorf("to rect: %w", hfield.ErrNotComplex)
	}
	for i := range f.Re {
		r, th := float64(f.Re[i]), float64(f.Im[i])
		f.Re[i] = float32(r * math.Cos(th))
		f.Im[i] = float32(r * math.Sin(th))
	}
	f.UpdateExtrema()
	return f, nil
}

// Magnitude returns a new real raster of |re + i·im|.
func Magnitude(f *hfield.Field) (*hfield.Field, error) {
	if !f.IsComplex() {
		return nil, fmt.Errorf("magnitude: %w", hfield.ErrNotComplex)
	}
	out, err := hfield.New(f.Width, f.Height)
	if err != nil {
		return nil, fmt.Errorf("magnitude: %w", err)
	}
	for i := range f.Re {
		out.Re[i] = float32(math.Hypot(float64(f.Re[i]), float64(f.Im[i])))
	}
	out.UpdateExtrema()
	return out, nil
}

// Join builds a complex raster with re as the real plane and im as the
// imaginary plane. Only the real planes of the inputs are used.
func Join(re, im *hfield.Field) (*hfield.Field, error) {
	if !re.SameSize(im) {
		return nil, fmt.Errorf("join: %dx%d and %dx%d: %w",
			re.Width, re.Height, im.Width, im.Height, hfield.ErrSize)
	}
	out, err := hfield.NewComplex(re.Width, re.Height)
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}
	copy(out.Re, re.Re)
	copy(out.Im, im.Re)
	out.UpdateExtrema()
	return out, nil
}

// Split returns the real and imaginary planes of f as two new real rasters.
func Split(f *hfield.Field) (re, im *hfield.Field, err error) {
	if !f.IsComplex() {
		return nil, nil, fmt.Errorf("split: %w", hfield.ErrNotComplex)
	}
	if re, err = hfield.FromBuffer(f.Width, f.Height, f.Re, nil); err != nil {
		return nil, nil, fmt.Errorf("split: %w", err)
	}
	if im, err = hfield.FromBuffer(f.Width, f.Height, f.Im, nil); err != nil {
		re.Release()
		return nil, nil, fmt.Errorf("split: %w", err)
	}
	return re, im, nil
}

// Swap exchanges the planes of a complex raster in place. A real raster yields
// a new complex raster holding the data in its imaginary plane.
func Swap(f *hfield.Field) (*hfield.Field, error) {
	if f.IsComplex() {
		f.Re, f.Im = f.Im, f.Re
		f.UpdateExtrema()
		return f, nil
	}
	out, err := hfield.NewComplex(f.Width, f.Height)
	if err != nil {
		return nil, fmt.Errorf("swap: %w", err)
	}
	copy(out.Im, f.Re)
	out.UpdateExtrema()
	return out, nil
}

// Real truncates f to its real plane in place. Real input is returned as is.
func Real(f *hfield.Field) *hfield.Field {
	return f.DropImag()
}

// Gradient packs the backward x difference into the real plane and the
// backward y difference into the imaginary plane of a new complex raster.
func Gradient(sess *session.Session, f *hfield.Field) (*hfield.Field, error) {
	p := sess.Policy(f)
	out, err := hfield.NewComplex(f.Width, f.Height)
	if err != nil {
		return nil, fmt.Errorf("gradient: %w", err)
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			here := f.At(x, y)
			out.Set(x, y, here-f.AtPolicy(p, x-1, y))
			out.SetImag(x, y, here-f.AtPolicy(p, x, y-1))
		}
	}
	out.UpdateExtrema()
	return out, nil
}

// Integrate approximately reconstructs a raster from a Gradient result. The
// first row and column are path integrated from a zero corner; interior cells
// average the two partial sums reaching them from the left and from above.
func Integrate(f *hfield.Field) (*hfield.Field, error) {
	if !f.IsComplex() {
		return nil, fmt.Errorf("integrate: %w", hfield.ErrNotComplex)
	}
	out, err := hfield.New(f.Width, f.Height)
	if err != nil {
		return nil, fmt.Errorf("integrate: %w", err)
	}
	for x := 1; x < f.Width; x++ {
		out.Set(x, 0, out.At(x-1, 0)+f.At(x, 0))
	}
	for y := 1; y < f.Height; y++ {
		out.Set(0, y, out.At(0, y-1)+f.ImagAt(0, y))
	}
	for y := 1; y < f.Height; y++ {
		for x := 1; x < f.Width; x++ {
			v := 0.5 * (out.At(x-1, y) + f.At(x, y) + out.At(x, y-1) + f.ImagAt(x, y))
			out.Set(x, y, v)
		}
	}
	out.UpdateExtrema()
	return out, nil
}
