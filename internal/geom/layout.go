package geom

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/hflab/internal/hfield"
)

// FadeEdges multiplies f in place by a raised-cosine falloff that starts at
// frac of the half width (and half height) from the centre and reaches zero at
// the border. The combined factor is raised to pwr.
func FadeEdges(f *hfield.Field, frac, pwr float64) (*hfield.Field, error) {
	if frac < 0 || frac > 1 {
		return nil, fmt.Errorf("fade edges: frac %g outside [0, 1]: %w", frac, hfield.ErrParam)
	}
	xc := float64(f.Width) / 2
	yc := float64(f.Height) / 2
	sfac := math.Pi / (1 - frac)

	falloff := func(d float64) float64 {
		if d <= frac {
			return 1
		}
		d = (d - frac) * sfac
		return 1 - (1+math.Sin(d-math.Pi/2))/2
	}

	for y := 0; y < f.Height; y++ {
		fy := falloff(math.Abs((float64(y) - yc) / yc))
		for x := 0; x < f.Width; x++ {
			fx := falloff(math.Abs((float64(x) - xc) / xc))
			i := f.Index(x, y)
			f.Re[i] *= float32(math.Pow(fx*fy, pwr))
		}
	}
	f.UpdateExtrema()
	return f, nil
}

// Join places b to the right of a (horizontal) or below it. Uncovered cells of
// the union are zero.
func Join(a, b *hfield.Field, horizontal bool) (*hfield.Field, error) {
	if a.IsComplex() || b.IsComplex() {
		return nil, fmt.Errorf("join: %w", hfield.ErrComplex)
	}

	var w, h, ox, oy int
	if horizontal {
		w, h = a.Width+b.Width, max(a.Height, b.Height)
		ox = a.Width
	} else {
		w, h = max(a.Width, b.Width), a.Height+b.Height
		oy = a.Height
	}

	out, err := hfield.New(w, h)
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}
	for y := 0; y < a.Height; y++ {
		copy(out.Re[out.Index(0, y):], a.Re[a.Index(0, y):a.Index(0, y)+a.Width])
	}
	for y := 0; y < b.Height; y++ {
		copy(out.Re[out.Index(ox, y+oy):], b.Re[b.Index(0, y):b.Index(0, y)+b.Width])
	}
	out.UpdateExtrema()
	return out, nil
}

// Rotate returns f rotated counter-clockwise by deg, which must be 90, 180 or
// 270.
func Rotate(f *hfield.Field, deg int) (*hfield.Field, error) {
	if deg != 90 && deg != 180 && deg != 270 {
		return nil, fmt.Errorf("rotate: %d degrees not supported: %w", deg, hfield.ErrParam)
	}
	if f.IsComplex() {
		return nil, fmt.Errorf("rotate: %w", hfield.ErrComplex)
	}

	w, h := f.Width, f.Height
	ow, oh := h, w
	if deg == 180 {
		ow, oh = w, h
	}
	out, err := hfield.New(ow, oh)
	if err != nil {
		return nil, fmt.Errorf("rotate: %w", err)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := f.At(x, y)
			switch deg {
			case 90:
				out.Set(h-1-y, x, v)
			case 180:
				out.Set(w-1-x, h-1-y, v)
			case 270:
				out.Set(y, w-1-x, v)
			}
		}
	}
	out.Min, out.Max = f.Min, f.Max
	return out, nil
}

// SlewPeak returns f rolled toroidally so that its highest cell lands at
// (xpos·W, ypos·H). Ties go to the first maximum in row-major order.
func SlewPeak(f *hfield.Field, xpos, ypos float64) (*hfield.Field, error) {
	if f.IsComplex() {
		return nil, fmt.Errorf("slew peak: %w", hfield.ErrComplex)
	}
	w, h := f.Width, f.Height

	xpeak, ypeak := w/2, h/2
	best := math.Inf(-1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if v := f.At(x, y); v > best {
				best, xpeak, ypeak = v, x, y
			}
		}
	}
	xs := xpeak - int(float64(w)*xpos)
	ys := ypeak - int(float64(h)*ypos)

	out, err := hfield.New(w, h)
	if err != nil {
		return nil, fmt.Errorf("slew peak: %w", err)
	}
	for y := 0; y < h; y++ {
		yy := hfield.WrapIndex(y+ys, h)
		for x := 0; x < w; x++ {
			out.Set(x, y, f.At(hfield.WrapIndex(x+xs, w), yy))
		}
	}
	out.Min, out.Max = f.Min, f.Max
	return out, nil
}
