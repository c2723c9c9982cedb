package geom

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
)

// Double returns f at twice the resolution using midpoint displacement. local
// scales the jitter by the contrast of the four parent cells; global adds a
// contrast-independent jitter normalized by the output size. A tilable field
// becomes exactly 2W×2H; otherwise the outer edge is not wrapped and the result
// is (2W-1)×(2H-1).
func Double(sess *session.Session, f *hfield.Field, local, global float64) (*hfield.Field, error) {
	if f.IsComplex() {
		return nil, fmt.Errorf("double: %w", hfield.ErrComplex)
	}
	tile := sess.Tilable(f)

	w2, h2 := f.Width*2, f.Height*2
	if !tile {
		w2--
		h2--
	}
	global /= math.Sqrt(float64(w2) * float64(h2))

	out, err := hfield.New(w2, h2)
	if err != nil {
		return nil, fmt.Errorf("double: %w", err)
	}

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			out.Set(x*2, y*2, f.At(x, y))
		}
	}
	if !tile {
		for y := 1; y < h2; y += 2 {
			out.Set(0, y, out.At(0, y-1))
			out.Set(w2-1, y, out.At(w2-1, y-1))
		}
		for x := 1; x < w2; x += 2 {
			out.Set(x, 0, out.At(x-1, 0))
			out.Set(x, h2-1, out.At(x-1, h2-1))
		}
	}

	sess.InitGauss()
	p := hfield.Clamp
	if tile {
		p = hfield.Wrap
	}

	displace := func(x, y int, nb [4][2]int, damp float64) {
		var v [4]float64
		lo, hi := math.Inf(1), math.Inf(-1)
		for i, d := range nb {
			v[i] = out.AtPolicy(p, x+d[0], y+d[1])
			lo = math.Min(lo, v[i])
			hi = math.Max(hi, v[i])
		}
		sfac := damp * (global + local*(hi-lo))
		out.Set(x, y, (v[0]+v[1]+v[2]+v[3])/4+sfac*(sess.GaussN()-0.5))
	}
	diag := [4][2]int{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
	cross := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

	for y := 1; y < h2; y += 2 {
		for x := 1; x < w2; x += 2 {
			displace(x, y, diag, 1)
		}
	}
	for y := 0; y < h2; y += 2 {
		for x := 1; x < w2; x += 2 {
			displace(x, y, cross, 1)
		}
	}
	for y := 1; y < h2; y += 2 {
		for x := 0; x < w2; x += 2 {
			displace(x, y, cross, 1)
		}
	}
	// pull the original samples toward their new diagonal neighbours
	for y := 0; y < h2; y += 2 {
		for x := 0; x < w2; x += 2 {
			displace(x, y, diag, 0.5)
		}
	}

	out.UpdateExtrema()
	return out, nil
}

// Halve returns f at half resolution by averaging 2×2 blocks. An odd trailing
// row or column is dropped.
func Halve(f *hfield.Field) (*hfield.Field, error) {
	if f.IsComplex() {
		return nil, fmt.Errorf("halve: %w", hfield.ErrComplex)
	}
	out, err := hfield.New(f.Width/2, f.Height/2)
	if err != nil {
		return nil, fmt.Errorf("halve: %w", err)
	}
	for y := 0; y < out.Height; y++ {
		yy := y * 2
		for x := 0; x < out.Width; x++ {
			xx := x * 2
			out.Set(x, y, (f.At(xx, yy)+f.At(xx+1, yy)+f.At(xx, yy+1)+f.At(xx+1, yy+1))/4)
		}
	}
	out.UpdateExtrema()
	return out, nil
}

// rescalePlane resamples one plane with separable linear interpolation. Rows
// are blended into a line buffer first; the sample past the right edge and the
// row past the bottom edge wrap to the start.
func rescalePlane(dst, src []float32, w, h, w2, h2 int) {
	xsf := float64(w) / float64(w2)
	ysf := float64(h) / float64(h2)
	lbuf := make([]float64, w+1)

	for y := 0; y < h2; y++ {
		ya := int(float64(y) * ysf)
		frac := float64(y)*ysf - float64(ya)
		yaa := 0
		if ya < h-1 {
			yaa = ya + 1
		}
		for xa := 0; xa < w; xa++ {
			lbuf[xa] = lerp(float64(src[ya*w+xa]), float64(src[yaa*w+xa]), frac)
		}
		lbuf[w] = lbuf[0]

		for x := 0; x < w2; x++ {
			xa := int(float64(x) * xsf)
			frac := float64(x)*xsf - float64(xa)
			dst[y*w2+x] = float32(lerp(lbuf[xa], lbuf[xa+1], frac))
		}
	}
}

// Rescale returns f resampled to w×h. Both planes of a complex field are
// resampled.
func Rescale(f *hfield.Field, w, h int) (*hfield.Field, error) {
	var (
		out *hfield.Field
		err error
	)
	if f.IsComplex() {
		out, err = hfield.NewComplex(w, h)
	} else {
		out, err = hfield.New(w, h)
	}
	if err != nil {
		return nil, fmt.Errorf("rescale: %w", err)
	}

	rescalePlane(out.Re, f.Re, f.Width, f.Height, w, h)
	if f.IsComplex() {
		rescalePlane(out.Im, f.Im, f.Width, f.Height, w, h)
	}
	out.UpdateExtrema()
	return out, nil
}

// Clip extracts the w×h subraster whose top-left corner is (x, y).
func Clip(f *hfield.Field, x, y, w, h int) (*hfield.Field, error) {
	if f.IsComplex() {
		return nil, fmt.Errorf("clip: %w", hfield.ErrComplex)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("clip: rectangle %dx%d has no area: %w", w, h, hfield.ErrBounds)
	}
	if x < 0 || y < 0 || x+w > f.Width || y+h > f.Height {
		return nil, fmt.Errorf("clip: rectangle (%d,%d) %dx%d outside %dx%d: %w",
			x, y, w, h, f.Width, f.Height, hfield.ErrBounds)
	}

	out, err := hfield.New(w, h)
	if err != nil {
		return nil, fmt.Errorf("clip: %w", err)
	}
	for row := 0; row < h; row++ {
		start := f.Index(x, y+row)
		copy(out.Re[row*w:(row+1)*w], f.Re[start:start+w])
	}
	out.UpdateExtrema()
	return out, nil
}
