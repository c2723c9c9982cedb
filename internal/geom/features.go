package geom

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
)

func checkCentre(op string, xfrac, yfrac float64) error {
	if xfrac < 0 || xfrac > 1 || yfrac < 0 || yfrac > 1 {
		return fmt.Errorf("%s: centre (%g,%g) outside [0, 1]: %w", op, xfrac, yfrac, hfield.ErrParam)
	}
	return nil
}

// addRadial adds fn(dist²) to every cell of f in place, where dist is the
// distance of the cell centre from (xfrac, yfrac) in units of raster size. On a
// tilable field only cells within extent·size of the raster centre are
// visited, with toroidal addressing, so the feature wraps across edges.
func addRadial(sess *session.Session, f *hfield.Field, xfrac, yfrac, extent float64, fn func(d2 float64) float64) {
	w, h := f.Width, f.Height
	xmin, xmax, ymin, ymax := 0, w, 0, h
	tile := sess.Tilable(f)
	if tile {
		xc, yc := float64(w)/2, float64(h)/2
		xmin, xmax = int(xc-extent*float64(w)), int(xc+extent*float64(w))
		ymin, ymax = int(yc-extent*float64(h)), int(yc+extent*float64(h))
	}

	for y := ymin; y < ymax; y++ {
		ya := (float64(y)+0.5)/float64(h) - yfrac
		ya *= ya
		for x := xmin; x < xmax; x++ {
			xa := (float64(x)+0.5)/float64(w) - xfrac
			i := f.Offset(hfield.Wrap, x, y)
			f.Re[i] += float32(fn(xa*xa + ya))
		}
	}
	f.UpdateExtrema()
}

// AddGaussHill adds a Gaussian bump of height hscale and radius radfac
// (fraction of the raster size) centred at (xfrac, yfrac).
func AddGaussHill(sess *session.Session, f *hfield.Field, xfrac, yfrac, radfac, hscale float64) (*hfield.Field, error) {
	if err := checkCentre("gauss hill", xfrac, yfrac); err != nil {
		return nil, err
	}
	if radfac <= 0 {
		return nil, fmt.Errorf("gauss hill: radius must be positive: %w", hfield.ErrParam)
	}
	extent := sess.Config().GaussExtent * radfac
	r2 := radfac * radfac
	addRadial(sess, f, xfrac, yfrac, extent, func(d2 float64) float64 {
		return hscale * math.Exp(-d2/r2)
	})
	return f, nil
}

// AddRing adds a ring of height hscale whose crest lies radfac from
// (xfrac, yfrac). width controls the Gaussian cross-section; it is squared
// before use, so the falloff narrows quickly for widths below one.
func AddRing(sess *session.Session, f *hfield.Field, xfrac, yfrac, radfac, width, hscale float64) (*hfield.Field, error) {
	if err := checkCentre("ring", xfrac, yfrac); err != nil {
		return nil, err
	}
	if width <= 0 {
		return nil, fmt.Errorf("ring: width must be positive: %w", hfield.ErrParam)
	}
	extent := sess.Config().GaussExtent*width + radfac
	w2 := width * width
	addRadial(sess, f, xfrac, yfrac, extent, func(d2 float64) float64 {
		return hscale * math.Exp(-math.Pow((math.Sqrt(d2)-radfac)/w2, 2))
	})
	return f, nil
}

// AddSlope tilts f in place so the far (y = 0) edge rises by ysfac. The ramp
// starts yfrac of the way from the far edge and follows a power curve with
// exponent exp.
func AddSlope(f *hfield.Field, yfrac, ysfac, exp float64) (*hfield.Field, error) {
	if yfrac < 0 || yfrac > 1 {
		return nil, fmt.Errorf("slope: frac %g outside [0, 1]: %w", yfrac, hfield.ErrParam)
	}
	if exp < 0 {
		return nil, fmt.Errorf("slope: exponent must not be negative: %w", hfield.ErrParam)
	}

	yfrac = 1 - yfrac
	yscale := 1.0
	if yfrac != 0 {
		yscale = 1 / yfrac
	}
	for y := 0; y < f.Height; y++ {
		yf := 1 - float64(y)/float64(f.Height)
		yf = (yf - yfrac) * yscale
		if yf < 0 {
			yf = 0
		}
		add := ysfac * math.Pow(yf, exp)
		for x := 0; x < f.Width; x++ {
			f.Set(x, y, f.At(x, y)+add)
		}
	}
	f.UpdateExtrema()
	return f, nil
}
