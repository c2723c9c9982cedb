package geom

import (
	"fmt"
	"math"
	"strings"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
)

// WarpMode selects what the control raster perturbs.
type WarpMode int

const (
	// Twist rotates each point about the centre by scale·ctrl radians.
	Twist WarpMode = iota
	// Bloom pushes each point away from the centre by scale·ctrl·W.
	Bloom
)

func (m WarpMode) String() string {
	if m == Bloom {
		return "bloom"
	}
	return "twist"
}

// ParseWarpMode accepts "twist" or "bloom".
func ParseWarpMode(s string) (WarpMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "twist":
		return Twist, nil
	case "bloom":
		return Bloom, nil
	}
	return 0, fmt.Errorf("unknown warp mode %q", s)
}

// bilinear samples src near (fx+ox, fy+oy). The second sample on each axis is
// taken on the far side of fx, fy from zero, so that the integer part always
// truncates toward the origin of the warp.
func bilinear(src *hfield.Field, p hfield.Policy, fx, fy float64, ox, oy int) float64 {
	xx, yy := int(fx), int(fy)
	xfrac := math.Abs(fx - float64(xx))
	yfrac := math.Abs(fy - float64(yy))

	xx1, yy1 := xx-1, yy-1
	if fx > 0 {
		xx1 = xx + 1
	}
	if fy > 0 {
		yy1 = yy + 1
	}
	xx, xx1 = xx+ox, xx1+ox
	yy, yy1 = yy+oy, yy1+oy

	t1 := lerp(src.AtPolicy(p, xx, yy), src.AtPolicy(p, xx, yy1), yfrac)
	t2 := lerp(src.AtPolicy(p, xx1, yy), src.AtPolicy(p, xx1, yy1), yfrac)
	return lerp(t1, t2, xfrac)
}

// Warp resamples src through a polar displacement driven by the real control
// raster ctrl. The output has the size of ctrl. (xc, yc) is the warp centre as
// a fraction of each raster's size.
func Warp(sess *session.Session, src, ctrl *hfield.Field, mode WarpMode, xc, yc, scale float64) (*hfield.Field, error) {
	if src.IsComplex() || ctrl.IsComplex() {
		return nil, fmt.Errorf("%s: both inputs must be real: %w", mode, hfield.ErrComplex)
	}
	p := sess.Policy(src)

	out, err := hfield.New(ctrl.Width, ctrl.Height)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mode, err)
	}

	ox := int(xc * float64(src.Width))
	oy := int(yc * float64(src.Height))
	xc3 := xc * float64(out.Width)
	yc3 := yc * float64(out.Height)
	if mode == Bloom {
		scale *= float64(ctrl.Width)
	}

	for y := 0; y < out.Height; y++ {
		ay := float64(y) - yc3
		for x := 0; x < out.Width; x++ {
			ax := float64(x) - xc3
			r := math.Hypot(ax, ay)
			theta := 0.0
			if ax != 0 || ay != 0 {
				theta = math.Atan2(ay, ax)
			}
			if mode == Twist {
				theta += scale * ctrl.At(x, y)
			} else {
				r += scale * ctrl.At(x, y)
			}
			out.Set(x, y, bilinear(src, p, r*math.Cos(theta), r*math.Sin(theta), ox, oy))
		}
	}
	out.UpdateExtrema()
	return out, nil
}

// ComplexWarp moves every point of src by (scale·W·re, scale·W·im) taken from
// the complex control raster ctrl, where W is the width of ctrl. A control
// raster of a different size is linearly resampled on the fly. The output has
// the size of src.
func ComplexWarp(sess *session.Session, src, ctrl *hfield.Field, scale float64) (*hfield.Field, error) {
	if !ctrl.IsComplex() {
		return nil, fmt.Errorf("complex warp: control: %w", hfield.ErrNotComplex)
	}
	if src.IsComplex() {
		return nil, fmt.Errorf("complex warp: source: %w", hfield.ErrComplex)
	}
	p := sess.Policy(src)
	scale *= float64(ctrl.Width)

	c := ctrl
	if !ctrl.SameSize(src) {
		var err error
		if c, err = Rescale(ctrl, src.Width, src.Height); err != nil {
			return nil, fmt.Errorf("complex warp: %w", err)
		}
		defer c.Release()
	}

	out, err := hfield.New(src.Width, src.Height)
	if err != nil {
		return nil, fmt.Errorf("complex warp: %w", err)
	}
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			fx := float64(x) + scale*c.At(x, y)
			fy := float64(y) + scale*c.ImagAt(x, y)
			out.Set(x, y, bilinear(src, p, fx, fy, 0, 0))
		}
	}
	out.UpdateExtrema()
	return out, nil
}
