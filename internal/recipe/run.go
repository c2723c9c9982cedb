package recipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/hflab/internal/cplx"
	"github.com/MeKo-Tech/hflab/internal/crater"
	"github.com/MeKo-Tech/hflab/internal/erode"
	"github.com/MeKo-Tech/hflab/internal/geom"
	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/noise"
	"github.com/MeKo-Tech/hflab/internal/ops"
	"github.com/MeKo-Tech/hflab/internal/session"
	"github.com/MeKo-Tech/hflab/internal/spectral"
)

// ErrNoRaster is returned when a transform step runs before any generator.
var ErrNoRaster = errors.New("no current raster")

// runner holds the state of one recipe execution.
type runner struct {
	sess   *session.Session
	logger *slog.Logger
	cur    *hfield.Field
	kept   map[string]*hfield.Field
}

// Run executes steps in order and returns the final raster. Cancellation is
// checked between steps; a step that has started always completes. Every
// intermediate raster is released before Run returns.
func Run(ctx context.Context, sess *session.Session, steps []Step, logger *slog.Logger) (*hfield.Field, error) {
	if logger == nil {
		logger = sess.Logger()
	}
	r := &runner{sess: sess, logger: logger, kept: make(map[string]*hfield.Field)}
	defer r.releaseKept()

	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			r.replace(nil)
			return nil, fmt.Errorf("recipe stopped before step %d: %w", i+1, err)
		}
		r.logger.Debug("Running recipe step", "step", i+1, "op", s.String())

		out, err := r.step(s)
		if err != nil {
			r.replace(nil)
			return nil, fmt.Errorf("step %d (%s): %w", i+1, s.Op, err)
		}
		r.replace(out)
	}

	if r.cur == nil {
		return nil, fmt.Errorf("recipe: %w", ErrNoRaster)
	}
	return r.cur, nil
}

// replace makes out the current raster, releasing the previous one unless the
// step modified it in place.
func (r *runner) replace(out *hfield.Field) {
	if r.cur != nil && r.cur != out {
		r.cur.Release()
	}
	r.cur = out
}

func (r *runner) releaseKept() {
	for name, f := range r.kept {
		f.Release()
		delete(r.kept, name)
	}
}

func (r *runner) named(name string) (*hfield.Field, error) {
	f, ok := r.kept[name]
	if !ok {
		return nil, fmt.Errorf("no raster kept as %q", name)
	}
	return f, nil
}

func (r *runner) step(s Step) (*hfield.Field, error) {
	if s.Op < 0 || int(s.Op) >= len(kinds) {
		return nil, fmt.Errorf("unknown step %d", int(s.Op))
	}
	a, err := s.args()
	if err != nil {
		return nil, err
	}
	if s.Op.Generates() {
		return r.generate(s.Op, a)
	}
	if r.cur == nil {
		return nil, ErrNoRaster
	}
	f := r.cur

	switch s.Op {
	case Unary:
		k, err := ops.ParseUnaryKind(s.Mode)
		if err != nil {
			return nil, err
		}
		return ops.OneOp(f, k, a[0], a[1])
	case Normalize:
		return ops.Normalize(f, a[0], a[1])
	case Negate:
		return ops.Negate(f)
	case Equalize:
		return ops.Equalize(r.sess, f, a[0])
	case PeakShift:
		return ops.PeakShift(r.sess, f, a[0])
	case Slope:
		return ops.Differential(r.sess, f, ops.Slope)
	case Curvature:
		return ops.Differential(r.sess, f, ops.Curvature)
	case SlopeLimit:
		mode := ops.Slope
		if s.Mode == ops.Curvature.String() {
			mode = ops.Curvature
		}
		return ops.SlopeLimit(r.sess, f, mode, a[0], int(a[1]))

	case Smooth:
		return geom.Smooth(r.sess, f, a[0])
	case ElevSmooth:
		return geom.ElevationSmooth(r.sess, f, int(a[0]), a[1], a[2])
	case Double:
		return geom.Double(r.sess, f, a[0], a[1])
	case Halve:
		return geom.Halve(f)
	case Rescale:
		return geom.Rescale(f, int(a[0]), int(a[1]))
	case Clip:
		return geom.Clip(f, int(a[0]), int(a[1]), int(a[2]), int(a[3]))
	case Fade:
		return geom.FadeEdges(f, a[0], a[1])
	case Rotate:
		return geom.Rotate(f, int(a[0]))
	case Slew:
		return geom.SlewPeak(f, a[0], a[1])
	case Hill:
		return geom.AddGaussHill(r.sess, f, a[0], a[1], a[2], a[3])
	case Ring:
		return geom.AddRing(r.sess, f, a[0], a[1], a[2], a[3], a[4])
	case Tilt:
		return geom.AddSlope(f, a[0], a[1], a[2])
	case Distance:
		return geom.Distance(f, a[0])

	case Fill:
		return erode.FillBasins(r.sess, f, int(a[0]))
	case Uphill:
		return erode.UphillArea(r.sess, f)
	case Craters:
		return crater.Stamp(r.sess, f, crater.Params{
			Count:        int(a[0]),
			HeightScale:  a[1],
			RadiusScale:  a[2],
			Distribution: a[3],
		})

	case Filter:
		kind, err := spectral.ParseFilterKind(s.Mode)
		if err != nil {
			return nil, err
		}
		return spectral.FilterReal(f, a[0], a[1], kind)
	case FFT:
		dir := spectral.Forward
		if a[0] < 0 {
			dir = spectral.Inverse
		}
		return spectral.FFT(f.EnsureImag(), dir, spectral.Scale(a[1]))
	case Polar:
		return cplx.ToPolar(f)
	case Rect:
		return cplx.ToRect(f)
	case Magnitude:
		return cplx.Magnitude(f)
	case Real:
		return cplx.Real(f), nil
	case Swap:
		return cplx.Swap(f)
	case Gradient:
		return cplx.Gradient(r.sess, f)
	case Integrate:
		return cplx.Integrate(f)
	}

	return r.withNamed(s, a)
}

func (r *runner) generate(k Kind, a []float64) (*hfield.Field, error) {
	switch k {
	case Forge:
		return spectral.Forge(r.sess, int(a[0]), a[1])
	case Random:
		return noise.Random(r.sess, int(a[0]), int(a[1]))
	case Perlin:
		return noise.Perlin(r.sess, int(a[0]), int(a[1]), a[2], int(a[3]))
	case Seamless:
		o := noise.DefaultOctaves
		o.Frequency, o.Count = a[2], int(a[3])
		return noise.Seamless(r.sess, int(a[0]), int(a[1]), o)
	case Const:
		return hfield.Const(int(a[0]), int(a[1]), a[2])
	}
	return nil, fmt.Errorf("%s is not a generator", k)
}

// withNamed runs the steps that combine the current raster with a kept one.
func (r *runner) withNamed(s Step, a []float64) (*hfield.Field, error) {
	f := r.cur
	if s.Op == Keep {
		if old, ok := r.kept[s.Name]; ok {
			old.Release()
		}
		r.kept[s.Name] = f.Clone()
		return f, nil
	}

	other, err := r.named(s.Name)
	if err != nil {
		return nil, err
	}

	switch s.Op {
	case Composite:
		k := ops.CompAdd
		if s.Mode != "" {
			if k, err = ops.ParseCompositeKind(s.Mode); err != nil {
				return nil, err
			}
		}
		return ops.CompositeByKind(r.sess, other, f, int(a[0]), int(a[1]), k)
	case Join:
		return geom.Join(f, other, a[0] != 0)
	case Pair:
		return cplx.Join(f, other)
	case Warp:
		mode := geom.Twist
		if s.Mode != "" {
			if mode, err = geom.ParseWarpMode(s.Mode); err != nil {
				return nil, err
			}
		}
		return geom.Warp(r.sess, f, other, mode, a[0], a[1], a[2])
	case ComplexWarp:
		return geom.ComplexWarp(r.sess, f, other, a[0])
	}
	return nil, fmt.Errorf("unknown step %s", s.Op)
}
