package ops

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
)

// Binary combines a destination value with a source value.
type Binary interface {
	Apply(dst, src float64) float64
}

// BinaryFunc adapts a plain function to Binary.
type BinaryFunc func(dst, src float64) float64

// Apply calls fn(dst, src).
func (fn BinaryFunc) Apply(dst, src float64) float64 { return fn(dst, src) }

var (
	Add2 Binary = BinaryFunc(func(d, s float64) float64 { return d + s })
	Sub2 Binary = BinaryFunc(func(d, s float64) float64 { return d - s })
	Mul2 Binary = BinaryFunc(func(d, s float64) float64 { return d * s })

	// Div2 yields 0 where the source is 0.
	Div2 Binary = BinaryFunc(func(d, s float64) float64 {
		if s == 0 {
			return 0
		}
		return d / s
	})

	Hypot Binary = BinaryFunc(math.Hypot)

	// Pow2 raises dst to src. Negative exponents are treated as 0 and a
	// negative base yields 0.
	Pow2 Binary = BinaryFunc(func(d, s float64) float64 {
		if s < 0 {
			s = 0
		}
		if d < 0 {
			return 0
		}
		return math.Pow(d, s)
	})

	Max Binary = BinaryFunc(math.Max)
	Min Binary = BinaryFunc(math.Min)
)

// CompositeKind names a binary operation for table driven dispatch.
type CompositeKind int

const (
	CompAdd CompositeKind = iota
	CompSub
	CompMul
	CompDiv
	CompPow
	CompHypot
	CompMax
	CompMin
)

var compositeOps = []struct {
	name string
	op   Binary
}{
	CompAdd:   {"add", Add2},
	CompSub:   {"sub", Sub2},
	CompMul:   {"mul", Mul2},
	CompDiv:   {"div", Div2},
	CompPow:   {"pow", Pow2},
	CompHypot: {"hypot", Hypot},
	CompMax:   {"max", Max},
	CompMin:   {"min", Min},
}

func (k CompositeKind) String() string {
	if k >= 0 && int(k) < len(compositeOps) {
		return compositeOps[k].name
	}
	return fmt.Sprintf("CompositeKind(%d)", int(k))
}

// Binary returns the operator for k, or nil for an unknown kind.
func (k CompositeKind) Binary() Binary {
	if k >= 0 && int(k) < len(compositeOps) {
		return compositeOps[k].op
	}
	return nil
}

// ParseCompositeKind resolves an exact operation name.
func ParseCompositeKind(name string) (CompositeKind, error) {
	for k, c := range compositeOps {
		if c.name == name {
			return CompositeKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown composite operation %q", name)
}

// Composite writes op(dst, src) for every source cell into a new raster the
// size of dst, placing src at offset (xo, yo). On a tilable destination the
// placement wraps; otherwise cells falling outside dst are dropped. When only
// one operand is complex the result is complex and carries that operand's
// imaginary plane unchanged; both operands complex is unsupported.
func Composite(sess *session.Session, src, dst *hfield.Field, xo, yo int, op Binary) (*hfield.Field, error) {
	if op == nil {
		return nil, fmt.Errorf("composite: nil operator")
	}
	if src.Width > dst.Width || src.Height > dst.Height {
		return nil, fmt.Errorf("composite: source %dx%d larger than destination %dx%d: %w",
			src.Width, src.Height, dst.Width, dst.Height, hfield.ErrSize)
	}
	if src.IsComplex() && dst.IsComplex() {
		return nil, fmt.Errorf("composite: two complex operands: %w", hfield.ErrComplex)
	}
	cplx := src.IsComplex() || dst.IsComplex()
	if cplx && !src.SameSize(dst) {
		return nil, fmt.Errorf("composite: real and complex operands of different size: %w", hfield.ErrSize)
	}
	if xo < 0 || yo < 0 || xo >= dst.Width || yo >= dst.Height {
		return nil, fmt.Errorf("composite: offset (%d,%d) outside %dx%d: %w",
			xo, yo, dst.Width, dst.Height, hfield.ErrBounds)
	}

	tile := sess.Tilable(dst)

	var (
		out *hfield.Field
		err error
	)
	if cplx {
		out, err = hfield.NewComplex(dst.Width, dst.Height)
	} else {
		out, err = hfield.New(dst.Width, dst.Height)
	}
	if err != nil {
		return nil, fmt.Errorf("composite: %w", err)
	}

	if !src.SameSize(dst) || (!tile && (xo != 0 || yo != 0)) {
		copy(out.Re, dst.Re)
	}

	for y := 0; y < src.Height; y++ {
		yy := y + yo
		if tile && yy >= dst.Height {
			yy -= dst.Height
		}
		if yy >= dst.Height {
			continue
		}
		for x := 0; x < src.Width; x++ {
			xx := x + xo
			if tile && xx >= dst.Width {
				xx -= dst.Width
			}
			if xx >= dst.Width {
				continue
			}
			out.Set(xx, yy, op.Apply(dst.At(xx, yy), src.At(x, y)))
		}
	}

	switch {
	case src.IsComplex():
		copy(out.Im, src.Im)
	case dst.IsComplex():
		copy(out.Im, dst.Im)
	}

	out.UpdateExtrema()
	return out, nil
}

// CompositeByKind is Composite with the operator looked up from k.
func CompositeByKind(sess *session.Session, src, dst *hfield.Field, xo, yo int, k CompositeKind) (*hfield.Field, error) {
	op := k.Binary()
	if op == nil {
		return nil, fmt.Errorf("composite: unknown operation %d", int(k))
	}
	return Composite(sess, src, dst, xo, yo, op)
}
