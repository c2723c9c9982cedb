// Package ops implements the elementwise operator framework: unary transforms,
// binary operators with offset compositing, and the histogram and slope based
// statistics built on top of them.
package ops

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/hflab/internal/hfield"
)

// Unary maps one value to another.
type Unary interface {
	Apply(p float64) float64
}

// UnaryFunc adapts a plain function to Unary.
type UnaryFunc func(p float64) float64

// Apply calls fn(p).
func (fn UnaryFunc) Apply(p float64) float64 { return fn(p) }

// sgn returns -1 for negative input and 1 otherwise.
func sgn(p float64) float64 {
	if p < 0 {
		return -1
	}
	return 1
}

func clampUnit(p float64) float64 {
	if p < -1 {
		return -1
	}
	if p > 1 {
		return 1
	}
	return p
}

var (
	Sin  Unary = UnaryFunc(math.Sin)
	Cos  Unary = UnaryFunc(math.Cos)
	Atan Unary = UnaryFunc(math.Atan)
	Abs  Unary = UnaryFunc(math.Abs)

	Asin Unary = UnaryFunc(func(p float64) float64 { return math.Asin(clampUnit(p)) })
	Acos Unary = UnaryFunc(func(p float64) float64 { return math.Acos(clampUnit(p)) })

	Tan Unary = UnaryFunc(func(p float64) float64 {
		if math.Cos(p) == 0 {
			return 0
		}
		return math.Tan(p)
	})

	Invert Unary = UnaryFunc(func(p float64) float64 {
		if p == 0 {
			return 0
		}
		return 1 / p
	})

	// Log maps non-positive input to log(1) = 0.
	Log Unary = UnaryFunc(func(p float64) float64 {
		if p <= 0 {
			p = 1
		}
		return math.Log(p)
	})
)

// Pow raises |p| to e and restores the sign of p.
func Pow(e float64) Unary {
	return UnaryFunc(func(p float64) float64 {
		return sgn(p) * math.Pow(math.Abs(p), e)
	})
}

// Quantize snaps p down to multiples of 1/f.
func Quantize(f float64) Unary {
	return UnaryFunc(func(p float64) float64 {
		return math.Trunc(p*f-0.000001) / f
	})
}

// Mod is a sign preserving modulus.
func Mod(f float64) Unary {
	return UnaryFunc(func(p float64) float64 {
		return p - sgn(p)*math.Abs(math.Trunc(p/f)*f)
	})
}

func Add(f float64) Unary { return UnaryFunc(func(p float64) float64 { return p + f }) }
func Sub(f float64) Unary { return UnaryFunc(func(p float64) float64 { return p - f }) }
func Mul(f float64) Unary { return UnaryFunc(func(p float64) float64 { return p * f }) }
func Div(f float64) Unary { return UnaryFunc(func(p float64) float64 { return p / f }) }

// kneeScales returns the asymptote scales used by Floor (below) and Ceil (above).
func kneeScales(threshold, knee, lo, hi float64) (below, above float64) {
	above = hi - threshold
	if above != 0 {
		above = knee / above
	}
	below = threshold - lo
	if below != 0 {
		below = knee / below
	}
	return below, above
}

// Floor raises values below threshold. With knee <= 0 it clamps hard; otherwise
// values approach threshold asymptotically. lo and hi are the raster extrema.
func Floor(threshold, knee, lo, hi float64) Unary {
	below, _ := kneeScales(threshold, knee, lo, hi)
	return UnaryFunc(func(p float64) float64 {
		if p >= threshold {
			return p
		}
		if knee > 0 {
			return threshold + below*(1-1/(1+p-threshold))
		}
		return threshold
	})
}

// Ceil lowers values above threshold, the mirror image of Floor.
func Ceil(threshold, knee, lo, hi float64) Unary {
	_, above := kneeScales(threshold, knee, lo, hi)
	return UnaryFunc(func(p float64) float64 {
		if p <= threshold {
			return p
		}
		if knee > 0 {
			return threshold + above*(1-1/(1+p-threshold))
		}
		return threshold
	})
}

// Apply1 transforms the real plane of f in place and refreshes its extrema.
func Apply1(f *hfield.Field, op Unary) *hfield.Field {
	for i, v := range f.Re {
		f.Re[i] = float32(op.Apply(float64(v)))
	}
	f.UpdateExtrema()
	return f
}

// UnaryKind names a unary operation for table driven dispatch.
type UnaryKind int

const (
	OpAdd UnaryKind = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpAbs
	OpSin
	OpCos
	OpTan
	OpAsin
	OpAcos
	OpAtan
	OpLog
	OpInvert
	OpFloor
	OpCeil
	OpMod
	OpQuantize
)

var unaryNames = map[UnaryKind]string{
	OpAdd:      "add",
	OpSub:      "sub",
	OpMul:      "mul",
	OpDiv:      "div",
	OpPow:      "pow",
	OpAbs:      "abs",
	OpSin:      "sin",
	OpCos:      "cos",
	OpTan:      "tan",
	OpAsin:     "asin",
	OpAcos:     "acos",
	OpAtan:     "atan",
	OpLog:      "log",
	OpInvert:   "invert",
	OpFloor:    "floor",
	OpCeil:     "ceil",
	OpMod:      "mod",
	OpQuantize: "quantize",
}

func (k UnaryKind) String() string {
	if s, ok := unaryNames[k]; ok {
		return s
	}
	return fmt.Sprintf("UnaryKind(%d)", int(k))
}

// ParseUnaryKind resolves an exact operation name.
func ParseUnaryKind(name string) (UnaryKind, error) {
	for k, s := range unaryNames {
		if s == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown unary operation %q", name)
}

// Operator builds the Unary for k. fac is the main parameter; fac2 is the knee
// for floor and ceil. f supplies the extrema the knee is scaled by.
func (k UnaryKind) Operator(f *hfield.Field, fac, fac2 float64) (Unary, error) {
	lo, hi := float64(f.Min), float64(f.Max)
	switch k {
	case OpAdd:
		return Add(fac), nil
	case OpSub:
		return Sub(fac), nil
	case OpMul:
		return Mul(fac), nil
	case OpDiv:
		if fac == 0 {
			return nil, fmt.Errorf("div: %w", hfield.ErrDivZero)
		}
		return Div(fac), nil
	case OpPow:
		return Pow(fac), nil
	case OpAbs:
		return Abs, nil
	case OpSin:
		return Sin, nil
	case OpCos:
		return Cos, nil
	case OpTan:
		return Tan, nil
	case OpAsin:
		return Asin, nil
	case OpAcos:
		return Acos, nil
	case OpAtan:
		return Atan, nil
	case OpLog:
		return Log, nil
	case OpInvert:
		return Invert, nil
	case OpFloor:
		return Floor(fac, fac2, lo, hi), nil
	case OpCeil:
		return Ceil(fac, fac2, lo, hi), nil
	case OpMod:
		if fac == 0 {
			return nil, fmt.Errorf("mod: %w", hfield.ErrDivZero)
		}
		return Mod(fac), nil
	case OpQuantize:
		if fac == 0 {
			return nil, fmt.Errorf("quantize: %w", hfield.ErrDivZero)
		}
		return Quantize(fac), nil
	}
	return nil, fmt.Errorf("unknown unary operation %d", int(k))
}

// OneOp applies the operation k to f in place.
func OneOp(f *hfield.Field, k UnaryKind, fac, fac2 float64) (*hfield.Field, error) {
	op, err := k.Operator(f, fac, fac2)
	if err != nil {
		return nil, err
	}
	return Apply1(f, op), nil
}
