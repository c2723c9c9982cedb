package spectral

import (
	"fmt"
	"math"
	"strings"

	"github.com/MeKo-Tech/hflab/internal/hfield"
)

// FilterKind selects the radial transfer function.
type FilterKind int

const (
	BandPass   FilterKind = 1
	BandReject FilterKind = -1
	LowPass    FilterKind = 2
	HighPass   FilterKind = -2
)

var filterNames = map[FilterKind]string{
	BandPass:   "bp",
	BandReject: "br",
	LowPass:    "lp",
	HighPass:   "hp",
}

func (k FilterKind) String() string {
	if n, ok := filterNames[k]; ok {
		return n
	}
	return fmt.Sprintf("FilterKind(%d)", int(k))
}

// ParseFilterKind accepts the short names bp, br, lp and hp.
func ParseFilterKind(s string) (FilterKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, n := range filterNames {
		if n == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown filter type %q", s)
}

// resonant reports whether k uses the band (resonance) form.
func (k FilterKind) resonant() bool { return k == BandPass || k == BandReject }

// gain evaluates the transfer function at normalized radius rad.
func (k FilterKind) gain(rad, center, q float64) float64 {
	var fac float64
	if k.resonant() {
		p := 1 / math.Pow(q*center, 2)
		fac = p / (p + math.Pow(1-rad/center, 2))
	} else {
		fac = 1 / (1 + math.Pow(rad/center, q))
	}
	if k < 0 {
		fac = 1 - fac
	}
	return fac
}

// Filter multiplies the spectrum held in complex f by a radially symmetric
// transfer function. center is the cutoff or band center as a fraction of the
// half diagonal; q is the band resonance or the roll-off order.
func Filter(f *hfield.Field, center, q float64, kind FilterKind) (*hfield.Field, error) {
	if !f.IsComplex() {
		return nil, fmt.Errorf("filter: %w", hfield.ErrNotComplex)
	}
	if _, ok := filterNames[kind]; !ok {
		return nil, fmt.Errorf("filter: unknown kind %d: %w", int(kind), hfield.ErrParam)
	}
	if center == 0 {
		center = -0.00001
	}

	xs, ys := f.Width, f.Height
	sfac := 1 / math.Sqrt(float64(xs*xs/4+ys*ys/4))
	scale := func(x, y int, fac float64) {
		i := f.Index(x, y)
		f.Re[i] *= float32(fac)
		f.Im[i] *= float32(fac)
	}

	// quadrants 2 and 4
	for i := 0; i <= xs/2; i++ {
		for j := 0; j <= ys/2; j++ {
			rad := 0.0
			if i != 0 || j != 0 {
				rad = math.Sqrt(float64(i*i+j*j)) * sfac
			}
			fac := kind.gain(rad, center, q)
			scale(i, j, fac)

			i0, j0 := 0, 0
			if i != 0 {
				i0 = xs - i
			}
			if j != 0 {
				j0 = ys - j
			}
			scale(i0, j0, fac)
		}
	}

	f.SetImag(xs/2, 0, 0)
	f.SetImag(0, ys/2, 0)
	f.SetImag(xs/2, ys/2, 0)

	// quadrants 1 and 3
	for i := 1; i <= xs/2-1; i++ {
		for j := 1; j <= ys/2-1; j++ {
			fac := kind.gain(sfac*math.Sqrt(float64(i*i+j*j)), center, q)
			scale(i, ys-j, fac)
			scale(xs-i, j, fac)
		}
	}

	f.UpdateExtrema()
	return f, nil
}

// RealDefaults resolves the sentinel arguments of FilterReal: a1 == -1 and
// a2 == 0 select per-kind defaults for center and q.
func RealDefaults(kind FilterKind, a1, a2 float64) (center, q float64) {
	switch kind {
	case BandPass:
		if a2 == 0 {
			a2 = 4
		}
	case BandReject:
		if a1 == -1 {
			a1 = 0
		}
		if a2 == 0 {
			a2 = 50
		}
	case HighPass:
		if a1 == -1 {
			a1 = 0.05
		}
	}
	if a1 == -1 {
		a1 = 0.1
	}
	if a2 == 0 {
		a2 = 1
	}
	return a1, a2
}

// FilterReal runs a forward transform, Filter and a normalized inverse
// transform over a copy of f and returns the real part. f is not modified.
func FilterReal(f *hfield.Field, a1, a2 float64, kind FilterKind) (*hfield.Field, error) {
	center, q := RealDefaults(kind, a1, a2)

	c := f.Clone().EnsureImag()
	if _, err := FFT(c, Forward, NoScale); err != nil {
		return nil, fmt.Errorf("real filter: %w", err)
	}
	if _, err := Filter(c, center, q, kind); err != nil {
		c.Release()
		return nil, fmt.Errorf("real filter: %w", err)
	}
	if _, err := FFT(c, Inverse, ByCount); err != nil {
		c.Release()
		return nil, fmt.Errorf("real filter: %w", err)
	}
	c.DropImag()
	c.UpdateExtrema()
	return c, nil
}
