package hfield

// Policy selects how out-of-range coordinates are resolved.
type Policy int

const (
	// Clamp saturates coordinates to the nearest edge.
	Clamp Policy = iota
	// Wrap treats the raster as a torus.
	Wrap
)

func (p Policy) String() string {
	if p == Wrap {
		return "wrap"
	}
	return "clamp"
}

// WrapIndex maps any integer into [0, n).
func WrapIndex(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// ClampIndex saturates v to [0, n-1].
func ClampIndex(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// Resolve maps (x, y) into the raster according to p.
func (p Policy) Resolve(x, y, w, h int) (int, int) {
	if p == Wrap {
		return WrapIndex(x, w), WrapIndex(y, h)
	}
	return ClampIndex(x, w), ClampIndex(y, h)
}

// Offset returns the flat offset of (x, y) after resolving with p.
func (f *Field) Offset(p Policy, x, y int) int {
	x, y = p.Resolve(x, y, f.Width, f.Height)
	return y*f.Width + x
}

// AtPolicy returns the real value at (x, y) resolved with p.
func (f *Field) AtPolicy(p Policy, x, y int) float64 {
	return float64(f.Re[f.Offset(p, x, y)])
}

// AtWrap returns the real value at (x, y) with toroidal addressing.
func (f *Field) AtWrap(x, y int) float64 { return f.AtPolicy(Wrap, x, y) }

// AtClamp returns the real value at (x, y) with edge replication.
func (f *Field) AtClamp(x, y int) float64 { return f.AtPolicy(Clamp, x, y) }
