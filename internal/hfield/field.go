// Package hfield provides the heightfield raster model: a real plane, an optional
// imaginary plane, cached extrema and the boundary addressing policies used by
// every operator in the engine.
package hfield

import (
	"fmt"
	"math"
)

// Field is a row-major 2-D raster. A field is complex when Im is non-nil.
// Min and Max always describe the real plane once an operation returns.
type Field struct {
	Re     []float32
	Im     []float32
	Width  int
	Height int
	Min    float32
	Max    float32
}

// New creates a zero-filled real field.
func New(w, h int) (*Field, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid size %dx%d: %w", w, h, ErrSize)
	}
	return &Field{
		Width:  w,
		Height: h,
		Re:     make([]float32, w*h),
	}, nil
}

// NewComplex creates a zero-filled complex field.
func NewComplex(w, h int) (*Field, error) {
	f, err := New(w, h)
	if err != nil {
		return nil, err
	}
	f.Im = make([]float32, w*h)
	return f, nil
}

// Zero is an alias for New kept for parity with the other factories.
func Zero(w, h int) (*Field, error) {
	return New(w, h)
}

// Const creates a real field with every element set to v.
func Const(w, h int, v float64) (*Field, error) {
	f, err := New(w, h)
	if err != nil {
		return nil, err
	}
	for i := range f.Re {
		f.Re[i] = float32(v)
	}
	f.Min = float32(v)
	f.Max = float32(v)
	return f, nil
}

// FromBuffer copies an external row-major buffer into a new field.
// im may be nil for a real field.
func FromBuffer(w, h int, re, im []float32) (*Field, error) {
	if len(re) != w*h {
		return nil, fmt.Errorf("real plane has %d values, want %d: %w", len(re), w*h, ErrSize)
	}
	if im != nil && len(im) != w*h {
		return nil, fmt.Errorf("imaginary plane has %d values, want %d: %w", len(im), w*h, ErrSize)
	}

	var (
		f   *Field
		err error
	)
	if im != nil {
		f, err = NewComplex(w, h)
	} else {
		f, err = New(w, h)
	}
	if err != nil {
		return nil, err
	}

	copy(f.Re, re)
	if im != nil {
		copy(f.Im, im)
	}
	f.UpdateExtrema()
	return f, nil
}

// Clone returns a deep copy of f.
func (f *Field) Clone() *Field {
	c := &Field{
		Width:  f.Width,
		Height: f.Height,
		Min:    f.Min,
		Max:    f.Max,
		Re:     append([]float32(nil), f.Re...),
	}
	if f.Im != nil {
		c.Im = append([]float32(nil), f.Im...)
	}
	return c
}

// Release drops both planes. The field must not be used afterwards.
func (f *Field) Release() {
	if f == nil {
		return
	}
	f.Re = nil
	f.Im = nil
	f.Width = 0
	f.Height = 0
}

// IsComplex reports whether f carries an imaginary plane.
func (f *Field) IsComplex() bool { return f.Im != nil }

// Len is the number of elements per plane.
func (f *Field) Len() int { return f.Width * f.Height }

// SameSize reports whether f and g have identical dimensions.
func (f *Field) SameSize(g *Field) bool {
	return f.Width == g.Width && f.Height == g.Height
}

// Index returns the flat offset of (x, y). No bounds checking.
func (f *Field) Index(x, y int) int { return y*f.Width + x }

// At returns the real value at (x, y).
func (f *Field) At(x, y int) float64 { return float64(f.Re[y*f.Width+x]) }

// Set stores v at (x, y) in the real plane. Extrema are not touched.
func (f *Field) Set(x, y int, v float64) { f.Re[y*f.Width+x] = float32(v) }

// ImagAt returns the imaginary value at (x, y).
func (f *Field) ImagAt(x, y int) float64 { return float64(f.Im[y*f.Width+x]) }

// SetImag stores v at (x, y) in the imaginary plane.
func (f *Field) SetImag(x, y int, v float64) { f.Im[y*f.Width+x] = float32(v) }

// UpdateExtrema rescans the real plane and refreshes Min and Max.
func (f *Field) UpdateExtrema() {
	f.Min, f.Max = planeExtrema(f.Re)
}

// ImagExtrema returns the extrema of the imaginary plane, or zeros for a real field.
func (f *Field) ImagExtrema() (lo, hi float32) {
	if f.Im == nil {
		return 0, 0
	}
	return planeExtrema(f.Im)
}

// IsConstant reports whether every real element has the same value.
func (f *Field) IsConstant() bool { return f.Min == f.Max }

// Range returns Max-Min as float64.
func (f *Field) Range() float64 { return float64(f.Max) - float64(f.Min) }

// DropImag truncates a complex field to its real plane in place.
func (f *Field) DropImag() *Field {
	f.Im = nil
	return f
}

// EnsureImag gives a real field a zeroed imaginary plane in place.
func (f *Field) EnsureImag() *Field {
	if f.Im == nil {
		f.Im = make([]float32, len(f.Re))
	}
	return f
}

func planeExtrema(p []float32) (lo, hi float32) {
	if len(p) == 0 {
		return 0, 0
	}
	lo, hi = p[0], p[0]
	for _, v := range p[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Stats summarises a field for logging and the info command.
type Stats struct {
	Width   int
	Height  int
	Complex bool
	Min     float64
	Max     float64
	Mean    float64
	StdDev  float64
}

// Describe computes summary statistics over the real plane.
func (f *Field) Describe() Stats {
	s := Stats{
		Width:   f.Width,
		Height:  f.Height,
		Complex: f.IsComplex(),
		Min:     float64(f.Min),
		Max:     float64(f.Max),
	}
	n := float64(len(f.Re))
	if n == 0 {
		return s
	}

	var sum float64
	for _, v := range f.Re {
		sum += float64(v)
	}
	s.Mean = sum / n

	var sq float64
	for _, v := range f.Re {
		d := float64(v) - s.Mean
		sq += d * d
	}
	s.StdDev = math.Sqrt(sq / n)
	return s
}
