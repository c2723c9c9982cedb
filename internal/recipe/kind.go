package recipe

import (
	"fmt"
	"strings"
)

// Kind identifies a recipe step.
type Kind int

const (
	// generators replace the current raster
	Forge Kind = iota
	Random
	Perlin
	Seamless
	Const

	// pointwise and statistics
	Unary
	Normalize
	Negate
	Equalize
	PeakShift
	Slope
	Curvature
	SlopeLimit

	// spatial
	Smooth
	ElevSmooth
	Double
	Halve
	Rescale
	Clip
	Fade
	Rotate
	Slew
	Hill
	Ring
	Tilt
	Distance

	// erosion and craters
	Fill
	Uphill
	Craters

	// frequency and complex domain
	Filter
	FFT
	Polar
	Rect
	Magnitude
	Real
	Swap
	Gradient
	Integrate

	// steps that work with a named raster
	Keep
	Composite
	Join
	Pair
	Warp
	ComplexWarp
)

type kindInfo struct {
	name     string
	defaults []float64 // trailing arguments that may be omitted
	required int
}

var kinds = []kindInfo{
	Forge:       {name: "forge", required: 2},
	Random:      {name: "random", required: 2},
	Perlin:      {name: "perlin", required: 2, defaults: []float64{32, 4}},
	Seamless:    {name: "seamless", required: 2, defaults: []float64{1.5, 4}},
	Const:       {name: "const", required: 2, defaults: []float64{0}},
	Unary:       {name: "unary", required: 0, defaults: []float64{0, 0}},
	Normalize:   {name: "normalize", defaults: []float64{0, 1}},
	Negate:      {name: "negate"},
	Equalize:    {name: "equalize", defaults: []float64{1}},
	PeakShift:   {name: "peakshift", required: 1},
	Slope:       {name: "slope"},
	Curvature:   {name: "curvature"},
	SlopeLimit:  {name: "slopelimit", required: 1, defaults: []float64{10}},
	Smooth:      {name: "smooth", defaults: []float64{1}},
	ElevSmooth:  {name: "elevsmooth", required: 3},
	Double:      {name: "double", defaults: []float64{0.1, 0.1}},
	Halve:       {name: "halve"},
	Rescale:     {name: "rescale", required: 2},
	Clip:        {name: "clip", required: 4},
	Fade:        {name: "fade", required: 1, defaults: []float64{1}},
	Rotate:      {name: "rotate", required: 1},
	Slew:        {name: "slew", defaults: []float64{0.5, 0.5}},
	Hill:        {name: "hill", required: 4},
	Ring:        {name: "ring", required: 5},
	Tilt:        {name: "tilt", required: 2, defaults: []float64{1}},
	Distance:    {name: "distance", defaults: []float64{0}},
	Fill:        {name: "fill", defaults: []float64{100}},
	Uphill:      {name: "uphill"},
	Craters:     {name: "craters", required: 1, defaults: []float64{1, 1, 2}},
	Filter:      {name: "filter", defaults: []float64{-1, 0}},
	FFT:         {name: "fft", defaults: []float64{1, 1}},
	Polar:       {name: "polar"},
	Rect:        {name: "rect"},
	Magnitude:   {name: "magnitude"},
	Real:        {name: "real"},
	Swap:        {name: "swap"},
	Gradient:    {name: "gradient"},
	Integrate:   {name: "integrate"},
	Keep:        {name: "keep"},
	Composite:   {name: "composite", defaults: []float64{0, 0}},
	Join:        {name: "join", defaults: []float64{1}},
	Pair:        {name: "pair"},
	Warp:        {name: "warp", defaults: []float64{0.5, 0.5, 1}},
	ComplexWarp: {name: "cwarp", defaults: []float64{1}},
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kinds) {
		return kinds[k].name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Generates reports whether k creates a raster rather than transforming one.
func (k Kind) Generates() bool { return k <= Const }

// needsName reports whether k refers to a raster kept under Step.Name.
func (k Kind) needsName() bool { return k >= Keep }

// ParseKind resolves a step name. Names must match exactly, ignoring case.
func ParseKind(name string) (Kind, error) {
	for k, info := range kinds {
		if strings.EqualFold(info.name, strings.TrimSpace(name)) {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown recipe step %q", name)
}

// Kinds returns every step name in declaration order.
func Kinds() []string {
	out := make([]string, len(kinds))
	for i, info := range kinds {
		out[i] = info.name
	}
	return out
}
