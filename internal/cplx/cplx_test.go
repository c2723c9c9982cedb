package cplx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
)

func real2x2(t *testing.T, vals ...float32) *hfield.Field {
	t.Helper()
	f, err := hfield.FromBuffer(2, 2, vals, nil)
	require.NoError(t, err)
	return f
}

func TestJoinSplitRoundTrip(t *testing.T) {
	re := real2x2(t, 1, 2, 3, 4)
	im := real2x2(t, -1, -2, -3, -4)

	c, err := Join(re, im)
	require.NoError(t, err)
	require.True(t, c.IsComplex())
	assert.Equal(t, float32(1), c.Min)
	assert.Equal(t, float32(4), c.Max)

	r2, i2, err := Split(c)
	require.NoError(t, err)
	assert.Equal(t, re.Re, r2.Re)
	assert.Equal(t, im.Re, i2.Re)
	assert.Equal(t, float32(-4), i2.Min)
}

func TestJoinSizeMismatch(t *testing.T) {
	a := real2x2(t, 1, 2, 3, 4)
	b, err := hfield.Zero(3, 2)
	require.NoError(t, err)
	_, err = Join(a, b)
	assert.ErrorIs(t, err, hfield.ErrSize)
}

func TestSplitRejectsReal(t *testing.T) {
	_, _, err := Split(real2x2(t, 1, 2, 3, 4))
	assert.ErrorIs(t, err, hfield.ErrNotComplex)
}

func TestSwap(t *testing.T) {
	r := real2x2(t, 1, 2, 3, 4)
	c, err := Swap(r)
	require.NoError(t, err)
	assert.NotSame(t, r, c)
	assert.Equal(t, []float32{0, 0, 0, 0}, c.Re)
	assert.Equal(t, []float32{1, 2, 3, 4}, c.Im)
	assert.True(t, c.IsConstant())

	same, err := Swap(c)
	require.NoError(t, err)
	assert.Same(t, c, same)
	assert.Equal(t, []float32{1, 2, 3, 4}, same.Re)
	assert.Equal(t, float32(4), same.Max)
}

func TestPolarRoundTrip(t *testing.T) {
	c, err := hfield.FromBuffer(2, 2, []float32{3, 0, -1, 0}, []float32{4, 2, 0, 0})
	require.NoError(t, err)

	_, err = ToPolar(c)
	require.NoError(t, err)
	assert.InDelta(t, 5, c.At(0, 0), 1e-6)
	assert.InDelta(t, math.Pi/2, c.ImagAt(1, 0), 1e-6)
	assert.InDelta(t, math.Pi, c.ImagAt(0, 1), 1e-6)
	assert.Equal(t, 0.0, c.ImagAt(1, 1), "zero-safe atan2")

	_, err = ToRect(c)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{3, 0, -1, 0}, c.Re, 1e-5)
	assert.InDeltaSlice(t, []float32{4, 2, 0, 0}, c.Im, 1e-5)

	_, err = ToPolar(real2x2(t, 1, 1, 1, 1))
	assert.ErrorIs(t, err, hfield.ErrNotComplex)
}

func TestMagnitude(t *testing.T) {
	c, err := hfield.FromBuffer(1, 2, []float32{3, 5}, []float32{4, 12})
	require.NoError(t, err)
	m, err := Magnitude(c)
	require.NoError(t, err)
	assert.False(t, m.IsComplex())
	assert.Equal(t, []float32{5, 13}, m.Re)

	_, err = Magnitude(m)
	assert.ErrorIs(t, err, hfield.ErrNotComplex)
}

func TestRealTruncates(t *testing.T) {
	c, err := hfield.NewComplex(2, 2)
	require.NoError(t, err)
	Real(c)
	assert.False(t, c.IsComplex())
	assert.Len(t, c.Re, 4)
}

func TestGradientIntegrate(t *testing.T) {
	s := session.Default()
	s.SetTileMode(session.TileOff)

	f, err := hfield.New(4, 3)
	require.NoError(t, err)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			f.Set(x, y, float64(2*x+y))
		}
	}
	f.UpdateExtrema()

	g, err := Gradient(s, f)
	require.NoError(t, err)
	assert.Equal(t, 0.0, g.At(0, 1), "clamped left edge")
	assert.Equal(t, 2.0, g.At(2, 1))
	assert.Equal(t, 1.0, g.ImagAt(2, 1))

	back, err := Integrate(g)
	require.NoError(t, err)
	// a plane is reconstructed exactly up to the corner offset
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			assert.InDelta(t, f.At(x, y)-f.At(0, 0), back.At(x, y), 1e-5)
		}
	}
}
