package spectral

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
)

func seeded(seed int64) *session.Session {
	cfg := session.DefaultConfig()
	cfg.Seed = seed
	cfg.SeedStale = false
	return session.New(cfg).WithClock(func() time.Time { return time.Unix(0, 0) })
}

func ramp(t *testing.T, w, h int) *hfield.Field {
	t.Helper()
	f, err := hfield.New(w, h)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(x, y, float64(x*x+3*y))
		}
	}
	f.UpdateExtrema()
	return f
}

func TestFFTRoundTrip(t *testing.T) {
	f := ramp(t, 8, 6).EnsureImag()
	want := append([]float32(nil), f.Re...)

	_, err := FFT(f, Forward, NoScale)
	require.NoError(t, err)
	_, err = FFT(f, Inverse, ByCount)
	require.NoError(t, err)

	assert.InDeltaSlice(t, want, f.Re, 1e-3)
	for _, v := range f.Im {
		assert.InDelta(t, 0, v, 1e-3)
	}
}

func TestFFTDCTerm(t *testing.T) {
	f, err := hfield.Const(4, 4, 2)
	require.NoError(t, err)
	f.EnsureImag()

	_, err = FFT(f, Forward, NoScale)
	require.NoError(t, err)
	assert.InDelta(t, 32, f.At(0, 0), 1e-4)
	assert.InDelta(t, 0, f.At(1, 2), 1e-4)

	g, _ := hfield.Const(4, 4, 2)
	g.EnsureImag()
	_, err = FFT(g, Forward, BySqrt)
	require.NoError(t, err)
	assert.InDelta(t, 8, g.At(0, 0), 1e-4)
}

func TestFFTRejectsReal(t *testing.T) {
	f, _ := hfield.New(4, 4)
	_, err := FFT(f, Forward, NoScale)
	assert.ErrorIs(t, err, hfield.ErrNotComplex)
}

func TestScaleDivisor(t *testing.T) {
	assert.Equal(t, 1.0, NoScale.divisor(64))
	assert.Equal(t, 64.0, ByCount.divisor(64))
	assert.Equal(t, 8.0, BySqrt.divisor(64))
	assert.Equal(t, 2.5, Scale(2.5).divisor(64))
}

func TestFillSpectrumStructure(t *testing.T) {
	f, err := FillSpectrum(seeded(7), 8, 8, 2)
	require.NoError(t, err)
	require.True(t, f.IsComplex())

	assert.Equal(t, 0.0, f.At(0, 0), "no DC energy")
	assert.Equal(t, 0.0, f.ImagAt(0, 0))
	assert.Equal(t, 0.0, f.ImagAt(4, 0))
	assert.Equal(t, 0.0, f.ImagAt(0, 4))
	assert.Equal(t, 0.0, f.ImagAt(4, 4))
	assert.NotEqual(t, 0.0, f.At(1, 1))
}

func TestForgeReproducible(t *testing.T) {
	a, err := Forge(seeded(42), 16, 2.2)
	require.NoError(t, err)
	b, err := Forge(seeded(42), 16, 2.2)
	require.NoError(t, err)

	assert.False(t, a.IsComplex())
	assert.Equal(t, a.Re, b.Re)
	assert.InDelta(t, 0, a.Min, 1e-6)
	assert.InDelta(t, 1, a.Max, 1e-6)

	c, err := Forge(seeded(43), 16, 2.2)
	require.NoError(t, err)
	assert.NotEqual(t, a.Re, c.Re)
}

func TestForgeParams(t *testing.T) {
	s := seeded(1)
	_, err := Forge(s, 2, 2)
	assert.ErrorIs(t, err, hfield.ErrParam)
	_, err = Forge(s, 16, -0.1)
	assert.ErrorIs(t, err, hfield.ErrParam)
	_, err = Forge(s, 16, 4.5)
	assert.ErrorIs(t, err, hfield.ErrParam)
}

func TestParseFilterKind(t *testing.T) {
	k, err := ParseFilterKind("HP")
	require.NoError(t, err)
	assert.Equal(t, HighPass, k)
	assert.Equal(t, "hp", k.String())

	_, err = ParseFilterKind("h")
	assert.Error(t, err)
}

func TestRealDefaults(t *testing.T) {
	tests := []struct {
		kind   FilterKind
		a1, a2 float64
		wc, wq float64
	}{
		{BandPass, -1, 0, 0.1, 4},
		{BandReject, -1, 0, 0, 50},
		{LowPass, -1, 0, 0.1, 1},
		{HighPass, -1, 0, 0.05, 1},
		{LowPass, 0.3, 2, 0.3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			c, q := RealDefaults(tt.kind, tt.a1, tt.a2)
			assert.Equal(t, tt.wc, c)
			assert.Equal(t, tt.wq, q)
		})
	}
}

func TestFilterRealOnConstant(t *testing.T) {
	f, err := hfield.Const(8, 8, 3)
	require.NoError(t, err)

	lp, err := FilterReal(f, -1, 0, LowPass)
	require.NoError(t, err)
	assert.False(t, lp.IsComplex())
	for _, v := range lp.Re {
		assert.InDelta(t, 3, v, 1e-4)
	}

	hp, err := FilterReal(f, -1, 0, HighPass)
	require.NoError(t, err)
	for _, v := range hp.Re {
		assert.InDelta(t, 0, v, 1e-4)
	}
	assert.Equal(t, float32(3), f.Re[0], "input untouched")
}

func TestLowPassSmooths(t *testing.T) {
	f, err := hfield.New(16, 16)
	require.NoError(t, err)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if (x+y)%2 == 0 {
				f.Set(x, y, 1)
			}
		}
	}
	f.UpdateExtrema()

	out, err := FilterReal(f, 0.1, 4, LowPass)
	require.NoError(t, err)
	assert.Less(t, out.Range(), f.Range()/2)
}

func TestFilterRequiresComplex(t *testing.T) {
	f, _ := hfield.New(4, 4)
	_, err := Filter(f, 0.1, 1, LowPass)
	assert.ErrorIs(t, err, hfield.ErrNotComplex)

	f.EnsureImag()
	_, err = Filter(f, 0.1, 1, FilterKind(7))
	assert.ErrorIs(t, err, hfield.ErrParam)
}
