package crater

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
)

func seeded(seed int64) *session.Session {
	s := session.Default()
	s.SetTileMode(session.TileOff)
	s.SetSeed(seed)
	return s
}

func TestProfileShape(t *testing.T) {
	assert.InDelta(t, depth-1, profile(0), 1e-12, "bowl floor")
	assert.Greater(t, profile(rimB*rimB+1e-3), 0.0, "rim rises above datum")
	assert.InDelta(t, rimD, profile(rimB*rimB), 1e-3)
	assert.Less(t, profile(1), profile(rimB*rimB))

	assert.Less(t, dissolve(0), 0.01)
	assert.Greater(t, dissolve(1), dissolve(0.5))
	assert.InDelta(t, 0.1, dissolve(0.36), 1e-9)
}

func TestSingleCraterUsesLargestSize(t *testing.T) {
	p := Params{Count: 1, RadiusScale: 1, Distribution: 2}
	assert.Equal(t, 3+int(coverage*64), p.sizeFor(0, 64))
	assert.Equal(t, 3+int(coverage*64), p.sizeFor(0.99, 64))

	p.Count = 10
	assert.Greater(t, p.sizeFor(0, 64), p.sizeFor(0.99, 64), "small draws give big craters")
	assert.GreaterOrEqual(t, p.sizeFor(0.99, 64), 3)
}

func TestStampDigsBowl(t *testing.T) {
	f, err := hfield.Const(64, 64, 0.5)
	require.NoError(t, err)

	out, err := Stamp(seeded(11), f, Params{Count: 1, HeightScale: 1, RadiusScale: 1, Distribution: 2})
	require.NoError(t, err)
	assert.Same(t, f, out)
	assert.Less(t, float64(out.Min), 0.5)
	assert.Greater(t, float64(out.Max), 0.5)

	lo, hi := out.Re[0], out.Re[0]
	for _, v := range out.Re {
		lo, hi = min(lo, v), max(hi, v)
	}
	assert.Equal(t, lo, out.Min)
	assert.Equal(t, hi, out.Max)
}

func TestStampReproducible(t *testing.T) {
	run := func() []float32 {
		f, _ := hfield.Const(48, 48, 0)
		_, err := Stamp(seeded(5), f, Params{Count: 20, HeightScale: 1, RadiusScale: 1, Distribution: 1.5})
		require.NoError(t, err)
		return f.Re
	}
	assert.Equal(t, run(), run())
}

func TestStampZeroCountIsNoop(t *testing.T) {
	f, _ := hfield.Const(8, 8, 3)
	_, err := Stamp(seeded(1), f, Params{Distribution: 1})
	require.NoError(t, err)
	assert.True(t, f.IsConstant())
}

func TestStampErrors(t *testing.T) {
	f, _ := hfield.Const(8, 8, 0)
	_, err := Stamp(seeded(1), f, Params{Count: 1, Distribution: 0.5})
	assert.ErrorIs(t, err, hfield.ErrParam)

	_, err = Stamp(seeded(1), f, Params{Count: -1, Distribution: 1})
	assert.ErrorIs(t, err, hfield.ErrParam)

	c, _ := hfield.NewComplex(8, 8)
	_, err = Stamp(seeded(1), c, Params{Count: 1, Distribution: 1})
	assert.ErrorIs(t, err, hfield.ErrComplex)
}
