package hfield

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadSize(t *testing.T) {
	_, err := New(0, 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSize))

	_, err = NewComplex(3, -1)
	assert.ErrorIs(t, err, ErrSize)
}

func TestConstExtrema(t *testing.T) {
	f, err := Const(4, 4, 2.5)
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), f.Min)
	assert.Equal(t, float32(2.5), f.Max)
	assert.True(t, f.IsConstant())
	assert.False(t, f.IsComplex())
}

func TestExtremaBracketElements(t *testing.T) {
	re := []float32{3, -1, 7, 0.5, 2, 2}
	f, err := FromBuffer(3, 2, re, nil)
	require.NoError(t, err)

	assert.Equal(t, float32(-1), f.Min)
	assert.Equal(t, float32(7), f.Max)
	for _, v := range f.Re {
		assert.GreaterOrEqual(t, v, f.Min)
		assert.LessOrEqual(t, v, f.Max)
	}
	assert.False(t, f.IsConstant())

	re[0] = 100
	assert.Equal(t, float32(3), f.Re[0], "buffer must be copied")
}

func TestFromBufferComplex(t *testing.T) {
	f, err := FromBuffer(2, 1, []float32{1, 2}, []float32{-4, 9})
	require.NoError(t, err)
	require.True(t, f.IsComplex())

	lo, hi := f.ImagExtrema()
	assert.Equal(t, float32(-4), lo)
	assert.Equal(t, float32(9), hi)

	_, err = FromBuffer(2, 2, []float32{1, 2}, nil)
	assert.ErrorIs(t, err, ErrSize)
}

func TestRelease(t *testing.T) {
	f, err := NewComplex(2, 2)
	require.NoError(t, err)
	f.Release()
	assert.Nil(t, f.Re)
	assert.Nil(t, f.Im)

	var nilField *Field
	nilField.Release()
}

func TestDescribe(t *testing.T) {
	f, err := FromBuffer(2, 2, []float32{1, 1, 3, 3}, nil)
	require.NoError(t, err)

	s := f.Describe()
	assert.InDelta(t, 2.0, s.Mean, 1e-9)
	assert.InDelta(t, 1.0, s.StdDev, 1e-9)
}

func TestWrapAddressing(t *testing.T) {
	f, err := FromBuffer(3, 2, []float32{0, 1, 2, 3, 4, 5}, nil)
	require.NoError(t, err)

	for y := -4; y < 6; y++ {
		for x := -7; x < 7; x++ {
			for _, k := range []int{-2, -1, 1, 3} {
				assert.Equal(t, f.AtWrap(x, y), f.AtWrap(x+k*f.Width, y))
				assert.Equal(t, f.AtWrap(x, y), f.AtWrap(x, y+k*f.Height))
			}
		}
	}
	assert.Equal(t, 2.0, f.AtWrap(-1, 0))
	assert.Equal(t, 3.0, f.AtWrap(0, -1))
}

func TestClampAddressing(t *testing.T) {
	f, err := FromBuffer(3, 2, []float32{0, 1, 2, 3, 4, 5}, nil)
	require.NoError(t, err)

	for y := 0; y < f.Height; y++ {
		assert.Equal(t, f.AtClamp(0, y), f.AtClamp(-1, y))
		assert.Equal(t, f.AtClamp(f.Width-1, y), f.AtClamp(f.Width, y))
	}
	assert.Equal(t, 5.0, f.AtClamp(10, 10))
	assert.Equal(t, 0.0, f.AtClamp(-10, -10))
}

func TestMeasureTiling(t *testing.T) {
	t.Run("constant field tiles", func(t *testing.T) {
		f, err := Const(8, 8, 1)
		require.NoError(t, err)
		r := MeasureTiling(f, 0.01)
		assert.True(t, r.Tilable)
		assert.Zero(t, r.XDiff)
		assert.Zero(t, r.YDiff)
	})

	t.Run("ramp does not tile", func(t *testing.T) {
		f, err := New(8, 8)
		require.NoError(t, err)
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				f.Set(x, y, float64(x))
			}
		}
		f.UpdateExtrema()

		r := MeasureTiling(f, 0.01)
		assert.False(t, r.Tilable)
		// seam jump 7, inner step 1, range 7
		assert.InDelta(t, 6.0/7.0, r.YDiff, 1e-9)
		assert.Zero(t, r.XDiff)
	})
}
