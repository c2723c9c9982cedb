// Package noise generates random, Perlin and seamless simplex heightfields.
package noise

import (
	"fmt"

	"github.com/aquilax/go-perlin"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/ops"
	"github.com/MeKo-Tech/hflab/internal/session"
)

// Perlin persistence and lacunarity.
const (
	persistence = 2.0
	lacunarity  = 2.0
)

// Random fills a new w×h field with independent samples from the session's
// configured distribution.
func Random(sess *session.Session, w, h int) (*hfield.Field, error) {
	f, err := hfield.New(w, h)
	if err != nil {
		return nil, fmt.Errorf("random: %w", err)
	}
	sess.InitGauss()
	for i := range f.Re {
		f.Re[i] = float32(sess.Sample())
	}
	f.UpdateExtrema()
	return f, nil
}

// Perlin builds a w×h field of octave Perlin noise normalized to [0, 1].
// scale is the feature size in cells. The noise seed is drawn from the session
// stream, so a fixed session seed gives a fixed field.
func Perlin(sess *session.Session, w, h int, scale float64, octaves int) (*hfield.Field, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("perlin: scale %g must be positive: %w", scale, hfield.ErrParam)
	}
	if octaves < 1 {
		return nil, fmt.Errorf("perlin: octaves %d must be at least 1: %w", octaves, hfield.ErrParam)
	}
	f, err := hfield.New(w, h)
	if err != nil {
		return nil, fmt.Errorf("perlin: %w", err)
	}

	sess.InitGauss()
	seed := int64(sess.Ran1() * (1 << 31))
	p := perlin.NewPerlin(persistence, lacunarity, int32(octaves), seed)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(x, y, p.Noise2D(float64(x)/scale, float64(y)/scale))
		}
	}
	f.UpdateExtrema()
	sess.Logger().Debug("perlin noise generated", "width", w, "height", h, "seed", seed, "octaves", octaves)

	if f.IsConstant() {
		return f, nil
	}
	if _, err := ops.Normalize(f, 0, 1); err != nil {
		return nil, fmt.Errorf("perlin: %w", err)
	}
	return f, nil
}
