package noise

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/ops"
	"github.com/MeKo-Tech/hflab/internal/session"
)

// 4-D simplex skew and unskew factors.
const (
	skew4   = 0.30901699437494745 // (√5-1)/4
	unskew4 = 0.1381966011250105  // (5-√5)/20
)

// grad4 holds the 32 edge midpoints of a 4-D hypercube.
var grad4 = func() [32][4]float64 {
	var g [32][4]float64
	n := 0
	for zero := 0; zero < 4; zero++ {
		for s := 0; s < 8; s++ {
			signs := [3]float64{1, 1, 1}
			for b := 0; b < 3; b++ {
				if s&(4>>b) != 0 {
					signs[b] = -1
				}
			}
			k := 0
			for axis := 0; axis < 4; axis++ {
				if axis == zero {
					continue
				}
				g[n][axis] = signs[k]
				k++
			}
			n++
		}
	}
	return g
}()

// simplex is a permutation-table 4-D simplex noise source.
type simplex struct {
	perm [512]uint8
}

// newSimplex shuffles the permutation table from the session stream.
func newSimplex(sess *session.Session) *simplex {
	var p [256]uint8
	for i := range p {
		p[i] = uint8(i)
	}
	for i := 255; i > 0; i-- {
		j := int(sess.Ran1() * float64(i+1))
		p[i], p[j] = p[j], p[i]
	}
	s := &simplex{}
	for i := range s.perm {
		s.perm[i] = p[i&255]
	}
	return s
}

func (s *simplex) hash(i [4]int) int {
	h := int(s.perm[i[3]&255])
	h = int(s.perm[(i[2]&255)+h])
	h = int(s.perm[(i[1]&255)+h])
	return int(s.perm[(i[0]&255)+h]) % 32
}

// at evaluates the noise at p; the result lies roughly in [-1, 1].
func (s *simplex) at(p [4]float64) float64 {
	t := (p[0] + p[1] + p[2] + p[3]) * skew4
	var cell [4]int
	sum := 0
	for a := range p {
		cell[a] = int(math.Floor(p[a] + t))
		sum += cell[a]
	}
	t0 := float64(sum) * unskew4
	var d [4]float64
	for a := range p {
		d[a] = p[a] - (float64(cell[a]) - t0)
	}

	// rank orders the axes by offset magnitude, which selects the simplex
	var rank [4]int
	for a := 0; a < 4; a++ {
		for b := a + 1; b < 4; b++ {
			if d[a] > d[b] {
				rank[a]++
			} else {
				rank[b]++
			}
		}
	}

	var n float64
	for corner := 0; corner <= 4; corner++ {
		var step [4]int
		var off [4]float64
		var r2 float64
		for a := 0; a < 4; a++ {
			if rank[a] >= 4-corner {
				step[a] = 1
			}
			off[a] = d[a] - float64(step[a]) + float64(corner)*unskew4
			r2 += off[a] * off[a]
		}
		fall := 0.6 - r2
		if fall <= 0 {
			continue
		}
		g := grad4[s.hash([4]int{cell[0] + step[0], cell[1] + step[1], cell[2] + step[2], cell[3] + step[3]})]
		fall *= fall
		n += fall * fall * (g[0]*off[0] + g[1]*off[1] + g[2]*off[2] + g[3]*off[3])
	}
	return 27 * n
}

// torus maps (u, v) in [0, 1) onto two circles of radius freq, so the noise
// wraps in both directions.
func (s *simplex) torus(u, v, freq float64) float64 {
	su, cu := math.Sincos(2 * math.Pi * u)
	sv, cv := math.Sincos(2 * math.Pi * v)
	return s.at([4]float64{cu * freq, su * freq, cv * freq, sv * freq})
}

// Octaves configures Seamless.
type Octaves struct {
	// Frequency of the first octave, in cycles across the raster.
	Frequency float64
	// Count is the number of octaves summed.
	Count int
	// Lacunarity multiplies the frequency between octaves.
	Lacunarity float64
	// Gain multiplies the amplitude between octaves.
	Gain float64
}

// DefaultOctaves is a four-octave fBm with the usual doubling.
var DefaultOctaves = Octaves{Frequency: 1.5, Count: 4, Lacunarity: 2, Gain: 0.5}

// Seamless builds a w×h fractal simplex field normalized to [0, 1] whose
// opposite edges join without a seam. The permutation table is drawn from the
// session stream.
func Seamless(sess *session.Session, w, h int, o Octaves) (*hfield.Field, error) {
	if o.Frequency <= 0 {
		return nil, fmt.Errorf("seamless: frequency %g must be positive: %w", o.Frequency, hfield.ErrParam)
	}
	if o.Count < 1 {
		return nil, fmt.Errorf("seamless: octaves %d must be at least 1: %w", o.Count, hfield.ErrParam)
	}
	f, err := hfield.New(w, h)
	if err != nil {
		return nil, fmt.Errorf("seamless: %w", err)
	}

	sess.InitGauss()
	s := newSimplex(sess)
	for y := 0; y < h; y++ {
		v := float64(y) / float64(h)
		for x := 0; x < w; x++ {
			u := float64(x) / float64(w)
			amp, freq, sum, norm := 0.5, o.Frequency, 0.0, 0.0
			for k := 0; k < o.Count; k++ {
				sum += amp * s.torus(u, v, freq)
				norm += amp
				amp *= o.Gain
				freq *= o.Lacunarity
			}
			f.Set(x, y, sum/norm)
		}
	}
	f.UpdateExtrema()
	sess.Logger().Debug("seamless noise generated", "width", w, "height", h, "octaves", o.Count)

	if f.IsConstant() {
		return f, nil
	}
	if _, err := ops.Normalize(f, 0, 1); err != nil {
		return nil, fmt.Errorf("seamless: %w", err)
	}
	return f, nil
}
