package geom

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/hflab/internal/hfield"
)

// envelope computes the 1-D squared distance transform of in into out using
// the lower envelope of parabolas rooted at every sample.
func envelope(in, out []float64, v []int, z []float64) {
	n := len(in)
	k := 0
	v[0] = 0
	z[0], z[1] = math.Inf(-1), math.Inf(1)
	for q := 1; q < n; q++ {
		var s float64
		for {
			r := v[k]
			s = ((in[q] + float64(q*q)) - (in[r] + float64(r*r))) / float64(2*(q-r))
			// z[0] is -Inf, so the envelope never empties
			if s > z[k] {
				break
			}
			k--
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}
	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		out[q] = dq*dq + in[v[k]]
	}
}

// Distance returns the Euclidean distance, in cells, from every cell of f
// above level to the nearest cell at or below it. Cells at or below level are
// 0. A field with no cell at or below level has no shoreline and is rejected.
func Distance(f *hfield.Field, level float64) (*hfield.Field, error) {
	if f.IsComplex() {
		return nil, fmt.Errorf("distance: %w", hfield.ErrComplex)
	}
	w, h := f.Width, f.Height
	out, err := hfield.New(w, h)
	if err != nil {
		return nil, fmt.Errorf("distance: %w", err)
	}

	far := float64(w*w + h*h)
	d := make([]float64, f.Len())
	shore := false
	for i, v := range f.Re {
		if float64(v) <= level {
			shore = true
			continue
		}
		d[i] = far
	}
	if !shore {
		out.Release()
		return nil, fmt.Errorf("distance: no cell at or below %g: %w", level, hfield.ErrParam)
	}

	n := max(w, h)
	in, res := make([]float64, n), make([]float64, n)
	v, z := make([]int, n), make([]float64, n+1)

	for y := 0; y < h; y++ {
		row := d[y*w : (y+1)*w]
		envelope(row, res[:w], v, z)
		copy(row, res[:w])
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			in[y] = d[y*w+x]
		}
		envelope(in[:h], res[:h], v, z)
		for y := 0; y < h; y++ {
			out.Re[y*w+x] = float32(math.Sqrt(res[y]))
		}
	}
	out.UpdateExtrema()
	return out, nil
}
