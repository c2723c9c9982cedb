package erode

import (
	"fmt"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
)

// FillPass writes one basin-filling pass from src into dst: every depression
// is replaced by the mean of its eight neighbours, every other cell is copied.
// It returns the number of cells whose value changed.
func FillPass(dst, src *hfield.Field, p hfield.Policy) int {
	changed := 0
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			v := src.At(x, y)
			if IsDepression(src, p, x, y) {
				var sum float64
				for i := 1; i < 9; i++ {
					sum += src.AtPolicy(p, x+xo[i], y+yo[i])
				}
				avg := float32(sum / 8)
				if avg != float32(v) {
					changed++
				}
				dst.Set(x, y, float64(avg))
				continue
			}
			dst.Set(x, y, v)
		}
	}
	return changed
}

// FillBasins raises depressions of f in place until a double pass changes
// nothing or maxIter double passes have run.
func FillBasins(sess *session.Session, f *hfield.Field, maxIter int) (*hfield.Field, error) {
	if f.IsComplex() {
		return nil, fmt.Errorf("fill basins: %w", hfield.ErrComplex)
	}
	p := sess.Policy(f)

	scratch, err := hfield.New(f.Width, f.Height)
	if err != nil {
		return nil, fmt.Errorf("fill basins: %w", err)
	}
	defer scratch.Release()

	iter := 0
	for ; iter < maxIter; iter++ {
		FillPass(scratch, f, p)
		if FillPass(f, scratch, p) == 0 {
			break
		}
	}
	sess.Logger().Debug("basins filled", "iterations", iter, "policy", p)

	f.UpdateExtrema()
	return f, nil
}
