package erode

import (
	"fmt"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/ops"
	"github.com/MeKo-Tech/hflab/internal/session"
)

// summedBit marks a cell whose uphill area is final. The low nibble holds the
// direction toward the highest neighbour.
const summedBit = 0x10

// upflow computes, for every cell, the direction toward its highest neighbour
// (0 for a peak) and marks cells without inflowing neighbours as summed.
func upflow(f *hfield.Field, fl []uint8, p hfield.Policy) []uint8 {
	flag := make([]uint8, f.Len())
	w, h := f.Width, f.Height

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := f.Index(x, y)
			maxv := f.At(x, y)
			var fg uint8
			inflows := 0

			for i := 1; i < 9; i++ {
				if v := f.AtPolicy(p, x+xo[i], y+yo[i]); v > maxv {
					maxv = v
					fg = uint8(i)
				}
				xn, yn := x+xo[i], y+yo[i]
				if xn >= 0 && xn < w && yn >= 0 && yn < h && pointsBack(i, fl[f.Index(xn, yn)]) {
					inflows++
				}
			}
			if inflows == 0 {
				fg |= summedBit
			}
			// a "peak" that still receives flow through the boundary policy
			// is not treated as a source
			if fg == 0 {
				for i := 1; i < 9; i++ {
					if pointsBack(i, fl[f.Offset(p, x+xo[i], y+yo[i])]) {
						fg = 1
					}
				}
			}
			flag[idx] = fg
		}
	}
	return flag
}

// Drainage is the raw result of an uphill-area accumulation.
type Drainage struct {
	// Area holds the number of cells draining through each cell, counting
	// the cell itself. Cells that were never summed hold 0.
	Area *hfield.Field
	// Summed marks cells whose area is final.
	Summed []bool
	// Flow is the steepest-descent direction of every cell.
	Flow []uint8
	// Passes is the number of accumulation sweeps that added cells.
	Passes int
}

// Accumulate computes raw uphill areas. Peaks and cells without inflow start
// with area 1; interior cells are then summed once all their inflowing
// neighbours are. The outermost ring is never visited by the sweep, so border
// cells keep their seed value.
func Accumulate(sess *session.Session, f *hfield.Field) (*Drainage, error) {
	if f.IsComplex() {
		return nil, fmt.Errorf("accumulate: %w", hfield.ErrComplex)
	}
	p := sess.Policy(f)
	w, h := f.Width, f.Height

	area, err := hfield.New(w, h)
	if err != nil {
		return nil, fmt.Errorf("accumulate: %w", err)
	}
	fl := FlowField(f, p)
	flag := upflow(f, fl, p)

	for i, fg := range flag {
		if fg&summedBit != 0 {
			area.Re[i] = 1
		}
		if fg&0x0f == 0 {
			area.Re[i] = 1
			flag[i] |= summedBit
		}
	}

	d := &Drainage{Area: area, Flow: fl}
	for added := 1; added > 0; {
		added = 0
		for y := 1; y < h-1; y++ {
			for x := 1; x < w-1; x++ {
				idx := f.Index(x, y)
				if flag[idx]&summedBit != 0 {
					continue
				}
				ready := true
				for i := 1; i < 9 && ready; i++ {
					n := f.Index(x+xo[i], y+yo[i])
					if pointsBack(i, fl[n]) && flag[n]&summedBit == 0 {
						ready = false
					}
				}
				if !ready {
					continue
				}
				var sum float32 = 1
				for i := 1; i < 9; i++ {
					n := f.Index(x+xo[i], y+yo[i])
					if pointsBack(i, fl[n]) {
						sum += area.Re[n]
					}
				}
				area.Re[idx] = sum
				flag[idx] |= summedBit
				added++
			}
		}
		if added > 0 {
			d.Passes++
		}
	}

	d.Summed = make([]bool, len(flag))
	for i, fg := range flag {
		d.Summed[i] = fg&summedBit != 0
	}
	area.UpdateExtrema()
	sess.Logger().Debug("drainage accumulated", "passes", d.Passes, "max_area", area.Max)
	return d, nil
}

// UphillArea returns the square root of the drainage area of every cell,
// normalized to [0, 1]. A field with uniform drainage is returned without
// normalization.
func UphillArea(sess *session.Session, f *hfield.Field) (*hfield.Field, error) {
	d, err := Accumulate(sess, f)
	if err != nil {
		return nil, fmt.Errorf("uphill area: %w", err)
	}
	out := ops.Apply1(d.Area, ops.Pow(0.5))
	if out.IsConstant() {
		return out, nil
	}
	if _, err := ops.Normalize(out, 0, 1); err != nil {
		return nil, fmt.Errorf("uphill area: %w", err)
	}
	return out, nil
}
