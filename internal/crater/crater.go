// Package crater stamps impact craters onto a heightfield.
package crater

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
)

const (
	coverage = 0.15
	squeeze  = 1.3
	depth    = 0.85
	wall     = 50.0

	// rejection sampling gives up after this many misses per wanted sample
	maxMissFactor = 1000
)

var (
	alpha = 35.25 / 180 * math.Pi
	rimB  = math.Sin(alpha)
	rimD  = depth - math.Cos(alpha)
)

// profile is the crater elevation at squared normalized radius nsq: a sphere
// segment inside the cutoff angle and a Gaussian rim outside it.
func profile(nsq float64) float64 {
	r := math.Sqrt(math.Abs(nsq))
	if r > rimB {
		return rimD * math.Exp(-wall*(r-rimB)*(r-rimB))
	}
	return depth - math.Sqrt(1-nsq)
}

// dissolve is the weight given to the existing surface at squared normalized
// radius nsq. It is low in the bowl and rises toward one beyond the rim.
func dissolve(nsq float64) float64 {
	r := math.Sqrt(nsq)
	if nsq > 0.6*0.6 {
		return 1 - 0.9*math.Exp(-30*(r-0.6)*(r-0.6))
	}
	return 0.1 * math.Exp(-25*(r-0.6)*(r-0.6))
}

// Params controls a stamping run.
type Params struct {
	// Count is the number of craters.
	Count int
	// HeightScale scales crater depth and rim height.
	HeightScale float64
	// RadiusScale scales crater radii relative to the raster size.
	RadiusScale float64
	// Distribution sharpens the power-law size distribution; must be >= 1.
	Distribution float64
}

// sizeFor maps a uniform sample u to a crater radius in cells. A single
// crater always gets the largest size.
func (p Params) sizeFor(u float64, mesh int) int {
	b2 := 1 / math.Pow(p.Distribution, 4)
	b3 := 1 / p.Distribution
	c := u + b3
	d2 := b2 / (c * c * c * c)
	if p.Count == 1 {
		d2 = 1
	}
	return 3 + int(d2*coverage*float64(mesh)*p.RadiusScale)
}

// verticalScale is the empirical crater height factor for a given radius.
func (p Params) verticalScale(size, mesh int) float64 {
	m := float64(mesh)
	return p.HeightScale * math.Pow(float64(size)/(3+coverage*m), 0.9) /
		256 * math.Pow(m/256, 0.1) / coverage * 80
}

type stamper struct {
	f, pure *hfield.Field
	wrap    bool
}

// locate resolves a cell relative to the crater centre, reporting false when
// it falls off a non-wrapping raster.
func (s *stamper) locate(x, y int) (int, bool) {
	w, h := s.f.Width, s.f.Height
	if !s.wrap && (x < 0 || x >= w || y < 0 || y >= h) {
		return 0, false
	}
	return s.f.Offset(hfield.Wrap, x, y), true
}

// meanLevels samples the current and the pre-crater surface inside a circle
// of radius size around (cx, cy).
func (s *stamper) meanLevels(sess *session.Session, cx, cy, size int) (with, pure float64) {
	want := max(size*size/5, 1)
	got := 0
	for misses := 0; got < want && misses < want*maxMissFactor; {
		i := int(sess.Ran1()*float64(2*size) - float64(size))
		j := int(sess.Ran1()*float64(2*size) - float64(size))
		if i*i+j*j > size*size {
			misses++
			continue
		}
		idx, ok := s.locate(cx+i, cy+j)
		if !ok {
			misses++
			continue
		}
		with += float64(s.f.Re[idx])
		pure += float64(s.pure.Re[idx])
		got++
	}
	if got == 0 {
		return 0, 0
	}
	return with / float64(got), pure / float64(got)
}

// shift blends the crater profile into the cell at (x, y).
func (s *stamper) shift(x, y int, shift, weight, with, pure float64) {
	idx, ok := s.locate(x, y)
	if !ok {
		return
	}
	cur := float64(s.f.Re[idx])
	base := with + (float64(s.pure.Re[idx])-pure)/squeeze
	s.f.Re[idx] = float32(shift + cur*weight + base*(1-weight))
}

// Stamp adds p.Count craters to f in place. Craters are placed uniformly at
// random and overlapping craters compose against the current surface.
func Stamp(sess *session.Session, f *hfield.Field, p Params) (*hfield.Field, error) {
	if f.IsComplex() {
		return nil, fmt.Errorf("crater: %w", hfield.ErrComplex)
	}
	if p.Distribution < 1 {
		return nil, fmt.Errorf("crater: distribution factor %g must be >= 1: %w", p.Distribution, hfield.ErrParam)
	}
	if p.Count < 0 {
		return nil, fmt.Errorf("crater: negative count %d: %w", p.Count, hfield.ErrParam)
	}

	s := &stamper{f: f, pure: f.Clone(), wrap: sess.Tilable(f)}
	defer s.pure.Release()

	sess.InitGauss()
	w, h := f.Width, f.Height
	mesh := int(math.Sqrt(float64(w * h)))

	for k := 0; k < p.Count; k++ {
		size := p.sizeFor(sess.Ran1(), mesh)
		cx := int(sess.Ran1() * float64(w))
		cy := int(sess.Ran1() * float64(h))
		vscale := p.verticalScale(size, mesh)
		with, pure := s.meanLevels(sess, cx, cy, size)

		// one octant, mirrored: axes and diagonals have fourfold symmetry,
		// everything else eightfold
		four := func(i, j int, sh, wt float64) {
			s.shift(cx+i, cy+j, sh, wt, with, pure)
			s.shift(cx-j, cy+i, sh, wt, with, pure)
			s.shift(cx-i, cy-j, sh, wt, with, pure)
			s.shift(cx+j, cy-i, sh, wt, with, pure)
		}
		for i := size; i > 0; i-- {
			for j := i; j >= 0; j-- {
				nsq := float64(i*i+j*j) / float64(size*size)
				if nsq > 1 {
					continue
				}
				sh := vscale * profile(nsq)
				wt := dissolve(nsq)
				four(i, j, sh, wt)
				if i != j && j != 0 {
					four(j, i, sh, wt)
				}
			}
		}
		s.shift(cx, cy, vscale*profile(0), dissolve(0), with, pure)

		sess.Logger().Debug("crater stamped", "n", k+1, "x", cx, "y", cy, "radius", size)
	}

	f.UpdateExtrema()
	return f, nil
}
