// Package preview renders heightfields as grayscale images.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/disintegration/gift"
	"golang.org/x/image/draw"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
)

// reliefScale is the height of the tallest point in units of raster width.
const reliefScale = 0.25

// Gray16 maps the real plane linearly onto the full 16-bit range. A constant
// field renders black.
func Gray16(f *hfield.Field) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, f.Width, f.Height))
	if f.IsConstant() {
		return img
	}
	lo := float64(f.Min)
	span := f.Range()
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := (f.At(x, y) - lo) / span
			img.SetGray16(x, y, color.Gray16{Y: uint16(math.Round(clamp01(v) * 0xffff))})
		}
	}
	return img
}

// Hillshade renders Lambertian shaded relief lit from azimuth degrees
// (clockwise from the top of the image) at elevation degrees above the horizon.
func Hillshade(sess *session.Session, f *hfield.Field, azimuth, elevation float64) (*image.Gray, error) {
	if f.IsComplex() {
		return nil, fmt.Errorf("hillshade: %w", hfield.ErrComplex)
	}
	if elevation < 0 || elevation > 90 {
		return nil, fmt.Errorf("hillshade: elevation %g outside [0, 90]: %w", elevation, hfield.ErrParam)
	}

	az := azimuth * math.Pi / 180
	el := elevation * math.Pi / 180
	lx := math.Cos(el) * math.Sin(az)
	ly := -math.Cos(el) * math.Cos(az)
	lz := math.Sin(el)

	zscale := 0.0
	if !f.IsConstant() {
		zscale = reliefScale * float64(f.Width) / f.Range()
	}
	p := sess.Policy(f)

	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			dx := (f.AtPolicy(p, x+1, y) - f.AtPolicy(p, x-1, y)) / 2 * zscale
			dy := (f.AtPolicy(p, x, y+1) - f.AtPolicy(p, x, y-1)) / 2 * zscale
			shade := (-dx*lx - dy*ly + lz) / math.Sqrt(dx*dx+dy*dy+1)
			img.SetGray(x, y, color.Gray{Y: uint8(math.Round(clamp01(shade) * 255))})
		}
	}
	return img, nil
}

// Soften applies a Gaussian blur.
func Soften(img image.Image, sigma float32) *image.Gray16 {
	g := gift.New(gift.GaussianBlur(sigma))
	dst := image.NewGray16(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

// Resize scales img to w×h with Catmull-Rom interpolation.
func Resize(img image.Image, w, h int) (*image.Gray16, error) {
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("resize to %dx%d: %w", w, h, hfield.ErrSize)
	}
	dst := image.NewGray16(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}

// WritePNG encodes img to path, replacing any existing file.
func WritePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
