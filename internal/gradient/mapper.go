// Package gradient implements the two-stop gradient map: every pixel's luma
// picks a position between the gradient's low and high stops.
package gradient

import (
	"image"
	"math"

	"github.com/jmylchreest/duotone/internal/colour"
)

// Map returns a new buffer holding src recoloured with spec. Alpha is copied
// through unchanged and src is not modified.
func Map(src *image.NRGBA, spec colour.GradientSpec) *image.NRGBA {
	dst := &image.NRGBA{
		Pix:    make([]uint8, len(src.Pix)),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	copy(dst.Pix, src.Pix)
	Apply(dst, spec)
	return dst
}

// Apply recolours buf in place. It is meant for scratch buffers the caller
// owns exclusively.
func Apply(buf *image.NRGBA, spec colour.GradientSpec) {
	w, h := buf.Rect.Dx(), buf.Rect.Dy()
	for y := 0; y < h; y++ {
		row := buf.Pix[y*buf.Stride : y*buf.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			t := colour.Luma(float64(row[i]), float64(row[i+1]), float64(row[i+2])) / 255
			out := At(spec, t)
			row[i] = out.R
			row[i+1] = out.G
			row[i+2] = out.B
		}
	}
}

// MapColour maps a single colour through spec.
func MapColour(c colour.RGB, spec colour.GradientSpec) colour.RGB {
	return At(spec, colour.Luma(float64(c.R), float64(c.G), float64(c.B))/255)
}

// At returns the gradient colour at position t. t is clamped to [0, 1] so
// the result never leaves the segment between the two stops.
func At(spec colour.GradientSpec, t float64) colour.RGB {
	if t < 0 || math.IsNaN(t) {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return colour.RGB{
		R: lerp(spec.Low.R, spec.High.R, t),
		G: lerp(spec.Low.G, spec.High.G, t),
		B: lerp(spec.Low.B, spec.High.B, t),
	}
}

// lerp interpolates one channel, rounding half away from zero.
func lerp(lo, hi uint8, t float64) uint8 {
	v := math.Round(float64(lo)*(1-t) + float64(hi)*t)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
