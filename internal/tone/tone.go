// Package tone implements the brightness adjustments applied to an image
// before it is gradient mapped.
//
// Every Adjuster returns a new buffer and leaves its input untouched. Only
// the R, G and B channels are rewritten; alpha is copied through.
package tone

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// Mode selects which adjustment variant is active.
type Mode string

const (
	// ModeNone passes pixels through unchanged.
	ModeNone Mode = "none"
	// ModeContrast scales channels around mid-grey.
	ModeContrast Mode = "contrast"
	// ModeHighlightsShadows lifts towards white, then scales towards black.
	ModeHighlightsShadows Mode = "highlights-shadows"
)

// Modes returns every supported mode in display order.
func Modes() []Mode {
	return []Mode{ModeNone, ModeContrast, ModeHighlightsShadows}
}

// ParseMode parses a mode name. "hs" and "highlightsShadows" are accepted as
// aliases of highlights-shadows.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return ModeNone, nil
	case "contrast":
		return ModeContrast, nil
	case "highlights-shadows", "highlightsshadows", "hs":
		return ModeHighlightsShadows, nil
	default:
		return "", fmt.Errorf("invalid tone mode: %s (valid: none, contrast, highlights-shadows)", s)
	}
}

// Slider bounds.
const (
	HighlightsMin = 0.0
	HighlightsMax = 100.0
	ShadowsMin    = 0.0
	ShadowsMax    = 200.0
)

// Params holds the slider values. Which fields are read depends on the Mode.
type Params struct {
	// Contrast in percent. 0 is neutral; values below -100 invert tones.
	Contrast float64 `json:"contrast"`
	// Highlights in percent, 0 (neutral) to 100.
	Highlights float64 `json:"highlights"`
	// Shadows in percent, 0 to 200. 100 is neutral.
	Shadows float64 `json:"shadows"`
}

// DefaultParams returns the neutral slider positions.
func DefaultParams() Params {
	return Params{Contrast: 0, Highlights: 0, Shadows: 100}
}

// IsNeutral reports whether p leaves pixels unchanged under mode.
func (p Params) IsNeutral(mode Mode) bool {
	switch mode {
	case ModeContrast:
		return p.Contrast == 0
	case ModeHighlightsShadows:
		return p.Highlights == 0 && p.Shadows == 100
	default:
		return true
	}
}

// Validate checks the sliders used by mode. Contrast is deliberately
// unbounded; out-of-range output is clamped per channel instead.
func (p Params) Validate(mode Mode) error {
	if mode != ModeHighlightsShadows {
		if math.IsNaN(p.Contrast) || math.IsInf(p.Contrast, 0) {
			return fmt.Errorf("contrast must be a finite number")
		}
		return nil
	}
	if math.IsNaN(p.Highlights) || p.Highlights < HighlightsMin || p.Highlights > HighlightsMax {
		return fmt.Errorf("highlights must be between %g and %g, got %g", HighlightsMin, HighlightsMax, p.Highlights)
	}
	if math.IsNaN(p.Shadows) || p.Shadows < ShadowsMin || p.Shadows > ShadowsMax {
		return fmt.Errorf("shadows must be between %g and %g, got %g", ShadowsMin, ShadowsMax, p.Shadows)
	}
	return nil
}

// Adjuster applies one tone variant to a pixel buffer.
type Adjuster interface {
	// Mode returns the variant implemented.
	Mode() Mode
	// Adjust returns a new buffer; src is never modified.
	Adjust(src *image.NRGBA) *image.NRGBA
}

// New builds the Adjuster for mode with the given sliders.
func New(mode Mode, p Params) (Adjuster, error) {
	if err := p.Validate(mode); err != nil {
		return nil, err
	}
	switch mode {
	case ModeNone, "":
		return Identity{}, nil
	case ModeContrast:
		return NewContrast(p.Contrast), nil
	case ModeHighlightsShadows:
		return NewHighlightsShadows(p.Highlights, p.Shadows), nil
	default:
		return nil, fmt.Errorf("unsupported tone mode: %s", mode)
	}
}

// Identity is the no-op variant.
type Identity struct{}

// Mode implements Adjuster.
func (Identity) Mode() Mode { return ModeNone }

// Adjust implements Adjuster. It still returns a copy so callers can treat
// the result as scratch.
func (Identity) Adjust(src *image.NRGBA) *image.NRGBA {
	return mapChannels(src, nil)
}

// mapChannels copies src into a new buffer, passing R, G and B through lut
// when it is non-nil.
func mapChannels(src *image.NRGBA, lut *[256]uint8) *image.NRGBA {
	dst := &image.NRGBA{
		Pix:    make([]uint8, len(src.Pix)),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	copy(dst.Pix, src.Pix)
	if lut == nil {
		return dst
	}

	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			row[i] = lut[row[i]]
			row[i+1] = lut[row[i+1]]
			row[i+2] = lut[row[i+2]]
		}
	}
	return dst
}

// toByte rounds half away from zero and clamps to [0, 255].
func toByte(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
