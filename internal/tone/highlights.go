package tone

import "image"

// HighlightsShadows lifts each channel towards white in proportion to its
// headroom, then scales the result towards black:
//
//	c'  = c + (255 - c) * highlights/100
//	c'' = c' * shadows/100
//
// The two steps run without intermediate rounding. The final value is
// rounded and clamped to [0, 255] since shadows above 100 can overflow.
type HighlightsShadows struct {
	Highlights float64
	Shadows    float64
	lut        [256]uint8
}

// NewHighlightsShadows precomputes the channel lookup table.
func NewHighlightsShadows(highlights, shadows float64) *HighlightsShadows {
	hs := &HighlightsShadows{Highlights: highlights, Shadows: shadows}
	h := highlights / 100
	s := shadows / 100
	for v := range 256 {
		c := float64(v)
		lifted := c + (255-c)*h
		hs.lut[v] = toByte(lifted * s)
	}
	return hs
}

// Mode implements Adjuster.
func (hs *HighlightsShadows) Mode() Mode { return ModeHighlightsShadows }

// Adjust implements Adjuster.
func (hs *HighlightsShadows) Adjust(src *image.NRGBA) *image.NRGBA {
	return mapChannels(src, &hs.lut)
}

// Channel returns the adjusted value of a single channel.
func (hs *HighlightsShadows) Channel(v uint8) uint8 {
	return hs.lut[v]
}
