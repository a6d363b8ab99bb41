package tone

import "image"

// Contrast scales every channel around mid-grey:
//
//	factor    = contrast/100 + 1
//	intercept = 128 * (1 - factor)
//	c'        = clamp(c*factor + intercept)
//
// A negative factor inverts tones. Only the output is clamped.
type Contrast struct {
	Amount float64
	lut    [256]uint8
}

// NewContrast precomputes the channel lookup table for amount.
func NewContrast(amount float64) *Contrast {
	c := &Contrast{Amount: amount}
	factor := amount/100 + 1
	intercept := 128 * (1 - factor)
	for v := range 256 {
		c.lut[v] = toByte(float64(v)*factor + intercept)
	}
	return c
}

// Mode implements Adjuster.
func (c *Contrast) Mode() Mode { return ModeContrast }

// Adjust implements Adjuster.
func (c *Contrast) Adjust(src *image.NRGBA) *image.NRGBA {
	return mapChannels(src, &c.lut)
}

// Channel returns the adjusted value of a single channel.
func (c *Contrast) Channel(v uint8) uint8 {
	return c.lut[v]
}
