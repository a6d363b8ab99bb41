package colour

// Luma weights. A simplified, non gamma-corrected approximation of
// perceived brightness.
const (
	LumaRed   = 0.3
	LumaGreen = 0.59
	LumaBlue  = 0.11
)

// Luma returns the weighted brightness of an RGB triple on the 0-255 scale.
// The result is neither rounded nor clamped.
func Luma(r, g, b float64) float64 {
	return LumaRed*r + LumaGreen*g + LumaBlue*b
}

// Luma returns the brightness of the colour normalised to [0, 1].
func (rgb RGB) Luma() float64 {
	return Luma(float64(rgb.R), float64(rgb.G), float64(rgb.B)) / 255.0
}
