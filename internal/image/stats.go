package image

import (
	"image"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/jmylchreest/duotone/internal/colour"
)

// LumaStats summarises the per-pixel luma of an image on the 0-255 scale.
type LumaStats struct {
	Pixels int     `json:"pixels"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// ComputeLumaStats computes luma statistics over every pixel of img. Alpha
// is ignored. An empty image yields the zero value.
func ComputeLumaStats(img *image.NRGBA) LumaStats {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return LumaStats{}
	}

	luma := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		row := img.Pix[off : off+w*4]
		for i := 0; i < len(row); i += 4 {
			luma = append(luma, colour.Luma(float64(row[i]), float64(row[i+1]), float64(row[i+2])))
		}
	}

	mean, std := stat.MeanStdDev(luma, nil)
	if len(luma) == 1 {
		std = 0
	}
	sort.Float64s(luma)

	return LumaStats{
		Pixels: len(luma),
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(luma),
		Max:    floats.Max(luma),
		Median: stat.Quantile(0.5, stat.Empirical, luma, nil),
	}
}
