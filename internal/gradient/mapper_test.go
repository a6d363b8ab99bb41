package gradient

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/jmylchreest/duotone/internal/colour"
)

func ember(t *testing.T) colour.GradientSpec {
	t.Helper()
	spec, err := colour.LookupPreset("ember")
	if err != nil {
		t.Fatalf("LookupPreset: %v", err)
	}
	return spec
}

func filled(c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := range 2 {
		for x := range 3 {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestMapBoundaries(t *testing.T) {
	spec := ember(t)

	tests := []struct {
		name string
		in   color.NRGBA
		want color.NRGBA
	}{
		{"black maps to low stop", color.NRGBA{0, 0, 0, 255}, color.NRGBA{53, 55, 69, 255}},
		{"white maps to high stop", color.NRGBA{255, 255, 255, 255}, color.NRGBA{252, 84, 103, 255}},
		{"transparent black keeps alpha", color.NRGBA{0, 0, 0, 0}, color.NRGBA{53, 55, 69, 0}},
		{"mid grey", color.NRGBA{128, 128, 128, 200}, color.NRGBA{153, 70, 86, 200}},
		{"pure red", color.NRGBA{255, 0, 0, 255}, color.NRGBA{113, 64, 79, 255}},
		{"green heavy", color.NRGBA{10, 200, 30, 7}, color.NRGBA{150, 69, 86, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Map(filled(tt.in), spec)
			if got := out.NRGBAAt(1, 1); got != tt.want {
				t.Errorf("Map(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapPreservesAlphaAndInput(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 7)
	}
	orig := append([]uint8(nil), src.Pix...)

	for _, spec := range colour.Presets() {
		t.Run(spec.Name, func(t *testing.T) {
			out := Map(src, spec)
			if !bytes.Equal(src.Pix, orig) {
				t.Fatal("Map modified its input")
			}
			for i := 3; i < len(out.Pix); i += 4 {
				if out.Pix[i] != src.Pix[i] {
					t.Fatalf("alpha differs at byte %d", i)
				}
			}
		})
	}
}

func TestMapDeterministic(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 13)
	}
	spec := ember(t)

	a := Map(src, spec)
	b := Map(src, spec)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("Map is not deterministic")
	}
}

func TestApplyInPlace(t *testing.T) {
	buf := filled(color.NRGBA{0, 0, 0, 255})
	Apply(buf, ember(t))
	if got := buf.NRGBAAt(0, 0); got != (color.NRGBA{53, 55, 69, 255}) {
		t.Errorf("Apply result = %v", got)
	}
}

func TestAtClampsPosition(t *testing.T) {
	spec := ember(t)

	if got := At(spec, -0.5); got != spec.Low {
		t.Errorf("At(-0.5) = %v, want low stop %v", got, spec.Low)
	}
	if got := At(spec, 1.7); got != spec.High {
		t.Errorf("At(1.7) = %v, want high stop %v", got, spec.High)
	}
	if got := At(spec, 0); got != spec.Low {
		t.Errorf("At(0) = %v, want %v", got, spec.Low)
	}
	if got := At(spec, 1); got != spec.High {
		t.Errorf("At(1) = %v, want %v", got, spec.High)
	}
}

func TestMapColour(t *testing.T) {
	spec, err := colour.LookupPreset("harbour")
	if err != nil {
		t.Fatal(err)
	}
	if got := MapColour(colour.RGB{}, spec); got != spec.Low {
		t.Errorf("MapColour(black) = %v, want %v", got, spec.Low)
	}
	if got := MapColour(colour.RGB{R: 255, G: 255, B: 255}, spec); got != spec.High {
		t.Errorf("MapColour(white) = %v, want %v", got, spec.High)
	}
}
