package tone

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"
)

// testBuffer returns a buffer holding every channel value 0-255 with a
// varying alpha.
func testBuffer() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := range 16 {
		for x := range 16 {
			v := uint8(y*16 + x)
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: 255 - v, B: v / 2, A: uint8(x * 17)})
		}
	}
	return img
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"none", ModeNone, false},
		{"", ModeNone, false},
		{"Contrast", ModeContrast, false},
		{"highlights-shadows", ModeHighlightsShadows, false},
		{"highlightsShadows", ModeHighlightsShadows, false},
		{"hs", ModeHighlightsShadows, false},
		{"gamma", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIdentityLaw(t *testing.T) {
	src := testBuffer()

	tests := []struct {
		name string
		mode Mode
	}{
		{"none", ModeNone},
		{"contrast zero", ModeContrast},
		{"highlights zero shadows hundred", ModeHighlightsShadows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj, err := New(tt.mode, DefaultParams())
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if !DefaultParams().IsNeutral(tt.mode) {
				t.Error("default params should be neutral")
			}

			out := adj.Adjust(src)
			if !bytes.Equal(out.Pix, src.Pix) {
				t.Error("neutral adjustment changed pixels")
			}
			if &out.Pix[0] == &src.Pix[0] {
				t.Error("Adjust must return a fresh buffer")
			}
		})
	}
}

func TestAdjustLeavesInputAndAlpha(t *testing.T) {
	src := testBuffer()
	orig := append([]uint8(nil), src.Pix...)

	adjusters := []Adjuster{
		NewContrast(75),
		NewContrast(-250),
		NewHighlightsShadows(40, 160),
	}

	for _, adj := range adjusters {
		t.Run(string(adj.Mode()), func(t *testing.T) {
			out := adj.Adjust(src)
			if !bytes.Equal(src.Pix, orig) {
				t.Fatal("input buffer was modified")
			}
			for i := 3; i < len(out.Pix); i += 4 {
				if out.Pix[i] != src.Pix[i] {
					t.Fatalf("alpha changed at byte %d: %d -> %d", i, src.Pix[i], out.Pix[i])
				}
			}
		})
	}
}

func TestContrast(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		in     uint8
		want   uint8
	}{
		{"max contrast clamps high", 100, 200, 255},
		{"max contrast clamps low", 100, 50, 0},
		{"max contrast mid", 100, 128, 128},
		{"max contrast near mid", 100, 130, 132},
		{"reduce contrast", -50, 0, 64},
		{"reduce contrast top", -50, 255, 192},
		{"flatten", -100, 17, 128},
		{"invert", -200, 0, 255},
		{"invert top", -200, 255, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContrast(tt.amount)
			if got := c.Channel(tt.in); got != tt.want {
				t.Errorf("contrast %g on %d = %d, want %d", tt.amount, tt.in, got, tt.want)
			}
		})
	}
}

func TestHighlightsShadows(t *testing.T) {
	tests := []struct {
		name       string
		highlights float64
		shadows    float64
		in         uint8
		want       uint8
	}{
		// 100 + 155*0.5 = 177.5, rounded half away from zero.
		{"half lift", 50, 100, 100, 178},
		{"full lift", 100, 100, 10, 255},
		{"darken", 0, 50, 200, 100},
		{"black stays black", 0, 200, 0, 0},
		{"overflow clamps", 0, 200, 200, 255},
		{"lift then darken", 50, 50, 0, 64},
		{"zero shadows", 80, 0, 123, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHighlightsShadows(tt.highlights, tt.shadows)
			if got := hs.Channel(tt.in); got != tt.want {
				t.Errorf("h=%g s=%g on %d = %d, want %d", tt.highlights, tt.shadows, tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		params  Params
		wantErr bool
	}{
		{"contrast unbounded", ModeContrast, Params{Contrast: -500}, false},
		{"highlights in range", ModeHighlightsShadows, Params{Highlights: 100, Shadows: 200}, false},
		{"highlights too high", ModeHighlightsShadows, Params{Highlights: 101, Shadows: 100}, true},
		{"shadows negative", ModeHighlightsShadows, Params{Highlights: 0, Shadows: -1}, true},
		{"shadows too high", ModeHighlightsShadows, Params{Highlights: 0, Shadows: 201}, true},
		{"ignored by none", ModeNone, Params{Highlights: 1000}, false},
		{"highlights NaN", ModeHighlightsShadows, Params{Highlights: math.NaN(), Shadows: 100}, true},
		{"shadows NaN", ModeHighlightsShadows, Params{Highlights: 0, Shadows: math.NaN()}, true},
		{"contrast NaN", ModeContrast, Params{Contrast: math.NaN()}, true},
		{"contrast infinite", ModeContrast, Params{Contrast: math.Inf(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.mode, tt.params)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%s, %+v) error = %v, wantErr %v", tt.mode, tt.params, err, tt.wantErr)
			}
		})
	}
}

func TestAdjustSubImage(t *testing.T) {
	parent := testBuffer()
	sub := parent.SubImage(image.Rect(4, 4, 8, 8)).(*image.NRGBA)

	out := NewContrast(100).Adjust(sub)
	if out.Bounds() != sub.Bounds() {
		t.Fatalf("bounds = %v, want %v", out.Bounds(), sub.Bounds())
	}
	for y := 4; y < 8; y++ {
		for x := 4; x < 8; x++ {
			in := sub.NRGBAAt(x, y)
			got := out.NRGBAAt(x, y)
			want := NewContrast(100).Channel(in.R)
			if got.R != want || got.A != in.A {
				t.Fatalf("pixel (%d,%d) = %v, want R=%d A=%d", x, y, got, want, in.A)
			}
		}
	}
}
