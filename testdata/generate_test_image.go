// Test image generator for checking gradient maps by eye.
//
// The top half is a horizontal luma ramp from black to white, so the mapped
// result should be a smooth blend from the preset's low stop to its high
// stop. The bottom half holds primary and secondary colour blocks, which
// map to distinct positions on the gradient according to their luma.
//
// Run from the repository root:
//
//	go run ./testdata/generate_test_image.go
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

func main() {
	const (
		width  = 512
		height = 256
	)
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	// Luma ramp.
	for x := 0; x < width; x++ {
		v := uint8(x * 255 / (width - 1))
		for y := 0; y < height/2; y++ {
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}

	// Colour blocks, ordered by increasing luma.
	blocks := []color.NRGBA{
		{R: 0, G: 0, B: 255, A: 255},     // Blue
		{R: 255, G: 0, B: 0, A: 255},     // Red
		{R: 255, G: 0, B: 255, A: 255},   // Magenta
		{R: 0, G: 255, B: 0, A: 255},     // Green
		{R: 0, G: 255, B: 255, A: 255},   // Cyan
		{R: 255, G: 255, B: 0, A: 255},   // Yellow
		{R: 255, G: 128, B: 0, A: 128},   // Orange, half transparent
		{R: 128, G: 128, B: 128, A: 255}, // Gray
	}
	blockWidth := width / len(blocks)
	for i, c := range blocks {
		for y := height / 2; y < height; y++ {
			for x := i * blockWidth; x < (i+1)*blockWidth; x++ {
				img.SetNRGBA(x, y, c)
			}
		}
	}

	file, err := os.Create("testdata/sample.png")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("Test image created: testdata/sample.png")
}
