package encode

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
)

// StdEncoder encodes in process with image/png and image/jpeg.
type StdEncoder struct {
	// Compression is the PNG compression level.
	Compression png.CompressionLevel
}

// NewStdEncoder returns an encoder using the default PNG compression.
func NewStdEncoder() *StdEncoder {
	return &StdEncoder{Compression: png.DefaultCompression}
}

// Encode implements Encoder.
func (e *StdEncoder) Encode(ctx context.Context, img image.Image, format Format, quality float64) (*Encoded, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case PNG:
		enc := png.Encoder{CompressionLevel: e.Compression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, &EncodeError{Format: format, Quality: quality, Err: err}
		}
		quality = 1
	case JPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality(quality)}); err != nil {
			return nil, &EncodeError{Format: format, Quality: quality, Err: err}
		}
	default:
		return nil, &EncodeError{Format: format, Quality: quality, Err: fmt.Errorf("unsupported format %q", format)}
	}

	return &Encoded{
		Data:    buf.Bytes(),
		Format:  format,
		Quality: quality,
	}, nil
}
