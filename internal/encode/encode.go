// Package encode turns pixel buffers into PNG or JPEG bytes, either in
// process or through an external encoder plugin.
package encode

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"
)

// Format selects the output encoding.
type Format string

const (
	// PNG is lossless and ignores quality.
	PNG Format = "png"
	// JPEG is lossy and honours quality.
	JPEG Format = "jpeg"
)

// ParseFormat parses a format name; "jpg" is accepted for JPEG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (supported: png, jpeg)", s)
	}
}

// Extension returns the file extension, including the dot.
func (f Format) Extension() string {
	if f == JPEG {
		return ".jpg"
	}
	return ".png"
}

// Lossy reports whether quality affects the output.
func (f Format) Lossy() bool {
	return f == JPEG
}

// DefaultQuality is the JPEG quality used when none is given.
const DefaultQuality = 0.92

// Encoded is the output of an encoder.
type Encoded struct {
	Data    []byte
	Format  Format
	Quality float64
}

// Len returns the encoded size in bytes.
func (e *Encoded) Len() int64 {
	if e == nil {
		return 0
	}
	return int64(len(e.Data))
}

// Encoder encodes a pixel buffer. quality is in [0, 1] and ignored for
// lossless formats.
type Encoder interface {
	Encode(ctx context.Context, img image.Image, format Format, quality float64) (*Encoded, error)
}

// EncodeError reports a failed encode. It is never fatal: the caller may
// retry with the same or an adjacent quality.
type EncodeError struct {
	Format  Format
	Quality float64
	Err     error
}

// Error implements the error interface.
func (e *EncodeError) Error() string {
	if e.Format.Lossy() {
		return fmt.Sprintf("failed to encode %s at quality %.2f: %v", e.Format, e.Quality, e.Err)
	}
	return fmt.Sprintf("failed to encode %s: %v", e.Format, e.Err)
}

// Unwrap returns the underlying error.
func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Retryable reports that the failure may succeed on another attempt.
func (e *EncodeError) Retryable() bool {
	return true
}

// JPEGQuality converts a [0, 1] quality into the 1-100 scale used by
// image/jpeg and most native encoders.
func JPEGQuality(q float64) int {
	if math.IsNaN(q) {
		q = DefaultQuality
	}
	v := int(math.Round(q * 100))
	return max(1, min(100, v))
}
