// reference-encoder - duotone encoder plugin example
//
// A minimal go-plugin encoder built on the standard image/png and
// image/jpeg packages. It produces the same bytes as the built-in encoder
// apart from PNG compression, which is always BestCompression, and serves
// as a template for wrapping native encoders such as mozjpeg or oxipng.
//
// Build:
//   go build -o reference-encoder ./contrib/plugins/encoder/reference
//
// Usage:
//   duotone apply --encoder-plugin ./reference-encoder photo.jpg
//   DUOTONE_ENCODER_PLUGIN=./reference-encoder duotone apply -f jpeg photo.jpg
//
// Author: Duotone Contributors
// License: MIT

package main

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/duotone/internal/encode"
	"github.com/jmylchreest/duotone/pkg/encoderplugin"
)

const pluginVersion = "0.1.0"

// referenceEncoder implements encoderplugin.Encoder.
type referenceEncoder struct {
	logger hclog.Logger
}

// Encode encodes req as PNG or JPEG.
func (e *referenceEncoder) Encode(ctx context.Context, req encoderplugin.Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, err := encode.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}

	img := req.Image()
	var buf bytes.Buffer
	switch format {
	case encode.PNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(&buf, img)
	case encode.JPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: encode.JPEGQuality(req.Quality)})
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}

	e.logger.Debug("encoded", "format", format, "quality", req.Quality,
		"width", req.Width, "height", req.Height, "bytes", buf.Len())
	return buf.Bytes(), nil
}

// GetMetadata returns plugin metadata.
func (e *referenceEncoder) GetMetadata() encoderplugin.Info {
	return encoderplugin.Info{
		Name:            "reference-encoder",
		Version:         pluginVersion,
		ProtocolVersion: encoderplugin.ProtocolVersion,
		Description:     "PNG and JPEG encoding with the Go standard library",
		Formats:         []string{string(encode.PNG), string(encode.JPEG)},
	}
}

func main() {
	// go-plugin forwards JSON log lines on stderr to the host's logger.
	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "reference-encoder",
		Level:      hclog.Trace,
		Output:     os.Stderr,
		JSONFormat: true,
	})

	encoderplugin.Serve(&referenceEncoder{logger: logger})
}
