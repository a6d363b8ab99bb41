// Package encoderplugin is the public API for external duotone encoders.
//
// An encoder plugin is a separate executable that serves an Encoder over
// HashiCorp go-plugin's net/rpc transport. The host hands it raw
// non-premultiplied RGBA pixels and receives encoded bytes back, which lets
// a native encoder (mozjpeg, oxipng, ...) stand in for the built-in one.
package encoderplugin

import (
	"context"
	"fmt"
	"image"

	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion is the encoder plugin API version (MAJOR.MINOR.PATCH).
	ProtocolVersion = "1.0.0"

	// PluginName is the key the encoder is dispensed under.
	PluginName = "encoder"
)

// Handshake is the handshake configuration shared by host and plugins.
// ProtocolVersion must match the major component of ProtocolVersion.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "DUOTONE_ENCODER_PLUGIN",
	MagicCookieValue: "duotone_gradient_map",
}

// Info contains metadata about an encoder plugin.
type Info struct {
	Name            string   `json:"name"`
	Version         string   `json:"version"`
	ProtocolVersion string   `json:"protocol_version"`
	Description     string   `json:"description"`
	Formats         []string `json:"formats"`
}

// Request is a single encode call.
type Request struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Stride  int     `json:"stride"`
	Pix     []byte  `json:"pix"`
	Format  string  `json:"format"`
	Quality float64 `json:"quality"`
}

// NewRequest builds a Request from an NRGBA buffer. The pixel data is
// repacked so the request never carries bytes outside img's bounds.
func NewRequest(img *image.NRGBA, format string, quality float64) Request {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*w*4:(y+1)*w*4], img.Pix[off:off+w*4])
	}
	return Request{
		Width:   w,
		Height:  h,
		Stride:  w * 4,
		Pix:     pix,
		Format:  format,
		Quality: quality,
	}
}

// Validate checks that the pixel data matches the declared geometry.
func (r Request) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", r.Width, r.Height)
	}
	if r.Stride < r.Width*4 {
		return fmt.Errorf("stride %d too small for width %d", r.Stride, r.Width)
	}
	if need := r.Stride*(r.Height-1) + r.Width*4; len(r.Pix) < need {
		return fmt.Errorf("pixel buffer has %d bytes, need %d", len(r.Pix), need)
	}
	if r.Quality < 0 || r.Quality > 1 {
		return fmt.Errorf("quality %g outside [0, 1]", r.Quality)
	}
	return nil
}

// Image returns the request pixels as an NRGBA image sharing Pix.
func (r Request) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    r.Pix,
		Stride: r.Stride,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// Encoder is implemented by plugin executables.
type Encoder interface {
	// Encode returns the encoded bytes for req.
	Encode(ctx context.Context, req Request) ([]byte, error)

	// GetMetadata returns plugin metadata.
	GetMetadata() Info
}

// Serve runs impl as a plugin. It blocks until the host disconnects and must
// be called from the plugin's main.
func Serve(impl Encoder) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			PluginName: &EncoderRPC{Impl: impl},
		},
	})
}
