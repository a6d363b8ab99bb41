// Package image provides utilities for loading images and managing the pixel
// buffers the recolouring pipeline works on.
package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/tiff" // Register TIFF format
	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/jmylchreest/duotone/internal/compression"
	httputil "github.com/jmylchreest/duotone/internal/util/http"
	"github.com/jmylchreest/duotone/internal/util/imagecache"
)

// DecodeError reports input bytes that could not be decoded as an image.
// No partial buffer is ever returned alongside it.
type DecodeError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying decoder error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decoded is a successfully decoded image and what it was decoded from.
type Decoded struct {
	Image  image.Image
	Format string
	Source string
	// Size is the number of encoded bytes that were decoded, after any
	// decompression.
	Size int
}

// Loader handles loading images from various sources.
type Loader interface {
	// Load loads an image from the given path.
	Load(ctx context.Context, path string) (*Decoded, error)
}

// Decode decodes raw image bytes. Compressed payloads (.gz, .bz2, .xz) are
// unwrapped first, detected from the source name.
func Decode(data []byte, source string) (*Decoded, error) {
	raw, _, err := compression.Decompress(data, source)
	if err != nil {
		return nil, &DecodeError{Source: source, Err: err}
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Source: source, Err: err}
	}

	return &Decoded{
		Image:  img,
		Format: format,
		Source: source,
		Size:   len(raw),
	}, nil
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load loads an image from a file path.
func (l *FileLoader) Load(_ context.Context, path string) (*Decoded, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}

	return Decode(data, path)
}

// SupportedImageExtensions returns a list of supported image file extensions.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff"}
}

// IsImageFile checks if a file has a supported image extension, ignoring any
// compression suffix.
func IsImageFile(path string) bool {
	name := compression.StripExtension(path)
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(SupportedImageExtensions(), ext)
}

// IsRemote reports whether path is an HTTP(S) URL.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// SmartLoader loads images from both local files and HTTP(S) URLs.
type SmartLoader struct {
	fileLoader *FileLoader

	// Cache, when set, stores remote downloads on disk and reuses them.
	Cache *imagecache.CacheOptions

	// Fetch options used for remote images.
	Fetch httputil.FetchOptions
}

// NewSmartLoader creates a new SmartLoader instance.
func NewSmartLoader() *SmartLoader {
	return &SmartLoader{
		fileLoader: NewFileLoader(),
	}
}

// Load loads an image from either a local file path or HTTP(S) URL.
func (l *SmartLoader) Load(ctx context.Context, path string) (*Decoded, error) {
	if !IsRemote(path) {
		return l.fileLoader.Load(ctx, path)
	}

	if l.Cache != nil {
		cached, err := imagecache.DownloadAndCache(ctx, path, *l.Cache)
		if err != nil {
			return nil, fmt.Errorf("failed to cache image from URL: %w", err)
		}
		decoded, err := l.fileLoader.Load(ctx, cached)
		if err != nil {
			return nil, err
		}
		decoded.Source = path
		return decoded, nil
	}

	data, err := httputil.Fetch(ctx, path, l.Fetch)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
	}

	return Decode(data, path)
}
