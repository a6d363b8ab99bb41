// Package compression unwraps single-file compressed image payloads.
package compression

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/duotone/internal/security"
	"github.com/ulikunitz/xz"
)

// MaxDecompressedSize caps how many bytes a compressed image may expand to.
const MaxDecompressedSize = 256 * 1024 * 1024

// Kind identifies a compression format.
type Kind string

const (
	// None means the payload is not compressed.
	None  Kind = ""
	Gzip  Kind = "gzip"
	Bzip2 Kind = "bzip2"
	XZ    Kind = "xz"
)

var extensions = map[string]Kind{
	".gz":  Gzip,
	".bz2": Bzip2,
	".xz":  XZ,
}

// Detect returns the compression kind implied by a file name or URL.
func Detect(name string) Kind {
	ext := strings.ToLower(filepath.Ext(trimQuery(name)))
	return extensions[ext]
}

// StripExtension removes a recognised compression suffix from name.
func StripExtension(name string) string {
	name = trimQuery(name)
	if Detect(name) == None {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Decompress unwraps data when name carries a compression suffix and returns
// it unchanged otherwise.
func Decompress(data []byte, name string) ([]byte, Kind, error) {
	kind := Detect(name)

	var r io.Reader
	switch kind {
	case None:
		return data, None, nil
	case Gzip:
		gzr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, kind, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzr.Close()
		r = gzr
	case Bzip2:
		r = bzip2.NewReader(bytes.NewReader(data))
	case XZ:
		xzr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, kind, fmt.Errorf("failed to create xz reader: %w", err)
		}
		r = xzr
	}

	out, err := io.ReadAll(security.NewLimitedReader(r, MaxDecompressedSize))
	if err != nil {
		return nil, kind, fmt.Errorf("failed to decompress %s payload: %w", kind, err)
	}
	return out, kind, nil
}

func trimQuery(name string) string {
	if idx := strings.IndexAny(name, "?#"); idx != -1 {
		return name[:idx]
	}
	return name
}
