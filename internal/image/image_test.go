package image

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/duotone/internal/util/imagecache"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestSnapshotNRGBA(t *testing.T) {
	src := checker(4, 4)
	sub := src.SubImage(image.Rect(1, 1, 3, 4)).(*image.NRGBA)

	snap := Snapshot(sub)
	if snap.Rect != image.Rect(0, 0, 2, 3) {
		t.Fatalf("bounds = %v, want origin-based 2x3", snap.Rect)
	}
	if snap.NRGBAAt(0, 0) != src.NRGBAAt(1, 1) || snap.NRGBAAt(1, 2) != src.NRGBAAt(2, 3) {
		t.Error("snapshot pixels do not match the source region")
	}

	snap.Pix[0] = 7
	if src.Pix[src.PixOffset(1, 1)] == 7 {
		t.Error("snapshot shares memory with its source")
	}
}

func TestSnapshotUnpremultiplies(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 128, A: 128})

	got := Snapshot(src).NRGBAAt(0, 0)
	if got.A != 128 || got.R != 255 || got.G != 0 {
		t.Errorf("Snapshot() = %v, want non-premultiplied red at half alpha", got)
	}
}

func TestClone(t *testing.T) {
	src := checker(2, 2)
	dst := Clone(src)
	if !bytes.Equal(src.Pix, dst.Pix) || dst.Rect != src.Rect {
		t.Fatal("clone differs from source")
	}
	dst.Pix[0] = 1
	if src.Pix[0] == 1 {
		t.Error("clone shares memory with its source")
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		max   int
		wantW int
		wantH int
	}{
		{"landscape", 100, 50, 10, 10, 5},
		{"portrait", 30, 90, 9, 3, 9},
		{"already fits", 8, 6, 10, 8, 6},
		{"no limit", 40, 20, 0, 40, 20},
		{"thin", 1000, 1, 10, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit(checker(tt.w, tt.h), tt.max)
			if got.Rect.Dx() != tt.wantW || got.Rect.Dy() != tt.wantH {
				t.Errorf("Fit(%dx%d, %d) = %dx%d, want %dx%d",
					tt.w, tt.h, tt.max, got.Rect.Dx(), got.Rect.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	raw := encodePNG(t, checker(3, 2))

	d, err := Decode(raw, "photo.png")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Format != "png" || d.Image.Bounds().Dx() != 3 || d.Size != len(raw) {
		t.Errorf("unexpected result %+v", d)
	}
}

func TestDecodeCompressed(t *testing.T) {
	raw := encodePNG(t, checker(5, 5))

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	if _, err := gw.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}

	var xzBuf bytes.Buffer
	xw, err := xz.NewWriter(&xzBuf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := xw.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := xw.Close(); err != nil {
		t.Fatal(err)
	}

	for name, data := range map[string][]byte{
		"photo.png.gz": gz.Bytes(),
		"photo.png.xz": xzBuf.Bytes(),
	} {
		t.Run(name, func(t *testing.T) {
			d, err := Decode(data, name)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if d.Image.Bounds().Dx() != 5 || d.Size != len(raw) {
				t.Errorf("unexpected result: %v, %d bytes", d.Image.Bounds(), d.Size)
			}
		})
	}
}

func TestDecodeError(t *testing.T) {
	tests := map[string][]byte{
		"garbage.png":    []byte("definitely not an image"),
		"garbage.png.xz": []byte("not xz either"),
		"empty.jpg":      nil,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			d, err := Decode(data, name)
			var decErr *DecodeError
			if !errors.As(err, &decErr) {
				t.Fatalf("expected *DecodeError, got %v", err)
			}
			if d != nil {
				t.Error("no partial result may accompany a decode error")
			}
			if decErr.Source != name {
				t.Errorf("Source = %q, want %q", decErr.Source, name)
			}
		})
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.png")
	if err := os.WriteFile(path, encodePNG(t, checker(2, 2)), 0o600); err != nil {
		t.Fatal(err)
	}

	loader := NewFileLoader()
	d, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.Source != path {
		t.Errorf("Source = %q", d.Source)
	}

	for _, bad := range []string{"", dir, filepath.Join(dir, "missing.png")} {
		if _, err := loader.Load(context.Background(), bad); err == nil {
			t.Errorf("Load(%q) should fail", bad)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	tests := map[string]bool{
		"photo.jpg":      true,
		"PHOTO.JPEG":     true,
		"scan.tiff":      true,
		"photo.png.xz":   true,
		"photo.webp.gz":  true,
		"notes.txt":      false,
		"archive.tar.gz": false,
		"no-extension":   false,
	}
	for path, want := range tests {
		if got := IsImageFile(path); got != want {
			t.Errorf("IsImageFile(%q) = %v, want %v", path, got, want)
		}
	}

	if !IsRemote("https://example.com/a.png") || IsRemote("/tmp/a.png") {
		t.Error("IsRemote misclassified a path")
	}
}

func TestSmartLoaderRemote(t *testing.T) {
	payload := encodePNG(t, checker(4, 2))
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(payload)
	}))
	defer server.Close()
	url := server.URL + "/images/photo.png"

	loader := NewSmartLoader()
	d, err := loader.Load(context.Background(), url)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.Source != url || d.Image.Bounds().Dx() != 4 {
		t.Errorf("unexpected result %+v", d)
	}

	loader.Cache = &imagecache.CacheOptions{CacheDir: t.TempDir()}
	for i := 0; i < 2; i++ {
		d, err := loader.Load(context.Background(), url)
		if err != nil {
			t.Fatalf("cached Load %d: %v", i, err)
		}
		if d.Source != url {
			t.Errorf("cached Source = %q, want %q", d.Source, url)
		}
	}
	if hits.Load() != 2 {
		t.Errorf("server hit %d times, want 2 (one uncached, one cache fill)", hits.Load())
	}
}

func TestSmartLoaderRemoteError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	if _, err := NewSmartLoader().Load(context.Background(), server.URL+"/missing.png"); err == nil {
		t.Error("expected error for 404")
	}
}

func TestComputeLumaStats(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	for x, v := range []uint8{0, 50, 100, 250} {
		img.SetNRGBA(x, 0, color.NRGBA{R: v, G: v, B: v, A: uint8(x * 60)})
	}

	s := ComputeLumaStats(img)
	if s.Pixels != 4 {
		t.Errorf("Pixels = %d", s.Pixels)
	}
	if math.Abs(s.Mean-100) > 1e-9 || math.Abs(s.Min) > 1e-9 || math.Abs(s.Max-250) > 1e-9 {
		t.Errorf("unexpected stats %+v", s)
	}
	if math.Abs(s.Median-50) > 1e-9 {
		t.Errorf("Median = %v, want 50", s.Median)
	}
	// Sample standard deviation of {0, 50, 100, 250}.
	if want := math.Sqrt(35000.0 / 3); math.Abs(s.StdDev-want) > 1e-6 {
		t.Errorf("StdDev = %v, want %v", s.StdDev, want)
	}

	if one := ComputeLumaStats(checker(1, 1)); one.StdDev != 0 || one.Mean != one.Max {
		t.Errorf("single pixel stats %+v", one)
	}
	if empty := ComputeLumaStats(image.NewNRGBA(image.Rect(0, 0, 0, 0))); empty != (LumaStats{}) {
		t.Errorf("empty stats %+v", empty)
	}
}
