package testsupport

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"lightbox/internal/listing"
)

// PNG encodes a width x height gradient image.
func PNG(t testing.TB, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 255 / max(1, width)), G: uint8(y * 255 / max(1, height)), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// WritePNG writes a small gradient PNG to path, creating parent directories.
func WritePNG(t testing.TB, path string) {
	t.Helper()
	WriteFile(t, path, PNG(t, 8, 8))
}

// WriteListing writes records as a JSON listing array.
func WriteListing(t testing.TB, path string, records []listing.Record) {
	t.Helper()

	if records == nil {
		records = []listing.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("encode listing: %v", err)
	}
	WriteFile(t, path, data)
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
