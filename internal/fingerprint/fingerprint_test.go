package fingerprint

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

// halves draws a vertical split image: left half one color, right half the other.
func halves(left, right color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if x < 32 {
				img.Set(x, y, left)
			} else {
				img.Set(x, y, right)
			}
		}
	}
	return img
}

func saveImage(t *testing.T, img image.Image, path string) {
	t.Helper()
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("failed to save %s: %v", path, err)
	}
}

func TestDigestStable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "file.bin")
	if err := os.WriteFile(path, []byte("some file content"), 0o644); err != nil {
		t.Fatal(err)
	}

	first, err := Digest(path)
	if err != nil {
		t.Fatalf("Digest() error: %v", err)
	}
	second, err := Digest(path)
	if err != nil {
		t.Fatalf("Digest() error: %v", err)
	}

	if first != second {
		t.Errorf("digest not stable: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("digest length = %d, want 64 hex characters", len(first))
	}
}

func TestDigestChangesWithContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	if err := os.WriteFile(a, []byte("some file content"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Single byte differs.
	if err := os.WriteFile(b, []byte("some file contenT"), 0o644); err != nil {
		t.Fatal(err)
	}

	da, err := Digest(a)
	if err != nil {
		t.Fatal(err)
	}
	db, err := Digest(b)
	if err != nil {
		t.Fatal(err)
	}
	if da == db {
		t.Error("digests equal for different content")
	}
}

func TestDigestMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Digest(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Error("Digest() on missing file should return an error")
	}
}

func TestPerceptualSamePixelsDifferentEncoder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	img := halves(color.White, color.Black)

	pngPath := filepath.Join(dir, "img.png")
	bmpPath := filepath.Join(dir, "img.bmp")
	saveImage(t, img, pngPath)
	saveImage(t, img, bmpPath)

	hPNG := Perceptual(pngPath)
	hBMP := Perceptual(bmpPath)
	if hPNG == "" || hBMP == "" {
		t.Fatalf("perceptual hash absent: png=%q bmp=%q", hPNG, hBMP)
	}

	dist, err := Distance(hPNG, hBMP)
	if err != nil {
		t.Fatal(err)
	}
	if dist != 0 {
		t.Errorf("distance between identical pixels = %d, want 0", dist)
	}
}

func TestPerceptualDistinguishesContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	saveImage(t, halves(color.White, color.Black), a)
	saveImage(t, halves(color.Black, color.White), b)

	ha := Perceptual(a)
	hb := Perceptual(b)
	if ha == "" || hb == "" {
		t.Fatal("perceptual hash absent for valid image")
	}

	dist, err := Distance(ha, hb)
	if err != nil {
		t.Fatal(err)
	}
	if dist <= 8 {
		t.Errorf("distance between inverted images = %d, want > 8", dist)
	}
}

func TestPerceptualAbsentOnDecodeFailure(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := Perceptual(path); got != "" {
		t.Errorf("Perceptual() on corrupt file = %q, want empty", got)
	}
}

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		a, b    string
		want    int
		wantErr bool
	}{
		{"identical", "0000000000000000", "0000000000000000", 0, false},
		{"all bits differ", "ffffffffffffffff", "0000000000000000", 64, false},
		{"one bit", "0000000000000001", "0000000000000000", 1, false},
		{"short token", "abc", "0000000000000000", 0, true},
		{"non-hex token", "zzzzzzzzzzzzzzzz", "0000000000000000", 0, true},
		{"empty token", "", "0000000000000000", 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Distance(tt.a, tt.b)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Distance() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
