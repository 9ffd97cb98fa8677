package junk

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"mediascan/internal/mediatypes"
)

func newTestClassifier(threshold int64) *Classifier {
	return NewClassifier(threshold, mediatypes.DefaultClassifier())
}

func writeValidImage(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 0, A: 255})
		}
	}
	if err := imaging.Save(img, path); err != nil {
		t.Fatal(err)
	}
}

func TestClassifyCleanFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "holiday.png")
	writeValidImage(t, path)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	isJunk, reason := newTestClassifier(100).Classify(path, info.Size())
	if isJunk {
		t.Errorf("clean file flagged as junk: %q", reason)
	}
	if reason != "" {
		t.Errorf("clean file reason = %q, want empty", reason)
	}
}

func TestClassifySizeThreshold(t *testing.T) {
	t.Parallel()

	// Non-image so the corruption rule stays out of the way.
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	isJunk, reason := newTestClassifier(10_000).Classify(path, 1)
	if !isJunk {
		t.Fatal("tiny file not flagged")
	}
	if !strings.Contains(reason, "very small (1 bytes)") {
		t.Errorf("reason = %q, want size reason with byte count", reason)
	}

	// A threshold below the size must not flag.
	if isJunk, _ := newTestClassifier(1).Classify(path, 1); isJunk {
		t.Error("file at threshold flagged with low threshold")
	}
}

func TestClassifyPatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name string
		want bool
	}{
		{"Thumbs.db", true},
		{"desktop.ini", true},
		{"IMG_thumbnail_01.mp4", true},
		{"THUMB_cover.mov", true},
		{"vacation.mp4", false},
	}

	c := newTestClassifier(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			isJunk, reason := c.Classify(path, 1_000_000)
			if isJunk != tt.want {
				t.Errorf("Classify(%q) junk = %v, want %v (reason %q)", tt.name, isJunk, tt.want, reason)
			}
			if tt.want && !strings.Contains(reason, "thumbnail/system file pattern") {
				t.Errorf("reason = %q, want pattern reason", reason)
			}
		})
	}
}

func TestClassifyCorruptedImage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(path, []byte("definitely not a jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	isJunk, reason := newTestClassifier(0).Classify(path, 1_000_000)
	if !isJunk {
		t.Fatal("corrupted image not flagged")
	}
	if !strings.Contains(reason, "corrupted or unreadable image") {
		t.Errorf("reason = %q, want corruption reason", reason)
	}
}

func TestReasonsAccumulate(t *testing.T) {
	t.Parallel()

	// Tiny, thumbnail-named, and unreadable as an image: all three rules fire.
	path := filepath.Join(t.TempDir(), "thumbnail_01.jpg")
	if err := os.WriteFile(path, []byte("tiny"), 0o644); err != nil {
		t.Fatal(err)
	}

	isJunk, reason := newTestClassifier(10_000).Classify(path, 500)
	if !isJunk {
		t.Fatal("file not flagged")
	}
	for _, want := range []string{"very small", "thumbnail/system file pattern", "corrupted or unreadable image"} {
		if !strings.Contains(reason, want) {
			t.Errorf("reason %q missing %q", reason, want)
		}
	}
	if !strings.Contains(reason, "; ") {
		t.Errorf("reasons not semicolon-joined: %q", reason)
	}
}
