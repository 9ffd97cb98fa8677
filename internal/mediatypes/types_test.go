package mediatypes

import "testing"

func TestKindFor(t *testing.T) {
	t.Parallel()

	c := DefaultClassifier()

	tests := []struct {
		name string
		path string
		want Kind
	}{
		{"jpeg image", "/photos/sunset.jpg", KindImage},
		{"uppercase extension", "/photos/SUNSET.JPG", KindImage},
		{"heic image", "vacation.HEIC", KindImage},
		{"mp4 video", "/videos/clip.mp4", KindVideo},
		{"mkv video", "movie.mkv", KindVideo},
		{"text file", "notes.txt", KindOther},
		{"no extension", "README", KindOther},
		{"dot file with media suffix", "/photos/.hidden.png", KindImage},
		{"raw image", "shot.cr2", KindImage},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := c.KindFor(tt.path); got != tt.want {
				t.Errorf("KindFor(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCustomExtensionSets(t *testing.T) {
	t.Parallel()

	c := NewClassifier([]string{".xyz"}, []string{".vid"})

	if got := c.KindFor("file.xyz"); got != KindImage {
		t.Errorf("KindFor(file.xyz) = %q, want image", got)
	}
	if got := c.KindFor("file.vid"); got != KindVideo {
		t.Errorf("KindFor(file.vid) = %q, want video", got)
	}
	// Defaults must not leak into a custom classifier.
	if got := c.KindFor("file.jpg"); got != KindOther {
		t.Errorf("KindFor(file.jpg) = %q, want other", got)
	}
}

func TestDefaultSetsDisjoint(t *testing.T) {
	t.Parallel()

	images := make(map[string]bool)
	for _, ext := range DefaultImageExtensions {
		images[ext] = true
	}
	for _, ext := range DefaultVideoExtensions {
		if images[ext] {
			t.Errorf("extension %q appears in both default sets", ext)
		}
	}
}

func TestIsHidden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{".DS_Store", true},
		{".git", true},
		{"photo.jpg", false},
		{"dir.with.dots", false},
	}

	for _, tt := range tests {
		if got := IsHidden(tt.name); got != tt.want {
			t.Errorf("IsHidden(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
