package mediatypes

import (
	"path/filepath"
	"strings"
)

// Kind represents the media kind of a file.
type Kind string

const (
	// KindImage represents an image file.
	KindImage Kind = "image"
	// KindVideo represents a video file.
	KindVideo Kind = "video"
	// KindOther represents an unknown or unsupported file type.
	KindOther Kind = "other"
)

// DefaultImageExtensions lists the image formats recognized out of the box.
var DefaultImageExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".tif",
	".webp", ".heic", ".heif", ".raw", ".cr2", ".nef", ".arw",
	".svg", ".ico",
}

// DefaultVideoExtensions lists the video formats recognized out of the box.
var DefaultVideoExtensions = []string{
	".mp4", ".mov", ".avi", ".mkv", ".wmv", ".flv", ".webm",
	".m4v", ".mpg", ".mpeg", ".3gp",
}

// Classifier maps file extensions to media kinds. The zero value matches
// nothing; build one with NewClassifier or DefaultClassifier.
type Classifier struct {
	images map[string]bool
	videos map[string]bool
}

// NewClassifier builds a Classifier from explicit extension sets.
// Extensions are matched case-insensitively and must include the leading dot.
// An extension present in both sets is treated as an image.
func NewClassifier(imageExts, videoExts []string) *Classifier {
	c := &Classifier{
		images: make(map[string]bool, len(imageExts)),
		videos: make(map[string]bool, len(videoExts)),
	}
	for _, ext := range imageExts {
		c.images[strings.ToLower(ext)] = true
	}
	for _, ext := range videoExts {
		c.videos[strings.ToLower(ext)] = true
	}
	return c
}

// DefaultClassifier returns a Classifier using the default extension sets.
func DefaultClassifier() *Classifier {
	return NewClassifier(DefaultImageExtensions, DefaultVideoExtensions)
}

// KindFor returns the media kind for a path based on its extension.
// Unknown extensions return KindOther.
func (c *Classifier) KindFor(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	if c.images[ext] {
		return KindImage
	}
	if c.videos[ext] {
		return KindVideo
	}
	return KindOther
}

// IsMedia reports whether the path has a recognized media extension.
func (c *Classifier) IsMedia(path string) bool {
	return c.KindFor(path) != KindOther
}

// IsHidden reports whether a path segment is a hidden entry by the
// dot-prefix convention. The tree walker prunes hidden directories
// entirely rather than descending and skipping their contents.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
