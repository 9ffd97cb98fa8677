// Package junk applies heuristic rules to flag low-value files: tiny
// files, thumbnail/system artifacts, and structurally corrupted images.
// Flagged files are reported, never touched.
package junk

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"mediascan/internal/mediatypes"
)

// junkPatterns are filename markers for thumbnails and OS droppings.
// Matched case-insensitively as substrings of the base name.
var junkPatterns = []string{"thumb", "thumbnail", ".ds_store", "desktop.ini", "thumbs.db"}

// Classifier flags probable junk files. Rules accumulate: a file can
// carry several independent reasons at once.
type Classifier struct {
	sizeThreshold int64
	types         *mediatypes.Classifier
}

// NewClassifier builds a junk classifier. Files smaller than
// sizeThreshold bytes are flagged; types decides which paths get the
// image corruption check.
func NewClassifier(sizeThreshold int64, types *mediatypes.Classifier) *Classifier {
	return &Classifier{
		sizeThreshold: sizeThreshold,
		types:         types,
	}
}

// Classify reports whether the file looks like junk and a human-readable
// reason string. Reasons are semicolon-joined and never short-circuit.
// A clean file returns (false, "").
func (c *Classifier) Classify(path string, size int64) (bool, string) {
	var reasons []string
	name := strings.ToLower(filepath.Base(path))

	if size < c.sizeThreshold {
		reasons = append(reasons, fmt.Sprintf("very small (%d bytes)", size))
	}

	for _, pattern := range junkPatterns {
		if strings.Contains(name, pattern) {
			reasons = append(reasons, "thumbnail/system file pattern")
			break
		}
	}

	if c.types.KindFor(path) == mediatypes.KindImage {
		if _, err := imaging.Open(path); err != nil {
			reasons = append(reasons, "corrupted or unreadable image")
		}
	}

	if len(reasons) > 0 {
		return true, strings.Join(reasons, "; ")
	}
	return false, ""
}
