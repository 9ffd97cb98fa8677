package extract

import (
	"fmt"
	"os"

	"github.com/disintegration/imaging"

	"mediascan/internal/logging"
)

// PrepareForAnnotation writes a JPEG copy of the image, downscaled so
// that neither side exceeds maxDim, for the annotation collaborator to
// consume. Returns the temporary file path; the caller owns the file.
func PrepareForAnnotation(path string, maxDim int) (string, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to open image %s: %w", path, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	tmp, err := os.CreateTemp("", "mediascan-annotate-*.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		logging.Warn("failed to close temp file %s: %v", tmp.Name(), err)
	}

	if err := imaging.Save(img, tmp.Name(), imaging.JPEGQuality(85)); err != nil {
		if rmErr := os.Remove(tmp.Name()); rmErr != nil {
			logging.Warn("failed to remove temp file %s: %v", tmp.Name(), rmErr)
		}
		return "", fmt.Errorf("failed to save resized image: %w", err)
	}

	return tmp.Name(), nil
}
