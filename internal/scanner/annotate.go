package scanner

import (
	"context"

	"mediascan/internal/extract"
)

// The annotation collaborator consumes a downscaled image copy (or
// sampled video frames) plus the stored metadata. These entry points
// apply the configured frame count and image bound so the annotator
// never handles raw tunables.

// SampleFrames extracts the configured number of evenly spaced frames
// from a video into temporary JPEG files. The caller owns the returned
// files and is responsible for removing them.
func (s *Scanner) SampleFrames(ctx context.Context, path string) ([]string, error) {
	return s.extractor.SampleFrames(ctx, path, s.cfg.VideoSampleFrames)
}

// PrepareForAnnotation writes a temporary JPEG copy of the image at
// path, downscaled so neither side exceeds the configured maximum
// dimension. The caller owns the returned file.
func (s *Scanner) PrepareForAnnotation(path string) (string, error) {
	return extract.PrepareForAnnotation(path, s.cfg.MaxImageDim)
}
