package extract

import (
	"image"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	// Image format decoders for DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/tiff" // TIFF format support
	_ "golang.org/x/image/webp" // WebP format support

	"mediascan/internal/fingerprint"
	"mediascan/internal/logging"
	"mediascan/internal/mediatypes"
)

const (
	// Truncation limits for stringified tag values, binary and otherwise.
	maxBinaryTagLen = 100
	maxOtherTagLen  = 200
)

// Image extracts full metadata for an image file: filesystem attributes,
// pixel dimensions, EXIF tags, the content digest and the perceptual
// fingerprint. Dimension, EXIF and fingerprint failures leave the
// corresponding fields unset without failing the extraction; only stat
// and digest failures are errors.
func (e *Extractor) Image(path string) (*Metadata, error) {
	meta, err := statMetadata(path, mediatypes.KindImage)
	if err != nil {
		return nil, err
	}

	if width, height, err := imageDimensions(path); err != nil {
		logging.Warn("Could not read image dimensions for %s: %v", path, err)
	} else {
		meta.Width = width
		meta.Height = height
	}

	meta.Tags = extractEXIF(path)

	digest, err := fingerprint.Digest(path)
	if err != nil {
		return nil, err
	}
	meta.Digest = digest
	meta.Perceptual = fingerprint.Perceptual(path)

	return meta, nil
}

// imageDimensions reads the pixel size from the image header without
// decoding the full image.
func imageDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// extractEXIF reads the embedded EXIF block into a tag map. Returns nil
// when the file has no EXIF or it cannot be parsed.
func extractEXIF(path string) map[string]MetaValue {
	f, err := os.Open(path)
	if err != nil {
		logging.Warn("EXIF extraction failed for %s: %v", path, err)
		return nil
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	x, err := exif.Decode(f)
	if err != nil {
		logging.Debug("EXIF extraction failed for %s: %v", path, err)
		return nil
	}

	w := &exifWalker{tags: make(map[string]MetaValue)}
	if err := x.Walk(w); err != nil {
		logging.Warn("EXIF walk failed for %s: %v", path, err)
	}
	if len(w.tags) == 0 {
		return nil
	}
	return w.tags
}

type exifWalker struct {
	tags map[string]MetaValue
}

func (w *exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	w.tags[string(name)] = tagValue(tag)
	return nil
}

// tagValue maps a TIFF tag onto the scalar union. Multi-component and
// binary values fall back to a truncated printable string.
func tagValue(tag *tiff.Tag) MetaValue {
	switch tag.Format() {
	case tiff.IntVal:
		if tag.Count == 1 {
			if v, err := tag.Int64(0); err == nil {
				return IntValue(v)
			}
		}
	case tiff.FloatVal:
		if tag.Count == 1 {
			if v, err := tag.Float(0); err == nil {
				return FloatValue(v)
			}
		}
	case tiff.RatVal:
		if tag.Count == 1 {
			if num, den, err := tag.Rat2(0); err == nil && den != 0 {
				return FloatValue(float64(num) / float64(den))
			}
		}
	case tiff.StringVal:
		if v, err := tag.StringVal(); err == nil {
			return StringValue(truncate(printable(v), maxOtherTagLen))
		}
	case tiff.UndefVal, tiff.OtherVal:
		return StringValue(truncate(printable(tag.String()), maxBinaryTagLen))
	}
	return StringValue(truncate(printable(tag.String()), maxOtherTagLen))
}

// printable coerces arbitrary tag bytes to valid, printable text.
func printable(s string) string {
	if utf8.ValidString(s) && !strings.ContainsFunc(s, func(r rune) bool {
		return !unicode.IsPrint(r) && !unicode.IsSpace(r)
	}) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == utf8.RuneError || (!unicode.IsPrint(r) && !unicode.IsSpace(r)) {
			b.WriteRune('�')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// Cut on a rune boundary.
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
