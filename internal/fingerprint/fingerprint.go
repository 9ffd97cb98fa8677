// Package fingerprint computes the two content keys used for duplicate
// detection: a SHA-256 digest of the raw bytes (exact-duplicate key) and
// a 64-bit DCT perceptual hash for images (near-duplicate key).
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/bits"
	"strconv"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP decode support

	"mediascan/internal/filesystem"
	"mediascan/internal/logging"
)

// BitWidth is the width of the perceptual fingerprint in bits.
const BitWidth = 64

// digestChunkSize is the read buffer size for streaming digests. The
// resulting digest does not depend on this value.
const digestChunkSize = 8192

// Digest streams the file through SHA-256 and returns the lowercase hex
// digest. The digest is an equality key, not a security boundary.
func Digest(path string) (string, error) {
	f, err := filesystem.Open(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close %s: %v", path, err)
		}
	}()

	h := sha256.New()
	buf := make([]byte, digestChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Perceptual decodes the image at path and returns its DCT perceptual
// hash as a 16-character hex token. Decode failures return the empty
// string: an absent fingerprint is an expected per-file condition
// (media extensions cover formats the decoder may not support), never
// an error.
func Perceptual(path string) string {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		logging.Warn("Perceptual hash failed for %s: %v", path, err)
		return ""
	}

	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		logging.Warn("Perceptual hash failed for %s: %v", path, err)
		return ""
	}

	return fmt.Sprintf("%016x", hash.GetHash())
}

// Distance returns the Hamming distance in bits between two perceptual
// fingerprint tokens as produced by Perceptual.
func Distance(a, b string) (int, error) {
	ha, err := parseToken(a)
	if err != nil {
		return 0, err
	}
	hb, err := parseToken(b)
	if err != nil {
		return 0, err
	}
	return bits.OnesCount64(ha ^ hb), nil
}

func parseToken(s string) (uint64, error) {
	if len(s) != BitWidth/4 {
		return 0, fmt.Errorf("malformed fingerprint %q: want %d hex characters", s, BitWidth/4)
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed fingerprint %q: %w", s, err)
	}
	return v, nil
}
