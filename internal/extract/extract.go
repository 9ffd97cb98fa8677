package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"mediascan/internal/filesystem"
	"mediascan/internal/mediatypes"
)

// DefaultToolTimeout bounds a single external tool invocation when the
// caller does not configure one.
const DefaultToolTimeout = 30 * time.Second

// Extractor derives metadata per media kind.
type Extractor struct {
	types       *mediatypes.Classifier
	toolTimeout time.Duration
}

// New creates an Extractor. A zero toolTimeout selects DefaultToolTimeout.
func New(types *mediatypes.Classifier, toolTimeout time.Duration) *Extractor {
	if toolTimeout <= 0 {
		toolTimeout = DefaultToolTimeout
	}
	return &Extractor{
		types:       types,
		toolTimeout: toolTimeout,
	}
}

// Extract dispatches on the media kind of path. It returns an error for
// paths that are not media, or when the file itself cannot be read.
func (e *Extractor) Extract(ctx context.Context, path string) (*Metadata, error) {
	switch e.types.KindFor(path) {
	case mediatypes.KindImage:
		return e.Image(path)
	case mediatypes.KindVideo:
		return e.Video(ctx, path)
	default:
		return nil, fmt.Errorf("not a media file: %s", path)
	}
}

// statMetadata fills the fields every media kind shares, straight from
// the filesystem.
func statMetadata(path string, kind mediatypes.Kind) (*Metadata, error) {
	info, err := filesystem.Stat(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	name := filepath.Base(path)
	return &Metadata{
		Path:         path,
		Name:         name,
		OriginalName: name,
		Kind:         kind,
		Size:         info.Size(),
		CreatedAt:    creationTime(info),
		ModifiedAt:   info.ModTime(),
		ScannedAt:    time.Now(),
	}, nil
}
