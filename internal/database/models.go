package database

import (
	"time"

	"mediascan/internal/extract"
	"mediascan/internal/mediatypes"
)

// MediaRecord is one scanned media file, keyed by Path.
type MediaRecord struct {
	ID           int64                        `json:"id"`
	Path         string                       `json:"filepath"`
	Name         string                       `json:"filename"`
	OriginalName string                       `json:"originalFilename,omitempty"`
	Kind         mediatypes.Kind              `json:"fileType"`
	Size         int64                        `json:"fileSize"`
	Digest       string                       `json:"fileHash,omitempty"`
	Perceptual   string                       `json:"perceptualHash,omitempty"`
	Width        int                          `json:"width,omitempty"`
	Height       int                          `json:"height,omitempty"`
	CreatedAt    time.Time                    `json:"createdDate"`
	ModifiedAt   time.Time                    `json:"modifiedDate"`
	EXIF         map[string]extract.MetaValue `json:"exifData,omitempty"`
	Description  string                       `json:"description,omitempty"`
	Tags         []string                     `json:"tags,omitempty"`
	AIAnalyzed   bool                         `json:"aiAnalyzed"`
	IsDuplicate  bool                         `json:"isDuplicate"`
	DuplicateOf  *int64                       `json:"duplicateOf,omitempty"`
	IsJunk       bool                         `json:"isJunk"`
	JunkReason   string                       `json:"junkReason,omitempty"`
	ScannedAt    time.Time                    `json:"scanDate"`
}

// DuplicateRecord is a duplicate together with its canonical original.
type DuplicateRecord struct {
	MediaRecord
	OriginalPath string `json:"originalFilepath,omitempty"`
	OriginalName string `json:"originalFilename,omitempty"`
}

// Stats summarizes the record set.
type Stats struct {
	TotalFiles int   `json:"totalFiles"`
	Images     int   `json:"images"`
	Videos     int   `json:"videos"`
	Analyzed   int   `json:"analyzed"`
	Duplicates int   `json:"duplicates"`
	Junk       int   `json:"junk"`
	TotalSize  int64 `json:"totalSize"`
}

// TagCount is one tag with its usage count.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SearchOptions controls a Search call. An empty Query lists records by
// modification date instead of full-text rank.
type SearchOptions struct {
	Query  string
	Kind   mediatypes.Kind // empty = all kinds
	Limit  int
	Offset int
}
