package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"mediascan/internal/config"
	"mediascan/internal/database"
	"mediascan/internal/extract"
	"mediascan/internal/junk"
	"mediascan/internal/logging"
	"mediascan/internal/mediatypes"
	"mediascan/internal/metrics"
	"mediascan/internal/resolver"
	"mediascan/internal/workers"
)

// How many processed files between progress callbacks.
const progressInterval = 10

// Observer receives progress callbacks during a scan. Implementations
// must be fast; callbacks run on the scan goroutine.
type Observer interface {
	// OnProgress is called with the number of files handled so far, the
	// total discovered, and the current phase ("scan" or "resolve").
	OnProgress(done, total int, phase string)
}

type noopObserver struct{}

func (noopObserver) OnProgress(int, int, string) {}

// ScanError records a single file that could not be processed.
type ScanError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Report summarizes a completed scan run, including a statistics
// snapshot taken from the store after duplicate resolution.
type Report struct {
	FilesFound       int             `json:"filesFound"`
	FilesProcessed   int             `json:"filesProcessed"`
	JunkFlagged      int             `json:"junkFlagged"`
	DuplicatesMarked int             `json:"duplicatesMarked"`
	Errors           []ScanError     `json:"errors,omitempty"`
	Stats            *database.Stats `json:"stats,omitempty"`
	Duration         time.Duration   `json:"duration"`
}

// Scanner drives the extraction pipeline over a directory tree.
type Scanner struct {
	cfg        *config.Config
	db         *database.Database
	types      *mediatypes.Classifier
	extractor  *extract.Extractor
	junk       *junk.Classifier
	resolver   *resolver.Resolver
	observer   Observer
	numWorkers int
}

// New builds a Scanner from configuration. The database is the only
// collaborator injected directly; everything else is derived from cfg.
func New(cfg *config.Config, db *database.Database) *Scanner {
	types := cfg.Classifier()
	numWorkers := cfg.Workers
	if numWorkers <= 0 {
		numWorkers = workers.ForMixed(0)
	}
	return &Scanner{
		cfg:        cfg,
		db:         db,
		types:      types,
		extractor:  extract.New(types, cfg.ToolTimeout),
		junk:       junk.NewClassifier(cfg.JunkSizeThreshold, types),
		resolver:   resolver.New(cfg.NearDuplicateThreshold),
		observer:   noopObserver{},
		numWorkers: numWorkers,
	}
}

// SetObserver registers a progress observer. Must be called before Scan.
func (s *Scanner) SetObserver(obs Observer) {
	if obs == nil {
		obs = noopObserver{}
	}
	s.observer = obs
}

// Discover walks root and returns every media file path in lexical
// order. Hidden files and directories (dot-prefixed) are skipped,
// hidden directories without descending into them. Unreadable
// directories are logged and skipped rather than failing the walk.
func (s *Scanner) Discover(root string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logging.Warn("skipping unreadable entry %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if mediatypes.IsHidden(d.Name()) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if s.types.IsMedia(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return paths, nil
}

// fileResult is one file's pipeline output, keyed back to its discovery
// index so writes stay in discovery order.
type fileResult struct {
	meta *extract.Metadata
	err  error
}

// Scan runs the full pipeline: discovery, extraction, junk
// classification, persistence, and duplicate resolution. Per-file
// failures are collected into the report; only infrastructure failures
// (walk, transactions, resolution) abort the run.
func (s *Scanner) Scan(ctx context.Context) (*Report, error) {
	start := time.Now()
	metrics.ScanRunsTotal.Inc()
	metrics.ScanIsRunning.Set(1)
	defer func() {
		metrics.ScanIsRunning.Set(0)
		metrics.ScanLastRunDuration.Set(time.Since(start).Seconds())
	}()

	logging.Info("Starting scan of %s with %d workers", s.cfg.ScanDir, s.numWorkers)

	paths, err := s.Discover(s.cfg.ScanDir)
	if err != nil {
		return nil, err
	}

	report := &Report{FilesFound: len(paths)}
	metrics.ScanFilesFound.Add(float64(len(paths)))
	logging.Info("Discovered %d media files", len(paths))

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}

	done := 0
	for batchStart := 0; batchStart < len(paths); batchStart += batchSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		end := batchStart + batchSize
		if end > len(paths) {
			end = len(paths)
		}
		batch := paths[batchStart:end]

		results := s.extractBatch(ctx, batch)

		if err := s.persistBatch(batch, results, report); err != nil {
			return report, fmt.Errorf("failed to persist batch at %s: %w", batch[0], err)
		}

		for range batch {
			done++
			if done%progressInterval == 0 {
				s.observer.OnProgress(done, len(paths), "scan")
			}
		}
	}
	s.observer.OnProgress(done, len(paths), "scan")

	if err := ctx.Err(); err != nil {
		return report, err
	}

	s.observer.OnProgress(0, 1, "resolve")
	marked, err := s.resolver.Run(s.db)
	if err != nil {
		return report, fmt.Errorf("duplicate resolution failed: %w", err)
	}
	report.DuplicatesMarked = marked
	s.observer.OnProgress(1, 1, "resolve")

	stats, err := s.db.GetStats()
	if err != nil {
		return report, fmt.Errorf("failed to snapshot store statistics: %w", err)
	}
	report.Stats = stats

	report.Duration = time.Since(start)
	logging.Info("Scan complete: %d/%d files processed, %d junk, %d duplicates, %d errors in %v",
		report.FilesProcessed, report.FilesFound, report.JunkFlagged,
		report.DuplicatesMarked, len(report.Errors), report.Duration.Round(time.Millisecond))
	return report, nil
}

// extractBatch runs extraction for one batch of paths concurrently and
// returns results indexed to match the input slice.
func (s *Scanner) extractBatch(ctx context.Context, batch []string) []fileResult {
	results := make([]fileResult, len(batch))

	numWorkers := s.numWorkers
	if numWorkers > len(batch) {
		numWorkers = len(batch)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				meta, err := s.extractor.Extract(ctx, batch[i])
				results[i] = fileResult{meta: meta, err: err}
			}
		}()
	}
	for i := range batch {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// persistBatch writes one batch of results inside a single transaction,
// in discovery order. Extraction failures become report errors and are
// skipped; a write failure rolls the whole batch back.
func (s *Scanner) persistBatch(batch []string, results []fileResult, report *Report) error {
	b, err := s.db.BeginBatch()
	if err != nil {
		return err
	}

	for i, res := range results {
		if res.err != nil {
			logging.Warn("failed to process %s: %v", batch[i], res.err)
			report.Errors = append(report.Errors, ScanError{Path: batch[i], Message: res.err.Error()})
			metrics.ScanErrors.Inc()
			continue
		}

		rec := recordFromMetadata(res.meta)
		if isJunk, reason := s.junk.Classify(rec.Path, rec.Size); isJunk {
			rec.IsJunk = true
			rec.JunkReason = reason
			report.JunkFlagged++
			metrics.ScanJunkFlagged.Inc()
		}

		if _, err := s.db.UpsertRecord(b, rec); err != nil {
			return s.db.EndBatch(b, err)
		}

		report.FilesProcessed++
		metrics.ScanFilesProcessed.WithLabelValues(string(rec.Kind)).Inc()
	}

	return s.db.EndBatch(b, nil)
}

func recordFromMetadata(meta *extract.Metadata) *database.MediaRecord {
	return &database.MediaRecord{
		Path:         meta.Path,
		Name:         meta.Name,
		OriginalName: meta.OriginalName,
		Kind:         meta.Kind,
		Size:         meta.Size,
		Digest:       meta.Digest,
		Perceptual:   meta.Perceptual,
		Width:        meta.Width,
		Height:       meta.Height,
		CreatedAt:    meta.CreatedAt,
		ModifiedAt:   meta.ModifiedAt,
		EXIF:         meta.Tags,
		ScannedAt:    meta.ScannedAt,
	}
}
