// Package config loads and validates scanner configuration from
// environment variables. All tunables are carried in an explicit Config
// value passed into each component rather than read as ambient state, so
// tests can run with distinct thresholds side by side.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mediascan/internal/logging"
	"mediascan/internal/mediatypes"
)

// Config holds every tunable the scanner core consumes.
type Config struct {
	// ScanDir is the root directory to walk.
	ScanDir string

	// DatabasePath is the full path to the SQLite database file.
	DatabasePath string

	// ImageExtensions and VideoExtensions are the disjoint extension sets
	// used by the path classifier.
	ImageExtensions []string
	VideoExtensions []string

	// JunkSizeThreshold flags files smaller than this many bytes.
	JunkSizeThreshold int64

	// BatchSize is how many processed files to accumulate before a
	// persistence flush.
	BatchSize int

	// VideoSampleFrames is how many frames to extract per video for the
	// annotation collaborator.
	VideoSampleFrames int

	// NearDuplicateThreshold is the maximum Hamming distance (in bits)
	// between perceptual fingerprints for two images to be considered
	// near-duplicates.
	NearDuplicateThreshold int

	// MaxImageDim bounds the longest side of images prepared for the
	// annotation collaborator.
	MaxImageDim int

	// ToolTimeout bounds each individual ffprobe/ffmpeg invocation.
	ToolTimeout time.Duration

	// Workers is the extraction pool size; 0 selects a CPU-based default.
	Workers int

	// MetricsEnabled and MetricsPort control the Prometheus endpoint.
	MetricsEnabled bool
	MetricsPort    string
}

// Default returns the built-in configuration without consulting the
// environment.
func Default() *Config {
	return &Config{
		ScanDir:                defaultScanDir(),
		DatabasePath:           "mediascan.db",
		ImageExtensions:        mediatypes.DefaultImageExtensions,
		VideoExtensions:        mediatypes.DefaultVideoExtensions,
		JunkSizeThreshold:      10_000,
		BatchSize:              10,
		VideoSampleFrames:      3,
		NearDuplicateThreshold: 8,
		MaxImageDim:            1024,
		ToolTimeout:            30 * time.Second,
		Workers:                0,
		MetricsEnabled:         true,
		MetricsPort:            "9090",
	}
}

// Load reads configuration from environment variables, falling back to
// defaults, and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	cfg.ScanDir = expandHome(getEnv("SCAN_DIR", cfg.ScanDir))
	cfg.DatabasePath = getEnv("DB_PATH", cfg.DatabasePath)
	cfg.MetricsEnabled = getEnvBool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.MetricsPort = getEnv("METRICS_PORT", cfg.MetricsPort)

	if exts := os.Getenv("IMAGE_EXTENSIONS"); exts != "" {
		cfg.ImageExtensions = splitExtensions(exts)
	}
	if exts := os.Getenv("VIDEO_EXTENSIONS"); exts != "" {
		cfg.VideoExtensions = splitExtensions(exts)
	}

	cfg.JunkSizeThreshold = getEnvInt64("JUNK_SIZE_THRESHOLD", cfg.JunkSizeThreshold)
	cfg.BatchSize = getEnvInt("SCAN_BATCH_SIZE", cfg.BatchSize)
	cfg.VideoSampleFrames = getEnvInt("VIDEO_SAMPLE_FRAMES", cfg.VideoSampleFrames)
	cfg.NearDuplicateThreshold = getEnvInt("NEAR_DUPLICATE_THRESHOLD", cfg.NearDuplicateThreshold)
	cfg.MaxImageDim = getEnvInt("MAX_IMAGE_DIM", cfg.MaxImageDim)
	cfg.Workers = getEnvInt("SCAN_WORKERS", cfg.Workers)

	if timeoutStr := os.Getenv("TOOL_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			logging.Warn("Invalid TOOL_TIMEOUT %q, using default %v", timeoutStr, cfg.ToolTimeout)
		} else {
			cfg.ToolTimeout = timeout
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(cfg.ScanDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scan directory path: %w", err)
	}
	cfg.ScanDir = abs

	return cfg, nil
}

// Validate checks the configuration for values the scanner cannot work with.
func (c *Config) Validate() error {
	if c.ScanDir == "" {
		return fmt.Errorf("scan directory must not be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", c.BatchSize)
	}
	if c.JunkSizeThreshold < 0 {
		return fmt.Errorf("junk size threshold must not be negative, got %d", c.JunkSizeThreshold)
	}
	if c.VideoSampleFrames < 0 {
		return fmt.Errorf("video sample frames must not be negative, got %d", c.VideoSampleFrames)
	}
	if c.NearDuplicateThreshold < 0 || c.NearDuplicateThreshold > 64 {
		return fmt.Errorf("near-duplicate threshold must be within 0..64, got %d", c.NearDuplicateThreshold)
	}
	if c.ToolTimeout <= 0 {
		return fmt.Errorf("tool timeout must be positive, got %v", c.ToolTimeout)
	}
	return nil
}

// Classifier builds the path classifier for the configured extension sets.
func (c *Config) Classifier() *mediatypes.Classifier {
	return mediatypes.NewClassifier(c.ImageExtensions, c.VideoExtensions)
}

func defaultScanDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Pictures")
	}
	return "."
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// splitExtensions parses a comma-separated extension list, normalizing
// entries to a lowercase ".ext" form.
func splitExtensions(s string) []string {
	parts := strings.Split(s, ",")
	exts := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, ".") {
			p = "." + p
		}
		exts = append(exts, p)
	}
	return exts
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
