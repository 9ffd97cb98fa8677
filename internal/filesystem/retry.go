package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"mediascan/internal/logging"
	"mediascan/internal/metrics"
)

// RetryConfig controls backoff behavior for NFS-aware operations.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns the retry policy used by the scanner.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// isStale reports whether err is an NFS stale file handle (ESTALE).
func isStale(err error) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && errno == syscall.ESTALE
}

// withRetry runs op until it succeeds, fails with a non-ESTALE error,
// or exhausts the retry budget.
func withRetry[T any](path, operation string, cfg RetryConfig, op func() (T, error)) (T, error) {
	var (
		result  T
		lastErr error
	)
	backoff := cfg.InitialBackoff

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, lastErr = op()
		if lastErr == nil {
			if attempt > 0 {
				logging.Info("NFS %s succeeded on retry %d for %s", operation, attempt, path)
				metrics.FSRetries.WithLabelValues(operation, "success").Inc()
			}
			return result, nil
		}
		if !isStale(lastErr) {
			return result, lastErr
		}

		metrics.FSStaleErrors.WithLabelValues(operation).Inc()
		if attempt < cfg.MaxRetries {
			logging.Debug("NFS %s stale file handle for %s, retrying in %v (attempt %d/%d)",
				operation, path, backoff, attempt+1, cfg.MaxRetries)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > cfg.MaxBackoff {
				backoff = cfg.MaxBackoff
			}
		}
	}

	logging.Warn("NFS %s failed after %d retries for %s: %v", operation, cfg.MaxRetries, path, lastErr)
	metrics.FSRetries.WithLabelValues(operation, "failure").Inc()
	return result, lastErr
}

// Stat is os.Stat with ESTALE retry.
func Stat(path string, cfg RetryConfig) (os.FileInfo, error) {
	return withRetry(path, "stat", cfg, func() (os.FileInfo, error) {
		return os.Stat(path)
	})
}

// Open is os.Open with ESTALE retry.
func Open(path string, cfg RetryConfig) (*os.File, error) {
	return withRetry(path, "open", cfg, func() (*os.File, error) {
		return os.Open(path)
	})
}
