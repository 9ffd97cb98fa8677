// Package memory sizes the Go heap limit from container memory limits.
// Image decoding and hashing allocate large pixel buffers; without a
// GOMEMLIMIT the runtime happily grows past a container's cgroup limit
// and gets OOM-killed mid-scan. A slice of the container limit is
// reserved for non-heap use (ffmpeg children, goroutine stacks, cgo).
package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"mediascan/internal/logging"
)

// DefaultRatio is the share of the container memory limit given to the
// Go heap.
const DefaultRatio = 0.85

// Result reports what ConfigureFromEnv decided.
type Result struct {
	// Configured is true when a heap limit is in effect.
	Configured bool
	// Source is "GOMEMLIMIT", "MEMORY_LIMIT", or "none".
	Source string
	// Limit is the effective heap limit in bytes (0 when unlimited).
	Limit int64
}

// ConfigureFromEnv sets GOMEMLIMIT from the environment. Call early in
// main, before significant allocations.
//
//   - GOMEMLIMIT: honored as-is when set (the runtime already applied it)
//   - MEMORY_LIMIT: container limit in bytes (e.g. Kubernetes Downward
//     API); the heap gets MEMORY_RATIO of it, DefaultRatio when unset
func ConfigureFromEnv() Result {
	if os.Getenv("GOMEMLIMIT") != "" {
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			logging.Info("Memory limit from GOMEMLIMIT: %s", formatBytes(limit))
			return Result{Configured: true, Source: "GOMEMLIMIT", Limit: limit}
		}
	}

	raw := os.Getenv("MEMORY_LIMIT")
	if raw == "" {
		logging.Debug("No memory limit configured, heap unbounded")
		return Result{Source: "none"}
	}

	containerLimit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || containerLimit <= 0 {
		logging.Warn("Ignoring invalid MEMORY_LIMIT %q", raw)
		return Result{Source: "none"}
	}

	ratio := DefaultRatio
	if rawRatio := os.Getenv("MEMORY_RATIO"); rawRatio != "" {
		if parsed, err := strconv.ParseFloat(rawRatio, 64); err == nil && parsed > 0 && parsed <= 1 {
			ratio = parsed
		} else {
			logging.Warn("Ignoring invalid MEMORY_RATIO %q", rawRatio)
		}
	}

	limit := int64(float64(containerLimit) * ratio)
	debug.SetMemoryLimit(limit)
	logging.Info("Memory limit set to %s (%.0f%% of container limit %s)",
		formatBytes(limit), ratio*100, formatBytes(containerLimit))
	return Result{Configured: true, Source: "MEMORY_LIMIT", Limit: limit}
}

func formatBytes(b int64) string {
	const mb = 1024 * 1024
	if b >= 1024*mb {
		return strconv.FormatFloat(float64(b)/(1024*mb), 'f', 1, 64) + " GiB"
	}
	return strconv.FormatFloat(float64(b)/mb, 'f', 1, 64) + " MiB"
}
