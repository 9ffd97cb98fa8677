// Package workers sizes the extraction worker pool from available CPU,
// with an environment override for operators.
package workers

import (
	"os"
	"runtime"
	"strconv"
)

// mixedMultiplier scales CPU count for the extraction workload: hashing
// is CPU-bound but file reads and tool invocations wait on I/O, so the
// pool runs slightly oversubscribed.
const mixedMultiplier = 1.5

// count computes a pool size from GOMAXPROCS (which respects container
// CPU limits) times multiplier, floored at one and capped at limit when
// limit is positive. The SCAN_WORKERS environment variable overrides the
// computed count but not the cap.
func count(multiplier float64, limit int) int {
	if override := os.Getenv("SCAN_WORKERS"); override != "" {
		if n, err := strconv.Atoi(override); err == nil && n > 0 {
			if limit > 0 && n > limit {
				return limit
			}
			return n
		}
	}

	n := int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	if n < 1 {
		n = 1
	}
	if limit > 0 && n > limit {
		n = limit
	}
	return n
}

// ForMixed returns the pool size for the mixed CPU- and I/O-bound
// extraction workload. limit caps the count; 0 means uncapped.
func ForMixed(limit int) int {
	return count(mixedMultiplier, limit)
}
