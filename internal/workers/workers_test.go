package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	t.Setenv("SCAN_WORKERS", "")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{
			name:       "uncapped",
			multiplier: 2.0,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU * 2,
		},
		{
			name:       "limit respected",
			multiplier: 2.0,
			limit:      2,
			minExpect:  1,
			maxExpect:  2,
		},
		{
			name:       "tiny multiplier floors at one",
			multiplier: 0.01,
			limit:      0,
			minExpect:  1,
			maxExpect:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := count(tt.multiplier, tt.limit)
			if got < tt.minExpect || got > tt.maxExpect {
				t.Errorf("count(%v, %d) = %d, want between %d and %d",
					tt.multiplier, tt.limit, got, tt.minExpect, tt.maxExpect)
			}
		})
	}
}

func TestCountEnvOverride(t *testing.T) {
	t.Setenv("SCAN_WORKERS", "7")

	if got := ForMixed(0); got != 7 {
		t.Errorf("ForMixed with SCAN_WORKERS=7 = %d, want 7", got)
	}

	// Limit still caps the override.
	if got := ForMixed(3); got != 3 {
		t.Errorf("ForMixed with SCAN_WORKERS=7 and limit 3 = %d, want 3", got)
	}

	// Garbage values fall through to the computed count.
	t.Setenv("SCAN_WORKERS", "not-a-number")
	if got := ForMixed(0); got < 1 {
		t.Errorf("ForMixed with invalid override = %d, want >= 1", got)
	}
}

func TestForMixedOversubscribes(t *testing.T) {
	t.Setenv("SCAN_WORKERS", "")

	got := ForMixed(0)
	if got < 1 {
		t.Fatalf("ForMixed(0) = %d, want >= 1", got)
	}
	if max := int(float64(runtime.GOMAXPROCS(0))*mixedMultiplier) + 1; got > max {
		t.Errorf("ForMixed(0) = %d, want <= %d", got, max)
	}
}
