package memory

import (
	"runtime/debug"
	"testing"
)

// resetLimit restores the runtime default after a test touches
// GOMEMLIMIT.
func resetLimit(t *testing.T) {
	t.Helper()
	prev := debug.SetMemoryLimit(-1)
	t.Cleanup(func() { debug.SetMemoryLimit(prev) })
}

func TestConfigureFromEnvUnset(t *testing.T) {
	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "")
	t.Setenv("MEMORY_RATIO", "")

	got := ConfigureFromEnv()
	if got.Configured || got.Source != "none" || got.Limit != 0 {
		t.Errorf("ConfigureFromEnv() = %+v, want unconfigured", got)
	}
}

func TestConfigureFromEnvContainerLimit(t *testing.T) {
	resetLimit(t)
	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "1073741824") // 1 GiB
	t.Setenv("MEMORY_RATIO", "")

	got := ConfigureFromEnv()
	if !got.Configured || got.Source != "MEMORY_LIMIT" {
		t.Fatalf("ConfigureFromEnv() = %+v, want configured from MEMORY_LIMIT", got)
	}
	limit := int64(1073741824)
	want := int64(float64(limit) * DefaultRatio)
	if got.Limit != want {
		t.Errorf("Limit = %d, want %d", got.Limit, want)
	}
	if applied := debug.SetMemoryLimit(-1); applied != want {
		t.Errorf("runtime limit = %d, want %d", applied, want)
	}
}

func TestConfigureFromEnvCustomRatio(t *testing.T) {
	resetLimit(t)
	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "1000000")
	t.Setenv("MEMORY_RATIO", "0.5")

	got := ConfigureFromEnv()
	if got.Limit != 500000 {
		t.Errorf("Limit = %d, want 500000", got.Limit)
	}
}

func TestConfigureFromEnvInvalidValues(t *testing.T) {
	resetLimit(t)

	tests := []struct {
		name  string
		limit string
		ratio string
	}{
		{"garbage limit", "lots", ""},
		{"negative limit", "-5", ""},
		{"zero limit", "0", "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GOMEMLIMIT", "")
			t.Setenv("MEMORY_LIMIT", tt.limit)
			t.Setenv("MEMORY_RATIO", tt.ratio)

			got := ConfigureFromEnv()
			if got.Configured {
				t.Errorf("ConfigureFromEnv() = %+v, want unconfigured", got)
			}
		})
	}
}

func TestConfigureFromEnvInvalidRatioFallsBack(t *testing.T) {
	resetLimit(t)
	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "1000000")
	t.Setenv("MEMORY_RATIO", "2.5")

	got := ConfigureFromEnv()
	want := int64(float64(1000000) * DefaultRatio)
	if got.Limit != want {
		t.Errorf("Limit = %d, want %d (default ratio)", got.Limit, want)
	}
}
