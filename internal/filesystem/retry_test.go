package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func TestIsStale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"estale", syscall.ESTALE, true},
		{"wrapped estale", &os.PathError{Op: "stat", Path: "/x", Err: syscall.ESTALE}, true},
		{"enoent", syscall.ENOENT, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isStale(tt.err); got != tt.want {
				t.Errorf("isStale(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWithRetryRecoversFromStale(t *testing.T) {
	t.Parallel()

	attempts := 0
	got, err := withRetry("/x", "stat", fastConfig(), func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, &os.PathError{Op: "stat", Path: "/x", Err: syscall.ESTALE}
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("withRetry() error = %v", err)
	}
	if got != 42 || attempts != 3 {
		t.Errorf("got %d after %d attempts, want 42 after 3", got, attempts)
	}
}

func TestWithRetryGivesUpAfterBudget(t *testing.T) {
	t.Parallel()

	attempts := 0
	_, err := withRetry("/x", "open", fastConfig(), func() (int, error) {
		attempts++
		return 0, syscall.ESTALE
	})
	if !errors.Is(err, syscall.ESTALE) {
		t.Errorf("error = %v, want ESTALE", err)
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4 (initial + 3 retries)", attempts)
	}
}

func TestWithRetryPassesThroughOtherErrors(t *testing.T) {
	t.Parallel()

	attempts := 0
	_, err := withRetry("/x", "stat", fastConfig(), func() (int, error) {
		attempts++
		return 0, syscall.ENOENT
	})
	if !errors.Is(err, syscall.ENOENT) {
		t.Errorf("error = %v, want ENOENT", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on non-stale errors)", attempts)
	}
}

func TestStatAndOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	info, err := Stat(path, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size() != 5 {
		t.Errorf("Size() = %d, want 5", info.Size())
	}

	f, err := Open(path, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if _, err := Stat(filepath.Join(t.TempDir(), "nope"), DefaultRetryConfig()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Stat(missing) error = %v, want not-exist", err)
	}
}
