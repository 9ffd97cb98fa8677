package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default()

	if cfg.JunkSizeThreshold != 10_000 {
		t.Errorf("JunkSizeThreshold = %d, want 10000", cfg.JunkSizeThreshold)
	}
	if cfg.NearDuplicateThreshold != 8 {
		t.Errorf("NearDuplicateThreshold = %d, want 8", cfg.NearDuplicateThreshold)
	}
	if cfg.VideoSampleFrames != 3 {
		t.Errorf("VideoSampleFrames = %d, want 3", cfg.VideoSampleFrames)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config failed validation: %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"empty scan dir", func(c *Config) { c.ScanDir = "" }, true},
		{"empty db path", func(c *Config) { c.DatabasePath = "" }, true},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, true},
		{"negative junk threshold", func(c *Config) { c.JunkSizeThreshold = -1 }, true},
		{"negative frames", func(c *Config) { c.VideoSampleFrames = -1 }, true},
		{"distance over bit width", func(c *Config) { c.NearDuplicateThreshold = 65 }, true},
		{"zero tool timeout", func(c *Config) { c.ToolTimeout = 0 }, true},
		{"zero frames allowed", func(c *Config) { c.VideoSampleFrames = 0 }, false},
		{"custom timeout", func(c *Config) { c.ToolTimeout = 5 * time.Second }, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitExtensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain list", ".jpg,.png", []string{".jpg", ".png"}},
		{"missing dots added", "jpg, png", []string{".jpg", ".png"}},
		{"case folded", ".JPG,.PnG", []string{".jpg", ".png"}},
		{"empty entries dropped", ".jpg,,  ,.png", []string{".jpg", ".png"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := splitExtensions(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitExtensions(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitExtensions(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestClassifierUsesConfiguredSets(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.ImageExtensions = []string{".abc"}
	cfg.VideoExtensions = []string{".def"}

	c := cfg.Classifier()
	if !c.IsMedia("x.abc") || !c.IsMedia("x.def") {
		t.Error("configured extensions not recognized")
	}
	if c.IsMedia("x.jpg") {
		t.Error("default extensions leaked into configured classifier")
	}
}
