package kws

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Rows() != 49 {
		t.Errorf("Rows = %d, want 49", cfg.Rows())
	}
	if !cfg.Reusable() {
		t.Error("default geometry should reuse rows")
	}
	m := cfg.MFCC()
	if m.FrameLength != 640 || m.NumCoeffs != 10 || m.NumFbankBins != 40 {
		t.Errorf("MFCC config = %+v", m)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("derived MFCC config invalid: %v", err)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kws.yaml")
	data := "score_threshold: 0.5\ntop_k: 3\nsoftmax: false\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ScoreThreshold != 0.5 || cfg.TopK != 3 || cfg.Softmax {
		t.Errorf("overlaid values not applied: %+v", cfg)
	}
	if cfg.WindowSize != 16000 || cfg.Stride != 8000 || cfg.NumFeatures != 10 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()

	rangePath := filepath.Join(dir, "range.yaml")
	os.WriteFile(rangePath, []byte("score_threshold: 1.5\n"), 0644)
	if _, err := LoadConfig(rangePath); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	syntaxPath := filepath.Join(dir, "syntax.yaml")
	os.WriteFile(syntaxPath, []byte("top_k: [1, 2\n"), 0644)
	if _, err := LoadConfig(syntaxPath); err == nil {
		t.Error("expected parse error")
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestValidateRanges(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.SampleRate = 0 },
		func(c *Config) { c.WindowSize = 0 },
		func(c *Config) { c.Stride = 0 },
		func(c *Config) { c.Stride = c.WindowSize + 1 },
		func(c *Config) { c.FrameLength = c.WindowSize + 1 },
		func(c *Config) { c.FrameStride = 0 },
		func(c *Config) { c.NumFeatures = 0 },
		func(c *Config) { c.ScoreThreshold = -0.1 },
		func(c *Config) { c.TopK = 0 },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("case %d: expected ErrInvalidConfig, got %v", i, err)
		}
	}
}
