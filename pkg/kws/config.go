package kws

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/kws/pkg/audio/mfcc"
)

// Config holds the pipeline geometry and post-processing settings.
//
// All sizes are in samples at SampleRate.
type Config struct {
	SampleRate  int `yaml:"sample_rate" json:"sample_rate"`
	WindowSize  int `yaml:"window_size" json:"window_size"`
	Stride      int `yaml:"stride" json:"stride"`
	FrameLength int `yaml:"frame_length" json:"frame_length"`
	FrameStride int `yaml:"frame_stride" json:"frame_stride"`

	// MFCC front-end.
	NumFbankBins int     `yaml:"num_fbank_bins" json:"num_fbank_bins"`
	MelLoFreq    float64 `yaml:"mel_lo_freq" json:"mel_lo_freq"`
	MelHiFreq    float64 `yaml:"mel_hi_freq" json:"mel_hi_freq"`
	NumFeatures  int     `yaml:"num_mfcc_features" json:"num_mfcc_features"`

	// Post-processing.
	ScoreThreshold float32 `yaml:"score_threshold" json:"score_threshold"`
	TopK           int     `yaml:"top_k" json:"top_k"`
	Softmax        bool    `yaml:"softmax" json:"softmax"`
}

// DefaultConfig returns MicroNet KWS settings: one second windows at
// 16 kHz advancing by half a second, 49 rows of 10 MFCC features.
func DefaultConfig() Config {
	return Config{
		SampleRate:     16000,
		WindowSize:     16000,
		Stride:         8000,
		FrameLength:    640,
		FrameStride:    320,
		NumFbankBins:   40,
		MelLoFreq:      20,
		MelHiFreq:      4000,
		NumFeatures:    10,
		ScoreThreshold: 0.7,
		TopK:           1,
		Softmax:        true,
	}
}

// LoadConfig reads a YAML file and overlays it on DefaultConfig.
// Keys absent from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("kws: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("kws: parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges and the relationships between sizes.
func (c Config) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	switch {
	case c.SampleRate <= 0:
		return bad("sample_rate must be positive, got %d", c.SampleRate)
	case c.WindowSize <= 0:
		return bad("window_size must be positive, got %d", c.WindowSize)
	case c.Stride <= 0 || c.Stride > c.WindowSize:
		return bad("stride must be in [1, %d], got %d", c.WindowSize, c.Stride)
	case c.FrameLength <= 0 || c.FrameLength > c.WindowSize:
		return bad("frame_length must be in [1, %d], got %d", c.WindowSize, c.FrameLength)
	case c.FrameStride <= 0:
		return bad("frame_stride must be positive, got %d", c.FrameStride)
	case c.NumFeatures <= 0:
		return bad("num_mfcc_features must be positive, got %d", c.NumFeatures)
	case c.ScoreThreshold < 0 || c.ScoreThreshold > 1:
		return bad("score_threshold must be in [0, 1], got %g", c.ScoreThreshold)
	case c.TopK < 1:
		return bad("top_k must be >= 1, got %d", c.TopK)
	}
	return nil
}

// Rows returns the number of feature rows per window.
func (c Config) Rows() int {
	return featureRows(c.WindowSize, c.FrameLength, c.FrameStride)
}

// Reusable reports whether consecutive windows share feature rows.
func (c Config) Reusable() bool {
	return c.Stride%c.FrameStride == 0
}

// MFCC returns the front-end configuration derived from c.
func (c Config) MFCC() mfcc.Config {
	return mfcc.Config{
		SampleRate:   c.SampleRate,
		FrameLength:  c.FrameLength,
		NumFbankBins: c.NumFbankBins,
		LowFreq:      c.MelLoFreq,
		HighFreq:     c.MelHiFreq,
		NumCoeffs:    c.NumFeatures,
	}
}

func featureRows(windowSize, frameLength, frameStride int) int {
	if frameStride <= 0 || windowSize < frameLength {
		return 0
	}
	return (windowSize-frameLength)/frameStride + 1
}
