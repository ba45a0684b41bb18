// Package mfcc computes mel-frequency cepstral coefficients from PCM16
// frames.
//
// This is the front-end of the MicroNet family of keyword-spotting models.
// One call to [Extractor.Transform] turns one frame of audio into one
// feature vector; the keyword-spotting pipeline caches those vectors across
// overlapping windows.
//
// Default parameters match MicroNet KWS:
//
//	SampleRate:   16000
//	FrameLength:  640 (40 ms)
//	NumFbankBins: 40
//	LowFreq:      20
//	HighFreq:     4000
//	NumCoeffs:    10
//
// Per frame: Hann window, zero-padded real FFT, power spectrum, HTK mel
// filterbank, natural log with a floor, DCT-II.
package mfcc

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// logFloor keeps log() finite on silent frames.
const logFloor = 1e-10

// Sentinel errors.
var (
	// ErrFrameLength is returned when a frame does not hold FrameLength samples.
	ErrFrameLength = errors.New("mfcc: wrong frame length")

	// ErrFeatureLength is returned when the destination cannot hold NumCoeffs values.
	ErrFeatureLength = errors.New("mfcc: wrong feature length")
)

// Config controls MFCC extraction parameters.
type Config struct {
	SampleRate   int     `yaml:"sample_rate"`    // Hz (default 16000)
	FrameLength  int     `yaml:"frame_length"`   // samples per frame (default 640)
	NumFbankBins int     `yaml:"num_fbank_bins"` // mel filters (default 40)
	LowFreq      float64 `yaml:"mel_lo_freq"`    // lowest filter edge in Hz (default 20)
	HighFreq     float64 `yaml:"mel_hi_freq"`    // highest filter edge in Hz (default 4000)
	NumCoeffs    int     `yaml:"num_mfcc_features"`
}

// DefaultConfig returns the MicroNet KWS front-end configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:   16000,
		FrameLength:  640,
		NumFbankBins: 40,
		LowFreq:      20,
		HighFreq:     4000,
		NumCoeffs:    10,
	}
}

// FFTSize returns the FFT length: the next power of two >= FrameLength.
func (c Config) FFTSize() int {
	return nextPow2(c.FrameLength)
}

// Validate checks that the configuration describes a usable filterbank.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("mfcc: sample_rate must be positive, got %d", c.SampleRate)
	case c.FrameLength < 2:
		return fmt.Errorf("mfcc: frame_length must be >= 2, got %d", c.FrameLength)
	case c.NumFbankBins <= 0:
		return fmt.Errorf("mfcc: num_fbank_bins must be positive, got %d", c.NumFbankBins)
	case c.NumCoeffs <= 0 || c.NumCoeffs > c.NumFbankBins:
		return fmt.Errorf("mfcc: num_mfcc_features must be in [1, %d], got %d", c.NumFbankBins, c.NumCoeffs)
	case c.LowFreq < 0 || c.HighFreq <= c.LowFreq || c.HighFreq > float64(c.SampleRate)/2:
		return fmt.Errorf("mfcc: invalid mel range [%g, %g] for %d Hz", c.LowFreq, c.HighFreq, c.SampleRate)
	}
	return nil
}

// Extractor computes MFCC vectors one frame at a time.
//
// An Extractor reuses internal work buffers and is not safe for concurrent
// use.
type Extractor struct {
	cfg     Config
	window  []float64
	fft     *fourier.FFT
	melBank *mat.Dense
	dct     *mat.Dense

	frame  []float64
	coeffs []complex128
	power  *mat.VecDense
	mel    *mat.VecDense
	cep    *mat.VecDense
}

// New creates an Extractor for cfg.
func New(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	nfft := cfg.FFTSize()
	halfFFT := nfft/2 + 1
	return &Extractor{
		cfg:     cfg,
		window:  hannWindow(cfg.FrameLength),
		fft:     fourier.NewFFT(nfft),
		melBank: melFilterBank(cfg.NumFbankBins, nfft, cfg.SampleRate, cfg.LowFreq, cfg.HighFreq),
		dct:     dctMatrix(cfg.NumCoeffs, cfg.NumFbankBins),
		frame:   make([]float64, nfft),
		coeffs:  make([]complex128, halfFFT),
		power:   mat.NewVecDense(halfFFT, nil),
		mel:     mat.NewVecDense(cfg.NumFbankBins, nil),
		cep:     mat.NewVecDense(cfg.NumCoeffs, nil),
	}, nil
}

// Config returns the extractor configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// FeatureCount returns the length of each feature vector.
func (e *Extractor) FeatureCount() int {
	return e.cfg.NumCoeffs
}

// FrameLength returns the number of samples consumed per vector.
func (e *Extractor) FrameLength() int {
	return e.cfg.FrameLength
}

// Transform computes the MFCC vector of one frame into dst.
// len(frame) must equal FrameLength and len(dst) must equal FeatureCount.
func (e *Extractor) Transform(dst []float32, frame []int16) error {
	if len(frame) != e.cfg.FrameLength {
		return fmt.Errorf("%w: got %d, want %d", ErrFrameLength, len(frame), e.cfg.FrameLength)
	}
	if len(dst) != e.cfg.NumCoeffs {
		return fmt.Errorf("%w: got %d, want %d", ErrFeatureLength, len(dst), e.cfg.NumCoeffs)
	}

	// Window; the zero padding past FrameLength is never written.
	for i, s := range frame {
		e.frame[i] = float64(s) / 32768.0 * e.window[i]
	}

	e.fft.Coefficients(e.coeffs, e.frame)
	for k, c := range e.coeffs {
		re, im := real(c), imag(c)
		e.power.SetVec(k, re*re+im*im)
	}

	e.mel.MulVec(e.melBank, e.power)
	for m := 0; m < e.mel.Len(); m++ {
		e.mel.SetVec(m, math.Log(max(e.mel.AtVec(m), logFloor)))
	}

	e.cep.MulVec(e.dct, e.mel)
	for i := range dst {
		dst[i] = float32(e.cep.AtVec(i))
	}
	return nil
}
