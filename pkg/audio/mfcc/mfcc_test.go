package mfcc

import (
	"errors"
	"math"
	"testing"
)

func sine(n int, freq, amp float64, sampleRate int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amp * 32767 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestHannWindow(t *testing.T) {
	w := hannWindow(640)
	if w[0] != 0 {
		t.Errorf("w[0] = %f, want 0", w[0])
	}
	if math.Abs(w[320]-1.0) > 1e-9 {
		t.Errorf("w[320] = %f, want 1.0", w[320])
	}
	if math.Abs(w[1]-w[639]) > 1e-9 {
		t.Errorf("window not symmetric: w[1]=%f w[639]=%f", w[1], w[639])
	}
}

func TestMelRoundTrip(t *testing.T) {
	for _, hz := range []float64{0, 20, 440, 1000, 4000, 8000} {
		back := melToHz(hzToMel(hz))
		if math.Abs(back-hz) > 1e-6 {
			t.Errorf("melToHz(hzToMel(%f)) = %f", hz, back)
		}
	}
}

func TestMelFilterBank(t *testing.T) {
	cfg := DefaultConfig()
	bank := melFilterBank(cfg.NumFbankBins, cfg.FFTSize(), cfg.SampleRate, cfg.LowFreq, cfg.HighFreq)
	rows, cols := bank.Dims()
	if rows != 40 || cols != 513 {
		t.Fatalf("dims = %dx%d, want 40x513", rows, cols)
	}
	for m := 0; m < rows; m++ {
		var sum float64
		for k := 0; k < cols; k++ {
			w := bank.At(m, k)
			if w < 0 || w > 1 {
				t.Fatalf("filter %d bin %d weight %f out of [0,1]", m, k, w)
			}
			sum += w
		}
		if sum == 0 {
			t.Errorf("filter %d is empty", m)
		}
	}
	// Nothing above HighFreq.
	for k := 4000*1024/16000 + 1; k < cols; k++ {
		for m := 0; m < rows; m++ {
			if bank.At(m, k) != 0 {
				t.Fatalf("filter %d has weight at bin %d above high freq", m, k)
			}
		}
	}
}

func TestDCTOrthogonalRows(t *testing.T) {
	d := dctMatrix(10, 40)
	// Rows k >= 1 are orthonormal under the sqrt(2/N) scaling.
	for a := 1; a < 10; a++ {
		for b := 1; b < 10; b++ {
			var dot float64
			for n := 0; n < 40; n++ {
				dot += d.At(a, n) * d.At(b, n)
			}
			want := 0.0
			if a == b {
				want = 1.0
			}
			if math.Abs(dot-want) > 1e-9 {
				t.Errorf("row %d . row %d = %f, want %f", a, b, dot, want)
			}
		}
	}
}

func TestTransformDeterministic(t *testing.T) {
	e := newExtractor(t)
	frame := sine(640, 1000, 0.5, 16000)

	a := make([]float32, e.FeatureCount())
	b := make([]float32, e.FeatureCount())
	if err := e.Transform(a, frame); err != nil {
		t.Fatal(err)
	}
	// Run something else through the work buffers in between.
	if err := e.Transform(b, sine(640, 300, 0.9, 16000)); err != nil {
		t.Fatal(err)
	}
	if err := e.Transform(b, frame); err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("coeff %d: %f != %f", i, a[i], b[i])
		}
	}
}

func TestTransformSilenceFinite(t *testing.T) {
	e := newExtractor(t)
	dst := make([]float32, e.FeatureCount())
	if err := e.Transform(dst, make([]int16, 640)); err != nil {
		t.Fatal(err)
	}
	for i, v := range dst {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("coeff %d = %f", i, v)
		}
	}
	// c0 is proportional to the summed log floor.
	want := math.Sqrt(2.0/40.0) * 40 * math.Log(logFloor)
	if math.Abs(float64(dst[0])-want) > 1e-3 {
		t.Errorf("silence c0 = %f, want %f", dst[0], want)
	}
}

func TestTransformLoudnessRaisesC0(t *testing.T) {
	e := newExtractor(t)
	quiet := make([]float32, e.FeatureCount())
	loud := make([]float32, e.FeatureCount())
	e.Transform(quiet, sine(640, 1000, 0.05, 16000))
	e.Transform(loud, sine(640, 1000, 0.8, 16000))
	if loud[0] <= quiet[0] {
		t.Errorf("c0 loud = %f, quiet = %f; expected loud > quiet", loud[0], quiet[0])
	}
}

func TestTransformErrors(t *testing.T) {
	e := newExtractor(t)
	if err := e.Transform(make([]float32, 10), make([]int16, 100)); !errors.Is(err, ErrFrameLength) {
		t.Errorf("expected ErrFrameLength, got %v", err)
	}
	if err := e.Transform(make([]float32, 3), make([]int16, 640)); !errors.Is(err, ErrFeatureLength) {
		t.Errorf("expected ErrFeatureLength, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.SampleRate = 0 },
		func(c *Config) { c.FrameLength = 1 },
		func(c *Config) { c.NumFbankBins = 0 },
		func(c *Config) { c.NumCoeffs = 41 },
		func(c *Config) { c.HighFreq = 9000 },
		func(c *Config) { c.LowFreq = 5000 },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}
