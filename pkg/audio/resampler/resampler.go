// Package resampler converts PCM16 clips between sample rates and channel
// layouts.
//
// Rate conversion uses a pure Go resampler (no CGO/FFI dependencies) at
// high quality:
//
//	buf, err := resampler.Resample(clip, 16000)
//	if err != nil {
//	    return err
//	}
//
// Clips are converted whole. Keyword-spotting clips are a few seconds
// long, so no streaming interface is offered.
package resampler

import (
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/haivivi/kws/pkg/audio/pcm"
)

// Resample converts buf to the given sample rate. A buffer already at rate
// is returned unchanged.
func Resample(buf pcm.Buffer, rate int) (pcm.Buffer, error) {
	if rate <= 0 {
		return pcm.Buffer{}, fmt.Errorf("resampler: invalid target rate %d", rate)
	}
	if buf.SampleRate() <= 0 {
		return pcm.Buffer{}, fmt.Errorf("resampler: invalid source rate %d", buf.SampleRate())
	}
	if buf.SampleRate() == rate || buf.Len() == 0 {
		return pcm.Wrap(buf.Samples(), rate), nil
	}

	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(buf.SampleRate()),
		OutputRate: float64(rate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return pcm.Buffer{}, fmt.Errorf("failed to create resampler: %w", err)
	}

	output, err := r.ProcessFloat32(buf.Float32())
	if err != nil {
		return pcm.Buffer{}, fmt.Errorf("resample error: %w", err)
	}
	tail, err := r.Flush()
	if err != nil {
		return pcm.Buffer{}, fmt.Errorf("resample flush: %w", err)
	}

	// The filter tail may run a few samples long or short; the result
	// always covers the source duration exactly.
	samples := make([]float32, outputLen(buf.Len(), buf.SampleRate(), rate))
	n := copy(samples, output)
	for i := n; i < len(samples) && i-n < len(tail); i++ {
		samples[i] = float32(tail[i-n])
	}
	return pcm.FromFloat32(samples, rate), nil
}

// outputLen returns the number of samples n samples at srcRate occupy at
// rate.
func outputLen(n, srcRate, rate int) int {
	return int(math.Round(float64(n) * float64(rate) / float64(srcRate)))
}

// Downmix averages interleaved multi-channel samples into mono.
// Trailing samples that do not form a full frame are dropped.
func Downmix(interleaved []int16, channels int) []int16 {
	if channels <= 1 {
		return interleaved
	}
	n := len(interleaved) / channels
	mono := make([]int16, n)
	for i := range mono {
		var sum int32
		for c := range channels {
			sum += int32(interleaved[i*channels+c])
		}
		mono[i] = int16(sum / int32(channels))
	}
	return mono
}
