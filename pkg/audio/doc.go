// Package audio provides audio processing utilities for keyword spotting.
//
// This package serves as an umbrella for audio-related sub-packages:
//
//   - pcm: mono PCM16 clip buffers
//   - window: sliding windows over sample buffers
//   - mfcc: MFCC feature extraction
//   - resampler: sample rate conversion and downmixing
//
// Example usage:
//
//	import (
//	    "github.com/haivivi/kws/pkg/audio/mfcc"
//	    "github.com/haivivi/kws/pkg/audio/window"
//	)
//
//	ex, _ := mfcc.New(mfcc.DefaultConfig())
//	frames, _ := window.New(samples, ex.FrameLength(), 320)
//	row := make([]float32, ex.FeatureCount())
//	for frames.HasNext() {
//	    f, _ := frames.Next()
//	    ex.Transform(row, f.Samples)
//	    ...
//	}
package audio
