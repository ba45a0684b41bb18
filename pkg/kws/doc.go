// Package kws implements sliding-window keyword spotting over finite PCM16
// clips.
//
// # Architecture
//
// A clip is processed one window at a time, strictly in order:
//
//  1. window.Slicer: clip → fixed-size windows advancing by Stride
//  2. FeatureCache: window → feature matrix, reusing overlapping rows
//  3. Assemble: matrix → model input tensor (float32, int8 or uint8)
//  4. Model.RunInference: input tensor → score tensor
//  5. ScoreFilter: scores → top-K labels above the threshold
//  6. Aggregator: one time-stamped Result per window
//
// # Feature Reuse
//
// With the default geometry (16000-sample windows, 8000-sample stride,
// 640-sample frames every 320 samples) each window has 49 rows and
// consecutive windows share 24 of them:
//
//	window 0: compute rows 0..48                       49 transform calls
//	window 1: rows 0..23 ← old 25..48, compute 24..48  25 transform calls
//
// # Errors
//
// Every failure wraps one of the package sentinels (ErrSequenceViolation,
// ErrShapeMismatch and so on). The first error aborts the clip and its
// partial results are discarded; nothing is retried.
package kws
