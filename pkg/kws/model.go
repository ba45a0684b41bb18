package kws

import "github.com/haivivi/kws/pkg/tensor"

// Model is the inference boundary of the pipeline.
//
// The pipeline writes features directly into InputTensor, calls
// RunInference once per window, and reads class scores from OutputTensor.
// Implementations own both tensors; their shapes must not change after
// IsInited reports true.
//
// Implementations:
//   - onnx.Model: ONNX Runtime session with preallocated tensors
type Model interface {
	// IsInited reports whether the model is loaded and its tensors are
	// allocated.
	IsInited() bool

	// InputTensor returns the tensor the model reads features from.
	InputTensor() *tensor.Tensor

	// OutputTensor returns the tensor the model writes scores to.
	OutputTensor() *tensor.Tensor

	// RunInference runs the model synchronously on the current input.
	RunInference() error
}

// Transform converts one frame of PCM16 audio into a feature vector.
//
// Implementations:
//   - mfcc.Extractor: MFCC front-end
type Transform interface {
	// FeatureCount returns the length of every vector written by Transform.
	FeatureCount() int

	// Transform writes the features of frame into dst.
	Transform(dst []float32, frame []int16) error
}
