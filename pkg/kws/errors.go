package kws

import (
	"errors"

	"github.com/haivivi/kws/pkg/audio/window"
)

// Sentinel errors. Callers test for them with errors.Is; every error
// returned by this package wraps one of them with context.
var (
	// ErrOutOfRange is returned when a window or clip is requested past the
	// end. It is the same value as window.ErrOutOfRange.
	ErrOutOfRange = window.ErrOutOfRange

	// ErrSequenceViolation is returned when windows or results arrive out
	// of order.
	ErrSequenceViolation = errors.New("kws: sequence violation")

	// ErrShapeMismatch is returned when a feature matrix, tensor or label
	// table disagrees with the configured geometry.
	ErrShapeMismatch = errors.New("kws: shape mismatch")

	// ErrModelNotInitialized is returned when the model is not ready.
	ErrModelNotInitialized = errors.New("kws: model not initialized")

	// ErrEmptyOutputTensor is returned when the model output has no elements.
	ErrEmptyOutputTensor = errors.New("kws: empty output tensor")

	// ErrInferenceFailure wraps any error raised by Model.RunInference.
	ErrInferenceFailure = errors.New("kws: inference failed")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("kws: invalid config")
)
