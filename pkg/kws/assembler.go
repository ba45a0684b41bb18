package kws

import (
	"fmt"

	"github.com/haivivi/kws/pkg/tensor"
)

// Assemble writes m into the model input tensor, quantizing each value to
// the tensor's element type with its scale and zero point.
//
// The matrix must fill the tensor exactly:
// Rows * Cols * element size == in.Bytes().
func Assemble(m Matrix, in *tensor.Tensor) error {
	if in == nil {
		return fmt.Errorf("%w: nil input tensor", ErrShapeMismatch)
	}
	n := m.Rows * m.Cols
	if len(m.Data) != n {
		return fmt.Errorf("%w: matrix %dx%d holds %d values", ErrShapeMismatch, m.Rows, m.Cols, len(m.Data))
	}
	if n*in.Type.Size() != in.Bytes() {
		return fmt.Errorf("%w: %dx%d %s features (%d bytes) into %s (%d bytes)",
			ErrShapeMismatch, m.Rows, m.Cols, in.Type, n*in.Type.Size(), in, in.Bytes())
	}
	switch in.Type {
	case tensor.Float32:
		copy(in.F32, m.Data)
	default:
		for i, v := range m.Data {
			in.Set(i, v)
		}
	}
	return nil
}
