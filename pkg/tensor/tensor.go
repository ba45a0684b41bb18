// Package tensor describes the fixed-shape numeric buffers exchanged with a
// classification model.
//
// A [Tensor] does not own an inference runtime. It is a typed view over the
// memory a model reads its input from and writes its output to, plus the
// affine quantization parameters needed to move values between the model's
// fixed-point domain and float32:
//
//	real = (q - ZeroPoint) * Scale
//	q    = round(real / Scale) + ZeroPoint
//
// Exactly one of F32, I8 or U8 is non-nil, selected by Type.
package tensor

import (
	"fmt"
	"math"
)

// DataType is the element type of a tensor.
type DataType int

const (
	// Float32 stores IEEE-754 single precision values.
	Float32 DataType = iota
	// Int8 stores signed 8-bit quantized values.
	Int8
	// Uint8 stores unsigned 8-bit quantized values.
	Uint8
)

func (d DataType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	default:
		return fmt.Sprintf("DataType(%d)", int(d))
	}
}

// Size returns the size of one element in bytes.
func (d DataType) Size() int {
	switch d {
	case Float32:
		return 4
	case Int8, Uint8:
		return 1
	}
	panic("tensor: invalid data type")
}

// ParseDataType parses "float32", "int8" or "uint8".
func ParseDataType(s string) (DataType, error) {
	switch s {
	case "float32", "float", "f32":
		return Float32, nil
	case "int8", "i8":
		return Int8, nil
	case "uint8", "u8":
		return Uint8, nil
	}
	return 0, fmt.Errorf("tensor: unknown data type %q", s)
}

// Tensor is a typed, shaped view over model memory.
type Tensor struct {
	Type  DataType
	Shape []int

	// Scale and ZeroPoint are the affine quantization parameters.
	// Ignored for Float32 tensors.
	Scale     float32
	ZeroPoint int32

	F32 []float32
	I8  []int8
	U8  []uint8
}

// New allocates a zeroed tensor of the given type and shape.
func New(dt DataType, shape ...int) *Tensor {
	t := &Tensor{Type: dt, Shape: append([]int(nil), shape...), Scale: 1}
	n := Elements(shape)
	switch dt {
	case Float32:
		t.F32 = make([]float32, n)
	case Int8:
		t.I8 = make([]int8, n)
	case Uint8:
		t.U8 = make([]uint8, n)
	default:
		panic("tensor: invalid data type")
	}
	return t
}

// Elements returns the product of the shape dimensions.
func Elements(shape []int) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Len returns the number of elements backing the tensor.
func (t *Tensor) Len() int {
	switch t.Type {
	case Float32:
		return len(t.F32)
	case Int8:
		return len(t.I8)
	case Uint8:
		return len(t.U8)
	}
	return 0
}

// Bytes returns the size of the backing buffer in bytes.
func (t *Tensor) Bytes() int {
	return t.Len() * t.Type.Size()
}

// Set stores real value v at element i, quantizing it for 8-bit tensors.
// Values outside the representable range saturate.
func (t *Tensor) Set(i int, v float32) {
	switch t.Type {
	case Float32:
		t.F32[i] = v
	case Int8:
		t.I8[i] = int8(t.quantize(v, math.MinInt8, math.MaxInt8))
	case Uint8:
		t.U8[i] = uint8(t.quantize(v, 0, math.MaxUint8))
	}
}

// At returns element i as a real value, dequantizing 8-bit tensors.
func (t *Tensor) At(i int) float32 {
	switch t.Type {
	case Float32:
		return t.F32[i]
	case Int8:
		return float32(int32(t.I8[i])-t.ZeroPoint) * t.Scale
	case Uint8:
		return float32(int32(t.U8[i])-t.ZeroPoint) * t.Scale
	}
	return 0
}

func (t *Tensor) quantize(v float32, lo, hi int32) int32 {
	scale := t.Scale
	if scale == 0 {
		scale = 1
	}
	x := float64(v) / float64(scale)
	if math.IsNaN(x) {
		return min(max(t.ZeroPoint, lo), hi)
	}
	q := math.Round(x) + float64(t.ZeroPoint)
	return int32(min(max(q, float64(lo)), float64(hi)))
}

// Floats dequantizes the whole tensor into dst, allocating when dst is too
// short, and returns it.
func (t *Tensor) Floats(dst []float32) []float32 {
	n := t.Len()
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = t.At(i)
	}
	return dst
}

func (t *Tensor) String() string {
	return fmt.Sprintf("tensor(%s, %v, scale=%g, zp=%d)", t.Type, t.Shape, t.Scale, t.ZeroPoint)
}
