package onnx

import (
	"errors"
	"fmt"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/haivivi/kws/pkg/kws"
	"github.com/haivivi/kws/pkg/tensor"
)

// ModelConfig describes an ONNX classification model.
//
// Names, shapes and types left empty are read from the model file.
// Dynamic dimensions (-1) resolve to 1.
type ModelConfig struct {
	Path string `yaml:"path"`

	InputName      string  `yaml:"input_name"`
	InputShape     []int   `yaml:"input_shape"`
	InputType      string  `yaml:"input_type"` // float32, int8 or uint8
	InputScale     float32 `yaml:"input_scale"`
	InputZeroPoint int32   `yaml:"input_zero_point"`

	OutputName      string  `yaml:"output_name"`
	OutputShape     []int   `yaml:"output_shape"`
	OutputType      string  `yaml:"output_type"`
	OutputScale     float32 `yaml:"output_scale"`
	OutputZeroPoint int32   `yaml:"output_zero_point"`

	// Threads sets intra-op parallelism. 0 keeps the runtime default.
	Threads int `yaml:"threads"`
}

// Model is an ONNX Runtime session with preallocated input and output
// tensors. It implements kws.Model.
type Model struct {
	session *ort.AdvancedSession
	in      *tensor.Tensor
	out     *tensor.Tensor
	values  []ort.Value
}

var _ kws.Model = (*Model)(nil)

// NewModel loads the model described by cfg. Init must have succeeded.
func NewModel(cfg ModelConfig) (*Model, error) {
	if cfg.Path == "" {
		return nil, errors.New("onnx: model path is required")
	}
	if !ort.IsInitialized() {
		return nil, ErrNoRuntime
	}
	if err := resolve(&cfg); err != nil {
		return nil, err
	}

	in, inVal, err := newTensor(cfg.InputType, cfg.InputShape, cfg.InputScale, cfg.InputZeroPoint)
	if err != nil {
		return nil, fmt.Errorf("onnx: input tensor: %w", err)
	}
	out, outVal, err := newTensor(cfg.OutputType, cfg.OutputShape, cfg.OutputScale, cfg.OutputZeroPoint)
	if err != nil {
		inVal.Destroy()
		return nil, fmt.Errorf("onnx: output tensor: %w", err)
	}

	var opts *ort.SessionOptions
	if cfg.Threads > 0 {
		opts, err = ort.NewSessionOptions()
		if err != nil {
			inVal.Destroy()
			outVal.Destroy()
			return nil, fmt.Errorf("onnx: session options: %w", err)
		}
		defer opts.Destroy()
		if err := opts.SetIntraOpNumThreads(cfg.Threads); err != nil {
			inVal.Destroy()
			outVal.Destroy()
			return nil, fmt.Errorf("onnx: set threads: %w", err)
		}
	}

	session, err := ort.NewAdvancedSession(cfg.Path,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.Value{inVal}, []ort.Value{outVal}, opts)
	if err != nil {
		inVal.Destroy()
		outVal.Destroy()
		return nil, fmt.Errorf("onnx: load %s: %w", cfg.Path, err)
	}

	return &Model{
		session: session,
		in:      in,
		out:     out,
		values:  []ort.Value{inVal, outVal},
	}, nil
}

// IsInited reports whether the session is open.
func (m *Model) IsInited() bool {
	return m != nil && m.session != nil
}

// InputTensor returns the tensor the session reads.
func (m *Model) InputTensor() *tensor.Tensor { return m.in }

// OutputTensor returns the tensor the session writes.
func (m *Model) OutputTensor() *tensor.Tensor { return m.out }

// RunInference runs the session on the current input tensor.
func (m *Model) RunInference() error {
	if !m.IsInited() {
		return kws.ErrModelNotInitialized
	}
	if err := m.session.Run(); err != nil {
		return fmt.Errorf("onnx: run: %w", err)
	}
	return nil
}

// Close releases the session and its tensors.
func (m *Model) Close() error {
	if m.session == nil {
		return nil
	}
	err := m.session.Destroy()
	for _, v := range m.values {
		err = errors.Join(err, v.Destroy())
	}
	m.session = nil
	m.values = nil
	return err
}

// resolve fills names, shapes and types missing from cfg using the model
// file's metadata.
func resolve(cfg *ModelConfig) error {
	if cfg.InputName != "" && cfg.OutputName != "" &&
		len(cfg.InputShape) > 0 && len(cfg.OutputShape) > 0 &&
		cfg.InputType != "" && cfg.OutputType != "" {
		return nil
	}
	inputs, outputs, err := ort.GetInputOutputInfo(cfg.Path)
	if err != nil {
		return fmt.Errorf("onnx: read model info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return fmt.Errorf("onnx: model %s has %d inputs and %d outputs", cfg.Path, len(inputs), len(outputs))
	}
	if err := fillFromInfo(&cfg.InputName, &cfg.InputShape, &cfg.InputType, inputs[0]); err != nil {
		return fmt.Errorf("onnx: input %q: %w", inputs[0].Name, err)
	}
	if err := fillFromInfo(&cfg.OutputName, &cfg.OutputShape, &cfg.OutputType, outputs[0]); err != nil {
		return fmt.Errorf("onnx: output %q: %w", outputs[0].Name, err)
	}
	return nil
}

func fillFromInfo(name *string, shape *[]int, typ *string, info ort.InputOutputInfo) error {
	if *name == "" {
		*name = info.Name
	}
	if len(*shape) == 0 {
		*shape = fromShape(info.Dimensions)
	}
	if *typ == "" {
		dt, err := fromElementType(info.DataType)
		if err != nil {
			return err
		}
		*typ = dt.String()
	}
	return nil
}

// newTensor allocates an ORT tensor and a tensor.Tensor viewing the same
// memory.
func newTensor(typ string, shape []int, scale float32, zeroPoint int32) (*tensor.Tensor, ort.Value, error) {
	dt, err := tensor.ParseDataType(typ)
	if err != nil {
		return nil, nil, err
	}
	if tensor.Elements(shape) <= 0 {
		return nil, nil, fmt.Errorf("invalid shape %v", shape)
	}
	if scale == 0 {
		scale = 1
	}
	t := &tensor.Tensor{Type: dt, Shape: shape, Scale: scale, ZeroPoint: zeroPoint}
	s := toShape(shape)

	switch dt {
	case tensor.Float32:
		v, err := ort.NewEmptyTensor[float32](s)
		if err != nil {
			return nil, nil, err
		}
		t.F32 = v.GetData()
		return t, v, nil
	case tensor.Int8:
		v, err := ort.NewEmptyTensor[int8](s)
		if err != nil {
			return nil, nil, err
		}
		t.I8 = v.GetData()
		return t, v, nil
	case tensor.Uint8:
		v, err := ort.NewEmptyTensor[uint8](s)
		if err != nil {
			return nil, nil, err
		}
		t.U8 = v.GetData()
		return t, v, nil
	}
	return nil, nil, fmt.Errorf("unsupported type %s", dt)
}

func toShape(dims []int) ort.Shape {
	s := make(ort.Shape, len(dims))
	for i, d := range dims {
		s[i] = int64(d)
	}
	return s
}

func fromShape(s ort.Shape) []int {
	dims := make([]int, len(s))
	for i, d := range s {
		if d < 1 {
			d = 1
		}
		dims[i] = int(d)
	}
	return dims
}

func fromElementType(t ort.TensorElementDataType) (tensor.DataType, error) {
	switch t {
	case ort.TensorElementDataTypeFloat:
		return tensor.Float32, nil
	case ort.TensorElementDataTypeInt8:
		return tensor.Int8, nil
	case ort.TensorElementDataTypeUint8:
		return tensor.Uint8, nil
	}
	return 0, fmt.Errorf("unsupported element type %v", t)
}
