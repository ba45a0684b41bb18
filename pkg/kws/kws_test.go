package kws

import (
	"errors"

	"github.com/haivivi/kws/pkg/tensor"
)

// countingTransform writes the first and last sample of each frame as its
// two features and counts calls.
type countingTransform struct {
	calls  int
	err    error
	failAt int // fail on this call number when > 0
}

func (t *countingTransform) FeatureCount() int { return 2 }

func (t *countingTransform) Transform(dst []float32, frame []int16) error {
	t.calls++
	if t.failAt > 0 && t.calls == t.failAt {
		return t.err
	}
	dst[0] = float32(frame[0])
	dst[1] = float32(frame[len(frame)-1])
	return nil
}

// fakeModel returns fixed scores for every window, or with echo set,
// scores derived from the assembled input.
type fakeModel struct {
	inited bool
	in     *tensor.Tensor
	out    *tensor.Tensor
	scores []float32
	echo   bool
	runs   int
	failAt int // fail on this run number when > 0
}

var errFakeRuntime = errors.New("fake runtime error")

func newFakeModel(rows, cols int, scores ...float32) *fakeModel {
	return &fakeModel{
		inited: true,
		in:     tensor.New(tensor.Float32, 1, rows, cols),
		out:    tensor.New(tensor.Float32, 1, len(scores)),
		scores: scores,
	}
}

func (m *fakeModel) IsInited() bool               { return m.inited }
func (m *fakeModel) InputTensor() *tensor.Tensor  { return m.in }
func (m *fakeModel) OutputTensor() *tensor.Tensor { return m.out }

func (m *fakeModel) RunInference() error {
	m.runs++
	if m.failAt > 0 && m.runs == m.failAt {
		return errFakeRuntime
	}
	if !m.echo {
		copy(m.out.F32, m.scores)
		return nil
	}
	// Output k is the mean of every k-th input value, scaled to about [0, 1].
	n := len(m.out.F32)
	clear(m.out.F32)
	for i := range m.in.Len() {
		m.out.F32[i%n] += m.in.At(i)
	}
	for k := range m.out.F32 {
		m.out.F32[k] /= float32(m.in.Len()/n) * 30000
	}
	return nil
}

func newEchoModel(rows, cols, outputs int) *fakeModel {
	m := newFakeModel(rows, cols, make([]float32, outputs)...)
	m.echo = true
	return m
}

func ramp(n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(i % 30000)
	}
	return out
}
