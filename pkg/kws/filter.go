package kws

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/haivivi/kws/pkg/tensor"
)

// Candidate is one label with its normalized score.
type Candidate struct {
	Label string  `json:"label" yaml:"label" msgpack:"label"`
	Score float32 `json:"score" yaml:"score" msgpack:"score"`
}

// ScoreFilter turns a model output tensor into ranked candidates.
//
// Scores are dequantized, optionally passed through softmax, and sorted in
// descending order. Equal scores keep label-table order. At most TopK
// candidates are kept and any below Threshold are dropped, so the result
// may be empty.
type ScoreFilter struct {
	Labels    []string
	Threshold float32
	TopK      int
	Softmax   bool

	scores []float32
	order  []int
}

// Filter applies a ScoreFilter without softmax: scores are used as the
// model reports them.
func Filter(out *tensor.Tensor, labels []string, threshold float32, topK int) ([]Candidate, error) {
	f := ScoreFilter{Labels: labels, Threshold: threshold, TopK: topK}
	return f.Apply(out)
}

// Apply ranks and filters the scores in out. It does not modify out.
func (f *ScoreFilter) Apply(out *tensor.Tensor) ([]Candidate, error) {
	if out == nil || out.Len() == 0 {
		return nil, ErrEmptyOutputTensor
	}
	n := out.Len()
	if len(f.Labels) != n {
		return nil, fmt.Errorf("%w: %d labels for %d scores", ErrShapeMismatch, len(f.Labels), n)
	}

	f.scores = out.Floats(f.scores)
	if f.Softmax {
		softmax(f.scores)
	}

	f.order = f.order[:0]
	for i := range n {
		f.order = append(f.order, i)
	}
	slices.SortStableFunc(f.order, func(a, b int) int {
		return cmp.Compare(f.scores[b], f.scores[a])
	})

	k := min(max(f.TopK, 1), n)
	var kept []Candidate
	for _, i := range f.order[:k] {
		if f.scores[i] < f.Threshold {
			break
		}
		kept = append(kept, Candidate{Label: f.Labels[i], Score: f.scores[i]})
	}
	return kept, nil
}

// softmax normalizes v in place.
func softmax(v []float32) {
	hi := slices.Max(v)
	var sum float64
	for i, x := range v {
		e := math.Exp(float64(x - hi))
		v[i] = float32(e)
		sum += e
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / sum)
	}
}
