package kws

import (
	"fmt"
	"slices"
)

// Result is the classification of one window.
type Result struct {
	// Candidates holds the filtered labels, best first. Empty when nothing
	// cleared the threshold.
	Candidates []Candidate `json:"candidates" yaml:"candidates" msgpack:"candidates"`

	// Timestamp is the window start in seconds from the clip start.
	Timestamp float64 `json:"timestamp" yaml:"timestamp" msgpack:"timestamp"`

	// Index is the 0-based inference number within the clip.
	Index int `json:"inference_index" yaml:"inference_index" msgpack:"inference_index"`

	// Threshold is the score threshold the candidates were filtered with.
	Threshold float32 `json:"threshold" yaml:"threshold" msgpack:"threshold"`
}

// Aggregator collects per-window results for one clip in inference order.
// The zero value is ready to use.
type Aggregator struct {
	results []Result
}

// Append records the result of window index. Indexes must be strictly
// increasing within a clip; results are never reordered or deduplicated.
func (a *Aggregator) Append(candidates []Candidate, timestamp float64, index int, threshold float32) error {
	if index < 0 {
		return fmt.Errorf("%w: negative inference index %d", ErrSequenceViolation, index)
	}
	if n := len(a.results); n > 0 && index <= a.results[n-1].Index {
		return fmt.Errorf("%w: inference %d after %d", ErrSequenceViolation, index, a.results[n-1].Index)
	}
	a.results = append(a.results, Result{
		Candidates: slices.Clone(candidates),
		Timestamp:  timestamp,
		Index:      index,
		Threshold:  threshold,
	})
	return nil
}

// Len returns the number of results collected so far.
func (a *Aggregator) Len() int {
	return len(a.results)
}

// Finalize returns the collected results and resets the aggregator for the
// next clip.
func (a *Aggregator) Finalize() []Result {
	out := a.results
	a.results = nil
	return out
}

// Discard drops any partial results.
func (a *Aggregator) Discard() {
	a.results = nil
}
