package kws

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/haivivi/kws/pkg/audio/pcm"
)

// ClipSource provides indexed clips.
//
// Implementations:
//   - clips.Catalog: clips stored in a blob store
type ClipSource interface {
	Len() int
	Name(i int) string
	Load(ctx context.Context, i int) (pcm.Buffer, error)
}

// ClipReport is the outcome of classifying one clip.
type ClipReport struct {
	RunID     string    `json:"run_id" yaml:"run_id" msgpack:"run_id"`
	ClipIndex int       `json:"clip_index" yaml:"clip_index" msgpack:"clip_index"`
	ClipName  string    `json:"clip_name" yaml:"clip_name" msgpack:"clip_name"`
	Results   []Result  `json:"results" yaml:"results" msgpack:"results"`
	Stats     Stats     `json:"stats" yaml:"stats" msgpack:"stats"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at" msgpack:"created_at"`
}

// Report classifies buf and wraps the results in a ClipReport with a fresh
// run ID.
func (p *Pipeline) Report(ctx context.Context, name string, index int, buf pcm.Buffer) (ClipReport, error) {
	results, stats, err := p.classify(ctx, buf)
	if err != nil {
		return ClipReport{}, fmt.Errorf("kws: clip %d (%s): %w", index, name, err)
	}
	return ClipReport{
		RunID:     uuid.NewString(),
		ClipIndex: index,
		ClipName:  name,
		Results:   results,
		Stats:     stats,
		CreatedAt: time.Now(),
	}, nil
}

// ClassifyClips classifies clip start of src and passes its report to fn.
// When all is true it continues with the following clips, wrapping around
// the end of src, until every clip has been processed once.
//
// Processing stops at the first error from loading, classification or fn.
func (p *Pipeline) ClassifyClips(ctx context.Context, src ClipSource, start int, all bool, fn func(ClipReport) error) error {
	n := src.Len()
	if start < 0 || start >= n {
		return fmt.Errorf("%w: clip %d of %d", ErrOutOfRange, start, n)
	}

	count := 1
	if all {
		count = n
	}
	for i := range count {
		if err := ctx.Err(); err != nil {
			return err
		}
		idx := (start + i) % n
		name := src.Name(idx)

		buf, err := src.Load(ctx, idx)
		if err != nil {
			return fmt.Errorf("kws: load clip %d (%s): %w", idx, name, err)
		}
		report, err := p.Report(ctx, name, idx, buf)
		if err != nil {
			return err
		}
		p.logger.Info("kws: clip classified",
			"clip", name,
			"index", idx,
			"windows", report.Stats.Windows,
			"transform_calls", report.Stats.TransformCalls,
			"mean_inference", report.Stats.MeanInference())

		if err := fn(report); err != nil {
			return err
		}
	}
	return nil
}
