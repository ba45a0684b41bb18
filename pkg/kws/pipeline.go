package kws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/haivivi/kws/pkg/audio/pcm"
	"github.com/haivivi/kws/pkg/audio/window"
)

// Stats summarizes the work done for one clip.
type Stats struct {
	Windows        int           `json:"windows" yaml:"windows" msgpack:"windows"`
	TransformCalls int           `json:"transform_calls" yaml:"transform_calls" msgpack:"transform_calls"`
	InferenceTime  time.Duration `json:"inference_time" yaml:"inference_time" msgpack:"inference_time"`
}

// MeanInference returns the average model time per window.
func (s Stats) MeanInference() time.Duration {
	if s.Windows == 0 {
		return 0
	}
	return s.InferenceTime / time.Duration(s.Windows)
}

// Pipeline classifies clips window by window.
//
//	slicer -> feature cache -> Assemble -> Model -> ScoreFilter -> Aggregator
//
// A Pipeline owns its cache, aggregator and the model tensors while a clip
// is processed. It is not safe for concurrent use; callers serialize clips.
type Pipeline struct {
	cfg    Config
	model  Model
	cache  *FeatureCache
	filter ScoreFilter
	agg    Aggregator
	logger *slog.Logger
}

// New creates a Pipeline.
//
// The model must be initialized, its input must hold exactly
// cfg.Rows() x transform.FeatureCount() values, and its output must hold
// one score per label.
func New(cfg Config, model Model, transform Transform, labels []string, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if model == nil || !model.IsInited() {
		return nil, ErrModelNotInitialized
	}
	o := buildOptions(opts)

	cache, err := NewFeatureCache(transform, cfg.WindowSize, cfg.Stride, cfg.FrameLength, cfg.FrameStride, opts...)
	if err != nil {
		return nil, err
	}

	in, out := model.InputTensor(), model.OutputTensor()
	if in == nil || out == nil {
		return nil, fmt.Errorf("%w: model has no tensors", ErrModelNotInitialized)
	}
	if want := cache.Rows() * cache.Cols(); in.Len() != want {
		return nil, fmt.Errorf("%w: model input %v holds %d values, want %d rows x %d features",
			ErrShapeMismatch, in.Shape, in.Len(), cache.Rows(), cache.Cols())
	}
	if out.Len() == 0 {
		return nil, ErrEmptyOutputTensor
	}
	if out.Len() != len(labels) {
		return nil, fmt.Errorf("%w: %d labels for %d model outputs", ErrShapeMismatch, len(labels), out.Len())
	}

	return &Pipeline{
		cfg:   cfg,
		model: model,
		cache: cache,
		filter: ScoreFilter{
			Labels:    append([]string(nil), labels...),
			Threshold: cfg.ScoreThreshold,
			TopK:      cfg.TopK,
			Softmax:   cfg.Softmax,
		},
		logger: o.logger,
	}, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Labels returns the label table.
func (p *Pipeline) Labels() []string {
	return p.filter.Labels
}

// ClassifyClip runs every window of buf through the model and returns one
// result per window in order. A clip shorter than one window yields no
// results and no error.
//
// The first error aborts the clip; partial results are discarded.
func (p *Pipeline) ClassifyClip(ctx context.Context, buf pcm.Buffer) ([]Result, error) {
	results, _, err := p.classify(ctx, buf)
	return results, err
}

func (p *Pipeline) classify(ctx context.Context, buf pcm.Buffer) ([]Result, Stats, error) {
	var stats Stats
	if buf.SampleRate() != p.cfg.SampleRate {
		return nil, stats, fmt.Errorf("%w: clip at %d Hz, pipeline at %d Hz",
			ErrShapeMismatch, buf.SampleRate(), p.cfg.SampleRate)
	}

	slicer, err := window.New(buf.Samples(), p.cfg.WindowSize, p.cfg.Stride)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	p.cache.Reset()
	p.agg.Discard()

	if slicer.Len() == 0 {
		p.logger.Warn("kws: clip shorter than one window",
			"samples", buf.Len(), "window_size", p.cfg.WindowSize)
		return nil, stats, nil
	}

	computed := p.cache.Computed()
	for slicer.HasNext() {
		if err := ctx.Err(); err != nil {
			return p.abort(stats, err)
		}
		w, err := slicer.Next()
		if err != nil {
			return p.abort(stats, err)
		}
		idx := slicer.Index()
		p.logger.Debug("kws: inference", "n", idx+1, "of", slicer.Len(), "offset", w.Offset)

		if err := p.step(w, idx, buf, &stats); err != nil {
			return p.abort(stats, err)
		}
	}
	stats.TransformCalls = p.cache.Computed() - computed
	return p.agg.Finalize(), stats, nil
}

func (p *Pipeline) step(w window.Window[int16], idx int, buf pcm.Buffer, stats *Stats) error {
	m, err := p.cache.ComputeOrReuse(w.Samples, idx)
	if err != nil {
		return err
	}
	if err := Assemble(m, p.model.InputTensor()); err != nil {
		return err
	}

	start := time.Now()
	if err := p.model.RunInference(); err != nil {
		return fmt.Errorf("%w: window %d: %w", ErrInferenceFailure, idx, err)
	}
	stats.InferenceTime += time.Since(start)
	stats.Windows++

	candidates, err := p.filter.Apply(p.model.OutputTensor())
	if err != nil {
		return err
	}
	return p.agg.Append(candidates, buf.Seconds(w.Offset), idx, p.filter.Threshold)
}

func (p *Pipeline) abort(stats Stats, err error) ([]Result, Stats, error) {
	p.agg.Discard()
	p.cache.Reset()
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		p.logger.Error("kws: clip aborted", "window", stats.Windows, "error", err)
	}
	return nil, stats, err
}
