package kws

import (
	"fmt"
	"log/slog"
)

// Matrix is a row-major feature matrix: one row per frame, one column per
// feature.
type Matrix struct {
	Rows int
	Cols int
	Data []float32
}

// Row returns row i as a view into Data.
func (m Matrix) Row(i int) []float32 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// FeatureCache computes the feature matrix of each window, reusing the rows
// that overlap the previous window.
//
// When the window stride is a multiple of the frame stride, advancing one
// window shifts every frame by k = stride/frameStride rows. The cache moves
// the surviving rows up and computes only the k rows exposed at the end, so
// window n > 0 costs min(rows, k) transform calls instead of rows.
//
// Windows must be presented in order 0, 1, 2, ... within a clip. Index 0
// always starts over. A FeatureCache is not safe for concurrent use.
type FeatureCache struct {
	transform   Transform
	windowSize  int
	stride      int
	frameLength int
	frameStride int
	rows        int
	cols        int
	shift       int // rows dropped per window advance, 0 when rows can't be reused

	data     []float32
	last     int // index of the cached window, -1 when empty
	computed int
	warned   bool
	logger   *slog.Logger
}

// NewFeatureCache creates a cache for the given window and frame geometry.
func NewFeatureCache(t Transform, windowSize, stride, frameLength, frameStride int, opts ...Option) (*FeatureCache, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil transform", ErrInvalidConfig)
	}
	if windowSize <= 0 || stride <= 0 || stride > windowSize || frameStride <= 0 {
		return nil, fmt.Errorf("%w: window=%d stride=%d frame_stride=%d",
			ErrInvalidConfig, windowSize, stride, frameStride)
	}
	rows := featureRows(windowSize, frameLength, frameStride)
	if frameLength <= 0 || rows == 0 {
		return nil, fmt.Errorf("%w: frame length %d does not fit window %d",
			ErrInvalidConfig, frameLength, windowSize)
	}
	cols := t.FeatureCount()
	if cols <= 0 {
		return nil, fmt.Errorf("%w: transform has %d features", ErrShapeMismatch, cols)
	}

	o := buildOptions(opts)
	c := &FeatureCache{
		transform:   t,
		windowSize:  windowSize,
		stride:      stride,
		frameLength: frameLength,
		frameStride: frameStride,
		rows:        rows,
		cols:        cols,
		data:        make([]float32, rows*cols),
		last:        -1,
		logger:      o.logger,
	}
	if stride%frameStride == 0 {
		c.shift = stride / frameStride
	}
	return c, nil
}

// Rows returns the number of feature rows per window.
func (c *FeatureCache) Rows() int { return c.rows }

// Cols returns the number of features per row.
func (c *FeatureCache) Cols() int { return c.cols }

// Computed returns the number of transform calls since construction.
func (c *FeatureCache) Computed() int { return c.computed }

// Reset discards the cached window. The next call must use index 0.
func (c *FeatureCache) Reset() {
	c.last = -1
}

// ComputeOrReuse returns the feature matrix of window, the windowIndex-th
// window of the current clip.
//
// The returned matrix aliases the cache and is valid until the next call.
// Any error invalidates the cache.
func (c *FeatureCache) ComputeOrReuse(window []int16, windowIndex int) (Matrix, error) {
	if len(window) != c.windowSize {
		c.Reset()
		return Matrix{}, fmt.Errorf("%w: window has %d samples, want %d",
			ErrShapeMismatch, len(window), c.windowSize)
	}

	var err error
	switch {
	case windowIndex == 0:
		err = c.computeRows(window, 0)
	case c.last >= 0 && windowIndex == c.last+1:
		err = c.advance(window)
	default:
		last := c.last
		c.Reset()
		return Matrix{}, fmt.Errorf("%w: window %d after %d", ErrSequenceViolation, windowIndex, last)
	}
	if err != nil {
		c.Reset()
		return Matrix{}, err
	}

	c.last = windowIndex
	return Matrix{Rows: c.rows, Cols: c.cols, Data: c.data}, nil
}

func (c *FeatureCache) advance(window []int16) error {
	if c.shift == 0 || c.shift >= c.rows {
		if c.shift == 0 && !c.warned {
			c.warned = true
			c.logger.Warn("kws: stride is not a multiple of frame stride, recomputing every row",
				"stride", c.stride, "frame_stride", c.frameStride)
		}
		return c.computeRows(window, 0)
	}
	copy(c.data, c.data[c.shift*c.cols:])
	return c.computeRows(window, c.rows-c.shift)
}

// computeRows recomputes rows [from, rows) from window.
func (c *FeatureCache) computeRows(window []int16, from int) error {
	for r := from; r < c.rows; r++ {
		start := r * c.frameStride
		frame := window[start : start+c.frameLength]
		if err := c.transform.Transform(c.data[r*c.cols:(r+1)*c.cols], frame); err != nil {
			return fmt.Errorf("kws: feature row %d: %w", r, err)
		}
		c.computed++
	}
	return nil
}
