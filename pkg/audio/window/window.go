// Package window slices a finite sample buffer into fixed-length,
// overlapping analysis windows.
//
// A [Slicer] is a forward-only cursor. Windows are produced lazily; each
// one is a view into the caller's buffer, not a copy:
//
//	s, _ := window.New(samples, 16000, 8000)
//	for s.HasNext() {
//	    w, _ := s.Next()
//	    process(w.Samples, s.Index())
//	}
//
// For a buffer of n samples the slicer yields
// floor((n - size) / stride) + 1 windows when n >= size, and none otherwise.
package window

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrOutOfRange is returned by Next when no windows are left.
	ErrOutOfRange = errors.New("window: out of range")

	// ErrInvalidWindow is returned by New for a non-positive size or a
	// stride outside (0, size].
	ErrInvalidWindow = errors.New("window: invalid size or stride")
)

// Window is one analysis window.
type Window[T any] struct {
	// Offset is the position of the first sample in the source buffer.
	Offset int

	// Samples is a view of length size into the source buffer.
	Samples []T
}

// Slicer walks a buffer window by window.
type Slicer[T any] struct {
	data   []T
	size   int
	stride int
	count  int // total windows
	next   int // ordinal of the next window to return
}

// New creates a Slicer over data.
func New[T any](data []T, size, stride int) (*Slicer[T], error) {
	if size <= 0 || stride <= 0 || stride > size {
		return nil, fmt.Errorf("%w: size=%d stride=%d", ErrInvalidWindow, size, stride)
	}
	return &Slicer[T]{
		data:   data,
		size:   size,
		stride: stride,
		count:  Count(len(data), size, stride),
	}, nil
}

// Count returns the number of windows of the given size and stride that fit
// in n samples.
func Count(n, size, stride int) int {
	if size <= 0 || stride <= 0 || n < size {
		return 0
	}
	return (n-size)/stride + 1
}

// HasNext reports whether another window is available.
func (s *Slicer[T]) HasNext() bool {
	return s.next < s.count
}

// Next returns the next window and advances the cursor.
func (s *Slicer[T]) Next() (Window[T], error) {
	if !s.HasNext() {
		return Window[T]{}, fmt.Errorf("%w: window %d of %d", ErrOutOfRange, s.next, s.count)
	}
	off := s.next * s.stride
	s.next++
	return Window[T]{Offset: off, Samples: s.data[off : off+s.size : off+s.size]}, nil
}

// Index returns the 0-based ordinal of the window most recently returned by
// Next, or -1 before the first call.
func (s *Slicer[T]) Index() int {
	return s.next - 1
}

// TotalStrides returns the number of advances available, which is one less
// than the number of windows. It is -1 when the buffer holds no window.
func (s *Slicer[T]) TotalStrides() int {
	return s.count - 1
}

// Len returns the total number of windows.
func (s *Slicer[T]) Len() int {
	return s.count
}
