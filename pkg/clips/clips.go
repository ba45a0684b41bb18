// Package clips provides an indexed catalog of audio clips held in a
// storage.Store.
//
// Clip names are the store paths of supported files, sorted
// lexicographically; a clip index is a position in that order. Supported
// formats:
//
//   - .pcm, .raw: headerless little-endian PCM16 mono at the catalog rate
//   - .wav: RIFF/WAVE PCM16, any rate and channel count
//
// WAV clips at another rate are resampled and multi-channel clips are
// downmixed, so every loaded buffer is mono at the catalog rate.
package clips

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/haivivi/kws/pkg/audio/pcm"
	"github.com/haivivi/kws/pkg/audio/resampler"
	"github.com/haivivi/kws/pkg/kws"
	"github.com/haivivi/kws/pkg/storage"
)

// Sentinel errors.
var (
	// ErrClipNotFound is returned for a clip index outside the catalog.
	ErrClipNotFound = errors.New("clips: clip not found")

	// ErrUnsupportedFormat is returned for files that cannot be decoded.
	ErrUnsupportedFormat = errors.New("clips: unsupported format")
)

// Catalog is an ordered, read-only list of clips. It is safe for
// concurrent use.
type Catalog struct {
	store  storage.Store
	names  []string
	rate   int
	logger *slog.Logger
}

var _ kws.ClipSource = (*Catalog)(nil)

// Option configures a Catalog.
type Option func(*Catalog)

// WithSampleRate sets the rate clips are delivered at
// (default pcm.DefaultSampleRate).
func WithSampleRate(rate int) Option {
	return func(c *Catalog) {
		if rate > 0 {
			c.rate = rate
		}
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// Open lists the clips under prefix in store.
func Open(ctx context.Context, store storage.Store, prefix string, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		store:  store,
		rate:   pcm.DefaultSampleRate,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	paths, err := store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("clips: list: %w", err)
	}
	for _, p := range paths {
		if Supported(p) {
			c.names = append(c.names, p)
		}
	}
	c.logger.Debug("clips: catalog opened", "prefix", prefix, "clips", len(c.names), "skipped", len(paths)-len(c.names))
	return c, nil
}

// Supported reports whether name has a decodable extension.
func Supported(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".pcm", ".raw", ".wav":
		return true
	}
	return false
}

// Len returns the number of clips.
func (c *Catalog) Len() int {
	return len(c.names)
}

// Name returns the name of clip i, or "" if i is out of range.
func (c *Catalog) Name(i int) string {
	if i < 0 || i >= len(c.names) {
		return ""
	}
	return c.names[i]
}

// Names returns all clip names in index order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Index returns the index of the named clip.
func (c *Catalog) Index(name string) (int, bool) {
	for i, n := range c.names {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// SampleRate returns the rate loaded clips are delivered at.
func (c *Catalog) SampleRate() int {
	return c.rate
}

// Load reads and decodes clip i.
func (c *Catalog) Load(ctx context.Context, i int) (pcm.Buffer, error) {
	if i < 0 || i >= len(c.names) {
		return pcm.Buffer{}, fmt.Errorf("%w: index %d of %d", ErrClipNotFound, i, len(c.names))
	}
	name := c.names[i]

	r, err := c.store.Open(ctx, name)
	if err != nil {
		return pcm.Buffer{}, fmt.Errorf("clips: open %s: %w", name, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return pcm.Buffer{}, fmt.Errorf("clips: read %s: %w", name, err)
	}
	return Decode(name, data, c.rate)
}

// Decode decodes clip data by file extension and converts it to mono PCM16
// at rate.
func Decode(name string, data []byte, rate int) (pcm.Buffer, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".pcm", ".raw":
		buf, err := pcm.FromBytes(data, rate)
		if err != nil {
			return pcm.Buffer{}, fmt.Errorf("clips: %s: %w", name, err)
		}
		return buf, nil
	case ".wav":
		buf, info, err := DecodeWAV(data)
		if err != nil {
			return pcm.Buffer{}, fmt.Errorf("clips: %s: %w", name, err)
		}
		if info.SampleRate == rate {
			return buf, nil
		}
		slog.Debug("clips: resampling", "clip", name, "from", info.SampleRate, "to", rate)
		out, err := resampler.Resample(buf, rate)
		if err != nil {
			return pcm.Buffer{}, fmt.Errorf("clips: %s: %w", name, err)
		}
		return out, nil
	}
	return pcm.Buffer{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}
