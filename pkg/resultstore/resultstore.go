// Package resultstore persists keyword-spotting clip reports.
//
// Reports are msgpack-encoded and keyed by creation time, so listing returns
// runs oldest first. A reverse index maps run IDs to their keys for direct
// lookup and deletion.
//
//	backend, _ := resultstore.OpenBadger(resultstore.BadgerOptions{Dir: dir})
//	store := resultstore.New(backend)
//	defer store.Close()
//
//	err := store.Save(ctx, report)
//	for rec, err := range store.List(ctx) { ... }
package resultstore

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/kws/pkg/kws"
)

// Record is a stored report with the time it was saved under.
type Record struct {
	SavedAt time.Time
	Report  kws.ClipReport
}

// Store persists ClipReports in a Backend.
type Store struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time
}

// New returns a Store over backend. The Store owns backend and closes it on
// Close.
func New(backend Backend) *Store {
	return &Store{
		backend: backend,
		logger:  slog.Default(),
		now:     time.Now,
	}
}

// Save stores report. Saving a run ID that already exists replaces the
// earlier report.
func (s *Store) Save(ctx context.Context, report kws.ClipReport) error {
	if report.RunID == "" {
		return errors.New("resultstore: report has no run ID")
	}
	data, err := msgpack.Marshal(&report)
	if err != nil {
		return fmt.Errorf("resultstore: encode %s: %w", report.RunID, err)
	}

	ts := report.CreatedAt.UnixNano()
	if report.CreatedAt.IsZero() {
		ts = s.now().UnixNano()
	}

	if old, err := s.lookup(ctx, report.RunID); err == nil {
		if old != ts {
			if err := s.backend.BatchDelete(ctx, []Key{runKey(old, report.RunID)}); err != nil {
				return err
			}
		}
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	return s.backend.BatchSet(ctx, []Entry{
		{Key: runKey(ts, report.RunID), Value: data},
		{Key: ridKey(report.RunID), Value: []byte(strconv.FormatInt(ts, 10))},
	})
}

// Get returns the report for runID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, runID string) (Record, error) {
	ts, err := s.lookup(ctx, runID)
	if err != nil {
		return Record{}, err
	}
	data, err := s.backend.Get(ctx, runKey(ts, runID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Record{}, fmt.Errorf("%w: run %s (dangling index)", ErrNotFound, runID)
		}
		return Record{}, err
	}
	rec := Record{SavedAt: time.Unix(0, ts)}
	if err := msgpack.Unmarshal(data, &rec.Report); err != nil {
		return Record{}, fmt.Errorf("resultstore: decode %s: %w", runID, err)
	}
	return rec, nil
}

// List iterates all stored reports, oldest first. Malformed entries are
// logged and skipped.
func (s *Store) List(ctx context.Context) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for entry, err := range s.backend.List(ctx, runPrefix()) {
			if err != nil {
				yield(Record{}, err)
				return
			}
			ts, _, err := parseRunKey(entry.Key)
			if err != nil {
				s.logger.Warn("resultstore: skipping entry", "key", entry.Key.String(), "error", err)
				continue
			}
			rec := Record{SavedAt: time.Unix(0, ts)}
			if err := msgpack.Unmarshal(entry.Value, &rec.Report); err != nil {
				s.logger.Warn("resultstore: skipping entry", "key", entry.Key.String(), "error", err)
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Delete removes the report for runID. It returns ErrNotFound if no such
// run exists.
func (s *Store) Delete(ctx context.Context, runID string) error {
	ts, err := s.lookup(ctx, runID)
	if err != nil {
		return err
	}
	return s.backend.BatchDelete(ctx, []Key{runKey(ts, runID), ridKey(runID)})
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) lookup(ctx context.Context, runID string) (int64, error) {
	v, err := s.backend.Get(ctx, ridKey(runID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, fmt.Errorf("%w: run %s", ErrNotFound, runID)
		}
		return 0, err
	}
	ts, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("resultstore: malformed index for %s: %w", runID, err)
	}
	return ts, nil
}
