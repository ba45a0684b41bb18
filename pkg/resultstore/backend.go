package resultstore

import (
	"context"
	"errors"
	"iter"
	"strings"
)

// ErrNotFound is returned when a run does not exist in the store.
var ErrNotFound = errors.New("resultstore: not found")

// Key is a hierarchical key made of segments, encoded with ':' between
// segments. Segments must not contain ':'.
type Key []string

const sep byte = ':'

// String returns the encoded form of the key.
func (k Key) String() string {
	return strings.Join(k, string(sep))
}

// Entry is a key-value pair returned by Backend.List.
type Entry struct {
	Key   Key
	Value []byte
}

// Backend is the ordered key-value storage a Store persists into.
//
// Implementations:
//   - Badger: BadgerDB, on disk or in memory
//   - Memory: a map, for tests
type Backend interface {
	// Get returns ErrNotFound if key is not present.
	Get(ctx context.Context, key Key) ([]byte, error)

	// List iterates entries under prefix in lexicographic key order.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// BatchSet atomically stores entries.
	BatchSet(ctx context.Context, entries []Entry) error

	// BatchDelete atomically removes keys. Missing keys are ignored.
	BatchDelete(ctx context.Context, keys []Key) error

	Close() error
}

func encodeKey(k Key) []byte {
	return []byte(k.String())
}

func decodeKey(b []byte) Key {
	return Key(strings.Split(string(b), string(sep)))
}

// listPrefix returns the encoded scan prefix for p. A trailing separator
// keeps "run" from matching "runs". An empty prefix scans everything.
func listPrefix(p Key) []byte {
	if len(p) == 0 {
		return nil
	}
	return append(encodeKey(p), sep)
}
