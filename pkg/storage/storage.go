// Package storage defines the Store interface for listing and reading audio
// clips. It abstracts the backend so the clip catalog can read from a local
// directory or an S3 bucket without changing the classification code.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidPath is returned for blob paths that are empty or leave the
// store root.
var ErrInvalidPath = errors.New("storage: invalid path")

// Store is a minimal interface for blob-oriented clip storage.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type Store interface {
	// List returns the paths of all blobs under prefix, sorted
	// lexicographically. An empty prefix lists the whole store.
	List(ctx context.Context, prefix string) ([]string, error)

	// Open opens the named blob for reading.
	// The caller must close the returned ReadCloser when done.
	// If the blob does not exist, an error wrapping os.ErrNotExist is returned.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Put stores the contents of r under path, replacing any existing blob.
	Put(ctx context.Context, path string, r io.Reader) error
}

// Location is a parsed store address: a local directory or an S3 bucket
// with an optional key prefix.
type Location struct {
	Scheme string // "file" or "s3"
	Bucket string
	Path   string // directory for file, key prefix for s3
}

// ParseLocation parses "s3://bucket/prefix" or a plain directory path.
func ParseLocation(s string) (Location, error) {
	if rest, ok := strings.CutPrefix(s, "s3://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return Location{}, fmt.Errorf("storage: missing bucket in %q", s)
		}
		return Location{Scheme: "s3", Bucket: bucket, Path: strings.Trim(prefix, "/")}, nil
	}
	s = strings.TrimPrefix(s, "file://")
	if s == "" {
		return Location{}, fmt.Errorf("storage: empty location")
	}
	return Location{Scheme: "file", Path: s}, nil
}

func (l Location) String() string {
	if l.Scheme == "s3" {
		if l.Path == "" {
			return "s3://" + l.Bucket
		}
		return "s3://" + l.Bucket + "/" + l.Path
	}
	return l.Path
}
