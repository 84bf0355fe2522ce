// Package storage defines read access to files kept on a local disk or in an
// S3-compatible bucket. The dataset fetcher uses it to pull archive mirrors
// from either place with the same code path.
package storage

import (
	"context"
	"io"
)

// Reader is a minimal read-only file store.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type Reader interface {
	// Open opens the named file for reading.
	// The caller must close the returned ReadCloser when done.
	// If the file does not exist, an error wrapping os.ErrNotExist is returned.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Size returns the size of the named file in bytes.
	// If the file does not exist, an error wrapping os.ErrNotExist is returned.
	Size(ctx context.Context, path string) (int64, error)
}
