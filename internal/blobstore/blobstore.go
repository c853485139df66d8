// Package blobstore defines the adapter contract over the external object
// store that holds per-workspace credential records. Implementations make
// no transactional or versioning guarantees; writes are last-writer-wins
// per key.
package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get and Delete when no object exists under
// the given key. Callers distinguish it from I/O failures with errors.Is.
var ErrNotFound = errors.New("blob not found")

// Store is a thin get/put/delete adapter keyed by workspace id.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
