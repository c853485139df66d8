// Package memory provides an in-memory blob store used by tests and for
// running the service without object storage configured.
package memory

import (
	"context"
	"sync"

	"github.com/tessellate-io/slackwise/internal/blobstore"
)

// Store is an in-memory implementation of blobstore.Store.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ blobstore.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		blobs: make(map[string][]byte),
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[key]
	if !ok {
		return nil, blobstore.ErrNotFound
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[key] = cp
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[key]; !ok {
		return blobstore.ErrNotFound
	}
	delete(s.blobs, key)
	return nil
}
