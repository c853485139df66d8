// Package gcs implements the blob store adapter on Google Cloud Storage,
// the durable home of per-workspace credential records.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/tessellate-io/slackwise/internal/blobstore"
)

// Store adapts a GCS bucket to blobstore.Store. Object names are
// workspace team ids.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

var _ blobstore.Store = (*Store)(nil)

// New creates a store over the named bucket using application default
// credentials unless overridden through opts.
func New(ctx context.Context, bucketName string, opts ...option.ClientOption) (*Store, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &Store{
		client: client,
		bucket: client.Bucket(bucketName),
	}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, blobstore.ErrNotFound
		}
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write object %s: %w", key, err)
	}
	// Close commits the upload; write errors surface here too.
	if err := w.Close(); err != nil {
		return fmt.Errorf("commit object %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return blobstore.ErrNotFound
		}
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying client connections.
func (s *Store) Close() error {
	return s.client.Close()
}
