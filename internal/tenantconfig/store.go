// Package tenantconfig persists and resolves per-workspace credential
// records on top of the blob store adapter. Reads fail open: a missing or
// unreadable record means the workspace is unconfigured, never an error
// for the caller.
package tenantconfig

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tessellate-io/slackwise/internal/blobstore"
)

// LoadStatus classifies the outcome of a Load.
type LoadStatus int

const (
	// Unconfigured means no usable record exists for the workspace.
	Unconfigured LoadStatus = iota
	// Configured means a record with a non-empty API key was decoded.
	Configured
	// StoreError means the blob store failed; callers still treat the
	// workspace as unconfigured, but the failure stays observable via Err.
	StoreError
)

// LoadResult is the typed outcome of a Load. Record is meaningful only
// when Status is Configured; Err only when Status is StoreError.
type LoadResult struct {
	Status LoadStatus
	Record Record
	Err    error
}

// Store reads and writes workspace credential records, keyed by team id.
type Store struct {
	blobs  blobstore.Store
	logger *slog.Logger
}

// NewStore creates a store over the given blob adapter.
func NewStore(blobs blobstore.Store, logger *slog.Logger) *Store {
	return &Store{
		blobs:  blobs,
		logger: logger,
	}
}

// Load fetches and decodes the record for teamID. Absence, decode
// trouble, and an empty api_key all resolve to Unconfigured; blob store
// I/O failures resolve to StoreError. Load never returns an error — the
// read path degrades, it does not block a request.
func (s *Store) Load(ctx context.Context, teamID string) LoadResult {
	data, err := s.blobs.Get(ctx, teamID)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return LoadResult{Status: Unconfigured}
		}
		return LoadResult{Status: StoreError, Err: err}
	}

	rec := decodeRecord(data)
	if rec.APIKey == "" {
		return LoadResult{Status: Unconfigured}
	}
	return LoadResult{Status: Configured, Record: rec}
}

// IsConfigured reports whether a record blob exists for teamID. It is a
// cheap existence probe for UI surfaces; any store failure reads as not
// configured.
func (s *Store) IsConfigured(ctx context.Context, teamID string) bool {
	return s.Load(ctx, teamID).Status == Configured
}

// Save overwrites the workspace record in the structured format.
// Writes are last-writer-wins with no conflict detection: concurrent
// saves for the same team resolve to whichever lands last, and a save
// racing a revocation delete may resurrect the record. Errors are
// returned to the caller.
func (s *Store) Save(ctx context.Context, teamID string, rec Record) error {
	data, err := rec.Encode()
	if err != nil {
		return err
	}
	return s.blobs.Put(ctx, teamID, data)
}

// Delete removes the workspace record. A record that is already gone is
// success. I/O failures are logged and returned, but callers running
// batch cleanup are expected to carry on regardless.
func (s *Store) Delete(ctx context.Context, teamID string) error {
	err := s.blobs.Delete(ctx, teamID)
	if err == nil || errors.Is(err, blobstore.ErrNotFound) {
		return nil
	}
	s.logger.Error("failed to delete workspace credential record",
		slog.String("team_id", teamID),
		slog.String("error", err.Error()),
	)
	return err
}
