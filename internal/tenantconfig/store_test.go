package tenantconfig

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tessellate-io/slackwise/internal/blobstore/memory"
)

func newTestStore() *Store {
	return NewStore(memory.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoadAbsent(t *testing.T) {
	s := newTestStore()

	res := s.Load(context.Background(), "T1")
	if res.Status != Unconfigured {
		t.Errorf("Load() status = %v, want Unconfigured", res.Status)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	temp := 0.7

	tests := []struct {
		name string
		rec  Record
	}{
		{
			name: "full record",
			rec: Record{
				APIKey:               "sk-good",
				Model:                "gpt-4o",
				ImageGenerationModel: "dall-e-3",
				Temperature:          &temp,
			},
		},
		{
			name: "key and model only",
			rec:  Record{APIKey: "sk-good", Model: "gpt-x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Save(ctx, "T2", tt.rec); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			res := s.Load(ctx, "T2")
			if res.Status != Configured {
				t.Fatalf("Load() status = %v, want Configured", res.Status)
			}
			if diff := cmp.Diff(tt.rec, res.Record); diff != "" {
				t.Errorf("record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadLegacyFormat(t *testing.T) {
	blobs := memory.New()
	s := NewStore(blobs, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	// The legacy format is the bare secret with no JSON structure.
	if err := blobs.Put(ctx, "T3", []byte("sk-legacy-secret")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	res := s.Load(ctx, "T3")
	if res.Status != Configured {
		t.Fatalf("Load() status = %v, want Configured", res.Status)
	}
	if res.Record.APIKey != "sk-legacy-secret" {
		t.Errorf("APIKey = %q, want legacy payload", res.Record.APIKey)
	}
	if res.Record.Model != "" || res.Record.ImageGenerationModel != "" || res.Record.Temperature != nil {
		t.Errorf("legacy decode must leave optional fields unset, got %+v", res.Record)
	}
}

func TestLoadStructuredWithoutKey(t *testing.T) {
	blobs := memory.New()
	s := NewStore(blobs, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	if err := blobs.Put(ctx, "T4", []byte(`{"model":"gpt-4o"}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if res := s.Load(ctx, "T4"); res.Status != Unconfigured {
		t.Errorf("Load() status = %v, want Unconfigured for record without api_key", res.Status)
	}
}

type failingStore struct {
	err error
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, error) { return nil, f.err }
func (f *failingStore) Put(ctx context.Context, key string, data []byte) error {
	return f.err
}
func (f *failingStore) Delete(ctx context.Context, key string) error { return f.err }

func TestLoadStoreError(t *testing.T) {
	wantErr := errors.New("connection refused")
	s := NewStore(&failingStore{err: wantErr}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	res := s.Load(context.Background(), "T5")
	if res.Status != StoreError {
		t.Fatalf("Load() status = %v, want StoreError", res.Status)
	}
	if !errors.Is(res.Err, wantErr) {
		t.Errorf("Load() err = %v, want %v", res.Err, wantErr)
	}
}

func TestSaveSurfacesError(t *testing.T) {
	wantErr := errors.New("quota exceeded")
	s := NewStore(&failingStore{err: wantErr}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := s.Save(context.Background(), "T6", Record{APIKey: "sk-x"}); !errors.Is(err, wantErr) {
		t.Errorf("Save() error = %v, want %v", err, wantErr)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	if err := s.Save(ctx, "T7", Record{APIKey: "sk-x"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := s.Delete(ctx, "T7"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "T7"); err != nil {
		t.Errorf("second Delete() error = %v, want nil", err)
	}

	if res := s.Load(ctx, "T7"); res.Status != Unconfigured {
		t.Errorf("Load() after delete status = %v, want Unconfigured", res.Status)
	}
}

func TestDeleteLogsAndReturnsIOError(t *testing.T) {
	wantErr := errors.New("backend down")
	s := NewStore(&failingStore{err: wantErr}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := s.Delete(context.Background(), "T8"); !errors.Is(err, wantErr) {
		t.Errorf("Delete() error = %v, want %v", err, wantErr)
	}
}

func TestIsConfigured(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	if s.IsConfigured(ctx, "T9") {
		t.Error("IsConfigured() = true for absent record")
	}
	if err := s.Save(ctx, "T9", Record{APIKey: "sk-x"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !s.IsConfigured(ctx, "T9") {
		t.Error("IsConfigured() = false after save")
	}
}
