package storage

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/seqflow/pkg/cache"
	apperrors "github.com/matzehuels/seqflow/pkg/errors"
	"github.com/matzehuels/seqflow/pkg/layout"
	"github.com/matzehuels/seqflow/pkg/sequence"
)

const pingPong = "sequenceDiagram\nA->>B: ping\nB-->>A: pong\n"

func newDocument(t *testing.T, name string) *Document {
	t.Helper()
	d, err := sequence.Parse(pingPong)
	if err != nil {
		t.Fatal(err)
	}
	return &Document{Name: name, Source: pingPong, Diagram: d, Graph: layout.Project(d)}
}

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Second)
	}
}

// testStore exercises the Store contract against any backend.
func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("SaveAssignsID", func(t *testing.T) {
		doc := newDocument(t, "")
		if err := s.Save(ctx, doc); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := apperrors.ValidateDocumentID(doc.ID); err != nil {
			t.Errorf("Save assigned invalid id %q: %v", doc.ID, err)
		}
		if doc.Name != DefaultName {
			t.Errorf("Name = %q, want %q", doc.Name, DefaultName)
		}
		if doc.CreatedAt.IsZero() || doc.UpdatedAt.IsZero() {
			t.Error("timestamps not set")
		}
	})

	t.Run("GetRoundTrip", func(t *testing.T) {
		doc := newDocument(t, "ping")
		if err := s.Save(ctx, doc); err != nil {
			t.Fatal(err)
		}
		got, err := s.Get(ctx, doc.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Name != "ping" || got.Source != pingPong {
			t.Errorf("Get = %q/%q", got.Name, got.Source)
		}
		if got.Graph.NodeCount() != doc.Graph.NodeCount() || got.Graph.EdgeCount() != doc.Graph.EdgeCount() {
			t.Errorf("graph = %d/%d nodes/edges, want %d/%d",
				got.Graph.NodeCount(), got.Graph.EdgeCount(), doc.Graph.NodeCount(), doc.Graph.EdgeCount())
		}
		if got.Diagram == nil || len(got.Diagram.Messages) != 2 {
			t.Errorf("diagram not preserved: %+v", got.Diagram)
		}

		// IDs are case-insensitive.
		if _, err := s.Get(ctx, strings.ToUpper(doc.ID)); err != nil {
			t.Errorf("Get(upper) = %v", err)
		}
	})

	t.Run("ReplaceKeepsCreatedAt", func(t *testing.T) {
		doc := newDocument(t, "v1")
		if err := s.Save(ctx, doc); err != nil {
			t.Fatal(err)
		}
		created := doc.CreatedAt

		update := newDocument(t, "v2")
		update.ID = doc.ID
		if err := s.Save(ctx, update); err != nil {
			t.Fatal(err)
		}
		got, err := s.Get(ctx, doc.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != "v2" {
			t.Errorf("Name = %q, want v2", got.Name)
		}
		if !got.CreatedAt.Equal(created) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
		}
		if !got.UpdatedAt.After(created) {
			t.Errorf("UpdatedAt = %v should be after %v", got.UpdatedAt, created)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		if _, err := s.Get(ctx, NewID()); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(missing) = %v, want ErrNotFound", err)
		}
		if err := s.Delete(ctx, NewID()); !errors.Is(err, ErrNotFound) {
			t.Errorf("Delete(missing) = %v, want ErrNotFound", err)
		}
		if _, err := s.Get(ctx, "../etc/passwd"); !apperrors.Is(err, apperrors.ErrCodeInvalidID) {
			t.Errorf("Get(bad id) = %v, want INVALID_ID", err)
		}
	})

	t.Run("InvalidName", func(t *testing.T) {
		doc := newDocument(t, "bad\x07name")
		if err := s.Save(ctx, doc); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
			t.Errorf("Save(bad name) = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("ListAndDelete", func(t *testing.T) {
		a := newDocument(t, "first")
		b := newDocument(t, "second")
		for _, d := range []*Document{a, b} {
			if err := s.Save(ctx, d); err != nil {
				t.Fatal(err)
			}
		}

		docs, err := s.List(ctx, 1)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(docs) != 1 || docs[0].ID != b.ID {
			t.Errorf("List(1) = %v, want most recent %s", ids(docs), b.ID)
		}

		if err := s.Delete(ctx, b.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(ctx, b.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get after Delete = %v, want ErrNotFound", err)
		}
		docs, err = s.List(ctx, 0)
		if err != nil {
			t.Fatal(err)
		}
		for _, d := range docs {
			if d.ID == b.ID {
				t.Error("deleted document still listed")
			}
		}
	})
}

func ids(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	s.now = stepClock()
	testStore(t, s)
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s.now = stepClock()
	testStore(t, s)
}

func TestFileStoreSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir+"/broken.json", []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(context.Background(), newDocument(t, "ok")); err != nil {
		t.Fatal(err)
	}
	docs, err := s.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("List = %d docs, want 1", len(docs))
	}
}

func TestCachedStore(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	inner := NewMemoryStore()
	inner.now = stepClock()
	testStore(t, NewCachedStore(inner, fc, nil, nil))
}

// countingCache records Get hits so tests can see the read-through path.
type countingCache struct {
	cache.Cache
	hits int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if hit {
		c.hits++
	}
	return data, hit, err
}

func TestCachedStoreReadThrough(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cc := &countingCache{Cache: fc}
	s := NewCachedStore(NewMemoryStore(), cc, cache.NewScopedKeyer(nil, "test"), nil)

	doc := newDocument(t, "cached")
	if err := s.Save(ctx, doc); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if _, err := s.Get(ctx, doc.ID); err != nil {
			t.Fatal(err)
		}
	}
	if cc.hits != 2 {
		t.Errorf("cache hits = %d, want 2", cc.hits)
	}

	// Save invalidates: the next Get sees the new name.
	doc.Name = "renamed"
	if err := s.Save(ctx, doc); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "renamed" {
		t.Errorf("Name = %q after update, want renamed", got.Name)
	}
}

// TestMongoStore runs against a live server when SEQFLOW_MONGO_URI is set.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("SEQFLOW_MONGO_URI")
	if uri == "" {
		t.Skip("SEQFLOW_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoConfig{
		URI:        uri,
		Database:   "seqflow_test",
		Collection: "documents_" + strings.ReplaceAll(NewID(), "-", ""),
	})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer func() {
		_ = s.coll.Drop(ctx)
		s.Close()
	}()
	s.now = stepClock()
	testStore(t, s)
}

func TestNewMongoStoreRequiresURI(t *testing.T) {
	if _, err := NewMongoStore(context.Background(), MongoConfig{}); err == nil {
		t.Error("expected error for empty URI")
	}
}
