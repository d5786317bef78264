// Package storage persists named sequence diagrams.
//
// A [Document] keeps the diagram source together with the parsed model and
// the projected graph, so readers never have to re-run the pipeline to show a
// saved diagram.
//
// # Backends
//
//   - [MemoryStore]: in-process storage for development and tests
//   - [FileStore]: one JSON file per document, for single-host deployments
//   - [MongoStore]: MongoDB collection for the HTTP server
//
// [CachedStore] wraps any Store with a read-through [cache.Cache].
//
// # Usage
//
//	store := storage.NewMemoryStore()
//	doc := &storage.Document{Name: "login", Source: src, Diagram: d, Graph: g}
//	if err := store.Save(ctx, doc); err != nil {
//	    return err
//	}
//	// doc.ID is now a fresh UUID
//	got, err := store.Get(ctx, doc.ID)
//	if errors.Is(err, storage.ErrNotFound) {
//	    // ...
//	}
package storage

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/matzehuels/seqflow/pkg/errors"
	"github.com/matzehuels/seqflow/pkg/graph"
	"github.com/matzehuels/seqflow/pkg/sequence"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = apperrors.New(apperrors.ErrCodeNotFound, "document not found")

// Defaults.
const (
	// DefaultName is assigned to documents saved without a name.
	DefaultName = "untitled"

	// DefaultListLimit caps List when the caller passes a non-positive limit.
	DefaultListLimit = 50

	// MaxListLimit is the largest page List returns.
	MaxListLimit = 500
)

// Document is a saved diagram.
type Document struct {
	ID        string            `json:"id" bson:"_id"`
	Name      string            `json:"name" bson:"name"`
	Source    string            `json:"source" bson:"source"`
	Diagram   *sequence.Diagram `json:"diagram,omitempty" bson:"diagram,omitempty"`
	Graph     graph.Graph       `json:"graph" bson:"graph"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updated_at"`
}

// Store is the interface for document storage backends.
//
// Implementations are safe for concurrent use.
type Store interface {
	// Save inserts or replaces doc. An empty ID is replaced with a new UUID
	// and the timestamps are set; doc is updated in place.
	Save(ctx context.Context, doc *Document) error

	// Get returns the document with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Document, error)

	// List returns up to limit documents, most recently updated first.
	List(ctx context.Context, limit int) ([]Document, error)

	// Delete removes the document with the given ID, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// NewID returns a fresh document ID.
func NewID() string {
	return uuid.NewString()
}

// prepare validates doc and fills its ID, name and timestamps.
// existing is the stored copy being replaced, if any.
func prepare(doc *Document, existing *Document, now time.Time) error {
	if doc.ID == "" {
		doc.ID = NewID()
	}
	doc.ID = strings.ToLower(doc.ID)
	if err := apperrors.ValidateDocumentID(doc.ID); err != nil {
		return err
	}
	if err := apperrors.ValidateDocumentName(doc.Name); err != nil {
		return err
	}
	if doc.Name == "" {
		doc.Name = DefaultName
	}
	if existing != nil && !existing.CreatedAt.IsZero() {
		doc.CreatedAt = existing.CreatedAt
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	return nil
}

// clampLimit maps a requested page size into [1, MaxListLimit].
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return min(limit, MaxListLimit)
}

// sortRecent orders documents by UpdatedAt descending, then by ID.
func sortRecent(docs []Document) {
	slices.SortFunc(docs, func(a, b Document) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// normalizeID lower-cases id and validates it.
func normalizeID(id string) (string, error) {
	id = strings.ToLower(id)
	if err := apperrors.ValidateDocumentID(id); err != nil {
		return "", err
	}
	return id, nil
}
