// Package cache provides byte caches and key derivation for rendered
// artifacts and stored documents.
//
// # Backends
//
//   - [NullCache]: never stores anything (--no-cache, tests)
//   - [FileCache]: JSON entries under a directory, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//
// Only render artifacts and document lookups are cached. Parsing and layout
// are recomputed on every run.
//
// # Keys
//
// A [Keyer] derives keys from content hashes so identical input maps to the
// same entry across processes:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.ArtifactKey(graphHash, cache.ArtifactKeyOpts{Format: "svg", Engine: "native"})
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	// TTLArtifact bounds how long a rendered artifact is kept. Artifacts are
	// keyed by content, so staleness is never an issue; the TTL only limits
	// disk and memory growth.
	TTLArtifact = 7 * 24 * time.Hour

	// TTLDocument bounds how long a stored document stays cached in front of
	// the document store.
	TTLDocument = 10 * time.Minute
)

// Cache is a byte-oriented key/value cache with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// DocumentKey is the key for a stored document.
	DocumentKey(id string) string
	// ArtifactKey is the key for a rendered artifact of a graph.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts lists every render input besides the graph itself.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Engine     string  `json:"engine"`
	Title      string  `json:"title,omitempty"`
	Background string  `json:"background,omitempty"`
	Detailed   bool    `json:"detailed,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DocumentKey returns "doc:<id>".
func (DefaultKeyer) DocumentKey(id string) string {
	return "doc:" + id
}

// ArtifactKey hashes the graph hash together with the render options.
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}

var _ Keyer = DefaultKeyer{}
