package storage

import (
	"context"
	"encoding/json"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/seqflow/pkg/cache"
	"github.com/matzehuels/seqflow/pkg/observability"
)

// CachedStore puts a read-through cache in front of a Store.
//
// Get consults the cache before the backend; Save and Delete invalidate the
// cached entry. Cache failures are logged and fall through to the backend.
// Close closes only the backend; the cache belongs to the caller.
type CachedStore struct {
	Store
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
}

// NewCachedStore wraps s. A nil keyer means cache.DefaultKeyer; a nil logger
// discards warnings.
func NewCachedStore(s Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *CachedStore {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &CachedStore{Store: s, cache: c, keyer: keyer, logger: logger}
}

func (s *CachedStore) Save(ctx context.Context, doc *Document) error {
	if err := s.Store.Save(ctx, doc); err != nil {
		return err
	}
	s.invalidate(ctx, doc.ID)
	return nil
}

func (s *CachedStore) Get(ctx context.Context, id string) (*Document, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	key := s.keyer.DocumentKey(id)
	hooks := observability.Cache()

	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("document cache read failed", "id", id, "error", err)
	}
	if err == nil && hit {
		var doc Document
		if err := json.Unmarshal(data, &doc); err == nil {
			hooks.OnCacheHit(ctx, "document")
			return &doc, nil
		}
	}
	hooks.OnCacheMiss(ctx, "document")

	doc, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(doc); err == nil {
		if err := s.cache.Set(ctx, key, data, cache.TTLDocument); err != nil {
			s.logger.Warn("document cache write failed", "id", id, "error", err)
		} else {
			hooks.OnCacheSet(ctx, "document", len(data))
		}
	}
	return doc, nil
}

func (s *CachedStore) Delete(ctx context.Context, id string) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CachedStore) invalidate(ctx context.Context, id string) {
	id, err := normalizeID(id)
	if err != nil {
		return
	}
	if err := s.cache.Delete(ctx, s.keyer.DocumentKey(id)); err != nil {
		s.logger.Warn("document cache invalidation failed", "id", id, "error", err)
	}
}

var _ Store = (*CachedStore)(nil)
