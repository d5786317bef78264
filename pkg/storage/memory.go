package storage

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps documents in a map. Contents are lost on exit.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
	now  func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document), now: time.Now}
}

func (s *MemoryStore) Save(ctx context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing *Document
	if d, ok := s.docs[strings.ToLower(doc.ID)]; ok && doc.ID != "" {
		existing = &d
	}
	if err := prepare(doc, existing, s.now()); err != nil {
		return err
	}
	s.docs[doc.ID] = *doc
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Document, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Document, error) {
	s.mu.RLock()
	docs := make([]Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	s.mu.RUnlock()

	sortRecent(docs)
	if n := clampLimit(limit); len(docs) > n {
		docs = docs[:n]
	}
	return docs, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	id, err := normalizeID(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
