package guidelines

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound reports that no document with the requested id exists.
var ErrNotFound = errors.New("document not found")

// Store is the document registry consumed by the engines. List returns
// documents in their registration order, which for the curated set is the
// curated order.
type Store interface {
	Get(ctx context.Context, id string) (Document, error)
	List(ctx context.Context) ([]Document, error)
	Put(ctx context.Context, doc Document) error
}

// MemoryStore is an in-process Store. It is sufficient for the demo corpus;
// ids stay stable for the process lifetime.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return doc, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0, len(s.order))
	for _, id := range s.order {
		docs = append(docs, s.docs[id])
	}
	return docs, nil
}

func (s *MemoryStore) Put(_ context.Context, doc Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[doc.ID]; !exists {
		s.order = append(s.order, doc.ID)
	}
	s.docs[doc.ID] = doc
	return nil
}

var _ Store = (*MemoryStore)(nil)
