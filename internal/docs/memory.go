package docs

import (
	"context"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps document metadata in process memory, preserving insertion
// order per owner. Used when no database DSN is configured and in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]*Document
	all  []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*Document)}
}

func (s *MemoryStore) Create(_ context.Context, d *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *d
	s.byID[stored.ID] = &stored
	s.all = append(s.all, stored.ID)
	return nil
}

func (s *MemoryStore) Find(_ context.Context, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []Document
	for _, id := range s.all {
		if d := s.byID[id]; d.OwnerID == ownerID {
			res = append(res, *d)
		}
	}
	return res, nil
}
