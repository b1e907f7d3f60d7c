package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/ports"
)

// Store implements ports.DatasetStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*ports.Dataset
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*ports.Dataset),
	}
}

// Save persists a copy of the dataset.
func (s *Store) Save(ctx context.Context, d *ports.Dataset) error {
	copied := copyDataset(d)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[d.ID] = copied
	return nil
}

// Load retrieves a copy of the dataset so callers cannot mutate the store.
func (s *Store) Load(ctx context.Context, id string) (*ports.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.data[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return copyDataset(d), nil
}

// Delete removes the dataset.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func copyDataset(d *ports.Dataset) *ports.Dataset {
	out := *d
	out.Data = append([]byte(nil), d.Data...)
	return &out
}
