package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/RezaEskandarii/lrrctl/internal/store"
)

type memoryLocalStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryLocalStore returns a LocalStore that lives as long as the process.
func NewMemoryLocalStore() store.LocalStore {
	return &memoryLocalStore{values: make(map[string]string)}
}

func (s *memoryLocalStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memoryLocalStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *memoryLocalStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func (s *memoryLocalStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *memoryLocalStore) Close() error {
	return nil
}
