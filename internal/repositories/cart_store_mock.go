package repositories

import (
	"context"
	"sync"
)

// MockCartStore is an in-memory cart record store.
type MockCartStore struct {
	records map[string][]byte
	mu      sync.RWMutex
}

// NewMockCartStore creates a new instance of MockCartStore.
func NewMockCartStore() *MockCartStore {
	return &MockCartStore{
		records: make(map[string][]byte),
	}
}

// Get returns a copy of the record stored under key.
func (s *MockCartStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.records[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Set stores a copy of value under key.
func (s *MockCartStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key.
func (s *MockCartStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

// Len returns the number of stored records.
func (s *MockCartStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
