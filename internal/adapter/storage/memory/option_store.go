package memory

import (
	"context"
	"sync"
)

// OptionStore implements ports.OptionStore in process memory.
type OptionStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewOptionStore creates an option store seeded with initial values.
func NewOptionStore(initial map[string]string) *OptionStore {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &OptionStore{values: values}
}

// Get returns the value stored under key.
func (s *OptionStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key, replacing any previous value.
func (s *OptionStore) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// SetIfAbsent stores value only if key is unset and returns the winning value.
func (s *OptionStore) SetIfAbsent(_ context.Context, key string, value string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.values[key]; ok {
		return existing, nil
	}
	s.values[key] = value
	return value, nil
}
