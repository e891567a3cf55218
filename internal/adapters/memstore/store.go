// Package memstore is a process-local ports.KeyValueStore. Values do not survive a restart.
package memstore

import (
	"context"
	"sync"
)

// Store is a map guarded by a mutex.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// New returns an empty store.
func New() *Store {
	return &Store{values: make(map[string]string)}
}

func (s *Store) ReadKey(_ context.Context, name string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok, nil
}

func (s *Store) WriteKey(_ context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
