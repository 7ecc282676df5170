package memoryprefs

import (
	"context"
	"sync"
)

type Store struct {
	mu   sync.RWMutex
	data map[string]string
}

func New() *Store {
	return &Store{data: make(map[string]string)}
}

func (s *Store) Connect(_ context.Context) error {
	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}

func (s *Store) Get(_ context.Context, viewerID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[viewerID+"\x00"+key]
	return value, ok, nil
}

func (s *Store) Set(_ context.Context, viewerID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[viewerID+"\x00"+key] = value
	return nil
}
