package storage

import (
	"context"
	"sync"

	"github.com/patrickmn/go-cache"
)

type MemoryStore struct {
	mu    sync.RWMutex
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (s *MemoryStore) Get(_ context.Context, keys ...string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if x, found := s.cache.Get(key); found {
			out[key] = x.(string)
		}
	}
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range values {
		s.cache.Set(key, value, cache.NoExpiration)
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.cache.Flush()
	return nil
}
