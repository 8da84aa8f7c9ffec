package cache

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const defaultCleanupInterval = 5 * time.Minute

// MemoryPool keeps items in process memory.
type MemoryPool struct {
	*pool
}

// NewMemoryPool creates a pool over its own go-cache instance.
func NewMemoryPool(namespace string, defaultTTL time.Duration) *MemoryPool {
	return newMemoryPool(gocache.New(gocache.NoExpiration, defaultCleanupInterval), namespace, defaultTTL)
}

func newMemoryPool(backend *gocache.Cache, namespace string, defaultTTL time.Duration) *MemoryPool {
	return &MemoryPool{pool: newPool("memory", namespace, defaultTTL, &memoryStore{backend: backend})}
}

type memoryStore struct {
	backend *gocache.Cache
}

func (s *memoryStore) get(_ context.Context, key string) ([]byte, bool, error) {
	raw, ok := s.backend.Get(key)
	if !ok {
		return nil, false, nil
	}
	data, ok := raw.([]byte)
	if !ok {
		return nil, false, nil
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, true, nil
}

func (s *memoryStore) set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	buf := make([]byte, len(value))
	copy(buf, value)
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	s.backend.Set(key, buf, ttl)
	return nil
}

func (s *memoryStore) del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		s.backend.Delete(k)
	}
	return nil
}

func (s *memoryStore) clear(_ context.Context, prefix string) error {
	if prefix == "" {
		s.backend.Flush()
		return nil
	}
	for k := range s.backend.Items() {
		if strings.HasPrefix(k, prefix) {
			s.backend.Delete(k)
		}
	}
	return nil
}

func (s *memoryStore) prune(_ context.Context) error {
	s.backend.DeleteExpired()
	return nil
}
