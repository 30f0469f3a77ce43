package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/flipsidefm/flipside/internal/serviceerr"
)

var _ = Store(&MemoryStore{})

// MemoryStore is the in-process fallback used when no Valkey endpoint is
// configured. Entries do not survive a restart and are not shared between
// replicas, which is fine for a single-node development setup.
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(gocache.NoExpiration, time.Minute),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := s.cache.Get(key)
	if !ok {
		return nil, serviceerr.ErrNotFound
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil, serviceerr.ErrNotFound
	}

	return bytes, nil
}

func (s *MemoryStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.cache.Set(key, value, ttl)

	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)

	return nil
}
