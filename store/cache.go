package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/eko/gocache/lib/v4/cache"
	gocachestore "github.com/eko/gocache/lib/v4/store"
	go_store "github.com/eko/gocache/store/go_cache/v4"
	redis_store "github.com/eko/gocache/store/redis/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// CacheStore adapts an eko/gocache cache to the Store interface. It backs
// the memory and redis storage backends.
type CacheStore struct {
	cache *cache.Cache[[]byte]
}

var _ Store = (*CacheStore)(nil)

// NewMemoryStore returns a process-local store. Entries never expire; the
// forum owns the lifetime of its collections.
func NewMemoryStore() *CacheStore {
	client := gocache.New(gocache.NoExpiration, gocache.NoExpiration)
	return &CacheStore{cache: cache.New[[]byte](go_store.NewGoCache(client))}
}

// NewRedisStore returns a store backed by a redis server.
func NewRedisStore(addr string) *CacheStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &CacheStore{cache: cache.New[[]byte](redis_store.NewRedis(client))}
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (c *CacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, &gocachestore.NotFound{}) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

// Set stores value under key.
func (c *CacheStore) Set(ctx context.Context, key string, value []byte) error {
	if err := c.cache.Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (c *CacheStore) Delete(ctx context.Context, key string) error {
	if err := c.cache.Delete(ctx, key); err != nil {
		if errors.Is(err, &gocachestore.NotFound{}) {
			return nil
		}
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; the underlying clients have no shutdown hook here.
func (c *CacheStore) Close() error { return nil }
