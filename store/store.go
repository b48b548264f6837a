// Package store provides the key-value storage port backing the forum
// collections. Each key holds an opaque JSON document; the forum service
// reads and writes whole collections at a time.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/agorabbs/agora/config"
)

// ErrKeyNotFound is returned by Get when the key has never been written.
var ErrKeyNotFound = errors.New("key not found in store")

// Store is the storage handle injected into the forum service.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the store.
	Close() error
}

// New creates a store for the configured backend.
func New(cfg *config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case config.StorageBackendFile:
		return NewFileStore(cfg.Path)
	case config.StorageBackendMemory:
		return NewMemoryStore(), nil
	case config.StorageBackendRedis:
		return NewRedisStore(cfg.RedisURL), nil
	case config.StorageBackendSQLite:
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
