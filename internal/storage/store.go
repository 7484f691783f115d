// Package storage provides the persistent key-value store the chat client
// keeps its session token, provider credential, client identifier and
// preferences in.
package storage

import (
	"context"
	"fmt"

	"url-chatroom/internal/config"
)

// Store is a string key-value store. Set writes all given keys or none of
// them, so related keys can never be observed half-updated.
type Store interface {
	// Get returns the values for keys that exist; missing keys are omitted.
	Get(ctx context.Context, keys ...string) (map[string]string, error)
	Set(ctx context.Context, values map[string]string) error
	Close() error
}

// Open builds the driver selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "file":
		return NewFileStore(cfg.FilePath), nil
	case "redis":
		return NewRedisStore(ctx, cfg.RedisURL, cfg.KeyPrefix)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
