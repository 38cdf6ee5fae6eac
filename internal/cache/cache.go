// Package cache holds short-lived read results such as the unfiltered
// catalog and per-user download history. Values are stored JSON encoded so
// every backend returns independent copies.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/automationvault/internal/config"
)

type Cache interface {
	// Get decodes the value under key into dest and reports whether it was
	// present.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// New builds the configured backend.
func New(ctx context.Context, cfg config.CacheConfig, redisCfg config.RedisConfig, log *zap.Logger) (Cache, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemory(), nil
	case "redis":
		return NewRedis(ctx, redisCfg.URL, log)
	case "none":
		return Noop{}, nil
	}
	return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
}

// Noop never holds anything.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string, dest any) (bool, error) { return false, nil }

func (Noop) Set(ctx context.Context, key string, value any, ttl time.Duration) error { return nil }

func (Noop) Delete(ctx context.Context, keys ...string) error { return nil }

func encode(value any) ([]byte, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache value: %w", err)
	}
	return b, nil
}

func decode(b []byte, dest any) error {
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("failed to decode cache value: %w", err)
	}
	return nil
}
