package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const cleanupInterval = 5 * time.Minute

type Memory struct {
	c *gocache.Cache
}

func NewMemory() *Memory {
	return &Memory{c: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (m *Memory) Get(ctx context.Context, key string, dest any) (bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return false, nil
	}
	if err := decode(v.([]byte), dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value for ttl. A ttl of zero or less is not cached.
func (m *Memory) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b, err := encode(value)
	if err != nil {
		return err
	}
	m.c.Set(key, b, ttl)
	return nil
}

func (m *Memory) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(k)
	}
	return nil
}
