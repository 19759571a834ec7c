package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a JSON read-through cache. Users and posts never change after
// insert, so entries only ever expire.
type Cache struct {
	R   *redis.Client
	TTL time.Duration
}

func New(addr string, ttl time.Duration) *Cache {
	return &Cache{
		R:   redis.NewClient(&redis.Options{Addr: addr, DB: 0}),
		TTL: ttl,
	}
}

func (c *Cache) Ping(ctx context.Context) error { return c.R.Ping(ctx).Err() }

func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, key, b, c.TTL).Err()
}

func (c *Cache) Close() error { return c.R.Close() }
