package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"dessertbox/internal/pricing"
)

// MemoryCache holds one snapshot in process memory.
type MemoryCache struct {
	mu      sync.RWMutex
	catalog pricing.Catalog
	expires time.Time
	filled  bool
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now}
}

func (c *MemoryCache) Get(context.Context) (pricing.Catalog, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.filled || (!c.expires.IsZero() && c.now().After(c.expires)) {
		return pricing.Catalog{}, false, nil
	}
	return c.catalog, true, nil
}

func (c *MemoryCache) Set(_ context.Context, catalog pricing.Catalog, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog = catalog
	c.filled = true
	c.expires = time.Time{}
	if ttl > 0 {
		c.expires = c.now().Add(ttl)
	}
	return nil
}

func (c *MemoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog = pricing.Catalog{}
	c.filled = false
	return nil
}

const redisKey = "dessertbox:catalog:v1"

// RedisCache shares the snapshot between server instances.
type RedisCache struct {
	client *redis.Client
	key    string
}

// NewRedisCache connects to the Redis server described by url
// (redis://[:password@]host:port/db).
func NewRedisCache(url string) (*RedisCache, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("catalog: redis url must not be empty")
	}
	opts, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, fmt.Errorf("catalog: parse redis url: %w", err)
	}
	return &RedisCache{client: redis.NewClient(opts), key: redisKey}, nil
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client's connections.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context) (pricing.Catalog, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return pricing.Catalog{}, false, nil
	}
	if err != nil {
		return pricing.Catalog{}, false, err
	}
	var catalog pricing.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return pricing.Catalog{}, false, fmt.Errorf("decode cached catalog: %w", err)
	}
	return catalog, true, nil
}

func (c *RedisCache) Set(ctx context.Context, catalog pricing.Catalog, ttl time.Duration) error {
	raw, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return c.client.Set(ctx, c.key, raw, ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
