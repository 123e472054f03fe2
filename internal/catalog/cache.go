package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"resto-service/internal/models"

	"github.com/go-redis/redis/v8"
)

// Entry is the single cached catalog snapshot. Payload and timestamp are
// always written together as one value.
type Entry struct {
	Products []models.Product `json:"products"`
	CachedAt time.Time        `json:"cached_at"`
}

// Fresh reports whether the entry is within the freshness window.
func (e *Entry) Fresh(ttl time.Duration, now time.Time) bool {
	return e != nil && now.Sub(e.CachedAt) < ttl
}

// Cache holds the one catalog snapshot slot. Get returns nil with no error
// on a cold cache.
type Cache interface {
	Get(ctx context.Context) (*Entry, error)
	Set(ctx context.Context, entry Entry) error
	Invalidate(ctx context.Context) error
}

const cacheKey = "catalog:products"

// Entries outlive the freshness window on purpose: an expired snapshot is
// still wanted as a stale fallback when the backend is unreachable.
const redisRetention = 24 * time.Hour

// RedisCache stores the snapshot in Redis under a fixed key.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisCache{rdb: rdb}, nil
}

func (c *RedisCache) Get(ctx context.Context) (*Entry, error) {
	raw, err := c.rdb.Get(ctx, cacheKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *RedisCache) Set(ctx context.Context, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey, raw, redisRetention).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, cacheKey).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// MemoryCache is the in-process slot used when Redis is not configured.
type MemoryCache struct {
	mu    sync.Mutex
	entry *Entry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Get(ctx context.Context) (*Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return nil, nil
	}
	out := *c.entry
	return &out, nil
}

func (c *MemoryCache) Set(ctx context.Context, entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = &entry
	return nil
}

func (c *MemoryCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
	return nil
}
