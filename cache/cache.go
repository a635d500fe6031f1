package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	globalFeedKey = "feed:global"
	feedTTL       = 30 * time.Second
)

// Cache is a thin wrapper around redis used to serve the global feed without
// hitting postgres on every read. A nil *Cache is valid and disables caching,
// which is how the server runs when REDIS_URL is unset and how the engine
// tests run.
type Cache struct {
	rdb *redis.Client
}

func New(url string) (*Cache, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &Cache{rdb: rdb}, nil
}

// GetFeed returns the cached global feed payload, if any. Cache failures are
// treated as misses; the caller falls back to the database.
func (c *Cache) GetFeed(ctx context.Context) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	payload, err := c.rdb.Get(ctx, globalFeedKey).Bytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

func (c *Cache) SetFeed(ctx context.Context, payload []byte) {
	if c == nil {
		return
	}
	c.rdb.Set(ctx, globalFeedKey, payload, feedTTL)
}

// InvalidateFeed drops the cached feed. Called after every engagement
// mutation so a new post is always visible at the top of the next read.
func (c *Cache) InvalidateFeed(ctx context.Context) {
	if c == nil {
		return
	}
	c.rdb.Del(ctx, globalFeedKey)
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
