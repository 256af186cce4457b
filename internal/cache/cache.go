// Package cache keeps rendered box outputs (DXF, SVG, G-code) so repeated
// requests for the same design skip the build. An in-process LRU sits in
// front of an optional Redis tier.
package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/piwi3910/TabBox/internal/logger"
)

const (
	TierMemory = "memory"
	TierRedis  = "redis"

	DefaultSize = 256
	DefaultTTL  = time.Hour
)

// Recorder receives hit and miss counts per tier.
type Recorder interface {
	CacheHit(tier string)
	CacheMiss(tier string)
}

type nopRecorder struct{}

func (nopRecorder) CacheHit(string)  {}
func (nopRecorder) CacheMiss(string) {}

type Option func(*Cache)

// WithRedis adds a shared tier. A ttl <= 0 uses DefaultTTL.
func WithRedis(store *RedisStore, ttl time.Duration) Option {
	return func(c *Cache) {
		c.remote = store
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(c *Cache) {
		if r != nil {
			c.rec = r
		}
	}
}

func WithLogger(l *zerolog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

type Cache struct {
	mem    *lru.Cache[string, []byte]
	remote *RedisStore
	ttl    time.Duration
	rec    Recorder
	log    *zerolog.Logger
}

func New(size int, opts ...Option) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	mem, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	c := &Cache{mem: mem, ttl: DefaultTTL, rec: nopRecorder{}}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Get looks in memory, then Redis. A Redis hit is copied into memory.
// Redis failures are logged and count as a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := c.mem.Get(key); ok {
		c.rec.CacheHit(TierMemory)
		return v, true
	}
	c.rec.CacheMiss(TierMemory)

	if c.remote == nil {
		return nil, false
	}
	v, ok, err := c.remote.Get(ctx, key)
	if err != nil {
		l := logger.FromContext(ctx, c.log)
		l.Warn().Err(err).Str("key", key).Msg("redis cache read failed")
		c.rec.CacheMiss(TierRedis)
		return nil, false
	}
	if !ok {
		c.rec.CacheMiss(TierRedis)
		return nil, false
	}
	c.rec.CacheHit(TierRedis)
	c.mem.Add(key, v)
	return v, true
}

// Set stores val in every tier. Only a Redis error is returned; the memory
// tier always accepts the value.
func (c *Cache) Set(ctx context.Context, key string, val []byte) error {
	c.mem.Add(key, val)
	if c.remote == nil {
		return nil
	}
	return c.remote.Set(ctx, key, val, c.ttl)
}

// GetOrRender returns the cached value for key, or calls render and stores
// its result. hit reports whether render was skipped.
func (c *Cache) GetOrRender(ctx context.Context, key string, render func() ([]byte, error)) (val []byte, hit bool, err error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, true, nil
	}
	val, err = render()
	if err != nil {
		return nil, false, err
	}
	if err := c.Set(ctx, key, val); err != nil {
		l := logger.FromContext(ctx, c.log)
		l.Warn().Err(err).Str("key", key).Msg("redis cache write failed")
	}
	return val, false, nil
}

func (c *Cache) Len() int { return c.mem.Len() }

// Purge empties the memory tier. Redis entries are left to expire.
func (c *Cache) Purge() { c.mem.Purge() }

func (c *Cache) Close() error {
	if c.remote == nil {
		return nil
	}
	return c.remote.Close()
}
