// Package cache is the read-through cache used in front of the catalog store.
//
// The cache is an optimization only. Every operation degrades to a miss or a
// no-op when the backend is missing, slow or failing, so callers never branch
// on cache errors.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"catalog-service/internal/util"

	"go.uber.org/zap"
)

const (
	DefaultTTL       = 300 * time.Second
	DefaultOpTimeout = 500 * time.Millisecond
)

// Backend is the key/value store behind the cache. redisclient.Client implements it.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
	Ping(ctx context.Context) error
}

type Cache struct {
	backend   Backend
	ttl       time.Duration
	opTimeout time.Duration
	logger    *zap.Logger
}

// New creates a cache over backend. A nil backend yields a cache that always misses.
func New(backend Backend, ttl, opTimeout time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}
	return &Cache{
		backend:   backend,
		ttl:       ttl,
		opTimeout: opTimeout,
		logger:    util.GetLogger(),
	}
}

// Enabled reports whether a backend is configured.
func (c *Cache) Enabled() bool {
	return c.backend != nil
}

// TTL returns the default entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get decodes the JSON value at key into dest and reports whether it was a hit.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c.backend == nil {
		util.CacheRequestsTotal.WithLabelValues("disabled").Inc()
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	raw, found, err := c.backend.Get(ctx, key)
	if err != nil {
		c.fail("get", key, err)
		util.CacheRequestsTotal.WithLabelValues("miss").Inc()
		return false
	}
	if !found {
		util.CacheRequestsTotal.WithLabelValues("miss").Inc()
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		// A corrupt entry is dropped so the next read repopulates it.
		c.fail("decode", key, err)
		c.Delete(ctx, key)
		util.CacheRequestsTotal.WithLabelValues("miss").Inc()
		return false
	}

	util.CacheRequestsTotal.WithLabelValues("hit").Inc()
	return true
}

// Set stores value as JSON at key. ttl <= 0 uses the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c.backend == nil {
		return
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.fail("encode", key, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.backend.Set(ctx, key, raw, ttl); err != nil {
		c.fail("set", key, err)
	}
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) {
	if c.backend == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.backend.Delete(ctx, key); err != nil {
		c.fail("delete", key, err)
	}
}

// ClearPattern removes every key starting with prefix.
func (c *Cache) ClearPattern(ctx context.Context, prefix string) {
	if c.backend == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	deleted, err := c.backend.DeleteByPrefix(ctx, prefix)
	if err != nil {
		c.fail("clear_pattern", prefix, err)
		return
	}
	c.logger.Debug("Cache prefix cleared",
		zap.String("prefix", prefix),
		zap.Int64("deleted", deleted))
}

// Ping reports whether the backend answers.
func (c *Cache) Ping(ctx context.Context) bool {
	if c.backend == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	return c.backend.Ping(ctx) == nil
}

func (c *Cache) fail(op, key string, err error) {
	util.CacheErrorsTotal.WithLabelValues(op).Inc()
	c.logger.Warn("Cache operation failed, continuing without cache",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err))
}
