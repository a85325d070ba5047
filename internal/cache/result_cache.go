package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ResultCacheStats tracks cache performance counters.
type ResultCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.RWMutex
}

// ResultCache stores serialized analytics results in Redis, keyed by the
// snapshot version that produced them. Replacing the dataset changes the
// version, so stale results are never served; Invalidate just reclaims
// the space early.
type ResultCache struct {
	redis  *redis.Client
	ttl    time.Duration
	stats  *ResultCacheStats
	prefix string
	logger *logrus.Logger
}

// NewResultCache creates a Redis-backed result cache.
func NewResultCache(redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *ResultCache {
	return &ResultCache{
		redis:  redisClient,
		ttl:    ttl,
		stats:  &ResultCacheStats{},
		prefix: "result_cache:",
		logger: logger,
	}
}

func (c *ResultCache) key(version string, operation string) string {
	return fmt.Sprintf("%s%s:%s", c.prefix, version, operation)
}

// Get retrieves a cached result for the given snapshot version and
// operation, decoding it into dest. Redis errors degrade to a miss so the
// caller just recomputes.
func (c *ResultCache) Get(ctx context.Context, version string, operation string, dest interface{}) bool {
	data, err := c.redis.Get(ctx, c.key(version, operation)).Result()
	if err != nil {
		if err != redis.Nil && c.logger != nil {
			c.logger.WithError(err).WithField("operation", operation).Warn("result cache read failed")
		}
		c.miss()
		return false
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		if c.logger != nil {
			c.logger.WithError(err).WithField("operation", operation).Warn("result cache entry is not decodable")
		}
		c.miss()
		return false
	}

	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	return true
}

// Set stores a result for the given snapshot version and operation.
// Failures are logged and swallowed; caching is best effort.
func (c *ResultCache) Set(ctx context.Context, version string, operation string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		if c.logger != nil {
			c.logger.WithError(err).WithField("operation", operation).Warn("result cache encode failed")
		}
		return
	}

	if err := c.redis.Set(ctx, c.key(version, operation), data, c.ttl).Err(); err != nil {
		if c.logger != nil {
			c.logger.WithError(err).WithField("operation", operation).Warn("result cache write failed")
		}
		return
	}

	c.stats.mu.Lock()
	c.stats.Sets++
	c.stats.mu.Unlock()
}

// Invalidate removes every cached result for a snapshot version.
func (c *ResultCache) Invalidate(ctx context.Context, version string) error {
	pattern := c.prefix + version + ":*"

	var keys []string
	iter := c.redis.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("error clearing cache: %w", err)
	}
	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{"version": version, "entries": len(keys)}).Debug("invalidated cached results")
	}
	return nil
}

// GetStats returns a copy of the current cache counters.
func (c *ResultCache) GetStats() ResultCacheStats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return ResultCacheStats{
		Hits:   c.stats.Hits,
		Misses: c.stats.Misses,
		Sets:   c.stats.Sets,
	}
}

func (c *ResultCache) miss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}
