package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AnalyticsCache is a thin TTL cache over redis for dashboard aggregates.
// A nil client disables caching entirely; every method degrades to a miss or
// a no-op so the analytics path works without redis.
type AnalyticsCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

const analyticsCachePrefix = "analytics:"

func NewAnalyticsCache(client *redis.Client, logger *zap.Logger, ttl time.Duration) *AnalyticsCache {
	return &AnalyticsCache{client: client, logger: logger, ttl: ttl}
}

func (c *AnalyticsCache) SetTTL(ttl time.Duration) {
	c.ttl = ttl
}

// Get unmarshals a cached value into dest, reporting whether it was found.
// Redis failures count as misses; the dashboards must not depend on redis
// being up.
func (c *AnalyticsCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, analyticsCachePrefix+key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *AnalyticsCache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, analyticsCachePrefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache analytics result", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every cached aggregate. Called after survey and attendance
// writes and after a retention run.
func (c *AnalyticsCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, analyticsCachePrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("analytics cache scan failed", zap.Error(err))
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.logger.Warn("analytics cache invalidation failed", zap.Error(err))
		}
	}
}
