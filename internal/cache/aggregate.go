package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AggregateCache stores one JSON-serialized aggregate per user under a fixed
// key prefix. The dashboard and analytics services each own one instance; the
// bulk components only ever call Invalidate so the next read recomputes.
type AggregateCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

func NewAggregateCache(rdb *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *AggregateCache {
	return &AggregateCache{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *AggregateCache) key(userID uuid.UUID) string {
	return c.prefix + ":" + userID.String()
}

// Get unmarshals the cached aggregate for userID into dest. The boolean is
// false on a cache miss.
func (c *AggregateCache) Get(ctx context.Context, userID uuid.UUID, dest interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// Treat a corrupt entry as a miss and drop it.
		c.logger.Warn("dropping unreadable cache entry", zap.String("key", c.key(userID)), zap.Error(err))
		c.rdb.Del(ctx, c.key(userID))
		return false, nil
	}
	return true, nil
}

// Set stores the aggregate for userID with the cache's TTL.
func (c *AggregateCache) Set(ctx context.Context, userID uuid.UUID, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(userID), raw, c.ttl).Err()
}

// Invalidate drops the cached aggregate for userID so it is recomputed on the
// next read.
func (c *AggregateCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.rdb.Del(ctx, c.key(userID)).Err()
}
