package cache

import (
	"context"
	"errors"
	"fmt"
	"load-planner-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisPlanCache stores serialized planning responses in Redis.
// Entries expire by TTL only. Keys carry the reference digest, so plans built on
// other reference data are never served.
type RedisPlanCache struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

var _ ports.PlanCache = (*RedisPlanCache)(nil)

// DialRedis connects and pings before returning the client.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("dial redis %s: %w", addr, err)
	}
	return client, nil
}

func NewRedisPlanCache(client *redis.Client, log *zap.Logger) *RedisPlanCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisPlanCache{
		client: client,
		prefix: "loadplan:",
		log:    log.With(zap.String("component", "plan_cache")),
	}
}

func (c *RedisPlanCache) Close() error {
	return c.client.Close()
}

func (c *RedisPlanCache) key(k string) string {
	return c.prefix + k
}

func (c *RedisPlanCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.String("key", key))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("plan cache get: %w", err)
	}
	c.log.Debug("cache hit",
		zap.String("key", key),
		zap.Int("size_bytes", len(val)),
		zap.Int64("dur_ms", time.Since(start).Milliseconds()),
	)
	return val, true, nil
}

func (c *RedisPlanCache) Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("plan cache put: %w", err)
	}
	c.log.Debug("cache set", zap.String("key", key), zap.Int("size_bytes", len(payload)), zap.Duration("ttl", ttl))
	return nil
}
