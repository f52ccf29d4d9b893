package cache

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/errors"
)

const redisKeyPattern = "smc:candles:*"

// RedisCache stores entries as JSON strings with a TTL.
type RedisCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisCache creates a cache on top of an existing client.
func NewRedisCache(client *goredis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(ctx context.Context, addr string, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(errors.ErrCodeCacheFailed, err, "failed to connect to redis at %s", addr)
	}

	return NewRedisCache(client, ttl), nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key Key) (types.CandleSequence, bool, error) {
	data, err := c.client.Get(ctx, key.String()).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, errors.Wrapf(errors.ErrCodeCacheFailed, err, "redis get %s", key)
	}

	var candles types.CandleSequence
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, false, errors.Wrapf(errors.ErrCodeCacheFailed, err, "decode cached candles %s", key)
	}

	return candles, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key Key, candles types.CandleSequence) error {
	data, err := json.Marshal(candles)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeCacheFailed, err, "encode candles %s", key)
	}

	if err := c.client.Set(ctx, key.String(), data, c.ttl).Err(); err != nil {
		return errors.Wrapf(errors.ErrCodeCacheFailed, err, "redis set %s", key)
	}

	return nil
}

// Reset implements Cache. Only keys written by this cache are removed.
func (c *RedisCache) Reset(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, redisKeyPattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeCacheFailed, "redis scan", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeCacheFailed, "redis del", err)
	}

	return nil
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
