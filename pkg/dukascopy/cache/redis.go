package cache

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/LimeMojito/trading-data-stream/pkg/errors"
	"github.com/LimeMojito/trading-data-stream/pkg/logger"
	"github.com/LimeMojito/trading-data-stream/pkg/model"
)

// RedisConfig locates the redis instance for the in-memory tier.
type RedisConfig struct {
	Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL" envDefault:"24h"`
	Enabled  bool          `env:"ENABLED" envDefault:"false"`
}

// RedisTickCache keeps hot tick archives in redis in front of slower tiers.
// Payloads are opaque byte blobs keyed by the vendor path with a TTL so the
// working set stays bounded.
type RedisTickCache struct {
	*fallbackTickCache
	client *redis.Client
	ttl    time.Duration
	log    logger.Interface
}

// NewRedisTickCache creates a redis tier over the client with a fallback.
func NewRedisTickCache(client *redis.Client, ttl time.Duration, fallback TickCache, log logger.Interface) *RedisTickCache {
	tier := &redisByteTier{client: client, ttl: ttl}
	return &RedisTickCache{
		fallbackTickCache: newFallbackTickCache("RedisTickCache", tier, fallback, log),
		client:            client,
		ttl:               ttl,
		log:               log,
	}
}

// CreateBarCache creates a redis bar cache with the fallback's bar cache behind it.
func (c *RedisTickCache) CreateBarCache(validate *validator.Validate, source TickSource) BarCache {
	return &redisBarCache{
		fallbackBarCache: newFallbackBarCache("RedisBarCache",
			&redisBarTier{client: c.client, ttl: c.ttl},
			c.fallback.CreateBarCache(validate, source),
			c.log),
	}
}

type redisByteTier struct {
	client *redis.Client
	ttl    time.Duration
}

func (t *redisByteTier) Check(ctx context.Context, path string) (io.ReadCloser, bool, error) {
	data, err := t.client.Get(ctx, path).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, errors.WrapCoded(errors.IoFailureError, err)
	}
	return io.NopCloser(bytes.NewReader(data)), true, nil
}

func (t *redisByteTier) Exists(ctx context.Context, path string) (bool, error) {
	count, err := t.client.Exists(ctx, path).Result()
	if err != nil {
		return false, errors.WrapCoded(errors.IoFailureError, err)
	}
	return count > 0, nil
}

func (t *redisByteTier) Save(ctx context.Context, path string, data []byte) error {
	if err := t.client.Set(ctx, path, data, t.ttl).Err(); err != nil {
		return errors.WrapCoded(errors.IoFailureError, err)
	}
	return nil
}

type redisBarCache struct {
	*fallbackBarCache
}

type redisBarTier struct {
	client *redis.Client
	ttl    time.Duration
}

func (t *redisBarTier) Check(ctx context.Context, barPath string) ([]model.Bar, bool, error) {
	data, err := t.client.Get(ctx, barPath).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, errors.WrapCoded(errors.IoFailureError, err)
	}
	bars, err := decodeBars(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return nil, false, err
	}
	return bars, true, nil
}

func (t *redisBarTier) Exists(ctx context.Context, barPath string) (bool, error) {
	return (&redisByteTier{client: t.client, ttl: t.ttl}).Exists(ctx, barPath)
}

func (t *redisBarTier) Save(ctx context.Context, barPath string, oneDayOfBars []model.Bar) error {
	encoded, err := encodeBars(oneDayOfBars)
	if err != nil {
		return err
	}
	if err := t.client.Set(ctx, barPath, encoded, t.ttl).Err(); err != nil {
		return errors.WrapCoded(errors.IoFailureError, err)
	}
	return nil
}
