package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v7"

	"github.com/chainvault/ingestor/internal/log"
)

var logger = log.NewModuleLogger(log.ModuleCache)

// RedisCache is the production Cache backend, wired to redis.url,
// built on go-redis/v7. Context support is threaded through with
// WithContext per call since v7's client is not natively
// context-aware end to end.
type RedisCache struct {
	client *redis.Client
}

// RedisConfig mirrors the subset of redis.Options the core cares about.
type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewRedisCache parses URL and dials eagerly, returning the parse or
// dial error as is: the same fail-fast startup behavior as every other
// backend.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	client := redis.NewClient(opts)
	if err := client.Ping().Err(); err != nil {
		return nil, err
	}
	logger.Info("connected to redis cache")
	return &RedisCache{client: client}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.WithContext(ctx).Get(key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.WithContext(ctx).Set(key, value, ttl).Err()
}

// SetIfAbsent is SET key value NX EX ttl, the atomic primitive
// every dedup-on-first-claim caller needs.
func (r *RedisCache) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ok, err := r.client.WithContext(ctx).SetNX(key, value, ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.WithContext(ctx).Del(key).Err()
}

// Close releases the underlying connection pool.
func (r *RedisCache) Close() error { return r.client.Close() }
