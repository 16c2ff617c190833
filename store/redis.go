package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	cacheerrors "github.com/gozephyr/nscache/errors"
)

// Redis is a Surface backed by a Redis instance, for mirrors shared with
// other processes reading the same keys. Expiration is still enforced by the
// cache engine, so entries are stored without a Redis TTL.
type Redis struct {
	rdb *redis.Client
}

// RedisConfig holds Redis surface configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis creates a Redis-backed surface.
func NewRedis(config RedisConfig) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	return &Redis{rdb: rdb}
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

// Get implements Surface.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, cacheerrors.Wrap("store.Redis.Get", key, err)
	}
	return val, true, nil
}

// Set implements Surface.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return cacheerrors.Wrap("store.Redis.Set", key, err)
	}
	return nil
}

// Delete implements Surface.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return cacheerrors.Wrap("store.Redis.Delete", key, err)
	}
	return nil
}

// Keys implements Surface. It walks the keyspace with SCAN rather than KEYS
// to avoid blocking the server on large databases.
func (r *Redis) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := r.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, cacheerrors.Wrap("store.Redis.Keys", "", err)
	}
	return keys, nil
}

// Clear implements Surface.
func (r *Redis) Clear(ctx context.Context, prefix string) error {
	keys, err := r.Keys(ctx, prefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		return cacheerrors.Wrap("store.Redis.Clear", "", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close implements Surface.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
