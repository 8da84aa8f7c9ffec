package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 500

// RedisPool stores items in redis under "namespace:key".
type RedisPool struct {
	*pool
	client redis.UniversalClient
}

func NewRedisPool(client redis.UniversalClient, namespace string, defaultTTL time.Duration) *RedisPool {
	return &RedisPool{
		pool:   newPool("redis", namespace, defaultTTL, &redisStore{client: client}),
		client: client,
	}
}

// Ping checks the connection.
func (p *RedisPool) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

type redisStore struct {
	client redis.UniversalClient
}

func (s *redisStore) get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return data, true, nil
}

func (s *redisStore) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *redisStore) del(ctx context.Context, keys ...string) error {
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// clear removes every key under prefix with SCAN so the server is never
// blocked by KEYS.
func (s *redisStore) clear(ctx context.Context, prefix string) error {
	if prefix == "" {
		return s.client.FlushDB(ctx).Err()
	}

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// prune is a no-op: redis expires keys itself.
func (s *redisStore) prune(context.Context) error {
	return nil
}
