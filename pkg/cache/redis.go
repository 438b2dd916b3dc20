package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// keyPrefix namespaces every entry so ExpireBefore can scan without
// touching unrelated keys in a shared Redis.
const keyPrefix = "decent:"

// RedisStore backs the cache with Redis. Gets and sets are single-key
// operations; concurrent writers simply overwrite.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already-configured client. The caller owns the
// client lifecycle.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// ExpireBefore deletes every namespaced entry created before cutoff. The
// embedded envelope timestamp is authoritative; entries that fail to parse
// are dropped as well since no reader can use them.
func (s *RedisStore) ExpireBefore(ctx context.Context, cutoff time.Time) error {
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		createdAt, err := CreatedAt(data)
		if err != nil || createdAt.Before(cutoff) {
			s.client.Del(ctx, key)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}
