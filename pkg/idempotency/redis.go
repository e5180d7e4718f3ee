// Package idempotency keeps short-lived purchase dedup keys in Redis.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// pending marks a key whose purchase has not committed yet.
const pending = "pending"

// RedisStore keeps completed results for ttl. A pending marker only lives for
// pendingTTL, so a request that died before Complete frees its key quickly.
type RedisStore struct {
	rdb        *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
	prefix     string
}

func NewRedisStore(rdb *redis.Client, ttl, pendingTTL time.Duration) *RedisStore {
	if pendingTTL <= 0 || pendingTTL > ttl {
		pendingTTL = ttl
	}
	return &RedisStore{rdb: rdb, ttl: ttl, pendingTTL: pendingTTL, prefix: "idem:purchase:"}
}

// Reserve claims key. When the key already exists it returns its stored
// result ("" while the first request is still in flight) and reserved=false.
func (s *RedisStore) Reserve(ctx context.Context, key string) (result string, reserved bool, err error) {
	ok, err := s.rdb.SetNX(ctx, s.prefix+key, pending, s.pendingTTL).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}

	val, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; try once more
		ok, err = s.rdb.SetNX(ctx, s.prefix+key, pending, s.pendingTTL).Result()
		return "", ok, err
	}
	if err != nil {
		return "", false, err
	}
	if val == pending {
		return "", false, nil
	}
	return val, false, nil
}

func (s *RedisStore) Complete(ctx context.Context, key, result string) error {
	return s.rdb.Set(ctx, s.prefix+key, result, s.ttl).Err()
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.prefix+key).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
