// Package cache is a best-effort JSON cache in front of the repositories. No method
// returns an error: an unreachable or misbehaving Redis degrades to cache misses.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	ListTTL = 10 * time.Minute
	ItemTTL = 30 * time.Minute
)

type Store struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// New wraps rdb. A nil client yields a Store where every lookup misses.
func New(rdb *redis.Client, logger ...*zap.Logger) *Store {
	l := zap.L().Named("cache")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("cache")
	}
	return &Store{rdb: rdb, logger: l}
}

func (s *Store) enabled() bool {
	return s != nil && s.rdb != nil
}

// Get decodes the cached value for key into dest and reports whether it did.
func (s *Store) Get(ctx context.Context, key string, dest any) bool {
	if !s.enabled() {
		return false
	}

	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if !s.enabled() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Del invalidates keys in a single round trip.
func (s *Store) Del(ctx context.Context, keys ...string) {
	if !s.enabled() || len(keys) == 0 {
		return
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
