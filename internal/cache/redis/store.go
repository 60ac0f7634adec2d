// Package redis provides the production cache store backed by Redis.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store wraps a Redis client behind the cache contract. Backend failures
// are reported as misses/no-ops, never as errors: the workflow must keep
// functioning when Redis is down, just without caching benefits.
type Store struct {
	client *redis.Client
	logger *zap.Logger
}

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewStore builds a store for the given address. Connection establishment
// is lazy; an unreachable server degrades every operation to a miss until
// it comes back.
func NewStore(opts Options, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	return &Store{client: client, logger: logger}
}

// Get returns the value for key, or a miss on absence or backend failure.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug("cache get degraded to miss", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return val, true
}

// Set stores the value with a TTL; reports false on backend failure.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.Debug("cache set dropped", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Delete removes the key; reports whether a key was deleted.
func (s *Store) Delete(ctx context.Context, key string) bool {
	n, err := s.client.Del(ctx, key).Result()
	if err != nil {
		s.logger.Debug("cache delete dropped", zap.String("key", key), zap.Error(err))
		return false
	}
	return n > 0
}

// Exists reports whether the key is present; false on backend failure.
func (s *Store) Exists(ctx context.Context, key string) bool {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		s.logger.Debug("cache exists degraded to miss", zap.String("key", key), zap.Error(err))
		return false
	}
	return n > 0
}

// Ping checks connectivity, for health reporting.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
