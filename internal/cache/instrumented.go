package cache

import (
	"context"
	"strings"
	"time"

	"github.com/rankonai/seoscope/internal/metrics"
)

// Instrument wraps a Store so every lookup is recorded as a hit or miss
// against its key prefix.
func Instrument(s Store) Store {
	metrics.Init()
	return &instrumented{inner: s}
}

type instrumented struct {
	inner Store
}

func (s *instrumented) Get(ctx context.Context, key string) ([]byte, bool) {
	value, ok := s.inner.Get(ctx, key)
	metrics.ObserveCache(prefixOf(key), ok)
	return value, ok
}

func (s *instrumented) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	return s.inner.Set(ctx, key, value, ttl)
}

func (s *instrumented) Delete(ctx context.Context, key string) bool {
	return s.inner.Delete(ctx, key)
}

func (s *instrumented) Exists(ctx context.Context, key string) bool {
	ok := s.inner.Exists(ctx, key)
	metrics.ObserveCache(prefixOf(key), ok)
	return ok
}

func (s *instrumented) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

func (s *instrumented) Close() error {
	return s.inner.Close()
}

// prefixOf strips the trailing digest from a derived key so metric labels
// stay bounded.
func prefixOf(key string) string {
	if i := strings.LastIndex(key, ":"); i > 0 {
		return key[:i]
	}
	return key
}
