// Package noop provides a cache store that stores nothing. Every read is
// a miss and every write is dropped, which forces the workflow down its
// uncached path. Useful in tests and when caching is disabled.
package noop

import (
	"context"
	"time"
)

type Store struct{}

func NewStore() *Store { return &Store{} }

func (*Store) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (*Store) Set(context.Context, string, []byte, time.Duration) bool { return false }

func (*Store) Delete(context.Context, string) bool { return false }

func (*Store) Exists(context.Context, string) bool { return false }

func (*Store) Ping(context.Context) error { return nil }

func (*Store) Close() error { return nil }
