package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreSetGet(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()

	require.True(t, s.Set(ctx, "k", []byte(`{"a":1}`), time.Minute))
	got, ok := s.Get(ctx, "k")
	require.True(t, ok)
	require.JSONEq(t, `{"a":1}`, string(got))
	require.True(t, s.Exists(ctx, "k"))
}

func TestStoreMissOnUnknownKey(t *testing.T) {
	t.Parallel()

	s := NewStore()
	_, ok := s.Get(context.Background(), "missing")
	require.False(t, ok)
	require.False(t, s.Exists(context.Background(), "missing"))
}

func TestStoreTTLExpiry(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	s.Set(ctx, "short", []byte("v"), 10*time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := s.Get(ctx, "short")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	s.Set(ctx, "k", []byte("v"), 0)

	require.True(t, s.Delete(ctx, "k"))
	require.False(t, s.Delete(ctx, "k"))
	require.False(t, s.Exists(ctx, "k"))
}

func TestStoreCopiesValues(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	buf := []byte("original")
	s.Set(ctx, "k", buf, 0)
	buf[0] = 'X'

	got, ok := s.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, "original", string(got))

	got[0] = 'Y'
	again, _ := s.Get(ctx, "k")
	require.Equal(t, "original", string(again))
}
