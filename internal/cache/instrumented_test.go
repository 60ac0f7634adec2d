package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInstrumentPassesThrough(t *testing.T) {
	t.Parallel()

	inner := &fakeStore{values: map[string][]byte{}}
	store := Instrument(inner)

	key := Key("workflow:result", "https://example.com/")
	require.True(t, store.Set(context.Background(), key, []byte("payload"), time.Minute))

	got, ok := store.Get(context.Background(), key)
	require.True(t, ok)
	require.Equal(t, []byte("payload"), got)

	_, ok = store.Get(context.Background(), Key("workflow:result", "https://other.example/"))
	require.False(t, ok)

	require.True(t, store.Exists(context.Background(), key))
	require.True(t, store.Delete(context.Background(), key))
	require.False(t, store.Exists(context.Background(), key))
	require.NoError(t, store.Ping(context.Background()))
	require.NoError(t, store.Close())
	require.True(t, inner.closed)
}

func TestPrefixOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, "workflow:result", prefixOf(Key("workflow:result", "https://example.com/")))
	require.Equal(t, "workflow:step:overview", prefixOf(Key("workflow:step:overview", "https://example.com/")))
	require.Equal(t, "bare", prefixOf("bare"))
}

type fakeStore struct {
	values map[string][]byte
	closed bool
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, bool) {
	value, ok := s.values[key]
	return value, ok
}

func (s *fakeStore) Set(_ context.Context, key string, value []byte, _ time.Duration) bool {
	s.values[key] = value
	return true
}

func (s *fakeStore) Delete(_ context.Context, key string) bool {
	delete(s.values, key)
	return true
}

func (s *fakeStore) Exists(_ context.Context, key string) bool {
	_, ok := s.values[key]
	return ok
}

func (s *fakeStore) Ping(context.Context) error {
	return nil
}

func (s *fakeStore) Close() error {
	s.closed = true
	return nil
}
