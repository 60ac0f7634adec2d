package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// An unreachable server must degrade to misses and no-ops, never errors.
func TestStoreDegradesWhenUnreachable(t *testing.T) {
	t.Parallel()

	store := NewStore(Options{Addr: "127.0.0.1:1"}, zap.NewNop())
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	val, ok := store.Get(ctx, "workflow:result:deadbeef")
	require.False(t, ok)
	require.Nil(t, val)

	require.False(t, store.Set(ctx, "workflow:result:deadbeef", []byte(`{}`), time.Minute))
	require.False(t, store.Delete(ctx, "workflow:result:deadbeef"))
	require.False(t, store.Exists(ctx, "workflow:result:deadbeef"))
	require.Error(t, store.Ping(ctx))
}
