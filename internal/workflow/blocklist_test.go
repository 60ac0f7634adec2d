package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlocklistExactMatch(t *testing.T) {
	t.Parallel()

	b := NewBlocklist([]string{"localhost", "Internal.Example.Com"})

	require.True(t, b.Blocked("localhost"))
	require.True(t, b.Blocked("internal.example.com"))
	require.True(t, b.Blocked("INTERNAL.EXAMPLE.COM"))
	require.False(t, b.Blocked("example.com"))
	require.False(t, b.Blocked("sublocalhost"))
}

func TestBlocklistSuffixMatch(t *testing.T) {
	t.Parallel()

	b := NewBlocklist([]string{"*.internal.corp", ".staging.example.com"})

	require.True(t, b.Blocked("internal.corp"))
	require.True(t, b.Blocked("db.internal.corp"))
	require.True(t, b.Blocked("a.b.internal.corp"))
	require.True(t, b.Blocked("api.staging.example.com"))
	require.False(t, b.Blocked("notinternal.corp"))
	require.False(t, b.Blocked("internal.corp.evil.com"))
}

func TestBlocklistEmptyAndNil(t *testing.T) {
	t.Parallel()

	require.False(t, NewBlocklist(nil).Blocked("example.com"))
	require.False(t, NewBlocklist([]string{"", "  "}).Blocked("example.com"))

	var b *Blocklist
	require.False(t, b.Blocked("example.com"))
}
