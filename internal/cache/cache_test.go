package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyDeterministic(t *testing.T) {
	t.Parallel()

	first := Key("workflow:result", "https://example.com")
	second := Key("workflow:result", "https://example.com")
	require.Equal(t, first, second)
	require.True(t, strings.HasPrefix(first, "workflow:result:"))

	suffix := strings.TrimPrefix(first, "workflow:result:")
	require.Len(t, suffix, 16)
}

func TestKeyVariesWithArguments(t *testing.T) {
	t.Parallel()

	base := Key("workflow:step:insights", "https://example.com")
	require.NotEqual(t, base, Key("workflow:step:insights", "https://example.org"))
	require.NotEqual(t, base, Key("workflow:step:signals", "https://example.com"))
	require.NotEqual(t, base, Key("workflow:step:insights", "https://example.com", "extra"))
}

func TestKeyMultipleParts(t *testing.T) {
	t.Parallel()

	// Parts are joined with a separator before hashing, so ("ab","c") and
	// ("a","bc") must not collide.
	require.NotEqual(t, Key("p", "ab", "c"), Key("p", "a", "bc"))
}
