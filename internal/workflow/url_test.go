package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases host", "https://EXAMPLE.COM/page", "https://example.com/page"},
		{"strips www prefix", "https://www.example.com/page", "https://example.com/page"},
		{"strips trailing slash", "https://example.com/page/", "https://example.com/page"},
		{"strips repeated trailing slashes", "https://example.com/page///", "https://example.com/page"},
		{"root path collapses", "https://example.com/", "https://example.com"},
		{"preserves path case", "https://example.com/About/Team", "https://example.com/About/Team"},
		{"preserves query", "https://example.com/search?q=Go&page=2", "https://example.com/search?q=Go&page=2"},
		{"preserves fragment", "https://example.com/docs#install", "https://example.com/docs#install"},
		{"preserves port", "http://Example.com:8080/x/", "http://example.com:8080/x"},
		{"uppercase scheme", "HTTPS://WWW.Example.COM/Path/", "https://example.com/Path"},
		{"trims whitespace", "  https://example.com  ", "https://example.com"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeURL(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeURLIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://www.example.com/a/b/",
		"http://EXAMPLE.com:8080/x?y=1",
		"https://example.com",
	}
	for _, input := range inputs {
		once, err := NormalizeURL(input)
		require.NoError(t, err)
		twice, err := NormalizeURL(once)
		require.NoError(t, err)
		require.Equal(t, once, twice)
	}
}

func TestNormalizeURLRejectsInvalid(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"example.com",
		"ftp://example.com/file",
		"javascript:alert(1)",
		"https://",
	}
	for _, input := range inputs {
		_, err := NormalizeURL(input)
		require.Error(t, err, "input %q", input)
	}
}

func TestHostname(t *testing.T) {
	t.Parallel()

	require.Equal(t, "example.com", Hostname("https://Example.com:8080/page"))
	require.Equal(t, "sub.example.com", Hostname("http://sub.example.com"))
	require.Equal(t, "", Hostname("://bad"))
}
