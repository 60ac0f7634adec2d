// Package fetch defines the HTTP fetching contract shared by the page
// analysis pipeline and its backends.
package fetch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of fetching a single URL. A transport failure
// sets Error and leaves Status zero; an HTTP error status is not an
// Error. Content is only kept for 200 responses.
type Result struct {
	URL            string
	Status         int
	Content        string
	Headers        map[string]string
	Error          string
	ResponseTimeMs float64
	Backend        string
}

// OK reports whether the fetch succeeded with a 200 response.
func (r Result) OK() bool {
	return r.Error == "" && r.Status == 200
}

// Fetcher fetches a single URL. Implementations never return an error;
// failures are carried in the Result.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) Result
}

// Renderer fetches a URL with JavaScript execution and returns the
// rendered DOM. Used when a plain fetch comes back as an empty script
// shell.
type Renderer interface {
	Render(ctx context.Context, rawURL string) Result
}

// All fetches every URL concurrently and keys the results by the
// requested URL.
func All(ctx context.Context, f Fetcher, urls []string) map[string]Result {
	results := make([]Result, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = f.Fetch(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]Result, len(urls))
	for i, u := range urls {
		out[u] = results[i]
	}
	return out
}

// BrowserHeaders returns a desktop Chrome header set. Sites that reject
// obvious bots usually accept these.
func BrowserHeaders() map[string]string {
	return map[string]string{
		"User-Agent":                DefaultUserAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Accept-Encoding":           "gzip, deflate, br",
		"Cache-Control":             "no-cache",
		"Pragma":                    "no-cache",
		"Sec-Ch-Ua":                 `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`,
		"Sec-Ch-Ua-Mobile":          "?0",
		"Sec-Ch-Ua-Platform":        `"Windows"`,
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
		"Upgrade-Insecure-Requests": "1",
	}
}

// DefaultUserAgent is the user agent sent with every fetch.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
