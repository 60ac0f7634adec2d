// Package collyfetch implements fetch.Fetcher using the Colly collector.
package collyfetch

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"

	"github.com/rankonai/seoscope/internal/fetch"
	"github.com/rankonai/seoscope/internal/metrics"
)

// Backend identifies results produced by this fetcher.
const Backend = "colly"

// Config controls collector behavior.
type Config struct {
	UserAgent    string
	Timeout      time.Duration
	PerHostRPS   float64
	PerHostBurst int
}

// Fetcher fetches pages over plain HTTP with browser-like headers and a
// per-host rate limit.
type Fetcher struct {
	cfg     Config
	headers map[string]string
	base    *colly.Collector

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New builds a Fetcher. A zero PerHostRPS applies the default limit; a
// negative value disables limiting.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PerHostRPS == 0 {
		cfg.PerHostRPS = 4
	}
	if cfg.PerHostBurst <= 0 {
		cfg.PerHostBurst = 4
	}

	headers := fetch.BrowserHeaders()
	if cfg.UserAgent != "" {
		headers["User-Agent"] = cfg.UserAgent
	}

	c := colly.NewCollector(colly.Async(false))
	// robots.txt is analyzed as page data, not obeyed for fetching.
	c.IgnoreRobotsTxt = true
	c.AllowURLRevisit = true
	// Error statuses are results, not transport failures.
	c.ParseHTTPErrorResponse = true
	c.DetectCharset = true
	c.SetRequestTimeout(cfg.Timeout)
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:      cfg,
		headers:  headers,
		base:     c,
		limiters: map[string]*rate.Limiter{},
	}
}

// Fetch executes a single HTTP GET. Transport failures are reported in
// the Result's Error field; HTTP error statuses are normal results.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) fetch.Result {
	begin := time.Now()
	result := f.fetch(ctx, rawURL)
	metrics.ObserveFetch(outcomeOf(result), time.Since(begin))
	return result
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) fetch.Result {
	result := fetch.Result{URL: rawURL, Headers: map[string]string{}, Backend: Backend}

	if err := f.waitForHost(ctx, rawURL); err != nil {
		result.Error = errorMessage(err)
		return result
	}

	start := time.Now()
	collector := f.base.Clone()

	var transportErr error
	collector.OnRequest(func(r *colly.Request) {
		for key, value := range f.headers {
			r.Headers.Set(key, value)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		result.Status = r.StatusCode
		result.Headers = headerMap(r.Headers)
		if r.StatusCode == 200 {
			result.Content = string(r.Body)
		}
		result.ResponseTimeMs = float64(time.Since(start)) / float64(time.Millisecond)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		transportErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return fetch.Result{
			URL:     rawURL,
			Headers: map[string]string{},
			Error:   errorMessage(ctx.Err()),
			Backend: Backend,
		}
	case err := <-done:
		if transportErr != nil {
			result.Error = errorMessage(transportErr)
		} else if err != nil {
			result.Error = errorMessage(err)
		}
		return result
	}
}

// waitForHost throttles requests per hostname.
func (f *Fetcher) waitForHost(ctx context.Context, rawURL string) error {
	if f.cfg.PerHostRPS < 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		// Visit will surface the malformed URL.
		return nil
	}

	f.mu.Lock()
	limiter, ok := f.limiters[u.Hostname()]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(f.cfg.PerHostRPS), f.cfg.PerHostBurst)
		f.limiters[u.Hostname()] = limiter
	}
	f.mu.Unlock()

	return limiter.Wait(ctx)
}

func outcomeOf(result fetch.Result) string {
	switch {
	case result.Error != "":
		return metrics.FetchError
	case result.Status == 200:
		return metrics.FetchOK
	default:
		return metrics.FetchHTTPError
	}
}

func errorMessage(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "Timeout"
	}
	return err.Error()
}

func headerMap(h *http.Header) map[string]string {
	out := map[string]string{}
	if h == nil {
		return out
	}
	for key := range *h {
		out[key] = h.Get(key)
	}
	return out
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		// Analysis should still complete on sites with broken TLS chains.
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: true},
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
