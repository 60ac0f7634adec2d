package seo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rankonai/seoscope/internal/fetch"
)

type fakeFetcher struct {
	results map[string]fetch.Result
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) fetch.Result {
	if r, ok := f.results[rawURL]; ok {
		return r
	}
	return fetch.Result{URL: rawURL, Status: 404, Headers: map[string]string{}, Backend: "fake"}
}

type fakeRenderer struct {
	result fetch.Result
	calls  int
}

func (f *fakeRenderer) Render(_ context.Context, rawURL string) fetch.Result {
	f.calls++
	r := f.result
	r.URL = rawURL
	return r
}

// stepClock advances by a fixed step on every Now call.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

const analyzerPageURL = "https://example.com/page"

func analyzerFixture() *fakeFetcher {
	return &fakeFetcher{results: map[string]fetch.Result{
		analyzerPageURL: {
			URL:     analyzerPageURL,
			Status:  200,
			Content: goodPageHTML,
			Headers: map[string]string{
				"Content-Type":     "text/html; charset=utf-8",
				"Content-Language": "en",
			},
			ResponseTimeMs: 123.4,
			Backend:        "fake",
		},
		"https://example.com/robots.txt": {
			URL:     "https://example.com/robots.txt",
			Status:  200,
			Content: "User-agent: GPTBot\nDisallow: /\n\nSitemap: https://example.com/sitemap.xml\n",
			Headers: map[string]string{},
		},
		"https://example.com/llms.txt": {
			URL:     "https://example.com/llms.txt",
			Status:  200,
			Content: "# Example\nGuide for language models.",
			Headers: map[string]string{},
		},
		"https://example.com/sitemap.xml": {
			URL:     "https://example.com/sitemap.xml",
			Status:  200,
			Content: `<?xml version="1.0"?><urlset></urlset>`,
			Headers: map[string]string{"Content-Type": "application/xml"},
		},
	}}
}

func TestAnalyzer_Analyze(t *testing.T) {
	t.Parallel()

	clock := &stepClock{
		now:  time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
		step: 500 * time.Millisecond,
	}
	a := NewAnalyzer(analyzerFixture(), nil, clock, zap.NewNop())

	report, err := a.Analyze(context.Background(), analyzerPageURL)
	require.NoError(t, err)

	require.Equal(t, analyzerPageURL, report.URL)
	require.Equal(t, "2025-03-14T10:30:00Z", report.Timestamp)
	require.Equal(t, int64(500), report.CrawlTimeMs)

	require.Equal(t, Technical{
		HTTPS:           true,
		ResponseTimeMs:  123,
		ContentType:     "text/html; charset=utf-8",
		ContentEncoding: "none",
	}, report.Technical)

	require.True(t, report.AIIndexing.RobotsTxt.Present)
	require.True(t, report.AIIndexing.RobotsTxt.PageCrawlable)
	require.Equal(t, BotBlocked, report.AIIndexing.RobotsTxt.AIBotsStatus["GPTBot"])
	require.Equal(t, BotAllowedByDefault, report.AIIndexing.RobotsTxt.AIBotsStatus["ClaudeBot"])
	require.Equal(t, []string{"https://example.com/sitemap.xml"}, report.AIIndexing.RobotsTxt.SitemapsDeclared)

	require.True(t, report.AIIndexing.LLMsTxt.Present)
	require.Equal(t, "# Example\nGuide for language models....", *report.AIIndexing.LLMsTxt.ContentPreview)
	require.True(t, report.AIIndexing.SitemapXML.Present)

	require.Equal(t, "en", *report.Language.Code)
	require.Equal(t, "html_lang", *report.Language.Source)

	// The clean fixture page only loses points for thin content and the
	// one blocked bot.
	require.Equal(t, 100, report.Scores.Technical)
	require.Equal(t, 100, report.Scores.OnPage)
	require.Equal(t, 80, report.Scores.Content)
	require.Equal(t, 100, report.Scores.StructuredData)
	require.Equal(t, 95, report.Scores.AIReadiness)
	require.Equal(t, 100, report.Scores.SocialSharing)
	require.Equal(t, 96, report.Scores.Overall)

	// The blocked-bot issue is informational and arrives after scoring.
	require.Len(t, report.Issues, 1)
	require.Equal(t, "AI_BOTS_BLOCKED", report.Issues[0].Code)
	require.Equal(t, "Some AI bots are blocked: GPTBot", report.Issues[0].Message)

	require.Equal(t, "SEO analysis for "+analyzerPageURL, report.LLMContext.Summary)
	require.Equal(t, 1, report.LLMContext.TotalIssuesCount)
	require.True(t, report.LLMContext.KeyMetrics.HasLLMsTxt)

	require.Nil(t, report.Rendering)
}

func TestAnalyzer_Analyze_RecommendationsSorted(t *testing.T) {
	t.Parallel()

	f := analyzerFixture()
	r := f.results[analyzerPageURL]
	r.Content = "<html><body><p>bare page with nothing set</p></body></html>"
	f.results[analyzerPageURL] = r

	report, err := NewAnalyzer(f, nil, nil, nil).Analyze(context.Background(), analyzerPageURL)
	require.NoError(t, err)

	require.NotEmpty(t, report.Recommendations)
	for i := 1; i < len(report.Recommendations); i++ {
		require.LessOrEqual(t, report.Recommendations[i-1].Priority, report.Recommendations[i].Priority)
	}
}

func TestAnalyzer_Analyze_HTTPErrorStatus(t *testing.T) {
	t.Parallel()

	f := analyzerFixture()
	f.results[analyzerPageURL] = fetch.Result{URL: analyzerPageURL, Status: 404, Headers: map[string]string{}}

	report, err := NewAnalyzer(f, nil, nil, zap.NewNop()).Analyze(context.Background(), analyzerPageURL)
	require.Nil(t, report)
	require.EqualError(t, err, "HTTP 404")
}

func TestAnalyzer_Analyze_TransportError(t *testing.T) {
	t.Parallel()

	f := analyzerFixture()
	f.results[analyzerPageURL] = fetch.Result{URL: analyzerPageURL, Error: "Timeout"}

	_, err := NewAnalyzer(f, nil, nil, zap.NewNop()).Analyze(context.Background(), analyzerPageURL)
	require.EqualError(t, err, "Timeout")
}

func TestAnalyzer_Analyze_MissingSupportFiles(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{results: map[string]fetch.Result{
		analyzerPageURL: analyzerFixture().results[analyzerPageURL],
	}}

	report, err := NewAnalyzer(f, nil, nil, zap.NewNop()).Analyze(context.Background(), analyzerPageURL)
	require.NoError(t, err)

	require.False(t, report.AIIndexing.RobotsTxt.Present)
	require.True(t, report.AIIndexing.RobotsTxt.PageCrawlable)
	require.False(t, report.AIIndexing.LLMsTxt.Present)
	require.Nil(t, report.AIIndexing.LLMsTxt.ContentPreview)
	require.False(t, report.AIIndexing.SitemapXML.Present)

	// Absent robots.txt leaves every bot allowed.
	for bot, status := range report.AIIndexing.RobotsTxt.AIBotsStatus {
		require.Equal(t, BotAllowedByDefault, status, "bot %s", bot)
	}

	codes := issueCodes(report.Issues)
	require.Contains(t, codes, "NO_LLMS_TXT")
	require.Contains(t, codes, "NO_SITEMAP")
}

func TestAnalyzer_Analyze_RendersJavaScriptShell(t *testing.T) {
	t.Parallel()

	shell := `<html><body><div id="root"></div><script src="/app.js"></script></body></html>`
	f := analyzerFixture()
	r := f.results[analyzerPageURL]
	r.Content = shell
	f.results[analyzerPageURL] = r

	renderer := &fakeRenderer{result: fetch.Result{
		Status:  200,
		Content: goodPageHTML,
		Headers: map[string]string{"content-type": "text/html"},
		Backend: "headless",
	}}

	report, err := NewAnalyzer(f, renderer, nil, zap.NewNop()).Analyze(context.Background(), analyzerPageURL)
	require.NoError(t, err)
	require.Equal(t, 1, renderer.calls)

	require.NotNil(t, report.Rendering)
	require.True(t, report.Rendering.JSShellDetected)
	require.True(t, report.Rendering.Rendered)
	require.Empty(t, report.Rendering.Note)

	// The analysis ran on the rendered DOM.
	require.NotNil(t, report.Metadata.Title.Value)
	require.Equal(t, 1, report.Headings.H1.Count)

	// Technical data still describes the plain fetch.
	require.Equal(t, "text/html; charset=utf-8", report.Technical.ContentType)
}

func TestAnalyzer_Analyze_RenderFailureKeepsShell(t *testing.T) {
	t.Parallel()

	shell := `<html><body><div id="root"></div></body></html>`
	f := analyzerFixture()
	r := f.results[analyzerPageURL]
	r.Content = shell
	f.results[analyzerPageURL] = r

	renderer := &fakeRenderer{result: fetch.Result{Error: "Browser error: crashed", Backend: "headless"}}

	report, err := NewAnalyzer(f, renderer, nil, zap.NewNop()).Analyze(context.Background(), analyzerPageURL)
	require.NoError(t, err)

	require.NotNil(t, report.Rendering)
	require.True(t, report.Rendering.JSShellDetected)
	require.False(t, report.Rendering.Rendered)
	require.Equal(t, "Browser error: crashed", report.Rendering.Note)

	// Analysis fell back to the shell, which has no title.
	require.Contains(t, issueCodes(report.Issues), "TITLE_MISSING")
}

func TestAnalyzer_Analyze_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := NewAnalyzer(analyzerFixture(), nil, nil, nil).Analyze(context.Background(), "http://exa mple.com/%zz")
	require.Error(t, err)
}

func TestAnalyzer_HeaderLookupIgnoresCase(t *testing.T) {
	t.Parallel()

	f := analyzerFixture()
	r := f.results[analyzerPageURL]
	r.Headers = map[string]string{
		"content-type":            "text/html",
		"server":                  "nginx",
		"x-frame-options":         "DENY",
		"content-security-policy": "default-src 'self'",
		"content-encoding":        "br",
	}
	f.results[analyzerPageURL] = r

	report, err := NewAnalyzer(f, nil, nil, zap.NewNop()).Analyze(context.Background(), analyzerPageURL)
	require.NoError(t, err)

	require.Equal(t, "text/html", report.Technical.ContentType)
	require.Equal(t, "nginx", report.Technical.Server)
	require.Equal(t, "DENY", report.Technical.XFrameOptions)
	require.Equal(t, "br", report.Technical.ContentEncoding)
	require.True(t, report.Technical.ContentSecurityPolicy)
}
