package seo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rankonai/seoscope/internal/fetch"
	"github.com/rankonai/seoscope/internal/fetch/detector"
)

// Clock supplies timestamps so tests can pin them.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Analyzer runs the full overview analysis for one URL: it fetches the
// page together with robots.txt, llms.txt and sitemap.xml, runs the
// HTML, content, language and robots analyzers, and assembles the
// report.
type Analyzer struct {
	fetcher  fetch.Fetcher
	renderer fetch.Renderer
	detector *detector.Heuristic
	clock    Clock
	logger   *zap.Logger
}

// NewAnalyzer creates an analyzer. renderer may be nil when no headless
// backend is configured; JavaScript shells are then analyzed as served.
func NewAnalyzer(fetcher fetch.Fetcher, renderer fetch.Renderer, clock Clock, logger *zap.Logger) *Analyzer {
	if clock == nil {
		clock = systemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		fetcher:  fetcher,
		renderer: renderer,
		detector: detector.NewHeuristic(0),
		clock:    clock,
		logger:   logger,
	}
}

// Analyze fetches and analyzes rawURL. The returned error carries the
// fetch failure message when the main page could not be retrieved with
// a 200 response.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (*Report, error) {
	report, _, err := a.AnalyzePage(ctx, rawURL)
	return report, err
}

// AnalyzePage is Analyze plus the HTML the analysis actually saw (the
// rendered DOM when a JavaScript shell was promoted), so callers can
// archive the exact input.
func (a *Analyzer) AnalyzePage(ctx context.Context, rawURL string) (*Report, string, error) {
	start := a.clock.Now()

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	base := parsed.Scheme + "://" + parsed.Host

	robotsURL := base + "/robots.txt"
	llmsURL := base + "/llms.txt"
	sitemapURL := base + "/sitemap.xml"

	a.logger.Debug("Fetching page set", zap.String("url", rawURL))
	results := fetch.All(ctx, a.fetcher, []string{rawURL, robotsURL, llmsURL, sitemapURL})

	main := results[rawURL]
	if !main.OK() {
		msg := main.Error
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", main.Status)
		}
		a.logger.Warn("Main page fetch failed",
			zap.String("url", rawURL),
			zap.String("error", msg),
		)
		return nil, "", errors.New(msg)
	}

	rendering := a.promoteRendering(ctx, rawURL, &main)

	robots := NewRobotsParser(results[robotsURL].Content)

	page, err := NewPageAnalyzer(main.Content, rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("parse page: %w", err)
	}
	content := NewContentAnalyzer(page.ExtractText())

	contentLanguage, _ := headerValue(main.Headers, "Content-Language")

	// Section analyses accumulate issues on the page analyzer; scores are
	// calculated only after every section has run.
	metadata := page.AnalyzeMetaTags()
	language := page.AnalyzeLanguage(contentLanguage)
	headings := page.AnalyzeHeadings()
	images := page.AnalyzeImages()
	links := page.AnalyzeLinks()
	contentSection := contentReport(content)
	structured := page.AnalyzeStructuredData()
	social := page.AnalyzeSocialMetadata()

	botStatuses := robots.AIBotStatuses()
	scores := CalculateScores(ScoreInputs{
		Issues:      page.Issues(),
		WordCount:   content.WordCount(),
		LLMsStatus:  results[llmsURL].Status,
		BotStatuses: botStatuses,
		Social:      social,
	})

	recommendations := page.Recommendations()
	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Priority < recommendations[j].Priority
	})

	now := a.clock.Now()
	report := &Report{
		URL:             rawURL,
		Timestamp:       now.UTC().Format(time.RFC3339),
		CrawlTimeMs:     int64(math.Round(now.Sub(start).Seconds() * 1000)),
		Scores:          scores,
		Metadata:        metadata,
		Language:        language,
		Headings:        headings,
		Images:          images,
		Links:           links,
		Content:         contentSection,
		StructuredData:  structured,
		Social:          social,
		Technical:       technicalSection(parsed, main),
		AIIndexing:      aiIndexingSection(robots, botStatuses, parsed.Path, results[robotsURL], results[llmsURL], results[sitemapURL]),
		Issues:          page.Issues(),
		Recommendations: recommendations,
		Rendering:       rendering,
	}

	// AI indexing issues land after scoring so they inform the reader
	// without moving the category scores.
	aiIssues, aiRecs := DetectAIIndexingIssues(botStatuses, results[llmsURL].Status, results[sitemapURL].Status)
	report.Issues = append(report.Issues, aiIssues...)
	report.Recommendations = append(report.Recommendations, aiRecs...)

	report.LLMContext = BuildLLMContext(report)

	a.logger.Info("Analysis complete",
		zap.String("url", rawURL),
		zap.Int("overall_score", report.Scores.Overall),
		zap.Int("issues", len(report.Issues)),
		zap.Int64("crawl_time_ms", report.CrawlTimeMs),
	)
	return report, main.Content, nil
}

// promoteRendering swaps the main content for a browser-rendered DOM
// when the plain fetch looks like an empty JavaScript shell. Only the
// content is replaced; headers and timing keep describing the original
// response.
func (a *Analyzer) promoteRendering(ctx context.Context, rawURL string, main *fetch.Result) *Rendering {
	if a.renderer == nil || !a.detector.ShouldRender(*main) {
		return nil
	}

	rendering := &Rendering{JSShellDetected: true}
	a.logger.Debug("JavaScript shell detected, rendering", zap.String("url", rawURL))

	rendered := a.renderer.Render(ctx, rawURL)
	switch {
	case rendered.OK() && rendered.Content != "":
		main.Content = rendered.Content
		rendering.Rendered = true
	case rendered.Error != "":
		rendering.Note = rendered.Error
		a.logger.Warn("Rendering failed",
			zap.String("url", rawURL),
			zap.String("error", rendered.Error),
		)
	default:
		rendering.Note = fmt.Sprintf("renderer returned HTTP %d", rendered.Status)
	}
	return rendering
}

func contentReport(content *ContentAnalyzer) ContentReport {
	return ContentReport{
		WordCount:         content.WordCount(),
		Readability:       content.ReadabilityScores(),
		KeywordsTFIDF:     content.KeywordsTFIDF(15),
		KeywordsFrequency: content.KeywordsFrequency(15),
		TopBigrams:        content.Phrases(2, 10),
		TopTrigrams:       content.Phrases(3, 10),
	}
}

func technicalSection(pageURL *url.URL, main fetch.Result) Technical {
	contentType, _ := headerValue(main.Headers, "Content-Type")
	encoding, ok := headerValue(main.Headers, "Content-Encoding")
	if !ok {
		encoding = "none"
	}
	server, _ := headerValue(main.Headers, "Server")
	xfo, _ := headerValue(main.Headers, "X-Frame-Options")
	_, csp := headerValue(main.Headers, "Content-Security-Policy")

	return Technical{
		HTTPS:                 pageURL.Scheme == "https",
		ResponseTimeMs:        int64(math.Round(main.ResponseTimeMs)),
		ContentType:           contentType,
		ContentEncoding:       encoding,
		Server:                server,
		XFrameOptions:         xfo,
		ContentSecurityPolicy: csp,
	}
}

func aiIndexingSection(robots *RobotsParser, botStatuses map[string]string, pagePath string, robotsRes, llmsRes, sitemapRes fetch.Result) AIIndexing {
	var preview *string
	if llmsRes.Content != "" {
		p := truncateRunes(llmsRes.Content, 500) + "..."
		preview = &p
	}

	return AIIndexing{
		RobotsTxt: RobotsInfo{
			Present:          robotsRes.Status == 200,
			PageCrawlable:    robots.PageCrawlable(pagePath),
			AIBotsStatus:     botStatuses,
			SitemapsDeclared: robots.SitemapURLs(),
		},
		LLMsTxt: LLMsInfo{
			Present:        llmsRes.Status == 200,
			ContentPreview: preview,
		},
		SitemapXML: SitemapInfo{Present: sitemapRes.Status == 200},
	}
}

// headerValue looks a header up without assuming the map's key casing;
// plain fetches store canonical MIME keys while browser rendering keeps
// whatever the wire carried.
func headerValue(headers map[string]string, key string) (string, bool) {
	if v, ok := headers[key]; ok {
		return v, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}
