package tasks

import (
	"context"
	"sync"

	"github.com/rankonai/seoscope/internal/llm"
	"github.com/rankonai/seoscope/internal/seo"
)

func strptr(s string) *string { return &s }

// fakeLLM is a scriptable llm.Client that records every request.
type fakeLLM struct {
	name       string
	configured bool
	response   string
	structured map[string]any
	err        error

	mu    sync.Mutex
	calls []llm.Request
}

var _ llm.Client = (*fakeLLM)(nil)

func (f *fakeLLM) Name() string     { return f.name }
func (f *fakeLLM) Configured() bool { return f.configured }

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	f.record(req)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) CompleteJSON(_ context.Context, req llm.Request) (map[string]any, error) {
	f.record(req)
	if f.err != nil {
		return nil, f.err
	}
	return f.structured, nil
}

func (f *fakeLLM) record(req llm.Request) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
}

func (f *fakeLLM) lastRequest() llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return llm.Request{}
	}
	return f.calls[len(f.calls)-1]
}

func testReport() *seo.Report {
	return &seo.Report{
		URL:       "https://acme.test/",
		Timestamp: "2025-06-01T12:00:00Z",
		Scores: seo.Scores{
			Overall:        72,
			Technical:      85,
			OnPage:         70,
			Content:        80,
			StructuredData: 55,
			AIReadiness:    65,
			SocialSharing:  78,
		},
		Metadata: seo.Metadata{
			Title:       seo.MetaTag{Value: strptr("Acme Rockets"), Length: 12},
			Description: seo.MetaTag{Value: strptr("Model rockets and engines for hobbyists."), Length: 41},
			Canonical:   strptr("https://acme.test/"),
			Viewport:    strptr("width=device-width, initial-scale=1"),
			Language:    strptr("en"),
		},
		Language: seo.LanguageInfo{Code: strptr("en"), Name: strptr("English"), Confidence: "high"},
		Headings: seo.Headings{
			H1: seo.HeadingLevel{Count: 1, Values: []string{"Acme Rockets"}},
			H2: seo.HeadingLevel{Count: 3},
		},
		Content: seo.ContentReport{
			WordCount:   850,
			Readability: seo.Readability{FleschReadingEase: 62.5, FleschKincaidGrade: 8.2},
			KeywordsFrequency: []seo.Keyword{
				{Keyword: "rockets", Count: 12, DensityPercent: 1.4},
				{Keyword: "engines", Count: 8, DensityPercent: 0.9},
				{Keyword: "launch", Count: 6, DensityPercent: 0.7},
			},
			TopBigrams:  []seo.Phrase{{Phrase: "model rockets", Count: 5}, {Phrase: "rocket engines", Count: 3}},
			TopTrigrams: []seo.Phrase{{Phrase: "model rocket kits", Count: 2}},
		},
		StructuredData: seo.StructuredData{
			JSONLD:      []seo.JSONLDEntry{{Type: "Organization", Valid: true}, {Type: "Product, Offer", Valid: true}},
			OpenGraph:   map[string]string{"title": "Acme Rockets", "type": "website"},
			TwitterCard: map[string]string{"card": "summary"},
		},
		Social: seo.SocialMetadata{
			OpenGraph: seo.OpenGraphAnalysis{
				Present: true,
				Tags: map[string]string{
					"title":        "Acme Rockets",
					"description":  "Model rockets and engines.",
					"image":        "https://acme.test/og.png",
					"image:width":  "1200",
					"image:height": "630",
					"type":         "website",
					"url":          "https://acme.test/",
				},
				MissingRequired:    []string{},
				MissingRecommended: []string{"og:site_name"},
				Issues:             []seo.Issue{},
			},
			TwitterCard: seo.TwitterCardAnalysis{
				Present:         true,
				CardType:        strptr("summary_large_image"),
				Tags:            map[string]string{"card": "summary_large_image", "title": "Acme Rockets"},
				MissingRequired: []string{"twitter:description"},
				Issues: []seo.Issue{{
					Severity: "warning",
					Category: "social",
					Code:     "twitter_missing_description",
					Message:  "Twitter card missing description",
				}},
			},
			SocialImages: []seo.SocialImage{{
				URL:    "https://acme.test/og.png",
				Source: "og:image",
				Width:  "1200",
				Height: "630",
			}},
			PlatformCompatibility: map[string]seo.PlatformCheck{
				"facebook": {Compatible: true, Missing: []string{}},
				"twitter":  {Compatible: false, Missing: []string{"twitter:description"}},
			},
			Score: 78,
		},
		Technical: seo.Technical{HTTPS: true, ResponseTimeMs: 180, ContentType: "text/html; charset=utf-8"},
		AIIndexing: seo.AIIndexing{
			RobotsTxt: seo.RobotsInfo{
				Present: true,
				AIBotsStatus: map[string]string{
					"GPTBot":          "allowed",
					"ClaudeBot":       "blocked",
					"Google-Extended": "allowed_by_default",
					"PerplexityBot":   "blocked_by_wildcard",
				},
				SitemapsDeclared: []string{"https://acme.test/sitemap.xml"},
			},
			LLMsTxt:    seo.LLMsInfo{Present: false},
			SitemapXML: seo.SitemapInfo{Present: true},
		},
		Issues: []seo.Issue{
			{Severity: "warning", Category: "metadata", Code: "meta_description_short", Message: "Meta description is shorter than recommended"},
			{Severity: "info", Category: "ai_readiness", Code: "llms_txt_missing", Message: "No llms.txt file found"},
		},
		LLMContext: seo.LLMContext{
			OverallScore: 72,
			TopKeywords:  []string{"rockets", "engines", "launch", "kits", "hobby"},
		},
	}
}

func testInput() Input {
	return Input{URL: "https://acme.test/", Overview: testReport()}
}
