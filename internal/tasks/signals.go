package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/rankonai/seoscope/internal/seo"
)

// Signals derives AI visibility, performance, content and authority
// signals from the overview report. No LLM involved.
type Signals struct{}

// NewSignals builds the signals task.
func NewSignals() *Signals { return &Signals{} }

func (t *Signals) Name() string { return "signals" }

func (t *Signals) Execute(_ context.Context, in Input) (map[string]any, error) {
	return map[string]any{
		"ai_visibility":   t.aiVisibility(in),
		"performance":     t.performance(in),
		"content_signals": t.contentSignals(in),
		"authority":       t.authority(in),
		"summary":         t.summary(in),
		"recommendations": t.recommendations(in),
	}, nil
}

func (t *Signals) aiVisibility(in Input) map[string]any {
	indexing := in.Overview.AIIndexing
	statuses := indexing.RobotsTxt.AIBotsStatus

	allowed := botsWithStatus(statuses, "allowed")
	blocked := botsWithStatus(statuses, "blocked")
	unknown := []string{}
	for _, bot := range seo.AIBots() {
		status, ok := statuses[bot]
		if !ok {
			continue
		}
		if !strings.Contains(status, "allowed") && !strings.Contains(status, "blocked") {
			unknown = append(unknown, bot)
		}
	}

	hasLLMs := indexing.LLMsTxt.Present
	var preview string
	if p := indexing.LLMsTxt.ContentPreview; p != nil {
		preview = truncate(*p, 200)
	}

	return map[string]any{
		"robots_txt": map[string]any{
			"present":         indexing.RobotsTxt.Present,
			"allows_indexing": len(botsWithStatus(statuses, "blocked_by_wildcard")) == 0,
		},
		"ai_bots": map[string]any{
			"allowed":       allowed,
			"blocked":       blocked,
			"unknown":       unknown,
			"total_checked": len(statuses),
		},
		"llms_txt": map[string]any{
			"present":         hasLLMs,
			"has_content":     preview != "",
			"content_preview": nilIfEmpty(preview),
		},
		"sitemap": map[string]any{
			"present": indexing.SitemapXML.Present,
		},
		"score": t.visibilityScore(len(allowed), len(blocked), hasLLMs, indexing.SitemapXML.Present),
	}
}

func (t *Signals) performance(in Input) map[string]any {
	content := in.Overview.Content
	headings := in.Overview.Headings

	headingCount := headings.H1.Count + headings.H2.Count + headings.H3.Count +
		headings.H4.Count + headings.H5.Count + headings.H6.Count

	return map[string]any{
		"mobile_friendly": map[string]any{
			"has_viewport":   in.Overview.Metadata.Viewport != nil,
			"viewport_value": in.Overview.Metadata.Viewport,
		},
		"content_size": map[string]any{
			"word_count":     content.WordCount,
			"is_substantial": content.WordCount >= 300,
		},
		"page_structure": map[string]any{
			"has_h1":        headings.H1.Count > 0,
			"heading_count": headingCount,
		},
		"score": t.performanceScore(in),
	}
}

func (t *Signals) contentSignals(in Input) map[string]any {
	sd := in.Overview.StructuredData
	readability := in.Overview.Content.Readability

	schemaTypes := make([]string, 0, len(sd.JSONLD))
	for _, entry := range sd.JSONLD {
		schemaTypes = append(schemaTypes, entry.Type)
	}

	var ogType any
	if v, ok := sd.OpenGraph["type"]; ok {
		ogType = v
	}

	return map[string]any{
		"structured_data": map[string]any{
			"json_ld_present": len(sd.JSONLD) > 0,
			"schema_types":    schemaTypes,
			"schema_count":    len(sd.JSONLD),
		},
		"social_meta": map[string]any{
			"open_graph":   len(sd.OpenGraph) > 0,
			"twitter_card": len(sd.TwitterCard) > 0,
			"og_type":      ogType,
		},
		"readability": map[string]any{
			"flesch_score":  readability.FleschReadingEase,
			"grade_level":   readability.FleschKincaidGrade,
			"is_accessible": readability.FleschReadingEase >= 60,
		},
		"semantic": map[string]any{
			"has_canonical": in.Overview.Metadata.Canonical != nil,
			"has_lang":      in.Overview.Metadata.Language != nil,
			"language":      in.Overview.Metadata.Language,
		},
		"score": t.contentSignalsScore(in),
	}
}

func (t *Signals) authority(in Input) map[string]any {
	meta := in.Overview.Metadata

	return map[string]any{
		"brand_identity": map[string]any{
			"has_title":               meta.Title.Value != nil && *meta.Title.Value != "",
			"has_description":         meta.Description.Value != nil && *meta.Description.Value != "",
			"has_organization_schema": t.hasSchemaType(in, "Organization", "LocalBusiness", "Corporation"),
		},
		"authorship": map[string]any{
			"has_author_info": t.hasSchemaType(in, "Person"),
		},
		"trust_indicators": map[string]any{
			"uses_https":         strings.HasPrefix(in.URL, "https://"),
			"has_contact_schema": t.hasSchemaType(in, "ContactPoint"),
		},
		"score": t.authorityScore(in),
	}
}

// hasSchemaType matches JSON-LD entries against schema type names. An
// entry with multiple types is stored as a comma-joined string, so it
// is split before matching.
func (t *Signals) hasSchemaType(in Input, names ...string) bool {
	for _, entry := range in.Overview.StructuredData.JSONLD {
		for _, part := range strings.Split(entry.Type, ", ") {
			for _, name := range names {
				if part == name {
					return true
				}
			}
		}
	}
	return false
}

func (t *Signals) visibilityScore(allowed, blocked int, llms, sitemap bool) int {
	score := 50
	score -= blocked * 10
	score += min(allowed*5, 20)
	if llms {
		score += 15
	}
	if sitemap {
		score += 10
	}
	return clampScore(score)
}

func (t *Signals) performanceScore(in Input) int {
	score := 50

	wc := in.Overview.Content.WordCount
	switch {
	case wc >= 1000:
		score += 20
	case wc >= 500:
		score += 10
	case wc < 200:
		score -= 10
	}

	if in.Overview.Metadata.Viewport != nil {
		score += 15
	}
	if in.Overview.Headings.H1.Count > 0 {
		score += 15
	}
	return clampScore(score)
}

func (t *Signals) contentSignalsScore(in Input) int {
	sd := in.Overview.StructuredData
	score := 40

	score += min(len(sd.JSONLD)*10, 25)
	if len(sd.OpenGraph) > 0 {
		score += 10
	}
	if len(sd.TwitterCard) > 0 {
		score += 10
	}

	flesch := in.Overview.Content.Readability.FleschReadingEase
	switch {
	case flesch >= 60:
		score += 15
	case flesch >= 40:
		score += 5
	}
	return clampScore(score)
}

func (t *Signals) authorityScore(in Input) int {
	meta := in.Overview.Metadata
	score := 30

	if meta.Title.Value != nil && *meta.Title.Value != "" {
		score += 15
	}
	if meta.Description.Value != nil && *meta.Description.Value != "" {
		score += 15
	}
	if t.hasSchemaType(in, "Organization", "LocalBusiness", "Corporation") {
		score += 20
	}
	if t.hasSchemaType(in, "Person") {
		score += 10
	}
	if strings.HasPrefix(in.URL, "https://") {
		score += 10
	}
	return clampScore(score)
}

func (t *Signals) summary(in Input) map[string]any {
	scores := in.Overview.Scores

	strengths := []string{}
	if scores.Technical >= 80 {
		strengths = append(strengths, "Strong technical SEO foundation")
	}
	if scores.Content >= 80 {
		strengths = append(strengths, "High-quality content")
	}
	if scores.StructuredData >= 70 {
		strengths = append(strengths, "Good structured data implementation")
	}

	weaknesses := []string{}
	if scores.AIReadiness < 50 {
		weaknesses = append(weaknesses, "Low AI readiness score")
	}
	if scores.StructuredData < 50 {
		weaknesses = append(weaknesses, "Missing structured data")
	}
	if scores.Content < 50 {
		weaknesses = append(weaknesses, "Content needs improvement")
	}

	return map[string]any{
		"overall_ai_readiness": scores.AIReadiness,
		"strengths":            strengths,
		"weaknesses":           weaknesses,
	}
}

func (t *Signals) recommendations(in Input) []map[string]any {
	recs := []map[string]any{}
	indexing := in.Overview.AIIndexing

	if !indexing.LLMsTxt.Present {
		recs = append(recs, map[string]any{
			"category":    "ai_visibility",
			"priority":    "high",
			"title":       "Create llms.txt file",
			"description": "Add an llms.txt file to help AI assistants understand your content.",
		})
	}

	if len(in.Overview.StructuredData.JSONLD) == 0 {
		recs = append(recs, map[string]any{
			"category":    "content_signals",
			"priority":    "high",
			"title":       "Add JSON-LD structured data",
			"description": "Implement Schema.org markup to help AI understand your content.",
		})
	}

	if blocked := botsWithStatus(indexing.RobotsTxt.AIBotsStatus, "blocked"); len(blocked) > 0 {
		recs = append(recs, map[string]any{
			"category":    "ai_visibility",
			"priority":    "medium",
			"title":       fmt.Sprintf("Review blocked AI bots: %s", strings.Join(blocked, ", ")),
			"description": "Consider allowing AI bots to improve discoverability.",
		})
	}

	return recs
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
