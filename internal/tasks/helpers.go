package tasks

import (
	"sort"
	"strings"

	"github.com/rankonai/seoscope/internal/seo"
)

// brandName falls back from the page title to the analyzed URL.
func brandName(in Input) string {
	if t := in.Overview.Metadata.Title.Value; t != nil && *t != "" {
		return *t
	}
	if in.Overview.URL != "" {
		return in.Overview.URL
	}
	return "the brand"
}

func pageDescription(in Input) string {
	if d := in.Overview.Metadata.Description.Value; d != nil {
		return *d
	}
	return ""
}

// topKeywords prefers the condensed llm_context keywords and falls back
// to raw frequency keywords.
func topKeywords(in Input, limit int) []string {
	kws := in.Overview.LLMContext.TopKeywords
	if len(kws) > limit {
		kws = kws[:limit]
	}
	if len(kws) > 0 {
		return kws
	}
	out := make([]string, 0, limit)
	for _, k := range in.Overview.Content.KeywordsFrequency {
		if len(out) == limit {
			break
		}
		out = append(out, k.Keyword)
	}
	return out
}

func phrases(ps []seo.Phrase, limit int) []string {
	out := make([]string, 0, limit)
	for _, p := range ps {
		if len(out) == limit {
			break
		}
		out = append(out, p.Phrase)
	}
	return out
}

func displayName(provider string) string {
	switch provider {
	case "openai":
		return "OpenAI"
	case "grok":
		return "Grok"
	default:
		return provider
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// botsWithStatus returns AI bots in report order whose robots.txt status
// contains the given fragment.
func botsWithStatus(statuses map[string]string, fragment string) []string {
	out := []string{}
	for _, bot := range seo.AIBots() {
		if strings.Contains(statuses[bot], fragment) {
			out = append(out, bot)
		}
	}
	return out
}

// anyMapSlice reads a key expected to hold a JSON array of objects.
func anyMapSlice(m map[string]any, key string) []map[string]any {
	raw, _ := m[key].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func anySlice(m map[string]any, key string) []any {
	raw, ok := m[key].([]any)
	if !ok {
		return []any{}
	}
	return raw
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
