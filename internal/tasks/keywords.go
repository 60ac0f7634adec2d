package tasks

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rankonai/seoscope/internal/llm"
	"github.com/rankonai/seoscope/internal/seo"
)

const keywordsSystemPrompt = `You are an SEO keyword strategist.
Analyze the provided keywords and generate strategic recommendations.
Return valid JSON only, no markdown formatting.`

// Keywords combines keywords extracted by the overview analysis with
// LLM-generated strategic recommendations. The extracted part is always
// present; a provider failure only annotates the strategic part.
type Keywords struct {
	client llm.Client
	logger *zap.Logger
}

// NewKeywords builds the keywords task over one LLM provider.
func NewKeywords(client llm.Client, logger *zap.Logger) *Keywords {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Keywords{client: client, logger: logger}
}

func (t *Keywords) Name() string { return "keywords" }

func (t *Keywords) Execute(ctx context.Context, in Input) (map[string]any, error) {
	strategic := t.strategic(ctx, in)

	return map[string]any{
		"extracted": t.extract(in),
		"strategic": strategic,
		"summary":   t.summarize(in, strategic),
	}, nil
}

func (t *Keywords) extract(in Input) map[string]any {
	content := in.Overview.Content

	frequency := []map[string]any{}
	for i, k := range content.KeywordsFrequency {
		if i == 15 {
			break
		}
		frequency = append(frequency, map[string]any{
			"keyword": k.Keyword,
			"count":   k.Count,
			"density": k.DensityPercent,
		})
	}

	semantic := in.Overview.LLMContext.TopKeywords
	if len(semantic) > 10 {
		semantic = semantic[:10]
	}

	return map[string]any{
		"frequency": frequency,
		"bigrams":   phraseEntries(content.TopBigrams, 10),
		"trigrams":  phraseEntries(content.TopTrigrams, 5),
		"semantic":  semantic,
	}
}

func (t *Keywords) strategic(ctx context.Context, in Input) map[string]any {
	if t.client == nil || !t.client.Configured() {
		return strategicFailure(fmt.Sprintf("%s API key not configured", displayName(t.providerName())))
	}

	prompt := fmt.Sprintf(`Based on this website's keyword profile, generate strategic keyword recommendations:

WEBSITE: %s
BRAND: %s
DESCRIPTION: %s

CURRENT KEYWORDS (extracted from page):
- Top keywords: %s
- Key phrases: %s

Generate a JSON object with these sections:

1. "target_keywords": Array of 8 strategic keywords to target. Each with:
   - "keyword": The keyword/phrase
   - "search_intent": "informational", "transactional", "navigational", or "commercial"
   - "difficulty": "low", "medium", or "high"
   - "priority": "high", "medium", or "low"
   - "tip": Brief actionable tip

2. "long_tail": Array of 5 long-tail keyword opportunities

3. "questions": Array of 5 question-based keywords (what, how, why, etc.)

Return ONLY the JSON object.`,
		in.URL, brandName(in), pageDescription(in),
		strings.Join(topKeywords(in, 15), ", "),
		strings.Join(phrases(in.Overview.Content.TopBigrams, 5), ", "))

	result, err := t.client.CompleteJSON(ctx, llm.Request{
		System:      keywordsSystemPrompt,
		User:        prompt,
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		t.logger.Warn("strategic keywords generation failed", zap.Error(err))
		return strategicFailure(err.Error())
	}
	return result
}

func (t *Keywords) summarize(in Input, strategic map[string]any) map[string]any {
	frequency := in.Overview.Content.KeywordsFrequency
	if len(frequency) > 15 {
		frequency = frequency[:15]
	}
	topExtracted := []string{}
	for i, k := range frequency {
		if i == 5 {
			break
		}
		topExtracted = append(topExtracted, k.Keyword)
	}

	targets := anyMapSlice(strategic, "target_keywords")
	topStrategic := []string{}
	for i, k := range targets {
		if i == 5 {
			break
		}
		topStrategic = append(topStrategic, stringField(k, "keyword"))
	}

	return map[string]any{
		"total_extracted":           len(frequency),
		"top_extracted":             topExtracted,
		"strategic_recommendations": len(targets),
		"top_strategic":             topStrategic,
		"long_tail_count":           len(anySlice(strategic, "long_tail")),
		"questions_count":           len(anySlice(strategic, "questions")),
	}
}

func (t *Keywords) providerName() string {
	if t.client == nil {
		return "openai"
	}
	return t.client.Name()
}

func strategicFailure(message string) map[string]any {
	return map[string]any{
		"target_keywords": []any{},
		"long_tail":       []any{},
		"questions":       []any{},
		"error":           message,
	}
}

func phraseEntries(ps []seo.Phrase, limit int) []map[string]any {
	out := []map[string]any{}
	for i, p := range ps {
		if i == limit {
			break
		}
		out = append(out, map[string]any{"phrase": p.Phrase, "count": p.Count})
	}
	return out
}
