package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rankonai/seoscope/internal/llm"
)

const marketingSystemPrompt = `You are an expert content marketing strategist specializing in SEO and social media marketing.
Generate actionable marketing recommendations based on SEO analysis data.
Return valid JSON only, no markdown formatting or code blocks.`

// Marketing generates social posts, content ideas and brand messaging
// with an LLM. The task fails when no provider is configured; a failed
// call on a configured provider degrades to an annotated empty result.
type Marketing struct {
	client llm.Client
	logger *zap.Logger
}

// NewMarketing builds the marketing task over one LLM provider.
func NewMarketing(client llm.Client, logger *zap.Logger) *Marketing {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Marketing{client: client, logger: logger}
}

func (t *Marketing) Name() string { return "marketing" }

func (t *Marketing) Execute(ctx context.Context, in Input) (map[string]any, error) {
	if t.client == nil || !t.client.Configured() {
		return nil, fmt.Errorf("marketing content: %w", llm.ErrNotConfigured)
	}

	scores, _ := json.Marshal(in.Overview.Scores)
	content := in.Overview.Content

	prompt := fmt.Sprintf(`Based on this comprehensive SEO analysis, generate content marketing recommendations:

WEBSITE ANALYSIS:
- URL: %s
- Brand/Title: %s
- Description: %s
- Word Count: %d
- Current SEO Scores: %s

EXTRACTED KEYWORDS (from page analysis):
- Top keywords: %s
- Key phrases (bigrams): %s
- Key phrases (trigrams): %s

TASK: Generate a JSON object with these sections:

1. "social_posts": Array of 3 ready-to-use social media posts (one per platform):
   - "platform": "facebook", "linkedin", or "twitter"
   - "content": The full post text (appropriate length for each platform)
   - "hashtags": Array of 3-5 relevant hashtags
   - "call_to_action": A clear CTA for the post
   - "best_time": Suggested best time to post

2. "content_ideas": Array of 5 blog post or content ideas. Each with:
   - "title": Suggested article title
   - "type": "how-to", "listicle", "guide", "case-study", or "comparison"
   - "target_keyword": Primary keyword to target
   - "description": Brief description of the content

3. "brand_messaging": Object with:
   - "value_proposition": One sentence value proposition
   - "key_differentiators": Array of 3 unique selling points
   - "tone_recommendation": Suggested brand voice/tone
   - "tagline_suggestions": Array of 2-3 tagline ideas

Return ONLY the JSON object with these three keys.`,
		in.URL, brandName(in), pageDescription(in), content.WordCount, scores,
		strings.Join(topKeywords(in, 15), ", "),
		strings.Join(phrases(content.TopBigrams, 5), ", "),
		strings.Join(phrases(content.TopTrigrams, 3), ", "))

	result, err := t.client.CompleteJSON(ctx, llm.Request{
		System:      marketingSystemPrompt,
		User:        prompt,
		Temperature: 0.7,
		MaxTokens:   2500,
	})
	if err != nil {
		t.logger.Warn("marketing content generation failed", zap.Error(err))
		return map[string]any{
			"social_posts":    []any{},
			"content_ideas":   []any{},
			"brand_messaging": map[string]any{},
			"error":           err.Error(),
		}, nil
	}

	return map[string]any{
		"social_posts":    anySlice(result, "social_posts"),
		"content_ideas":   anySlice(result, "content_ideas"),
		"brand_messaging": objectField(result, "brand_messaging"),
	}, nil
}

func objectField(m map[string]any, key string) map[string]any {
	obj, ok := m[key].(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return obj
}
