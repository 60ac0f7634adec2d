package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/rankonai/seoscope/internal/llm"
	"github.com/rankonai/seoscope/internal/seo"
)

// Social formats the overview's social sharing analysis and adds LLM
// improvement recommendations. The formatting never needs a provider;
// a missing or failing provider degrades to a static improvements list.
type Social struct {
	client llm.Client
	logger *zap.Logger
}

// NewSocial builds the social task over one LLM provider.
func NewSocial(client llm.Client, logger *zap.Logger) *Social {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Social{client: client, logger: logger}
}

func (t *Social) Name() string { return "social" }

func (t *Social) Execute(ctx context.Context, in Input) (map[string]any, error) {
	social := in.Overview.Social

	return map[string]any{
		"metadata":        t.metadata(social),
		"images":          social.SocialImages,
		"platforms":       social.PlatformCompatibility,
		"score":           social.Score,
		"issues":          t.issues(social),
		"recommendations": t.recommendations(ctx, in),
		"preview":         t.preview(in),
	}, nil
}

func (t *Social) metadata(social seo.SocialMetadata) map[string]any {
	og := social.OpenGraph
	twitter := social.TwitterCard

	return map[string]any{
		"open_graph": map[string]any{
			"present":     og.Present,
			"title":       tagOrNil(og.Tags, "title"),
			"description": tagOrNil(og.Tags, "description"),
			"image":       tagOrNil(og.Tags, "image"),
			"url":         tagOrNil(og.Tags, "url"),
			"type":        tagOrNil(og.Tags, "type"),
			"site_name":   tagOrNil(og.Tags, "site_name"),
			"locale":      tagOrNil(og.Tags, "locale"),
			"image_dimensions": map[string]any{
				"width":  tagOrNil(og.Tags, "image:width"),
				"height": tagOrNil(og.Tags, "image:height"),
			},
			"missing_required":    og.MissingRequired,
			"missing_recommended": og.MissingRecommended,
		},
		"twitter_card": map[string]any{
			"present":             twitter.Present,
			"card_type":           twitter.CardType,
			"title":               tagOrNil(twitter.Tags, "title"),
			"description":         tagOrNil(twitter.Tags, "description"),
			"image":               tagOrNil(twitter.Tags, "image"),
			"site":                tagOrNil(twitter.Tags, "site"),
			"creator":             tagOrNil(twitter.Tags, "creator"),
			"missing_required":    twitter.MissingRequired,
			"missing_recommended": twitter.MissingRecommended,
		},
	}
}

func (t *Social) issues(social seo.SocialMetadata) []seo.Issue {
	issues := []seo.Issue{}
	issues = append(issues, social.OpenGraph.Issues...)
	issues = append(issues, social.TwitterCard.Issues...)
	return issues
}

// preview resolves what a share card would show, falling back from Open
// Graph to Twitter Card to plain page metadata.
func (t *Social) preview(in Input) map[string]any {
	og := in.Overview.Social.OpenGraph.Tags
	twitter := in.Overview.Social.TwitterCard.Tags
	meta := in.Overview.Metadata

	title := firstNonEmpty(og["title"], twitter["title"], derefOr(meta.Title.Value, ""), "No title")
	desc := firstNonEmpty(og["description"], twitter["description"], derefOr(meta.Description.Value, ""), "No description")

	return map[string]any{
		"title":       title,
		"description": desc,
		"image":       nilIfEmpty(firstNonEmpty(og["image"], twitter["image"])),
		"image_alt":   nilIfEmpty(firstNonEmpty(og["image:alt"], twitter["image:alt"])),
		"site_name":   firstNonEmpty(og["site_name"], in.URL),
		"url":         firstNonEmpty(og["url"], in.URL),
	}
}

func (t *Social) recommendations(ctx context.Context, in Input) map[string]any {
	if t.client == nil || !t.client.Configured() {
		return map[string]any{
			"summary":        "AI recommendations unavailable - API key not configured",
			"improvements":   []any{},
			"best_practices": []any{},
		}
	}

	result, err := t.client.CompleteJSON(ctx, llm.Request{
		System:      t.systemPrompt(in),
		User:        t.userPrompt(in),
		Temperature: 0.7,
		MaxTokens:   2500,
	})
	if err != nil {
		t.logger.Warn("social recommendations generation failed", zap.Error(err))
		return map[string]any{
			"summary":        fmt.Sprintf("Unable to generate AI recommendations: %s", err),
			"improvements":   t.fallbackImprovements(in.Overview.Social),
			"best_practices": []any{},
			"sample_tags":    map[string]any{},
		}
	}

	return map[string]any{
		"summary":        stringField(result, "summary"),
		"improvements":   anySlice(result, "improvements"),
		"best_practices": anySlice(result, "best_practices"),
		"sample_tags":    objectField(result, "sample_tags"),
	}
}

func (t *Social) systemPrompt(in Input) string {
	lang := in.Overview.Language
	languageLine := ""
	if lang.Code != nil && *lang.Code != "en" {
		languageLine = fmt.Sprintf("Respond in %s.", derefOr(lang.Name, "English"))
	}

	return fmt.Sprintf(`You are a social media optimization expert specializing in social sharing metadata and platform compatibility.
Analyze the provided social metadata and generate specific, actionable recommendations.
%s
Return valid JSON only, no markdown formatting.`, languageLine)
}

func (t *Social) userPrompt(in Input) string {
	social := in.Overview.Social
	og := social.OpenGraph
	twitter := social.TwitterCard

	imagesBlock := "No social images detected"
	if len(social.SocialImages) > 0 {
		shown := social.SocialImages
		if len(shown) > 3 {
			shown = shown[:3]
		}
		if raw, err := json.MarshalIndent(shown, "", "  "); err == nil {
			imagesBlock = string(raw)
		}
	}

	platformsBlock := "{}"
	if raw, err := json.MarshalIndent(social.PlatformCompatibility, "", "  "); err == nil {
		platformsBlock = string(raw)
	}

	return fmt.Sprintf(`Analyze this website's social sharing readiness and provide recommendations:

WEBSITE: %s
BRAND: %s
%s

CURRENT SOCIAL SCORE: %d/100

OPEN GRAPH STATUS:
- Present: %t
- Tags found: %v
- Missing required: %v
- Missing recommended: %v
- Issues: %v

TWITTER CARD STATUS:
- Present: %t
- Card type: %s
- Tags found: %v
- Missing required: %v
- Issues: %v

SOCIAL IMAGES: %d found
%s

PLATFORM COMPATIBILITY:
%s

Generate a JSON response with:

1. "summary": A 2-3 sentence summary of the social sharing status and most critical improvements needed.

2. "improvements": Array of 5-7 specific improvements. Each with:
   - "priority": "high", "medium", or "low"
   - "category": "open_graph", "twitter_card", "image", or "general"
   - "issue": What's wrong or missing
   - "action": Specific fix with example code/tag if applicable
   - "impact": Which platforms this affects

3. "best_practices": Array of 3-4 best practice tips specific to this site's content type.

4. "sample_tags": Object with example meta tags this site should add (if missing critical ones):
   - "open_graph": Array of example og: meta tags as strings
   - "twitter_card": Array of example twitter: meta tags as strings

Return ONLY the JSON object.`,
		in.URL, brandName(in), seo.LanguageContextForAI(in.Overview.Language),
		social.Score,
		og.Present, sortedKeys(og.Tags), og.MissingRequired, og.MissingRecommended, issueMessages(og.Issues),
		twitter.Present, derefOr(twitter.CardType, "none"), sortedKeys(twitter.Tags), twitter.MissingRequired, issueMessages(twitter.Issues),
		len(social.SocialImages), imagesBlock,
		platformsBlock)
}

func (t *Social) fallbackImprovements(social seo.SocialMetadata) []map[string]any {
	improvements := []map[string]any{}
	og := social.OpenGraph
	images := social.SocialImages

	if !og.Present {
		improvements = append(improvements, map[string]any{
			"priority": "high",
			"category": "open_graph",
			"issue":    "Missing Open Graph tags",
			"action":   "Add og:title, og:description, og:image, og:url, and og:type meta tags",
			"impact":   "Facebook, LinkedIn, WhatsApp, Slack",
		})
	}

	if !social.TwitterCard.Present {
		improvements = append(improvements, map[string]any{
			"priority": "medium",
			"category": "twitter_card",
			"issue":    "Missing Twitter Card tags",
			"action":   "Add twitter:card, twitter:title, twitter:description, and twitter:image meta tags",
			"impact":   "Twitter/X",
		})
	}

	switch {
	case len(images) == 0:
		improvements = append(improvements, map[string]any{
			"priority": "high",
			"category": "image",
			"issue":    "No social sharing image",
			"action":   "Add og:image with a 1200x630 pixel image for optimal display",
			"impact":   "All social platforms",
		})
	case images[0].Width == "":
		improvements = append(improvements, map[string]any{
			"priority": "low",
			"category": "image",
			"issue":    "Social image dimensions not specified",
			"action":   "Add og:image:width and og:image:height meta tags",
			"impact":   "Faster image rendering on social platforms",
		})
	}

	for _, missing := range og.MissingRequired {
		improvements = append(improvements, map[string]any{
			"priority": "high",
			"category": "open_graph",
			"issue":    fmt.Sprintf("Missing required %s", missing),
			"action":   fmt.Sprintf("Add <meta property=%q content=\"...\">", missing),
			"impact":   "Facebook, LinkedIn, WhatsApp",
		})
	}

	return improvements
}

func issueMessages(issues []seo.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Message)
	}
	return out
}

func tagOrNil(tags map[string]string, key string) any {
	if v, ok := tags[key]; ok {
		return v
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func derefOr(s *string, fallback string) string {
	if s != nil {
		return *s
	}
	return fallback
}
