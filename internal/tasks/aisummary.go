package tasks

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rankonai/seoscope/internal/llm"
)

const aiSummarySystemPrompt = `You are a senior AI SEO strategist specializing in optimizing websites for AI assistant discoverability.
Your expertise spans all major AI platforms: ChatGPT/GPT-4, Claude, Gemini, Perplexity, Microsoft Copilot, Mistral, and others.
Analyze SEO reports and provide actionable, expert-level recommendations.
Return valid JSON only, no markdown formatting or code blocks.`

// AISummary renders the overview into a markdown report with
// platform-specific insights and prioritized actions. Without a
// configured provider, or when the provider fails, it falls back to a
// deterministic score-based summary, so the task itself never fails.
type AISummary struct {
	client llm.Client
	logger *zap.Logger
}

// NewAISummary builds the summary task over one LLM provider.
func NewAISummary(client llm.Client, logger *zap.Logger) *AISummary {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AISummary{client: client, logger: logger}
}

func (t *AISummary) Name() string { return "ai_summary" }

func (t *AISummary) Execute(ctx context.Context, in Input) (map[string]any, error) {
	if t.client == nil || !t.client.Configured() {
		t.logger.Warn("llm provider not configured, using basic summary")
		return t.basicSummary(in), nil
	}

	structured, err := t.client.CompleteJSON(ctx, llm.Request{
		System:      aiSummarySystemPrompt,
		User:        t.prompt(in),
		Temperature: 0.7,
	})
	if err != nil {
		t.logger.Warn("ai summary generation failed, using basic summary", zap.Error(err))
		return t.basicSummary(in), nil
	}

	return map[string]any{
		"markdown":   structuredToMarkdown(structured),
		"structured": structured,
		"success":    true,
	}, nil
}

func (t *AISummary) prompt(in Input) string {
	report := in.Overview
	scores := report.Scores
	meta := report.Metadata

	issueLines := make([]string, 0, 10)
	for _, issue := range report.Issues {
		if len(issueLines) == 10 {
			break
		}
		issueLines = append(issueLines, fmt.Sprintf("- [%s] %s", strings.ToUpper(issue.Severity), issue.Message))
	}
	issuesText := strings.Join(issueLines, "\n")
	if issuesText == "" {
		issuesText = "No significant issues found."
	}

	statuses := report.AIIndexing.RobotsTxt.AIBotsStatus
	allowedBots := botsWithStatus(statuses, "allowed")
	blockedBots := botsWithStatus(statuses, "blocked")

	allowedText := "None explicitly allowed"
	if len(allowedBots) > 0 {
		shown := allowedBots
		if len(shown) > 10 {
			shown = shown[:10]
		}
		allowedText = strings.Join(shown, ", ")
	}
	blockedText := "None blocked"
	if len(blockedBots) > 0 {
		blockedText = strings.Join(blockedBots, ", ")
	}

	keywords := make([]string, 0, 8)
	for _, kw := range report.Content.KeywordsFrequency {
		if len(keywords) == 8 {
			break
		}
		keywords = append(keywords, kw.Keyword)
	}

	return fmt.Sprintf(`Analyze this comprehensive SEO report and generate an AI discoverability improvement summary.

WEBSITE: %s

CURRENT SCORES (0-100):
- Overall: %d
- AI Readiness: %d
- Content: %d
- Structured Data: %d
- On-Page SEO: %d
- Technical: %d

METADATA:
- Title: %s
- Description: %s
- Has Canonical: %t
- Language: %s

CONTENT ANALYSIS:
- Word Count: %d
- Top Keywords: %s
- Readability (Flesch): %v

STRUCTURED DATA:
- JSON-LD Schemas: %d found
- Has Open Graph: %t
- Has Twitter Card: %t

AI BOT ACCESS:
- Has llms.txt: %t
- Has sitemap.xml: %t
- Allowed AI Bots: %s
- Blocked AI Bots: %s

CURRENT ISSUES:
%s

Generate a JSON response with this exact structure:

{
  "overallAssessment": {
    "rating": "Excellent|Good|Needs Improvement|Poor",
    "summary": "2-3 sentence executive summary of AI discoverability status",
    "primaryStrength": "The main thing this site does well for AI",
    "primaryWeakness": "The most critical improvement needed"
  },
  "scoreBreakdown": [
    {
      "category": "AI Readiness",
      "score": %d,
      "rating": "Excellent|Good|Fair|Poor",
      "explanation": "What this score means for AI discoverability",
      "improvement": "Specific action to improve this score"
    },
    {
      "category": "Content",
      "score": %d,
      "rating": "Excellent|Good|Fair|Poor",
      "explanation": "How content quality affects AI understanding",
      "improvement": "Content optimization suggestion"
    },
    {
      "category": "Rich Data",
      "score": %d,
      "rating": "Excellent|Good|Fair|Poor",
      "explanation": "Schema markup quality for AI extraction",
      "improvement": "Structured data recommendation"
    },
    {
      "category": "Structure",
      "score": %d,
      "rating": "Excellent|Good|Fair|Poor",
      "explanation": "How headings and meta info help AI",
      "improvement": "On-page optimization tip"
    },
    {
      "category": "Technical",
      "score": %d,
      "rating": "Excellent|Good|Fair|Poor",
      "explanation": "Speed and security impact on AI crawling",
      "improvement": "Technical enhancement suggestion"
    }
  ],
  "platformInsights": [
    {
      "platform": "ChatGPT",
      "status": "Optimized|Partially Optimized|Needs Work",
      "tip": "Specific tip to improve discoverability on ChatGPT/OpenAI",
      "botName": "GPTBot"
    },
    {
      "platform": "Claude",
      "status": "Optimized|Partially Optimized|Needs Work",
      "tip": "Specific tip for Claude/Anthropic",
      "botName": "ClaudeBot"
    },
    {
      "platform": "Gemini",
      "status": "Optimized|Partially Optimized|Needs Work",
      "tip": "Specific tip for Google Gemini",
      "botName": "Google-Extended"
    },
    {
      "platform": "Perplexity",
      "status": "Optimized|Partially Optimized|Needs Work",
      "tip": "Specific tip for Perplexity AI search",
      "botName": "PerplexityBot"
    },
    {
      "platform": "Copilot",
      "status": "Optimized|Partially Optimized|Needs Work",
      "tip": "Specific tip for Microsoft Copilot",
      "botName": "bingbot"
    },
    {
      "platform": "Mistral",
      "status": "Optimized|Partially Optimized|Needs Work",
      "tip": "Specific tip for Mistral AI",
      "botName": "MistralBot"
    }
  ],
  "prioritizedActions": [
    {
      "priority": 1,
      "action": "Most important action to take",
      "impact": "High|Medium|Low",
      "effort": "Quick Win|Moderate|Significant",
      "category": "ai_readiness|content|structured_data|technical"
    },
    {
      "priority": 2,
      "action": "Second most important action",
      "impact": "High|Medium|Low",
      "effort": "Quick Win|Moderate|Significant",
      "category": "ai_readiness|content|structured_data|technical"
    },
    {
      "priority": 3,
      "action": "Third action",
      "impact": "High|Medium|Low",
      "effort": "Quick Win|Moderate|Significant",
      "category": "ai_readiness|content|structured_data|technical"
    },
    {
      "priority": 4,
      "action": "Fourth action",
      "impact": "High|Medium|Low",
      "effort": "Quick Win|Moderate|Significant",
      "category": "ai_readiness|content|structured_data|technical"
    },
    {
      "priority": 5,
      "action": "Fifth action",
      "impact": "High|Medium|Low",
      "effort": "Quick Win|Moderate|Significant",
      "category": "ai_readiness|content|structured_data|technical"
    }
  ]
}`,
		in.URL,
		scores.Overall, scores.AIReadiness, scores.Content, scores.StructuredData, scores.OnPage, scores.Technical,
		derefOr(meta.Title.Value, "N/A"), derefOr(meta.Description.Value, "N/A"), meta.Canonical != nil, derefOr(meta.Language, "N/A"),
		report.Content.WordCount, strings.Join(keywords, ", "), report.Content.Readability.FleschReadingEase,
		len(report.StructuredData.JSONLD), len(report.StructuredData.OpenGraph) > 0, len(report.StructuredData.TwitterCard) > 0,
		report.AIIndexing.LLMsTxt.Present, report.AIIndexing.SitemapXML.Present, allowedText, blockedText,
		issuesText,
		scores.AIReadiness, scores.Content, scores.StructuredData, scores.OnPage, scores.Technical)
}

// structuredToMarkdown renders the provider's structured report as the
// markdown document the frontend displays.
func structuredToMarkdown(data map[string]any) string {
	lines := []string{}

	overall := objectField(data, "overallAssessment")
	lines = append(lines,
		fmt.Sprintf("## AI Discoverability Report: %s", stringFieldOr(overall, "rating", "Unknown")),
		"",
		stringField(overall, "summary"),
		"",
		fmt.Sprintf("**✅ Primary Strength:** %s", stringField(overall, "primaryStrength")),
		"",
		fmt.Sprintf("**⚠️ Primary Weakness:** %s", stringField(overall, "primaryWeakness")),
		"",
	)

	lines = append(lines, "## Score Breakdown", "")
	for _, item := range anyMapSlice(data, "scoreBreakdown") {
		lines = append(lines,
			fmt.Sprintf("### %s: %v/100 (%s)", stringField(item, "category"), numOrZero(item, "score"), stringField(item, "rating")),
			"",
			stringField(item, "explanation"),
			"",
			fmt.Sprintf("**💡 Improvement:** %s", stringField(item, "improvement")),
			"",
		)
	}

	lines = append(lines, "## Platform-Specific Insights", "")
	for _, platform := range anyMapSlice(data, "platformInsights") {
		status := stringField(platform, "status")
		emoji := "❌"
		switch status {
		case "Optimized":
			emoji = "✅"
		case "Partially Optimized":
			emoji = "⚠️"
		}
		lines = append(lines,
			fmt.Sprintf("### %s %s", stringField(platform, "platform"), emoji),
			"",
			fmt.Sprintf("**Status:** %s", status),
			"",
			fmt.Sprintf("**Tip:** %s", stringField(platform, "tip")),
			"",
		)
	}

	lines = append(lines, "## Prioritized Actions", "")
	for _, action := range anyMapSlice(data, "prioritizedActions") {
		impact := stringField(action, "impact")
		emoji := "📉"
		switch impact {
		case "High":
			emoji = "🔥"
		case "Medium":
			emoji = "📈"
		}
		lines = append(lines,
			fmt.Sprintf("%v. **%s**", numOrZero(action, "priority"), stringField(action, "action")),
			fmt.Sprintf("   - Impact: %s %s", emoji, impact),
			fmt.Sprintf("   - Effort: %s", stringField(action, "effort")),
			"",
		)
	}

	return strings.Join(lines, "\n")
}

func (t *AISummary) basicSummary(in Input) map[string]any {
	scores := in.Overview.Scores
	overall := scores.Overall

	rating := "Poor"
	switch {
	case overall >= 90:
		rating = "Excellent"
	case overall >= 70:
		rating = "Good"
	case overall >= 50:
		rating = "Needs Improvement"
	}

	markdown := fmt.Sprintf(`## AI Discoverability Report: %s

Your website scored **%d/100** for AI discoverability.

### Quick Summary
- **AI Readiness:** %d/100
- **Content Quality:** %d/100
- **Structured Data:** %d/100
- **Technical SEO:** %d/100

### Next Steps
1. Review the detailed analysis
2. Focus on improving areas with lower scores
3. Implement structured data for better AI understanding
4. Create an llms.txt file for AI crawlers
`, rating, overall, scores.AIReadiness, scores.Content, scores.StructuredData, scores.Technical)

	return map[string]any{
		"markdown": markdown,
		"structured": map[string]any{
			"overallAssessment": map[string]any{
				"rating":  rating,
				"summary": fmt.Sprintf("Website scored %d/100 for AI discoverability.", overall),
			},
			"scoreBreakdown":     []any{},
			"platformInsights":   []any{},
			"prioritizedActions": []any{},
		},
		"success": true,
	}
}

func stringFieldOr(m map[string]any, key, fallback string) string {
	if s := stringField(m, key); s != "" {
		return s
	}
	return fallback
}

func numOrZero(m map[string]any, key string) any {
	if v, ok := m[key]; ok && v != nil {
		return v
	}
	return 0
}
