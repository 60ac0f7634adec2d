package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/rankonai/seoscope/internal/llm"
)

const insightsSystemPrompt = "You are an AI SEO expert specializing in AI discoverability and LLM optimization. Provide actionable, specific insights."

// Insights queries every configured LLM provider in parallel for
// strategic discoverability insights. Providers fail independently; the
// task itself fails only when no provider is configured at all.
type Insights struct {
	providers []llm.Client
	logger    *zap.Logger
}

// NewInsights builds the insights task over the given providers.
func NewInsights(providers []llm.Client, logger *zap.Logger) *Insights {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Insights{providers: providers, logger: logger}
}

func (t *Insights) Name() string { return "insights" }

func (t *Insights) Execute(ctx context.Context, in Input) (map[string]any, error) {
	data := map[string]any{"summary": nil}
	for _, p := range t.providers {
		data[p.Name()] = nil
	}

	configured := make([]llm.Client, 0, len(t.providers))
	for _, p := range t.providers {
		if p.Configured() {
			configured = append(configured, p)
		}
	}
	if len(configured) == 0 {
		return nil, errors.New("no llm provider configured")
	}

	prompt := t.prompt(in)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, p := range configured {
		wg.Add(1)
		go func() {
			defer wg.Done()
			response, err := p.Complete(ctx, llm.Request{
				System:      insightsSystemPrompt,
				User:        prompt,
				Temperature: 0.7,
				MaxTokens:   1500,
			})
			if err != nil {
				t.logger.Warn("insight generation failed",
					zap.String("provider", p.Name()), zap.Error(err))
				return
			}
			mu.Lock()
			data[p.Name()] = response
			mu.Unlock()
		}()
	}
	wg.Wait()

	data["summary"] = t.summary(data)
	return data, nil
}

func (t *Insights) prompt(in Input) string {
	scores := in.Overview.Scores
	return fmt.Sprintf(`Analyze this website's AI discoverability and provide strategic insights:

WEBSITE: %s
BRAND: %s
DESCRIPTION: %s
TOP KEYWORDS: %s

CURRENT SCORES:
- Overall: %d/100
- AI Readiness: %d/100
- Content: %d/100
- Technical: %d/100

Provide 3-5 specific, actionable insights about:
1. How AI assistants (ChatGPT, Claude, Perplexity) would perceive this website
2. Key opportunities to improve AI discoverability
3. What makes this brand unique and recommendable

Be concise and specific to this website. Format as bullet points.`,
		in.URL, brandName(in), pageDescription(in), strings.Join(topKeywords(in, 10), ", "),
		scores.Overall, scores.AIReadiness, scores.Content, scores.Technical)
}

func (t *Insights) summary(data map[string]any) string {
	available := []string{}
	for _, p := range t.providers {
		if response, _ := data[p.Name()].(string); response != "" {
			available = append(available, displayName(p.Name()))
		}
	}
	if len(available) == 0 {
		return "No AI insights available. Please configure API keys."
	}
	return fmt.Sprintf("Insights generated from: %s", strings.Join(available, ", "))
}
