package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeywords_Execute_ExtractedIsAlwaysPresent(t *testing.T) {
	t.Parallel()

	task := NewKeywords(nil, nil)

	data, err := task.Execute(context.Background(), testInput())
	require.NoError(t, err)

	extracted := section(t, data, "extracted")

	frequency := extracted["frequency"].([]map[string]any)
	require.Len(t, frequency, 3)
	require.Equal(t, "rockets", frequency[0]["keyword"])
	require.Equal(t, 12, frequency[0]["count"])
	require.Equal(t, 1.4, frequency[0]["density"])

	bigrams := extracted["bigrams"].([]map[string]any)
	require.Len(t, bigrams, 2)
	require.Equal(t, "model rockets", bigrams[0]["phrase"])
	require.Equal(t, 5, bigrams[0]["count"])

	trigrams := extracted["trigrams"].([]map[string]any)
	require.Len(t, trigrams, 1)

	require.Equal(t, []string{"rockets", "engines", "launch", "kits", "hobby"}, extracted["semantic"])
}

func TestKeywords_Execute_StrategicWithoutProvider(t *testing.T) {
	t.Parallel()

	task := NewKeywords(nil, nil)

	data, err := task.Execute(context.Background(), testInput())
	require.NoError(t, err)

	strategic := section(t, data, "strategic")
	require.Equal(t, "OpenAI API key not configured", strategic["error"])
	require.Empty(t, strategic["target_keywords"])
	require.Empty(t, strategic["long_tail"])
	require.Empty(t, strategic["questions"])
}

func TestKeywords_Execute_StrategicWithUnconfiguredProvider(t *testing.T) {
	t.Parallel()

	task := NewKeywords(&fakeLLM{name: "grok"}, nil)

	data, err := task.Execute(context.Background(), testInput())
	require.NoError(t, err)

	strategic := section(t, data, "strategic")
	require.Equal(t, "Grok API key not configured", strategic["error"])
}

func TestKeywords_Execute_StrategicSuccess(t *testing.T) {
	t.Parallel()

	client := &fakeLLM{name: "openai", configured: true, structured: map[string]any{
		"target_keywords": []any{
			map[string]any{"keyword": "model rocket kits", "search_intent": "transactional", "priority": "high"},
			map[string]any{"keyword": "rocket engines", "search_intent": "commercial", "priority": "medium"},
		},
		"long_tail": []any{"best model rockets for beginners", "how to store rocket engines"},
		"questions": []any{"what is a model rocket"},
	}}
	task := NewKeywords(client, nil)

	data, err := task.Execute(context.Background(), testInput())
	require.NoError(t, err)

	strategic := section(t, data, "strategic")
	require.NotContains(t, strategic, "error")
	require.Len(t, strategic["target_keywords"], 2)

	summary := section(t, data, "summary")
	require.Equal(t, 3, summary["total_extracted"])
	require.Equal(t, []string{"rockets", "engines", "launch"}, summary["top_extracted"])
	require.Equal(t, 2, summary["strategic_recommendations"])
	require.Equal(t, []string{"model rocket kits", "rocket engines"}, summary["top_strategic"])
	require.Equal(t, 2, summary["long_tail_count"])
	require.Equal(t, 1, summary["questions_count"])

	req := client.lastRequest()
	require.Contains(t, req.User, "- Top keywords: rockets, engines, launch, kits, hobby")
	require.Contains(t, req.User, "- Key phrases: model rockets, rocket engines")
	require.EqualValues(t, 2000, req.MaxTokens)
}

func TestKeywords_Execute_StrategicFailureIsEmbedded(t *testing.T) {
	t.Parallel()

	client := &fakeLLM{name: "openai", configured: true, err: errors.New("rate limited")}
	task := NewKeywords(client, nil)

	data, err := task.Execute(context.Background(), testInput())
	require.NoError(t, err)

	strategic := section(t, data, "strategic")
	require.Equal(t, "rate limited", strategic["error"])

	summary := section(t, data, "summary")
	require.Equal(t, 0, summary["strategic_recommendations"])
	require.Empty(t, summary["top_strategic"])
}
