package seo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContentAnalyzer_WordCount(t *testing.T) {
	t.Parallel()

	a := NewContentAnalyzer("The quick brown fox jumps over the lazy dog")
	require.Equal(t, 9, a.WordCount())
}

func TestContentAnalyzer_WordCount_SkipsShortAndNonAlpha(t *testing.T) {
	t.Parallel()

	// "go" and "a" are under three letters, "2024" is not alphabetic.
	a := NewContentAnalyzer("go a 2024 golang rocks")
	require.Equal(t, 2, a.WordCount())
}

func TestContentAnalyzer_KeywordsFrequency(t *testing.T) {
	t.Parallel()

	a := NewContentAnalyzer("golang makes concurrency simple golang makes servers simple concurrency wins")
	keywords := a.KeywordsFrequency(3)

	require.Len(t, keywords, 3)
	// Equal counts keep first-occurrence order.
	require.Equal(t, "golang", keywords[0].Keyword)
	require.Equal(t, "makes", keywords[1].Keyword)
	require.Equal(t, "concurrency", keywords[2].Keyword)
	require.Equal(t, 2, keywords[0].Count)
	require.InDelta(t, 20.0, keywords[0].DensityPercent, 1e-9)
}

func TestContentAnalyzer_KeywordsFrequency_ExcludesStopWords(t *testing.T) {
	t.Parallel()

	a := NewContentAnalyzer("the the the cat cat")
	keywords := a.KeywordsFrequency(10)

	require.Len(t, keywords, 1)
	require.Equal(t, "cat", keywords[0].Keyword)
	require.Equal(t, 2, keywords[0].Count)
	// Density is relative to non-stop-word totals.
	require.InDelta(t, 100.0, keywords[0].DensityPercent, 1e-9)
}

func TestContentAnalyzer_KeywordsFrequency_Empty(t *testing.T) {
	t.Parallel()

	keywords := NewContentAnalyzer("").KeywordsFrequency(10)
	require.NotNil(t, keywords)
	require.Empty(t, keywords)
}

func TestContentAnalyzer_Phrases(t *testing.T) {
	t.Parallel()

	a := NewContentAnalyzer("alpha beta gamma alpha beta delta")

	bigrams := a.Phrases(2, 10)
	require.Equal(t, []Phrase{{Phrase: "alpha beta", Count: 2}}, bigrams)

	// Every trigram occurs once, and singletons are dropped.
	trigrams := a.Phrases(3, 10)
	require.NotNil(t, trigrams)
	require.Empty(t, trigrams)
}

func TestContentAnalyzer_Phrases_TextShorterThanGram(t *testing.T) {
	t.Parallel()

	phrases := NewContentAnalyzer("alpha beta").Phrases(3, 10)
	require.NotNil(t, phrases)
	require.Empty(t, phrases)
}

func TestContentAnalyzer_KeywordsTFIDF_SingleDocument(t *testing.T) {
	t.Parallel()

	// No sentence is long enough, so the whole text becomes one document
	// and every term gets the same weight.
	a := NewContentAnalyzer("tiny text here")
	keywords := a.KeywordsTFIDF(10)

	require.Len(t, keywords, 3)
	// Ties break alphabetically; "here" is a stop word, the bigram keeps
	// only the surviving tokens.
	require.Equal(t, "text", keywords[0].Keyword)
	require.Equal(t, "tiny", keywords[1].Keyword)
	require.Equal(t, "tiny text", keywords[2].Keyword)
	for _, k := range keywords {
		require.InDelta(t, 0.577, k.TFIDFScore, 1e-9)
		require.Equal(t, 1, k.Count)
	}
}

func TestContentAnalyzer_KeywordsTFIDF_RanksDistinctiveTerms(t *testing.T) {
	t.Parallel()

	text := "Structured logging keeps production debugging sane and fast for teams. " +
		"Structured logging pairs naturally with distributed tracing systems. " +
		"Database migrations deserve the same operational care as code deployments."
	keywords := NewContentAnalyzer(text).KeywordsTFIDF(5)

	require.NotEmpty(t, keywords)
	for i := 1; i < len(keywords); i++ {
		require.GreaterOrEqual(t, keywords[i-1].TFIDFScore, keywords[i].TFIDFScore)
	}
	for _, k := range keywords {
		require.Equal(t, strings.ToLower(k.Keyword), k.Keyword)
		require.GreaterOrEqual(t, k.Count, 1)
	}
}

func TestContentAnalyzer_KeywordsTFIDF_Empty(t *testing.T) {
	t.Parallel()

	keywords := NewContentAnalyzer("   ").KeywordsTFIDF(10)
	require.NotNil(t, keywords)
	require.Empty(t, keywords)
}

func TestContentAnalyzer_ReadabilityScores(t *testing.T) {
	t.Parallel()

	a := NewContentAnalyzer("The cat sat on the mat. The dog ran in the park. The bird flew over the trees.")
	scores := a.ReadabilityScores()

	// 18 words, 3 sentences, 19 syllables, 61 non-space characters.
	require.InDelta(t, 111.4, scores.FleschReadingEase, 1e-9)
	require.InDelta(t, -0.8, scores.FleschKincaidGrade, 1e-9)
	require.InDelta(t, 2.4, scores.GunningFog, 1e-9)
	require.InDelta(t, 3.1, scores.SMOGIndex, 1e-9)
	require.InDelta(t, -2.5, scores.AutomatedReadabilityIndex, 1e-9)
	require.InDelta(t, 0.0, scores.ReadingTimeMinutes, 1e-9)
}

func TestContentAnalyzer_ReadabilityScores_Empty(t *testing.T) {
	t.Parallel()

	require.Equal(t, Readability{}, NewContentAnalyzer("  ").ReadabilityScores())
}

func TestContentAnalyzer_ReadabilityScores_SMOGNeedsThreeSentences(t *testing.T) {
	t.Parallel()

	a := NewContentAnalyzer("The complicated algorithm processes information. The system operates continuously.")
	require.Zero(t, a.ReadabilityScores().SMOGIndex)
}

func TestCountSentences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "skips short fragments", text: "Hi there. This is a test sentence. Short.", want: 1},
		{name: "never below one", text: "Hello", want: 1},
		{name: "counts real sentences", text: "One two three four. Five six seven! Eight nine ten?", want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, countSentences(tt.text))
		})
	}
}

func TestSyllableCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		word string
		want int
	}{
		{"cat", 1},
		{"hello", 2},
		{"beautiful", 3},
		{"the", 1},
		{"table", 2},
		{"make", 1},
		{"rhythm", 1},
		{"123", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			require.Equal(t, tt.want, syllableCount(tt.word))
		})
	}
}
