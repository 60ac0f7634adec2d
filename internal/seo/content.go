package seo

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	wordRe     = regexp.MustCompile(`\b[a-z]{3,}\b`)
	tokenRe    = regexp.MustCompile(`\b\w\w+\b`)
	sentenceRe = regexp.MustCompile(`[.!?]+`)
)

// msPerChar is the per-character reading speed used for the estimated
// reading time.
const msPerChar = 14.69

// ContentAnalyzer extracts keywords, phrases and readability metrics from
// page text.
type ContentAnalyzer struct {
	text  string
	words []string
}

// NewContentAnalyzer tokenizes the text once for reuse across metrics.
func NewContentAnalyzer(text string) *ContentAnalyzer {
	return &ContentAnalyzer{
		text:  text,
		words: wordRe.FindAllString(strings.ToLower(text), -1),
	}
}

// WordCount returns the number of extracted words (letters only, three
// characters or longer).
func (a *ContentAnalyzer) WordCount() int {
	return len(a.words)
}

// KeywordsFrequency returns the topN non-stop-word keywords by frequency,
// with density relative to the filtered word total. Ties keep first
// occurrence order.
func (a *ContentAnalyzer) KeywordsFrequency(topN int) []Keyword {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	total := 0
	for _, w := range a.words {
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, seen := counts[w]; !seen {
			firstSeen[w] = total
		}
		counts[w]++
		total++
	}

	ranked := make([]string, 0, len(counts))
	for w := range counts {
		ranked = append(ranked, w)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return firstSeen[ranked[i]] < firstSeen[ranked[j]]
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	denom := total
	if denom == 0 {
		denom = 1
	}
	keywords := make([]Keyword, 0, len(ranked))
	for _, w := range ranked {
		keywords = append(keywords, Keyword{
			Keyword:        w,
			Count:          counts[w],
			DensityPercent: round2(float64(counts[w]) / float64(denom) * 100),
		})
	}
	return keywords
}

// Phrases returns the topK most common n-grams that occur more than once.
// Stop words stay in, so natural phrases like "how it works" survive.
func (a *ContentAnalyzer) Phrases(n, topK int) []Phrase {
	if len(a.words) < n {
		return []Phrase{}
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i := 0; i+n <= len(a.words); i++ {
		gram := strings.Join(a.words[i:i+n], " ")
		if _, seen := counts[gram]; !seen {
			firstSeen[gram] = i
		}
		counts[gram]++
	}

	ranked := make([]string, 0, len(counts))
	for g := range counts {
		ranked = append(ranked, g)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return firstSeen[ranked[i]] < firstSeen[ranked[j]]
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	phrases := make([]Phrase, 0, len(ranked))
	for _, g := range ranked {
		if counts[g] > 1 {
			phrases = append(phrases, Phrase{Phrase: g, Count: counts[g]})
		}
	}
	return phrases
}

// KeywordsTFIDF ranks unigrams and bigrams by TF-IDF weight, treating
// each sentence as a document. Short texts collapse to a single document,
// which degrades gracefully to frequency-like ranking.
func (a *ContentAnalyzer) KeywordsTFIDF(topN int) []TFIDFKeyword {
	if strings.TrimSpace(a.text) == "" {
		return []TFIDFKeyword{}
	}

	docs := a.tfidfDocuments()
	if len(docs) == 0 {
		return []TFIDFKeyword{}
	}

	// Document frequency per term, and total frequency for the
	// max_features cut.
	df := make(map[string]int)
	totalTF := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range doc {
			totalTF[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				df[term]++
			}
		}
	}

	// Drop terms that appear in nearly every sentence, then cap the
	// vocabulary at the 100 most frequent terms.
	maxDF := 0.95 * float64(len(docs))
	vocab := make([]string, 0, len(df))
	for term, d := range df {
		if len(docs) > 1 && float64(d) > maxDF {
			continue
		}
		vocab = append(vocab, term)
	}
	sort.Slice(vocab, func(i, j int) bool {
		if totalTF[vocab[i]] != totalTF[vocab[j]] {
			return totalTF[vocab[i]] > totalTF[vocab[j]]
		}
		return vocab[i] < vocab[j]
	})
	if len(vocab) > 100 {
		vocab = vocab[:100]
	}
	inVocab := make(map[string]struct{}, len(vocab))
	for _, term := range vocab {
		inVocab[term] = struct{}{}
	}

	// Smoothed idf, l2-normalized rows, scores summed over documents.
	n := float64(len(docs))
	idf := func(term string) float64 {
		return math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	scores := make(map[string]float64)
	for _, doc := range docs {
		tf := make(map[string]int)
		for _, term := range doc {
			if _, ok := inVocab[term]; ok {
				tf[term]++
			}
		}
		var norm float64
		row := make(map[string]float64, len(tf))
		for term, count := range tf {
			v := float64(count) * idf(term)
			row[term] = v
			norm += v * v
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for term, v := range row {
			scores[term] += v / norm
		}
	}

	ranked := make([]string, 0, len(scores))
	for term := range scores {
		ranked = append(ranked, term)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if scores[ranked[i]] != scores[ranked[j]] {
			return scores[ranked[i]] > scores[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	lowered := strings.ToLower(a.text)
	out := make([]TFIDFKeyword, 0, len(ranked))
	for _, term := range ranked {
		out = append(out, TFIDFKeyword{
			Keyword:    term,
			TFIDFScore: round3(scores[term]),
			Count:      countTermOccurrences(lowered, term),
		})
	}
	return out
}

// tfidfDocuments splits the text into per-sentence token lists of
// unigrams and bigrams, stop words removed. Texts without at least two
// substantial sentences become one whole-text document.
func (a *ContentAnalyzer) tfidfDocuments() [][]string {
	var sentences []string
	for _, s := range sentenceRe.Split(a.text, -1) {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) > 20 {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) < 2 {
		sentences = []string{a.text}
	}

	docs := make([][]string, 0, len(sentences))
	for _, s := range sentences {
		tokens := tokenRe.FindAllString(strings.ToLower(s), -1)
		filtered := tokens[:0]
		for _, tok := range tokens {
			if _, stop := stopWords[tok]; !stop {
				filtered = append(filtered, tok)
			}
		}
		terms := make([]string, 0, len(filtered)*2)
		terms = append(terms, filtered...)
		for i := 0; i+1 < len(filtered); i++ {
			terms = append(terms, filtered[i]+" "+filtered[i+1])
		}
		docs = append(docs, terms)
	}
	return docs
}

func countTermOccurrences(lowered, term string) int {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(term) + `\b`)
	if err != nil {
		return 0
	}
	return len(re.FindAllStringIndex(lowered, -1))
}

// ReadabilityScores computes the classic readability formulas. Values are
// heuristic (syllables are estimated from vowel groups) and rounded to
// one decimal.
func (a *ContentAnalyzer) ReadabilityScores() Readability {
	if strings.TrimSpace(a.text) == "" {
		return Readability{}
	}

	words := lexiconWords(a.text)
	wordCount := len(words)
	sentenceCount := countSentences(a.text)
	if wordCount == 0 || sentenceCount == 0 {
		return Readability{}
	}

	syllables := 0
	polysyllables := 0
	for _, w := range words {
		s := syllableCount(w)
		syllables += s
		if s >= 3 {
			polysyllables++
		}
	}

	chars := 0
	for _, r := range a.text {
		if !unicode.IsSpace(r) {
			chars++
		}
	}

	wordsPerSentence := float64(wordCount) / float64(sentenceCount)
	syllablesPerWord := float64(syllables) / float64(wordCount)
	charsPerWord := float64(chars) / float64(wordCount)

	flesch := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	kincaid := 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59
	fog := 0.4 * (wordsPerSentence + 100*float64(polysyllables)/float64(wordCount))
	ari := 4.71*charsPerWord + 0.5*wordsPerSentence - 21.43

	smog := 0.0
	if sentenceCount >= 3 {
		smog = 1.043*math.Sqrt(float64(polysyllables)*30/float64(sentenceCount)) + 3.1291
	}

	readingMinutes := float64(utf8.RuneCountInString(a.text)) * msPerChar / 1000 / 60

	return Readability{
		FleschReadingEase:         round1(flesch),
		FleschKincaidGrade:        round1(kincaid),
		GunningFog:                round1(fog),
		SMOGIndex:                 round1(smog),
		AutomatedReadabilityIndex: round1(ari),
		ReadingTimeMinutes:        round1(readingMinutes),
	}
}

// lexiconWords splits the text into words, trimming surrounding
// punctuation.
func lexiconWords(text string) []string {
	fields := strings.Fields(text)
	words := fields[:0]
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// countSentences counts segments split on terminal punctuation, skipping
// fragments of two words or fewer. Always at least one.
func countSentences(text string) int {
	count := 0
	for _, seg := range sentenceRe.Split(text, -1) {
		if len(lexiconWords(seg)) > 2 {
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return count
}

// syllableCount estimates syllables by counting vowel groups, with a
// silent trailing "e" adjustment. Minimum one per word.
func syllableCount(word string) int {
	var letters []rune
	for _, r := range strings.ToLower(word) {
		if r >= 'a' && r <= 'z' {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 {
		return 0
	}

	count := 0
	prevVowel := false
	for _, r := range letters {
		isVowel := strings.ContainsRune("aeiouy", r)
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}

	w := string(letters)
	if count > 1 && strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
