// Package seo analyzes HTML pages for search engine and AI assistant
// discoverability: meta tags, headings, content quality, structured data,
// robots.txt bot policies and llms.txt adoption.
package seo

// aiBotNames lists the known AI crawler user agents in a stable order, so
// reports and issue messages come out deterministic.
var aiBotNames = []string{
	// OpenAI
	"GPTBot",
	"OAI-SearchBot",
	"ChatGPT-User",

	// Anthropic
	"ClaudeBot",
	"Claude-Web",
	"anthropic-ai",

	// Google
	"Google-Extended",
	"GoogleOther",

	// Others
	"PerplexityBot",
	"Bytespider",
	"CCBot",
	"Amazonbot",
	"Applebot-Extended",
	"cohere-ai",
	"Diffbot",
	"FacebookBot",
	"Meta-ExternalAgent",
	"omgili",
	"Timpibot",
}

// AIBotDescriptions maps AI crawler user agents to what they crawl for.
var AIBotDescriptions = map[string]string{
	"GPTBot":             "OpenAI training crawler",
	"OAI-SearchBot":      "ChatGPT search feature",
	"ChatGPT-User":       "ChatGPT user browsing actions",
	"ClaudeBot":          "Anthropic training crawler",
	"Claude-Web":         "Claude web access",
	"anthropic-ai":       "Anthropic AI crawler",
	"Google-Extended":    "Google Gemini/Bard training",
	"GoogleOther":        "Google other services",
	"PerplexityBot":      "Perplexity AI search",
	"Bytespider":         "ByteDance/TikTok crawler",
	"CCBot":              "Common Crawl (used by many AI)",
	"Amazonbot":          "Amazon Alexa/AI services",
	"Applebot-Extended":  "Apple AI features",
	"cohere-ai":          "Cohere AI training",
	"Diffbot":            "Diffbot knowledge graph",
	"FacebookBot":        "Meta AI training",
	"Meta-ExternalAgent": "Meta external AI agent",
	"omgili":             "Webz.io data for AI",
	"Timpibot":           "Timpi search engine",
}

// AIBots returns the known AI crawler names in report order.
func AIBots() []string {
	out := make([]string, len(aiBotNames))
	copy(out, aiBotNames)
	return out
}

// stopWords are excluded from keyword extraction.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {}, "you": {}, "all": {}, "can": {}, "had": {},
	"her": {}, "was": {}, "one": {}, "our": {}, "out": {}, "has": {}, "have": {}, "been": {}, "were": {}, "will": {},
	"with": {}, "this": {}, "that": {}, "from": {}, "they": {}, "what": {}, "which": {}, "their": {}, "there": {},
	"would": {}, "could": {}, "should": {}, "about": {}, "into": {}, "more": {}, "some": {}, "than": {}, "them": {},
	"then": {}, "these": {}, "when": {}, "where": {}, "your": {}, "just": {}, "also": {}, "only": {}, "other": {},
	"such": {}, "like": {}, "very": {}, "even": {}, "most": {}, "make": {}, "made": {}, "each": {}, "does": {},
	"how": {}, "its": {}, "may": {}, "use": {}, "any": {}, "being": {}, "both": {}, "find": {}, "here": {}, "many": {},
	"through": {}, "using": {}, "well": {}, "back": {}, "much": {}, "before": {}, "must": {}, "right": {}, "still": {},
	"own": {}, "same": {}, "see": {}, "now": {}, "way": {}, "come": {}, "since": {}, "another": {}, "over": {},
}

// Title and description length thresholds (characters).
const (
	TitleMinLength    = 30
	TitleMaxLength    = 60
	MetaDescMinLength = 70
	MetaDescMaxLength = 160
)

// Word count thresholds for content scoring.
const (
	MinWordCountGood = 500
	MinWordCountOK   = 300
)

// Score deductions by issue severity.
const (
	DeductionHigh   = 15
	DeductionMedium = 8
	DeductionLow    = 3
)
