package seo

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// languageNames maps ISO 639-1 codes to display names.
var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"pl": "Polish",
	"ru": "Russian",
	"ja": "Japanese",
	"zh": "Chinese",
	"ko": "Korean",
	"ar": "Arabic",
	"hi": "Hindi",
	"tr": "Turkish",
	"vi": "Vietnamese",
	"th": "Thai",
	"id": "Indonesian",
	"ms": "Malay",
	"sv": "Swedish",
	"da": "Danish",
	"fi": "Finnish",
	"no": "Norwegian",
	"cs": "Czech",
	"uk": "Ukrainian",
	"el": "Greek",
	"he": "Hebrew",
	"ro": "Romanian",
	"hu": "Hungarian",
	"sk": "Slovak",
	"bg": "Bulgarian",
	"hr": "Croatian",
	"sr": "Serbian",
	"sl": "Slovenian",
	"lt": "Lithuanian",
	"lv": "Latvian",
	"et": "Estonian",
}

// indicatorOrder fixes the tie-break order for content-based detection.
var indicatorOrder = []string{"en", "es", "fr", "de", "it", "pt", "nl", "pl", "ru"}

// languageIndicators holds common function words per language for
// content-based detection.
var languageIndicators = map[string]map[string]struct{}{
	"en": wordSet("the", "and", "is", "are", "was", "were", "have", "has", "been", "will", "would", "could", "should", "this", "that", "with", "from", "they", "their", "about"),
	"es": wordSet("el", "la", "los", "las", "de", "del", "que", "en", "es", "por", "con", "para", "una", "uno", "como", "pero", "ser", "estar", "este", "esta"),
	"fr": wordSet("le", "la", "les", "de", "des", "du", "que", "est", "sont", "pour", "dans", "avec", "sur", "par", "une", "cette", "nous", "vous", "leur", "mais"),
	"de": wordSet("der", "die", "das", "und", "ist", "von", "mit", "auf", "den", "des", "eine", "einer", "haben", "wird", "sind", "werden", "nicht", "auch", "sich", "nach"),
	"it": wordSet("il", "la", "di", "che", "per", "con", "una", "sono", "del", "della", "alla", "questo", "quella", "essere", "hanno", "anche", "come", "loro", "tutti", "nella"),
	"pt": wordSet("o", "a", "os", "as", "de", "da", "do", "que", "em", "para", "com", "uma", "por", "como", "mas", "foi", "ser", "tem", "seu", "sua"),
	"nl": wordSet("de", "het", "een", "van", "en", "in", "is", "dat", "op", "te", "zijn", "voor", "met", "als", "aan", "worden", "dit", "ook", "niet", "naar"),
	"pl": wordSet("i", "w", "na", "do", "z", "jest", "nie", "to", "sie", "jak", "od", "po", "dla", "czy", "ale", "tak", "przez", "tego", "przy", "oraz"),
	"ru": wordSet("и", "в", "на", "не", "что", "с", "по", "это", "как", "для", "из", "но", "все", "от", "его", "она", "они", "так", "или", "мы"),
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

var (
	langCodeRe = regexp.MustCompile(`^([a-z]{2,3})(?:[-_]([a-z]{2,4}))?`)
	// wordRunRe finds maximal runs of word characters so that mixed
	// tokens like "abc123" are rejected whole, not partially matched.
	wordRunRe   = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	langTokenRe = regexp.MustCompile(`^[a-z\x{0400}-\x{04ff}]{2,}$`)
)

// LanguageSignals carries the raw signals the page exposes about its
// language.
type LanguageSignals struct {
	HTMLLang        string
	ContentLanguage string
	OGLocale        string
	HreflangTags    []HreflangTag
	TextContent     string
}

// DetectLanguage resolves the page language from several signals in
// priority order: html lang attribute, Content-Language header,
// og:locale, hreflang x-default, then content analysis as a low
// confidence fallback.
func DetectLanguage(signals LanguageSignals) LanguageInfo {
	info := LanguageInfo{
		Confidence:   "low",
		Alternatives: []LanguageAlternative{},
		Issues:       []LanguageIssue{},
	}

	if signals.HTMLLang != "" {
		if code, region, ok := parseLangCode(signals.HTMLLang); ok {
			info.Code, info.Region = &code, region
			info.Confidence = "high"
			info.Source = strPtr("html_lang")
		}
	}
	if info.Code == nil && signals.ContentLanguage != "" {
		if code, region, ok := parseLangCode(signals.ContentLanguage); ok {
			info.Code, info.Region = &code, region
			info.Confidence = "high"
			info.Source = strPtr("content_language_header")
		}
	}
	if info.Code == nil && signals.OGLocale != "" {
		if code, region, ok := parseLangCode(strings.ReplaceAll(signals.OGLocale, "_", "-")); ok {
			info.Code, info.Region = &code, region
			info.Confidence = "medium"
			info.Source = strPtr("og_locale")
		}
	}

	if len(signals.HreflangTags) > 0 {
		alternatives := hreflangLanguages(signals.HreflangTags)
		if len(alternatives) > 0 {
			info.Alternatives = alternatives
			if info.Code == nil {
				for _, alt := range alternatives {
					if !alt.IsDefault {
						continue
					}
					if code, region, ok := parseLangCode(alt.Code); ok {
						info.Code, info.Region = &code, region
					}
					info.Confidence = "medium"
					info.Source = strPtr("hreflang_default")
					break
				}
			}
		}
	}

	if info.Code == nil && signals.TextContent != "" {
		if code, ok := detectFromContent(signals.TextContent); ok {
			info.Code = &code
			info.Region = nil
			info.Confidence = "low"
			info.Source = strPtr("content_analysis")
		}
	}

	if info.Code != nil {
		name, ok := languageNames[strings.ToLower(*info.Code)]
		if !ok {
			name = strings.ToUpper(*info.Code)
		}
		info.Name = &name
	}

	info.Issues = languageIssues(signals, info.Code)
	return info
}

// parseLangCode parses values like "en", "en-US" or "en_us". The region,
// when present, is uppercased.
func parseLangCode(value string) (code string, region *string, ok bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	m := langCodeRe.FindStringSubmatch(value)
	if m == nil {
		return "", nil, false
	}
	code = m[1]
	if m[2] != "" {
		r := strings.ToUpper(m[2])
		region = &r
	}
	return code, region, true
}

func hreflangLanguages(tags []HreflangTag) []LanguageAlternative {
	languages := []LanguageAlternative{}
	for _, tag := range tags {
		if tag.Hreflang == "x-default" {
			languages = append(languages, LanguageAlternative{
				Code:      "x-default",
				Href:      tag.Href,
				IsDefault: true,
			})
			continue
		}
		if code, region, ok := parseLangCode(tag.Hreflang); ok {
			languages = append(languages, LanguageAlternative{
				Code:   code,
				Region: region,
				Href:   tag.Href,
			})
		}
	}
	return languages
}

// detectFromContent scores the first 1000 characters against per-language
// indicator words. At least three distinct matches are required.
func detectFromContent(text string) (string, bool) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < 50 {
		return "", false
	}

	runes := []rune(text)
	if len(runes) > 1000 {
		runes = runes[:1000]
	}
	sample := strings.ToLower(string(runes))

	words := make(map[string]struct{})
	for _, run := range wordRunRe.FindAllString(sample, -1) {
		if langTokenRe.MatchString(run) {
			words[run] = struct{}{}
		}
	}
	if len(words) == 0 {
		return "", false
	}

	best, bestScore := "", 0
	for _, lang := range indicatorOrder {
		score := 0
		for w := range words {
			if _, ok := languageIndicators[lang][w]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = lang, score
		}
	}
	if bestScore < 3 {
		return "", false
	}
	return best, true
}

func languageIssues(signals LanguageSignals, detected *string) []LanguageIssue {
	issues := []LanguageIssue{}

	if signals.HTMLLang == "" {
		issues = append(issues, LanguageIssue{
			Code:           "LANG_ATTR_MISSING",
			Severity:       SeverityMedium,
			Message:        "HTML lang attribute is missing - important for SEO and accessibility",
			Recommendation: `Add lang attribute to <html> tag, e.g., <html lang="en">`,
		})
	}

	if signals.HTMLLang != "" && signals.ContentLanguage != "" {
		htmlCode, _, htmlOK := parseLangCode(signals.HTMLLang)
		headerCode, _, headerOK := parseLangCode(signals.ContentLanguage)
		if htmlOK && headerOK && htmlCode != headerCode {
			issues = append(issues, LanguageIssue{
				Code:           "LANG_MISMATCH",
				Severity:       SeverityMedium,
				Message:        fmt.Sprintf("Language mismatch: HTML lang='%s' vs Content-Language='%s'", signals.HTMLLang, signals.ContentLanguage),
				Recommendation: "Ensure HTML lang attribute matches Content-Language header",
			})
		}
	}

	if len(signals.HreflangTags) > 1 {
		hasDefault := false
		for _, tag := range signals.HreflangTags {
			if tag.Hreflang == "x-default" {
				hasDefault = true
				break
			}
		}
		if !hasDefault {
			issues = append(issues, LanguageIssue{
				Code:           "HREFLANG_NO_DEFAULT",
				Severity:       SeverityLow,
				Message:        "No x-default hreflang specified for multilingual site",
				Recommendation: "Add hreflang='x-default' pointing to default language version",
			})
		}
	}

	return issues
}

// LanguageContextForAI formats the detected language for inclusion in AI
// prompts.
func LanguageContextForAI(info LanguageInfo) string {
	if info.Code == nil {
		return "Language: Not detected (assume English)"
	}

	name := strings.ToUpper(*info.Code)
	if info.Name != nil {
		name = *info.Name
	}
	if info.Region != nil {
		name += fmt.Sprintf(" (%s)", *info.Region)
	}

	confidence := info.Confidence
	if confidence == "" {
		confidence = "unknown"
	}
	context := fmt.Sprintf("Language: %s (confidence: %s)", name, confidence)

	altCodes := []string{}
	for _, alt := range info.Alternatives {
		if alt.Code != "x-default" {
			altCodes = append(altCodes, alt.Code)
		}
	}
	if len(altCodes) > 0 {
		context += "\nAlternative languages: " + strings.Join(altCodes, ", ")
	}
	return context
}

func strPtr(s string) *string { return &s }
