package seo

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// PageAnalyzer inspects a fetched HTML document for on-page SEO factors.
// Issues and recommendations accumulate across the analyze methods and
// are collected once at the end.
type PageAnalyzer struct {
	doc     *goquery.Document
	rawHTML string
	baseURL *url.URL

	issues          []Issue
	recommendations []Recommendation
}

// NewPageAnalyzer parses the document once for reuse across the analyze
// methods. The base URL resolves relative links.
func NewPageAnalyzer(rawHTML, baseURL string) (*PageAnalyzer, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &PageAnalyzer{
		doc:     doc,
		rawHTML: rawHTML,
		baseURL: base,
	}, nil
}

// Issues returns all issues accumulated so far.
func (a *PageAnalyzer) Issues() []Issue {
	return a.issues
}

// Recommendations returns all recommendations accumulated so far.
func (a *PageAnalyzer) Recommendations() []Recommendation {
	return a.recommendations
}

func (a *PageAnalyzer) addIssue(severity, category, code, message, element string) {
	a.issues = append(a.issues, Issue{
		Severity: severity,
		Category: category,
		Code:     code,
		Message:  message,
		Element:  element,
	})
}

func (a *PageAnalyzer) addRecommendation(priority int, category, action string) {
	a.recommendations = append(a.recommendations, Recommendation{
		Priority: priority,
		Category: category,
		Action:   action,
	})
}

// AnalyzeMetaTags checks title, description, canonical, robots, viewport,
// lang and legacy keywords tags.
func (a *PageAnalyzer) AnalyzeMetaTags() Metadata {
	meta := Metadata{
		Title:       a.analyzeTitle(),
		Description: a.analyzeDescription(),
	}

	canonical := a.doc.Find(`link[rel="canonical"]`).First()
	if canonical.Length() > 0 {
		if href, ok := canonical.Attr("href"); ok {
			meta.Canonical = &href
		}
	} else {
		a.addIssue(SeverityMedium, CategoryTechnical, "CANONICAL_MISSING", "No canonical URL specified", "")
		a.addRecommendation(3, CategoryTechnical, "Add a canonical URL to prevent duplicate content issues")
	}

	if content, ok := a.doc.Find(`meta[name="robots"]`).First().Attr("content"); ok {
		meta.RobotsMeta = &content
	}

	viewport := a.doc.Find(`meta[name="viewport"]`).First()
	if viewport.Length() > 0 {
		if content, ok := viewport.Attr("content"); ok {
			meta.Viewport = &content
		}
	} else {
		a.addIssue(SeverityHigh, CategoryTechnical, "VIEWPORT_MISSING", "No viewport meta tag (page may not be mobile-friendly)", "")
		a.addRecommendation(1, CategoryTechnical, "Add viewport meta tag for mobile responsiveness")
	}

	if lang, ok := a.doc.Find("html").First().Attr("lang"); ok && lang != "" {
		meta.Language = &lang
	} else {
		a.addIssue(SeverityLow, CategoryOnPage, "LANG_MISSING", "HTML lang attribute not specified", "")
	}

	if content, ok := a.doc.Find(`meta[name="keywords"]`).First().Attr("content"); ok {
		meta.KeywordsMeta = &content
	}

	return meta
}

func (a *PageAnalyzer) analyzeTitle() MetaTag {
	sel := a.doc.Find("title").First()
	tag := MetaTag{Issues: []string{}, Recommendations: []string{}}

	var title string
	if sel.Length() > 0 {
		title = strings.TrimSpace(sel.Text())
		tag.Value = &title
		tag.Length = utf8.RuneCountInString(title)
	}

	switch {
	case title == "":
		tag.Issues = append(tag.Issues, "missing")
		tag.Recommendations = append(tag.Recommendations, "Add a title tag")
		a.addIssue(SeverityHigh, CategoryOnPage, "TITLE_MISSING", "Page is missing a title tag", "")
		a.addRecommendation(1, CategoryOnPage, "Add a descriptive title tag (50-60 characters)")
	case tag.Length < TitleMinLength:
		tag.Issues = append(tag.Issues, "too_short")
		tag.Recommendations = append(tag.Recommendations, "Expand title to 50-60 characters")
		a.addIssue(SeverityMedium, CategoryOnPage, "TITLE_TOO_SHORT",
			fmt.Sprintf("Title is only %d characters (recommended: 50-60)", tag.Length),
			fmt.Sprintf("<title>%s</title>", title))
		a.addRecommendation(2, CategoryOnPage, "Expand title tag to 50-60 characters with primary keyword")
	case tag.Length > TitleMaxLength:
		tag.Issues = append(tag.Issues, "too_long")
		tag.Recommendations = append(tag.Recommendations, "Shorten title to under 60 characters")
		a.addIssue(SeverityLow, CategoryOnPage, "TITLE_TOO_LONG",
			fmt.Sprintf("Title is %d characters (may be truncated)", tag.Length),
			fmt.Sprintf("<title>%s</title>", title))
	}

	return tag
}

func (a *PageAnalyzer) analyzeDescription() MetaTag {
	sel := a.doc.Find(`meta[name="description"]`).First()
	tag := MetaTag{Issues: []string{}, Recommendations: []string{}}

	var description string
	if sel.Length() > 0 {
		description = strings.TrimSpace(sel.AttrOr("content", ""))
		tag.Value = &description
		tag.Length = utf8.RuneCountInString(description)
	}

	switch {
	case description == "":
		tag.Issues = append(tag.Issues, "missing")
		tag.Recommendations = append(tag.Recommendations, "Add a meta description")
		a.addIssue(SeverityHigh, CategoryOnPage, "META_DESC_MISSING", "Page is missing a meta description", "")
		a.addRecommendation(1, CategoryOnPage, "Add a compelling meta description (150-160 characters)")
	case tag.Length < MetaDescMinLength:
		tag.Issues = append(tag.Issues, "too_short")
		tag.Recommendations = append(tag.Recommendations, "Expand description to 150-160 characters")
		a.addIssue(SeverityMedium, CategoryOnPage, "META_DESC_TOO_SHORT",
			fmt.Sprintf("Meta description is only %d characters", tag.Length), "")
	case tag.Length > MetaDescMaxLength:
		tag.Issues = append(tag.Issues, "too_long")
		tag.Recommendations = append(tag.Recommendations, "Shorten description to under 160 characters")
		a.addIssue(SeverityLow, CategoryOnPage, "META_DESC_TOO_LONG",
			fmt.Sprintf("Meta description is %d characters (may be truncated)", tag.Length), "")
	}

	return tag
}

// AnalyzeHeadings reports per-level heading counts and checks the H1 and
// the overall hierarchy.
func (a *PageAnalyzer) AnalyzeHeadings() Headings {
	levels := [6]HeadingLevel{}
	for i := range levels {
		sel := a.doc.Find(fmt.Sprintf("h%d", i+1))
		level := HeadingLevel{Count: sel.Length(), Values: []string{}, Issues: []string{}}
		sel.EachWithBreak(func(n int, s *goquery.Selection) bool {
			if n >= 10 {
				return false
			}
			level.Values = append(level.Values, truncateRunes(strings.TrimSpace(s.Text()), 100))
			return true
		})
		levels[i] = level
	}

	switch h1 := levels[0].Count; {
	case h1 == 0:
		levels[0].Issues = append(levels[0].Issues, "missing")
		a.addIssue(SeverityHigh, CategoryOnPage, "H1_MISSING", "Page is missing an H1 tag", "")
		a.addRecommendation(1, CategoryOnPage, "Add a single H1 tag with primary keyword")
	case h1 > 1:
		levels[0].Issues = append(levels[0].Issues, "multiple")
		a.addIssue(SeverityMedium, CategoryOnPage, "MULTIPLE_H1",
			fmt.Sprintf("Page has %d H1 tags (should have exactly 1)", h1), "")
		a.addRecommendation(2, CategoryOnPage, "Consolidate to a single H1 tag")
	}

	valid := a.headingHierarchyValid()
	if !valid {
		a.addIssue(SeverityLow, CategoryOnPage, "HEADING_HIERARCHY",
			"Heading hierarchy is not properly structured (skipped levels)", "")
	}

	return Headings{
		H1: levels[0], H2: levels[1], H3: levels[2],
		H4: levels[3], H5: levels[4], H6: levels[5],
		HierarchyValid: valid,
	}
}

// headingHierarchyValid reports whether no heading level is skipped in
// document order.
func (a *PageAnalyzer) headingHierarchyValid() bool {
	prev := 0
	valid := true
	a.doc.Find("h1,h2,h3,h4,h5,h6").Each(func(_ int, s *goquery.Selection) {
		level := int(goquery.NodeName(s)[1] - '0')
		if prev != 0 && level > prev+1 {
			valid = false
		}
		prev = level
	})
	return valid
}

// AnalyzeImages counts images, missing alt text and lazy loading usage.
func (a *PageAnalyzer) AnalyzeImages() ImageAnalysis {
	missingAlt := []string{}
	lazyCount := 0
	total := 0

	a.doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		total++
		src, ok := s.Attr("src")
		if !ok {
			src = s.AttrOr("data-src", "")
		}
		if alt, ok := s.Attr("alt"); !ok || strings.TrimSpace(alt) == "" {
			if src == "" {
				src = "unknown"
			}
			missingAlt = append(missingAlt, truncateRunes(src, 100))
		}
		if s.AttrOr("loading", "") == "lazy" {
			lazyCount++
		}
	})

	result := ImageAnalysis{
		Total:            total,
		MissingAlt:       len(missingAlt),
		MissingAltURLs:   missingAlt,
		LazyLoadingCount: lazyCount,
		Issues:           []string{},
	}
	if len(result.MissingAltURLs) > 10 {
		result.MissingAltURLs = result.MissingAltURLs[:10]
	}

	if len(missingAlt) > 0 {
		result.Issues = append(result.Issues, fmt.Sprintf("%d images missing alt text", len(missingAlt)))
		sample := missingAlt
		if len(sample) > 3 {
			sample = sample[:3]
		}
		a.addIssue(SeverityMedium, CategoryOnPage, "MISSING_ALT",
			fmt.Sprintf("%d images are missing alt text", len(missingAlt)),
			strings.Join(sample, ", "))
		a.addRecommendation(2, CategoryOnPage,
			fmt.Sprintf("Add descriptive alt text to %d images", len(missingAlt)))
	}

	return result
}

// AnalyzeLinks classifies links as internal or external. Nofollow is
// only counted on external links.
func (a *PageAnalyzer) AnalyzeLinks() LinkAnalysis {
	internal, external, nofollow := 0, 0, 0

	a.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") ||
			strings.HasPrefix(href, "mailto:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		full := a.baseURL.ResolveReference(ref)
		if full.Host == a.baseURL.Host {
			internal++
			return
		}
		external++
		for _, rel := range strings.Fields(s.AttrOr("rel", "")) {
			if rel == "nofollow" {
				nofollow++
				break
			}
		}
	})

	if internal == 0 {
		a.addIssue(SeverityMedium, CategoryOnPage, "NO_INTERNAL_LINKS", "Page has no internal links", "")
		a.addRecommendation(3, CategoryOnPage, "Add internal links to related content")
	}

	return LinkAnalysis{
		InternalCount: internal,
		ExternalCount: external,
		NofollowCount: nofollow,
		BrokenURLs:    []string{},
	}
}

// AnalyzeStructuredData detects JSON-LD, microdata, RDFa, Open Graph and
// Twitter Card markup.
func (a *PageAnalyzer) AnalyzeStructuredData() StructuredData {
	result := StructuredData{
		JSONLD:      []JSONLDEntry{},
		OpenGraph:   a.openGraphTags(),
		TwitterCard: a.twitterTags(),
	}

	a.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		result.JSONLD = append(result.JSONLD, parseJSONLD(s.Text()))
	})
	if len(result.JSONLD) == 0 {
		a.addIssue(SeverityMedium, CategoryStructuredData, "NO_SCHEMA", "No JSON-LD structured data found", "")
		a.addRecommendation(3, CategoryStructuredData, "Add Schema.org JSON-LD markup (Organization, Article, FAQ, etc.)")
	}

	result.Microdata = a.doc.Find("[itemscope]").Length() > 0
	result.RDFa = a.doc.Find("[typeof]").Length() > 0

	if len(result.OpenGraph) == 0 {
		a.addIssue(SeverityMedium, CategoryStructuredData, "NO_OG", "No Open Graph tags found", "")
		a.addRecommendation(3, CategoryStructuredData, "Add Open Graph tags for better social sharing")
	} else if _, ok := result.OpenGraph["image"]; !ok {
		a.addIssue(SeverityLow, CategoryStructuredData, "OG_NO_IMAGE", "Open Graph image tag is missing", "")
	}

	if len(result.TwitterCard) == 0 {
		a.addIssue(SeverityLow, CategoryStructuredData, "NO_TWITTER_CARD", "No Twitter Card tags found", "")
	}

	return result
}

func parseJSONLD(raw string) JSONLDEntry {
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return JSONLDEntry{Type: "Invalid JSON", Valid: false}
	}

	entry := JSONLDEntry{Type: "Unknown", Valid: true}
	obj, ok := data.(map[string]any)
	if !ok {
		return entry
	}
	switch t := obj["@type"].(type) {
	case string:
		entry.Type = t
	case []any:
		parts := []string{}
		for _, v := range t {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			entry.Type = strings.Join(parts, ", ")
		}
	}
	return entry
}

// openGraphTags collects og: meta properties, prefix stripped, content
// truncated to 200 characters. Duplicate properties keep the last value.
func (a *PageAnalyzer) openGraphTags() map[string]string {
	tags := map[string]string{}
	a.doc.Find(`meta[property^="og:"]`).Each(func(_ int, s *goquery.Selection) {
		prop := strings.TrimPrefix(s.AttrOr("property", ""), "og:")
		tags[prop] = truncateRunes(s.AttrOr("content", ""), 200)
	})
	return tags
}

func (a *PageAnalyzer) twitterTags() map[string]string {
	tags := map[string]string{}
	a.doc.Find(`meta[name^="twitter:"]`).Each(func(_ int, s *goquery.Selection) {
		prop := strings.TrimPrefix(s.AttrOr("name", ""), "twitter:")
		tags[prop] = truncateRunes(s.AttrOr("content", ""), 200)
	})
	return tags
}

var (
	ogRequired         = []string{"title", "type", "image", "url"}
	ogRecommended      = []string{"description", "site_name"}
	twitterRequired    = []string{"card", "title"}
	twitterRecommended = []string{"description", "image"}
)

// AnalyzeSocialMetadata evaluates sharing readiness: Open Graph and
// Twitter Card completeness, social images and per-platform preview
// compatibility.
func (a *PageAnalyzer) AnalyzeSocialMetadata() SocialMetadata {
	og := OpenGraphAnalysis{
		Tags:               a.openGraphTags(),
		MissingRequired:    []string{},
		MissingRecommended: []string{},
		Issues:             []Issue{},
	}
	og.Present = len(og.Tags) > 0
	og.MissingRequired = missingTags(og.Tags, "og:", ogRequired)
	og.MissingRecommended = missingTags(og.Tags, "og:", ogRecommended)
	if !og.Present {
		og.Issues = append(og.Issues, Issue{
			Severity: SeverityMedium, Category: CategorySocialSharing,
			Code: "OG_MISSING", Message: "No Open Graph tags found",
		})
	} else if len(og.MissingRequired) > 0 {
		og.Issues = append(og.Issues, Issue{
			Severity: SeverityMedium, Category: CategorySocialSharing,
			Code:    "OG_INCOMPLETE",
			Message: "Missing required Open Graph tags: " + strings.Join(og.MissingRequired, ", "),
		})
	}

	tw := TwitterCardAnalysis{
		Tags:               a.twitterTags(),
		MissingRequired:    []string{},
		MissingRecommended: []string{},
		Issues:             []Issue{},
	}
	tw.Present = len(tw.Tags) > 0
	tw.MissingRequired = missingTags(tw.Tags, "twitter:", twitterRequired)
	tw.MissingRecommended = missingTags(tw.Tags, "twitter:", twitterRecommended)
	if card := tw.Tags["card"]; card != "" {
		tw.CardType = &card
	}
	if !tw.Present {
		tw.Issues = append(tw.Issues, Issue{
			Severity: SeverityLow, Category: CategorySocialSharing,
			Code: "TWITTER_CARD_MISSING", Message: "No Twitter Card tags found",
		})
	} else if len(tw.MissingRequired) > 0 {
		tw.Issues = append(tw.Issues, Issue{
			Severity: SeverityLow, Category: CategorySocialSharing,
			Code:    "TWITTER_CARD_INCOMPLETE",
			Message: "Missing required Twitter Card tags: " + strings.Join(tw.MissingRequired, ", "),
		})
	}

	images := socialImages(og.Tags, tw.Tags)

	return SocialMetadata{
		OpenGraph:             og,
		TwitterCard:           tw,
		SocialImages:          images,
		PlatformCompatibility: platformCompatibility(og.Tags, tw.Tags),
		Score:                 SocialScore(og, tw, len(images)),
	}
}

// missingTags returns the full names of wanted tags that are absent or
// empty.
func missingTags(tags map[string]string, prefix string, wanted []string) []string {
	missing := []string{}
	for _, name := range wanted {
		if tags[name] == "" {
			missing = append(missing, prefix+name)
		}
	}
	return missing
}

func socialImages(og, tw map[string]string) []SocialImage {
	images := []SocialImage{}
	if og["image"] != "" {
		images = append(images, SocialImage{
			URL:    og["image"],
			Source: "open_graph",
			Width:  og["image:width"],
			Height: og["image:height"],
			Alt:    og["image:alt"],
		})
	}
	if tw["image"] != "" {
		images = append(images, SocialImage{
			URL:    tw["image"],
			Source: "twitter_card",
			Alt:    tw["image:alt"],
		})
	}
	return images
}

// platformCompatibility checks whether each platform can render a full
// preview. Twitter falls back to Open Graph tags where its own are
// absent, matching real crawler behavior.
func platformCompatibility(og, tw map[string]string) map[string]PlatformCheck {
	has := func(tag string) bool {
		if name, ok := strings.CutPrefix(tag, "og:"); ok {
			return og[name] != ""
		}
		if name, ok := strings.CutPrefix(tag, "twitter:"); ok {
			return tw[name] != ""
		}
		return false
	}
	check := func(requirements ...[]string) PlatformCheck {
		missing := []string{}
		for _, alternatives := range requirements {
			satisfied := false
			for _, tag := range alternatives {
				if has(tag) {
					satisfied = true
					break
				}
			}
			if !satisfied {
				missing = append(missing, alternatives[0])
			}
		}
		return PlatformCheck{Compatible: len(missing) == 0, Missing: missing}
	}

	return map[string]PlatformCheck{
		"facebook": check([]string{"og:title"}, []string{"og:type"}, []string{"og:image"}, []string{"og:url"}),
		"twitter":  check([]string{"twitter:card"}, []string{"twitter:title", "og:title"}, []string{"twitter:image", "og:image"}),
		"linkedin": check([]string{"og:title"}, []string{"og:image"}, []string{"og:url"}),
		"whatsapp": check([]string{"og:title"}, []string{"og:image"}),
		"slack":    check([]string{"og:title"}, []string{"og:description"}),
	}
}

// AnalyzeLanguage resolves the page language from markup signals plus
// the Content-Language response header.
func (a *PageAnalyzer) AnalyzeLanguage(contentLanguage string) LanguageInfo {
	hreflang := []HreflangTag{}
	a.doc.Find(`link[rel="alternate"][hreflang]`).Each(func(_ int, s *goquery.Selection) {
		hreflang = append(hreflang, HreflangTag{
			Hreflang: s.AttrOr("hreflang", ""),
			Href:     s.AttrOr("href", ""),
		})
	})

	return DetectLanguage(LanguageSignals{
		HTMLLang:        a.doc.Find("html").First().AttrOr("lang", ""),
		ContentLanguage: contentLanguage,
		OGLocale:        a.openGraphTags()["locale"],
		HreflangTags:    hreflang,
		TextContent:     a.ExtractText(),
	})
}

// ExtractText pulls readable text from the main content area, skipping
// script, style and chrome elements. Text nodes are joined with single
// spaces.
func (a *PageAnalyzer) ExtractText() string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(a.rawHTML))
	if err != nil {
		return ""
	}
	doc.Find("script,style,nav,header,footer,aside").Remove()

	for _, selector := range []string{"main", "article", "#content", ".content", "body"} {
		sel := doc.Find(selector).First()
		if sel.Length() > 0 {
			return collectText(sel)
		}
	}
	return collectText(doc.Selection)
}

func collectText(sel *goquery.Selection) string {
	parts := []string{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
