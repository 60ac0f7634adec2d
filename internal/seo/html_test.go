package seo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const goodPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<title>A Perfectly Sized Title For Search Results Pages</title>
<meta name="description" content="This example page describes the product in enough detail to satisfy the recommended description length for search engines.">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="robots" content="index, follow">
<meta name="keywords" content="example, testing">
<link rel="canonical" href="https://example.com/page">
<meta property="og:title" content="Example Product">
<meta property="og:type" content="website">
<meta property="og:image" content="https://example.com/cover.png">
<meta property="og:url" content="https://example.com/page">
<meta property="og:description" content="Product description">
<meta property="og:site_name" content="Example">
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:title" content="Example Product">
<meta name="twitter:image" content="https://example.com/card.png">
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Organization","name":"Example"}</script>
</head>
<body>
<h1>Example Product</h1>
<h2>Features</h2>
<p>Short body copy.</p>
<img src="/cover.png" alt="Product cover">
<a href="/docs">Documentation</a>
<a href="https://partner.example.org" rel="nofollow">Partner</a>
</body>
</html>`

func newAnalyzerForHTML(t *testing.T, rawHTML string) *PageAnalyzer {
	t.Helper()
	a, err := NewPageAnalyzer(rawHTML, "https://example.com/page")
	require.NoError(t, err)
	return a
}

func issueCodes(issues []Issue) []string {
	codes := make([]string, 0, len(issues))
	for _, issue := range issues {
		codes = append(codes, issue.Code)
	}
	return codes
}

func TestPageAnalyzer_GoodPageHasNoIssues(t *testing.T) {
	t.Parallel()

	a := newAnalyzerForHTML(t, goodPageHTML)
	a.AnalyzeMetaTags()
	a.AnalyzeHeadings()
	a.AnalyzeImages()
	a.AnalyzeLinks()
	a.AnalyzeStructuredData()
	a.AnalyzeSocialMetadata()

	require.Empty(t, a.Issues(), "unexpected issues: %v", issueCodes(a.Issues()))
	require.Empty(t, a.Recommendations())
}

func TestPageAnalyzer_AnalyzeMetaTags_GoodPage(t *testing.T) {
	t.Parallel()

	meta := newAnalyzerForHTML(t, goodPageHTML).AnalyzeMetaTags()

	require.NotNil(t, meta.Title.Value)
	require.Equal(t, "A Perfectly Sized Title For Search Results Pages", *meta.Title.Value)
	require.Equal(t, 48, meta.Title.Length)
	require.Empty(t, meta.Title.Issues)

	require.NotNil(t, meta.Description.Value)
	require.Empty(t, meta.Description.Issues)

	require.Equal(t, "https://example.com/page", *meta.Canonical)
	require.Equal(t, "index, follow", *meta.RobotsMeta)
	require.Equal(t, "width=device-width, initial-scale=1", *meta.Viewport)
	require.Equal(t, "en", *meta.Language)
	require.Equal(t, "example, testing", *meta.KeywordsMeta)
}

func TestPageAnalyzer_AnalyzeMetaTags_BarePage(t *testing.T) {
	t.Parallel()

	a := newAnalyzerForHTML(t, "<html><head></head><body><p>hi</p></body></html>")
	meta := a.AnalyzeMetaTags()

	require.Nil(t, meta.Title.Value)
	require.Equal(t, []string{"missing"}, meta.Title.Issues)
	require.Nil(t, meta.Description.Value)
	require.Nil(t, meta.Canonical)
	require.Nil(t, meta.Viewport)
	require.Nil(t, meta.Language)

	codes := issueCodes(a.Issues())
	require.Contains(t, codes, "TITLE_MISSING")
	require.Contains(t, codes, "META_DESC_MISSING")
	require.Contains(t, codes, "CANONICAL_MISSING")
	require.Contains(t, codes, "VIEWPORT_MISSING")
	require.Contains(t, codes, "LANG_MISSING")
}

func TestPageAnalyzer_TitleLengthIssues(t *testing.T) {
	t.Parallel()

	t.Run("too short", func(t *testing.T) {
		a := newAnalyzerForHTML(t, "<html><head><title>Short</title></head></html>")
		meta := a.AnalyzeMetaTags()

		require.Equal(t, []string{"too_short"}, meta.Title.Issues)
		require.Equal(t, 5, meta.Title.Length)

		var found *Issue
		issues := a.Issues()
		for i := range issues {
			if issues[i].Code == "TITLE_TOO_SHORT" {
				found = &issues[i]
			}
		}
		require.NotNil(t, found)
		require.Equal(t, "Title is only 5 characters (recommended: 50-60)", found.Message)
		require.Equal(t, "<title>Short</title>", found.Element)
	})

	t.Run("too long", func(t *testing.T) {
		long := strings.Repeat("word ", 15) // 75 characters
		a := newAnalyzerForHTML(t, "<html><head><title>"+long+"</title></head></html>")
		meta := a.AnalyzeMetaTags()

		require.Equal(t, []string{"too_long"}, meta.Title.Issues)
		require.Contains(t, issueCodes(a.Issues()), "TITLE_TOO_LONG")
	})

	t.Run("empty tag counts as missing", func(t *testing.T) {
		a := newAnalyzerForHTML(t, "<html><head><title></title></head></html>")
		meta := a.AnalyzeMetaTags()

		require.NotNil(t, meta.Title.Value)
		require.Empty(t, *meta.Title.Value)
		require.Equal(t, []string{"missing"}, meta.Title.Issues)
	})
}

func TestPageAnalyzer_AnalyzeHeadings(t *testing.T) {
	t.Parallel()

	t.Run("good hierarchy", func(t *testing.T) {
		h := newAnalyzerForHTML(t, goodPageHTML).AnalyzeHeadings()
		require.Equal(t, 1, h.H1.Count)
		require.Equal(t, []string{"Example Product"}, h.H1.Values)
		require.Equal(t, 1, h.H2.Count)
		require.True(t, h.HierarchyValid)
	})

	t.Run("multiple h1 and skipped level", func(t *testing.T) {
		a := newAnalyzerForHTML(t, "<html><body><h1>One</h1><h1>Two</h1><h3>Deep</h3></body></html>")
		h := a.AnalyzeHeadings()

		require.Equal(t, 2, h.H1.Count)
		require.Equal(t, []string{"multiple"}, h.H1.Issues)
		require.False(t, h.HierarchyValid)

		codes := issueCodes(a.Issues())
		require.Contains(t, codes, "MULTIPLE_H1")
		require.Contains(t, codes, "HEADING_HIERARCHY")
	})

	t.Run("missing h1", func(t *testing.T) {
		a := newAnalyzerForHTML(t, "<html><body><h2>Sub only</h2></body></html>")
		h := a.AnalyzeHeadings()

		require.Equal(t, []string{"missing"}, h.H1.Issues)
		require.Contains(t, issueCodes(a.Issues()), "H1_MISSING")
	})

	t.Run("values capped at ten", func(t *testing.T) {
		var sb strings.Builder
		sb.WriteString("<html><body>")
		for i := 0; i < 12; i++ {
			sb.WriteString("<h2>Heading</h2>")
		}
		sb.WriteString("</body></html>")

		h := newAnalyzerForHTML(t, sb.String()).AnalyzeHeadings()
		require.Equal(t, 12, h.H2.Count)
		require.Len(t, h.H2.Values, 10)
	})
}

func TestPageAnalyzer_AnalyzeImages(t *testing.T) {
	t.Parallel()

	a := newAnalyzerForHTML(t, `<html><body>
<img src="/x.png">
<img data-src="/lazy.png" loading="lazy" alt="  ">
<img src="/ok.png" alt="ok">
</body></html>`)
	images := a.AnalyzeImages()

	require.Equal(t, 3, images.Total)
	require.Equal(t, 2, images.MissingAlt)
	require.Equal(t, []string{"/x.png", "/lazy.png"}, images.MissingAltURLs)
	require.Equal(t, 1, images.LazyLoadingCount)
	require.Equal(t, []string{"2 images missing alt text"}, images.Issues)

	require.Len(t, a.Issues(), 1)
	issue := a.Issues()[0]
	require.Equal(t, "MISSING_ALT", issue.Code)
	require.Equal(t, "2 images are missing alt text", issue.Message)
	require.Equal(t, "/x.png, /lazy.png", issue.Element)
}

func TestPageAnalyzer_AnalyzeImages_NoImages(t *testing.T) {
	t.Parallel()

	a := newAnalyzerForHTML(t, "<html><body><p>text only</p></body></html>")
	images := a.AnalyzeImages()

	require.Zero(t, images.Total)
	require.Empty(t, images.MissingAltURLs)
	require.Empty(t, a.Issues())
}

func TestPageAnalyzer_AnalyzeLinks(t *testing.T) {
	t.Parallel()

	a := newAnalyzerForHTML(t, `<html><body>
<a href="#section">anchor</a>
<a href="javascript:void(0)">js</a>
<a href="mailto:team@example.com">mail</a>
<a href="/about">about</a>
<a href="https://example.com/other">other</a>
<a href="https://ext.org/a" rel="nofollow noopener">ext a</a>
<a href="https://ext.org/b">ext b</a>
</body></html>`)
	links := a.AnalyzeLinks()

	require.Equal(t, 2, links.InternalCount)
	require.Equal(t, 2, links.ExternalCount)
	require.Equal(t, 1, links.NofollowCount)
	require.Zero(t, links.BrokenCount)
	require.Empty(t, a.Issues())
}

func TestPageAnalyzer_AnalyzeLinks_NoInternal(t *testing.T) {
	t.Parallel()

	a := newAnalyzerForHTML(t, `<html><body><a href="https://ext.org">out</a></body></html>`)
	links := a.AnalyzeLinks()

	require.Zero(t, links.InternalCount)
	require.Contains(t, issueCodes(a.Issues()), "NO_INTERNAL_LINKS")
}

func TestPageAnalyzer_AnalyzeStructuredData(t *testing.T) {
	t.Parallel()

	a := newAnalyzerForHTML(t, `<html><head>
<script type="application/ld+json">{"@type":"Organization"}</script>
<script type="application/ld+json">{"@type":["Organization","Brand"]}</script>
<script type="application/ld+json">[{"@type":"Thing"}]</script>
<script type="application/ld+json">not json</script>
</head><body>
<div itemscope itemtype="https://schema.org/Person"></div>
<div typeof="schema:Article"></div>
</body></html>`)
	sd := a.AnalyzeStructuredData()

	require.Equal(t, []JSONLDEntry{
		{Type: "Organization", Valid: true},
		{Type: "Organization, Brand", Valid: true},
		{Type: "Unknown", Valid: true},
		{Type: "Invalid JSON", Valid: false},
	}, sd.JSONLD)
	require.True(t, sd.Microdata)
	require.True(t, sd.RDFa)

	// No Open Graph or Twitter tags on this page.
	codes := issueCodes(a.Issues())
	require.Contains(t, codes, "NO_OG")
	require.Contains(t, codes, "NO_TWITTER_CARD")
	require.NotContains(t, codes, "NO_SCHEMA")
}

func TestPageAnalyzer_AnalyzeStructuredData_MissingEverything(t *testing.T) {
	t.Parallel()

	a := newAnalyzerForHTML(t, "<html><body><p>plain</p></body></html>")
	sd := a.AnalyzeStructuredData()

	require.Empty(t, sd.JSONLD)
	require.False(t, sd.Microdata)
	require.False(t, sd.RDFa)
	require.Contains(t, issueCodes(a.Issues()), "NO_SCHEMA")
}

func TestPageAnalyzer_AnalyzeStructuredData_OGWithoutImage(t *testing.T) {
	t.Parallel()

	a := newAnalyzerForHTML(t, `<html><head>
<meta property="og:title" content="T">
<script type="application/ld+json">{"@type":"Thing"}</script>
<meta name="twitter:card" content="summary">
</head></html>`)
	sd := a.AnalyzeStructuredData()

	require.Equal(t, "T", sd.OpenGraph["title"])
	require.Contains(t, issueCodes(a.Issues()), "OG_NO_IMAGE")
}

func TestPageAnalyzer_OpenGraphDuplicatesKeepLast(t *testing.T) {
	t.Parallel()

	a := newAnalyzerForHTML(t, `<html><head>
<meta property="og:title" content="First">
<meta property="og:title" content="Second">
</head></html>`)
	require.Equal(t, "Second", a.openGraphTags()["title"])
}

func TestPageAnalyzer_AnalyzeSocialMetadata_FullPage(t *testing.T) {
	t.Parallel()

	social := newAnalyzerForHTML(t, goodPageHTML).AnalyzeSocialMetadata()

	require.True(t, social.OpenGraph.Present)
	require.Empty(t, social.OpenGraph.MissingRequired)
	require.Empty(t, social.OpenGraph.MissingRecommended)
	require.Empty(t, social.OpenGraph.Issues)

	require.True(t, social.TwitterCard.Present)
	require.Equal(t, "summary_large_image", *social.TwitterCard.CardType)
	require.Empty(t, social.TwitterCard.MissingRequired)
	require.Equal(t, []string{"twitter:description"}, social.TwitterCard.MissingRecommended)

	require.Len(t, social.SocialImages, 2)
	require.Equal(t, "open_graph", social.SocialImages[0].Source)
	require.Equal(t, "twitter_card", social.SocialImages[1].Source)

	for platform, check := range social.PlatformCompatibility {
		require.True(t, check.Compatible, "platform %s missing %v", platform, check.Missing)
	}
	require.Equal(t, 100, social.Score)
}

func TestPageAnalyzer_AnalyzeSocialMetadata_PartialTags(t *testing.T) {
	t.Parallel()

	a := newAnalyzerForHTML(t, `<html><head>
<meta property="og:title" content="T">
<meta property="og:type" content="website">
<meta property="og:url" content="https://example.com/">
<meta property="og:description" content="D">
</head></html>`)
	social := a.AnalyzeSocialMetadata()

	require.True(t, social.OpenGraph.Present)
	require.Equal(t, []string{"og:image"}, social.OpenGraph.MissingRequired)
	require.Equal(t, []string{"og:site_name"}, social.OpenGraph.MissingRecommended)
	require.Len(t, social.OpenGraph.Issues, 1)
	require.Equal(t, "OG_INCOMPLETE", social.OpenGraph.Issues[0].Code)

	require.False(t, social.TwitterCard.Present)
	require.Nil(t, social.TwitterCard.CardType)
	require.Equal(t, "TWITTER_CARD_MISSING", social.TwitterCard.Issues[0].Code)

	require.Empty(t, social.SocialImages)

	// 100 - 5 (og:image) - 10 (no twitter card) - 10 (no social image).
	require.Equal(t, 75, social.Score)

	require.False(t, social.PlatformCompatibility["facebook"].Compatible)
	require.Equal(t, []string{"og:image"}, social.PlatformCompatibility["facebook"].Missing)
	require.Equal(t, []string{"twitter:card", "twitter:image"}, social.PlatformCompatibility["twitter"].Missing)
	require.Equal(t, []string{"og:image"}, social.PlatformCompatibility["linkedin"].Missing)
	require.Equal(t, []string{"og:image"}, social.PlatformCompatibility["whatsapp"].Missing)
	require.True(t, social.PlatformCompatibility["slack"].Compatible)
}

func TestPageAnalyzer_AnalyzeSocialMetadata_Empty(t *testing.T) {
	t.Parallel()

	social := newAnalyzerForHTML(t, "<html><body></body></html>").AnalyzeSocialMetadata()

	require.False(t, social.OpenGraph.Present)
	require.Equal(t, "OG_MISSING", social.OpenGraph.Issues[0].Code)
	require.False(t, social.TwitterCard.Present)

	// 100 - 15 (no OG) - 10 (no twitter card) - 10 (no social image).
	require.Equal(t, 65, social.Score)
}

func TestPageAnalyzer_AnalyzeLanguage(t *testing.T) {
	t.Parallel()

	a := newAnalyzerForHTML(t, `<html lang="en-GB"><head>
<link rel="alternate" hreflang="en" href="https://example.com/en">
<link rel="alternate" hreflang="de" href="https://example.com/de">
<link rel="alternate" hreflang="x-default" href="https://example.com/">
</head><body></body></html>`)
	info := a.AnalyzeLanguage("")

	require.Equal(t, "en", *info.Code)
	require.Equal(t, "GB", *info.Region)
	require.Equal(t, "html_lang", *info.Source)
	require.Len(t, info.Alternatives, 3)
}

func TestPageAnalyzer_ExtractText(t *testing.T) {
	t.Parallel()

	t.Run("prefers main content area", func(t *testing.T) {
		a := newAnalyzerForHTML(t, `<html><head><script>var hidden = 1;</script><style>.x{}</style></head>
<body><nav>Menu Items</nav><main><p>Visible content</p><p>here.</p></main><footer>Footer text</footer></body></html>`)
		require.Equal(t, "Visible content here.", a.ExtractText())
	})

	t.Run("falls back to body", func(t *testing.T) {
		a := newAnalyzerForHTML(t, "<html><body><p>Plain body text.</p></body></html>")
		require.Equal(t, "Plain body text.", a.ExtractText())
	})

	t.Run("strips chrome elements", func(t *testing.T) {
		a := newAnalyzerForHTML(t, `<html><body><header>Site Header</header><p>Kept.</p><aside>Sidebar</aside></body></html>`)
		require.Equal(t, "Kept.", a.ExtractText())
	})
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	require.Equal(t, "abc", truncateRunes("abc", 5))
	require.Equal(t, "abc", truncateRunes("abcdef", 3))
	require.Equal(t, "héll", truncateRunes("héllo", 4))
}
