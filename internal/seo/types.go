package seo

// Issue severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Issue categories. Categories with a matching score bucket deduct from
// that bucket; others (like ai_indexing) surface in the report only.
const (
	CategoryTechnical      = "technical"
	CategoryOnPage         = "on_page"
	CategoryContent        = "content"
	CategoryStructuredData = "structured_data"
	CategoryAIReadiness    = "ai_readiness"
	CategorySocialSharing  = "social_sharing"
	CategoryAIIndexing     = "ai_indexing"
)

// Issue is a single problem found during analysis.
type Issue struct {
	Severity string `json:"severity"`
	Category string `json:"category"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Element  string `json:"element,omitempty"`
}

// Recommendation is an actionable improvement. Priority 1 is highest.
type Recommendation struct {
	Priority int    `json:"priority"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// Scores holds the category scores plus their rounded average.
type Scores struct {
	Overall        int `json:"overall"`
	Technical      int `json:"technical"`
	OnPage         int `json:"on_page"`
	Content        int `json:"content"`
	StructuredData int `json:"structured_data"`
	AIReadiness    int `json:"ai_readiness"`
	SocialSharing  int `json:"social_sharing"`
}

// MetaTag is the analysis of a single meta tag value.
type MetaTag struct {
	Value           *string  `json:"value"`
	Length          int      `json:"length"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// Metadata covers the head-of-document SEO tags.
type Metadata struct {
	Title        MetaTag `json:"title"`
	Description  MetaTag `json:"description"`
	Canonical    *string `json:"canonical"`
	RobotsMeta   *string `json:"robots_meta"`
	Viewport     *string `json:"viewport"`
	Language     *string `json:"language"`
	KeywordsMeta *string `json:"keywords_meta"`
}

// HeadingLevel summarizes one heading level (h1..h6).
type HeadingLevel struct {
	Count  int      `json:"count"`
	Values []string `json:"values"`
	Issues []string `json:"issues"`
}

// Headings is the heading structure analysis.
type Headings struct {
	H1             HeadingLevel `json:"h1"`
	H2             HeadingLevel `json:"h2"`
	H3             HeadingLevel `json:"h3"`
	H4             HeadingLevel `json:"h4"`
	H5             HeadingLevel `json:"h5"`
	H6             HeadingLevel `json:"h6"`
	HierarchyValid bool         `json:"hierarchy_valid"`
}

// ImageAnalysis reports alt-text coverage and lazy loading.
type ImageAnalysis struct {
	Total            int      `json:"total"`
	MissingAlt       int      `json:"missing_alt"`
	MissingAltURLs   []string `json:"missing_alt_urls"`
	LazyLoadingCount int      `json:"lazy_loading_count"`
	Issues           []string `json:"issues"`
}

// LinkAnalysis counts internal, external and nofollow links.
type LinkAnalysis struct {
	InternalCount int      `json:"internal_count"`
	ExternalCount int      `json:"external_count"`
	NofollowCount int      `json:"nofollow_count"`
	BrokenCount   int      `json:"broken_count"`
	BrokenURLs    []string `json:"broken_urls"`
}

// Keyword is a frequency-extracted keyword with its density.
type Keyword struct {
	Keyword        string  `json:"keyword"`
	Count          int     `json:"count"`
	DensityPercent float64 `json:"density_percent"`
}

// TFIDFKeyword is a keyword ranked by TF-IDF weight across sentences.
type TFIDFKeyword struct {
	Keyword    string  `json:"keyword"`
	TFIDFScore float64 `json:"tfidf_score"`
	Count      int     `json:"count"`
}

// Phrase is a repeated n-gram with its occurrence count.
type Phrase struct {
	Phrase string `json:"phrase"`
	Count  int    `json:"count"`
}

// Readability groups the classic readability formulas, each rounded to
// one decimal.
type Readability struct {
	FleschReadingEase         float64 `json:"flesch_reading_ease"`
	FleschKincaidGrade        float64 `json:"flesch_kincaid_grade"`
	GunningFog                float64 `json:"gunning_fog"`
	SMOGIndex                 float64 `json:"smog_index"`
	AutomatedReadabilityIndex float64 `json:"automated_readability_index"`
	ReadingTimeMinutes        float64 `json:"reading_time_minutes"`
}

// ContentReport is the text/keyword analysis section.
type ContentReport struct {
	WordCount         int            `json:"word_count"`
	Readability       Readability    `json:"readability"`
	KeywordsTFIDF     []TFIDFKeyword `json:"keywords_tfidf"`
	KeywordsFrequency []Keyword      `json:"keywords_frequency"`
	TopBigrams        []Phrase       `json:"top_bigrams"`
	TopTrigrams       []Phrase       `json:"top_trigrams"`
}

// JSONLDEntry records one JSON-LD script block and whether it parsed.
type JSONLDEntry struct {
	Type  string `json:"type"`
	Valid bool   `json:"valid"`
}

// StructuredData covers Schema.org and social meta markup.
type StructuredData struct {
	JSONLD      []JSONLDEntry     `json:"json_ld"`
	Microdata   bool              `json:"microdata"`
	RDFa        bool              `json:"rdfa"`
	OpenGraph   map[string]string `json:"open_graph"`
	TwitterCard map[string]string `json:"twitter_card"`
}

// OpenGraphAnalysis is the Open Graph portion of the social readiness check.
type OpenGraphAnalysis struct {
	Present            bool              `json:"present"`
	Tags               map[string]string `json:"tags"`
	MissingRequired    []string          `json:"missing_required"`
	MissingRecommended []string          `json:"missing_recommended"`
	Issues             []Issue           `json:"issues"`
}

// TwitterCardAnalysis is the Twitter/X card portion of the social check.
type TwitterCardAnalysis struct {
	Present            bool              `json:"present"`
	CardType           *string           `json:"card_type"`
	Tags               map[string]string `json:"tags"`
	MissingRequired    []string          `json:"missing_required"`
	MissingRecommended []string          `json:"missing_recommended"`
	Issues             []Issue           `json:"issues"`
}

// SocialImage is an image a social platform would use for previews.
type SocialImage struct {
	URL    string `json:"url"`
	Source string `json:"source"`
	Width  string `json:"width,omitempty"`
	Height string `json:"height,omitempty"`
	Alt    string `json:"alt,omitempty"`
}

// PlatformCheck reports whether one platform can render a rich preview.
type PlatformCheck struct {
	Compatible bool     `json:"compatible"`
	Missing    []string `json:"missing"`
}

// SocialMetadata is the social sharing readiness section.
type SocialMetadata struct {
	OpenGraph             OpenGraphAnalysis        `json:"open_graph"`
	TwitterCard           TwitterCardAnalysis      `json:"twitter_card"`
	SocialImages          []SocialImage            `json:"social_images"`
	PlatformCompatibility map[string]PlatformCheck `json:"platform_compatibility"`
	Score                 int                      `json:"score"`
}

// Technical holds transport-level observations from the main fetch.
type Technical struct {
	HTTPS                 bool   `json:"https"`
	ResponseTimeMs        int64  `json:"response_time_ms"`
	ContentType           string `json:"content_type"`
	ContentEncoding       string `json:"content_encoding"`
	Server                string `json:"server"`
	XFrameOptions         string `json:"x_frame_options"`
	ContentSecurityPolicy bool   `json:"content_security_policy"`
}

// RobotsInfo summarizes robots.txt from the AI crawler point of view.
type RobotsInfo struct {
	Present          bool              `json:"present"`
	PageCrawlable    bool              `json:"page_crawlable"`
	AIBotsStatus     map[string]string `json:"ai_bots_status"`
	SitemapsDeclared []string          `json:"sitemaps_declared"`
}

// LLMsInfo reports llms.txt adoption.
type LLMsInfo struct {
	Present        bool    `json:"present"`
	ContentPreview *string `json:"content_preview"`
}

// SitemapInfo reports sitemap.xml presence.
type SitemapInfo struct {
	Present bool `json:"present"`
}

// AIIndexing is the AI discoverability section of the report.
type AIIndexing struct {
	RobotsTxt  RobotsInfo  `json:"robots_txt"`
	LLMsTxt    LLMsInfo    `json:"llms_txt"`
	SitemapXML SitemapInfo `json:"sitemap_xml"`
}

// HreflangTag is one <link rel="alternate" hreflang=...> entry.
type HreflangTag struct {
	Hreflang string `json:"hreflang"`
	Href     string `json:"href"`
}

// LanguageAlternative is one language offered via hreflang.
type LanguageAlternative struct {
	Code      string  `json:"code"`
	Region    *string `json:"region,omitempty"`
	Href      string  `json:"href"`
	IsDefault bool    `json:"is_default"`
}

// LanguageIssue is a language-specific SEO problem.
type LanguageIssue struct {
	Code           string `json:"code"`
	Severity       string `json:"severity"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

// LanguageInfo is the outcome of multi-signal language detection.
type LanguageInfo struct {
	Code         *string               `json:"code"`
	Region       *string               `json:"region"`
	Name         *string               `json:"name"`
	Confidence   string                `json:"confidence"`
	Source       *string               `json:"source"`
	Alternatives []LanguageAlternative `json:"alternatives"`
	Issues       []LanguageIssue       `json:"issues"`
}

// KeyMetrics condenses the report into booleans an LLM can reason over.
type KeyMetrics struct {
	HasTitle           bool `json:"has_title"`
	HasMetaDescription bool `json:"has_meta_description"`
	HasH1              bool `json:"has_h1"`
	WordCount          int  `json:"word_count"`
	HasSchema          bool `json:"has_schema"`
	HasOGTags          bool `json:"has_og_tags"`
	IsHTTPS            bool `json:"is_https"`
	HasLLMsTxt         bool `json:"has_llms_txt"`
	HasSitemap         bool `json:"has_sitemap"`
}

// LLMContext is the condensed summary handed to LLM-backed enrichment.
type LLMContext struct {
	Summary              string     `json:"summary"`
	OverallScore         int        `json:"overall_score"`
	CriticalIssuesCount  int        `json:"critical_issues_count"`
	TotalIssuesCount     int        `json:"total_issues_count"`
	KeyMetrics           KeyMetrics `json:"key_metrics"`
	TopKeywords          []string   `json:"top_keywords"`
	PromptForImprovement string     `json:"prompt_for_improvement"`
}

// Rendering describes whether the page needed browser rendering to
// expose its content.
type Rendering struct {
	JSShellDetected bool   `json:"js_shell_detected"`
	Rendered        bool   `json:"rendered"`
	Note            string `json:"note,omitempty"`
}

// Report is the complete overview analysis for one URL.
type Report struct {
	URL             string           `json:"url"`
	Timestamp       string           `json:"timestamp"`
	CrawlTimeMs     int64            `json:"crawl_time_ms"`
	Scores          Scores           `json:"scores"`
	Metadata        Metadata         `json:"metadata"`
	Language        LanguageInfo     `json:"language"`
	Headings        Headings         `json:"headings"`
	Images          ImageAnalysis    `json:"images"`
	Links           LinkAnalysis     `json:"links"`
	Content         ContentReport    `json:"content"`
	StructuredData  StructuredData   `json:"structured_data"`
	Social          SocialMetadata   `json:"social"`
	Technical       Technical        `json:"technical"`
	AIIndexing      AIIndexing       `json:"ai_indexing"`
	Issues          []Issue          `json:"issues"`
	Recommendations []Recommendation `json:"recommendations"`
	LLMContext      LLMContext       `json:"llm_context"`
	Rendering       *Rendering       `json:"rendering,omitempty"`
}
