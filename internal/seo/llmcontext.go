package seo

import (
	"fmt"
	"strings"
)

// BuildLLMContext condenses a finished report into a summary block that
// downstream AI tasks feed into their prompts.
func BuildLLMContext(report *Report) LLMContext {
	critical := 0
	for _, issue := range report.Issues {
		if issue.Severity == SeverityHigh {
			critical++
		}
	}

	return LLMContext{
		Summary:              fmt.Sprintf("SEO analysis for %s", report.URL),
		OverallScore:         report.Scores.Overall,
		CriticalIssuesCount:  critical,
		TotalIssuesCount:     len(report.Issues),
		KeyMetrics:           extractKeyMetrics(report),
		TopKeywords:          topKeywords(report, 5),
		PromptForImprovement: improvementPrompt(report),
	}
}

func extractKeyMetrics(report *Report) KeyMetrics {
	return KeyMetrics{
		HasTitle:           report.Metadata.Title.Value != nil,
		HasMetaDescription: report.Metadata.Description.Value != nil,
		HasH1:              report.Headings.H1.Count == 1,
		WordCount:          report.Content.WordCount,
		HasSchema:          len(report.StructuredData.JSONLD) > 0,
		HasOGTags:          len(report.StructuredData.OpenGraph) > 0,
		IsHTTPS:            report.Technical.HTTPS,
		HasLLMsTxt:         report.AIIndexing.LLMsTxt.Present,
		HasSitemap:         report.AIIndexing.SitemapXML.Present,
	}
}

func topKeywords(report *Report, n int) []string {
	keywords := []string{}
	for _, k := range report.Content.KeywordsFrequency {
		if len(keywords) == n {
			break
		}
		keywords = append(keywords, k.Keyword)
	}
	return keywords
}

func improvementPrompt(report *Report) string {
	lines := []string{}
	for i, issue := range report.Issues {
		if i == 10 {
			break
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s", strings.ToUpper(issue.Severity), issue.Message))
	}

	return fmt.Sprintf(`Analyze this SEO report and provide specific improvement recommendations:

URL: %s
Overall Score: %d/100

Current Issues:
%s

Key Metrics:
- Word Count: %d
- Has Structured Data: %t
- AI Indexing Ready: %t
- Top Keywords: %s

Please provide:
1. Priority fixes for critical SEO issues
2. Content optimization suggestions based on keywords
3. Structured data recommendations
4. AI indexing optimization tips
`,
		report.URL,
		report.Scores.Overall,
		strings.Join(lines, "\n"),
		report.Content.WordCount,
		len(report.StructuredData.JSONLD) > 0,
		report.AIIndexing.LLMsTxt.Present,
		strings.Join(topKeywords(report, 5), ", "),
	)
}
