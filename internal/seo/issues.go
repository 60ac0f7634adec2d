package seo

import "strings"

// DetectAIIndexingIssues flags missing llms.txt, missing sitemap.xml and
// blocked AI bots. These are appended after the report is assembled, so
// they do not feed the score calculation.
func DetectAIIndexingIssues(botStatuses map[string]string, llmsStatus, sitemapStatus int) ([]Issue, []Recommendation) {
	issues := []Issue{}
	recommendations := []Recommendation{}

	if llmsStatus != 200 {
		issues = append(issues, Issue{
			Severity: SeverityMedium,
			Category: CategoryAIIndexing,
			Code:     "NO_LLMS_TXT",
			Message:  "No llms.txt file found for AI/LLM indexing optimization",
		})
		recommendations = append(recommendations, Recommendation{
			Priority: 2,
			Category: CategoryAIIndexing,
			Action:   "Create /llms.txt file to help AI models understand your site structure",
		})
	}

	if sitemapStatus != 200 {
		issues = append(issues, Issue{
			Severity: SeverityMedium,
			Category: CategoryTechnical,
			Code:     "NO_SITEMAP",
			Message:  "No sitemap.xml found",
		})
		recommendations = append(recommendations, Recommendation{
			Priority: 2,
			Category: CategoryTechnical,
			Action:   "Create sitemap.xml for better crawling and indexing",
		})
	}

	blocked := []string{}
	for _, bot := range aiBotNames {
		if strings.Contains(botStatuses[bot], "blocked") {
			blocked = append(blocked, bot)
		}
	}
	if len(blocked) > 0 {
		if len(blocked) > 5 {
			blocked = blocked[:5]
		}
		issues = append(issues, Issue{
			Severity: SeverityLow,
			Category: CategoryAIIndexing,
			Code:     "AI_BOTS_BLOCKED",
			Message:  "Some AI bots are blocked: " + strings.Join(blocked, ", "),
		})
	}

	return issues, recommendations
}
