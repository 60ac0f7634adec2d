package seo

import (
	"math"
	"strings"
)

// Category-specific penalties on top of the per-issue deductions.
const (
	lowContentPenalty    = 20
	mediumContentPenalty = 10

	noLLMsPenalty     = 20
	blockedBotPenalty = 5

	noOGPenalty              = 15
	missingOGTagPenalty      = 5
	noTwitterCardPenalty     = 10
	missingTwitterTagPenalty = 3
	noSocialImagePenalty     = 10
)

// ScoreInputs carries everything the score calculation needs.
type ScoreInputs struct {
	Issues      []Issue
	WordCount   int
	LLMsStatus  int
	BotStatuses map[string]string
	Social      SocialMetadata
}

// CalculateScores computes category scores out of 100 and their overall
// average. Each category starts at 100, loses points per issue in that
// category, then takes its own adjustments. Scores never go below zero.
func CalculateScores(in ScoreInputs) Scores {
	buckets := map[string]int{
		CategoryTechnical:      100,
		CategoryOnPage:         100,
		CategoryContent:        100,
		CategoryStructuredData: 100,
		CategoryAIReadiness:    100,
		CategorySocialSharing:  100,
	}

	for _, issue := range in.Issues {
		if _, ok := buckets[issue.Category]; !ok {
			continue
		}
		switch issue.Severity {
		case SeverityHigh:
			buckets[issue.Category] -= DeductionHigh
		case SeverityMedium:
			buckets[issue.Category] -= DeductionMedium
		default:
			buckets[issue.Category] -= DeductionLow
		}
	}

	switch {
	case in.WordCount < MinWordCountOK:
		buckets[CategoryContent] -= lowContentPenalty
	case in.WordCount < MinWordCountGood:
		buckets[CategoryContent] -= mediumContentPenalty
	}

	if in.LLMsStatus != 200 {
		buckets[CategoryAIReadiness] -= noLLMsPenalty
	}
	buckets[CategoryAIReadiness] -= CountBlockedBots(in.BotStatuses) * blockedBotPenalty

	buckets[CategorySocialSharing] = applySocialDeductions(
		buckets[CategorySocialSharing],
		in.Social.OpenGraph, in.Social.TwitterCard, len(in.Social.SocialImages),
	)

	sum := 0
	for category, score := range buckets {
		if score < 0 {
			score = 0
			buckets[category] = 0
		}
		sum += score
	}

	return Scores{
		Overall:        int(math.RoundToEven(float64(sum) / float64(len(buckets)))),
		Technical:      buckets[CategoryTechnical],
		OnPage:         buckets[CategoryOnPage],
		Content:        buckets[CategoryContent],
		StructuredData: buckets[CategoryStructuredData],
		AIReadiness:    buckets[CategoryAIReadiness],
		SocialSharing:  buckets[CategorySocialSharing],
	}
}

// CountBlockedBots counts bots whose status contains "blocked", which
// covers full, partial and wildcard blocks.
func CountBlockedBots(statuses map[string]string) int {
	blocked := 0
	for _, status := range statuses {
		if strings.Contains(status, "blocked") {
			blocked++
		}
	}
	return blocked
}

// SocialScore scores sharing readiness out of 100 from tag completeness
// and image presence.
func SocialScore(og OpenGraphAnalysis, tw TwitterCardAnalysis, imageCount int) int {
	return applySocialDeductions(100, og, tw, imageCount)
}

func applySocialDeductions(base int, og OpenGraphAnalysis, tw TwitterCardAnalysis, imageCount int) int {
	score := base
	if !og.Present {
		score -= noOGPenalty
	} else {
		score -= len(og.MissingRequired) * missingOGTagPenalty
	}
	if !tw.Present {
		score -= noTwitterCardPenalty
	} else {
		score -= len(tw.MissingRequired) * missingTwitterTagPenalty
	}
	if imageCount == 0 {
		score -= noSocialImagePenalty
	}
	if score < 0 {
		score = 0
	}
	return score
}
