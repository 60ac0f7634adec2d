package seo

import (
	"strings"

	"github.com/temoto/robotstxt"
)

// AI bot statuses derived from robots.txt rules.
const (
	BotBlocked           = "blocked"
	BotAllowed           = "allowed"
	BotPartiallyBlocked  = "partially_blocked"
	BotBlockedByWildcard = "blocked_by_wildcard"
	BotAllowedByDefault  = "allowed_by_default"
	BotNotSpecified      = "not_specified"
)

type agentRules struct {
	allow    []string
	disallow []string
}

// RobotsParser parses robots.txt directives and reports per-bot access.
// Agent names are matched case-sensitively, as served.
type RobotsParser struct {
	content string
	rules   map[string]*agentRules
}

// NewRobotsParser parses the given robots.txt content. Empty content
// yields an empty wildcard rule set, so every bot reads as allowed by
// default.
func NewRobotsParser(content string) *RobotsParser {
	p := &RobotsParser{
		content: content,
		rules:   map[string]*agentRules{"*": {}},
	}
	p.parse()
	return p
}

func (p *RobotsParser) parse() {
	current := "*"
	for _, line := range strings.Split(p.content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			current = value
			if _, ok := p.rules[current]; !ok {
				p.rules[current] = &agentRules{}
			}
		case "allow":
			p.rules[current].allow = append(p.rules[current].allow, value)
		case "disallow":
			p.rules[current].disallow = append(p.rules[current].disallow, value)
		}
	}
}

// AIBotStatuses reports the access status of every known AI crawler.
func (p *RobotsParser) AIBotStatuses() map[string]string {
	statuses := make(map[string]string, len(aiBotNames))
	for _, bot := range aiBotNames {
		statuses[bot] = p.botStatus(bot)
	}
	return statuses
}

func (p *RobotsParser) botStatus(bot string) string {
	if rules, ok := p.rules[bot]; ok {
		switch {
		case containsString(rules.disallow, "/"):
			return BotBlocked
		case len(rules.allow) > 0 || len(rules.disallow) == 0:
			return BotAllowed
		default:
			return BotPartiallyBlocked
		}
	}
	wildcard, ok := p.rules["*"]
	if !ok {
		return BotNotSpecified
	}
	if containsString(wildcard.disallow, "/") {
		return BotBlockedByWildcard
	}
	return BotAllowedByDefault
}

// SitemapURLs extracts sitemap declarations. The URL keeps its own
// colons; only the directive prefix is split off.
func (p *RobotsParser) SitemapURLs() []string {
	sitemaps := []string{}
	for _, line := range strings.Split(p.content, "\n") {
		if !strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			continue
		}
		if _, value, found := strings.Cut(line, ":"); found {
			sitemaps = append(sitemaps, strings.TrimSpace(value))
		}
	}
	return sitemaps
}

// PageCrawlable reports whether a general-purpose search crawler may
// fetch path under these rules. Rule precedence, wildcards and anchors
// are evaluated by the robotstxt library; absent or unparseable content
// counts as crawlable.
func (p *RobotsParser) PageCrawlable(path string) bool {
	if strings.TrimSpace(p.content) == "" {
		return true
	}
	data, err := robotstxt.FromString(p.content)
	if err != nil {
		return true
	}
	if path == "" {
		path = "/"
	}
	return data.FindGroup("Googlebot").Test(path)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
