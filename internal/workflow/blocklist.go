package workflow

import "strings"

// Blocklist rejects analysis of configured hosts. Patterns are exact hosts
// ("internal.example.com") or suffix wildcards ("*.example.com", which also
// matches the bare domain).
type Blocklist struct {
	exact    map[string]struct{}
	suffixes []string
}

// NewBlocklist compiles the configured patterns. An empty pattern list
// yields a blocklist that blocks nothing.
func NewBlocklist(patterns []string) *Blocklist {
	b := &Blocklist{exact: make(map[string]struct{})}
	for _, raw := range patterns {
		value := strings.TrimSpace(strings.ToLower(raw))
		if value == "" {
			continue
		}
		if suffix, ok := strings.CutPrefix(value, "*."); ok {
			b.addSuffix(suffix)
			continue
		}
		if suffix, ok := strings.CutPrefix(value, "."); ok {
			b.addSuffix(suffix)
			continue
		}
		b.exact[value] = struct{}{}
	}
	return b
}

func (b *Blocklist) addSuffix(suffix string) {
	if suffix == "" {
		return
	}
	for _, existing := range b.suffixes {
		if existing == suffix {
			return
		}
	}
	b.suffixes = append(b.suffixes, suffix)
}

// Blocked reports whether the host matches any configured pattern.
func (b *Blocklist) Blocked(host string) bool {
	if b == nil {
		return false
	}
	host = strings.TrimSpace(strings.ToLower(host))
	if host == "" {
		return false
	}
	if _, ok := b.exact[host]; ok {
		return true
	}
	for _, suffix := range b.suffixes {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}
