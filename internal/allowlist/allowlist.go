// Package allowlist matches qualified names against glob patterns where '*'
// matches any run of characters and '?' matches a single character.
package allowlist

import (
	"regexp"
	"strings"
)

// Matcher tests names against a set of patterns.
type Matcher struct {
	patterns []*regexp.Regexp
}

// New compiles the patterns. Empty patterns are ignored, so a list holding
// only "" matches nothing.
func New(patterns []string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		m.patterns = append(m.patterns, compile(p))
	}
	return m
}

// Allowlist returns the matcher for the allowlist setting. An unset setting
// allows everything.
func Allowlist(patterns []string) *Matcher {
	if patterns == nil {
		return New([]string{"*"})
	}
	return New(patterns)
}

// Unrestricted returns the matcher for the unrestricted setting. An unset
// setting unrestricts nothing.
func Unrestricted(patterns []string) *Matcher {
	return New(patterns)
}

// Matches reports whether name matches any pattern.
func (m *Matcher) Matches(name string) bool {
	for _, re := range m.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func compile(pattern string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.ReplaceAll(quoted, `\*`, ".*")
	quoted = strings.ReplaceAll(quoted, `\?`, ".")
	return regexp.MustCompile("^" + quoted + "$")
}
