// Package injection implements the prompt-injection filter (C6): a
// pure, stateless check of incoming user text against a curated
// pattern set of role-escape directives, bracketed role tags, and
// known jailbreak tokens. Grounded on original_source/bot/security.py's
// detect_prompt_injection, which likewise loads a pattern list as
// external data rather than hard-coding rules.
package injection

import "github.com/sentrybot/guard/internal/config"

// Filter checks text for prompt-injection attempts.
type Filter struct {
	patterns []config.CompiledPattern
}

// New builds a Filter from compiled injection patterns. Pass
// config.DefaultPatterns() when no external pattern file is configured.
func New(patterns *config.Compiled) *Filter {
	if patterns == nil {
		patterns = config.DefaultPatterns()
	}
	return &Filter{patterns: patterns.Injection}
}

// IsInjection reports whether text matches any curated
// injection/jailbreak pattern.
func (f *Filter) IsInjection(text string) (injected bool) {
	defer func() {
		if recover() != nil {
			injected = false
		}
	}()
	for _, p := range f.patterns {
		if p.Regexp.MatchString(text) {
			return true
		}
	}
	return false
}

// Reason returns the reason text of the first matching pattern, for
// callers that want to log why a turn was rejected. Returns "" if
// text is not flagged.
func (f *Filter) Reason(text string) string {
	for _, p := range f.patterns {
		if p.Regexp.MatchString(text) {
			return p.Reason
		}
	}
	return ""
}
