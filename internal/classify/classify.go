// Package classify implements the command classifier (C1): given a
// shell command string, decide whether it is allowed, dangerous
// (approval required), or forbidden (secret-exfiltration attack).
// Forbidden patterns are evaluated before dangerous ones so an attack
// string that is both cannot be reclassified as merely approval-worthy.
package classify

import (
	"strings"

	"github.com/sentrybot/guard/internal/config"
	"github.com/sentrybot/guard/pkg/models"
)

// Classifier evaluates commands against a compiled pattern table. It
// holds no mutable state after construction, so a *Classifier is safe
// for concurrent use and its Classify method is pure.
type Classifier struct {
	patterns *config.Compiled
}

// New builds a Classifier from compiled pattern tables. Pass
// config.DefaultPatterns() when no external pattern file is configured.
func New(patterns *config.Compiled) *Classifier {
	if patterns == nil {
		patterns = config.DefaultPatterns()
	}
	return &Classifier{patterns: patterns}
}

// Classify decides a command with no chat-scope context; equivalent
// to spec.md's single-argument classify(command).
func (c *Classifier) Classify(command string) models.Decision {
	return c.ClassifyInScope(command, models.ScopeUnspecified)
}

// ClassifyInScope decides a command, applying the group-scoped
// strictness supplement from SPEC_FULL.md when scope is ScopeGroup:
// a Dangerous match tagged group_strict is promoted to Forbidden.
func (c *Classifier) ClassifyInScope(command string, scope models.ChatScope) (decision models.Decision) {
	decision = models.AllowDecision()
	defer func() {
		if recover() != nil {
			decision = models.AllowDecision()
		}
	}()

	masked := maskMetacharacters(command)

	if reason, ok := firstMatch(c.patterns.Forbidden, command, masked); ok {
		return models.ForbiddenDecision(reason)
	}
	if entry, ok := firstDangerousMatch(c.patterns.Dangerous, command, masked); ok {
		if scope == models.ScopeGroup && entry.GroupStrict {
			return models.ForbiddenDecision(entry.Reason)
		}
		return models.DangerousDecision(entry.Reason)
	}
	return models.AllowDecision()
}

func firstMatch(entries []config.CompiledPattern, raw, masked string) (string, bool) {
	for _, e := range entries {
		if matchEntry(e, raw, masked) {
			return e.Reason, true
		}
	}
	return "", false
}

func firstDangerousMatch(entries []config.CompiledPattern, raw, masked string) (config.CompiledPattern, bool) {
	for _, e := range entries {
		if matchEntry(e, raw, masked) {
			return e, true
		}
	}
	return config.CompiledPattern{}, false
}

// metacharSensitive reports whether a pattern's source references a
// shell metacharacter literally, meaning it describes a real shell
// operator (pipe, background, sequencing) rather than plain text —
// such patterns are matched against the quote-masked command so a
// quoted literal "|" in an argument can't trigger them.
func metacharSensitive(source string) bool {
	for _, tok := range []string{`\|`, `&&`, `\|\|`, `;`, `>>`} {
		if strings.Contains(source, tok) {
			return true
		}
	}
	return false
}

func matchEntry(e config.CompiledPattern, raw, masked string) bool {
	if metacharSensitive(e.Regexp.String()) {
		return e.Regexp.MatchString(masked)
	}
	return e.Regexp.MatchString(raw)
}
