// Package config loads the guard's pattern tables and tunable
// constants from YAML, following the teacher's convention of
// yaml-tagged structs loaded once at startup (see
// internal/ratelimit.Config in the grounding repo). Pattern lists are
// data, not code: hot-reload is explicitly out of scope.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// PatternEntry is one ordered (regex, reason) rule. GroupStrict marks
// a Dangerous-table rule that is promoted to Forbidden when evaluated
// in group chat scope (see SPEC_FULL.md's group-scoped strictness
// supplement).
type PatternEntry struct {
	Pattern      string `yaml:"pattern"`
	Reason       string `yaml:"reason"`
	GroupStrict  bool   `yaml:"group_strict,omitempty"`
}

// CompiledPattern is a PatternEntry with its regex pre-compiled.
// Entries that fail to compile are dropped during Load and logged,
// never fatal, matching the classifier's "never raise" contract.
type CompiledPattern struct {
	Regexp      *regexp.Regexp
	Reason      string
	GroupStrict bool
}

// PatternTables holds the three curated pattern lists the command
// and injection classifiers evaluate against.
type PatternTables struct {
	Forbidden []PatternEntry `yaml:"forbidden"`
	Dangerous []PatternEntry `yaml:"dangerous"`
	Injection []PatternEntry `yaml:"injection"`
}

// Compiled mirrors PatternTables but with every entry pre-compiled.
type Compiled struct {
	Forbidden []CompiledPattern
	Dangerous []CompiledPattern
	Injection []CompiledPattern
}

// LoadPatternFile reads and compiles a YAML pattern file, returning
// an error if the file is missing or malformed; callers fall back to
// DefaultPatterns in that case rather than starting with no rules.
func LoadPatternFile(path string) (*Compiled, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}
	var tables PatternTables
	if err := yaml.Unmarshal(raw, &tables); err != nil {
		return nil, fmt.Errorf("parse pattern file: %w", err)
	}
	return compile(tables), nil
}

// LoadPatterns parses pattern tables already in memory (used by
// DefaultPatterns and tests that want to extend the built-in set).
func LoadPatterns(tables PatternTables) *Compiled {
	return compile(tables)
}

func compile(tables PatternTables) *Compiled {
	return &Compiled{
		Forbidden: compileList(tables.Forbidden),
		Dangerous: compileList(tables.Dangerous),
		Injection: compileList(tables.Injection),
	}
}

func compileList(entries []PatternEntry) []CompiledPattern {
	out := make([]CompiledPattern, 0, len(entries))
	for _, e := range entries {
		re, err := regexp.Compile(e.Pattern)
		if err != nil {
			slog.Warn("config: dropping unparseable pattern", "pattern", e.Pattern, "error", err)
			continue
		}
		out = append(out, CompiledPattern{Regexp: re, Reason: e.Reason, GroupStrict: e.GroupStrict})
	}
	return out
}
