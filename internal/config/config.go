package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds the tunable constants from SPEC_FULL.md's
// "Config constants" section. Loaded once at startup; like the
// pattern tables, nothing here is hot-reloaded.
type Settings struct {
	GlobalMinInterval    time.Duration `yaml:"global_min_interval_ms"`
	GroupMinInterval     time.Duration `yaml:"group_min_interval_ms"`
	MaxRetries           int           `yaml:"max_retries"`
	RetryBuffer          time.Duration `yaml:"retry_buffer_s"`
	MaxConcurrentUsers   int           `yaml:"max_concurrent_users"`
	ApprovalTTL          time.Duration `yaml:"approval_ttl_s"`
	LLMDeadline          time.Duration `yaml:"llm_deadline_s"`
	SandboxDeadline      time.Duration `yaml:"sandbox_deadline_s"`
	SandboxMaxOutputByte int64         `yaml:"sandbox_max_output_bytes"`
	MessageMaxChars      int           `yaml:"message_max_chars"`
	PatternFile          string        `yaml:"pattern_file,omitempty"`
	Workspace            string        `yaml:"workspace,omitempty"`
}

// DefaultSettings mirrors spec.md's §6 configuration surface.
func DefaultSettings() Settings {
	return Settings{
		GlobalMinInterval:    200 * time.Millisecond,
		GroupMinInterval:     5 * time.Second,
		MaxRetries:           3,
		RetryBuffer:          5 * time.Second,
		MaxConcurrentUsers:   10,
		ApprovalTTL:          300 * time.Second,
		LLMDeadline:          120 * time.Second,
		SandboxDeadline:      180 * time.Second,
		SandboxMaxOutputByte: 10 * 1024 * 1024,
		MessageMaxChars:      4000,
	}
}

// rawSettings mirrors Settings but with durations expressed as plain
// numbers the way the YAML surface names them (…_ms, …_s suffixes),
// since time.Duration does not unmarshal from a bare integer.
type rawSettings struct {
	GlobalMinIntervalMs   int64  `yaml:"global_min_interval_ms"`
	GroupMinIntervalMs    int64  `yaml:"group_min_interval_ms"`
	MaxRetries            int    `yaml:"max_retries"`
	RetryBufferS          int64  `yaml:"retry_buffer_s"`
	MaxConcurrentUsers    int    `yaml:"max_concurrent_users"`
	ApprovalTTLS          int64  `yaml:"approval_ttl_s"`
	LLMDeadlineS          int64  `yaml:"llm_deadline_s"`
	SandboxDeadlineS      int64  `yaml:"sandbox_deadline_s"`
	SandboxMaxOutputBytes int64  `yaml:"sandbox_max_output_bytes"`
	MessageMaxChars       int    `yaml:"message_max_chars"`
	PatternFile           string `yaml:"pattern_file,omitempty"`
	Workspace             string `yaml:"workspace,omitempty"`
}

// LoadSettings reads Settings from a YAML file, falling back to
// DefaultSettings for any field left unset (zero) in the file.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}
	var r rawSettings
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return settings, fmt.Errorf("parse settings file: %w", err)
	}
	applyRaw(&settings, r)
	return settings, nil
}

func applyRaw(s *Settings, r rawSettings) {
	if r.GlobalMinIntervalMs > 0 {
		s.GlobalMinInterval = time.Duration(r.GlobalMinIntervalMs) * time.Millisecond
	}
	if r.GroupMinIntervalMs > 0 {
		s.GroupMinInterval = time.Duration(r.GroupMinIntervalMs) * time.Millisecond
	}
	if r.MaxRetries > 0 {
		s.MaxRetries = r.MaxRetries
	}
	if r.RetryBufferS > 0 {
		s.RetryBuffer = time.Duration(r.RetryBufferS) * time.Second
	}
	if r.MaxConcurrentUsers > 0 {
		s.MaxConcurrentUsers = r.MaxConcurrentUsers
	}
	if r.ApprovalTTLS > 0 {
		s.ApprovalTTL = time.Duration(r.ApprovalTTLS) * time.Second
	}
	if r.LLMDeadlineS > 0 {
		s.LLMDeadline = time.Duration(r.LLMDeadlineS) * time.Second
	}
	if r.SandboxDeadlineS > 0 {
		s.SandboxDeadline = time.Duration(r.SandboxDeadlineS) * time.Second
	}
	if r.SandboxMaxOutputBytes > 0 {
		s.SandboxMaxOutputByte = r.SandboxMaxOutputBytes
	}
	if r.MessageMaxChars > 0 {
		s.MessageMaxChars = r.MessageMaxChars
	}
	if r.PatternFile != "" {
		s.PatternFile = r.PatternFile
	}
	if r.Workspace != "" {
		s.Workspace = r.Workspace
	}
}
