// Package observability provides the guard's structured logging,
// grounded on the teacher's internal/observability.Logger: a
// log/slog wrapper that redacts secret-shaped substrings out of
// logged fields before they reach the handler. Given this module's
// entire purpose is preventing secret exfiltration, redacting its own
// logs is not optional.
package observability

import (
	"context"
	"io"
	"log/slog"
	"regexp"
)

type ctxKey string

const (
	SessionIDKey ctxKey = "session_id"
	UserIDKey    ctxKey = "user_id"
	ChatIDKey    ctxKey = "chat_id"
)

// DefaultRedactPatterns mirrors the teacher's secret-shaped regex
// family: API keys, bearer tokens, Telegram bot tokens, JWTs, and
// generic long hex secrets.
var DefaultRedactPatterns = []string{
	`sk-[A-Za-z0-9]{16,}`,
	`ghp_[A-Za-z0-9]{20,}`,
	`Bearer\s+[A-Za-z0-9\-._~+/]{10,}=*`,
	`\d{9,10}:[A-Za-z0-9_-]{30,}`, // Telegram bot token shape
	`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`, // JWT
	`[A-Fa-f0-9]{32,}`,
}

// Config configures the Logger, following the teacher's LogConfig.
type Config struct {
	Level          slog.Level
	Output         io.Writer
	AddSource      bool
	RedactPatterns []string
}

// Logger wraps *slog.Logger with redaction applied to every logged
// field.
type Logger struct {
	base    *slog.Logger
	redacts []*regexp.Regexp
}

// New builds a Logger writing JSON to cfg.Output (os.Stderr if nil).
func New(cfg Config) *Logger {
	patterns := cfg.RedactPatterns
	if patterns == nil {
		patterns = DefaultRedactPatterns
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if re, err := regexp.Compile(p); err == nil {
			compiled = append(compiled, re)
		}
	}
	handler := slog.NewJSONHandler(outputOrDefault(cfg.Output), &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	})
	return &Logger{base: slog.New(handler), redacts: compiled}
}

// Redact replaces every secret-shaped substring in s with
// "[REDACTED]", grounded on
// original_source/core/tests/test_security.py's sanitize_output
// contract (redact in place, leave the rest of the text untouched).
func (l *Logger) Redact(s string) string {
	for _, re := range l.redacts {
		s = re.ReplaceAllString(s, "[REDACTED]")
	}
	return s
}

func (l *Logger) redactArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			out[i] = l.Redact(s)
			continue
		}
		out[i] = a
	}
	return out
}

func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	logger := l.base
	if v := ctx.Value(SessionIDKey); v != nil {
		logger = logger.With("session_id", v)
	}
	if v := ctx.Value(UserIDKey); v != nil {
		logger = logger.With("user_id", v)
	}
	if v := ctx.Value(ChatIDKey); v != nil {
		logger = logger.With("chat_id", v)
	}
	return logger
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).Info(l.Redact(msg), l.redactArgs(args)...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).Warn(l.Redact(msg), l.redactArgs(args)...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).Error(l.Redact(msg), l.redactArgs(args)...)
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).Debug(l.Redact(msg), l.redactArgs(args)...)
}

func outputOrDefault(w io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return defaultOutput
}
