// Package ratelimit implements the outbound rate limiter (C5): a
// single in-process send queue that paces outbound Telegram sends to
// a global minimum interval and a longer per-group interval, and
// retries on provider-side rate-limit errors using the retry-after
// duration the provider reports. Grounded in shape on the teacher's
// internal/ratelimit.Limiter (mutex + map-of-keyed-state, Config
// struct), but the algorithm is spec.md's fixed-minimum-interval
// sleep-then-send model, not the teacher's token bucket.
package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrRateLimited is returned when a send exhausts its retry budget
// against provider rate-limiting.
var ErrRateLimited = errors.New("ratelimit: exhausted retries against provider rate limit")

// RateLimitError is the contract a send_fn's error must satisfy for
// the limiter to apply the retry-after backoff instead of giving up
// immediately. Any error that does not satisfy this (via errors.As)
// is treated as non-retryable: logged once, returned as-is.
type RateLimitError interface {
	error
	RetryAfter() time.Duration
}

// Config holds C5's tunables, following the teacher's yaml-tagged
// Config convention.
type Config struct {
	GlobalMinInterval time.Duration `yaml:"global_min_interval_ms"`
	GroupMinInterval  time.Duration `yaml:"group_min_interval_ms"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryBuffer       time.Duration `yaml:"retry_buffer_s"`
}

// DefaultConfig mirrors spec.md §6's configuration surface.
func DefaultConfig() Config {
	return Config{
		GlobalMinInterval: 200 * time.Millisecond,
		GroupMinInterval:  5 * time.Second,
		MaxRetries:        3,
		RetryBuffer:       5 * time.Second,
	}
}

// Limiter serializes all outbound sends through one queue and paces
// them per Config.
type Limiter struct {
	cfg Config
	now func() time.Time

	// queueMu is the single in-process send queue: only one send_fn
	// is ever in flight, and the pacing sleep lives inside the same
	// critical section, matching spec.md §4.5's "serialization" rule.
	queueMu sync.Mutex

	mu             sync.Mutex
	globalLastSend time.Time
	lastGroupSend  map[int64]time.Time

	logger *slog.Logger
}

// New builds a Limiter. A nil logger falls back to slog.Default().
func New(cfg Config, logger *slog.Logger) *Limiter {
	if cfg.GlobalMinInterval <= 0 {
		cfg.GlobalMinInterval = 200 * time.Millisecond
	}
	if cfg.GroupMinInterval <= 0 {
		cfg.GroupMinInterval = 5 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBuffer <= 0 {
		cfg.RetryBuffer = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		cfg:           cfg,
		now:           time.Now,
		lastGroupSend: make(map[int64]time.Time),
		logger:        logger,
	}
}

// Send runs sendFn for chatID, pacing it against the global and (for
// group chats, chatID < 0) per-group minimum intervals, and retrying
// on a RateLimitError up to Config.MaxRetries total attempts.
func Send[T any](ctx context.Context, l *Limiter, chatID int64, sendFn func(context.Context) (T, error)) (T, error) {
	var zero T

	l.queueMu.Lock()
	defer l.queueMu.Unlock()

	for attempt := 1; attempt <= l.cfg.MaxRetries; attempt++ {
		if err := l.pace(ctx, chatID); err != nil {
			return zero, err
		}

		l.markSent(chatID)
		result, err := sendFn(ctx)
		if err == nil {
			return result, nil
		}

		var rle RateLimitError
		if !errors.As(err, &rle) {
			l.logger.Error("ratelimit: send failed", "chat_id", chatID, "error", err)
			return zero, err
		}

		if attempt == l.cfg.MaxRetries {
			l.logger.Warn("ratelimit: retries exhausted", "chat_id", chatID, "attempts", attempt)
			return zero, ErrRateLimited
		}
		wait := rle.RetryAfter() + l.cfg.RetryBuffer
		l.logger.Warn("ratelimit: provider rate limit, backing off", "chat_id", chatID, "wait", wait, "attempt", attempt)
		if err := sleepCtx(ctx, wait); err != nil {
			return zero, err
		}
	}
	return zero, ErrRateLimited
}

func (l *Limiter) pace(ctx context.Context, chatID int64) error {
	l.mu.Lock()
	now := l.now()
	wait := l.cfg.GlobalMinInterval - now.Sub(l.globalLastSend)
	var groupWait time.Duration
	if chatID < 0 {
		last := l.lastGroupSend[chatID]
		groupWait = l.cfg.GroupMinInterval - now.Sub(last)
	}
	l.mu.Unlock()

	if wait > 0 {
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}
	if groupWait > 0 {
		if err := sleepCtx(ctx, groupWait); err != nil {
			return err
		}
	}
	return nil
}

func (l *Limiter) markSent(chatID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.globalLastSend = now
	if chatID < 0 {
		l.lastGroupSend[chatID] = now
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
