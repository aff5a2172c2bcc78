package telegram

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/sentrybot/guard/internal/ratelimit"
)

// retryAfterPattern extracts the retry_after seconds Telegram embeds
// in a 429 response body, e.g. "Too Many Requests: retry after 7".
var retryAfterPattern = regexp.MustCompile(`retry[ _]after[:\s]+(\d+)`)

// rateLimitedError adapts a Telegram 429 into the
// internal/ratelimit.RateLimitError contract.
type rateLimitedError struct {
	cause      error
	retryAfter time.Duration
}

func (e *rateLimitedError) Error() string             { return e.cause.Error() }
func (e *rateLimitedError) Unwrap() error              { return e.cause }
func (e *rateLimitedError) RetryAfter() time.Duration { return e.retryAfter }

var _ ratelimit.RateLimitError = (*rateLimitedError)(nil)

// classifyError wraps err as a rateLimitedError when its message
// carries a Telegram retry_after hint, so ratelimit.Send can back off
// by the provider-reported duration instead of guessing.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	m := retryAfterPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return err
	}
	secs, parseErr := strconv.Atoi(m[1])
	if parseErr != nil {
		return err
	}
	return &rateLimitedError{cause: err, retryAfter: time.Duration(secs) * time.Second}
}

// Sender sends outbound Telegram messages through the per-chat pacing
// and retry-after handling of internal/ratelimit.
type Sender struct {
	client  BotClient
	limiter *ratelimit.Limiter
}

// NewSender builds a Sender over an already-constructed BotClient and
// Limiter.
func NewSender(client BotClient, limiter *ratelimit.Limiter) *Sender {
	return &Sender{client: client, limiter: limiter}
}

// SendMessage sends text to chatID, paced and retried per C5.
func (s *Sender) SendMessage(ctx context.Context, chatID int64, text string) (*models.Message, error) {
	return ratelimit.Send(ctx, s.limiter, chatID, func(ctx context.Context) (*models.Message, error) {
		msg, err := s.client.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   text,
		})
		if err != nil {
			return nil, classifyError(err)
		}
		return msg, nil
	})
}

// errRateLimited is ratelimit.ErrRateLimited; callers that only import
// this package test for it through IsExhausted.
var errRateLimited = ratelimit.ErrRateLimited

// IsExhausted reports whether err is the sentinel returned once C5's
// retry budget against a Telegram 429 is exhausted.
func IsExhausted(err error) bool {
	return errors.Is(err, errRateLimited)
}
