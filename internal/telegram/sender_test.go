package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/sentrybot/guard/internal/ratelimit"
)

type stubClient struct {
	calls    int
	failN    int
	failErr  error
	response *models.Message
}

func (s *stubClient) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	s.calls++
	if s.calls <= s.failN {
		return nil, s.failErr
	}
	return s.response, nil
}

func (s *stubClient) GetMe(ctx context.Context) (*models.User, error) {
	return &models.User{}, nil
}

func TestClassifyErrorExtractsRetryAfter(t *testing.T) {
	err := errors.New("Too Many Requests: retry after 7")
	classified := classifyError(err)
	var rle ratelimit.RateLimitError
	if !errors.As(classified, &rle) {
		t.Fatalf("classifyError did not produce a RateLimitError: %v", classified)
	}
	if rle.RetryAfter() != 7*time.Second {
		t.Errorf("RetryAfter() = %v, want 7s", rle.RetryAfter())
	}
}

func TestClassifyErrorPassesThroughNonRateLimit(t *testing.T) {
	err := errors.New("chat not found")
	if got := classifyError(err); got != err {
		t.Errorf("classifyError modified a non-rate-limit error: %v", got)
	}
}

func TestSenderRetriesThenSucceeds(t *testing.T) {
	client := &stubClient{
		failN:    1,
		failErr:  errors.New("Too Many Requests: retry after 0"),
		response: &models.Message{ID: 42},
	}
	cfg := ratelimit.DefaultConfig()
	cfg.GlobalMinInterval = time.Millisecond
	cfg.RetryBuffer = 0
	limiter := ratelimit.New(cfg, nil)
	sender := NewSender(client, limiter)

	msg, err := sender.SendMessage(context.Background(), 123, "hello")
	if err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if msg.ID != 42 {
		t.Errorf("msg.ID = %d, want 42", msg.ID)
	}
	if client.calls != 2 {
		t.Errorf("calls = %d, want 2", client.calls)
	}
}

func TestIsExhausted(t *testing.T) {
	if !IsExhausted(ratelimit.ErrRateLimited) {
		t.Error("IsExhausted should recognize ratelimit.ErrRateLimited")
	}
	if IsExhausted(errors.New("other")) {
		t.Error("IsExhausted should not match unrelated errors")
	}
}
