package ratelimit

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type testRateLimitErr struct {
	retryAfter time.Duration
}

func (e testRateLimitErr) Error() string          { return "rate limited" }
func (e testRateLimitErr) RetryAfter() time.Duration { return e.retryAfter }

func TestGlobalSpacing(t *testing.T) {
	l := New(Config{GlobalMinInterval: 50 * time.Millisecond, GroupMinInterval: time.Second, MaxRetries: 3, RetryBuffer: time.Millisecond}, nil)

	t1 := time.Now()
	_, err := Send(context.Background(), l, 111, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = Send(context.Background(), l, 222, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	elapsed := time.Since(t1)
	if elapsed < 50*time.Millisecond {
		t.Fatalf("global spacing not enforced: elapsed=%v", elapsed)
	}
}

func TestGroupSpacing(t *testing.T) {
	l := New(Config{GlobalMinInterval: time.Millisecond, GroupMinInterval: 60 * time.Millisecond, MaxRetries: 3, RetryBuffer: time.Millisecond}, nil)

	groupID := int64(-500)
	t1 := time.Now()
	_, _ = Send(context.Background(), l, groupID, func(ctx context.Context) (struct{}, error) { return struct{}{}, nil })
	_, _ = Send(context.Background(), l, groupID, func(ctx context.Context) (struct{}, error) { return struct{}{}, nil })
	elapsed := time.Since(t1)
	if elapsed < 60*time.Millisecond {
		t.Fatalf("group spacing not enforced: elapsed=%v", elapsed)
	}
}

func TestRetryOnRateLimitThenSucceed(t *testing.T) {
	l := New(Config{GlobalMinInterval: time.Millisecond, GroupMinInterval: time.Millisecond, MaxRetries: 3, RetryBuffer: 5 * time.Millisecond}, nil)

	var calls int32
	result, err := Send(context.Background(), l, 1, func(ctx context.Context) (string, error) {
		n := atomic.AddInt32(&calls, 1)
		if n < 2 {
			return "", testRateLimitErr{retryAfter: 10 * time.Millisecond}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Fatalf("result = %q, want ok", result)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestRetriesExhausted(t *testing.T) {
	l := New(Config{GlobalMinInterval: time.Millisecond, GroupMinInterval: time.Millisecond, MaxRetries: 2, RetryBuffer: 2 * time.Millisecond}, nil)

	var calls int32
	_, err := Send(context.Background(), l, 1, func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", testRateLimitErr{retryAfter: time.Millisecond}
	})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2 (max retries)", calls)
	}
}

func TestNonRateLimitErrorReturnsImmediately(t *testing.T) {
	l := New(DefaultConfig(), nil)
	boom := errors.New("boom")
	var calls int32
	_, err := Send(context.Background(), l, 1, func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (no retry on non-rate-limit error)", calls)
	}
}
