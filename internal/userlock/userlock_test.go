package userlock

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestStrictFIFOOrderingPerUser(t *testing.T) {
	s := New(10)
	defer s.Close()

	const n = 30
	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	// Hold the lock so every turn below has to queue behind it.
	holding := make(chan struct{})
	release := make(chan struct{})
	holderDone := make(chan struct{})
	go func() {
		defer close(holderDone)
		_, _ = WithUserLock(context.Background(), s, "user-1", func(ctx context.Context) (struct{}, error) {
			close(holding)
			<-release
			return struct{}{}, nil
		})
	}()
	<-holding
	q := s.queueFor("user-1")

	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = WithUserLock(context.Background(), s, "user-1", func(ctx context.Context) (struct{}, error) {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return struct{}{}, nil
			})
		}()
		// Wait until turn i has joined the queue before starting turn
		// i+1, so arrival order is exactly 0..n-1; the lock must then
		// hand over in that same order.
		deadline := time.Now().Add(2 * time.Second)
		for {
			q.mu.Lock()
			queued := len(q.waiters)
			q.mu.Unlock()
			if queued == i+1 {
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("turn %d never joined the queue", i)
			}
			time.Sleep(time.Millisecond)
		}
	}
	close(release)
	wg.Wait()
	<-holderDone

	if len(order) != n {
		t.Fatalf("got %d completions, want %d", len(order), n)
	}
	for i := 1; i < len(order); i++ {
		if order[i] < order[i-1] {
			t.Fatalf("FIFO violated: order=%v", order)
		}
	}
}

func TestDistinctUsersRunConcurrently(t *testing.T) {
	s := New(10)
	defer s.Close()

	var wg sync.WaitGroup
	release := make(chan struct{})
	entered := make(chan string, 2)

	for _, u := range []string{"a", "b"} {
		u := u
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = WithUserLock(context.Background(), s, u, func(ctx context.Context) (struct{}, error) {
				entered <- u
				<-release
				return struct{}{}, nil
			})
		}()
	}

	// Both must enter before either is released, proving they don't
	// serialize against each other.
	seen := map[string]bool{}
	timeout := time.After(2 * time.Second)
	for len(seen) < 2 {
		select {
		case u := <-entered:
			seen[u] = true
		case <-timeout:
			t.Fatal("distinct users did not run concurrently")
		}
	}
	close(release)
	wg.Wait()
}

func TestCanAcceptCapacity(t *testing.T) {
	s := New(2)
	defer s.Close()

	if !s.CanAccept("a") {
		t.Fatal("should accept first user")
	}
	s.MarkActive("a")
	if !s.CanAccept("b") {
		t.Fatal("should accept second user")
	}
	s.MarkActive("b")
	if s.CanAccept("c") {
		t.Fatal("should refuse third user at capacity 2")
	}
	if !s.CanAccept("a") {
		t.Fatal("already-active user should always be acceptable")
	}
	s.MarkInactive("a")
	if !s.CanAccept("c") {
		t.Fatal("should accept third user once a slot frees up")
	}
}

func TestCancellationReleasesLockForNextTurn(t *testing.T) {
	s := New(10)
	defer s.Close()

	holding := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _ = WithUserLock(context.Background(), s, "user-1", func(ctx context.Context) (struct{}, error) {
			close(holding)
			<-release
			return struct{}{}, nil
		})
	}()
	<-holding

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := WithUserLock(ctx, s, "user-1", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, nil
		})
		done <- err
	}()

	// Cancel the queued turn before the holder ever releases.
	cancel()
	select {
	case err := <-done:
		if err != ErrTurnCanceled {
			t.Fatalf("err = %v, want ErrTurnCanceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("canceled turn never returned")
	}

	close(release)

	// A third turn must still be able to acquire the lock afterward.
	_, err := WithUserLock(context.Background(), s, "user-1", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, nil
	})
	if err != nil {
		t.Fatalf("third turn failed to acquire lock: %v", err)
	}
}
