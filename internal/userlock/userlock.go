// Package userlock implements the per-user serializer (C4): at most
// one in-flight agent turn per user, with distinct users running
// concurrently up to a global capacity. Grounded in shape on the
// teacher's internal/sessions.SessionLockManager (map-of-per-key
// locks, acquire/release closures, idle-entry cleanup goroutine), but
// sync.Cond's Wait/Broadcast does not guarantee FIFO wake order, and
// spec.md requires strict per-user FIFO — so waiting turns here queue
// on a channel ticket instead of a condition variable.
package userlock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCapacityExceeded is returned by CanAccept-gated callers when the
// active-user capacity is reached; nothing in this package returns it.
var ErrCapacityExceeded = errors.New("userlock: server busy, active-user capacity exceeded")

// ErrTurnCanceled is returned to a turn whose context was canceled
// while it held or was waiting for the per-user lock.
var ErrTurnCanceled = errors.New("userlock: turn canceled")

const idleCleanupAfter = 10 * time.Minute
const cleanupInterval = 5 * time.Minute

// userQueue is a strict-FIFO mutex. Channel receive on a buffered
// channel with multiple waiters does NOT guarantee FIFO wakeup order
// in Go, so arrival order is tracked explicitly with a waiter list:
// each arriving turn either acquires immediately (queue was idle) or
// appends its own one-shot channel to the back of waiters and blocks
// on it; release always wakes the front of the line.
type userQueue struct {
	mu       sync.Mutex
	locked   bool
	waiters  []chan struct{}
	lastUsed time.Time
}

func (q *userQueue) acquire(ctx context.Context) error {
	q.mu.Lock()
	if !q.locked {
		q.locked = true
		q.mu.Unlock()
		return nil
	}
	wait := make(chan struct{})
	q.waiters = append(q.waiters, wait)
	q.mu.Unlock()

	select {
	case <-wait:
		return nil
	case <-ctx.Done():
		q.abandon(wait)
		return ctx.Err()
	}
}

// abandon removes wait from the queue if it never got woken, so a
// canceled turn doesn't leave a dangling slot. If it was already
// woken concurrently with cancellation, the lock it was handed is
// released immediately so the next waiter still proceeds.
func (q *userQueue) abandon(wait chan struct{}) {
	q.mu.Lock()
	for i, w := range q.waiters {
		if w == wait {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			q.mu.Unlock()
			return
		}
	}
	q.mu.Unlock()
	// Not found: it was already popped and handed the lock. Release
	// on its behalf.
	q.release()
}

func (q *userQueue) release() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.waiters) == 0 {
		q.locked = false
		return
	}
	next := q.waiters[0]
	q.waiters = q.waiters[1:]
	close(next)
}

// Serializer enforces strict FIFO per user and bounds the number of
// users with an active turn.
type Serializer struct {
	mu             sync.Mutex
	queues         map[string]*userQueue
	active         map[string]bool
	maxConcurrent  int
	stopCh         chan struct{}
	stopOnce       sync.Once
}

// New builds a Serializer with the given active-user capacity. Pass
// 0 for the spec default (10).
func New(maxConcurrentUsers int) *Serializer {
	if maxConcurrentUsers <= 0 {
		maxConcurrentUsers = 10
	}
	s := &Serializer{
		queues:        make(map[string]*userQueue),
		active:        make(map[string]bool),
		maxConcurrent: maxConcurrentUsers,
		stopCh:        make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

func (s *Serializer) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *Serializer) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *Serializer) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for userID, q := range s.queues {
		q.mu.Lock()
		idle := !q.locked && len(q.waiters) == 0 && now.Sub(q.lastUsed) > idleCleanupAfter
		q.mu.Unlock()
		if idle {
			delete(s.queues, userID)
		}
	}
}

func (s *Serializer) queueFor(userID string) *userQueue {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[userID]
	if !ok {
		q = &userQueue{lastUsed: time.Now()}
		s.queues[userID] = q
	}
	return q
}

// CanAccept reports whether userID may start a new turn: true if the
// user already has an active turn (so it will queue behind it, not
// start a new concurrent one), or the active-user count is below
// capacity.
func (s *Serializer) CanAccept(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[userID] {
		return true
	}
	return len(s.active) < s.maxConcurrent
}

// MarkActive records userID as holding an active turn slot.
func (s *Serializer) MarkActive(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[userID] = true
}

// MarkInactive releases userID's active turn slot.
func (s *Serializer) MarkInactive(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, userID)
}

// WithUserLock runs turn with exclusive access to userID's queue:
// turns for the same userID run strictly in the order they call
// WithUserLock; turns for distinct users never block one another here.
// If ctx is canceled while queued, turn is never invoked and
// ErrTurnCanceled is returned, allowing the next queued turn to
// proceed immediately.
func WithUserLock[T any](ctx context.Context, s *Serializer, userID string, turn func(context.Context) (T, error)) (T, error) {
	var zero T
	q := s.queueFor(userID)

	if err := q.acquire(ctx); err != nil {
		return zero, ErrTurnCanceled
	}
	q.mu.Lock()
	q.lastUsed = time.Now()
	q.mu.Unlock()
	defer q.release()

	result, err := turn(ctx)
	if ctx.Err() != nil && err == nil {
		return result, ErrTurnCanceled
	}
	return result, err
}
