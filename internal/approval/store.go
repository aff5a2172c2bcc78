// Package approval implements the approval store (C3): an in-memory
// registry of dangerous commands awaiting a human approve/deny
// decision, with TTL-bounded lifetime and consume-once semantics.
// Grounded on the teacher's internal/agent.MemoryApprovalStore, but
// extended with an atomic destructive Consume (the teacher's Get is
// read-only) and an active TTL-sweep goroutine (the teacher only
// checks expiry lazily on read).
package approval

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentrybot/guard/pkg/models"
)

const defaultSweepInterval = 10 * time.Second

// Store holds pending dangerous-command approvals. The zero value is
// not usable; construct with New.
type Store struct {
	mu       sync.Mutex
	records  map[string]models.PendingCommand
	bySession map[string]map[string]bool
	ttl      time.Duration
	now      func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New builds a Store with the given TTL. Pass 0 for the spec default
// (300s).
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 300 * time.Second
	}
	s := &Store{
		records:   make(map[string]models.PendingCommand),
		bySession: make(map[string]map[string]bool),
		ttl:       ttl,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// Close stops the background sweep goroutine. Safe to call more than
// once.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *Store) sweepLoop() {
	ticker := time.NewTicker(defaultSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, rec := range s.records {
		if now.Sub(rec.CreatedAt) >= s.ttl {
			s.deleteLocked(id, rec.SessionID)
		}
	}
}

// Sweep evicts every expired record immediately and returns how many
// were removed. The Store already sweeps itself on its own interval
// and lazily on Consume/ListBySession/Cancel; Sweep exists so an
// external scheduler (internal/maintenance) can retune or trigger
// cleanup on its own cadence without reaching into Store internals.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, rec := range s.records {
		if now.Sub(rec.CreatedAt) >= s.ttl {
			s.deleteLocked(id, rec.SessionID)
			n++
		}
	}
	return n
}

func (s *Store) deleteLocked(id, sessionID string) {
	delete(s.records, id)
	if set, ok := s.bySession[sessionID]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(s.bySession, sessionID)
		}
	}
}

func (s *Store) expiredLocked(rec models.PendingCommand) bool {
	return s.now().Sub(rec.CreatedAt) >= s.ttl
}

// Store inserts a new pending command and returns its opaque id.
func (s *Store) Store(sessionID string, chatID int64, command, cwd, reason string) (string, error) {
	id, err := newID()
	if err != nil {
		return "", err
	}
	rec := models.PendingCommand{
		ID:        id,
		SessionID: sessionID,
		ChatID:    chatID,
		Command:   command,
		Cwd:       cwd,
		Reason:    reason,
		CreatedAt: s.now(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = rec
	if s.bySession[sessionID] == nil {
		s.bySession[sessionID] = make(map[string]bool)
	}
	s.bySession[sessionID][id] = true
	return id, nil
}

// Consume atomically removes and returns the record for id. Exactly
// one of N concurrent callers racing on the same id observes ok=true;
// the rest observe ok=false, as does any caller after TTL expiry.
func (s *Store) Consume(id string) (models.PendingCommand, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return models.PendingCommand{}, false
	}
	if s.expiredLocked(rec) {
		s.deleteLocked(id, rec.SessionID)
		return models.PendingCommand{}, false
	}
	s.deleteLocked(id, rec.SessionID)
	return rec, true
}

// ListBySession returns a snapshot of pending commands for sessionID,
// excluding anything past its TTL.
func (s *Store) ListBySession(sessionID string) []models.PendingCommand {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.bySession[sessionID]
	out := make([]models.PendingCommand, 0, len(ids))
	for id := range ids {
		rec, ok := s.records[id]
		if !ok {
			continue
		}
		if s.expiredLocked(rec) {
			s.deleteLocked(id, rec.SessionID)
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Cancel removes a pending command without returning it, reporting
// whether a live (non-expired) record existed.
func (s *Store) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return false
	}
	expired := s.expiredLocked(rec)
	s.deleteLocked(id, rec.SessionID)
	return !expired
}

// newID produces an opaque, ≥48-bit-entropy identifier, the same way
// internal/audit mints event IDs: a random UUIDv4 string.
func newID() (string, error) {
	return uuid.NewString(), nil
}
