package audit

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T) (*Logger, func()) {
	t.Helper()
	l := New(&Config{BufferSize: 8, FlushInterval: time.Millisecond}, slog.Default())
	return l, l.Close
}

func TestLogAssignsIDAndTimestamp(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{BufferSize: 8, FlushInterval: time.Millisecond}, slog.New(slog.NewTextHandler(&buf, nil)))

	ev := Event{Type: EventCommandVerdict, SessionID: "sess-1"}
	l.Log(context.Background(), ev)
	// Log mutates a copy, not the caller's struct, so the assigned
	// values are checked in the written records. The timestamp is not
	// part of the written record; only the ID side is observable here.
	l.Log(context.Background(), Event{ID: "fixed-id", Type: EventPathVerdict})
	l.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d audit records, want 2: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "event_id=") || strings.Contains(lines[0], `event_id=""`) {
		t.Fatalf("first record has no assigned event_id: %q", lines[0])
	}
	if !strings.Contains(lines[1], "event_id=fixed-id") {
		t.Fatalf("explicit ID not preserved: %q", lines[1])
	}
}

func TestLogCommandVerdictHelpers(t *testing.T) {
	l, closeFn := newTestLogger(t)
	defer closeFn()

	l.LogCommandVerdict(context.Background(), "sess-1", "rm -rf /", "forbid", "Force recursive delete")
	l.LogPathVerdict(context.Background(), "sess-1", "/etc/shadow", "read", "deny", "Sensitive file")
	l.LogApprovalStored(context.Background(), "sess-1", "appr-1", "sudo reboot", "Root privileges")
	l.LogApprovalDecided(context.Background(), "sess-1", "appr-1", "consumed")
	l.LogInjectionBlocked(context.Background(), "user-1", "role escape")
	l.LogCapacityRefused(context.Background(), "user-1")
}

func TestCloseDrainsBuffer(t *testing.T) {
	l := New(&Config{BufferSize: 100}, slog.Default())
	for i := 0; i < 50; i++ {
		l.Log(context.Background(), Event{Type: EventCommandVerdict})
	}
	l.Close()
}

func TestLogNeverBlocksWhenBufferFull(t *testing.T) {
	l := New(&Config{BufferSize: 1}, slog.Default())
	defer l.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			l.Log(context.Background(), Event{Type: EventCommandVerdict})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Log blocked on a full buffer")
	}
}
