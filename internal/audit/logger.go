// Package audit provides a buffered, async audit trail for the
// guard's policy decisions — command verdicts, path verdicts,
// approval grants/denials, injection rejections — grounded on the
// teacher's internal/audit.Logger (buffered channel, non-blocking
// send with direct-write fallback, slog-backed writeLoop, trace/span
// injection from the request context).
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// EventType tags what kind of decision an Event records.
type EventType string

const (
	EventCommandVerdict  EventType = "command_verdict"
	EventPathVerdict     EventType = "path_verdict"
	EventApprovalStored  EventType = "approval_stored"
	EventApprovalDecided EventType = "approval_decided"
	EventInjectionBlocked EventType = "injection_blocked"
	EventCapacityRefused EventType = "capacity_refused"
)

// Event is one audit record.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	SessionID string
	UserID    string
	TraceID   string
	SpanID    string
	Fields    map[string]any
}

// Config configures the Logger.
type Config struct {
	BufferSize    int
	FlushInterval time.Duration
}

func defaultConfig() Config {
	return Config{BufferSize: 1000, FlushInterval: 5 * time.Second}
}

// Logger buffers Events and writes them to a slog sink asynchronously
// so that audit logging never blocks the decision path it's
// recording.
type Logger struct {
	slogger *slog.Logger
	buffer  chan *Event
	wg      sync.WaitGroup
	done    chan struct{}
}

// New builds a Logger. A nil cfg uses defaultConfig; a nil slogger
// falls back to slog.Default().
func New(cfg *Config, slogger *slog.Logger) *Logger {
	c := defaultConfig()
	if cfg != nil {
		if cfg.BufferSize > 0 {
			c.BufferSize = cfg.BufferSize
		}
		if cfg.FlushInterval > 0 {
			c.FlushInterval = cfg.FlushInterval
		}
	}
	if slogger == nil {
		slogger = slog.Default()
	}
	l := &Logger{
		slogger: slogger.With("component", "audit"),
		buffer:  make(chan *Event, c.BufferSize),
		done:    make(chan struct{}),
	}
	l.wg.Add(1)
	go l.writeLoop()
	return l
}

// Close drains the buffer and stops the write goroutine.
func (l *Logger) Close() {
	close(l.buffer)
	<-l.done
	l.wg.Wait()
}

func (l *Logger) writeLoop() {
	defer close(l.done)
	defer l.wg.Done()
	for ev := range l.buffer {
		l.writeEvent(ev)
	}
}

func (l *Logger) writeEvent(ev *Event) {
	attrs := make([]any, 0, 4+2*len(ev.Fields))
	attrs = append(attrs, "event_id", ev.ID, "event_type", string(ev.Type))
	if ev.SessionID != "" {
		attrs = append(attrs, "session_id", ev.SessionID)
	}
	if ev.UserID != "" {
		attrs = append(attrs, "user_id", ev.UserID)
	}
	if ev.TraceID != "" {
		attrs = append(attrs, "trace_id", ev.TraceID)
	}
	for k, v := range ev.Fields {
		attrs = append(attrs, k, v)
	}
	l.slogger.Info("audit event", attrs...)
}

// Log records an Event, filling in ID/Timestamp/trace context and
// attempting a non-blocking buffered send. If the buffer is full, it
// falls back to writing directly so an event is never silently
// dropped.
func (l *Logger) Log(ctx context.Context, ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		ev.TraceID = sc.TraceID().String()
		ev.SpanID = sc.SpanID().String()
	}
	select {
	case l.buffer <- &ev:
	default:
		l.writeEvent(&ev)
	}
}

// LogCommandVerdict records a C1 decision.
func (l *Logger) LogCommandVerdict(ctx context.Context, sessionID, command, kind, reason string) {
	l.Log(ctx, Event{
		Type:      EventCommandVerdict,
		SessionID: sessionID,
		Fields:    map[string]any{"command": command, "verdict": kind, "reason": reason},
	})
}

// LogPathVerdict records a C2 decision.
func (l *Logger) LogPathVerdict(ctx context.Context, sessionID, path, op, kind, reason string) {
	l.Log(ctx, Event{
		Type:      EventPathVerdict,
		SessionID: sessionID,
		Fields:    map[string]any{"path": path, "op": op, "verdict": kind, "reason": reason},
	})
}

// LogApprovalStored records a C3 store() call.
func (l *Logger) LogApprovalStored(ctx context.Context, sessionID, approvalID, command, reason string) {
	l.Log(ctx, Event{
		Type:      EventApprovalStored,
		SessionID: sessionID,
		Fields:    map[string]any{"approval_id": approvalID, "command": command, "reason": reason},
	})
}

// LogApprovalDecided records a consume()/cancel() outcome.
func (l *Logger) LogApprovalDecided(ctx context.Context, sessionID, approvalID, decision string) {
	l.Log(ctx, Event{
		Type:      EventApprovalDecided,
		SessionID: sessionID,
		Fields:    map[string]any{"approval_id": approvalID, "decision": decision},
	})
}

// LogInjectionBlocked records a C6 rejection.
func (l *Logger) LogInjectionBlocked(ctx context.Context, userID, reason string) {
	l.Log(ctx, Event{
		Type:   EventInjectionBlocked,
		UserID: userID,
		Fields: map[string]any{"reason": reason},
	})
}

// LogCapacityRefused records a C4 capacity refusal.
func (l *Logger) LogCapacityRefused(ctx context.Context, userID string) {
	l.Log(ctx, Event{
		Type:   EventCapacityRefused,
		UserID: userID,
	})
}
