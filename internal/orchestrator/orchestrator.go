// Package orchestrator wires the six guard components into the one
// control flow spec.md §2 describes: incoming text passes the
// injection filter (C6), then the per-user serializer (C4) admits at
// most one in-flight turn per user, then each tool call the caller's
// LLM loop makes is mediated through ToolDispatch (C1 for shell, C2
// for filesystem, C3 for anything dangerous), and finally outbound
// text is paced through the rate limiter (C5) by the caller's sender.
//
// The LLM loop itself is an external collaborator (spec.md's
// "Out of scope" §1): Orchestrator never calls an LLM. It instead
// accepts the loop as a TurnFunc closure and supplies it a
// ToolDispatch to call back into for every tool invocation, the same
// shape as C4's with_user_lock(user_id, turn) contract.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/sentrybot/guard/internal/approval"
	"github.com/sentrybot/guard/internal/audit"
	"github.com/sentrybot/guard/internal/classify"
	"github.com/sentrybot/guard/internal/config"
	"github.com/sentrybot/guard/internal/fsbackend"
	"github.com/sentrybot/guard/internal/injection"
	"github.com/sentrybot/guard/internal/observability"
	"github.com/sentrybot/guard/internal/pathguard"
	"github.com/sentrybot/guard/internal/sandboxrunner"
	"github.com/sentrybot/guard/internal/userlock"
	"github.com/sentrybot/guard/pkg/models"
)

// ErrCapacityExceeded is returned when the per-user serializer is at
// the global active-user cap and userID has no turn already running.
var ErrCapacityExceeded = userlock.ErrCapacityExceeded

// ErrInjectionDetected is returned when C6 flags the inbound message;
// the caller should send the sarcastic deflection and never reach the
// LLM loop.
var ErrInjectionDetected = errors.New("orchestrator: prompt injection detected")

// ApprovalNotifier is the callback injection seam from spec.md §9:
// the front-end implements this to render approve/deny UI when C1
// returns Dangerous. The core owns no UI knowledge; it only calls
// Notify with what the front-end needs to render the prompt.
type ApprovalNotifier interface {
	Notify(ctx context.Context, chatID int64, commandID, command, reason string) error
}

// NoopNotifier drops every notification. Safe default wiring when no
// front-end has registered a real notifier yet.
type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, chatID int64, commandID, command, reason string) error {
	return nil
}

// TurnFunc is the LLM loop collaborator: given the inbound request
// and a ToolDispatch bound to this turn's session, it runs however
// many tool calls it needs and returns the final response text.
type TurnFunc func(ctx context.Context, req models.ChatTurnRequest, tools *ToolDispatch) (string, error)

// Orchestrator composes C1-C6 into the turn-handling control flow.
// Construct with New; the zero value is not usable.
type Orchestrator struct {
	classifier *classify.Classifier
	pathguard  *pathguard.Guard
	approvals  *approval.Store
	serializer *userlock.Serializer
	injection  *injection.Filter
	sandbox    sandboxrunner.Runner
	fs         fsbackend.Backend
	notifier   ApprovalNotifier
	audit      *audit.Logger
	metrics    *observability.Metrics
	logger     *observability.Logger
	tracer     *observability.Tracer
	settings   config.Settings

	tracerShutdown func(context.Context) error
}

// Deps bundles the collaborators an Orchestrator is built from. Any
// nil field falls back to a safe default.
type Deps struct {
	Classifier *classify.Classifier
	PathGuard  *pathguard.Guard
	Approvals  *approval.Store
	Serializer *userlock.Serializer
	Injection  *injection.Filter
	Sandbox    sandboxrunner.Runner
	FS         fsbackend.Backend
	Notifier   ApprovalNotifier
	Audit      *audit.Logger
	Metrics    *observability.Metrics
	Logger     *observability.Logger
	Tracer     *observability.Tracer
	Settings   config.Settings
}

// New builds an Orchestrator from deps, filling in defaults for any
// collaborator not supplied.
func New(deps Deps) *Orchestrator {
	if deps.Classifier == nil {
		deps.Classifier = classify.New(nil)
	}
	if deps.PathGuard == nil {
		deps.PathGuard = pathguard.New()
	}
	if deps.Approvals == nil {
		deps.Approvals = approval.New(deps.Settings.ApprovalTTL)
	}
	if deps.Serializer == nil {
		deps.Serializer = userlock.New(deps.Settings.MaxConcurrentUsers)
	}
	if deps.Injection == nil {
		deps.Injection = injection.New(nil)
	}
	if deps.Sandbox == nil {
		deps.Sandbox = sandboxrunner.NoopRunner{}
	}
	if deps.FS == nil {
		deps.FS = fsbackend.NoopBackend{}
	}
	if deps.Notifier == nil {
		deps.Notifier = NoopNotifier{}
	}
	if deps.Audit == nil {
		deps.Audit = audit.New(nil, nil)
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NewMetrics(nil)
	}
	if deps.Logger == nil {
		deps.Logger = observability.New(observability.Config{})
	}
	var tracerShutdown func(context.Context) error
	if deps.Tracer == nil {
		deps.Tracer, tracerShutdown = observability.NewTracer(observability.TraceConfig{})
	}
	return &Orchestrator{
		classifier: deps.Classifier,
		pathguard:  deps.PathGuard,
		approvals:  deps.Approvals,
		serializer: deps.Serializer,
		injection:  deps.Injection,
		sandbox:    deps.Sandbox,
		fs:         deps.FS,
		notifier:   deps.Notifier,
		audit:      deps.Audit,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		tracer:     deps.Tracer,
		settings:   deps.Settings,

		tracerShutdown: tracerShutdown,
	}
}

// Close releases the background goroutines owned by the approval
// store and per-user serializer, and shuts down any tracer provider
// this Orchestrator created itself (a tracer supplied via Deps.Tracer
// is the caller's to shut down).
func (o *Orchestrator) Close() {
	o.approvals.Close()
	o.serializer.Close()
	if o.tracerShutdown != nil {
		_ = o.tracerShutdown(context.Background())
	}
}

func chatScope(chatID int64) models.ChatScope {
	if chatID < 0 {
		return models.ScopeGroup
	}
	return models.ScopePrivate
}

func userKey(userID int64) string { return fmt.Sprintf("%d", userID) }

// HandleChatTurn implements spec.md §2's control flow: C6 rejects an
// injected message outright; otherwise C4 admits at most one
// in-flight turn for req.UserID and hands turn a ToolDispatch bound
// to this request so every tool call it makes passes through C1/C2/C3.
func (o *Orchestrator) HandleChatTurn(ctx context.Context, req models.ChatTurnRequest, turn TurnFunc) (models.ChatTurnResponse, error) {
	ctx, span := o.tracer.Start(ctx, "chat_turn")
	defer span.End()

	if o.injection.IsInjection(req.Message) {
		reason := o.injection.Reason(req.Message)
		o.metrics.RecordInjectionHit()
		o.audit.LogInjectionBlocked(ctx, userKey(req.UserID), reason)
		return models.ChatTurnResponse{Response: sarcasticDeflection()}, ErrInjectionDetected
	}

	key := userKey(req.UserID)
	if !o.serializer.CanAccept(key) {
		o.audit.LogCapacityRefused(ctx, key)
		return models.ChatTurnResponse{}, ErrCapacityExceeded
	}

	dispatch := &ToolDispatch{o: o, req: req}
	text, err := userlock.WithUserLock(ctx, o.serializer, key, func(ctx context.Context) (string, error) {
		o.serializer.MarkActive(key)
		defer o.serializer.MarkInactive(key)
		return turn(ctx, req, dispatch)
	})
	if err != nil {
		return models.ChatTurnResponse{}, err
	}
	return models.ChatTurnResponse{Response: text}, nil
}

// ClearSession drops pending approvals for sessionID, per spec.md §6's
// "clear session" operation. Conversational memory itself is an
// out-of-scope collaborator's concern.
func (o *Orchestrator) ClearSession(sessionID string) {
	for _, rec := range o.approvals.ListBySession(sessionID) {
		o.approvals.Cancel(rec.ID)
	}
}

// ApproveCommand consumes a pending approval and hands the command to
// the sandbox runner. Returns (result, false) if no live record
// exists for id (already consumed, canceled, or TTL-expired).
func (o *Orchestrator) ApproveCommand(ctx context.Context, id string) (models.ToolResult, bool) {
	ctx, span := o.tracer.Start(ctx, "approve_command")
	defer span.End()

	rec, ok := o.approvals.Consume(id)
	if !ok {
		return models.ToolResult{}, false
	}
	o.audit.LogApprovalDecided(ctx, rec.SessionID, id, "approved")
	o.metrics.ApprovalResolved("consumed")

	res, err := o.sandbox.Run(ctx, rec.Command, rec.Cwd)
	if err != nil {
		return models.ToolResult{Success: false, Error: err.Error()}, true
	}
	return models.ToolResult{Success: res.Succeeded(), Output: o.logger.Redact(res.Output), Error: errString(res.Err)}, true
}

// DenyCommand cancels a pending approval without executing it.
func (o *Orchestrator) DenyCommand(ctx context.Context, id string) bool {
	ok := o.approvals.Cancel(id)
	if ok {
		o.audit.LogApprovalDecided(ctx, "", id, "denied")
		o.metrics.ApprovalResolved("canceled")
	}
	return ok
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func sarcasticDeflection() string {
	return "Nice try. I'm not forgetting my instructions today."
}
