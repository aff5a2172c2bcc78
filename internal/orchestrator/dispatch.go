package orchestrator

import (
	"context"

	"github.com/sentrybot/guard/internal/audit"
	"github.com/sentrybot/guard/pkg/models"
)

// ToolDispatch is the tagged-enumeration dispatcher from SPEC_FULL.md's
// "dynamic tool dispatch" design note: one Execute method switches on
// ToolCall.Kind rather than a tool name string, so adding a tool kind
// means extending the enum and this switch, not routing logic spread
// across callers.
type ToolDispatch struct {
	o   *Orchestrator
	req models.ChatTurnRequest
}

// Execute mediates one tool call through the classifier appropriate
// to its kind and, if allowed, hands off to the sandbox or filesystem
// collaborator.
func (d *ToolDispatch) Execute(ctx context.Context, call models.ToolCall) models.ToolResult {
	switch call.Kind {
	case models.ToolShellExec:
		return d.execShell(ctx, call)
	case models.ToolFileRead:
		return d.execFileRead(ctx, call)
	case models.ToolFileWrite:
		return d.execFileWrite(ctx, call)
	case models.ToolFileList:
		return d.execFileList(ctx, call)
	default:
		return models.ToolResult{Success: false, Error: "unknown tool kind"}
	}
}

func (d *ToolDispatch) execShell(ctx context.Context, call models.ToolCall) models.ToolResult {
	scope := chatScope(d.req.ChatID)
	decision := d.o.classifier.ClassifyInScope(call.Command, scope)
	d.o.metrics.RecordCommandVerdict(string(decision.Kind))
	d.o.audit.LogCommandVerdict(ctx, d.req.SessionID, call.Command, string(decision.Kind), decision.Reason)

	switch decision.Kind {
	case models.Forbidden:
		return models.ToolResult{Success: false, Error: decision.Reason}
	case models.Dangerous:
		id, err := d.o.approvals.Store(d.req.SessionID, d.req.ChatID, call.Command, call.Cwd, decision.Reason)
		if err != nil {
			return models.ToolResult{Success: false, Error: "failed to queue approval"}
		}
		d.o.metrics.ApprovalStored()
		d.o.audit.LogApprovalStored(ctx, d.req.SessionID, id, call.Command, decision.Reason)
		if err := d.o.notifier.Notify(ctx, d.req.ChatID, id, call.Command, decision.Reason); err != nil {
			d.o.audit.Log(ctx, audit.Event{
				Type:      audit.EventApprovalStored,
				SessionID: d.req.SessionID,
				Fields:    map[string]any{"approval_id": id, "notify_error": err.Error()},
			})
		}
		return models.ToolResult{Success: false, ApprovalRequired: true, ApprovalID: id, Error: decision.Reason}
	default:
		res, err := d.o.sandbox.Run(ctx, call.Command, call.Cwd)
		if err != nil {
			return models.ToolResult{Success: false, Error: err.Error()}
		}
		// Supplemented feature: redact secret-shaped substrings from
		// sandbox output before it is ever relayed to the user.
		return models.ToolResult{Success: res.Succeeded(), Output: d.o.logger.Redact(res.Output), Error: errString(res.Err)}
	}
}

func (d *ToolDispatch) execFileRead(ctx context.Context, call models.ToolCall) models.ToolResult {
	decision := d.o.pathguard.CheckRead(call.Path, call.Cwd)
	d.o.metrics.RecordPathVerdict("read", string(decision.Kind))
	d.o.audit.LogPathVerdict(ctx, d.req.SessionID, call.Path, "read", string(decision.Kind), decision.Reason)
	if decision.IsBlocked() {
		return models.ToolResult{Success: false, Error: decision.Reason}
	}
	content, err := d.o.fs.ReadFile(ctx, call.Path)
	if err != nil {
		return models.ToolResult{Success: false, Error: err.Error()}
	}
	return models.ToolResult{Success: true, Output: string(content)}
}

func (d *ToolDispatch) execFileWrite(ctx context.Context, call models.ToolCall) models.ToolResult {
	decision := d.o.pathguard.CheckWrite(call.Path, call.Cwd)
	d.o.metrics.RecordPathVerdict("write", string(decision.Kind))
	d.o.audit.LogPathVerdict(ctx, d.req.SessionID, call.Path, "write", string(decision.Kind), decision.Reason)
	if decision.IsBlocked() {
		return models.ToolResult{Success: false, Error: decision.Reason}
	}
	if err := d.o.fs.WriteFile(ctx, call.Path, call.Content); err != nil {
		return models.ToolResult{Success: false, Error: err.Error()}
	}
	return models.ToolResult{Success: true}
}

func (d *ToolDispatch) execFileList(ctx context.Context, call models.ToolCall) models.ToolResult {
	decision := d.o.pathguard.CheckList(call.Path, call.Cwd)
	d.o.metrics.RecordPathVerdict("list", string(decision.Kind))
	d.o.audit.LogPathVerdict(ctx, d.req.SessionID, call.Path, "list", string(decision.Kind), decision.Reason)
	if decision.IsBlocked() {
		return models.ToolResult{Success: false, Error: decision.Reason}
	}
	entries, err := d.o.fs.ListDir(ctx, call.Path)
	if err != nil {
		return models.ToolResult{Success: false, Error: err.Error()}
	}
	return models.ToolResult{Success: true, Entries: entries}
}
