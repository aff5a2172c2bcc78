// Package llmproxy defines the hand-off boundary between the guard
// and the external LLM proxy (spec.md §1: "The LLM proxy and model
// invocation (treated as an opaque request/response)"). The guard
// never sees the real API key or base URL; the proxy substitutes
// those. Grounded on the same Runner/Backend seam shape used for the
// sandbox and filesystem collaborators: a narrow interface plus a
// Noop default for wiring that hasn't configured a real proxy yet.
package llmproxy

import (
	"context"
	"errors"

	"github.com/sentrybot/guard/pkg/models"
)

// ErrNoProxy is returned by NoopClient's Complete.
var ErrNoProxy = errors.New("llmproxy: no LLM proxy configured")

// CompletionResult is one round of the LLM loop: either Text is the
// final answer, or ToolCalls lists what the model wants to invoke
// next (mutually exclusive in practice, but the core does not enforce
// that — it is the proxy's contract to honor).
type CompletionResult struct {
	Text      string
	ToolCalls []models.ToolCall
}

// Client sends chat-completions requests to the OpenAI-compatible
// proxy described in spec.md §6. prompt carries the running
// transcript the caller's turn loop has assembled so far.
type Client interface {
	Complete(ctx context.Context, prompt string) (CompletionResult, error)
}

// NoopClient refuses every completion. Safe default wiring when no
// real proxy endpoint has been configured.
type NoopClient struct{}

func (NoopClient) Complete(ctx context.Context, prompt string) (CompletionResult, error) {
	return CompletionResult{}, ErrNoProxy
}
