package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sentrybot/guard/internal/llmproxy"
	"github.com/sentrybot/guard/pkg/models"
)

// ErrTurnStepsExceeded is returned when all maxSteps rounds of an LLM
// loop built with NewLLMTurn return tool calls and none returns a
// final text answer.
var ErrTurnStepsExceeded = errors.New("orchestrator: llm turn exceeded its step budget")

// NewLLMTurn builds a TurnFunc that drives client through the
// tool-call loop spec.md §2 describes: send the transcript so far,
// execute whatever tool calls come back through the ToolDispatch
// this package already guards, fold the results back into the
// transcript, and repeat until the proxy returns plain text or
// maxSteps is exhausted.
func NewLLMTurn(client llmproxy.Client, maxSteps int) TurnFunc {
	if client == nil {
		client = llmproxy.NoopClient{}
	}
	if maxSteps <= 0 {
		maxSteps = 6
	}
	return func(ctx context.Context, req models.ChatTurnRequest, tools *ToolDispatch) (string, error) {
		transcript := req.Message
		for step := 0; step < maxSteps; step++ {
			result, err := client.Complete(ctx, transcript)
			if err != nil {
				return "", fmt.Errorf("llm proxy: %w", err)
			}
			if len(result.ToolCalls) == 0 {
				return result.Text, nil
			}

			var sb strings.Builder
			for _, call := range result.ToolCalls {
				res := tools.Execute(ctx, call)
				writeToolResult(&sb, call, res)
				if res.ApprovalRequired {
					return fmt.Sprintf("Approval requested: %s (id=%s)", res.Error, res.ApprovalID), nil
				}
			}
			transcript = sb.String()
		}
		return "", ErrTurnStepsExceeded
	}
}

func writeToolResult(sb *strings.Builder, call models.ToolCall, res models.ToolResult) {
	fmt.Fprintf(sb, "[tool %s] success=%v", call.Kind, res.Success)
	if res.Output != "" {
		fmt.Fprintf(sb, " output=%q", res.Output)
	}
	if res.Error != "" {
		fmt.Fprintf(sb, " error=%q", res.Error)
	}
	sb.WriteByte('\n')
}
