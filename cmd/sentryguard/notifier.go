package main

import (
	"context"
	"fmt"

	"github.com/sentrybot/guard/internal/telegram"
)

// telegramNotifier implements orchestrator.ApprovalNotifier by
// sending the approval prompt as a plain-text message through the
// rate-limited Sender. A real deployment would render inline
// approve/deny buttons instead; spec.md §9 leaves button rendering to
// the front-end, and the core only needs the callback seam.
type telegramNotifier struct {
	sender *telegram.Sender
}

func newTelegramNotifier(sender *telegram.Sender) *telegramNotifier {
	return &telegramNotifier{sender: sender}
}

func (n *telegramNotifier) Notify(ctx context.Context, chatID int64, commandID, command, reason string) error {
	text := fmt.Sprintf("Approval requested (id=%s)\nCommand: %s\nReason: %s\nReply /approve %s or /deny %s",
		commandID, command, reason, commandID, commandID)
	_, err := n.sender.SendMessage(ctx, chatID, text)
	return err
}
