package models

import "time"

// PendingCommand is a dangerous command awaiting a human approve/deny
// decision. It is held by the approval store until consumed or it
// expires past its TTL.
type PendingCommand struct {
	ID        string
	SessionID string
	ChatID    int64
	Command   string
	Cwd       string
	Reason    string
	CreatedAt time.Time
}
