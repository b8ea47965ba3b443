package history

import (
	"context"
	"strings"
	"time"
)

// Turn stores one completed exchange: a user utterance paired with the
// assistant's response, tagged with the owning session. Turns are immutable
// once written.
type Turn struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	UserText     string    `json:"user_text"`
	ResponseText string    `json:"response_text"`
	ActionType   string    `json:"action_type,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists and retrieves conversation turns.
type Store interface {
	Append(ctx context.Context, turn Turn) error
	RecentForSession(ctx context.Context, sessionID string, limit int) ([]Turn, error)
	Close() error
}

// Summarize renders recent turns as a plain-text context block for the
// interpreter prompt, oldest first.
func Summarize(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range turns {
		if strings.TrimSpace(t.UserText) != "" {
			b.WriteString("user: ")
			b.WriteString(strings.TrimSpace(t.UserText))
			b.WriteByte('\n')
		}
		if strings.TrimSpace(t.ResponseText) != "" {
			b.WriteString("assistant: ")
			b.WriteString(strings.TrimSpace(t.ResponseText))
			b.WriteByte('\n')
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
