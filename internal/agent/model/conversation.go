package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// ConversationRepository persists per-session message history. Both
// execution paths read and append through the same repository, so the
// fallback sees everything the planning path said and vice versa.
type ConversationRepository interface {
	// AddMessage appends a message to the session's history
	AddMessage(ctx context.Context, sessionID string, message *schema.Message) error

	// LoadHistory retrieves the session's history
	LoadHistory(ctx context.Context, sessionID string) (*ConversationHistory, error)

	// ClearHistory removes all history for a session
	ClearHistory(ctx context.Context, sessionID string) error

	// GetMessageCount returns the number of messages in the session
	GetMessageCount(ctx context.Context, sessionID string) (int, error)
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	SessionID string
	Messages  []*schema.Message
}
