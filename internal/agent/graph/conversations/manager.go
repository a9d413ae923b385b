package conversations

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/smart-album/server/internal/agent/model"
)

// MessagesManager mediates between the graph and the conversation store.
// It owns the history window: callers never see more than maxTurns messages.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
	maxTurns         int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		maxTurns:         config.MaxTurns,
	}
}

// RecordUserMessage appends the user's turn to the session history.
func (cm *MessagesManager) RecordUserMessage(ctx context.Context, sessionID string, query string) error {
	return cm.conversationRepo.AddMessage(ctx, sessionID, schema.UserMessage(query))
}

// BuildPlannerContext assembles the message list for the planner model:
// system prompt first, then the windowed session history. The current user
// message is already in the history by the time this runs.
func (cm *MessagesManager) BuildPlannerContext(ctx context.Context, sessionID string, systemPrompt string) ([]*schema.Message, error) {
	history, err := cm.conversationRepo.LoadHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
	}
	messages = append(messages, trimTail(history.Messages, cm.maxTurns)...)

	return messages, nil
}

// SaveResponse persists a final assistant answer.
func (cm *MessagesManager) SaveResponse(ctx context.Context, sessionID string, content string) error {
	assistantMsg := schema.AssistantMessage(content, nil)
	return cm.conversationRepo.AddMessage(ctx, sessionID, assistantMsg)
}

// trimTail keeps the most recent maxTurns messages, copying so callers can
// append without aliasing the stored slice.
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
