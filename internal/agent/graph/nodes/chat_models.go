package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/smart-album/server/internal/agent/model"
	logx "github.com/smart-album/server/pkg/logger"
)

// ChatModelConfig holds the configuration for planner model creation.
type ChatModelConfig struct {
	Client        *genai.Client
	PlannerConfig *model.PlannerModelConfig
}

// ChatModels holds the planner chat model.
type ChatModels struct {
	Planner          *gemini.ChatModel
	PlannerModelName string
}

// NewChatModels creates the planner chat model over a shared genai client.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("genai client is nil")
	}

	planner, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      config.Client,
		Model:       config.PlannerConfig.Model,
		Temperature: &config.PlannerConfig.Temperature,
		MaxTokens:   &config.PlannerConfig.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(int32(2000)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating planner model")
		return nil, fmt.Errorf("error creating planner model: %w", err)
	}

	return &ChatModels{
		Planner:          planner,
		PlannerModelName: config.PlannerConfig.Model,
	}, nil
}

// BindToolsToPlanner binds the registry tools to the planner chat model.
func (cm *ChatModels) BindToolsToPlanner(ctx context.Context, tools []*schema.ToolInfo) error {
	if err := cm.Planner.BindTools(tools); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools")
		return fmt.Errorf("failed to bind tools: %w", err)
	}

	logx.Debug().Msg("Successfully bound tools to planner model")
	return nil
}

// NewPlannerChatModelNode wraps the planner chat model for use as a node.
func NewPlannerChatModelNode(chatModel *gemini.ChatModel) *gemini.ChatModel {
	return chatModel
}
