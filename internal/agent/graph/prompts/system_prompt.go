package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/smart-album/server/internal/agent/model"
	"github.com/smart-album/server/internal/agent/tools"
)

//go:embed template/system_prompt.txt
var coreSystemPrompt string

// RenderSystem renders the planner system prompt. Rendering goes through the
// Eino prompt component so prompt callbacks fire.
func RenderSystem(ctx context.Context, config model.PromptConfig) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(coreSystemPrompt),
	)
	vars := map[string]any{
		"AlbumName":  config.AlbumName,
		"SearchTool": tools.ToolSearchPhotos,
		"FilterTool": tools.ToolFilterPhotos,
		"SchemaTool": tools.ToolAlbumSchema,
		"TimeTool":   tools.ToolCurrentTime,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}
