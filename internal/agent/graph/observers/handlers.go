package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

// executionPath tags every observer log line so planning-path activity is
// distinguishable from fallback activity in mixed logs.
const executionPath = "planning"

// NewAllCallbacks aggregates all observer handlers (prompt, tool, model)
// into one callbacks.Handler.
func NewAllCallbacks() einocb.Handler {
	toolHandler := newToolHandler()
	promptHandler := newPromptHandler()
	modelHandler := newModelHandler()

	return callbackHelper.NewHandlerHelper().
		Tool(toolHandler).
		ChatModel(modelHandler).
		Prompt(promptHandler).
		Handler()
}
