package fallback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"

	"github.com/smart-album/server/internal/agent/graph/prompts"
	"github.com/smart-album/server/internal/agent/model"
	"github.com/smart-album/server/internal/agent/tools"
	errx "github.com/smart-album/server/internal/core/error"
	logx "github.com/smart-album/server/pkg/logger"
)

const executionPath = "fallback"

// Executor is the degraded-mode agent: a single round of function calling
// against the same tool registry the planning graph uses. One completion
// proposes tool calls, the tools run, one more completion produces the
// answer. No planning loop.
type Executor struct {
	client   *openai.Client
	model    string
	registry *tools.Registry
	repo     model.ConversationRepository
	prompt   model.PromptConfig
	maxTurns int
}

// New builds the fallback executor. The model identifier is mandatory;
// refusing to start beats failing on the first degraded turn.
func New(cfg model.FallbackModelConfig, promptCfg model.PromptConfig, convCfg model.ConversationConfig, registry *tools.Registry, repo model.ConversationRepository) (*Executor, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errx.New(errors.New("fallback model is not configured"), errx.KindConfig, errx.SystemErrorMessage)
	}
	if registry == nil {
		return nil, errx.New(errors.New("tool registry is nil"), errx.KindConfig, errx.SystemErrorMessage)
	}
	if repo == nil {
		return nil, errx.New(errors.New("conversation repo is nil"), errx.KindConfig, errx.SystemErrorMessage)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Executor{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		registry: registry,
		repo:     repo,
		prompt:   promptCfg,
		maxTurns: convCfg.MaxTurns,
	}, nil
}

// Run executes one degraded turn and returns the answer text. Retrieved
// photos land in the turn cache on the context, exactly as on the planning
// path.
func (e *Executor) Run(ctx context.Context, in model.QueryInput) (string, error) {
	systemPrompt, err := prompts.RenderSystem(ctx, e.prompt)
	if err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}

	history, err := e.loadHistory(ctx, in)
	if err != nil {
		return "", err
	}

	reqMsgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	reqMsgs = append(reqMsgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	reqMsgs = append(reqMsgs, history...)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    e.model,
		Messages: reqMsgs,
		Tools:    e.registry.OpenAITools(),
	})
	if err != nil {
		return "", errx.WrapProvider(fmt.Errorf("fallback completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", errx.WrapProvider(errors.New("fallback completion returned no choices"))
	}

	choice := resp.Choices[0].Message
	if len(choice.ToolCalls) == 0 {
		return e.finish(ctx, in.SessionID, choice.Content)
	}

	logx.Debug().
		Str("path", executionPath).
		Str("session_id", in.SessionID).
		Int("tool_calls", len(choice.ToolCalls)).
		Msg("Executing fallback tool calls")

	reqMsgs = append(reqMsgs, choice)
	for _, tc := range choice.ToolCalls {
		result, err := e.registry.Dispatch(ctx, tc.Function.Name, tc.Function.Arguments)
		if err != nil {
			if errx.IsToolContract(err) {
				// Give the model a structured note instead of aborting the
				// turn; degraded mode has no second chance after this.
				logx.Warn().
					Str("path", executionPath).
					Str("tool", tc.Function.Name).
					Err(err).
					Msg("Tool contract violation in fallback; feeding error back")
				result = fmt.Sprintf("{\"error\":%q}", err.Error())
			} else {
				return "", err
			}
		}
		reqMsgs = append(reqMsgs, openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			Content:    result,
			ToolCallID: tc.ID,
		})
	}

	final, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    e.model,
		Messages: reqMsgs,
	})
	if err != nil {
		return "", errx.WrapProvider(fmt.Errorf("fallback final completion: %w", err))
	}
	if len(final.Choices) == 0 {
		return "", errx.WrapProvider(errors.New("fallback final completion returned no choices"))
	}

	return e.finish(ctx, in.SessionID, final.Choices[0].Message.Content)
}

// loadHistory returns the windowed session history as completion messages,
// appending the current user message if the planning attempt died before
// recording it.
func (e *Executor) loadHistory(ctx context.Context, in model.QueryInput) ([]openai.ChatCompletionMessage, error) {
	history, err := e.repo.LoadHistory(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	msgs := history.Messages
	if e.maxTurns > 0 && len(msgs) > e.maxTurns {
		msgs = msgs[len(msgs)-e.maxTurns:]
	}

	recorded := false
	out := make([]openai.ChatCompletionMessage, 0, len(msgs)+1)
	for _, m := range msgs {
		if m == nil || m.Content == "" {
			continue
		}
		switch m.Role {
		case schema.User:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: m.Content})
			if m.Content == in.Query {
				recorded = true
			}
		case schema.Assistant:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.Content})
			recorded = false
		}
	}

	if !recorded {
		if err := e.repo.AddMessage(ctx, in.SessionID, schema.UserMessage(in.Query)); err != nil {
			logx.Error().
				Str("path", executionPath).
				Str("session_id", in.SessionID).
				Err(err).
				Msg("Error recording user message in fallback")
		}
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: in.Query})
	}

	return out, nil
}

// finish persists the answer and hands it back.
func (e *Executor) finish(ctx context.Context, sessionID, answer string) (string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", errx.WrapProvider(errors.New("fallback produced an empty answer"))
	}
	if err := e.repo.AddMessage(ctx, sessionID, schema.AssistantMessage(answer, nil)); err != nil {
		logx.Error().
			Str("path", executionPath).
			Str("session_id", sessionID).
			Err(err).
			Msg("Error saving fallback answer")
	}
	return answer, nil
}
