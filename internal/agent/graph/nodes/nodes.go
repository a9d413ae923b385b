package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/smart-album/server/internal/agent/graph/conversations"
	"github.com/smart-album/server/internal/agent/graph/prompts"
	"github.com/smart-album/server/internal/agent/model"
	logx "github.com/smart-album/server/pkg/logger"
)

// Node names used when wiring the planning graph.
const (
	NodeContextLoader    = "ContextLoader"
	NodePlannerChatModel = "PlannerChatModel"
	NodeToolExecutor     = "ToolExecutor"
)

// NewContextLoaderPreHandler creates the pre-handler for the ContextLoader
// node. Each turn starts from a clean slate: counters, limit flag and cost.
func NewContextLoaderPreHandler() func(context.Context, model.QueryInput, *model.AppState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AppState) (model.QueryInput, error) {
		if s.SessionID == "" {
			s.SessionID = in.SessionID
		}
		s.ToolCallCount = 0
		s.ToolCallLimitReached = false
		s.ToolCallIDSeq = 0
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewContextLoaderNode creates the ContextLoader node: it records the user
// message, renders the system prompt and assembles the planner context.
func NewContextLoaderNode(
	mm *conversations.MessagesManager,
	promptCfg *model.PromptConfig,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.QueryInput) ([]*schema.Message, error) {
		if err := mm.RecordUserMessage(ctx, input.SessionID, input.Query); err != nil {
			return nil, fmt.Errorf("record user message: %w", err)
		}

		systemPrompt, err := prompts.RenderSystem(ctx, *promptCfg)
		if err != nil {
			return nil, fmt.Errorf("render system prompt: %w", err)
		}

		messages, err := mm.BuildPlannerContext(ctx, input.SessionID, systemPrompt)
		if err != nil {
			return nil, fmt.Errorf("build planner context: %w", err)
		}

		return messages, nil
	})
}

// NewPlannerChatModelPreHandler creates the pre-handler for the planner
// model node. It accumulates incoming messages into state history and, once
// the tool budget is spent, injects a wrap-up notice so the model answers
// from what it already gathered.
func NewPlannerChatModelPreHandler(maxToolCalls int) func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.AppState) ([]*schema.Message, error) {
		// Gemini OpenAI-compat can drop tool_call_id on tool results; restore
		// it from the most recent assistant tool call.
		if len(in) > 0 {
			last := in[len(in)-1]
			if last != nil && last.Role == schema.Tool && strings.TrimSpace(last.ToolCallID) == "" {
				for i := len(state.History) - 1; i >= 0; i-- {
					msg := state.History[i]
					if msg == nil || msg.Role != schema.Assistant || len(msg.ToolCalls) == 0 {
						continue
					}
					if id := msg.ToolCalls[0].ID; strings.TrimSpace(id) != "" {
						last.ToolCallID = id
					}
					break
				}
			}
		}

		state.History = append(state.History, in...)

		if checkAndMarkToolLimit(state, maxToolCalls) {
			maxToolCalls = normalizeMaxToolCalls(maxToolCalls)
			wrapUp := &schema.Message{
				Role: schema.System,
				Content: fmt.Sprintf(
					"SYSTEM NOTICE: You have reached the maximum tool call limit (%d). "+
						"Answer the user now from the photos already retrieved, and say so if something is missing.",
					maxToolCalls,
				),
			}
			state.History = append(state.History, wrapUp)
		}

		logx.Debug().Msg("Planner thinking...")

		return state.History, nil
	}
}

// NewPlannerChatModelPostHandler creates the post-handler for the planner
// model node: usage cost accounting, tool_call_id synthesis and persisting
// the final answer.
func NewPlannerChatModelPostHandler(
	mm *conversations.MessagesManager,
	modelName string,
) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		if model.CostEnabled() && out != nil && out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			pricing := model.ResolvePricing(modelName)
			inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
			if out.Extra == nil {
				out.Extra = map[string]any{}
			}
			out.Extra["usage_cost"] = map[string]any{
				"currency":          "USD",
				"model":             modelName,
				"prompt_tokens":     out.ResponseMeta.Usage.PromptTokens,
				"completion_tokens": out.ResponseMeta.Usage.CompletionTokens,
				"total_tokens":      out.ResponseMeta.Usage.TotalTokens,
				"input_cost":        inC,
				"output_cost":       outC,
				"total_cost":        totalC,
			}
			logx.Debug().
				Str("session_id", state.SessionID).
				Str("node", NodePlannerChatModel).
				Str("model", modelName).
				Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
				Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
				Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
				Float64("input_cost_usd", inC).
				Float64("output_cost_usd", outC).
				Float64("total_cost_usd", totalC).
				Msg("LLM usage")

			state.TotalCostUSD += totalC
			out.Extra["usage_cost_total_usd"] = state.TotalCostUSD
		}

		// Some providers omit tool_call IDs; synthesize stable local ones.
		if out != nil && len(out.ToolCalls) > 0 {
			for i := range out.ToolCalls {
				if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
					state.ToolCallIDSeq++
					out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
				}
			}
		}

		state.History = append(state.History, out)

		if len(out.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(out.ToolCalls)).Msg("Calling tools")
		} else {
			logx.Debug().Msg("Planner answer ready")
		}

		// Persist only final assistant answers: no pending tool calls, or the
		// limit was hit but the model still produced content.
		if out.Role == schema.Assistant && (len(out.ToolCalls) == 0 || state.ToolCallLimitReached) && strings.TrimSpace(out.Content) != "" {
			if err := mm.SaveResponse(ctx, state.SessionID, out.Content); err != nil {
				logx.Error().
					Str("session_id", state.SessionID).
					Err(err).
					Msg("Error saving assistant answer")
			} else {
				logx.Debug().
					Str("session_id", state.SessionID).
					Msg("Saved assistant answer to history")
			}
		}

		return out, nil
	}
}

// NewToolExecutorCondition creates the condition routing from the planner
// model to the tool executor or to the end of the graph.
func NewToolExecutorCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		var limitReached bool
		compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			limitReached = state.ToolCallLimitReached
			return nil
		})

		if limitReached {
			logx.Debug().Msg("Tool limit reached previously - routing to end")
			return compose.END, nil
		}

		if len(input.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(input.ToolCalls)).Msg("Routing to ToolExecutor")
			return NodeToolExecutor, nil
		}

		logx.Debug().Msg("No tool calls - continuing to end")
		return compose.END, nil
	}
}

// NewToolExecutorPreHandler creates the pre-handler for the ToolExecutor
// node, maintaining the per-turn tool call budget.
func NewToolExecutorPreHandler(maxToolCalls int) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *model.AppState) (*schema.Message, error) {
		exceeded := incrementToolCallAndCheck(state, maxToolCalls)

		logx.Debug().
			Int("tool_call_count", state.ToolCallCount).
			Str("session_id", state.SessionID).
			Msg("Tool execution attempt")

		if exceeded {
			maxToolCalls = normalizeMaxToolCalls(maxToolCalls)
			logx.Warn().
				Int("tool_call_count", state.ToolCallCount).
				Int("max_tool_calls", maxToolCalls).
				Str("session_id", state.SessionID).
				Msg("Tool call limit exceeded - flagging and continuing")
		}

		return in, nil
	}
}
