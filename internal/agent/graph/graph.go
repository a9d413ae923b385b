package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/smart-album/server/internal/agent/graph/conversations"
	"github.com/smart-album/server/internal/agent/graph/nodes"
	"github.com/smart-album/server/internal/agent/graph/observers"
	"github.com/smart-album/server/internal/agent/model"
	"github.com/smart-album/server/internal/agent/tools"
	errx "github.com/smart-album/server/internal/core/error"
	logx "github.com/smart-album/server/pkg/logger"
)

// Runner executes the compiled planning graph for one turn and returns the
// planner's final answer text. Retrieved photos travel through the turn
// cache on the context, not through the return value.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (string, error)
}

// Config holds everything needed to compose the planning graph end-to-end.
type Config struct {
	Client           *genai.Client
	Planner          model.PlannerModelConfig
	Prompt           model.PromptConfig
	Conversation     model.ConversationConfig
	ConversationRepo model.ConversationRepository
	Registry         *tools.Registry
}

// GraphConfig holds all configuration needed to build the graph.
type GraphConfig struct {
	ChatModels      *nodes.ChatModels
	MessagesManager *conversations.MessagesManager
	PromptConfig    *model.PromptConfig
	Registry        *tools.Registry
	ToolMaxCalls    int
}

// GraphBuilder handles the construction of the planning graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *schema.Message]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *schema.Message]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (string, error) {
	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return "", classifyInvokeError(err)
	}
	if out == nil {
		return "", nil
	}
	if len(out.Extra) > 0 {
		if b, err := json.Marshal(out.Extra); err == nil {
			logx.Debug().
				Str("session_id", in.SessionID).
				RawJSON("extra", b).
				Msg("Planner turn extras")
		}
	}
	return out.Content, nil
}

// classifyInvokeError makes every graph failure routable. Tool handlers wrap
// their own failures and those kinds survive the graph's error chain; anything
// still unclassified here came out of the chat model or the graph machinery
// itself, which the execution router treats as a provider failure.
func classifyInvokeError(err error) error {
	if err == nil {
		return nil
	}
	var e *errx.Error
	if errors.As(err, &e) {
		return err
	}
	return errx.WrapProvider(err)
}

// BuildPlanningGraph composes the chat model, messages manager and tool
// registry into a compiled graph and returns a Runner.
func BuildPlanningGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("tool registry is nil")
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		Client:        cfg.Client,
		PlannerConfig: &cfg.Planner,
	})
	if err != nil {
		return nil, err
	}

	mm := conversations.NewMessagesManager(cfg.ConversationRepo, cfg.Conversation)

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:      cms,
		MessagesManager: mm,
		PromptConfig:    &cfg.Prompt,
		Registry:        cfg.Registry,
		ToolMaxCalls:    cfg.Conversation.Tools.MaxCalls,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Planning graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled planning graph.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Planner == nil {
		return nil, fmt.Errorf("chat model is not properly initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if config.PromptConfig == nil {
		return nil, fmt.Errorf("prompt config is nil")
	}
	if config.Registry == nil {
		return nil, fmt.Errorf("tool registry is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.setupTools(ctx); err != nil {
		return nil, err
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// setupTools binds the registry to the planner model and adds the tool node.
func (b *GraphBuilder) setupTools(ctx context.Context) error {
	queryTools := b.config.Registry.QueryTools()
	toolInfos, err := tools.ToolInfos(ctx, queryTools)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to get tool infos")
		return fmt.Errorf("failed to get tool infos: %w", err)
	}

	if err := b.config.ChatModels.BindToolsToPlanner(ctx, toolInfos); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools to planner model")
		return fmt.Errorf("failed to bind tools to planner model: %w", err)
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               queryTools,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			// Hallucinated or malformed tool calls come back as a structured
			// note the model can recover from.
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("Unknown or invalid tool call; returning fallback result")
			return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name), nil
		},
		ToolArgumentsHandler: func(ctx context.Context, name, arguments string) (string, error) {
			// Best-effort sanitize; never fail hard here
			var m map[string]any
			if err := json.Unmarshal([]byte(arguments), &m); err != nil {
				return arguments, nil
			}

			switch name {
			case tools.ToolSearchPhotos:
				sanitizeStringArg(m, "query", false)
				sanitizeTopK(m)
			case tools.ToolFilterPhotos:
				sanitizeStringArg(m, "date_text", true)
				sanitizeStringArg(m, "query", true)
				sanitizeTopK(m)
			}

			b, err := json.Marshal(m)
			if err != nil {
				return arguments, nil
			}
			return string(b), nil
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return fmt.Errorf("failed to create tools node: %w", err)
	}

	b.graph.AddToolsNode(nodes.NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(nodes.NewToolExecutorPreHandler(b.config.ToolMaxCalls)),
	)

	return nil
}

// addNodes adds all processing nodes to the graph.
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeContextLoader,
		nodes.NewContextLoaderNode(b.config.MessagesManager, b.config.PromptConfig),
		compose.WithStatePreHandler(nodes.NewContextLoaderPreHandler()),
	)

	b.graph.AddChatModelNode(nodes.NodePlannerChatModel,
		nodes.NewPlannerChatModelNode(b.config.ChatModels.Planner),
		compose.WithStatePreHandler(nodes.NewPlannerChatModelPreHandler(b.config.ToolMaxCalls)),
		compose.WithStatePostHandler(nodes.NewPlannerChatModelPostHandler(b.config.MessagesManager, b.config.ChatModels.PlannerModelName)),
	)
}

// addEdges creates the main flow connections between nodes.
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeContextLoader},
		{nodes.NodeContextLoader, nodes.NodePlannerChatModel},
		{nodes.NodeToolExecutor, nodes.NodePlannerChatModel},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates the tool execution loop branch.
func (b *GraphBuilder) addBranches() error {
	decisionBranch := compose.NewGraphBranch(
		nodes.NewToolExecutorCondition(),
		map[string]bool{
			nodes.NodeToolExecutor: true,
			compose.END:            true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodePlannerChatModel, decisionBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding decision branch")
		return fmt.Errorf("error adding decision branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	// Limit total run steps to avoid infinite loops in branching or tool retries
	maxSteps := 10 + b.config.ToolMaxCalls*2
	if maxSteps < 20 {
		maxSteps = 20
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}

// sanitizeStringArg trims a string argument in place; non-strings are
// coerced, or dropped when the argument is optional.
func sanitizeStringArg(m map[string]any, key string, optional bool) {
	v, ok := m[key]
	if !ok {
		return
	}
	switch vv := v.(type) {
	case string:
		m[key] = strings.TrimSpace(vv)
	default:
		if optional {
			delete(m, key)
			return
		}
		m[key] = strings.TrimSpace(fmt.Sprint(v))
	}
}

// sanitizeTopK coerces top_k to a bounded integer.
func sanitizeTopK(m map[string]any) {
	v, ok := m["top_k"]
	if !ok {
		return
	}
	switch vv := v.(type) {
	case float64:
		// JSON numbers decode as float64
		m["top_k"] = clampInt(int(vv), 1, 50)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(vv)); err == nil {
			m["top_k"] = clampInt(n, 1, 50)
		} else {
			delete(m, "top_k")
		}
	default:
		delete(m, "top_k")
	}
}

// clampInt returns v limited to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
