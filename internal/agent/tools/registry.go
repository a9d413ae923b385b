package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/smart-album/server/internal/album/filter"
	"github.com/smart-album/server/internal/album/query"
	"github.com/smart-album/server/internal/album/retrieval"
	"github.com/smart-album/server/internal/album/store"
	errx "github.com/smart-album/server/internal/core/error"
)

const (
	ToolSearchPhotos = "search_photos"
	ToolFilterPhotos = "filter_photos"
	ToolAlbumSchema  = "album_schema"
	ToolCurrentTime  = "current_time"
)

const (
	defaultTopK = 10
	maxTopK     = 50
)

// Retriever is the retrieval orchestrator collaborator.
type Retriever interface {
	Retrieve(ctx context.Context, semanticText string, spec filter.Spec, topK int) (retrieval.Result, error)
}

// FilterBuilder resolves date expressions and tags into a filter spec.
type FilterBuilder interface {
	Build(ctx context.Context, expr query.DateExpression, tags []string) (filter.Spec, error)
}

// SchemaDescriber exposes store schema introspection.
type SchemaDescriber interface {
	Describe(ctx context.Context) (store.Schema, error)
}

// Registry is the fixed set of callable tools. Every tool behaves
// identically no matter which execution path invokes it: the planning graph
// calls through the eino tool wrappers, the fallback calls through
// Dispatch, and both end in the same typed handlers.
type Registry struct {
	retriever Retriever
	builder   FilterBuilder
	describer SchemaDescriber

	// Now is replaceable in tests.
	Now func() time.Time
}

func NewRegistry(retriever Retriever, builder FilterBuilder, describer SchemaDescriber) *Registry {
	return &Registry{
		retriever: retriever,
		builder:   builder,
		describer: describer,
		Now:       time.Now,
	}
}

// QueryTools returns the registry as eino tools for the planning graph.
func (r *Registry) QueryTools() []tool.BaseTool {
	return []tool.BaseTool{
		utils.NewTool(searchPhotosInfo(), r.searchPhotos),
		utils.NewTool(filterPhotosInfo(), r.filterPhotos),
		utils.NewTool(albumSchemaInfo(), r.albumSchema),
		utils.NewTool(currentTimeInfo(), r.currentTime),
	}
}

// ToolInfos extracts the declared tool schemas for model binding.
func ToolInfos(ctx context.Context, tools []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("get tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Dispatch executes a tool by name with raw JSON arguments. Used by the
// fallback function-calling path; malformed arguments and unknown names are
// tool contract violations.
func (r *Registry) Dispatch(ctx context.Context, name, argsJSON string) (string, error) {
	switch name {
	case ToolSearchPhotos:
		return dispatch(ctx, argsJSON, r.searchPhotos)
	case ToolFilterPhotos:
		return dispatch(ctx, argsJSON, r.filterPhotos)
	case ToolAlbumSchema:
		return dispatch(ctx, argsJSON, r.albumSchema)
	case ToolCurrentTime:
		return dispatch(ctx, argsJSON, r.currentTime)
	default:
		return "", errx.WrapToolContract(fmt.Errorf("unknown tool %q", name))
	}
}

func dispatch[I any, O any](ctx context.Context, argsJSON string, handler func(context.Context, I) (O, error)) (string, error) {
	if argsJSON == "" {
		argsJSON = "{}"
	}
	var in I
	if err := json.Unmarshal([]byte(argsJSON), &in); err != nil {
		return "", errx.WrapToolContract(fmt.Errorf("decode arguments: %w", err))
	}
	out, err := handler(ctx, in)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(b), nil
}
