package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smart-album/server/internal/album/query"
	"github.com/smart-album/server/internal/album/retrieval"
	"github.com/smart-album/server/internal/agent/session"
	errx "github.com/smart-album/server/internal/core/error"
	logx "github.com/smart-album/server/pkg/logger"
)

// SearchPhotosInput is the argument shape for search_photos.
type SearchPhotosInput struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// FilterPhotosInput is the argument shape for filter_photos.
type FilterPhotosInput struct {
	DateText string   `json:"date_text,omitempty"`
	Query    string   `json:"query,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	TopK     int      `json:"top_k,omitempty"`
}

// PhotoSetOutput is what both retrieval tools return to the model.
type PhotoSetOutput struct {
	Mode   string            `json:"mode"`
	Total  int               `json:"total"`
	Photos []retrieval.Match `json:"photos"`
}

func (r *Registry) searchPhotos(ctx context.Context, in *SearchPhotosInput) (*PhotoSetOutput, error) {
	q := strings.TrimSpace(in.Query)
	if q == "" {
		return nil, errx.WrapToolContract(fmt.Errorf("%s: query is required", ToolSearchPhotos))
	}
	return r.resolve(ctx, q, "", nil, in.TopK)
}

func (r *Registry) filterPhotos(ctx context.Context, in *FilterPhotosInput) (*PhotoSetOutput, error) {
	dateText := strings.TrimSpace(in.DateText)
	q := strings.TrimSpace(in.Query)
	if dateText == "" && q == "" && len(in.Tags) == 0 {
		return nil, errx.WrapToolContract(fmt.Errorf("%s: at least one of date_text, query or tags is required", ToolFilterPhotos))
	}
	return r.resolve(ctx, q, dateText, in.Tags, in.TopK)
}

// resolve is the single retrieval path behind both tools. The raw query is
// re-split even when the model already extracted a date_text argument, so a
// missed or misplaced date still ends up as a metadata constraint rather
// than as embedding noise.
func (r *Registry) resolve(ctx context.Context, rawQuery, dateText string, tags []string, topK int) (*PhotoSetOutput, error) {
	expr, semanticText := query.Split(rawQuery)

	if dateText != "" {
		dateExpr, rest := query.Split(dateText)
		if dateExpr.None() {
			// The model passed something the date grammar cannot read.
			// Degrade it into semantic text instead of failing the call.
			semanticText = strings.TrimSpace(strings.Join([]string{semanticText, dateText}, " "))
		} else {
			expr = dateExpr
			if rest != "" {
				semanticText = strings.TrimSpace(strings.Join([]string{semanticText, rest}, " "))
			}
		}
	}

	spec, err := r.builder.Build(ctx, expr, tags)
	if err != nil {
		return nil, err
	}

	res, err := r.retriever.Retrieve(ctx, semanticText, spec, clampTopK(ctx, topK))
	if err != nil {
		if errors.Is(err, retrieval.ErrNoConstraint) {
			return nil, errx.WrapToolContract(err)
		}
		return nil, err
	}

	if cache, ok := session.TurnCacheFrom(ctx); ok {
		cache.Record(res)
	} else {
		logx.Warn().Str("mode", res.Mode.String()).Msg("retrieval result produced outside a turn, not cached")
	}

	return &PhotoSetOutput{
		Mode:   res.Mode.String(),
		Total:  len(res.Matches),
		Photos: res.Matches,
	}, nil
}

// clampTopK resolves the result count for one tool call. Explicit tool
// arguments win; when the model passed nothing the caller's per-turn hint
// applies before the default.
func clampTopK(ctx context.Context, topK int) int {
	if topK <= 0 {
		if hint, ok := session.TopKHintFrom(ctx); ok {
			topK = hint
		}
	}
	switch {
	case topK <= 0:
		return defaultTopK
	case topK > maxTopK:
		return maxTopK
	default:
		return topK
	}
}
