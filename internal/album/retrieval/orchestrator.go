package retrieval

import (
	"context"
	"errors"

	"github.com/smart-album/server/internal/album/filter"
	"github.com/smart-album/server/internal/album/store"
	logx "github.com/smart-album/server/pkg/logger"
)

// Mode identifies which retrieval strategy a query resolved to.
type Mode int

const (
	// ModeNone means the query carried no usable constraint.
	ModeNone Mode = iota
	// ModeSemantic ranks the whole corpus by embedding similarity.
	ModeSemantic
	// ModeMetadata filters by structured fields only, ordered by capture
	// time descending.
	ModeMetadata
	// ModeCombined applies the structured filter, then ranks the filtered
	// candidates by similarity.
	ModeCombined
)

func (m Mode) String() string {
	switch m {
	case ModeSemantic:
		return "semantic"
	case ModeMetadata:
		return "metadata"
	case ModeCombined:
		return "combined"
	default:
		return "none"
	}
}

// ErrNoConstraint signals that both the semantic text and the filter were
// empty. Returning the unranked full corpus would surprise the caller, so
// the orchestrator refuses instead.
var ErrNoConstraint = errors.New("no retrieval constraint provided")

// Match is one ranked hit. Score is similarity when semantic search
// participated and zero for pure metadata retrieval, where position in the
// slice is the rank.
type Match struct {
	PhotoID string          `json:"photo_id"`
	Score   float32         `json:"score"`
	Meta    store.PhotoMeta `json:"meta"`
}

// Result is the ordered outcome of one retrieval.
type Result struct {
	Mode    Mode
	Matches []Match
}

// Embedder is the embedding provider collaborator.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// PhotoSearcher is the slice of the photo store the orchestrator needs.
type PhotoSearcher interface {
	Search(ctx context.Context, vector []float32, spec filter.Spec, topK int) ([]store.ScoredPhoto, error)
	Scan(ctx context.Context, spec filter.Spec) ([]store.PhotoMeta, error)
}

const DefaultTopK = 10

// Orchestrator decides among semantic, metadata, and combined retrieval and
// executes the chosen mode against the photo store. It retries nothing:
// retry policy belongs to the collaborators.
type Orchestrator struct {
	embedder Embedder
	photos   PhotoSearcher
}

func NewOrchestrator(embedder Embedder, photos PhotoSearcher) *Orchestrator {
	return &Orchestrator{embedder: embedder, photos: photos}
}

// SelectMode maps (semantic text, filter spec) to exactly one retrieval
// mode. Total over all inputs.
func SelectMode(semanticText string, spec filter.Spec) Mode {
	switch {
	case semanticText != "" && !spec.Empty():
		return ModeCombined
	case semanticText != "":
		return ModeSemantic
	case !spec.Empty():
		return ModeMetadata
	default:
		return ModeNone
	}
}

// Retrieve executes the retrieval mode selected for the query. A filter
// that resolved to zero photos yields an empty result, not an error.
func (o *Orchestrator) Retrieve(ctx context.Context, semanticText string, spec filter.Spec, topK int) (Result, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	mode := SelectMode(semanticText, spec)
	logx.Debug().Str("mode", mode.String()).Str("semantic_text", semanticText).Int("top_k", topK).Msg("retrieval mode selected")

	if mode == ModeNone {
		return Result{Mode: ModeNone}, ErrNoConstraint
	}
	if spec.Unsatisfiable() {
		return Result{Mode: mode}, nil
	}

	switch mode {
	case ModeSemantic, ModeCombined:
		vector, err := o.embedder.Embed(ctx, semanticText)
		if err != nil {
			return Result{Mode: mode}, err
		}
		hits, err := o.photos.Search(ctx, vector, spec, topK)
		if err != nil {
			return Result{Mode: mode}, err
		}
		matches := make([]Match, 0, len(hits))
		for _, h := range hits {
			matches = append(matches, Match{PhotoID: h.Meta.PhotoID, Score: h.Score, Meta: h.Meta})
		}
		return Result{Mode: mode, Matches: matches}, nil

	default: // ModeMetadata
		metas, err := o.photos.Scan(ctx, spec)
		if err != nil {
			return Result{Mode: mode}, err
		}
		if len(metas) > topK {
			metas = metas[:topK]
		}
		matches := make([]Match, 0, len(metas))
		for _, m := range metas {
			matches = append(matches, Match{PhotoID: m.PhotoID, Meta: m})
		}
		return Result{Mode: mode, Matches: matches}, nil
	}
}
