package router

import (
	"context"

	"github.com/smart-album/server/internal/agent/model"
	"github.com/smart-album/server/internal/agent/session"
	errx "github.com/smart-album/server/internal/core/error"
	logx "github.com/smart-album/server/pkg/logger"
)

// Planner runs the planning graph for one turn.
type Planner interface {
	Invoke(ctx context.Context, in model.QueryInput) (string, error)
}

// Fallback runs the degraded single-shot path for one turn.
type Fallback interface {
	Run(ctx context.Context, in model.QueryInput) (string, error)
}

// Router owns turn execution: it serializes turns per session, runs the
// planning path, decides whether a failure earns the one fallback attempt,
// and assembles the outward-facing result from the turn cache.
type Router struct {
	planner   Planner
	fallback  Fallback
	sessions  *session.Manager
	assembler *Assembler
}

func New(planner Planner, fallback Fallback, sessions *session.Manager, policy model.PolicyConfig) *Router {
	return &Router{
		planner:   planner,
		fallback:  fallback,
		sessions:  sessions,
		assembler: NewAssembler(policy),
	}
}

// RunTurn executes one user turn end to end. It always returns a usable
// TurnResult: terminal failures become an apology with an empty photo set
// rather than an error the caller has to phrase themselves.
func (r *Router) RunTurn(ctx context.Context, in model.QueryInput) model.TurnResult {
	if in.SessionID == "" {
		in.SessionID = session.NewSessionID()
	}

	cache, release := r.sessions.BeginTurn(in.SessionID)
	defer release()
	ctx = session.WithTurnCache(ctx, cache)
	ctx = session.WithTopKHint(ctx, in.TopK)

	state := StatePlanning
	path := model.PathPlanning

	answer, err := r.planner.Invoke(ctx, in)
	if err != nil {
		kind := errx.KindOf(err)
		next := Next(state, kind)
		logx.Warn().
			Str("session_id", in.SessionID).
			Str("state", state.String()).
			Str("kind", kind.String()).
			Str("next", next.String()).
			Err(err).
			Msg("Planning path failed")

		if next != StateFallback {
			return r.assembler.Apology(in.SessionID, path)
		}

		state = StateFallback
		path = model.PathFallback
		answer, err = r.fallback.Run(ctx, in)
		if err != nil {
			logx.Error().
				Str("session_id", in.SessionID).
				Str("state", state.String()).
				Str("kind", errx.KindOf(err).String()).
				Err(err).
				Msg("Fallback path failed; turn is terminal")
			return r.assembler.Apology(in.SessionID, path)
		}
	}

	photos := cache.Take()
	logx.Debug().
		Str("session_id", in.SessionID).
		Str("path", string(path)).
		Int("photos", len(photos)).
		Msg("Turn complete")

	return r.assembler.Assemble(in.SessionID, answer, photos, path)
}
