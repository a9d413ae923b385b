package router

import (
	errx "github.com/smart-album/server/internal/core/error"
)

// State is the execution state of one turn. A turn starts in Planning and
// moves forward only: at most one transition into Fallback, then Done.
// There is no way back into Planning within a turn.
type State int

const (
	StatePlanning State = iota
	StateFallback
	StateDone
)

func (s State) String() string {
	switch s {
	case StatePlanning:
		return "planning"
	case StateFallback:
		return "fallback"
	default:
		return "done"
	}
}

// Next returns the state that follows a failure of the given kind. Provider
// failures, tool contract violations and unclassified failures in Planning
// earn one fallback attempt: an unclassified error out of the graph is by
// elimination a model or transport problem, which is exactly what the
// fallback path exists for. Store, repo and config failures never do: the
// fallback talks to the same collaborators and would only repeat the
// failure. Any failure in Fallback is terminal.
func Next(s State, k errx.Kind) State {
	if s != StatePlanning {
		return StateDone
	}
	switch k {
	case errx.KindProvider, errx.KindToolContract, errx.KindUnknown:
		return StateFallback
	default:
		return StateDone
	}
}
