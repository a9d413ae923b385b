package model

import (
	"github.com/cloudwego/eino/schema"

	"github.com/smart-album/server/internal/album/retrieval"
)

// AppState stores per-invocation state for the planning graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
//   - Cached image sets do NOT live here: they belong to the session turn
//     cache, which is shared with the fallback path.
type AppState struct {
	SessionID            string
	History              []*schema.Message // mutated only inside Eino state handlers
	ToolCallCount        int               // maintained in handlers (reset/increment)
	ToolCallLimitReached bool              // set when tool call limit is exceeded
	ToolCallIDSeq        int               // local sequence to synthesize tool_call_id when provider omits

	// Accumulated total LLM cost (USD) across model invocations for this turn
	TotalCostUSD float64
}

// QueryInput is one user turn handed to the execution router.
type QueryInput struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
	TopK      int    `json:"top_k,omitempty"`
}

// ExecutionPath tags which agent path produced a result.
type ExecutionPath string

const (
	PathPlanning ExecutionPath = "planning"
	PathFallback ExecutionPath = "fallback"
)

// TurnResult is the outward-facing outcome of one turn: the agent's answer
// paired with exactly the image set the tools produced this turn.
type TurnResult struct {
	SessionID   string            `json:"session_id"`
	Answer      string            `json:"answer"`
	Total       int               `json:"total"`
	Photos      []retrieval.Match `json:"photos"`
	Suggestions []string          `json:"suggestions,omitempty"`
	Path        ExecutionPath     `json:"path"`
}
