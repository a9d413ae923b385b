package session

import (
	"context"
	"sort"
	"sync"

	"github.com/smart-album/server/internal/album/retrieval"
)

// TurnCache accumulates every image set the tools produced during one turn,
// no matter which execution path invoked them. It is created fresh at the
// start of a turn and read exactly once by the response assembler, so a
// cancelled turn can never leak results into the next one.
type TurnCache struct {
	mu       sync.Mutex
	matches  map[string]retrieval.Match
	order    []string
	recorded int
	taken    bool
}

func NewTurnCache() *TurnCache {
	return &TurnCache{matches: make(map[string]retrieval.Match)}
}

// Record merges one tool call's retrieval result into the cache. Results
// union by photo id; on duplicates the higher similarity score wins.
func (c *TurnCache) Record(res retrieval.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.recorded++
	for _, m := range res.Matches {
		existing, ok := c.matches[m.PhotoID]
		if !ok {
			c.matches[m.PhotoID] = m
			c.order = append(c.order, m.PhotoID)
			continue
		}
		if m.Score > existing.Score {
			c.matches[m.PhotoID] = m
		}
	}
}

// Recorded returns how many tool results were merged this turn.
func (c *TurnCache) Recorded() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recorded
}

// Take returns the accumulated matches ordered by similarity descending,
// insertion order breaking ties, and marks the cache consumed. A second
// call returns nil.
func (c *TurnCache) Take() []retrieval.Match {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.taken {
		return nil
	}
	c.taken = true

	out := make([]retrieval.Match, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.matches[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

type cacheKey struct{}

type topKHintKey struct{}

// WithTurnCache binds the turn cache into the context handed to every tool
// call. The binding is explicit per turn, never ambient process state.
func WithTurnCache(ctx context.Context, c *TurnCache) context.Context {
	return context.WithValue(ctx, cacheKey{}, c)
}

// TurnCacheFrom extracts the current turn's cache.
func TurnCacheFrom(ctx context.Context) (*TurnCache, bool) {
	c, ok := ctx.Value(cacheKey{}).(*TurnCache)
	return c, ok
}

// WithTopKHint binds the caller's requested result count to the turn. The
// hint rides the same context as the turn cache so both execution paths see
// it. Non-positive hints are not bound.
func WithTopKHint(ctx context.Context, topK int) context.Context {
	if topK <= 0 {
		return ctx
	}
	return context.WithValue(ctx, topKHintKey{}, topK)
}

// TopKHintFrom extracts the caller's result count hint, zero when absent.
func TopKHintFrom(ctx context.Context) (int, bool) {
	k, ok := ctx.Value(topKHintKey{}).(int)
	return k, ok
}
