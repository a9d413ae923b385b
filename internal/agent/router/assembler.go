package router

import (
	"fmt"
	"strings"

	"github.com/smart-album/server/internal/album/retrieval"
	"github.com/smart-album/server/internal/agent/model"
)

// ApologyAnswer is the terminal-failure reply. It never leaks internals.
const ApologyAnswer = "抱歉，相册助手暂时遇到了问题，请稍后再试。"

// Assembler pairs the agent's answer text with exactly the photos the tools
// produced this turn, and fills in phrasing the model left out.
type Assembler struct {
	policy model.PolicyConfig
}

func NewAssembler(policy model.PolicyConfig) *Assembler {
	return &Assembler{policy: policy}
}

// Assemble builds the outward-facing turn result.
func (a *Assembler) Assemble(sessionID, answer string, photos []retrieval.Match, path model.ExecutionPath) model.TurnResult {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = defaultAnswer(len(photos))
	}

	res := model.TurnResult{
		SessionID: sessionID,
		Answer:    answer,
		Total:     len(photos),
		Photos:    photos,
		Path:      path,
	}
	res.Suggestions = a.suggestions(len(photos))
	return res
}

// suggestions keys follow-ups on the result count: loosen when nothing
// matched, narrow when the set is unwieldy, stay quiet otherwise.
func (a *Assembler) suggestions(count int) []string {
	switch {
	case count == 0:
		return a.emptySuggestions()
	case count > 10:
		return []string{
			"加上日期缩小范围",
			"补充更具体的描述",
		}
	default:
		return nil
	}
}

// Apology builds the terminal-failure result: a fixed apology and an empty
// photo set.
func (a *Assembler) Apology(sessionID string, path model.ExecutionPath) model.TurnResult {
	return model.TurnResult{
		SessionID: sessionID,
		Answer:    ApologyAnswer,
		Path:      path,
	}
}

// defaultAnswer covers the rare case of a tool-using turn that ended without
// answer text.
func defaultAnswer(count int) string {
	if count == 0 {
		return "没有找到符合条件的照片。"
	}
	return fmt.Sprintf("为你找到 %d 张照片。", count)
}

// emptySuggestions proposes how to loosen a query that matched nothing. The
// policy decides which constraint to blame first.
func (a *Assembler) emptySuggestions() []string {
	if a.policy.EmptyResult == model.EmptyResultByDate {
		return []string{
			"试试相邻的日期",
			"去掉日期，只按内容搜索",
		}
	}
	return []string{
		"换一种描述方式试试",
		"补充拍摄地点或人物",
	}
}
