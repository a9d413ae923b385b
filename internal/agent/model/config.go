package model

// ================ Config ================
type ConversationConfig struct {
	TTL      string `envconfig:"CONVERSATION_TTL" default:"15m"`
	MaxTurns int    `envconfig:"CONVERSATION_MAX_TURNS" default:"10"`
	Tools    struct {
		MaxCalls int `envconfig:"CONVERSATION_TOOL_MAX_CALLS" default:"6"`
	}
}

// PlannerModelConfig configures the primary planning model.
type PlannerModelConfig struct {
	Model       string  `envconfig:"PLANNER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"PLANNER_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"PLANNER_TEMPERATURE" default:"0.2"`
}

// FallbackModelConfig configures the single-shot function-calling fallback.
// The model identifier is mandatory: the fallback provider rejects requests
// without one, so its absence is a configuration error, not a runtime one.
type FallbackModelConfig struct {
	Model   string `envconfig:"FALLBACK_MODEL" required:"true"`
	APIKey  string `envconfig:"FALLBACK_API_KEY"`
	BaseURL string `envconfig:"FALLBACK_BASE_URL"`
}

// PromptConfig parameterizes the planner system prompt.
type PromptConfig struct {
	AlbumName string `envconfig:"PROMPT_ALBUM_NAME" default:"智慧相册"`
}

// PolicyConfig selects the wording when a query resolves to zero photos:
// blame the date constraint or the description. Observed product behavior
// is ambiguous here, so it stays configurable.
type PolicyConfig struct {
	EmptyResult string `envconfig:"EMPTY_RESULT_POLICY" default:"description"`
}

const (
	EmptyResultByDate        = "date"
	EmptyResultByDescription = "description"
)
