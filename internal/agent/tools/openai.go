package tools

import (
	openai "github.com/sashabaranov/go-openai"
)

// OpenAITools declares the same registry for the fallback provider's
// function-calling API. Definitions must stay in lockstep with infos.go so
// both execution paths see one tool contract.
func (r *Registry) OpenAITools() []openai.Tool {
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolSearchPhotos,
				Description: "Search album photos by visual description (e.g. 海边, sunset, birthday cake). Returns matched photos ranked by similarity.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"query": map[string]interface{}{
							"type":        "string",
							"description": "What the photos should look like, in the user's own words",
						},
						"top_k": map[string]interface{}{
							"type":        "number",
							"description": "Maximum number of photos to return (default: 10, max: 50)",
						},
					},
					"required": []string{"query"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolFilterPhotos,
				Description: "Find album photos by shooting date and/or tags, optionally combined with a content description. Month-day dates without a year match that day across every year. Provide at least one of date_text, query or tags.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"date_text": map[string]interface{}{
							"type":        "string",
							"description": "The date exactly as the user wrote it, e.g. 1.18, 1月18日, 2026-01-17",
						},
						"query": map[string]interface{}{
							"type":        "string",
							"description": "Optional content description to rank the dated photos by",
						},
						"tags": map[string]interface{}{
							"type":        "array",
							"items":       map[string]interface{}{"type": "string"},
							"description": "Optional photo tags to require",
						},
						"top_k": map[string]interface{}{
							"type":        "number",
							"description": "Maximum number of photos to return (default: 10, max: 50)",
						},
					},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolAlbumSchema,
				Description: "Describe the photo album collection: total photo count and the metadata fields each photo carries.",
				Parameters: map[string]interface{}{
					"type":       "object",
					"properties": map[string]interface{}{},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolCurrentTime,
				Description: "Get the current server date and time, for converting relative dates like 昨天 or yesterday into absolute dates.",
				Parameters: map[string]interface{}{
					"type":       "object",
					"properties": map[string]interface{}{},
				},
			},
		},
	}
}
