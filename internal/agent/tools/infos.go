package tools

import (
	"github.com/cloudwego/eino/schema"
)

func searchPhotosInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolSearchPhotos,
		Desc: "Search album photos by visual description. Use this whenever the user describes photo content: 海边, 日落, 生日蛋糕, beach, sunset, birthday cake, people, places, objects. Returns matched photos ranked by similarity. If the query also contains a date (e.g. 1.18 海边), pass the whole query and the date will be honored automatically.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     "string",
				Desc:     "What the photos should look like, in the user's own words. Examples: 海边, 和朋友的合影, sunset over the city. Keep it as close to the user's phrasing as possible.",
				Required: true,
			},
			"top_k": {
				Type: "number",
				Desc: "Maximum number of photos to return (default: 10, max: 50)",
			},
		}),
	}
}

func filterPhotosInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolFilterPhotos,
		Desc: "Find album photos by shooting date and/or tags, optionally combined with a content description. Use this when the user names a date: 1.18, 1月18日, 2026-01-17, 2026年1月17日. Month-day dates without a year match that day across every year. Provide at least one of date_text, query or tags.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"date_text": {
				Type: "string",
				Desc: "The date exactly as the user wrote it, e.g. 1.18, 1月18日, 2026-01-17. Do not reformat it.",
			},
			"query": {
				Type: "string",
				Desc: "Optional content description to rank the dated photos by, e.g. 海边 when the user asked for 1.18 海边.",
			},
			"tags": {
				Type:     "array",
				ElemInfo: &schema.ParameterInfo{Type: "string"},
				Desc:     "Optional photo tags to require, e.g. family, travel, food.",
			},
			"top_k": {
				Type: "number",
				Desc: "Maximum number of photos to return (default: 10, max: 50)",
			},
		}),
	}
}

func albumSchemaInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name:        ToolAlbumSchema,
		Desc:        "Describe the photo album collection: total photo count and the metadata fields each photo carries. Use this when the user asks what the album knows about their photos, or to check which fields are filterable.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
	}
}

func currentTimeInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name:        ToolCurrentTime,
		Desc:        "Get the current server date and time. Call this first when the user uses relative dates like 昨天, 上周末, yesterday or last weekend, then convert to an absolute date for filter_photos.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
	}
}
