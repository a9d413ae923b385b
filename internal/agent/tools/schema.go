package tools

import (
	"context"
	"time"

	"github.com/smart-album/server/internal/album/store"
)

// AlbumSchemaInput carries no arguments; the tool is introspective.
type AlbumSchemaInput struct{}

type AlbumSchemaOutput struct {
	Collection string              `json:"collection"`
	Count      uint64              `json:"count"`
	Fields     []store.SchemaField `json:"fields"`
}

func (r *Registry) albumSchema(ctx context.Context, _ *AlbumSchemaInput) (*AlbumSchemaOutput, error) {
	sc, err := r.describer.Describe(ctx)
	if err != nil {
		return nil, err
	}
	return &AlbumSchemaOutput{
		Collection: sc.Collection,
		Count:      sc.TotalPhotos,
		Fields:     sc.Fields,
	}, nil
}

// CurrentTimeInput carries no arguments.
type CurrentTimeInput struct{}

type CurrentTimeOutput struct {
	Now     string `json:"now"`
	Weekday string `json:"weekday"`
	Unix    int64  `json:"unix"`
}

// currentTime grounds relative date talk ("yesterday", "this weekend") in
// the server clock so the model can turn it into absolute date arguments.
func (r *Registry) currentTime(_ context.Context, _ *CurrentTimeInput) (*CurrentTimeOutput, error) {
	now := r.Now()
	return &CurrentTimeOutput{
		Now:     now.Format(time.RFC3339),
		Weekday: now.Weekday().String(),
		Unix:    now.Unix(),
	}, nil
}
