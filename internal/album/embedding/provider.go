package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	errx "github.com/smart-album/server/internal/core/error"
	logx "github.com/smart-album/server/pkg/logger"
)

type Config struct {
	Model string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
}

// Provider produces fixed-dimension embedding vectors from text via the
// Gemini embedding API.
type Provider struct {
	client *genai.Client
	model  string
}

func NewProvider(client *genai.Client, model string) *Provider {
	return &Provider{client: client, model: model}
}

// Embed converts text into an embedding vector. Any API failure or empty
// response surfaces as a provider error; it is never treated as "no
// semantic constraint".
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Models.EmbedContent(ctx, p.model, genai.Text(text), nil)
	if err != nil {
		logx.Error().Err(err).Str("model", p.model).Msg("embedding request failed")
		return nil, errx.WrapProvider(err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errx.WrapProvider(fmt.Errorf("empty embedding for model %s", p.model))
	}
	return resp.Embeddings[0].Values, nil
}
