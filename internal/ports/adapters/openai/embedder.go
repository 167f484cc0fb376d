package openai

import (
	"context"
	"fmt"

	sdk "github.com/openai/openai-go"
)

type Embedder struct {
	client sdk.Client
	key    string
	model  string
}

func NewEmbedder(cfg Config) *Embedder {
	model := cfg.EmbeddingModel
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: newClient(cfg), key: cfg.APIKey, model: model}
}

// Embed sends all texts in one request and returns vectors in input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.client.Embeddings.New(ctx, sdk.EmbeddingNewParams{
		Input: sdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: sdk.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", describeErr(err, e.key))
	}

	out := make([][]float64, len(texts))
	for _, d := range resp.Data {
		i := int(d.Index)
		if i < 0 || i >= len(out) {
			return nil, fmt.Errorf("openai embeddings: index %d out of range for %d inputs", i, len(texts))
		}
		out[i] = d.Embedding
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("openai embeddings: missing vector for input %d", i)
		}
	}
	return out, nil
}
