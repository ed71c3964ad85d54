package ragpod

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Embedder converts text into a fixed-dimensionality vector. It is treated
// as a pure remote function; failures surface as UpstreamError at the caller.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OpenAIEmbedder embeds text through an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	ModelName string
	Dim       int
	client    *openai.Client
}

var _ Embedder = &OpenAIEmbedder{}

func NewOpenAIEmbedder(apiKey string, baseURL string, modelName string, dim int) *OpenAIEmbedder {
	var client *openai.Client
	if baseURL != "" {
		client = openai.NewClient(option.WithBaseURL(baseURL), option.WithAPIKey(apiKey))
	} else {
		client = openai.NewClient(option.WithAPIKey(apiKey))
	}
	return &OpenAIEmbedder{
		ModelName: modelName,
		Dim:       dim,
		client:    client,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.F[openai.EmbeddingNewParamsInputUnion](openai.EmbeddingNewParamsInputArrayOfStrings([]string{text})),
		Model: openai.F(e.ModelName),
	}
	if e.Dim > 0 {
		params.Dimensions = openai.F(int64(e.Dim))
	}
	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}
	vector := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vector[i] = float32(v)
	}
	return vector, nil
}
