package ragpod

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// LLM defines the minimal contract required by the turn machine to interact
// with a language-model provider. Implementations may add helper methods but
// only the operation below is relied upon by the rest of the codebase.
type LLM interface {
	// New issues a non-streaming chat completion request.
	New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// LLMClient wraps an OpenAI-compatible chat completion endpoint. The model
// name travels with each request, not with the client.
type LLMClient struct {
	APIKey  string
	BaseURL string
	client  *openai.Client
}

var _ LLM = &LLMClient{}

func NewLLMClient(apiKey string, baseURL string) *LLMClient {
	var client *openai.Client
	if baseURL != "" {
		client = openai.NewClient(option.WithBaseURL(baseURL), option.WithAPIKey(apiKey))
	} else {
		client = openai.NewClient(option.WithAPIKey(apiKey))
	}
	return &LLMClient{
		APIKey:  apiKey,
		BaseURL: baseURL,
		client:  client,
	}
}

func (c *LLMClient) New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
