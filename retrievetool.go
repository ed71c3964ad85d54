package ragpod

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
)

// RetrieveContextToolName is the single capability exposed to the model.
const RetrieveContextToolName = "retrieve_context"

// RetrieveContextArgs is the declared input schema: one required question.
type RetrieveContextArgs struct {
	Question string `json:"question" jsonschema_description:"The question to retrieve context for"`
}

// RetrieveContextResult is the structured payload surfaced to the decision
// loop as the tool-execution outcome.
type RetrieveContextResult struct {
	RetrievedContexts []string `json:"retrieved_contexts"`
}

// RetrieveContextTool wraps the Retriever as a model-callable tool. Scores
// and page metadata are dropped from the model-visible result; only the raw
// passage contents survive.
type RetrieveContextTool struct {
	retriever *Retriever
	topK      int
	logger    *slog.Logger
}

var _ Tool = &RetrieveContextTool{}

func NewRetrieveContextTool(retriever *Retriever, topK int) *RetrieveContextTool {
	return &RetrieveContextTool{
		retriever: retriever,
		topK:      topK,
		logger:    slog.Default(),
	}
}

func (t *RetrieveContextTool) SetLogger(logger *slog.Logger) {
	t.logger = logger
}

func (t *RetrieveContextTool) Name() string {
	return RetrieveContextToolName
}

func (t *RetrieveContextTool) Description() string {
	return "Retrieve relevant context passages for a question from the document knowledge base"
}

func (t *RetrieveContextTool) OpenAI() []openai.ChatCompletionToolParam {
	return []openai.ChatCompletionToolParam{
		{
			Function: openai.F(openai.FunctionDefinitionParam{
				Name:        openai.F(t.Name()),
				Description: openai.F(t.Description()),
				Parameters:  openai.F(FunctionParametersFor[RetrieveContextArgs]()),
			}),
			Type: openai.F(openai.ChatCompletionToolTypeFunction),
		},
	}
}

// ParseArgs validates raw arguments against the declared schema.
func (t *RetrieveContextTool) ParseArgs(args map[string]interface{}) (*RetrieveContextArgs, error) {
	raw, ok := args["question"]
	if !ok {
		return nil, &MalformedToolInvocationError{Tool: t.Name(), Reason: "missing required field question"}
	}
	question, ok := raw.(string)
	if !ok {
		return nil, &MalformedToolInvocationError{Tool: t.Name(), Reason: fmt.Sprintf("field question must be a string, got %T", raw)}
	}
	if question == "" {
		return nil, &MalformedToolInvocationError{Tool: t.Name(), Reason: "field question must not be empty"}
	}
	return &RetrieveContextArgs{Question: question}, nil
}

func (t *RetrieveContextTool) Execute(ctx context.Context, args map[string]interface{}) (*ToolOutcome, error) {
	parsed, err := t.ParseArgs(args)
	if err != nil {
		return nil, err
	}

	t.logger.Info("Tool called", "tool", t.Name(), "question", parsed.Question)
	hits, err := t.retriever.Retrieve(ctx, parsed.Question, t.topK)
	if err != nil {
		return nil, err
	}
	t.logger.Info("Retrieved contexts", "tool", t.Name(), "count", len(hits))

	result := RetrieveContextResult{RetrievedContexts: []string{}}
	contexts := make([]ContextEntry, 0, len(hits))
	for _, hit := range hits {
		result.RetrievedContexts = append(result.RetrievedContexts, hit.Content)
		contexts = append(contexts, ContextEntry{
			Content:    hit.Content,
			PageNumber: hit.PageNumber,
			Score:      hit.Score,
		})
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return &ToolOutcome{Payload: string(payload), Contexts: contexts}, nil
}
