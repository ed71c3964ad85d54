// Package ragpod - tool.go
// Defines the Tool interface and the static registry the decision loop
// dispatches through.

package ragpod

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
)

// ToolOutcome is what a tool execution hands back to the decision loop: the
// model-visible payload, plus any passages that should survive into the
// session state with their metadata intact.
type ToolOutcome struct {
	Payload  string
	Contexts []ContextEntry
}

// Tool is a named, schema-described capability the model may ask the turn
// machine to execute on its behalf mid-turn.
type Tool interface {
	Name() string
	Description() string
	OpenAI() []openai.ChatCompletionToolParam
	Execute(ctx context.Context, args map[string]interface{}) (*ToolOutcome, error)
}

// Registry is a fixed mapping from tool name to handler, populated at
// startup. The decision loop resolves names through it; nothing is
// registered reflectively at runtime.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, tool := range tools {
		r.tools[tool.Name()] = tool
		r.order = append(r.order, tool.Name())
	}
	return r
}

func (r *Registry) Get(name string) (Tool, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("tool %s not found", name)
	}
	return tool, nil
}

// OpenAITools returns the declared tool params for every registered tool,
// in registration order.
func (r *Registry) OpenAITools() []openai.ChatCompletionToolParam {
	params := []openai.ChatCompletionToolParam{}
	for _, name := range r.order {
		params = append(params, r.tools[name].OpenAI()...)
	}
	return params
}

// GenerateSchema reflects a JSON schema from a parameter struct. The same
// schema declares the tool to the model and drives argument validation.
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}

// FunctionParametersFor converts a reflected schema into the map form the
// chat completion API expects.
func FunctionParametersFor[T any]() openai.FunctionParameters {
	raw, err := json.Marshal(GenerateSchema[T]())
	if err != nil {
		panic(fmt.Sprintf("failed to marshal tool schema: %v", err))
	}
	params := openai.FunctionParameters{}
	if err := json.Unmarshal(raw, &params); err != nil {
		panic(fmt.Sprintf("failed to decode tool schema: %v", err))
	}
	return params
}
