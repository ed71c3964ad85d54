package ragpod

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func newTestTool(hits []IndexHit) *RetrieveContextTool {
	retriever := NewRetriever(&fakeEmbedder{vec: []float32{0.1}}, &fakeSearcher{hits: hits})
	return NewRetrieveContextTool(retriever, 3)
}

func TestRegistryDispatch(t *testing.T) {
	tool := newTestTool(nil)
	registry := NewRegistry(tool)

	got, err := registry.Get(RetrieveContextToolName)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name() != RetrieveContextToolName {
		t.Errorf("resolved tool %q", got.Name())
	}

	if _, err := registry.Get("no_such_tool"); err == nil {
		t.Error("expected error for unknown tool")
	}

	params := registry.OpenAITools()
	if len(params) != 1 {
		t.Fatalf("declared %d tool params, want 1", len(params))
	}
}

func TestRetrieveContextPayload(t *testing.T) {
	tool := newTestTool([]IndexHit{{Content: "A"}, {Content: "B"}})

	outcome, err := tool.Execute(context.Background(), map[string]interface{}{"question": "X"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Payload != `{"retrieved_contexts":["A","B"]}` {
		t.Errorf("payload = %s", outcome.Payload)
	}
}

func TestRetrieveContextCarriesHitMetadata(t *testing.T) {
	tool := newTestTool([]IndexHit{
		{Content: "A", PageNumber: 3, Score: 0.91},
		{Content: "B", PageNumber: 7, Score: 0.8},
	})

	outcome, err := tool.Execute(context.Background(), map[string]interface{}{"question": "X"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []ContextEntry{
		{Content: "A", PageNumber: 3, Score: 0.91},
		{Content: "B", PageNumber: 7, Score: 0.8},
	}
	if !reflect.DeepEqual(outcome.Contexts, want) {
		t.Errorf("contexts = %+v, want %+v", outcome.Contexts, want)
	}
}

func TestRetrieveContextEmptyPayload(t *testing.T) {
	tool := newTestTool(nil)

	outcome, err := tool.Execute(context.Background(), map[string]interface{}{"question": "X"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Payload != `{"retrieved_contexts":[]}` {
		t.Errorf("payload = %s", outcome.Payload)
	}
	if len(outcome.Contexts) != 0 {
		t.Errorf("contexts = %+v, want empty", outcome.Contexts)
	}
}

func TestRetrieveContextArgValidation(t *testing.T) {
	tool := newTestTool(nil)

	cases := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing question", map[string]interface{}{}},
		{"wrong type", map[string]interface{}{"question": 42.0}},
		{"empty question", map[string]interface{}{"question": ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tool.Execute(context.Background(), tc.args)
			var malformed *MalformedToolInvocationError
			if !errors.As(err, &malformed) {
				t.Fatalf("err = %v, want MalformedToolInvocationError", err)
			}
		})
	}
}

func TestFunctionParametersDeclareQuestion(t *testing.T) {
	params := FunctionParametersFor[RetrieveContextArgs]()

	props, ok := params["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("schema has no properties: %v", params)
	}
	if _, ok := props["question"]; !ok {
		t.Errorf("schema does not declare question: %v", props)
	}

	required, ok := params["required"].([]interface{})
	if !ok || len(required) != 1 || required[0] != "question" {
		t.Errorf("required = %v, want [question]", params["required"])
	}
}
