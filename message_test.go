package ragpod

import (
	"testing"

	"github.com/openai/openai-go"
)

func TestReplayHistoryOrder(t *testing.T) {
	history := []HistoryEntry{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}
	ml, err := ReplayHistory("instructions", history, "bye")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ml.Len() != 4 {
		t.Fatalf("replayed %d messages, want 4", ml.Len())
	}
	messages := ml.All()
	if _, ok := messages[0].(openai.ChatCompletionSystemMessageParam); !ok {
		t.Errorf("messages[0] is %T, want system message", messages[0])
	}
	if _, ok := messages[1].(openai.ChatCompletionUserMessageParam); !ok {
		t.Errorf("messages[1] is %T, want user message", messages[1])
	}
	if _, ok := messages[2].(openai.ChatCompletionAssistantMessageParam); !ok {
		t.Errorf("messages[2] is %T, want assistant message", messages[2])
	}
	if _, ok := messages[3].(openai.ChatCompletionUserMessageParam); !ok {
		t.Errorf("messages[3] is %T, want user message", messages[3])
	}
}

func TestReplayHistoryEmptyTranscript(t *testing.T) {
	ml, err := ReplayHistory("instructions", nil, "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ml.Len() != 2 {
		t.Fatalf("replayed %d messages, want system + user", ml.Len())
	}
}

func TestReplayHistoryRejectsUnknownRole(t *testing.T) {
	history := []HistoryEntry{
		{Role: RoleUser, Content: "hi"},
		{Role: "narrator", Content: "meanwhile"},
	}
	if _, err := ReplayHistory("instructions", history, "bye"); err == nil {
		t.Fatal("expected error for unrecognized role")
	}
}

func TestMessageListCloneIsIndependent(t *testing.T) {
	ml := NewMessageList()
	ml.Add(UserMessage("hi"))

	clone := ml.Clone()
	clone.Add(AssistantMessage("hello"))

	if ml.Len() != 1 {
		t.Errorf("original list grew to %d after clone mutation", ml.Len())
	}
	if clone.Len() != 2 {
		t.Errorf("clone has %d messages, want 2", clone.Len())
	}
}

func TestToolResultMessageCarriesCallID(t *testing.T) {
	msg := ToolResultMessage("call_9", "payload")
	if msg.ToolCallID.Value != "call_9" {
		t.Errorf("tool call id = %q", msg.ToolCallID.Value)
	}
	if msg.Content.Value[0].Text.Value != "payload" {
		t.Errorf("content = %q", msg.Content.Value[0].Text.Value)
	}
}
