package ragpod

import (
	"fmt"

	"github.com/openai/openai-go"
)

func UserMessage(content string) openai.ChatCompletionMessageParamUnion {
	return openai.UserMessage(content)
}

func AssistantMessage(content string) openai.ChatCompletionMessageParamUnion {
	return openai.AssistantMessage(content)
}

func SystemMessage(content string) openai.ChatCompletionMessageParamUnion {
	return openai.SystemMessage(content)
}

// ToolResultMessage builds the tool-role message that feeds a tool execution
// outcome back into the decision loop, matched to its originating call id.
func ToolResultMessage(toolCallID string, content string) openai.ChatCompletionToolMessageParam {
	return openai.ChatCompletionToolMessageParam{
		Role:       openai.F(openai.ChatCompletionToolMessageParamRoleTool),
		Content:    openai.F([]openai.ChatCompletionContentPartTextParam{{Type: openai.F(openai.ChatCompletionContentPartTextTypeText), Text: openai.F(content)}}),
		ToolCallID: openai.F(toolCallID),
	}
}

// MessageList holds an ordered collection of messages to preserve the history.
type MessageList struct {
	Messages []openai.ChatCompletionMessageParamUnion
}

func NewMessageList() *MessageList {
	return &MessageList{
		Messages: []openai.ChatCompletionMessageParamUnion{},
	}
}

func (ml *MessageList) Len() int {
	return len(ml.Messages)
}

// Add appends one or more new messages to the MessageList in a FIFO order.
func (ml *MessageList) Add(msgs ...openai.ChatCompletionMessageParamUnion) {
	ml.Messages = append(ml.Messages, msgs...)
}

func (ml *MessageList) All() []openai.ChatCompletionMessageParamUnion {
	return ml.Messages
}

func (ml *MessageList) Clone() *MessageList {
	return &MessageList{
		Messages: append([]openai.ChatCompletionMessageParamUnion{}, ml.Messages...),
	}
}

// ReplayHistory builds the transient message list for one turn: the fixed
// system prompt first, then the persisted transcript oldest-first, then the
// new user input as the latest message. A transcript entry whose role is not
// recognized fails the replay; the transcript only ever holds user and
// assistant entries.
func ReplayHistory(systemPrompt string, history []HistoryEntry, userInput string) (*MessageList, error) {
	ml := NewMessageList()
	ml.Add(SystemMessage(systemPrompt))
	for _, entry := range history {
		switch entry.Role {
		case RoleUser:
			ml.Add(UserMessage(entry.Content))
		case RoleAssistant:
			ml.Add(AssistantMessage(entry.Content))
		default:
			return nil, fmt.Errorf("invalid message role: %s", entry.Role)
		}
	}
	ml.Add(UserMessage(userInput))
	return ml, nil
}
