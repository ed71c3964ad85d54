// Package ragpod - turn.go
// The turn state machine: Start -> GuardInput -> Decide -> {Respond |
// ExecuteTools -> Decide}. One execution owns one transient message list and
// folds its outcome back into a new SessionState.

package ragpod

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
)

type turnState int

const (
	turnStart turnState = iota
	turnGuardInput
	turnDecide
	turnExecuteTools
	turnRespond
)

// turnContext carries the transient per-execution data between states. It is
// discarded once Respond folds the outcome into the returned SessionState.
type turnContext struct {
	messages      *MessageList
	lastAssistant openai.ChatCompletionMessage
	toolContexts  []ContextEntry
	hops          int
}

// TurnMachine drives one turn from raw user input through the decision loop
// to a terminal, tool-free answer.
type TurnMachine struct {
	llm          LLM
	modelName    string
	tools        *Registry
	systemPrompt string
	maxToolHops  int
	logger       *slog.Logger
}

// NewTurnMachine wires the machine to its collaborators. maxToolHops bounds
// the Decide/ExecuteTools loop; 0 disables the guard and restores the
// unbounded behavior.
func NewTurnMachine(llm LLM, modelName string, tools *Registry, maxToolHops int) *TurnMachine {
	return &TurnMachine{
		llm:          llm,
		modelName:    modelName,
		tools:        tools,
		systemPrompt: OrchestrationPrompt,
		maxToolHops:  maxToolHops,
		logger:       slog.Default(),
	}
}

func (m *TurnMachine) SetLogger(logger *slog.Logger) {
	m.logger = logger
}

// Run executes one turn against the prior state and returns the updated
// state. The prior state is never mutated; every step builds forward into
// the turn context and Respond produces a fresh value.
func (m *TurnMachine) Run(ctx context.Context, prior *SessionState, userInput string) (*SessionState, error) {
	if strings.TrimSpace(userInput) == "" {
		result := prior.Clone()
		result.UserInput = userInput
		result.Response = EmptyInputResponse
		return result, nil
	}

	tc := &turnContext{toolContexts: []ContextEntry{}}
	state := turnStart

	for {
		switch state {
		case turnStart:
			messages, err := ReplayHistory(m.systemPrompt, prior.ConversationHistory, userInput)
			if err != nil {
				return nil, err
			}
			tc.messages = messages
			state = turnGuardInput

		case turnGuardInput:
			// Reserved for input validation; must pass state through unchanged.
			state = turnDecide

		case turnDecide:
			next, err := m.decide(ctx, tc)
			if err != nil {
				return nil, err
			}
			state = next

		case turnExecuteTools:
			tc.hops++
			if m.maxToolHops > 0 && tc.hops > m.maxToolHops {
				return nil, &ToolLoopExceededError{Hops: m.maxToolHops}
			}
			if err := m.executeTools(ctx, tc); err != nil {
				return nil, err
			}
			state = turnDecide

		case turnRespond:
			return m.respond(prior, userInput, tc), nil
		}
	}
}

// decide sends the accumulated messages to the model and routes on whether
// the answer carries tool calls.
func (m *TurnMachine) decide(ctx context.Context, tc *turnContext) (turnState, error) {
	params := openai.ChatCompletionNewParams{
		Messages: openai.F(tc.messages.All()),
		Model:    openai.F(m.modelName),
	}
	if tools := m.tools.OpenAITools(); len(tools) > 0 {
		params.Tools = openai.F(tools)
	}

	completion, err := m.llm.New(ctx, params)
	if err != nil {
		return 0, &LLMError{Err: err}
	}
	if len(completion.Choices) == 0 {
		return 0, &LLMError{Err: fmt.Errorf("completion contained no choices")}
	}

	message := completion.Choices[0].Message
	tc.messages.Add(message)
	tc.lastAssistant = message

	if len(message.ToolCalls) == 0 {
		m.logger.Info("Decide reached terminal answer")
		return turnRespond, nil
	}
	m.logger.Info("Decide requested tools", "count", len(message.ToolCalls))
	return turnExecuteTools, nil
}

// executeTools runs every requested tool in the order received and appends
// one tool-result message per call. Execution failures become message
// content so the model stays in the loop; schema violations abort the turn.
func (m *TurnMachine) executeTools(ctx context.Context, tc *turnContext) error {
	for _, toolCall := range tc.lastAssistant.ToolCalls {
		tool, err := m.tools.Get(toolCall.Function.Name)
		if err != nil {
			m.logger.Error("Unknown tool requested", "tool", toolCall.Function.Name)
			tc.messages.Add(ToolResultMessage(toolCall.ID, fmt.Sprintf("error: %v", err)))
			continue
		}

		args := map[string]interface{}{}
		if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &args); err != nil {
			return &MalformedToolInvocationError{Tool: toolCall.Function.Name, Reason: fmt.Sprintf("arguments are not valid JSON: %v", err)}
		}

		outcome, err := tool.Execute(ctx, args)
		if err != nil {
			var malformed *MalformedToolInvocationError
			if errors.As(err, &malformed) {
				return err
			}
			m.logger.Error("Tool execution failed", "tool", toolCall.Function.Name, "error", err)
			tc.messages.Add(ToolResultMessage(toolCall.ID, fmt.Sprintf("error: %v", err)))
			continue
		}

		tc.messages.Add(ToolResultMessage(toolCall.ID, outcome.Payload))
		tc.toolContexts = append(tc.toolContexts, outcome.Contexts...)
	}
	return nil
}

// respond extracts the terminal answer and folds the turn back into a new
// SessionState: user input and answer appended to the transcript, retrieved
// context replaced with this turn's hits.
func (m *TurnMachine) respond(prior *SessionState, userInput string, tc *turnContext) *SessionState {
	response := tc.lastAssistant.Content

	result := prior.Clone()
	result.UserInput = userInput
	result.Response = response
	result.ConversationHistory = append(result.ConversationHistory,
		HistoryEntry{Role: RoleUser, Content: userInput},
		HistoryEntry{Role: RoleAssistant, Content: response},
	)
	result.RetrievedContext = tc.toolContexts
	return result
}
