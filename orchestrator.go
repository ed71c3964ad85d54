// Package ragpod - orchestrator.go
// The turn entry point: load state, run the turn machine, persist, return.

package ragpod

import (
	"context"
	"fmt"
	"log/slog"
)

// Orchestrator owns the load -> turn -> save sequence for one session turn.
// Turns for different sessions run fully in parallel; turns for the same
// session are not mutually excluded here, so concurrent same-session callers
// race on load/save and the last writer wins. Callers wanting stronger
// guarantees must serialize per session.
type Orchestrator struct {
	store   SessionStore
	machine *TurnMachine
	logger  *slog.Logger
}

func NewOrchestrator(store SessionStore, machine *TurnMachine) *Orchestrator {
	return &Orchestrator{
		store:   store,
		machine: machine,
		logger:  slog.Default(),
	}
}

func (o *Orchestrator) SetLogger(logger *slog.Logger) {
	o.logger = logger
}

// RunTurn executes one full turn for the session and returns the persisted
// state. Every failure is re-signaled as one OrchestrationError; nothing is
// retried here and no partial state is persisted when the turn fails before
// reaching its terminal answer.
func (o *Orchestrator) RunTurn(ctx context.Context, sessionID string, userInput string) (*SessionState, error) {
	if sessionID == "" {
		return nil, &OrchestrationError{Err: fmt.Errorf("session id must not be empty")}
	}

	state, err := o.store.Load(ctx, sessionID)
	if err != nil {
		o.logger.Error("Failed to load session state", "session_id", sessionID, "error", err)
		return nil, &OrchestrationError{Err: err}
	}

	updated, err := o.machine.Run(ctx, state, userInput)
	if err != nil {
		o.logger.Error("Turn failed", "session_id", sessionID, "error", err)
		return nil, &OrchestrationError{Err: err}
	}

	if err := o.store.Save(ctx, updated); err != nil {
		o.logger.Error("Failed to save session state", "session_id", sessionID, "error", err)
		return nil, &OrchestrationError{Err: err}
	}

	o.logger.Info("Turn completed", "session_id", sessionID, "history_len", len(updated.ConversationHistory))
	return updated, nil
}
