// Package ragpod - errors.go
// Defines the error taxonomy surfaced by the orchestration engine.

package ragpod

import "fmt"

// UpstreamError indicates the embedding or vector-search collaborator was
// unreachable. It is not retried here; retry policy belongs to the caller.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream unavailable during %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// LLMError indicates a transport or timeout failure from the inference
// collaborator. It fails the whole turn.
type LLMError struct {
	Err error
}

func (e *LLMError) Error() string { return fmt.Sprintf("llm unavailable: %v", e.Err) }

func (e *LLMError) Unwrap() error { return e.Err }

// PersistenceError indicates the relational store was unreachable or an
// upsert transaction failed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence unavailable during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// MalformedToolInvocationError indicates the model requested a tool with
// arguments that do not satisfy the declared input schema.
type MalformedToolInvocationError struct {
	Tool   string
	Reason string
}

func (e *MalformedToolInvocationError) Error() string {
	return fmt.Sprintf("malformed invocation of tool %s: %s", e.Tool, e.Reason)
}

// ToolLoopExceededError indicates the Decide/ExecuteTools loop ran past the
// configured hop limit without producing a tool-free answer.
type ToolLoopExceededError struct {
	Hops int
}

func (e *ToolLoopExceededError) Error() string {
	return fmt.Sprintf("tool loop exceeded %d hops without a terminal answer", e.Hops)
}

// OrchestrationError wraps any failure that aborts a turn at the
// orchestrator boundary.
type OrchestrationError struct {
	Err error
}

func (e *OrchestrationError) Error() string { return fmt.Sprintf("orchestration failed: %v", e.Err) }

func (e *OrchestrationError) Unwrap() error { return e.Err }
