package ragpod

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeRunner struct {
	gotSessionID string
	gotUserInput string
	state        *SessionState
	err          error
}

func (f *fakeRunner) RunTurn(ctx context.Context, sessionID string, userInput string) (*SessionState, error) {
	f.gotSessionID = sessionID
	f.gotUserInput = userInput
	if f.err != nil {
		return nil, f.err
	}
	return f.state, nil
}

func TestHealthCheck(t *testing.T) {
	server := NewServer(&fakeRunner{})
	req := httptest.NewRequest(http.MethodGet, "/health_check", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestChatReturnsFullState(t *testing.T) {
	state := NewSessionState("s1")
	state.Response = "hello"
	state.ConversationHistory = []HistoryEntry{{Role: RoleUser, Content: "hi"}, {Role: RoleAssistant, Content: "hello"}}
	runner := &fakeRunner{state: state}
	server := NewServer(runner)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"session_id":"s1","user_input":"hi"}`))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if runner.gotSessionID != "s1" || runner.gotUserInput != "hi" {
		t.Errorf("runner saw session=%q input=%q", runner.gotSessionID, runner.gotUserInput)
	}

	var got SessionState
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.SessionID != "s1" || got.Response != "hello" || len(got.ConversationHistory) != 2 {
		t.Errorf("body state = %+v", got)
	}
}

func TestChatMintsSessionID(t *testing.T) {
	runner := &fakeRunner{state: NewSessionState("minted")}
	server := NewServer(runner)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"user_input":"hi"}`))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if runner.gotSessionID == "" {
		t.Error("empty session id was not minted")
	}
}

func TestChatFailureKeepsCausePrivate(t *testing.T) {
	runner := &fakeRunner{err: &OrchestrationError{Err: fmt.Errorf("password=hunter2 host=db.internal")}}
	server := NewServer(runner)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"session_id":"s1","user_input":"hi"}`))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "hunter2") || strings.Contains(body, "db.internal") {
		t.Errorf("error payload leaks internals: %s", body)
	}
	var got errorResponse
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Error == "" {
		t.Error("error payload missing message")
	}
}

func TestChatRejectsBadBody(t *testing.T) {
	server := NewServer(&fakeRunner{})

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
