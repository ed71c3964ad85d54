// Package ragpod - server.go
// The HTTP request boundary: one chat endpoint and one liveness endpoint.

package ragpod

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// TurnRunner is the orchestration contract the boundary depends on.
type TurnRunner interface {
	RunTurn(ctx context.Context, sessionID string, userInput string) (*SessionState, error)
}

// ChatRequest is the inbound payload for one turn.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	UserInput string `json:"user_input"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes the orchestrator over HTTP. Failure payloads stay generic:
// wrapped causes are logged here, never returned to the caller.
type Server struct {
	runner TurnRunner
	logger *slog.Logger
}

func NewServer(runner TurnRunner) *Server {
	return &Server{
		runner: runner,
		logger: slog.Default(),
	}
}

func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /health_check", s.handleHealthCheck)
	return mux
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	started := time.Now()

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Error("Invalid chat request body", "request_id", requestID, "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		minted, err := gonanoid.New()
		if err != nil {
			s.logger.Error("Failed to mint session id", "request_id", requestID, "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			return
		}
		sessionID = minted
	}

	state, err := s.runner.RunTurn(r.Context(), sessionID, req.UserInput)
	if err != nil {
		s.logger.Error("Chat turn failed",
			"request_id", requestID,
			"session_id", sessionID,
			"duration", time.Since(started),
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "orchestration failed"})
		return
	}

	s.logger.Info("Chat turn served",
		"request_id", requestID,
		"session_id", sessionID,
		"duration", time.Since(started),
	)
	writeJSON(w, http.StatusOK, state)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
