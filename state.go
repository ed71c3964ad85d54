package ragpod

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// HistoryEntry is one message of the durable dialogue transcript.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ContextEntry is one passage from the most recent retrieval, kept alongside
// the transcript so a session can show what grounded its last answer.
type ContextEntry struct {
	Content    string  `json:"content"`
	PageNumber int64   `json:"page_number,omitempty"`
	Score      float64 `json:"score,omitempty"`
}

// SessionState is the unit of durable conversation memory, keyed by
// SessionID. It is mutated exactly once per turn by the Orchestrator and
// written back as a whole.
type SessionState struct {
	SessionID           string         `json:"session_id"`
	UserInput           string         `json:"user_input"`
	ConversationHistory []HistoryEntry `json:"conversation_history"`
	RetrievedContext    []ContextEntry `json:"retrieved_context"`
	Response            string         `json:"response"`
}

// NewSessionState returns the default-initialized state for a session id,
// used when the store has never seen the id before.
func NewSessionState(sessionID string) *SessionState {
	return &SessionState{
		SessionID:           sessionID,
		ConversationHistory: []HistoryEntry{},
		RetrievedContext:    []ContextEntry{},
	}
}

// Clone returns a deep copy so a turn can build its outcome without mutating
// the loaded state. Turn steps work on copies and return new values.
func (s *SessionState) Clone() *SessionState {
	history := make([]HistoryEntry, len(s.ConversationHistory))
	copy(history, s.ConversationHistory)
	contexts := make([]ContextEntry, len(s.RetrievedContext))
	copy(contexts, s.RetrievedContext)
	return &SessionState{
		SessionID:           s.SessionID,
		UserInput:           s.UserInput,
		ConversationHistory: history,
		RetrievedContext:    contexts,
		Response:            s.Response,
	}
}
