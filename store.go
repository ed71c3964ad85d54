// Package ragpod - store.go
// Durable session-state persistence keyed by session id, with upsert
// semantics over Postgres.

package ragpod

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionStore loads and saves SessionState by session id. Load never fails
// solely because the id is unseen; Save is a full overwrite by primary key.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*SessionState, error)
	Save(ctx context.Context, state *SessionState) error
}

// sessionRecord is the relational shape of SessionState. History and
// context are serialized JSON columns; the caller always writes the whole
// row.
type sessionRecord struct {
	SessionID           string    `gorm:"column:session_id;primaryKey"`
	UserInput           string    `gorm:"column:user_input"`
	ConversationHistory string    `gorm:"column:conversation_history;type:jsonb"`
	RetrievedContext    string    `gorm:"column:retrieved_context;type:jsonb"`
	Response            string    `gorm:"column:response"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (sessionRecord) TableName() string { return "session_state" }

// PostgresStore implements SessionStore over a shared connection pool. The
// pool and schema are initialized lazily, exactly once per process;
// concurrent first callers share one initialization.
type PostgresStore struct {
	dsn     string
	poolMin int
	poolMax int

	initOnce sync.Once
	initErr  error
	db       *gorm.DB

	logger *slog.Logger
}

var _ SessionStore = &PostgresStore{}

// PostgresDSN builds the connection string from the recognized settings.
func PostgresDSN(cfg *Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s application_name=%s sslmode=disable",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresAppName)
}

func NewPostgresStore(dsn string, poolMin int, poolMax int) *PostgresStore {
	return &PostgresStore{
		dsn:     dsn,
		poolMin: poolMin,
		poolMax: poolMax,
		logger:  slog.Default(),
	}
}

func (s *PostgresStore) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func (s *PostgresStore) ensureDB() (*gorm.DB, error) {
	s.initOnce.Do(func() {
		db, err := gorm.Open(postgres.Open(s.dsn), &gorm.Config{})
		if err != nil {
			s.initErr = fmt.Errorf("failed to open database: %w", err)
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			s.initErr = fmt.Errorf("failed to access connection pool: %w", err)
			return
		}
		sqlDB.SetMaxIdleConns(s.poolMin)
		sqlDB.SetMaxOpenConns(s.poolMax)

		if err := db.AutoMigrate(&sessionRecord{}); err != nil {
			s.initErr = fmt.Errorf("failed to initialize schema: %w", err)
			return
		}
		s.db = db
		s.logger.Info("Session store initialized", "pool_min", s.poolMin, "pool_max", s.poolMax)
	})
	return s.db, s.initErr
}

// Load returns the stored state for the id, or a default-initialized state
// when the id has never been seen. Loading an unseen id writes nothing.
func (s *PostgresStore) Load(ctx context.Context, sessionID string) (*SessionState, error) {
	db, err := s.ensureDB()
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	var rec sessionRecord
	err = db.WithContext(ctx).First(&rec, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewSessionState(sessionID), nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	state, err := recordToState(&rec)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	return state, nil
}

// Save upserts the complete state by session id in a single statement. On
// conflict every column is overwritten, never merged.
func (s *PostgresStore) Save(ctx context.Context, state *SessionState) error {
	if state.SessionID == "" {
		return &PersistenceError{Op: "save", Err: fmt.Errorf("session id must not be empty")}
	}
	db, err := s.ensureDB()
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	rec, err := stateToRecord(state)
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	rec.UpdatedAt = time.Now().UTC()

	err = db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_input", "conversation_history", "retrieved_context", "response", "updated_at",
		}),
	}).Create(rec).Error
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// Close releases the pool if it was ever initialized.
func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func stateToRecord(state *SessionState) (*sessionRecord, error) {
	history, err := json.Marshal(state.ConversationHistory)
	if err != nil {
		return nil, fmt.Errorf("failed to encode conversation history: %w", err)
	}
	contexts, err := json.Marshal(state.RetrievedContext)
	if err != nil {
		return nil, fmt.Errorf("failed to encode retrieved context: %w", err)
	}
	return &sessionRecord{
		SessionID:           state.SessionID,
		UserInput:           state.UserInput,
		ConversationHistory: string(history),
		RetrievedContext:    string(contexts),
		Response:            state.Response,
	}, nil
}

func recordToState(rec *sessionRecord) (*SessionState, error) {
	state := NewSessionState(rec.SessionID)
	state.UserInput = rec.UserInput
	state.Response = rec.Response
	if rec.ConversationHistory != "" {
		if err := json.Unmarshal([]byte(rec.ConversationHistory), &state.ConversationHistory); err != nil {
			return nil, fmt.Errorf("failed to decode conversation history: %w", err)
		}
	}
	if rec.RetrievedContext != "" {
		if err := json.Unmarshal([]byte(rec.RetrievedContext), &state.RetrievedContext); err != nil {
			return nil, fmt.Errorf("failed to decode retrieved context: %w", err)
		}
	}
	return state, nil
}
