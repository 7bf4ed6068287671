// Package store provides session storage backends for Formi.
//
// This file implements the SQLite-backed session store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/ku28/formi/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists sessions in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// GetSession retrieves a session by conversation ID, or nil if absent.
func (s *SQLiteStore) GetSession(conversationID string) (*models.Session, error) {
	row := s.db.QueryRow(
		`SELECT conversation_id, current_template, collected_data, confirmations, pending_confirmation, history, created_at, updated_at
		 FROM sessions WHERE conversation_id = ?`, conversationID)
	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetSession not found", "conversationID", conversationID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetSession failed", "error", err, "conversationID", conversationID)
		return nil, fmt.Errorf("failed to get session %s: %w", conversationID, err)
	}
	return session, nil
}

// SaveSession inserts or replaces a session row.
func (s *SQLiteStore) SaveSession(session models.Session) error {
	collected, confirmations, history, err := marshalSession(session)
	if err != nil {
		slog.Error("SQLiteStore SaveSession marshal failed", "error", err, "conversationID", session.ConversationID)
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO sessions (conversation_id, current_template, collected_data, confirmations, pending_confirmation, history, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(conversation_id) DO UPDATE SET
			current_template = excluded.current_template,
			collected_data = excluded.collected_data,
			confirmations = excluded.confirmations,
			pending_confirmation = excluded.pending_confirmation,
			history = excluded.history,
			updated_at = excluded.updated_at`,
		session.ConversationID, session.CurrentTemplate, collected, confirmations,
		session.PendingConfirmation, history, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveSession failed", "error", err, "conversationID", session.ConversationID)
		return fmt.Errorf("failed to save session %s: %w", session.ConversationID, err)
	}
	slog.Debug("SQLiteStore SaveSession succeeded", "conversationID", session.ConversationID, "template", session.CurrentTemplate)
	return nil
}

// DeleteSession removes a session row.
func (s *SQLiteStore) DeleteSession(conversationID string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE conversation_id = ?`, conversationID)
	if err != nil {
		slog.Error("SQLiteStore DeleteSession failed", "error", err, "conversationID", conversationID)
		return fmt.Errorf("failed to delete session %s: %w", conversationID, err)
	}
	return nil
}

// ListSessions returns all stored sessions.
func (s *SQLiteStore) ListSessions() ([]models.Session, error) {
	rows, err := s.db.Query(
		`SELECT conversation_id, current_template, collected_data, confirmations, pending_confirmation, history, created_at, updated_at
		 FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		slog.Error("SQLiteStore ListSessions query failed", "error", err)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// marshalSession serializes the map and slice fields of a session for
// storage in JSON columns.
func marshalSession(session models.Session) (collected, confirmations, history []byte, err error) {
	collected, err = json.Marshal(session.CollectedData)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal collected data: %w", err)
	}
	confirmations, err = json.Marshal(session.Confirmations)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal confirmations: %w", err)
	}
	history, err = json.Marshal(session.History)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal history: %w", err)
	}
	return collected, confirmations, history, nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanSession reads one session row, decoding the JSON columns.
func scanSession(row rowScanner) (*models.Session, error) {
	var session models.Session
	var collected, confirmations, history []byte
	err := row.Scan(&session.ConversationID, &session.CurrentTemplate, &collected,
		&confirmations, &session.PendingConfirmation, &history, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(collected, &session.CollectedData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal collected data: %w", err)
	}
	if err := json.Unmarshal(confirmations, &session.Confirmations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal confirmations: %w", err)
	}
	if err := json.Unmarshal(history, &session.History); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return &session, nil
}

// collectSessions drains rows into a slice of sessions.
func collectSessions(rows *sql.Rows) ([]models.Session, error) {
	var sessions []models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}
	return sessions, nil
}
