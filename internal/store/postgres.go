// Package store provides session storage backends for Formi.
//
// This file implements the PostgreSQL-backed session store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "embed"

	"github.com/ku28/formi/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists sessions in a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// GetSession retrieves a session by conversation ID, or nil if absent.
func (s *PostgresStore) GetSession(conversationID string) (*models.Session, error) {
	row := s.db.QueryRow(
		`SELECT conversation_id, current_template, collected_data, confirmations, pending_confirmation, history, created_at, updated_at
		 FROM sessions WHERE conversation_id = $1`, conversationID)
	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetSession not found", "conversationID", conversationID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetSession failed", "error", err, "conversationID", conversationID)
		return nil, fmt.Errorf("failed to get session %s: %w", conversationID, err)
	}
	return session, nil
}

// SaveSession inserts or replaces a session row.
func (s *PostgresStore) SaveSession(session models.Session) error {
	collected, confirmations, history, err := marshalSession(session)
	if err != nil {
		slog.Error("PostgresStore SaveSession marshal failed", "error", err, "conversationID", session.ConversationID)
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO sessions (conversation_id, current_template, collected_data, confirmations, pending_confirmation, history, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (conversation_id) DO UPDATE SET
			current_template = EXCLUDED.current_template,
			collected_data = EXCLUDED.collected_data,
			confirmations = EXCLUDED.confirmations,
			pending_confirmation = EXCLUDED.pending_confirmation,
			history = EXCLUDED.history,
			updated_at = EXCLUDED.updated_at`,
		session.ConversationID, session.CurrentTemplate, collected, confirmations,
		session.PendingConfirmation, history, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveSession failed", "error", err, "conversationID", session.ConversationID)
		return fmt.Errorf("failed to save session %s: %w", session.ConversationID, err)
	}
	slog.Debug("PostgresStore SaveSession succeeded", "conversationID", session.ConversationID, "template", session.CurrentTemplate)
	return nil
}

// DeleteSession removes a session row.
func (s *PostgresStore) DeleteSession(conversationID string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE conversation_id = $1`, conversationID)
	if err != nil {
		slog.Error("PostgresStore DeleteSession failed", "error", err, "conversationID", conversationID)
		return fmt.Errorf("failed to delete session %s: %w", conversationID, err)
	}
	return nil
}

// ListSessions returns all stored sessions.
func (s *PostgresStore) ListSessions() ([]models.Session, error) {
	rows, err := s.db.Query(
		`SELECT conversation_id, current_template, collected_data, confirmations, pending_confirmation, history, created_at, updated_at
		 FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		slog.Error("PostgresStore ListSessions query failed", "error", err)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
