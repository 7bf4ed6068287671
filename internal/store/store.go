// Package store provides session storage backends for Formi.
//
// It includes an in-memory store for tests and single-process deployments,
// plus SQLite and PostgreSQL backed stores for persistence across restarts.
package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ku28/formi/internal/models"
)

// SessionStore is the persistence abstraction for conversation sessions.
// GetSession returns nil without error when no session exists.
type SessionStore interface {
	GetSession(conversationID string) (*models.Session, error)
	SaveSession(session models.Session) error
	DeleteSession(conversationID string) error
	ListSessions() ([]models.Session, error)
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	// DSN is the database connection string (file path for SQLite).
	DSN string
	// SessionTTL evicts sessions idle longer than this duration. Zero
	// disables eviction.
	SessionTTL time.Duration
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithDSN sets the database connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithSessionTTL sets the idle session eviction duration.
func WithSessionTTL(ttl time.Duration) Option {
	return func(o *Opts) { o.SessionTTL = ttl }
}

// janitorInterval is how often the in-memory store sweeps idle sessions.
const janitorInterval = time.Minute

// InMemoryStore keeps sessions in a mutex-guarded map. Sessions are copied
// on the way in and out so callers never share the stored value.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
	ttl      time.Duration
	done     chan struct{}
	once     sync.Once
}

// NewInMemoryStore creates an in-memory session store. When a session TTL
// is configured, a background janitor evicts idle sessions.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &InMemoryStore{
		sessions: make(map[string]models.Session),
		ttl:      cfg.SessionTTL,
		done:     make(chan struct{}),
	}
	if s.ttl > 0 {
		go s.janitor()
	}
	slog.Debug("InMemoryStore created", "sessionTTL", s.ttl)
	return s
}

func (s *InMemoryStore) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.ttl)
			s.mu.Lock()
			for id, session := range s.sessions {
				if session.UpdatedAt.Before(cutoff) {
					delete(s.sessions, id)
					slog.Info("InMemoryStore evicted idle session", "conversationID", id, "updatedAt", session.UpdatedAt)
				}
			}
			s.mu.Unlock()
		}
	}
}

// GetSession retrieves a session by conversation ID, or nil if absent.
func (s *InMemoryStore) GetSession(conversationID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[conversationID]
	if !ok {
		return nil, nil
	}
	copied := copySession(session)
	return &copied, nil
}

// SaveSession stores a session, replacing any previous value.
func (s *InMemoryStore) SaveSession(session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ConversationID] = copySession(session)
	return nil
}

// DeleteSession removes a session. Deleting a missing session is not an error.
func (s *InMemoryStore) DeleteSession(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, conversationID)
	return nil
}

// ListSessions returns copies of all stored sessions.
func (s *InMemoryStore) ListSessions() ([]models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]models.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, copySession(session))
	}
	return sessions, nil
}

// Close stops the janitor goroutine.
func (s *InMemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

// copySession deep-copies a session so stored state is never aliased.
func copySession(in models.Session) models.Session {
	out := in
	out.CollectedData = make(map[string]string, len(in.CollectedData))
	for k, v := range in.CollectedData {
		out.CollectedData[k] = v
	}
	out.Confirmations = make(map[string]bool, len(in.Confirmations))
	for k, v := range in.Confirmations {
		out.Confirmations[k] = v
	}
	out.History = make([]models.Turn, len(in.History))
	copy(out.History, in.History)
	return out
}
