// Package models defines conversation session structures for Formi.
package models

import "time"

// TurnRole identifies who produced a turn in the conversation history.
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// Turn is one message in a conversation's append-only history.
type Turn struct {
	Role      TurnRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session holds the accumulated state of one conversation across turns.
// It is exclusively owned by the session store; the executor receives a
// mutable reference for the duration of a single turn only.
type Session struct {
	ConversationID  string            `json:"conversation_id"`
	CurrentTemplate string            `json:"current_template"`
	CollectedData   map[string]string `json:"collected_data"`
	Confirmations   map[string]bool   `json:"confirmations"`
	// PendingConfirmation names the entity awaiting a yes/no answer, empty
	// when no confirmation is outstanding.
	PendingConfirmation string    `json:"pending_confirmation,omitempty"`
	History             []Turn    `json:"history"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewSession creates an empty session positioned at the given template.
func NewSession(conversationID, initialTemplate string) *Session {
	now := time.Now()
	return &Session{
		ConversationID:  conversationID,
		CurrentTemplate: initialTemplate,
		CollectedData:   make(map[string]string),
		Confirmations:   make(map[string]bool),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// AppendTurn records one message in the session history.
func (s *Session) AppendTurn(role TurnRole, content string) {
	now := time.Now()
	s.History = append(s.History, Turn{Role: role, Content: content, Timestamp: now})
	s.UpdatedAt = now
}
