// Package models defines API request and response structures for Formi.
package models

import "errors"

// Validation constants for chat input.
const (
	// MaxMessageLength defines the maximum allowed length for a chat message.
	MaxMessageLength = 4096
)

// Error variables for request validation.
var (
	ErrEmptyMessage   = errors.New("message cannot be empty")
	ErrMessageTooLong = errors.New("message exceeds maximum length")
)

// ChatRequest is an inbound user message. ConversationID is optional; when
// absent the engine mints one and starts a new session.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// Validate checks a chat request for well-formedness. An empty message is
// allowed only when no conversation is established yet (it triggers the
// initial collect prompt).
func (r *ChatRequest) Validate() error {
	if r.ConversationID != "" && r.Message == "" {
		return ErrEmptyMessage
	}
	if len(r.Message) > MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// ChatResponse is the engine's reply to one user turn. The hint fields are
// derived from the active template and collected data each turn, never
// stored.
type ChatResponse struct {
	Reply              string              `json:"reply"`
	ConversationID     string              `json:"conversation_id"`
	CurrentState       string              `json:"current_state"`
	RequiresInput      bool                `json:"requires_input"`
	RequiresCity       bool                `json:"requires_city,omitempty"`
	RequiresLocation   bool                `json:"requires_location,omitempty"`
	AvailableCities    []string            `json:"available_cities,omitempty"`
	AvailableLocations map[string][]string `json:"available_locations,omitempty"`
}

// API response types for consistent JSON responses.

// APIStatus represents the status field of an API response.
type APIStatus string

const (
	APIStatusOK    APIStatus = "ok"
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message and result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
