// Package models defines template execution result structures for Formi.
package models

// StepType is the kind of outcome produced by executing one template step.
type StepType string

const (
	// StepCollect asks the user for (new or corrected) input. The session
	// is unchanged except possibly an error note.
	StepCollect StepType = "collect"
	// StepConfirm asks the user to verify the just-collected value.
	StepConfirm StepType = "confirm"
	// StepInform delivers derived information and transitions the session.
	StepInform StepType = "inform"
	// StepTransition moves to the next template with a generic acknowledgment.
	StepTransition StepType = "transition"
	// StepError signals that no transition rule matched after confirmation.
	// This is a template configuration fault, not a user input fault.
	StepError StepType = "error"
)

// StepResult is the outcome of advancing a conversation by one user turn.
type StepResult struct {
	Type      StepType `json:"type"`
	Message   string   `json:"message"`
	NextState string   `json:"next_state,omitempty"`
	// RequiresInput indicates the caller must resend with new user input.
	RequiresInput bool `json:"requires_input"`
}

// Advances reports whether this result moves the conversation to a new
// template.
func (r StepResult) Advances() bool {
	return r.Type == StepTransition || r.Type == StepInform
}
