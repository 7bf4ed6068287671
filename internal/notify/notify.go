// Package notify delivers booking confirmation notifications when a
// conversation reaches the end of the booking flow.
package notify

import (
	"context"
	"log/slog"
)

// Sender is a pluggable outbound notification channel.
type Sender interface {
	// SendBookingConfirmation delivers a booking summary for a completed
	// conversation.
	SendBookingConfirmation(ctx context.Context, conversationID, summary string) error
}

// LogSender writes booking confirmations to the structured log. It is the
// default sender when no delivery channel is configured.
type LogSender struct{}

// SendBookingConfirmation logs the booking summary.
func (LogSender) SendBookingConfirmation(_ context.Context, conversationID, summary string) error {
	slog.Info("Booking confirmed", "conversationID", conversationID, "summary", summary)
	return nil
}

// MockSender records notifications for tests.
type MockSender struct {
	Sent []SentNotification
}

// SentNotification is one recorded notification.
type SentNotification struct {
	ConversationID string
	Summary        string
}

// NewMockSender creates an empty mock sender.
func NewMockSender() *MockSender {
	return &MockSender{Sent: []SentNotification{}}
}

// SendBookingConfirmation records the notification.
func (m *MockSender) SendBookingConfirmation(_ context.Context, conversationID, summary string) error {
	m.Sent = append(m.Sent, SentNotification{ConversationID: conversationID, Summary: summary})
	return nil
}
