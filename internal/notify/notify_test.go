package notify

import (
	"context"
	"testing"
)

func TestMockSenderRecordsNotifications(t *testing.T) {
	sender := NewMockSender()

	if err := sender.SendBookingConfirmation(context.Background(), "conv_1", "Booking confirmed (city: Bangalore)"); err != nil {
		t.Fatalf("SendBookingConfirmation returned error: %v", err)
	}
	if err := sender.SendBookingConfirmation(context.Background(), "conv_2", "Booking confirmed (city: New Delhi)"); err != nil {
		t.Fatalf("second SendBookingConfirmation returned error: %v", err)
	}

	if len(sender.Sent) != 2 {
		t.Fatalf("expected 2 recorded notifications, got %d", len(sender.Sent))
	}
	if sender.Sent[0].ConversationID != "conv_1" {
		t.Errorf("first notification conversation = %q", sender.Sent[0].ConversationID)
	}
	if sender.Sent[1].Summary != "Booking confirmed (city: New Delhi)" {
		t.Errorf("second notification summary = %q", sender.Sent[1].Summary)
	}
}

func TestLogSenderNeverFails(t *testing.T) {
	if err := (LogSender{}).SendBookingConfirmation(context.Background(), "conv_1", "summary"); err != nil {
		t.Errorf("LogSender returned error: %v", err)
	}
}

func TestNewTwilioSenderRequiresCredentials(t *testing.T) {
	for _, env := range []string{"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_FROM_NUMBER", "BOOKING_DESK_NUMBER"} {
		t.Setenv(env, "")
	}

	tests := []struct {
		name string
		opts []Option
	}{
		{name: "no configuration"},
		{name: "missing auth token", opts: []Option{WithAccountSID("AC123")}},
		{name: "missing numbers", opts: []Option{WithAccountSID("AC123"), WithAuthToken("token")}},
		{name: "missing booking desk number", opts: []Option{
			WithAccountSID("AC123"), WithAuthToken("token"), WithFrom("+15550001"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTwilioSender(tt.opts...); err == nil {
				t.Error("expected an error for incomplete configuration")
			}
		})
	}
}

func TestNewTwilioSenderWithFullConfiguration(t *testing.T) {
	sender, err := NewTwilioSender(
		WithAccountSID("AC123"),
		WithAuthToken("token"),
		WithFrom("+15550001"),
		WithTo("+15550002"),
	)
	if err != nil {
		t.Fatalf("NewTwilioSender returned error: %v", err)
	}
	if sender.from != "+15550001" || sender.to != "+15550002" {
		t.Errorf("sender numbers = %q -> %q", sender.from, sender.to)
	}
}
