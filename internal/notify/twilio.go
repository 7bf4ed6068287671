// Package notify provides the Twilio-backed SMS notification channel.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Opts holds configuration options for the Twilio sender.
type Opts struct {
	AccountSID string
	AuthToken  string
	From       string
	// To is the booking desk number that receives confirmation messages.
	To string
}

// Option defines a configuration option for the Twilio sender.
type Option func(*Opts)

// WithAccountSID sets the Twilio account SID.
func WithAccountSID(sid string) Option {
	return func(o *Opts) { o.AccountSID = sid }
}

// WithAuthToken sets the Twilio auth token.
func WithAuthToken(token string) Option {
	return func(o *Opts) { o.AuthToken = token }
}

// WithFrom sets the sending phone number.
func WithFrom(from string) Option {
	return func(o *Opts) { o.From = from }
}

// WithTo sets the booking desk phone number.
func WithTo(to string) Option {
	return func(o *Opts) { o.To = to }
}

// TwilioSender delivers booking confirmations as SMS via the Twilio API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
	to     string
}

// NewTwilioSender creates a Twilio-backed sender. Options fall back to the
// TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_FROM_NUMBER and
// BOOKING_DESK_NUMBER environment variables.
func NewTwilioSender(opts ...Option) (*TwilioSender, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.From == "" {
		cfg.From = os.Getenv("TWILIO_FROM_NUMBER")
	}
	if cfg.To == "" {
		cfg.To = os.Getenv("BOOKING_DESK_NUMBER")
	}
	slog.Debug("Twilio sender config loaded",
		"AccountSID_set", cfg.AccountSID != "",
		"AuthToken_set", cfg.AuthToken != "",
		"From_set", cfg.From != "",
		"To_set", cfg.To != "")

	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if cfg.From == "" || cfg.To == "" {
		return nil, fmt.Errorf("from and booking desk numbers must be provided")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioSender{client: client, from: cfg.From, to: cfg.To}, nil
}

// SendBookingConfirmation sends the booking summary as an SMS to the
// booking desk.
func (s *TwilioSender) SendBookingConfirmation(ctx context.Context, conversationID, summary string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(s.to)
	params.SetFrom(s.from)
	params.SetBody(fmt.Sprintf("[%s] %s", conversationID, summary))

	_, err := s.client.Api.CreateMessage(params)
	if err != nil {
		slog.Error("Twilio SendBookingConfirmation failed", "error", err, "conversationID", conversationID)
		return fmt.Errorf("failed to send booking confirmation for %s: %w", conversationID, err)
	}

	slog.Debug("Twilio booking confirmation sent", "conversationID", conversationID)
	return nil
}
