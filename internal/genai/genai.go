// Package genai provides a GenAI-backed confirmation classifier using the
// OpenAI API.
//
// The dialogue engine treats intent resolution as a pluggable external
// capability; this package is one implementation of it. The default keyword
// classifier needs no API key and remains the fallback.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ku28/formi/internal/dialogue"
)

// ErrNoChoicesReturned indicates the completion API returned no choices.
var ErrNoChoicesReturned = errors.New("no choices returned")

// classifierSystemPrompt constrains the model to a three-way answer.
const classifierSystemPrompt = "You are a confirmation intent classifier for a restaurant booking assistant. " +
	"The user was just asked to confirm a value with yes or no. " +
	"Classify their reply as exactly one word: AFFIRM, DENY, or UNCLEAR."

// chatService defines the minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// completionsAdapter adapts the OpenAI SDK client to chatService.
type completionsAdapter struct {
	client openai.Client
}

func (a completionsAdapter) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey string
	Model  openai.ChatModel
}

// Option defines a configuration option for the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the completion model.
func WithModel(model openai.ChatModel) Option {
	return func(o *Opts) { o.Model = model }
}

// Client classifies confirmation replies with an OpenAI chat model. It
// implements dialogue.ConfirmationClassifier.
type Client struct {
	chat  chatService
	model openai.ChatModel
}

// NewClient initializes a GenAI client. The API key falls back to the
// OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4oMini
	}
	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Client{chat: completionsAdapter{client: cli}, model: cfg.Model}, nil
}

// ClassifyConfirmation asks the model whether the reply affirms or denies
// the pending confirmation. Unparseable model output maps to unclear so a
// flaky completion can never silently confirm a value.
func (c *Client) ClassifyConfirmation(ctx context.Context, text string) (dialogue.ConfirmationIntent, error) {
	resp, err := c.chat.Create(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(classifierSystemPrompt),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		slog.Error("genai.ClassifyConfirmation: completion failed", "error", err)
		return dialogue.IntentUnclear, err
	}
	if len(resp.Choices) == 0 {
		return dialogue.IntentUnclear, ErrNoChoicesReturned
	}

	answer := strings.ToUpper(strings.TrimSpace(resp.Choices[0].Message.Content))
	switch {
	case strings.HasPrefix(answer, "AFFIRM"):
		return dialogue.IntentAffirm, nil
	case strings.HasPrefix(answer, "DENY"):
		return dialogue.IntentDeny, nil
	default:
		slog.Debug("genai.ClassifyConfirmation: unclear model answer", "answer", answer)
		return dialogue.IntentUnclear, nil
	}
}
