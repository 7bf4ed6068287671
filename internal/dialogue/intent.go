package dialogue

import (
	"context"
	"strings"
)

// ConfirmationIntent is the interpretation of a user's reply to a yes/no
// confirmation question.
type ConfirmationIntent string

const (
	IntentAffirm  ConfirmationIntent = "affirm"
	IntentDeny    ConfirmationIntent = "deny"
	IntentUnclear ConfirmationIntent = "unclear"
)

// ConfirmationClassifier resolves a free-text reply into a confirmation
// intent. Intent resolution is a pluggable external capability; the engine
// ships a keyword classifier and accepts smarter implementations.
type ConfirmationClassifier interface {
	ClassifyConfirmation(ctx context.Context, text string) (ConfirmationIntent, error)
}

// KeywordClassifier resolves confirmation intent by matching common
// affirmative and negative keywords. It is the default classifier.
type KeywordClassifier struct{}

var affirmativeKeywords = map[string]bool{
	"yes": true, "y": true, "yeah": true, "yep": true, "yup": true,
	"sure": true, "correct": true, "right": true, "confirm": true,
	"confirmed": true, "ok": true, "okay": true, "definitely": true,
}

var negativeKeywords = map[string]bool{
	"no": true, "n": true, "nope": true, "nah": true, "wrong": true,
	"incorrect": true, "change": true, "cancel": true,
}

// ClassifyConfirmation matches the reply against known keywords. Replies
// matching neither set are unclear, keeping the confirmation pending.
func (KeywordClassifier) ClassifyConfirmation(_ context.Context, text string) (ConfirmationIntent, error) {
	normalized := strings.ToLower(strings.TrimSpace(strings.TrimRight(text, ".!?")))
	if affirmativeKeywords[normalized] {
		return IntentAffirm, nil
	}
	if negativeKeywords[normalized] {
		return IntentDeny, nil
	}
	// A multi-word reply that starts with a clear keyword still counts.
	if first, _, found := strings.Cut(normalized, " "); found {
		if affirmativeKeywords[first] {
			return IntentAffirm, nil
		}
		if negativeKeywords[first] {
			return IntentDeny, nil
		}
	}
	return IntentUnclear, nil
}
