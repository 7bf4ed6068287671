package dialogue

import (
	"context"
	"testing"
)

func TestKeywordClassifierClassifyConfirmation(t *testing.T) {
	classifier := KeywordClassifier{}

	tests := []struct {
		name     string
		text     string
		expected ConfirmationIntent
	}{
		{name: "plain yes", text: "yes", expected: IntentAffirm},
		{name: "yes with punctuation", text: "Yes!", expected: IntentAffirm},
		{name: "casual affirmation", text: "yep", expected: IntentAffirm},
		{name: "affirmative sentence", text: "sure, that works", expected: IntentAffirm},
		{name: "plain no", text: "no", expected: IntentDeny},
		{name: "negative with trailing words", text: "no, I meant Delhi", expected: IntentDeny},
		{name: "wrong", text: "wrong", expected: IntentDeny},
		{name: "unrelated reply", text: "what are your timings?", expected: IntentUnclear},
		{name: "empty reply", text: "", expected: IntentUnclear},
		{name: "whitespace only", text: "   ", expected: IntentUnclear},
		{name: "keyword buried mid-sentence", text: "I think yes maybe", expected: IntentUnclear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, err := classifier.ClassifyConfirmation(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("ClassifyConfirmation(%q) returned error: %v", tt.text, err)
			}
			if intent != tt.expected {
				t.Errorf("ClassifyConfirmation(%q) = %q, expected %q", tt.text, intent, tt.expected)
			}
		})
	}
}
