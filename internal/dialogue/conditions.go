// Package dialogue implements the template execution engine: the condition
// evaluator, the single-turn template executor, and the conversation driver
// that ties them to sessions and templates.
package dialogue

import (
	"log/slog"

	"github.com/ku28/formi/internal/models"
)

// Predicate is one named boolean check over session state.
type Predicate func(session *models.Session) bool

// Evaluator maps condition strings to a fixed, finite set of named
// predicates. This is a deliberate restriction rather than a missing
// feature: templates are curated content, not user-supplied code, so no
// general expression parser is wanted. Unknown condition names evaluate to
// false so an unrecognized condition can never advance a conversation.
type Evaluator struct {
	predicates map[string]Predicate
}

// NewEvaluator builds the predicate registry for every entity declared by
// the given templates. Each entity contributes three predicates:
//
//	"<entity>_valid and <entity>_confirmed" - value collected and confirmed
//	"<entity>_invalid"                      - no value collected
//	"<entity>_confirmed"                    - value confirmed
func NewEvaluator(templates []models.PromptTemplate) *Evaluator {
	e := &Evaluator{predicates: make(map[string]Predicate)}
	for _, tmpl := range templates {
		for _, entity := range tmpl.Entities {
			e.registerEntity(entity.Name)
		}
	}
	slog.Debug("dialogue.NewEvaluator: predicate registry built", "predicates", len(e.predicates))
	return e
}

func (e *Evaluator) registerEntity(name string) {
	e.predicates[name+"_valid and "+name+"_confirmed"] = func(s *models.Session) bool {
		return s.CollectedData[name] != "" && s.Confirmations[name]
	}
	e.predicates[name+"_invalid"] = func(s *models.Session) bool {
		return s.CollectedData[name] == ""
	}
	e.predicates[name+"_confirmed"] = func(s *models.Session) bool {
		return s.Confirmations[name]
	}
}

// Evaluate resolves a condition string against session state. Unknown
// conditions are always false.
func (e *Evaluator) Evaluate(condition string, session *models.Session) bool {
	predicate, ok := e.predicates[condition]
	if !ok {
		slog.Warn("Evaluator.Evaluate: unknown condition, evaluating false",
			"condition", condition, "conversationID", session.ConversationID)
		return false
	}
	return predicate(session)
}
