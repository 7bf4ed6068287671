package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ku28/formi/internal/knowledge"
	"github.com/ku28/formi/internal/models"
)

// User-facing messages for generic step outcomes.
const (
	// ConfirmMessageFormat asks the user to verify a just-collected value.
	ConfirmMessageFormat = "Just to confirm, you selected %s. Is this correct?"
	// TransitionMessage acknowledges a completed step with no inform data.
	TransitionMessage = "Great! Let's proceed."
	// UnmatchedTransitionMessage is returned when no transition rule matched
	// after confirmation. This indicates a misconfigured template.
	UnmatchedTransitionMessage = "I'm sorry, I'm unable to determine the next step right now."
)

// Executor advances a conversation by exactly one user turn for one
// template. It mutates the session it is handed but must not retain it
// across calls; the session store owns session lifecycles.
type Executor struct {
	toolkit   *knowledge.Toolkit
	evaluator *Evaluator
}

// NewExecutor creates a template executor over the given capability toolkit
// and condition evaluator.
func NewExecutor(toolkit *knowledge.Toolkit, evaluator *Evaluator) *Executor {
	return &Executor{toolkit: toolkit, evaluator: evaluator}
}

// Step runs the collect-verify-confirm-inform pipeline for one turn.
//
// Verification failures and unmatched transition rules are local outcomes
// expressed in the StepResult, never errors: they keep the conversation on
// the same template and ask for corrected input.
func (e *Executor) Step(ctx context.Context, tmpl models.PromptTemplate, session *models.Session, userInput string) models.StepResult {
	slog.Debug("Executor.Step invoked", "template", tmpl.Name,
		"conversationID", session.ConversationID, "hasInput", userInput != "")

	entity := tmpl.PrimaryEntity()
	if entity == nil {
		// Unreachable for catalog-loaded templates; guarded for direct use.
		slog.Error("Executor.Step: template has no entities", "template", tmpl.Name)
		return models.StepResult{Type: models.StepError, Message: UnmatchedTransitionMessage}
	}

	// No input yet: start collection with the fallback prompt. No mutation.
	input := strings.TrimSpace(userInput)
	if input == "" {
		return models.StepResult{Type: models.StepCollect, Message: tmpl.FallbackPrompt, RequiresInput: true}
	}

	// Verify before writing anything: rejected input never advances state,
	// so invalid data can never be confirmed.
	value := input
	if entity.VerificationMethod.RequiresTool() {
		verify, ok := e.toolkit.ResolveVerifier(entity.ToolName)
		if !ok {
			// Catalog load validates tool references; reaching this means the
			// executor was built against a different toolkit.
			slog.Error("Executor.Step: unresolved tool at runtime", "template", tmpl.Name, "tool", entity.ToolName)
			return models.StepResult{Type: models.StepError, Message: UnmatchedTransitionMessage}
		}
		result := verify(session.CollectedData, input)
		if !result.Valid {
			slog.Debug("Executor.Step: tool rejected input", "template", tmpl.Name,
				"entity", entity.Name, "conversationID", session.ConversationID)
			return models.StepResult{Type: models.StepCollect, Message: result.Message, RequiresInput: true}
		}
		if result.Canonical != "" {
			value = result.Canonical
		}
	}
	if entity.VerificationMethod == models.VerifyInContext || entity.VerificationMethod == models.VerifyBoth {
		if msg, ok := validateInContext(entity, value); !ok {
			slog.Debug("Executor.Step: in-context rule rejected input", "template", tmpl.Name,
				"entity", entity.Name, "conversationID", session.ConversationID)
			return models.StepResult{Type: models.StepCollect, Message: msg, RequiresInput: true}
		}
	}

	session.CollectedData[entity.Name] = value

	// Confirmation consumes a whole turn: transition rules are not evaluated
	// on the turn that first collects the value.
	if tmpl.ConfirmationRequired && !session.Confirmations[entity.Name] {
		session.PendingConfirmation = entity.Name
		return models.StepResult{
			Type:          models.StepConfirm,
			Message:       fmt.Sprintf(ConfirmMessageFormat, value),
			RequiresInput: true,
		}
	}

	// First matching transition rule wins, in declared order.
	for _, rule := range tmpl.TransitionRules {
		if !e.evaluator.Evaluate(rule.Condition, session) {
			continue
		}
		slog.Info("Executor.Step: transition rule matched", "template", tmpl.Name,
			"condition", rule.Condition, "nextState", rule.NextState,
			"conversationID", session.ConversationID)

		for _, inform := range tmpl.InformConditions {
			if !e.evaluator.Evaluate(inform.Condition, session) {
				continue
			}
			informer, ok := e.toolkit.ResolveInformer(inform.InformationKey)
			if !ok {
				slog.Error("Executor.Step: unresolved inform key at runtime",
					"template", tmpl.Name, "key", inform.InformationKey)
				continue
			}
			message, err := informer(session.CollectedData)
			if err != nil {
				slog.Error("Executor.Step: informer failed, falling back to plain transition",
					"error", err, "template", tmpl.Name, "key", inform.InformationKey)
				continue
			}
			return models.StepResult{Type: models.StepInform, Message: message, NextState: rule.NextState}
		}
		return models.StepResult{Type: models.StepTransition, Message: TransitionMessage, NextState: rule.NextState}
	}

	// No transition rule matched after confirmation: a configuration fault,
	// distinguishable in logs from user-input validation failures.
	slog.Error("Executor.Step: no transition rule matched", "template", tmpl.Name,
		"conversationID", session.ConversationID)
	return models.StepResult{Type: models.StepError, Message: UnmatchedTransitionMessage}
}

// validateInContext applies local validation rules that need no knowledge
// lookup. Rules are enforced by bespoke logic per entity type; the
// template's ValidationRules map provides human-readable descriptions for
// error messages only.
func validateInContext(entity *models.EntityDefinition, value string) (string, bool) {
	switch entity.Type {
	case models.EntityTypeNumber:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Sprintf("Please give me a number for %s.", entity.Name), false
		}
	case models.EntityTypeOption:
		if len(entity.Options) == 0 {
			return "", true
		}
		for _, option := range entity.Options {
			if strings.EqualFold(option, value) {
				return "", true
			}
		}
		return fmt.Sprintf("Please choose one of: %s.", strings.Join(entity.Options, ", ")), false
	}
	return "", true
}
