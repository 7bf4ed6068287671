package dialogue

import (
	"context"
	"strings"
	"testing"

	"github.com/ku28/formi/internal/catalog"
	"github.com/ku28/formi/internal/knowledge"
	"github.com/ku28/formi/internal/models"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	base, err := knowledge.Load()
	if err != nil {
		t.Fatalf("failed to load knowledge base: %v", err)
	}
	toolkit := knowledge.NewToolkit(base)
	return NewExecutor(toolkit, NewEvaluator(catalog.DefaultTemplates()))
}

func templateByName(t *testing.T, name string) models.PromptTemplate {
	t.Helper()
	for _, tmpl := range catalog.DefaultTemplates() {
		if tmpl.Name == name {
			return tmpl
		}
	}
	t.Fatalf("template %s not found in defaults", name)
	return models.PromptTemplate{}
}

func TestStepEmptyInputReturnsFallbackPrompt(t *testing.T) {
	executor := newTestExecutor(t)
	tmpl := templateByName(t, catalog.TemplateCityCollection)
	session := models.NewSession("conv_test", tmpl.Name)

	result := executor.Step(context.Background(), tmpl, session, "")

	if result.Type != models.StepCollect {
		t.Errorf("expected collect step, got %s", result.Type)
	}
	if result.Message != tmpl.FallbackPrompt {
		t.Errorf("expected fallback prompt %q, got %q", tmpl.FallbackPrompt, result.Message)
	}
	if !result.RequiresInput {
		t.Error("expected collect step to require input")
	}
	if len(session.CollectedData) != 0 {
		t.Errorf("expected no collected data, got %v", session.CollectedData)
	}
}

func TestStepInvalidCityDoesNotMutateSession(t *testing.T) {
	executor := newTestExecutor(t)
	tmpl := templateByName(t, catalog.TemplateCityCollection)
	session := models.NewSession("conv_test", tmpl.Name)

	result := executor.Step(context.Background(), tmpl, session, "Mumbai")

	if result.Type != models.StepCollect {
		t.Errorf("expected collect step on rejection, got %s", result.Type)
	}
	if !strings.Contains(result.Message, "Mumbai") {
		t.Errorf("expected rejection message to echo the input, got %q", result.Message)
	}
	if !strings.Contains(result.Message, "Bangalore") || !strings.Contains(result.Message, "New Delhi") {
		t.Errorf("expected rejection message to list available cities, got %q", result.Message)
	}
	if _, ok := session.CollectedData["city"]; ok {
		t.Error("rejected input must not be stored in collected data")
	}
	if session.PendingConfirmation != "" {
		t.Errorf("rejected input must not open a confirmation, got %q", session.PendingConfirmation)
	}
}

func TestStepValidCityRequestsConfirmation(t *testing.T) {
	executor := newTestExecutor(t)
	tmpl := templateByName(t, catalog.TemplateCityCollection)
	session := models.NewSession("conv_test", tmpl.Name)

	result := executor.Step(context.Background(), tmpl, session, "bangalore")

	if result.Type != models.StepConfirm {
		t.Fatalf("expected confirm step, got %s", result.Type)
	}
	if session.CollectedData["city"] != "Bangalore" {
		t.Errorf("expected canonical city Bangalore, got %q", session.CollectedData["city"])
	}
	if session.PendingConfirmation != "city" {
		t.Errorf("expected pending confirmation for city, got %q", session.PendingConfirmation)
	}
	if !strings.Contains(result.Message, "Bangalore") {
		t.Errorf("confirmation message should carry the canonical value, got %q", result.Message)
	}
	if result.NextState != "" {
		t.Errorf("confirmation must not transition, got next state %q", result.NextState)
	}
}

func TestStepConfirmedCityTransitions(t *testing.T) {
	executor := newTestExecutor(t)
	tmpl := templateByName(t, catalog.TemplateCityCollection)
	session := models.NewSession("conv_test", tmpl.Name)
	session.CollectedData["city"] = "Bangalore"
	session.Confirmations["city"] = true

	result := executor.Step(context.Background(), tmpl, session, "Bangalore")

	if result.Type != models.StepTransition {
		t.Fatalf("expected transition step, got %s", result.Type)
	}
	if result.NextState != catalog.TemplateLocationCollection {
		t.Errorf("expected transition to %s, got %q", catalog.TemplateLocationCollection, result.NextState)
	}
	if result.Message != TransitionMessage {
		t.Errorf("expected %q, got %q", TransitionMessage, result.Message)
	}
}

func TestStepFirstMatchingTransitionRuleWins(t *testing.T) {
	executor := newTestExecutor(t)
	// Both rules would match a session with a confirmed city if rule order
	// were ignored; the declared first rule must win.
	tmpl := templateByName(t, catalog.TemplateCityCollection)
	tmpl.TransitionRules = []models.TransitionRule{
		{Condition: "city_valid and city_confirmed", NextState: catalog.TemplateLocationCollection},
		{Condition: "city_confirmed", NextState: catalog.TemplateSlotCollection},
	}
	session := models.NewSession("conv_test", tmpl.Name)
	session.Confirmations["city"] = true

	result := executor.Step(context.Background(), tmpl, session, "Bangalore")

	if result.NextState != catalog.TemplateLocationCollection {
		t.Errorf("expected first matching rule to win, got next state %q", result.NextState)
	}
}

func TestStepConfirmedLocationInformsOutletDetails(t *testing.T) {
	executor := newTestExecutor(t)
	tmpl := templateByName(t, catalog.TemplateLocationCollection)
	session := models.NewSession("conv_test", tmpl.Name)
	session.CollectedData["city"] = "Bangalore"
	session.Confirmations["city"] = true
	session.CollectedData["location"] = "Indiranagar"
	session.Confirmations["location"] = true

	result := executor.Step(context.Background(), tmpl, session, "Indiranagar")

	if result.Type != models.StepInform {
		t.Fatalf("expected inform step, got %s", result.Type)
	}
	if result.NextState != catalog.TemplateSlotCollection {
		t.Errorf("expected transition to %s, got %q", catalog.TemplateSlotCollection, result.NextState)
	}
	if !strings.Contains(result.Message, "Indiranagar") {
		t.Errorf("expected outlet details in inform message, got %q", result.Message)
	}
}

func TestStepLocationRejectedWithoutCity(t *testing.T) {
	executor := newTestExecutor(t)
	tmpl := templateByName(t, catalog.TemplateLocationCollection)
	session := models.NewSession("conv_test", tmpl.Name)

	result := executor.Step(context.Background(), tmpl, session, "Indiranagar")

	if result.Type != models.StepCollect {
		t.Errorf("expected collect step, got %s", result.Type)
	}
	if _, ok := session.CollectedData["location"]; ok {
		t.Error("location must not be stored before a city is chosen")
	}
}

func TestStepInvalidSlotListsAlternatives(t *testing.T) {
	executor := newTestExecutor(t)
	tmpl := templateByName(t, catalog.TemplateSlotCollection)
	session := models.NewSession("conv_test", tmpl.Name)
	session.CollectedData["city"] = "Bangalore"
	session.CollectedData["location"] = "Indiranagar"

	result := executor.Step(context.Background(), tmpl, session, "03:00")

	if result.Type != models.StepCollect {
		t.Errorf("expected collect step, got %s", result.Type)
	}
	if !strings.Contains(result.Message, "12:00") {
		t.Errorf("expected rejection message to list available slots, got %q", result.Message)
	}
	if _, ok := session.CollectedData["time_slot"]; ok {
		t.Error("invalid slot must not be stored")
	}
}

func TestStepConfirmedSlotCompletesFlow(t *testing.T) {
	executor := newTestExecutor(t)
	tmpl := templateByName(t, catalog.TemplateSlotCollection)
	session := models.NewSession("conv_test", tmpl.Name)
	session.CollectedData["city"] = "Bangalore"
	session.CollectedData["location"] = "Indiranagar"
	session.CollectedData["time_slot"] = "19:00"
	session.Confirmations["time_slot"] = true

	result := executor.Step(context.Background(), tmpl, session, "19:00")

	if result.Type != models.StepTransition {
		t.Fatalf("expected transition step, got %s", result.Type)
	}
	if result.NextState != catalog.TerminalState {
		t.Errorf("expected terminal state, got %q", result.NextState)
	}
}

func TestStepNoMatchingRuleIsError(t *testing.T) {
	executor := newTestExecutor(t)
	tmpl := templateByName(t, catalog.TemplateCityCollection)
	tmpl.ConfirmationRequired = false
	tmpl.TransitionRules = []models.TransitionRule{
		{Condition: "city_valid or city_confirmed", NextState: catalog.TemplateLocationCollection},
	}
	session := models.NewSession("conv_test", tmpl.Name)

	result := executor.Step(context.Background(), tmpl, session, "Bangalore")

	if result.Type != models.StepError {
		t.Errorf("expected error step when no rule matches, got %s", result.Type)
	}
	if result.NextState != "" {
		t.Errorf("an unmatched step must not transition, got %q", result.NextState)
	}
}

func TestValidateInContext(t *testing.T) {
	tests := []struct {
		name   string
		entity models.EntityDefinition
		value  string
		valid  bool
	}{
		{
			name:   "number accepts digits",
			entity: models.EntityDefinition{Name: "guest_count", Type: models.EntityTypeNumber},
			value:  "4",
			valid:  true,
		},
		{
			name:   "number rejects words",
			entity: models.EntityDefinition{Name: "guest_count", Type: models.EntityTypeNumber},
			value:  "four",
			valid:  false,
		},
		{
			name:   "option matches case-insensitively",
			entity: models.EntityDefinition{Name: "seating", Type: models.EntityTypeOption, Options: []string{"Indoor", "Outdoor"}},
			value:  "outdoor",
			valid:  true,
		},
		{
			name:   "option rejects values outside the list",
			entity: models.EntityDefinition{Name: "seating", Type: models.EntityTypeOption, Options: []string{"Indoor", "Outdoor"}},
			value:  "Rooftop",
			valid:  false,
		},
		{
			name:   "option with no list accepts anything",
			entity: models.EntityDefinition{Name: "seating", Type: models.EntityTypeOption},
			value:  "Rooftop",
			valid:  true,
		},
		{
			name:   "string passes through",
			entity: models.EntityDefinition{Name: "note", Type: models.EntityTypeString},
			value:  "anything",
			valid:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := validateInContext(&tt.entity, tt.value)
			if ok != tt.valid {
				t.Errorf("validateInContext(%q) = %v, expected %v", tt.value, ok, tt.valid)
			}
			if !ok && msg == "" {
				t.Error("rejection must carry a user-facing message")
			}
		})
	}
}
