// Package models defines the core data structures for Formi.
//
// It includes dialogue template definitions, conversation sessions, and
// API request/response types shared across modules.
package models

import (
	"errors"
	"fmt"
)

// TemplateObjective defines what a dialogue template is trying to achieve
// in a single conversation step.
type TemplateObjective string

const (
	ObjectiveCollect               TemplateObjective = "collect"
	ObjectiveConfirm               TemplateObjective = "confirm"
	ObjectiveInform                TemplateObjective = "inform"
	ObjectiveCollectConfirm        TemplateObjective = "collect_confirm"
	ObjectiveCollectInform         TemplateObjective = "collect_inform"
	ObjectiveConfirmInform         TemplateObjective = "confirm_inform"
	ObjectiveCollectConfirmInform  TemplateObjective = "collect_confirm_inform"
)

// IsValidTemplateObjective checks if the given objective is supported.
func IsValidTemplateObjective(o TemplateObjective) bool {
	switch o {
	case ObjectiveCollect, ObjectiveConfirm, ObjectiveInform,
		ObjectiveCollectConfirm, ObjectiveCollectInform,
		ObjectiveConfirmInform, ObjectiveCollectConfirmInform:
		return true
	default:
		return false
	}
}

// EntityType describes the value type of a collected entity.
type EntityType string

const (
	EntityTypeString EntityType = "string"
	EntityTypeNumber EntityType = "number"
	EntityTypeOption EntityType = "option"
	EntityTypeDate   EntityType = "date"
	EntityTypeTime   EntityType = "time"
)

// IsValidEntityType checks if the given entity type is supported.
func IsValidEntityType(et EntityType) bool {
	switch et {
	case EntityTypeString, EntityTypeNumber, EntityTypeOption, EntityTypeDate, EntityTypeTime:
		return true
	default:
		return false
	}
}

// VerificationMethod describes how a collected entity value is validated.
type VerificationMethod string

const (
	// VerifyTool validates the value against a knowledge lookup tool.
	VerifyTool VerificationMethod = "tool"
	// VerifyInContext validates the value with a local rule, no lookup call.
	VerifyInContext VerificationMethod = "in_context"
	// VerifyBoth applies both tool and in-context validation.
	VerifyBoth VerificationMethod = "both"
)

// RequiresTool reports whether the verification method needs a knowledge
// lookup tool call.
func (v VerificationMethod) RequiresTool() bool {
	return v == VerifyTool || v == VerifyBoth
}

// ToolName identifies a knowledge lookup capability referenced by templates.
type ToolName string

const (
	ToolAvailableCities    ToolName = "get_available_cities"
	ToolLocationsInCity    ToolName = "get_locations_in_city"
	ToolAvailableTimeSlots ToolName = "get_available_time_slots"
)

// Error variables for template validation failures detected at catalog load.
var (
	ErrEmptyTemplateName     = errors.New("template name cannot be empty")
	ErrInvalidObjective      = errors.New("invalid template objective")
	ErrNoEntities            = errors.New("template must declare at least one entity")
	ErrInvalidEntityType     = errors.New("invalid entity type")
	ErrEmptyEntityName       = errors.New("entity name cannot be empty")
	ErrMissingToolName       = errors.New("tool verification requires a tool name")
	ErrNoTransitionRules     = errors.New("template must declare at least one transition rule")
	ErrEmptyCondition        = errors.New("transition rule condition cannot be empty")
	ErrEmptyNextState        = errors.New("transition rule next state cannot be empty")
	ErrEmptyFallbackPrompt   = errors.New("template must declare a fallback prompt")
)

// EntityDefinition describes one datum a template wants to collect.
type EntityDefinition struct {
	Name               string             `json:"name"`
	Type               EntityType         `json:"type"`
	VerificationMethod VerificationMethod `json:"verification_method"`
	ToolName           ToolName           `json:"tool_name,omitempty"`
	Options            []string           `json:"options,omitempty"`
	ValidationRules    map[string]string  `json:"validation_rules,omitempty"` // rule name -> description, used for error messaging
}

// Validate checks structural integrity of an entity definition.
func (e *EntityDefinition) Validate() error {
	if e.Name == "" {
		return ErrEmptyEntityName
	}
	if !IsValidEntityType(e.Type) {
		return fmt.Errorf("entity %q: %w", e.Name, ErrInvalidEntityType)
	}
	if e.VerificationMethod.RequiresTool() && e.ToolName == "" {
		return fmt.Errorf("entity %q: %w", e.Name, ErrMissingToolName)
	}
	return nil
}

// TransitionRule is a guarded edge from the current template to the next.
// Rules are evaluated in declared order; the first matching rule wins.
type TransitionRule struct {
	Condition string `json:"condition"`
	NextState string `json:"next_state"`
	Reason    string `json:"reason"` // diagnostic only
}

// InformCondition pairs a condition with the information to deliver when
// the condition holds after a confirmed transition.
type InformCondition struct {
	Condition      string `json:"condition"`
	InformationKey string `json:"information"`
}

// PromptTemplate is a named, declarative unit of dialogue behavior: what to
// collect, how to verify it, whether to confirm it, what to inform, and
// where to go next. Templates are immutable once loaded into the catalog.
type PromptTemplate struct {
	Name                 string            `json:"name"`
	Objective            TemplateObjective `json:"objective"`
	Description          string            `json:"description"`
	Instructions         []string          `json:"instructions,omitempty"`
	Entities             []EntityDefinition `json:"entities"`
	ConfirmationRequired bool              `json:"confirmation_required"`
	InformConditions     []InformCondition `json:"inform_conditions,omitempty"`
	NegativeConsequences []string          `json:"negative_consequences,omitempty"`
	TransitionRules      []TransitionRule  `json:"transition_rules"`
	// FallbackPrompt is sent when no user input is available yet.
	FallbackPrompt string `json:"fallback_prompt"`
}

// PrimaryEntity returns the entity driving this template's collect/confirm
// step. The engine supports exactly one primary entity per step; templates
// needing more chain follow-up templates instead.
func (t *PromptTemplate) PrimaryEntity() *EntityDefinition {
	if len(t.Entities) == 0 {
		return nil
	}
	return &t.Entities[0]
}

// Validate performs structural validation on a template. Referential checks
// (tool names, next states) belong to the catalog, which has the full view.
func (t *PromptTemplate) Validate() error {
	if t.Name == "" {
		return ErrEmptyTemplateName
	}
	if !IsValidTemplateObjective(t.Objective) {
		return fmt.Errorf("template %q: %w", t.Name, ErrInvalidObjective)
	}
	if len(t.Entities) == 0 {
		return fmt.Errorf("template %q: %w", t.Name, ErrNoEntities)
	}
	for i := range t.Entities {
		if err := t.Entities[i].Validate(); err != nil {
			return fmt.Errorf("template %q: %w", t.Name, err)
		}
	}
	if len(t.TransitionRules) == 0 {
		return fmt.Errorf("template %q: %w", t.Name, ErrNoTransitionRules)
	}
	for _, rule := range t.TransitionRules {
		if rule.Condition == "" {
			return fmt.Errorf("template %q: %w", t.Name, ErrEmptyCondition)
		}
		if rule.NextState == "" {
			return fmt.Errorf("template %q: %w", t.Name, ErrEmptyNextState)
		}
	}
	if t.FallbackPrompt == "" {
		return fmt.Errorf("template %q: %w", t.Name, ErrEmptyFallbackPrompt)
	}
	return nil
}
