// Package catalog holds the immutable registry of dialogue templates.
//
// The catalog is constructed once at startup and validated against the
// knowledge toolkit: every tool name a template references must resolve to
// a registered capability, and every transition target must be a known
// template or the terminal marker. Loading fails fast on any violation so
// misconfigured templates cannot reach runtime.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ku28/formi/internal/knowledge"
	"github.com/ku28/formi/internal/models"
)

// TerminalState marks the end of a dialogue; transition rules may target it
// without a corresponding template existing.
const TerminalState = "booking_complete"

// Error variables for catalog load failures.
var (
	ErrTemplateNotFound  = errors.New("template not found")
	ErrDuplicateTemplate = errors.New("duplicate template name")
	ErrUnknownTool       = errors.New("template references unknown tool")
	ErrUnknownNextState  = errors.New("transition rule references unknown template")
	ErrUnknownInformKey  = errors.New("inform condition references unknown information key")
)

// Catalog is a read-only registry of named prompt templates. Safe for
// unsynchronized concurrent reads after construction.
type Catalog struct {
	templates map[string]models.PromptTemplate
	initial   string
}

// New builds a catalog from the given templates, validating each template
// structurally and referentially against the toolkit. The first template is
// the initial state for new conversations.
func New(templates []models.PromptTemplate, toolkit *knowledge.Toolkit) (*Catalog, error) {
	if len(templates) == 0 {
		return nil, errors.New("catalog requires at least one template")
	}

	byName := make(map[string]models.PromptTemplate, len(templates))
	for _, tmpl := range templates {
		if err := tmpl.Validate(); err != nil {
			slog.Error("catalog.New: template validation failed", "template", tmpl.Name, "error", err)
			return nil, err
		}
		if _, exists := byName[tmpl.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTemplate, tmpl.Name)
		}
		byName[tmpl.Name] = tmpl
	}

	for _, tmpl := range byName {
		for _, entity := range tmpl.Entities {
			if !entity.VerificationMethod.RequiresTool() {
				continue
			}
			if _, ok := toolkit.ResolveVerifier(entity.ToolName); !ok {
				slog.Error("catalog.New: unresolved tool reference",
					"template", tmpl.Name, "entity", entity.Name, "tool", entity.ToolName)
				return nil, fmt.Errorf("%w: template %q entity %q tool %q",
					ErrUnknownTool, tmpl.Name, entity.Name, entity.ToolName)
			}
		}
		for _, rule := range tmpl.TransitionRules {
			if rule.NextState == TerminalState {
				continue
			}
			if _, ok := byName[rule.NextState]; !ok {
				slog.Error("catalog.New: unresolved transition target",
					"template", tmpl.Name, "nextState", rule.NextState)
				return nil, fmt.Errorf("%w: template %q next state %q",
					ErrUnknownNextState, tmpl.Name, rule.NextState)
			}
		}
		for _, cond := range tmpl.InformConditions {
			if _, ok := toolkit.ResolveInformer(cond.InformationKey); !ok {
				slog.Error("catalog.New: unresolved inform key",
					"template", tmpl.Name, "informationKey", cond.InformationKey)
				return nil, fmt.Errorf("%w: template %q key %q",
					ErrUnknownInformKey, tmpl.Name, cond.InformationKey)
			}
		}
	}

	slog.Info("catalog.New: template catalog loaded", "templates", len(byName), "initial", templates[0].Name)
	return &Catalog{templates: byName, initial: templates[0].Name}, nil
}

// Get returns the template registered under name.
func (c *Catalog) Get(name string) (models.PromptTemplate, error) {
	tmpl, ok := c.templates[name]
	if !ok {
		return models.PromptTemplate{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return tmpl, nil
}

// InitialTemplate returns the template name new conversations start at.
func (c *Catalog) InitialTemplate() string {
	return c.initial
}

// Names returns all registered template names.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.templates))
	for name := range c.templates {
		names = append(names, name)
	}
	return names
}
