// Package catalog declares the built-in booking dialogue templates.
package catalog

import "github.com/ku28/formi/internal/models"

// Template names for the built-in booking flow.
const (
	TemplateCityCollection     = "city_collection"
	TemplateLocationCollection = "location_collection"
	TemplateSlotCollection     = "slot_collection"
)

// DefaultTemplates returns the booking flow shipped with the engine:
// collect and confirm a city, then an outlet location (informing outlet
// details), then a dining time slot. The first template is the initial
// state for new conversations.
func DefaultTemplates() []models.PromptTemplate {
	return []models.PromptTemplate{
		{
			Name:        TemplateCityCollection,
			Objective:   models.ObjectiveCollectConfirm,
			Description: "Collect and confirm the city where the user wants to dine",
			Instructions: []string{
				"Ask the user which city they would like to dine in",
				"Verify the city has outlets",
				"If valid, confirm the city with the user",
				"If invalid, inform about available cities",
			},
			Entities: []models.EntityDefinition{
				{
					Name:               "city",
					Type:               models.EntityTypeString,
					VerificationMethod: models.VerifyTool,
					ToolName:           models.ToolAvailableCities,
					ValidationRules: map[string]string{
						"must_exist": "City must be in the available cities list",
					},
				},
			},
			ConfirmationRequired: true,
			NegativeConsequences: []string{
				"If city is invalid, user cannot proceed with booking",
				"If city is not confirmed, location selection cannot begin",
			},
			TransitionRules: []models.TransitionRule{
				{
					Condition: "city_valid and city_confirmed",
					NextState: TemplateLocationCollection,
					Reason:    "City is valid and confirmed, proceed to collect specific location",
				},
				{
					Condition: "city_invalid",
					NextState: TemplateCityCollection,
					Reason:    "City is invalid, ask for a valid city",
				},
			},
			FallbackPrompt: "Welcome to BBQ Nation! Which city would you like to dine in?",
		},
		{
			Name:        TemplateLocationCollection,
			Objective:   models.ObjectiveCollectConfirmInform,
			Description: "Collect and confirm the specific outlet location in the selected city",
			Instructions: []string{
				"Present the outlet locations available in the selected city",
				"Collect the user's preferred location",
				"Verify the location exists and confirm it",
				"Inform about location-specific details",
			},
			Entities: []models.EntityDefinition{
				{
					Name:               "location",
					Type:               models.EntityTypeOption,
					VerificationMethod: models.VerifyTool,
					ToolName:           models.ToolLocationsInCity,
					ValidationRules: map[string]string{
						"must_exist": "Location must be an outlet in the selected city",
					},
				},
			},
			ConfirmationRequired: true,
			InformConditions: []models.InformCondition{
				{Condition: "location_confirmed", InformationKey: "outlet_details"},
			},
			NegativeConsequences: []string{
				"If location is invalid, user cannot proceed with booking",
				"If location is not confirmed, slot selection cannot begin",
			},
			TransitionRules: []models.TransitionRule{
				{
					Condition: "location_valid and location_confirmed",
					NextState: TemplateSlotCollection,
					Reason:    "Location is valid and confirmed, proceed to pick a dining slot",
				},
				{
					Condition: "location_invalid",
					NextState: TemplateLocationCollection,
					Reason:    "Location is invalid, ask for a valid location",
				},
			},
			FallbackPrompt: "Which of our outlets would you like to visit?",
		},
		{
			Name:        TemplateSlotCollection,
			Objective:   models.ObjectiveCollectConfirm,
			Description: "Collect and confirm the dining time slot at the chosen outlet",
			Instructions: []string{
				"Present the available time slots for the chosen outlet",
				"Collect the user's preferred slot",
				"Verify the slot is offered and confirm it",
			},
			Entities: []models.EntityDefinition{
				{
					Name:               "time_slot",
					Type:               models.EntityTypeTime,
					VerificationMethod: models.VerifyTool,
					ToolName:           models.ToolAvailableTimeSlots,
					ValidationRules: map[string]string{
						"must_exist": "Time slot must be offered by the chosen outlet",
					},
				},
			},
			ConfirmationRequired: true,
			NegativeConsequences: []string{
				"If the slot is invalid, the booking cannot be completed",
			},
			TransitionRules: []models.TransitionRule{
				{
					Condition: "time_slot_valid and time_slot_confirmed",
					NextState: TerminalState,
					Reason:    "Slot is valid and confirmed, booking is complete",
				},
				{
					Condition: "time_slot_invalid",
					NextState: TemplateSlotCollection,
					Reason:    "Slot is invalid, ask for a valid slot",
				},
			},
			FallbackPrompt: "What time would you like your table?",
		},
	}
}
