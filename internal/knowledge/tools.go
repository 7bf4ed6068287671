package knowledge

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ku28/formi/internal/models"
)

// Inform keys resolvable through the toolkit.
const (
	InformOutletDetails      = "outlet_details"
	InformAvailableTimeSlots = "available_time_slots"
)

// VerifyResult is the outcome of validating one collected value.
type VerifyResult struct {
	Valid bool
	// Canonical is the normalized form of the value to store when valid.
	Canonical string
	// Message explains a rejection and suggests alternatives.
	Message string
}

// VerifyFunc validates a user-supplied value against the knowledge base.
// Collected holds the entity values gathered so far, for tools that depend
// on earlier answers (e.g. locations depend on the chosen city).
type VerifyFunc func(collected map[string]string, value string) VerifyResult

// InformFunc renders derived information from collected entity values.
type InformFunc func(collected map[string]string) (string, error)

// Toolkit maps tool and inform identifiers to typed functions over the
// knowledge base. It is resolved and validated once at catalog load time,
// replacing string-compare dispatch at runtime.
type Toolkit struct {
	verifiers map[models.ToolName]VerifyFunc
	informers map[string]InformFunc
}

// NewToolkit builds the capability registry over the given knowledge base.
func NewToolkit(base *Base) *Toolkit {
	t := &Toolkit{
		verifiers: make(map[models.ToolName]VerifyFunc),
		informers: make(map[string]InformFunc),
	}

	t.verifiers[models.ToolAvailableCities] = func(collected map[string]string, value string) VerifyResult {
		canonical, ok := base.CanonicalCity(value)
		if !ok {
			return VerifyResult{
				Message: fmt.Sprintf(
					"I apologize, but we currently don't have outlets in %s. We are present in %s. Which of these cities would you like to dine in?",
					strings.TrimSpace(value), joinNames(base.Cities())),
			}
		}
		return VerifyResult{Valid: true, Canonical: canonical}
	}

	t.verifiers[models.ToolLocationsInCity] = func(collected map[string]string, value string) VerifyResult {
		city := collected["city"]
		canonical, ok := base.CanonicalLocation(city, value)
		if !ok {
			locations := base.LocationsForCity(city)
			if len(locations) == 0 {
				return VerifyResult{Message: "Please tell me which city you'd like to dine in first."}
			}
			return VerifyResult{
				Message: fmt.Sprintf(
					"Sorry, we don't have an outlet at %s in %s. Our outlets there are %s. Which one would you like?",
					strings.TrimSpace(value), city, joinNames(locations)),
			}
		}
		return VerifyResult{Valid: true, Canonical: canonical}
	}

	t.verifiers[models.ToolAvailableTimeSlots] = func(collected map[string]string, value string) VerifyResult {
		location := collected["location"]
		trimmed := strings.TrimSpace(value)
		if base.IsValidTimeSlot(location, trimmed) {
			return VerifyResult{Valid: true, Canonical: trimmed}
		}
		slots := base.AvailableTimeSlots(location)
		if len(slots) == 0 {
			return VerifyResult{Message: "Please pick an outlet location before choosing a time slot."}
		}
		return VerifyResult{
			Message: fmt.Sprintf(
				"Sorry, %s is not an available slot at our %s outlet. Available slots are %s. Which slot works for you?",
				trimmed, location, strings.Join(slots, ", ")),
		}
	}

	t.informers[InformOutletDetails] = func(collected map[string]string) (string, error) {
		city := collected["city"]
		location := collected["location"]
		outlet, err := base.OutletDetails(city, location)
		if err != nil {
			return "", err
		}
		return formatOutletDetails(outlet), nil
	}

	t.informers[InformAvailableTimeSlots] = func(collected map[string]string) (string, error) {
		location := collected["location"]
		slots := base.AvailableTimeSlots(location)
		if len(slots) == 0 {
			return "", fmt.Errorf("%w: %q", ErrOutletNotFound, location)
		}
		return fmt.Sprintf("Our %s outlet has the following slots available: %s.", location, strings.Join(slots, ", ")), nil
	}

	slog.Debug("knowledge.NewToolkit: capability registry built",
		"verifiers", len(t.verifiers), "informers", len(t.informers))
	return t
}

// ResolveVerifier returns the verification function registered under name.
func (t *Toolkit) ResolveVerifier(name models.ToolName) (VerifyFunc, bool) {
	fn, ok := t.verifiers[name]
	return fn, ok
}

// ResolveInformer returns the inform function registered under key.
func (t *Toolkit) ResolveInformer(key string) (InformFunc, bool) {
	fn, ok := t.informers[key]
	return fn, ok
}

// formatOutletDetails renders an outlet record as user-facing text.
func formatOutletDetails(outlet Outlet) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Here are the details for our %s outlet", outlet.Name)
	if outlet.Address != "" {
		fmt.Fprintf(&sb, ": %s", outlet.Address)
	}
	sb.WriteString(".")
	var facilities []string
	for name, present := range outlet.Facilities {
		if present {
			facilities = append(facilities, strings.ReplaceAll(name, "_", " "))
		}
	}
	if len(facilities) > 0 {
		sort.Strings(facilities)
		fmt.Fprintf(&sb, " Facilities: %s.", strings.Join(facilities, ", "))
	}
	if outlet.ComplimentaryDrinks {
		sb.WriteString(" Complimentary welcome drinks are included.")
	}
	return sb.String()
}

// joinNames joins names with commas and a final "and".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
