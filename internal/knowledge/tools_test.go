package knowledge

import (
	"strings"
	"testing"

	"github.com/ku28/formi/internal/models"
)

func newToolkit(t *testing.T) *Toolkit {
	t.Helper()
	return NewToolkit(loadBase(t))
}

func TestToolkitCityVerifier(t *testing.T) {
	toolkit := newToolkit(t)
	verify, ok := toolkit.ResolveVerifier(models.ToolAvailableCities)
	if !ok {
		t.Fatal("city verifier not registered")
	}

	valid := verify(map[string]string{}, "bangalore")
	if !valid.Valid {
		t.Fatalf("expected bangalore to verify, got %+v", valid)
	}
	if valid.Canonical != "Bangalore" {
		t.Errorf("canonical = %q, expected Bangalore", valid.Canonical)
	}

	invalid := verify(map[string]string{}, "Mumbai")
	if invalid.Valid {
		t.Fatal("expected Mumbai to be rejected")
	}
	if !strings.Contains(invalid.Message, "Mumbai") {
		t.Errorf("rejection should echo the input, got %q", invalid.Message)
	}
	if !strings.Contains(invalid.Message, "Bangalore and New Delhi") {
		t.Errorf("rejection should list available cities, got %q", invalid.Message)
	}
}

func TestToolkitLocationVerifier(t *testing.T) {
	toolkit := newToolkit(t)
	verify, ok := toolkit.ResolveVerifier(models.ToolLocationsInCity)
	if !ok {
		t.Fatal("location verifier not registered")
	}

	collected := map[string]string{"city": "Bangalore"}

	valid := verify(collected, "jp nagar")
	if !valid.Valid || valid.Canonical != "JP Nagar" {
		t.Errorf("expected canonical JP Nagar, got %+v", valid)
	}

	invalid := verify(collected, "Connaught Place")
	if invalid.Valid {
		t.Fatal("expected a New Delhi outlet to be rejected for Bangalore")
	}
	if !strings.Contains(invalid.Message, "Indiranagar") {
		t.Errorf("rejection should list the city's outlets, got %q", invalid.Message)
	}

	// Without a chosen city the verifier asks for one.
	noCity := verify(map[string]string{}, "Indiranagar")
	if noCity.Valid {
		t.Fatal("expected rejection without a chosen city")
	}
	if !strings.Contains(noCity.Message, "city") {
		t.Errorf("expected a prompt for the city, got %q", noCity.Message)
	}
}

func TestToolkitTimeSlotVerifier(t *testing.T) {
	toolkit := newToolkit(t)
	verify, ok := toolkit.ResolveVerifier(models.ToolAvailableTimeSlots)
	if !ok {
		t.Fatal("time slot verifier not registered")
	}

	collected := map[string]string{"city": "Bangalore", "location": "Indiranagar"}

	valid := verify(collected, " 19:00 ")
	if !valid.Valid || valid.Canonical != "19:00" {
		t.Errorf("expected trimmed canonical 19:00, got %+v", valid)
	}

	invalid := verify(collected, "03:00")
	if invalid.Valid {
		t.Fatal("expected 03:00 to be rejected")
	}
	if !strings.Contains(invalid.Message, "12:00") {
		t.Errorf("rejection should list available slots, got %q", invalid.Message)
	}
}

func TestToolkitOutletDetailsInformer(t *testing.T) {
	toolkit := newToolkit(t)
	inform, ok := toolkit.ResolveInformer(InformOutletDetails)
	if !ok {
		t.Fatal("outlet details informer not registered")
	}

	message, err := inform(map[string]string{"city": "Bangalore", "location": "Indiranagar"})
	if err != nil {
		t.Fatalf("informer returned error: %v", err)
	}
	for _, want := range []string{"Indiranagar", "100 Feet Road", "valet parking", "Complimentary welcome drinks"} {
		if !strings.Contains(message, want) {
			t.Errorf("expected %q in outlet details %q", want, message)
		}
	}

	if _, err := inform(map[string]string{"city": "Bangalore", "location": "Koramangala"}); err == nil {
		t.Error("expected an error for an unknown outlet")
	}
}

func TestToolkitTimeSlotsInformer(t *testing.T) {
	toolkit := newToolkit(t)
	inform, ok := toolkit.ResolveInformer(InformAvailableTimeSlots)
	if !ok {
		t.Fatal("time slots informer not registered")
	}

	message, err := inform(map[string]string{"location": "Vasant Kunj"})
	if err != nil {
		t.Fatalf("informer returned error: %v", err)
	}
	if !strings.Contains(message, "18:30") {
		t.Errorf("expected slots in message, got %q", message)
	}

	if _, err := inform(map[string]string{"location": "Koramangala"}); err == nil {
		t.Error("expected an error for an unknown location")
	}
}

func TestResolveUnknownCapabilities(t *testing.T) {
	toolkit := newToolkit(t)

	if _, ok := toolkit.ResolveVerifier("get_parking_rates"); ok {
		t.Error("expected unknown verifier to not resolve")
	}
	if _, ok := toolkit.ResolveInformer("parking_rates"); ok {
		t.Error("expected unknown informer to not resolve")
	}
}

func TestJoinNames(t *testing.T) {
	tests := []struct {
		name     string
		names    []string
		expected string
	}{
		{name: "empty", names: nil, expected: ""},
		{name: "single", names: []string{"Bangalore"}, expected: "Bangalore"},
		{name: "pair", names: []string{"Bangalore", "New Delhi"}, expected: "Bangalore and New Delhi"},
		{name: "three", names: []string{"A", "B", "C"}, expected: "A, B and C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinNames(tt.names); got != tt.expected {
				t.Errorf("joinNames(%v) = %q, expected %q", tt.names, got, tt.expected)
			}
		})
	}
}
