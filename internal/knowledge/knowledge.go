// Package knowledge provides read-only accessors over the static reference
// data the dialogue engine verifies user input against: cities, outlet
// directories, dining time slots, menu facts and FAQs.
//
// The data is embedded at build time and immutable after Load, so all
// accessors are safe for unsynchronized concurrent reads.
package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	_ "embed"
)

//go:embed data/outlets.json
var outletsJSON []byte

//go:embed data/menu.json
var menuJSON []byte

//go:embed data/faqs.json
var faqsJSON []byte

// ErrOutletNotFound indicates the requested city/location pair has no outlet.
var ErrOutletNotFound = errors.New("outlet not found")

// OutletTimings holds opening hours for one meal service.
type OutletTimings struct {
	Open      string `json:"open"`
	LastEntry string `json:"last_entry"`
	Close     string `json:"close"`
}

// Outlet describes one restaurant outlet.
type Outlet struct {
	Name                string                   `json:"name"`
	City                string                   `json:"city"`
	Address             string                   `json:"address,omitempty"`
	Facilities          map[string]bool          `json:"facilities,omitempty"`
	Timings             map[string]OutletTimings `json:"timings,omitempty"`
	ComplimentaryDrinks bool                     `json:"complimentary_drinks,omitempty"`
	PrivateDining       bool                     `json:"private_dining,omitempty"`
	TimeSlots           []string                 `json:"time_slots,omitempty"`
}

// FAQ is one frequently asked question with its curated answer.
type FAQ struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Base is the loaded knowledge base. All lookups are pure queries with no
// side effects on conversation state.
type Base struct {
	outlets map[string]map[string]Outlet // city -> outlet key -> outlet
	menu    map[string][]string          // category -> items
	faqs    []FAQ
}

// Load parses the embedded reference data. It fails fast on malformed data
// so a broken build cannot start serving.
func Load() (*Base, error) {
	b := &Base{}
	if err := json.Unmarshal(outletsJSON, &b.outlets); err != nil {
		slog.Error("knowledge.Load: failed to parse outlets data", "error", err)
		return nil, fmt.Errorf("failed to parse outlets data: %w", err)
	}
	if err := json.Unmarshal(menuJSON, &b.menu); err != nil {
		slog.Error("knowledge.Load: failed to parse menu data", "error", err)
		return nil, fmt.Errorf("failed to parse menu data: %w", err)
	}
	if err := json.Unmarshal(faqsJSON, &b.faqs); err != nil {
		slog.Error("knowledge.Load: failed to parse FAQ data", "error", err)
		return nil, fmt.Errorf("failed to parse FAQ data: %w", err)
	}
	slog.Debug("knowledge.Load: reference data loaded",
		"cities", len(b.outlets), "menuCategories", len(b.menu), "faqs", len(b.faqs))
	return b, nil
}

// Cities returns the known city names in sorted order.
func (b *Base) Cities() []string {
	cities := make([]string, 0, len(b.outlets))
	for city := range b.outlets {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}

// CanonicalCity resolves a user-supplied city name to its canonical form,
// matching case-insensitively. Returns false if the city is unknown.
func (b *Base) CanonicalCity(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	for city := range b.outlets {
		if strings.EqualFold(city, trimmed) {
			return city, true
		}
	}
	return "", false
}

// IsValidCity reports whether the given city has outlets.
func (b *Base) IsValidCity(name string) bool {
	_, ok := b.CanonicalCity(name)
	return ok
}

// LocationsForCity returns the outlet location names for a city in sorted
// order, or nil when the city is unknown.
func (b *Base) LocationsForCity(city string) []string {
	canonical, ok := b.CanonicalCity(city)
	if !ok {
		return nil
	}
	locations := make([]string, 0, len(b.outlets[canonical]))
	for location := range b.outlets[canonical] {
		locations = append(locations, location)
	}
	sort.Strings(locations)
	return locations
}

// CanonicalLocation resolves a user-supplied location within a city,
// matching case-insensitively. Returns false if unknown.
func (b *Base) CanonicalLocation(city, name string) (string, bool) {
	canonical, ok := b.CanonicalCity(city)
	if !ok {
		return "", false
	}
	trimmed := strings.TrimSpace(name)
	for location := range b.outlets[canonical] {
		if strings.EqualFold(location, trimmed) {
			return location, true
		}
	}
	return "", false
}

// IsValidLocation reports whether the city has an outlet at the location.
func (b *Base) IsValidLocation(city, name string) bool {
	_, ok := b.CanonicalLocation(city, name)
	return ok
}

// OutletDetails returns the full record for one outlet.
func (b *Base) OutletDetails(city, location string) (Outlet, error) {
	canonicalCity, ok := b.CanonicalCity(city)
	if !ok {
		return Outlet{}, fmt.Errorf("%w: city %q", ErrOutletNotFound, city)
	}
	canonicalLocation, ok := b.CanonicalLocation(city, location)
	if !ok {
		return Outlet{}, fmt.Errorf("%w: %q in %q", ErrOutletNotFound, location, city)
	}
	return b.outlets[canonicalCity][canonicalLocation], nil
}

// AvailableTimeSlots returns the dining slots of the named location,
// searching across cities. Returns nil when the location is unknown.
func (b *Base) AvailableTimeSlots(location string) []string {
	for city := range b.outlets {
		if canonical, ok := b.CanonicalLocation(city, location); ok {
			slots := b.outlets[city][canonical].TimeSlots
			out := make([]string, len(slots))
			copy(out, slots)
			return out
		}
	}
	return nil
}

// IsValidTimeSlot reports whether the location offers the given slot.
func (b *Base) IsValidTimeSlot(location, slot string) bool {
	trimmed := strings.TrimSpace(slot)
	for _, s := range b.AvailableTimeSlots(location) {
		if s == trimmed {
			return true
		}
	}
	return false
}

// Menu returns the menu items grouped by category. Categories with a veg
// prefix plus desserts and drinks count as vegetarian when filtering.
func (b *Base) Menu(vegOnly bool) map[string][]string {
	out := make(map[string][]string, len(b.menu))
	for category, items := range b.menu {
		if vegOnly && strings.HasPrefix(category, "non_veg") {
			continue
		}
		copied := make([]string, len(items))
		copy(copied, items)
		out[category] = copied
	}
	return out
}

// SearchFAQs returns FAQs whose question or answer contains the query,
// case-insensitively, optionally restricted to a category.
func (b *Base) SearchFAQs(query, category string) []FAQ {
	q := strings.ToLower(strings.TrimSpace(query))
	var results []FAQ
	for _, faq := range b.faqs {
		if category != "" && !strings.EqualFold(faq.Category, category) {
			continue
		}
		if q == "" ||
			strings.Contains(strings.ToLower(faq.Question), q) ||
			strings.Contains(strings.ToLower(faq.Answer), q) {
			results = append(results, faq)
		}
	}
	return results
}

// FAQByID returns the FAQ with the given identifier.
func (b *Base) FAQByID(id string) (FAQ, bool) {
	for _, faq := range b.faqs {
		if faq.ID == id {
			return faq, true
		}
	}
	return FAQ{}, false
}
