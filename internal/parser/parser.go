// Package parser maps free-text address components onto listing addresses
package parser

import (
	"strings"

	"github.com/ourkan95/Duplicate-Detector/internal/match"
	"github.com/ourkan95/Duplicate-Detector/internal/normalize"
)

// Parser turns free address text into labelled components.
// An empty map is a valid result for text the parser cannot read.
type Parser interface {
	Parse(text string) (map[string]string, error)
}

// Component is one labelled span of a parsed address
type Component struct {
	Label string
	Value string
}

// LabelMap collapses components into a label map. When a label repeats the
// last value wins.
func LabelMap(components []Component) map[string]string {
	parsed := make(map[string]string, len(components))
	for _, c := range components {
		parsed[c.Label] = c.Value
	}
	return parsed
}

// ToAddress maps parser labels onto the structured address fields.
// A non-blank fallbackCity wins over the parsed city.
func ToAddress(parsed map[string]string, fallbackCity string) match.Address {
	get := func(label string) string {
		return strings.TrimSpace(parsed[label])
	}

	area := get("suburb")
	if area == "" {
		area = get("road")
	}

	city := strings.TrimSpace(fallbackCity)
	if normalize.IsBlank(city) {
		city = get("city")
	}

	return match.Address{
		HouseNumber:  get("house_number"),
		Area:         area,
		CityDistrict: get("city_district"),
		City:         city,
		Postcode:     get("postcode"),
		Country:      get("country"),
	}
}

// ParseAddress parses text and maps it with ToAddress. Blank text yields an
// address carrying only the fallback city.
func ParseAddress(p Parser, text, fallbackCity string) (match.Address, error) {
	if normalize.IsBlank(text) {
		return ToAddress(nil, fallbackCity), nil
	}
	parsed, err := p.Parse(text)
	if err != nil {
		return match.Address{}, err
	}
	return ToAddress(parsed, fallbackCity), nil
}
