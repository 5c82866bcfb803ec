package domain

import (
	"fmt"
	"strings"
)

// One jurisdiction traversed by a route, with the miles driven inside it.
// Routes are ordered lists of segments supplied by the caller; the engine
// does no geocoding of its own.
type StateSegment struct {
	StateCode string  `json:"state_code"`
	Miles     float64 `json:"miles"`
}

// NormalizeStateCode collapses case and whitespace so "tx " and "TX" match.
func NormalizeStateCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// TotalMiles sums the mileage of every segment.
func TotalMiles(route []StateSegment) float64 {
	total := 0.0
	for _, s := range route {
		total += s.Miles
	}
	return total
}

// ValidateSegments checks the shape of a route without consulting any rule table.
func ValidateSegments(route []StateSegment) error {
	for i, s := range route {
		if NormalizeStateCode(s.StateCode) == "" {
			return fmt.Errorf("%w: segment %d has an empty state code", ErrInvalidRoute, i+1)
		}
		if !NonNegative(s.Miles) {
			return fmt.Errorf("%w: segment %d (%s) has invalid mileage %g", ErrInvalidRoute, i+1, s.StateCode, s.Miles)
		}
	}
	return nil
}
