package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TravelMode selects how a party travels to a candidate.
type TravelMode string

const (
	Walking   TravelMode = "walking"
	Driving   TravelMode = "driving"
	Bicycling TravelMode = "bicycling"
	Transit   TravelMode = "transit"
)

// DefaultTravelMode is used when a request does not name one.
const DefaultTravelMode = Walking

// ParseTravelMode normalizes a user supplied mode. Empty input yields the default.
func ParseTravelMode(s string) (TravelMode, error) {
	switch m := TravelMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return DefaultTravelMode, nil
	case Walking, Driving, Bicycling, Transit:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported travel mode %q: %w", s, ErrInvalidRequest)
	}
}

// TravelDuration is an estimated travel time in minutes.
//
// A failed or impossible lookup is represented by Unreachable (+Inf) rather
// than zero so that it can never look like a short trip when ordering.
type TravelDuration float64

// Unreachable is the sentinel for a failed travel-duration lookup.
var Unreachable = TravelDuration(math.Inf(1))

// Minutes builds a TravelDuration, mapping invalid input to Unreachable.
func Minutes(m float64) TravelDuration {
	if math.IsNaN(m) || m < 0 {
		return Unreachable
	}
	return TravelDuration(m)
}

// FromSeconds converts a provider duration in seconds.
func FromSeconds(s float64) TravelDuration {
	return Minutes(s / 60)
}

func (d TravelDuration) IsUnreachable() bool {
	return math.IsInf(float64(d), 1) || math.IsNaN(float64(d))
}

// Duration converts to time.Duration. Unreachable maps to 0 and must be
// checked with IsUnreachable first.
func (d TravelDuration) Duration() time.Duration {
	if d.IsUnreachable() {
		return 0
	}
	return time.Duration(float64(d) * float64(time.Minute))
}

func (d TravelDuration) String() string {
	if d.IsUnreachable() {
		return "unreachable"
	}
	return fmt.Sprintf("%.1fmin", float64(d))
}
