package domain

import (
	"fmt"
	"strings"
)

// A Waypoint is one end of a travel-time lookup: an origin supplied by a user
// or a candidate place. It is identified by a place identifier, coordinates,
// or both. Waypoints are immutable once resolved.
type Waypoint struct {
	PlaceID        string
	Coordinates    Coordinates
	HasCoordinates bool
}

// PlaceWaypoint builds a waypoint known only by its place identifier.
func PlaceWaypoint(placeID string) Waypoint {
	return Waypoint{PlaceID: strings.TrimSpace(placeID)}
}

// CoordinateWaypoint builds a waypoint from a latitude/longitude pair.
func CoordinateWaypoint(c Coordinates) Waypoint {
	return Waypoint{Coordinates: c, HasCoordinates: true}
}

// WithCoordinates returns a copy of w carrying resolved coordinates.
func (w Waypoint) WithCoordinates(c Coordinates) Waypoint {
	w.Coordinates = c
	w.HasCoordinates = true
	return w
}

// Validate checks that the waypoint can be used in a lookup.
func (w Waypoint) Validate() error {
	if w.PlaceID == "" && !w.HasCoordinates {
		return fmt.Errorf("waypoint needs a place id or coordinates: %w", ErrInvalidRequest)
	}
	if w.HasCoordinates {
		if err := w.Coordinates.Validate(); err != nil {
			return fmt.Errorf("waypoint: %w", err)
		}
	}
	return nil
}

// Key returns a stable identity for caching and test fixtures.
// Place identifiers win over coordinates so that the same place always maps
// to the same key regardless of how it was resolved.
func (w Waypoint) Key() string {
	if w.PlaceID != "" {
		return "place:" + w.PlaceID
	}
	if w.HasCoordinates {
		return "coord:" + w.Coordinates.String()
	}
	return ""
}

// String is used in log lines.
func (w Waypoint) String() string {
	if k := w.Key(); k != "" {
		return k
	}
	return "<unset>"
}

// ValidateOriginPair checks both origins of a meeting request.
func ValidateOriginPair(a, b Waypoint) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("origin a: %w", err)
	}
	if err := b.Validate(); err != nil {
		return fmt.Errorf("origin b: %w", err)
	}
	return nil
}
