package ports

import (
	"context"
	"meeting-point-service/internal/domain"
)

// Contract for turning user input into coordinates.
// Implementations return an error wrapping domain.ErrNotFound when nothing matches.
type Geocoder interface {
	// Resolve a free-text address.
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
	// Resolve a provider place identifier.
	LookupPlace(ctx context.Context, placeID string) (domain.Coordinates, error)
}
