package ports

import (
	"context"
	"meeting-point-service/internal/domain"
)

// Contract for finding candidate places around a coordinate.
type PlaceSearcher interface {
	// Return places matching query within radiusMeters of center, in provider
	// relevance order. An empty slice is a valid answer.
	SearchNearby(ctx context.Context, center domain.Coordinates, query string, radiusMeters int) ([]domain.Candidate, error)
}
