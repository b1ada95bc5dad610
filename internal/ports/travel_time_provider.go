package ports

import (
	"context"
	"meeting-point-service/internal/domain"
)

// Contract for estimating travel time between two waypoints.
type TravelTimeProvider interface {
	// Return the travel duration from origin to destination under mode.
	// A route that does not exist is reported as domain.Unreachable with a nil error;
	// transport failures return an error.
	TravelDuration(ctx context.Context, origin, destination domain.Waypoint, mode domain.TravelMode) (domain.TravelDuration, error)
}

// Optional extension of TravelTimeProvider that supports batched lookups.
type TravelTimeMatrixProvider interface {
	TravelTimeProvider
	// Return durations from one origin to many destinations, index-aligned with
	// destinations. Missing elements are domain.Unreachable.
	TravelDurations(ctx context.Context, origin domain.Waypoint, destinations []domain.Waypoint, mode domain.TravelMode) ([]domain.TravelDuration, error)
}
