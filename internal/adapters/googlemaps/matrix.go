package googlemaps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/platform/obs"
	"net/url"
	"strings"
)

// maxDestinationsPerRequest is the distance matrix element limit per origin row.
const maxDestinationsPerRequest = 25

// waypointParam formats a waypoint for the distance matrix: place ids win over coordinates.
func waypointParam(w domain.Waypoint) string {
	if w.PlaceID != "" {
		return "place_id:" + w.PlaceID
	}
	return w.Coordinates.String()
}

// TravelDuration returns the duration of a single origin->destination trip.
func (c *Client) TravelDuration(
	ctx context.Context,
	origin domain.Waypoint,
	destination domain.Waypoint,
	mode domain.TravelMode,
) (domain.TravelDuration, error) {
	durations, err := c.TravelDurations(ctx, origin, []domain.Waypoint{destination}, mode)
	if err != nil {
		return domain.Unreachable, err
	}
	return durations[0], nil
}

// TravelDurations fetches one matrix row for origin, splitting destinations
// into requests of at most 25 elements. The result is index-aligned with
// destinations; elements Google cannot route, or that belong to a failed
// request, are domain.Unreachable.
func (c *Client) TravelDurations(
	ctx context.Context,
	origin domain.Waypoint,
	destinations []domain.Waypoint,
	mode domain.TravelMode,
) (_ []domain.TravelDuration, err error) {
	defer obs.Time(ctx, "google.TravelDurations")(&err)

	if err := origin.Validate(); err != nil {
		return nil, fmt.Errorf("distance matrix origin: %w", err)
	}

	out := make([]domain.TravelDuration, len(destinations))
	for i := range out {
		out[i] = domain.Unreachable
	}

	var failed []error
	chunks := 0
	for start := 0; start < len(destinations); start += maxDestinationsPerRequest {
		end := min(start+maxDestinationsPerRequest, len(destinations))
		chunks++

		row, err := c.fetchMatrixRow(ctx, origin, destinations[start:end], mode)
		if err != nil {
			slog.WarnContext(ctx, "distance matrix chunk failed",
				"req_id", obs.RequestID(ctx), "origin", origin.String(),
				"from", start, "to", end, "err", err)
			failed = append(failed, err)
			continue
		}
		copy(out[start:end], row)
	}

	// A failed chunk leaves its cells Unreachable; only a row with no usable
	// chunk is an error.
	if chunks > 0 && len(failed) == chunks {
		return nil, errors.Join(failed...)
	}
	return out, nil
}

func (c *Client) fetchMatrixRow(
	ctx context.Context,
	origin domain.Waypoint,
	destinations []domain.Waypoint,
	mode domain.TravelMode,
) ([]domain.TravelDuration, error) {
	dests := make([]string, len(destinations))
	for i, d := range destinations {
		dests[i] = waypointParam(d)
	}

	params := url.Values{
		"origins":      {waypointParam(origin)},
		"destinations": {strings.Join(dests, "|")},
		"mode":         {string(mode)},
	}

	var resp distanceMatrixResponse
	if err := c.get(ctx, "/distancematrix/json", params, &resp); err != nil {
		return nil, err
	}

	out := make([]domain.TravelDuration, len(destinations))
	for i := range out {
		out[i] = domain.Unreachable
	}

	if err := checkStatus("distance matrix", resp.Status, resp.ErrorMessage); err != nil {
		if errors.Is(err, errZeroResults) {
			return out, nil
		}
		return nil, err
	}

	if len(resp.Rows) != 1 {
		return nil, fmt.Errorf("distance matrix: expected 1 row, got %d", len(resp.Rows))
	}

	elements := resp.Rows[0].Elements
	if len(elements) != len(destinations) {
		return nil, fmt.Errorf(
			"distance matrix: row length %d does not match destinations %d",
			len(elements), len(destinations),
		)
	}

	for i, e := range elements {
		if e.Status != statusOK {
			continue
		}
		out[i] = domain.FromSeconds(e.Duration.Value)
	}

	return out, nil
}
