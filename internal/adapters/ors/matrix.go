package ors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/platform/obs"
)

// maxLocationsPerRequest keeps a single matrix call within the public plan limits.
const maxLocationsPerRequest = 50

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Sources      []int       `json:"sources"`
}

type matrixResponse struct {
	Durations [][]*float64 `json:"durations"`
}

// TravelDuration returns the duration of a single trip.
func (c *Client) TravelDuration(
	ctx context.Context,
	origin domain.Waypoint,
	destination domain.Waypoint,
	mode domain.TravelMode,
) (domain.TravelDuration, error) {
	out, err := c.TravelDurations(ctx, origin, []domain.Waypoint{destination}, mode)
	if err != nil {
		return domain.Unreachable, err
	}
	return out[0], nil
}

// TravelDurations retrieves one origin->many matrix row. Waypoints must carry
// coordinates; null matrix cells and cells of a failed request are reported
// as domain.Unreachable. It errors only when every request failed.
func (c *Client) TravelDurations(
	ctx context.Context,
	origin domain.Waypoint,
	destinations []domain.Waypoint,
	mode domain.TravelMode,
) (_ []domain.TravelDuration, err error) {
	defer obs.Time(ctx, "ors.TravelDurations")(&err)

	prof, err := profile(mode)
	if err != nil {
		return nil, err
	}

	if !origin.HasCoordinates {
		return nil, fmt.Errorf("ORS matrix: origin %s has no coordinates: %w", origin, domain.ErrInvalidRequest)
	}

	for _, d := range destinations {
		if !d.HasCoordinates {
			return nil, fmt.Errorf("ORS matrix: destination %s has no coordinates: %w", d, domain.ErrInvalidRequest)
		}
	}

	out := make([]domain.TravelDuration, len(destinations))
	for i := range out {
		out[i] = domain.Unreachable
	}

	var failed []error
	chunks := 0
	chunk := maxLocationsPerRequest - 1
	for start := 0; start < len(destinations); start += chunk {
		end := min(start+chunk, len(destinations))
		chunks++

		row, err := c.fetchMatrixRow(ctx, prof, origin.Coordinates, destinations[start:end])
		if err != nil {
			slog.WarnContext(ctx, "ORS matrix chunk failed",
				"req_id", obs.RequestID(ctx), "origin", origin.String(),
				"from", start, "to", end, "err", err)
			failed = append(failed, fmt.Errorf("fetching matrix row: %w", err))
			continue
		}
		copy(out[start:end], row)
	}

	if chunks > 0 && len(failed) == chunks {
		return nil, errors.Join(failed...)
	}
	return out, nil
}

func (c *Client) fetchMatrixRow(
	ctx context.Context,
	prof string,
	originCoord domain.Coordinates,
	destinations []domain.Waypoint,
) ([]domain.TravelDuration, error) {
	locations := make([][]float64, 0, 1+len(destinations))
	locations = append(locations, originCoord.CoordsToList())

	destIdx := make([]int, 0, len(destinations))
	for _, d := range destinations {
		destIdx = append(destIdx, len(locations))
		locations = append(locations, d.Coordinates.CoordsToList())
	}

	bodyObj := matrixRequest{
		Locations:    locations,
		Destinations: destIdx,
		Metrics:      []string{"duration"},
		Sources:      []int{0},
	}

	var mr matrixResponse
	endpoint := fmt.Sprintf("%s/v2/matrix/%s", c.baseURL, prof)
	if err := c.http.PostJSON(ctx, endpoint, bodyObj, &mr); err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}

	if len(mr.Durations) != 1 {
		return nil, fmt.Errorf("expected 1 source row; got durations=%d", len(mr.Durations))
	}

	row := mr.Durations[0]
	if len(row) != len(destinations) {
		return nil, fmt.Errorf(
			"row length does not match destinations: durations=%d destinations=%d",
			len(row), len(destinations),
		)
	}

	out := make([]domain.TravelDuration, len(destinations))
	for i, secondsPtr := range row {
		if secondsPtr == nil {
			out[i] = domain.Unreachable
			continue
		}
		out[i] = domain.FromSeconds(*secondsPtr)
	}

	return out, nil
}
