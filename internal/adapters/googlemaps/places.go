package googlemaps

import (
	"context"
	"errors"
	"fmt"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/platform/obs"
	"net/url"
	"strconv"
)

// SearchNearby returns places matching query around center, in Google's
// relevance order. Only the first result page is fetched.
func (c *Client) SearchNearby(
	ctx context.Context,
	center domain.Coordinates,
	query string,
	radiusMeters int,
) (_ []domain.Candidate, err error) {
	defer obs.Time(ctx, "google.SearchNearby")(&err)

	if radiusMeters <= 0 {
		return nil, fmt.Errorf("search nearby: radius must be positive: %w", domain.ErrInvalidRequest)
	}

	params := url.Values{
		"location": {center.String()},
		"radius":   {strconv.Itoa(radiusMeters)},
		"keyword":  {query},
	}

	var resp nearbySearchResponse
	if err := c.get(ctx, "/place/nearbysearch/json", params, &resp); err != nil {
		return nil, err
	}

	if err := checkStatus("nearby search", resp.Status, resp.ErrorMessage); err != nil {
		if errors.Is(err, errZeroResults) {
			return []domain.Candidate{}, nil
		}
		return nil, err
	}

	out := make([]domain.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.PlaceID == "" {
			continue
		}
		out = append(out, domain.Candidate{
			PlaceID: r.PlaceID,
			Name:    r.Name,
			Coordinates: domain.Coordinates{
				Lat: r.Geometry.Location.Lat,
				Lon: r.Geometry.Location.Lng,
			},
			Rating:   r.Rating,
			Vicinity: r.Vicinity,
		})
	}

	return out, nil
}
