package ors

import (
	"context"
	"fmt"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/platform/obs"
	"net/url"
	"strings"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves an address using /geocode/search.
func (c *Client) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := strings.Join(strings.Fields(address), " ")
	if norm == "" {
		return domain.Coordinates{}, fmt.Errorf("geocode: empty address: %w", domain.ErrInvalidRequest)
	}

	q := url.Values{}
	q.Set("text", norm)
	q.Set("size", "1")
	if c.country != "" {
		q.Set("boundary.country", c.country)
	}

	var decoded geocodeResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/geocode/search?"+q.Encode(), &decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("ORS geocode %q: %w", norm, err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("ORS geocode %q: %w", norm, domain.ErrNotFound)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", norm)
	}

	return domain.Coordinates{Lon: coords[0], Lat: coords[1]}, nil
}

// LookupPlace is unsupported: ORS has no notion of Google place ids.
func (c *Client) LookupPlace(ctx context.Context, placeID string) (domain.Coordinates, error) {
	return domain.Coordinates{}, fmt.Errorf("ORS cannot resolve place id %q: %w", placeID, domain.ErrInvalidRequest)
}
