package googlemaps

import (
	"context"
	"errors"
	"fmt"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/platform/obs"
	"net/url"
	"strings"
)

// Geocode resolves a free-text address to the coordinates of its best match.
func (c *Client) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "google.Geocode")(&err)

	address = strings.Join(strings.Fields(address), " ")
	if address == "" {
		return domain.Coordinates{}, fmt.Errorf("geocode: empty address: %w", domain.ErrInvalidRequest)
	}

	var resp geocodeResponse
	if err := c.get(ctx, "/geocode/json", url.Values{"address": {address}}, &resp); err != nil {
		return domain.Coordinates{}, err
	}

	if err := checkStatus("geocode", resp.Status, resp.ErrorMessage); err != nil {
		if errors.Is(err, errZeroResults) {
			return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", address, domain.ErrNotFound)
		}
		return domain.Coordinates{}, err
	}
	if len(resp.Results) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", address, domain.ErrNotFound)
	}

	loc := resp.Results[0].Geometry.Location
	return domain.Coordinates{Lat: loc.Lat, Lon: loc.Lng}, nil
}

// LookupPlace resolves a Google place id through the place details endpoint.
func (c *Client) LookupPlace(ctx context.Context, placeID string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "google.LookupPlace")(&err)

	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return domain.Coordinates{}, fmt.Errorf("lookup place: empty place id: %w", domain.ErrInvalidRequest)
	}

	params := url.Values{
		"place_id": {placeID},
		"fields":   {"geometry"},
	}

	var resp placeDetailsResponse
	if err := c.get(ctx, "/place/details/json", params, &resp); err != nil {
		return domain.Coordinates{}, err
	}

	// Place Details answers INVALID_REQUEST for malformed or expired ids.
	if err := checkStatus("place details", resp.Status, resp.ErrorMessage); err != nil {
		if errors.Is(err, errZeroResults) || resp.Status == statusInvalidRequest {
			return domain.Coordinates{}, fmt.Errorf("lookup place %q: %w", placeID, domain.ErrNotFound)
		}
		return domain.Coordinates{}, err
	}

	loc := resp.Result.Geometry.Location
	return domain.Coordinates{Lat: loc.Lat, Lon: loc.Lng}, nil
}
