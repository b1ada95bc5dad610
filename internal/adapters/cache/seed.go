package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"meeting-point-service/internal/domain"
	"os"
	"strings"
)

// GeocodeSeed is one known address or place id with its coordinates.
type GeocodeSeed struct {
	Address string  `json:"address"`
	PlaceID string  `json:"place_id"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// SeedGeocodesFromJSON populates the geocode cache from a JSON array of
// GeocodeSeed and returns the number of entries written.
func SeedGeocodesFromJSON(ctx context.Context, store *SQLGeocodeCache, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed geocodes: read %q: %w", jsonPath, err)
	}

	var data []GeocodeSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed geocodes: parse json: %w", err)
	}

	rows := make(map[string]domain.Coordinates, len(data))
	for i, item := range data {
		c := domain.Coordinates{Lat: item.Lat, Lon: item.Lng}
		if err := c.Validate(); err != nil {
			return 0, fmt.Errorf("seed geocodes: item at index %d: %w", i+1, err)
		}

		addr := strings.TrimSpace(item.Address)
		id := strings.TrimSpace(item.PlaceID)
		if addr == "" && id == "" {
			return 0, fmt.Errorf("seed geocodes: item at index %d: address or place_id is required", i+1)
		}
		if addr != "" {
			rows[AddressKey(addr)] = c
		}
		if id != "" {
			rows[PlaceKey(id)] = c
		}
	}

	if err := store.PutMany(ctx, rows); err != nil {
		return 0, fmt.Errorf("seed geocodes: %w", err)
	}

	return len(rows), nil
}
