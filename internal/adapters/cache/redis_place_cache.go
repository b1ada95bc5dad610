package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/platform/obs"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const placeKeyPrefix = "meetpoint:places:"

// cachedPlace is the JSON form of a domain.Candidate in Redis.
type cachedPlace struct {
	PlaceID  string   `json:"place_id"`
	Name     string   `json:"name"`
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Rating   *float64 `json:"rating,omitempty"`
	Vicinity *string  `json:"vicinity,omitempty"`
}

// RedisPlaceCache stores nearby-search results with a TTL. Place listings
// change (openings, closures, ratings) so entries expire rather than live forever.
type RedisPlaceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPlaceCache(client *redis.Client, ttl time.Duration) *RedisPlaceCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisPlaceCache{client: client, ttl: ttl}
}

// SearchKey identifies one nearby search.
func SearchKey(center domain.Coordinates, query string, radiusMeters int) string {
	q := strings.ToLower(strings.Join(strings.Fields(query), " "))
	return placeKeyPrefix + center.String() + "|" + strconv.Itoa(radiusMeters) + "|" + q
}

// Get returns the cached search result and whether it was present.
func (c *RedisPlaceCache) Get(ctx context.Context, key string) (_ []domain.Candidate, _ bool, err error) {
	defer obs.Time(ctx, "places.cache.Get")(&err)

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get place cache %q: %w", key, err)
	}

	var stored []cachedPlace
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("decode place cache %q: %w", key, err)
	}

	out := make([]domain.Candidate, len(stored))
	for i, p := range stored {
		out[i] = domain.Candidate{
			PlaceID:     p.PlaceID,
			Name:        p.Name,
			Coordinates: domain.Coordinates{Lat: p.Lat, Lon: p.Lng},
			Rating:      p.Rating,
			Vicinity:    p.Vicinity,
		}
	}
	return out, true, nil
}

// Set stores a search result under key.
func (c *RedisPlaceCache) Set(ctx context.Context, key string, places []domain.Candidate) error {
	stored := make([]cachedPlace, len(places))
	for i, p := range places {
		stored[i] = cachedPlace{
			PlaceID:  p.PlaceID,
			Name:     p.Name,
			Lat:      p.Coordinates.Lat,
			Lng:      p.Coordinates.Lon,
			Rating:   p.Rating,
			Vicinity: p.Vicinity,
		}
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode place cache %q: %w", key, err)
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set place cache %q: %w", key, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (c *RedisPlaceCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
