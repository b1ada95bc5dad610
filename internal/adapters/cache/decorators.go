package cache

import (
	"context"
	"fmt"
	"log/slog"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/ports"
)

// NewCachedTravelTimes wraps next with a read-through travel-time cache.
// When next supports batched lookups the result does too.
func NewCachedTravelTimes(next ports.TravelTimeProvider, store *SQLTravelTimeCache) ports.TravelTimeProvider {
	base := &CachedTravelTimes{next: next, store: store}
	if m, ok := next.(ports.TravelTimeMatrixProvider); ok {
		return &CachedTravelTimeMatrix{CachedTravelTimes: base, matrix: m}
	}
	return base
}

// CachedTravelTimes consults the SQL cache before calling next. Cache
// failures are logged and fall through to next; they never fail a lookup.
type CachedTravelTimes struct {
	next  ports.TravelTimeProvider
	store *SQLTravelTimeCache
}

func (c *CachedTravelTimes) TravelDuration(
	ctx context.Context,
	origin domain.Waypoint,
	destination domain.Waypoint,
	mode domain.TravelMode,
) (domain.TravelDuration, error) {
	originKey, destKey := origin.Key(), destination.Key()

	hits, err := c.store.GetMany(ctx, originKey, mode, []string{destKey})
	if err != nil {
		slog.WarnContext(ctx, "travel time cache read failed", "err", err)
	} else if d, found := hits[destKey]; found {
		return d, nil
	}

	d, err := c.next.TravelDuration(ctx, origin, destination, mode)
	if err != nil {
		return d, err
	}

	if !d.IsUnreachable() {
		if err := c.store.PutMany(ctx, originKey, mode, map[string]domain.TravelDuration{destKey: d}); err != nil {
			slog.WarnContext(ctx, "travel time cache write failed", "err", err)
		}
	}
	return d, nil
}

// CachedTravelTimeMatrix fetches only cache misses in one batched call.
type CachedTravelTimeMatrix struct {
	*CachedTravelTimes
	matrix ports.TravelTimeMatrixProvider
}

func (c *CachedTravelTimeMatrix) TravelDurations(
	ctx context.Context,
	origin domain.Waypoint,
	destinations []domain.Waypoint,
	mode domain.TravelMode,
) ([]domain.TravelDuration, error) {
	originKey := origin.Key()

	keys := make([]string, len(destinations))
	for i, d := range destinations {
		keys[i] = d.Key()
	}

	hits, err := c.store.GetMany(ctx, originKey, mode, keys)
	if err != nil {
		slog.WarnContext(ctx, "travel time cache read failed", "err", err)
		hits = map[string]domain.TravelDuration{}
	}

	out := make([]domain.TravelDuration, len(destinations))
	missIdx := make([]int, 0, len(destinations))
	misses := make([]domain.Waypoint, 0, len(destinations))
	for i, k := range keys {
		if d, found := hits[k]; found {
			out[i] = d
			continue
		}
		missIdx = append(missIdx, i)
		misses = append(misses, destinations[i])
	}

	if len(misses) == 0 {
		return out, nil
	}

	fetched, err := c.matrix.TravelDurations(ctx, origin, misses, mode)
	if err != nil {
		return nil, err
	}
	if len(fetched) != len(misses) {
		return nil, fmt.Errorf("travel time matrix returned %d durations for %d destinations", len(fetched), len(misses))
	}

	fresh := make(map[string]domain.TravelDuration, len(fetched))
	for j, d := range fetched {
		i := missIdx[j]
		out[i] = d
		if !d.IsUnreachable() {
			fresh[keys[i]] = d
		}
	}

	if err := c.store.PutMany(ctx, originKey, mode, fresh); err != nil {
		slog.WarnContext(ctx, "travel time cache write failed", "err", err)
	}

	return out, nil
}

// CachedGeocoder consults the SQL geocode cache before calling next.
type CachedGeocoder struct {
	next  ports.Geocoder
	store *SQLGeocodeCache
}

func NewCachedGeocoder(next ports.Geocoder, store *SQLGeocodeCache) *CachedGeocoder {
	return &CachedGeocoder{next: next, store: store}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	return c.lookup(ctx, AddressKey(address), func() (domain.Coordinates, error) {
		return c.next.Geocode(ctx, address)
	})
}

func (c *CachedGeocoder) LookupPlace(ctx context.Context, placeID string) (domain.Coordinates, error) {
	return c.lookup(ctx, PlaceKey(placeID), func() (domain.Coordinates, error) {
		return c.next.LookupPlace(ctx, placeID)
	})
}

func (c *CachedGeocoder) lookup(
	ctx context.Context,
	key string,
	fetch func() (domain.Coordinates, error),
) (domain.Coordinates, error) {
	if key == "" {
		return fetch()
	}

	hits, err := c.store.GetMany(ctx, []string{key})
	if err != nil {
		slog.WarnContext(ctx, "geocode cache read failed", "err", err)
	} else if coords, found := hits[key]; found {
		return coords, nil
	}

	coords, err := fetch()
	if err != nil {
		return coords, err
	}

	if err := c.store.PutMany(ctx, map[string]domain.Coordinates{key: coords}); err != nil {
		slog.WarnContext(ctx, "geocode cache write failed", "err", err)
	}
	return coords, nil
}

// CachedPlaceSearcher consults the Redis place cache before calling next.
// Failed searches are not cached.
type CachedPlaceSearcher struct {
	next  ports.PlaceSearcher
	cache *RedisPlaceCache
}

func NewCachedPlaceSearcher(next ports.PlaceSearcher, cache *RedisPlaceCache) *CachedPlaceSearcher {
	return &CachedPlaceSearcher{next: next, cache: cache}
}

func (c *CachedPlaceSearcher) SearchNearby(
	ctx context.Context,
	center domain.Coordinates,
	query string,
	radiusMeters int,
) ([]domain.Candidate, error) {
	key := SearchKey(center, query, radiusMeters)

	places, found, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "place cache read failed", "err", err)
	} else if found {
		return places, nil
	}

	places, err = c.next.SearchNearby(ctx, center, query, radiusMeters)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, places); err != nil {
		slog.WarnContext(ctx, "place cache write failed", "err", err)
	}
	return places, nil
}
