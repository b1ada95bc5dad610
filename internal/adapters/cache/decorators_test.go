package cache

import (
	"context"
	"meeting-point-service/internal/adapters/mock"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/platform/db"
	"meeting-point-service/internal/ports"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedTravelTimes_ReadThrough(t *testing.T) {
	ctx := context.Background()
	next := mock.NewTravelTimes([]mock.Pair{{From: "a", To: "x", Minutes: 9}})
	provider := NewCachedTravelTimes(next, NewSQLTravelTimeCache(openSQLite(t), db.SQLite))

	_, isMatrix := provider.(ports.TravelTimeMatrixProvider)
	assert.False(t, isMatrix)

	for i := 0; i < 3; i++ {
		d, err := provider.TravelDuration(ctx, domain.PlaceWaypoint("a"), domain.PlaceWaypoint("x"), domain.Walking)
		require.NoError(t, err)
		assert.InDelta(t, 9, float64(d), 1e-6)
	}
	assert.Equal(t, 1, next.Calls())
}

func TestCachedTravelTimes_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	next := mock.NewTravelTimes(nil)
	provider := NewCachedTravelTimes(next, NewSQLTravelTimeCache(openSQLite(t), db.SQLite))

	for i := 0; i < 2; i++ {
		_, err := provider.TravelDuration(ctx, domain.PlaceWaypoint("a"), domain.PlaceWaypoint("x"), domain.Walking)
		require.Error(t, err)
	}
	assert.Equal(t, 2, next.Calls())
}

func TestCachedTravelTimeMatrix_FetchesOnlyMisses(t *testing.T) {
	ctx := context.Background()
	next := mock.NewMatrixTravelTimes([]mock.Pair{
		{From: "a", To: "x", Minutes: 1},
		{From: "a", To: "y", Minutes: 2},
	})
	provider := NewCachedTravelTimes(next, NewSQLTravelTimeCache(openSQLite(t), db.SQLite))

	matrix, ok := provider.(ports.TravelTimeMatrixProvider)
	require.True(t, ok)

	origin := domain.PlaceWaypoint("a")
	dests := []domain.Waypoint{domain.PlaceWaypoint("x"), domain.PlaceWaypoint("y"), domain.PlaceWaypoint("z")}

	first, err := matrix.TravelDurations(ctx, origin, dests, domain.Walking)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.True(t, first[2].IsUnreachable())
	assert.Equal(t, 3, next.Calls())

	second, err := matrix.TravelDurations(ctx, origin, dests, domain.Walking)
	require.NoError(t, err)
	assert.InDelta(t, 1, float64(second[0]), 1e-6)
	assert.InDelta(t, 2, float64(second[1]), 1e-6)
	assert.True(t, second[2].IsUnreachable())

	// Only the unreachable destination is asked again.
	assert.Equal(t, 4, next.Calls())
	assert.Equal(t, 2, next.Batches())
}

func TestCachedGeocoder(t *testing.T) {
	ctx := context.Background()
	places := mock.NewPlaces().
		AddAddress("1 Main St", domain.Coordinates{Lat: 1, Lon: 1}).
		AddPlaceID("p1", domain.Coordinates{Lat: 2, Lon: 2})

	store := NewSQLGeocodeCache(openSQLite(t), db.SQLite)
	g := NewCachedGeocoder(places, store)

	got, err := g.Geocode(ctx, "1 main st")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 1, Lon: 1}, got)

	_, err = g.LookupPlace(ctx, "p1")
	require.NoError(t, err)

	cached, err := store.GetMany(ctx, []string{AddressKey("1 Main St"), PlaceKey("p1")})
	require.NoError(t, err)
	assert.Len(t, cached, 2)

	_, err = g.Geocode(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func newRedisCache(t *testing.T) (*RedisPlaceCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisPlaceCache(client, time.Hour), mr
}

func TestRedisPlaceCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)

	rating := 4.2
	vicinity := "Market St"
	in := []domain.Candidate{
		{PlaceID: "a", Name: "Cafe", Coordinates: domain.Coordinates{Lat: 1, Lon: 2}, Rating: &rating, Vicinity: &vicinity},
		{PlaceID: "b", Name: "Bar"},
	}

	key := SearchKey(domain.Coordinates{Lat: 1, Lon: 2}, " Coffee ", 2000)
	require.NoError(t, c.Set(ctx, key, in))
	assert.Equal(t, time.Hour, mr.TTL(key))

	got, found, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, in, got)

	_, found, err = c.Get(ctx, "meetpoint:places:missing")
	require.NoError(t, err)
	assert.False(t, found)

	mr.FastForward(2 * time.Hour)
	_, found, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCachedPlaceSearcher(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedisCache(t)

	center := domain.Coordinates{Lat: 5, Lon: 5}
	places := mock.NewPlaces().AddResults(center, domain.Candidate{PlaceID: "a"})
	s := NewCachedPlaceSearcher(places, c)

	for i := 0; i < 2; i++ {
		got, err := s.SearchNearby(ctx, center, "coffee", 500)
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
	assert.Len(t, places.Searches(), 1)
}

func TestCachedPlaceSearcher_RedisDownFallsThrough(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)
	mr.Close()

	center := domain.Coordinates{Lat: 5, Lon: 5}
	places := mock.NewPlaces().AddResults(center, domain.Candidate{PlaceID: "a"})

	got, err := NewCachedPlaceSearcher(places, c).SearchNearby(ctx, center, "coffee", 500)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
