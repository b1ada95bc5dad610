package app

import (
	"context"
	"meeting-point-service/internal/adapters/cache"
	"meeting-point-service/internal/adapters/googlemaps"
	"meeting-point-service/internal/adapters/mock"
	"meeting-point-service/internal/adapters/ors"
	"meeting-point-service/internal/config"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/platform/metrics"
	"meeting-point-service/internal/services"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:                "test",
		GoogleMapsAPIKey:   "test-key",
		TravelProvider:     config.ProviderGoogle,
		Geocoder:           config.ProviderGoogle,
		LookupTimeout:      time.Second,
		LookupConcurrency:  4,
		DefaultMode:        domain.Walking,
		DefaultLimit:       10,
		SearchRadiusMeters: 1500,
		PlacesCacheTTL:     time.Minute,
	}
}

func TestNewWithPortsFind(t *testing.T) {
	a := domain.Coordinates{Lat: 51.50, Lon: -0.12}
	b := domain.Coordinates{Lat: 51.52, Lon: -0.10}
	mid := domain.Midpoint(a, b)

	places := mock.NewPlaces().
		AddPlaceID("A", a).
		AddPlaceID("B", b).
		AddResults(mid, domain.Candidate{PlaceID: "cafe", Name: "Cafe", Coordinates: mid})
	times := mock.NewTravelTimes([]mock.Pair{
		{From: "A", To: "cafe", Minutes: 12},
		{From: "B", To: "cafe", Minutes: 14},
	})

	ap, err := NewWithPorts(testConfig(), Ports{Geocoder: places, Places: places, Travel: times})
	require.NoError(t, err)
	defer ap.Close(context.Background())

	res, err := ap.Finder.Find(context.Background(), services.FindRequest{
		OriginA: services.OriginInput{PlaceID: "A"},
		OriginB: services.OriginInput{PlaceID: "B"},
		Query:   "coffee",
	})
	require.NoError(t, err)
	require.Len(t, res.Ranking.Places, 1)
	assert.Equal(t, "cafe", res.Ranking.Places[0].Candidate.PlaceID)

	families, err := ap.Registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, metrics.MetricRankingsTotal)
}

func TestNewWithPortsRequiresAllPorts(t *testing.T) {
	places := mock.NewPlaces()
	_, err := NewWithPorts(testConfig(), Ports{Geocoder: places, Places: places})
	require.Error(t, err)
}

func TestNewWithPortsUnknownPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.FairnessPolicy = "lenient"
	places := mock.NewPlaces()

	_, err := NewWithPorts(cfg, Ports{Geocoder: places, Places: places, Travel: mock.NewTravelTimes(nil)})
	require.Error(t, err)
}

func TestNewWithCaches(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.DatabaseDriver = "sqlite"
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "cache", "meetpoint.db")
	cfg.RedisURL = "redis://" + mr.Addr()

	ap, err := New(context.Background(), cfg)
	require.NoError(t, err)

	assert.IsType(t, &cache.CachedGeocoder{}, ap.Finder.Geocoder)
	assert.IsType(t, &cache.CachedPlaceSearcher{}, ap.Finder.Assembler.Searcher)
	assert.IsType(t, &cache.CachedTravelTimeMatrix{}, ap.Finder.Ranker.Measurer.Provider)
	require.NoError(t, ap.Ready(context.Background()))

	require.NoError(t, ap.Close(context.Background()))
}

func TestNewWithORSTravel(t *testing.T) {
	cfg := testConfig()
	cfg.TravelProvider = config.ProviderORS
	cfg.ORSAPIKey = "ors-key"

	ap, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer ap.Close(context.Background())

	assert.IsType(t, &ors.Client{}, ap.Finder.Ranker.Measurer.Provider)
	assert.IsType(t, &googlemaps.Client{}, ap.Finder.Geocoder)
}

func TestNewRejectsBadRedisURL(t *testing.T) {
	cfg := testConfig()
	cfg.RedisURL = "not a url"

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}
