package googlemaps

import (
	"context"
	"meeting-point-service/internal/domain"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	c, err := New("test-key", Options{BaseURL: ts.URL, HTTPClient: ts.Client()})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New("", Options{})
	assert.Error(t, err)
}

func TestGeocode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "1 Main St Springfield", r.URL.Query().Get("address"))
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"place_id":"p1","geometry":{"location":{"lat":40.5,"lng":-73.25}}}]}`))
	})

	got, err := c.Geocode(context.Background(), "  1 Main St   Springfield ")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 40.5, Lon: -73.25}, got)
}

func TestGeocode_ZeroResultsIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	})

	_, err := c.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGeocode_RequestDenied(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`))
	})

	_, err := c.Geocode(context.Background(), "somewhere")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestLookupPlace(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/details/json", r.URL.Path)
		assert.Equal(t, "ChIJabc", r.URL.Query().Get("place_id"))
		assert.Equal(t, "geometry", r.URL.Query().Get("fields"))
		_, _ = w.Write([]byte(`{"status":"OK","result":{"geometry":{"location":{"lat":1,"lng":2}}}}`))
	})

	got, err := c.LookupPlace(context.Background(), "ChIJabc")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 1, Lon: 2}, got)
}

func TestLookupPlace_InvalidIDIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"INVALID_REQUEST"}`))
	})

	_, err := c.LookupPlace(context.Background(), "not-a-real-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLookupPlace_RequestDeniedIsNotNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`))
	})

	_, err := c.LookupPlace(context.Background(), "ChIJabc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchNearby(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/place/nearbysearch/json", r.URL.Path)
		assert.Equal(t, "10.000000,20.000000", q.Get("location"))
		assert.Equal(t, "2000", q.Get("radius"))
		assert.Equal(t, "coffee", q.Get("keyword"))
		_, _ = w.Write([]byte(`{"status":"OK","results":[
			{"place_id":"a","name":"Cafe A","rating":4.5,"vicinity":"1 St","geometry":{"location":{"lat":10.1,"lng":20.1}}},
			{"place_id":"","name":"no id"},
			{"place_id":"b","name":"Cafe B","geometry":{"location":{"lat":10.2,"lng":20.2}}}
		]}`))
	})

	got, err := c.SearchNearby(context.Background(), domain.Coordinates{Lat: 10, Lon: 20}, "coffee", 2000)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "a", got[0].PlaceID)
	require.NotNil(t, got[0].Rating)
	assert.InDelta(t, 4.5, *got[0].Rating, 1e-9)
	require.NotNil(t, got[0].Vicinity)
	assert.Equal(t, "1 St", *got[0].Vicinity)
	assert.Equal(t, "b", got[1].PlaceID)
	assert.Nil(t, got[1].Rating)
}

func TestSearchNearby_ZeroResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	})

	got, err := c.SearchNearby(context.Background(), domain.Coordinates{}, "tea", 500)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTravelDurations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/distancematrix/json", r.URL.Path)
		assert.Equal(t, "place_id:origin", q.Get("origins"))
		assert.Equal(t, "place_id:a|1.000000,2.000000", q.Get("destinations"))
		assert.Equal(t, "walking", q.Get("mode"))
		_, _ = w.Write([]byte(`{"status":"OK","rows":[{"elements":[
			{"status":"OK","duration":{"value":600}},
			{"status":"ZERO_RESULTS"}
		]}]}`))
	})

	got, err := c.TravelDurations(
		context.Background(),
		domain.PlaceWaypoint("origin"),
		[]domain.Waypoint{
			domain.PlaceWaypoint("a"),
			domain.CoordinateWaypoint(domain.Coordinates{Lat: 1, Lon: 2}),
		},
		domain.Walking,
	)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.TravelDuration(10), got[0])
	assert.True(t, got[1].IsUnreachable())
}

func TestTravelDurations_ChunksDestinations(t *testing.T) {
	var requests int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		n := len(strings.Split(r.URL.Query().Get("destinations"), "|"))
		elems := make([]string, n)
		for i := range elems {
			elems[i] = `{"status":"OK","duration":{"value":60}}`
		}
		_, _ = w.Write([]byte(`{"status":"OK","rows":[{"elements":[` + strings.Join(elems, ",") + `]}]}`))
	})

	dests := make([]domain.Waypoint, 30)
	for i := range dests {
		dests[i] = domain.PlaceWaypoint("p" + string(rune('a'+i%26)))
	}

	got, err := c.TravelDurations(context.Background(), domain.PlaceWaypoint("o"), dests, domain.Driving)
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
	require.Len(t, got, 30)
	for _, d := range got {
		assert.Equal(t, domain.TravelDuration(1), d)
	}
}

func TestTravelDurations_FailedChunkKeepsOthers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := len(strings.Split(r.URL.Query().Get("destinations"), "|"))
		if n < maxDestinationsPerRequest {
			_, _ = w.Write([]byte(`{"status":"UNKNOWN_ERROR"}`))
			return
		}
		elems := make([]string, n)
		for i := range elems {
			elems[i] = `{"status":"OK","duration":{"value":120}}`
		}
		_, _ = w.Write([]byte(`{"status":"OK","rows":[{"elements":[` + strings.Join(elems, ",") + `]}]}`))
	})

	dests := make([]domain.Waypoint, 30)
	for i := range dests {
		dests[i] = domain.CoordinateWaypoint(domain.Coordinates{Lat: float64(i), Lon: 1})
	}

	got, err := c.TravelDurations(context.Background(), domain.PlaceWaypoint("o"), dests, domain.Driving)
	require.NoError(t, err)
	require.Len(t, got, 30)
	for i, d := range got[:25] {
		assert.Equal(t, domain.TravelDuration(2), d, "destination %d", i)
	}
	for i, d := range got[25:] {
		assert.True(t, d.IsUnreachable(), "destination %d", 25+i)
	}
}

func TestTravelDurations_AllChunksFailed(t *testing.T) {
	var requests int
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		requests++
		_, _ = w.Write([]byte(`{"status":"UNKNOWN_ERROR"}`))
	})

	dests := make([]domain.Waypoint, 30)
	for i := range dests {
		dests[i] = domain.CoordinateWaypoint(domain.Coordinates{Lat: float64(i), Lon: 1})
	}

	got, err := c.TravelDurations(context.Background(), domain.PlaceWaypoint("o"), dests, domain.Driving)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNKNOWN_ERROR")
	assert.Nil(t, got)
	assert.Equal(t, 2, requests)
}

func TestTravelDurations_RowMismatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","rows":[{"elements":[]}]}`))
	})

	_, err := c.TravelDuration(context.Background(), domain.PlaceWaypoint("o"), domain.PlaceWaypoint("d"), domain.Walking)
	assert.Error(t, err)
}

func TestDirectionsURL(t *testing.T) {
	raw := DirectionsURL(
		domain.PlaceWaypoint("from"),
		domain.Candidate{PlaceID: "to", Coordinates: domain.Coordinates{Lat: 1, Lon: 2}}.Waypoint(),
		domain.Walking,
	)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "/maps/dir/", u.Path)
	assert.Equal(t, "1", q.Get("api"))
	assert.Equal(t, "place_id:from", q.Get("origin"))
	assert.Equal(t, "from", q.Get("origin_place_id"))
	assert.Equal(t, "1.000000,2.000000", q.Get("destination"))
	assert.Equal(t, "to", q.Get("destination_place_id"))
	assert.Equal(t, "walking", q.Get("travelmode"))
}

func TestEmbedURL(t *testing.T) {
	u, err := url.Parse(EmbedURL("k", domain.Coordinates{Lat: 3, Lon: 4}, 13))
	require.NoError(t, err)
	assert.Equal(t, "k", u.Query().Get("key"))
	assert.Equal(t, "3.000000,4.000000", u.Query().Get("q"))
	assert.Equal(t, "13", u.Query().Get("zoom"))
}
