package googlemaps

import (
	"meeting-point-service/internal/domain"
	"net/url"
	"strconv"
)

// DirectionsURL builds a Google Maps directions link from origin to destination.
func DirectionsURL(origin, destination domain.Waypoint, mode domain.TravelMode) string {
	q := url.Values{"api": {"1"}}
	setDirectionsEnd(q, "origin", origin)
	setDirectionsEnd(q, "destination", destination)
	if mode != "" {
		q.Set("travelmode", string(mode))
	}
	return "https://www.google.com/maps/dir/?" + q.Encode()
}

// Google requires a human readable origin/destination alongside *_place_id,
// so coordinates are sent too when they are known.
func setDirectionsEnd(q url.Values, name string, w domain.Waypoint) {
	if w.HasCoordinates {
		q.Set(name, w.Coordinates.String())
	}
	if w.PlaceID != "" {
		if !w.HasCoordinates {
			q.Set(name, "place_id:"+w.PlaceID)
		}
		q.Set(name+"_place_id", w.PlaceID)
	}
}

// EmbedURL returns a Maps Embed API URL centered on center.
func EmbedURL(apiKey string, center domain.Coordinates, zoom int) string {
	q := url.Values{
		"key":  {apiKey},
		"q":    {center.String()},
		"zoom": {strconv.Itoa(zoom)},
	}
	return "https://www.google.com/maps/embed/v1/place?" + q.Encode()
}
