// Package ors implements the geocoding and travel-time ports using OpenRouteService.
package ors

import (
	"errors"
	"fmt"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/platform/httpx"
	"net/http"
	"strings"
)

const defaultBaseURL = "https://api.openrouteservice.org"

// Options tune the client. Zero values select the defaults.
type Options struct {
	BaseURL string
	// Country restricts geocoding to an ISO 3166-1 alpha-2 code when set.
	Country       string
	RatePerSecond float64
	Burst         int
	HTTPClient    *http.Client
}

// Client implements ports.Geocoder and ports.TravelTimeMatrixProvider
// against OpenRouteService. It is safe for concurrent use.
type Client struct {
	http    *httpx.Client
	baseURL string
	country string
}

func New(apiKey string, opts Options) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}

	hc := httpx.New(httpx.Options{
		RatePerSecond: opts.RatePerSecond,
		Burst:         opts.Burst,
		Header:        http.Header{"Authorization": []string{apiKey}},
	})
	if opts.HTTPClient != nil {
		hc.WithHTTPClient(opts.HTTPClient)
	}

	return &Client{http: hc, baseURL: base, country: opts.Country}, nil
}

// profile maps a travel mode to an ORS routing profile.
func profile(mode domain.TravelMode) (string, error) {
	switch mode {
	case domain.Walking:
		return "foot-walking", nil
	case domain.Driving:
		return "driving-car", nil
	case domain.Bicycling:
		return "cycling-regular", nil
	default:
		return "", fmt.Errorf("ORS does not support travel mode %q: %w", mode, domain.ErrInvalidRequest)
	}
}
