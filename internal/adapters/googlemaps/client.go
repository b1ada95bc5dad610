// Package googlemaps implements the geocoding, place search and travel-time
// ports against the Google Maps web services.
package googlemaps

import (
	"context"
	"errors"
	"fmt"
	"meeting-point-service/internal/platform/httpx"
	"net/http"
	"net/url"
	"strings"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

// Options tune the client. Zero values select the defaults.
type Options struct {
	BaseURL string
	// RatePerSecond caps outbound requests across all goroutines.
	RatePerSecond float64
	Burst         int
	// HTTPClient replaces the transport client (tests).
	HTTPClient *http.Client
}

// Client implements ports.Geocoder, ports.PlaceSearcher and
// ports.TravelTimeMatrixProvider. It is safe for concurrent use.
type Client struct {
	http    *httpx.Client
	apiKey  string
	baseURL string
}

func New(apiKey string, opts Options) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("google maps api key is empty")
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}

	hc := httpx.New(httpx.Options{
		RatePerSecond: opts.RatePerSecond,
		Burst:         opts.Burst,
	})
	if opts.HTTPClient != nil {
		hc.WithHTTPClient(opts.HTTPClient)
	}

	return &Client{http: hc, apiKey: apiKey, baseURL: base}, nil
}

// get calls a JSON endpoint with the api key appended to params.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()
	if err := c.http.GetJSON(ctx, endpoint, out); err != nil {
		return fmt.Errorf("google %s: %w", path, err)
	}
	return nil
}

// checkStatus maps the status field Google puts in every response body.
func checkStatus(path, status, message string) error {
	switch status {
	case statusOK:
		return nil
	case statusZeroResults, statusNotFound:
		return errZeroResults
	}
	if message != "" {
		return fmt.Errorf("google %s: status %s: %s", path, status, message)
	}
	return fmt.Errorf("google %s: status %s", path, status)
}

var errZeroResults = errors.New("zero results")
