package mock

import (
	"context"
	"errors"
	"fmt"
	"meeting-point-service/internal/domain"
	"strings"
	"sync"
)

// Places implements ports.PlaceSearcher and ports.Geocoder from fixtures.
// Search results are keyed by the "lat,lng" string of the search center.
type Places struct {
	mu        sync.Mutex
	results   map[string][]domain.Candidate
	failures  map[string]error
	addresses map[string]domain.Coordinates
	placeIDs  map[string]domain.Coordinates
	searches  []string
}

func NewPlaces() *Places {
	return &Places{
		results:   map[string][]domain.Candidate{},
		failures:  map[string]error{},
		addresses: map[string]domain.Coordinates{},
		placeIDs:  map[string]domain.Coordinates{},
	}
}

// AddResults registers the places returned around center.
func (p *Places) AddResults(center domain.Coordinates, cs ...domain.Candidate) *Places {
	p.mu.Lock()
	defer p.mu.Unlock()
	k := center.String()
	p.results[k] = append(p.results[k], cs...)
	return p
}

// FailAt makes searches around center return err.
func (p *Places) FailAt(center domain.Coordinates, err error) *Places {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[center.String()] = err
	return p
}

// AddAddress registers an address for Geocode.
func (p *Places) AddAddress(address string, c domain.Coordinates) *Places {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addresses[normalize(address)] = c
	return p
}

// AddPlaceID registers a place id for LookupPlace.
func (p *Places) AddPlaceID(id string, c domain.Coordinates) *Places {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placeIDs[id] = c
	return p
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func (p *Places) SearchNearby(
	ctx context.Context,
	center domain.Coordinates,
	query string,
	radiusMeters int,
) ([]domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 {
		return nil, errors.New("radius must be positive")
	}

	k := center.String()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.searches = append(p.searches, k)

	if err, ok := p.failures[k]; ok {
		return nil, err
	}
	out := make([]domain.Candidate, len(p.results[k]))
	copy(out, p.results[k])
	return out, nil
}

// Searches returns the centers searched so far, in call order.
func (p *Places) Searches() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.searches))
	copy(out, p.searches)
	return out
}

func (p *Places) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.addresses[normalize(address)]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", address, domain.ErrNotFound)
	}
	return c, nil
}

func (p *Places) LookupPlace(ctx context.Context, placeID string) (domain.Coordinates, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.placeIDs[placeID]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("lookup place %q: %w", placeID, domain.ErrNotFound)
	}
	return c, nil
}
