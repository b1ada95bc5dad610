// Package mock provides in-memory implementations of the ports for tests and
// offline demos.
package mock

import (
	"context"
	"fmt"
	"meeting-point-service/internal/domain"
	"sync"
	"sync/atomic"
	"time"
)

// Pair is one fixture trip. From and To are waypoint names: the place id when
// the waypoint has one, otherwise its "lat,lng" string.
type Pair struct {
	From, To string
	// Mode restricts the pair to one travel mode; empty matches every mode.
	Mode    domain.TravelMode
	Minutes float64
}

// TravelTimes implements ports.TravelTimeProvider from fixtures.
// Pairs without a fixture return an error, like a failed upstream call.
type TravelTimes struct {
	m     map[string]domain.TravelDuration
	delay time.Duration

	calls    atomic.Int64
	inFlight atomic.Int64
	maxMu    sync.Mutex
	maxSeen  int64
}

func NewTravelTimes(pairs []Pair) *TravelTimes {
	m := make(map[string]domain.TravelDuration, len(pairs))
	for _, p := range pairs {
		m[key(p.From, p.To, p.Mode)] = domain.Minutes(p.Minutes)
	}
	return &TravelTimes{m: m}
}

// WithDelay makes every lookup sleep for d or until ctx is done.
func (p *TravelTimes) WithDelay(d time.Duration) *TravelTimes {
	p.delay = d
	return p
}

// Name returns the fixture name of a waypoint.
func Name(w domain.Waypoint) string {
	if w.PlaceID != "" {
		return w.PlaceID
	}
	return w.Coordinates.String()
}

func key(from, to string, mode domain.TravelMode) string {
	return from + "|" + to + "|" + string(mode)
}

func (p *TravelTimes) TravelDuration(
	ctx context.Context,
	origin domain.Waypoint,
	destination domain.Waypoint,
	mode domain.TravelMode,
) (domain.TravelDuration, error) {
	p.calls.Add(1)
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)

	p.maxMu.Lock()
	if n > p.maxSeen {
		p.maxSeen = n
	}
	p.maxMu.Unlock()

	if p.delay > 0 {
		t := time.NewTimer(p.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return domain.Unreachable, ctx.Err()
		case <-t.C:
		}
	}

	from, to := Name(origin), Name(destination)
	if d, ok := p.m[key(from, to, mode)]; ok {
		return d, nil
	}
	if d, ok := p.m[key(from, to, "")]; ok {
		return d, nil
	}

	return domain.Unreachable, fmt.Errorf("missing pair %q -> %q", from, to)
}

// Calls returns the number of lookups served.
func (p *TravelTimes) Calls() int { return int(p.calls.Load()) }

// MaxConcurrent returns the highest number of overlapping lookups observed.
func (p *TravelTimes) MaxConcurrent() int {
	p.maxMu.Lock()
	defer p.maxMu.Unlock()
	return int(p.maxSeen)
}

// MatrixTravelTimes adds the batched lookup on top of TravelTimes.
type MatrixTravelTimes struct {
	*TravelTimes
	batches atomic.Int64
}

func NewMatrixTravelTimes(pairs []Pair) *MatrixTravelTimes {
	return &MatrixTravelTimes{TravelTimes: NewTravelTimes(pairs)}
}

// TravelDurations answers from the fixtures; missing pairs are Unreachable.
func (p *MatrixTravelTimes) TravelDurations(
	ctx context.Context,
	origin domain.Waypoint,
	destinations []domain.Waypoint,
	mode domain.TravelMode,
) ([]domain.TravelDuration, error) {
	p.batches.Add(1)
	out := make([]domain.TravelDuration, len(destinations))
	for i, d := range destinations {
		td, err := p.TravelDuration(ctx, origin, d, mode)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			td = domain.Unreachable
		}
		out[i] = td
	}
	return out, nil
}

// Batches returns the number of batched calls served.
func (p *MatrixTravelTimes) Batches() int { return int(p.batches.Load()) }
