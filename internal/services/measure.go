package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/platform/metrics"
	"meeting-point-service/internal/platform/obs"
	"meeting-point-service/internal/ports"
	"time"

	"golang.org/x/sync/errgroup"
)

// Lookup defaults.
const (
	DefaultLookupConcurrency = 8
	DefaultLookupTimeout     = 8 * time.Second
)

// Measurement is the pair of travel durations to one candidate.
type Measurement struct {
	Candidate domain.Candidate
	DurationA domain.TravelDuration
	DurationB domain.TravelDuration
}

type MeasureRequest struct {
	OriginA    domain.Waypoint
	OriginB    domain.Waypoint
	Candidates []domain.Candidate
	Mode       domain.TravelMode
}

// Measurer looks up the travel durations from both origins to every candidate.
//
// Lookups fan out with at most Concurrency in flight and each one is bounded by
// LookupTimeout. A failed or timed-out lookup yields domain.Unreachable; only
// cancellation of the caller's context fails the whole measurement.
type Measurer struct {
	Provider      ports.TravelTimeProvider
	Concurrency   int
	LookupTimeout time.Duration
	Metrics       *metrics.Metrics
}

func NewMeasurer(provider ports.TravelTimeProvider, concurrency int, timeout time.Duration, m *metrics.Metrics) *Measurer {
	return &Measurer{
		Provider:      provider,
		Concurrency:   concurrency,
		LookupTimeout: timeout,
		Metrics:       m,
	}
}

func (m *Measurer) concurrency() int {
	return orDefault(m.Concurrency, DefaultLookupConcurrency)
}

func (m *Measurer) timeout() time.Duration {
	if m.LookupTimeout <= 0 {
		return DefaultLookupTimeout
	}
	return m.LookupTimeout
}

// Measure returns one Measurement per candidate, in input order.
func (m *Measurer) Measure(ctx context.Context, req MeasureRequest) (_ []Measurement, err error) {
	ctx, done := obs.Start(ctx, "services.Measure")
	defer done(&err)

	out := make([]Measurement, len(req.Candidates))
	for i, c := range req.Candidates {
		out[i] = Measurement{Candidate: c, DurationA: domain.Unreachable, DurationB: domain.Unreachable}
	}
	if len(out) == 0 {
		return out, nil
	}

	dests := make([]domain.Waypoint, len(req.Candidates))
	for i, c := range req.Candidates {
		dests[i] = c.Waypoint()
	}

	// Prefer batched lookups when supported to reduce external API calls.
	if mp, ok := m.Provider.(ports.TravelTimeMatrixProvider); ok {
		var g errgroup.Group
		g.Go(func() error {
			for i, d := range m.lookupRow(ctx, mp, req.OriginA, dests, req.Mode) {
				out[i].DurationA = d
			}
			return nil
		})
		g.Go(func() error {
			for i, d := range m.lookupRow(ctx, mp, req.OriginB, dests, req.Mode) {
				out[i].DurationB = d
			}
			return nil
		})
		_ = g.Wait()
	} else {
		var g errgroup.Group
		g.SetLimit(m.concurrency())

		for i := range dests {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				out[i].DurationA = m.lookup(ctx, req.OriginA, dests[i], req.Mode)
				return nil
			})
			g.Go(func() error {
				out[i].DurationB = m.lookup(ctx, req.OriginB, dests[i], req.Mode)
				return nil
			})
		}
		_ = g.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("measure candidates: %w", err)
	}
	return out, nil
}

func (m *Measurer) lookup(
	ctx context.Context,
	origin domain.Waypoint,
	dest domain.Waypoint,
	mode domain.TravelMode,
) domain.TravelDuration {
	lctx, cancel := context.WithTimeout(ctx, m.timeout())
	defer cancel()

	start := time.Now()
	d, err := m.Provider.TravelDuration(lctx, origin, dest, mode)
	m.observe(ctx, "travel_time", origin, dest, d, err, time.Since(start))
	if err != nil {
		return domain.Unreachable
	}
	return d
}

// lookupRow fetches one origin row. Providers degrade failed sub-requests to
// unreachable cells themselves; an error here marks the whole row unreachable.
func (m *Measurer) lookupRow(
	ctx context.Context,
	mp ports.TravelTimeMatrixProvider,
	origin domain.Waypoint,
	dests []domain.Waypoint,
	mode domain.TravelMode,
) []domain.TravelDuration {
	lctx, cancel := context.WithTimeout(ctx, m.timeout())
	defer cancel()

	row := make([]domain.TravelDuration, len(dests))
	for i := range row {
		row[i] = domain.Unreachable
	}

	start := time.Now()
	got, err := mp.TravelDurations(lctx, origin, dests, mode)
	if err == nil && len(got) != len(dests) {
		err = fmt.Errorf("matrix returned %d durations for %d destinations", len(got), len(dests))
	}
	dur := time.Since(start)

	if err != nil {
		m.observe(ctx, "travel_time_matrix", origin, domain.Waypoint{}, domain.Unreachable, err, dur)
		return row
	}

	unreachable := 0
	for i, d := range got {
		row[i] = d
		if d.IsUnreachable() {
			unreachable++
		}
	}

	outcome := metrics.OutcomeOK
	if unreachable > 0 {
		outcome = metrics.OutcomeUnreachable
		slog.DebugContext(ctx, "unreachable destinations",
			"req_id", obs.RequestID(ctx), "origin", origin.String(), "count", unreachable)
	}
	m.Metrics.ObserveLookup("travel_time_matrix", outcome, dur)
	return row
}

func (m *Measurer) observe(
	ctx context.Context,
	op string,
	origin domain.Waypoint,
	dest domain.Waypoint,
	d domain.TravelDuration,
	err error,
	dur time.Duration,
) {
	switch {
	case err != nil && errors.Is(err, context.DeadlineExceeded):
		m.Metrics.ObserveLookup(op, metrics.OutcomeTimeout, dur)
	case err != nil:
		m.Metrics.ObserveLookup(op, metrics.OutcomeError, dur)
	case d.IsUnreachable():
		m.Metrics.ObserveLookup(op, metrics.OutcomeUnreachable, dur)
	default:
		m.Metrics.ObserveLookup(op, metrics.OutcomeOK, dur)
		return
	}

	slog.WarnContext(ctx, "travel time unavailable",
		"req_id", obs.RequestID(ctx),
		"op", op,
		"origin", origin.String(),
		"destination", dest.String(),
		"err", err,
	)
}
