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
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Search defaults.
const (
	DefaultSearchRadiusMeters = 2000
	DefaultMidpointCap        = 10
	DefaultOriginCap          = 5
	MaxSourceCap              = 20

	DefaultExpansionSeeds        = 3
	DefaultExpansionRadiusMeters = 500
	DefaultExpansionCap          = 5
)

// RadiusHints sets the search radius around the midpoint and around each origin.
// Zero selects DefaultSearchRadiusMeters.
type RadiusHints struct {
	MidpointMeters int
	OriginMeters   int
}

type AssembleRequest struct {
	OriginA     domain.Coordinates
	OriginB     domain.Coordinates
	Query       string
	Radius      RadiusHints
	MidpointCap int
	OriginCap   int
}

type ExpandRequest struct {
	Seeds        []domain.Candidate
	Query        string
	RadiusMeters int
	Cap          int
}

// Assembler builds the candidate pool from nearby searches.
type Assembler struct {
	Searcher ports.PlaceSearcher
	Metrics  *metrics.Metrics
}

func NewAssembler(searcher ports.PlaceSearcher, m *metrics.Metrics) *Assembler {
	return &Assembler{Searcher: searcher, Metrics: m}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func sourceCap(v, def int) int {
	return min(orDefault(v, def), MaxSourceCap)
}

// Assemble searches around the midpoint and both origins concurrently and
// merges the results by place id: midpoint results first, then origin A,
// then origin B. A failed search contributes nothing. An empty pool is a
// valid result.
func (a *Assembler) Assemble(ctx context.Context, req AssembleRequest) (_ *CandidatePool, err error) {
	ctx, done := obs.Start(ctx, "services.Assemble")
	defer done(&err)

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("assemble candidates: query is required: %w", domain.ErrInvalidRequest)
	}
	if err := req.OriginA.Validate(); err != nil {
		return nil, fmt.Errorf("assemble candidates: origin a: %w", err)
	}
	if err := req.OriginB.Validate(); err != nil {
		return nil, fmt.Errorf("assemble candidates: origin b: %w", err)
	}

	midRadius := orDefault(req.Radius.MidpointMeters, DefaultSearchRadiusMeters)
	originRadius := orDefault(req.Radius.OriginMeters, DefaultSearchRadiusMeters)
	midCap := sourceCap(req.MidpointCap, DefaultMidpointCap)
	originCap := sourceCap(req.OriginCap, DefaultOriginCap)

	type source struct {
		label  string
		center domain.Coordinates
		radius int
		cap    int
	}
	sources := []source{
		{"midpoint", domain.Midpoint(req.OriginA, req.OriginB), midRadius, midCap},
		{"origin_a", req.OriginA, originRadius, originCap},
		{"origin_b", req.OriginB, originRadius, originCap},
	}

	results := make([][]domain.Candidate, len(sources))
	var g errgroup.Group
	for i, s := range sources {
		g.Go(func() error {
			results[i] = a.search(ctx, s.label, s.center, query, s.radius, s.cap)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("assemble candidates: %w", err)
	}

	pool := NewCandidatePool()
	for _, r := range results {
		pool.AddAll(r)
	}

	a.Metrics.ObserveCandidates(pool.Len())
	return pool, nil
}

// Expand searches a small radius around each seed and adds places the pool
// has not seen yet. It returns the newly added candidates in seed order.
func (a *Assembler) Expand(ctx context.Context, pool *CandidatePool, req ExpandRequest) (_ []domain.Candidate, err error) {
	ctx, done := obs.Start(ctx, "services.Expand")
	defer done(&err)

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("expand candidates: query is required: %w", domain.ErrInvalidRequest)
	}
	if len(req.Seeds) == 0 {
		return nil, nil
	}

	radius := orDefault(req.RadiusMeters, DefaultExpansionRadiusMeters)
	limit := sourceCap(req.Cap, DefaultExpansionCap)

	results := make([][]domain.Candidate, len(req.Seeds))
	var g errgroup.Group
	for i, seed := range req.Seeds {
		g.Go(func() error {
			results[i] = a.search(ctx, "expansion", seed.Coordinates, query, radius, limit)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("expand candidates: %w", err)
	}

	var added []domain.Candidate
	for _, r := range results {
		added = append(added, pool.AddAll(r)...)
	}
	return added, nil
}

// search runs one nearby search and keeps its first limit results.
// Errors are logged and reported as no results.
func (a *Assembler) search(
	ctx context.Context,
	label string,
	center domain.Coordinates,
	query string,
	radius int,
	limit int,
) []domain.Candidate {
	start := time.Now()
	places, err := a.Searcher.SearchNearby(ctx, center, query, radius)
	dur := time.Since(start)

	switch {
	case err != nil:
		outcome := metrics.OutcomeError
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = metrics.OutcomeTimeout
		}
		a.Metrics.ObserveLookup("search", outcome, dur)
		slog.WarnContext(ctx, "nearby search failed",
			"req_id", obs.RequestID(ctx), "source", label, "center", center.String(), "err", err)
		return nil
	case len(places) == 0:
		a.Metrics.ObserveLookup("search", metrics.OutcomeEmpty, dur)
		return nil
	}

	a.Metrics.ObserveLookup("search", metrics.OutcomeOK, dur)
	if len(places) > limit {
		places = places[:limit]
	}
	return places
}
