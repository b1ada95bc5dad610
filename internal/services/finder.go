package services

import (
	"context"
	"fmt"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/platform/obs"
	"meeting-point-service/internal/ports"
	"strings"

	"golang.org/x/sync/errgroup"
)

// OriginInput is how a caller names one party's starting point.
// Coordinates win over a place id, and a place id wins over an address.
type OriginInput struct {
	Address     string
	PlaceID     string
	Coordinates *domain.Coordinates
}

// FinderSettings are the service-wide search defaults.
type FinderSettings struct {
	Radius                RadiusHints
	MidpointCap           int
	OriginCap             int
	DefaultMode           domain.TravelMode
	DefaultLimit          int
	ExpansionSeeds        int
	ExpansionRadiusMeters int
	ExpansionCap          int
}

type FindRequest struct {
	OriginA    OriginInput
	OriginB    OriginInput
	Query      string
	Mode       domain.TravelMode
	Limit      int
	PolicyName string
	// Expand searches around the best first-pass places for more candidates.
	Expand bool
}

type FindResult struct {
	OriginA  domain.Waypoint
	OriginB  domain.Waypoint
	Midpoint domain.Coordinates
	// Candidates is the size of the assembled pool.
	Candidates int
	Ranking    domain.Ranking
}

type CandidatesResult struct {
	OriginA    domain.Waypoint
	OriginB    domain.Waypoint
	Midpoint   domain.Coordinates
	Candidates []domain.Candidate
}

// MeetingFinder resolves two origins, assembles candidates and ranks them.
type MeetingFinder struct {
	Geocoder  ports.Geocoder
	Assembler *Assembler
	Ranker    *Ranker
	Settings  FinderSettings
}

func NewMeetingFinder(geocoder ports.Geocoder, assembler *Assembler, ranker *Ranker, settings FinderSettings) *MeetingFinder {
	return &MeetingFinder{
		Geocoder:  geocoder,
		Assembler: assembler,
		Ranker:    ranker,
		Settings:  settings,
	}
}

// ResolveOrigin turns user input into a waypoint with coordinates.
// Lookups that match nothing return an error wrapping domain.ErrNotFound.
func (f *MeetingFinder) ResolveOrigin(ctx context.Context, in OriginInput) (domain.Waypoint, error) {
	placeID := strings.TrimSpace(in.PlaceID)
	address := strings.TrimSpace(in.Address)

	switch {
	case in.Coordinates != nil:
		w := domain.CoordinateWaypoint(*in.Coordinates)
		w.PlaceID = placeID
		if err := w.Validate(); err != nil {
			return domain.Waypoint{}, err
		}
		return w, nil

	case placeID != "":
		c, err := f.Geocoder.LookupPlace(ctx, placeID)
		if err != nil {
			return domain.Waypoint{}, fmt.Errorf("resolve place %q: %w", placeID, err)
		}
		return domain.PlaceWaypoint(placeID).WithCoordinates(c), nil

	case address != "":
		c, err := f.Geocoder.Geocode(ctx, address)
		if err != nil {
			return domain.Waypoint{}, fmt.Errorf("resolve address %q: %w", address, err)
		}
		return domain.CoordinateWaypoint(c), nil
	}

	return domain.Waypoint{}, fmt.Errorf("origin needs an address, place id or coordinates: %w", domain.ErrInvalidRequest)
}

func (f *MeetingFinder) resolveOrigins(ctx context.Context, a, b OriginInput) (domain.Waypoint, domain.Waypoint, error) {
	var wa, wb domain.Waypoint

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if wa, err = f.ResolveOrigin(gctx, a); err != nil {
			return fmt.Errorf("origin a: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if wb, err = f.ResolveOrigin(gctx, b); err != nil {
			return fmt.Errorf("origin b: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Waypoint{}, domain.Waypoint{}, err
	}

	return wa, wb, domain.ValidateOriginPair(wa, wb)
}

func (f *MeetingFinder) mode(m domain.TravelMode) domain.TravelMode {
	switch {
	case m != "":
		return m
	case f.Settings.DefaultMode != "":
		return f.Settings.DefaultMode
	}
	return domain.DefaultTravelMode
}

func (f *MeetingFinder) assembleRequest(a, b domain.Waypoint, query string) AssembleRequest {
	return AssembleRequest{
		OriginA:     a.Coordinates,
		OriginB:     b.Coordinates,
		Query:       query,
		Radius:      f.Settings.Radius,
		MidpointCap: f.Settings.MidpointCap,
		OriginCap:   f.Settings.OriginCap,
	}
}

// Candidates resolves the origins and returns the assembled pool without ranking it.
func (f *MeetingFinder) Candidates(ctx context.Context, req FindRequest) (_ *CandidatesResult, err error) {
	ctx, done := obs.Start(ctx, "services.Candidates")
	defer done(&err)

	a, b, err := f.resolveOrigins(ctx, req.OriginA, req.OriginB)
	if err != nil {
		return nil, fmt.Errorf("candidates: %w", err)
	}

	pool, err := f.Assembler.Assemble(ctx, f.assembleRequest(a, b, req.Query))
	if err != nil {
		return nil, fmt.Errorf("candidates: %w", err)
	}

	return &CandidatesResult{
		OriginA:    a,
		OriginB:    b,
		Midpoint:   domain.Midpoint(a.Coordinates, b.Coordinates),
		Candidates: pool.Candidates(),
	}, nil
}

// Find runs the full pipeline: resolve, assemble, measure, rank and, when
// requested, expand around the best places and rank again.
func (f *MeetingFinder) Find(ctx context.Context, req FindRequest) (_ *FindResult, err error) {
	ctx, done := obs.Start(ctx, "services.Find")
	defer done(&err)

	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("find: query is required: %w", domain.ErrInvalidRequest)
	}

	policy, err := f.Ranker.Policy(req.PolicyName)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	mode := f.mode(req.Mode)
	limit := orDefault(req.Limit, orDefault(f.Settings.DefaultLimit, DefaultLimit))

	a, b, err := f.resolveOrigins(ctx, req.OriginA, req.OriginB)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	pool, err := f.Assembler.Assemble(ctx, f.assembleRequest(a, b, req.Query))
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	ms, err := f.Ranker.Measurer.Measure(ctx, MeasureRequest{
		OriginA:    a,
		OriginB:    b,
		Candidates: pool.Candidates(),
		Mode:       mode,
	})
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	ranking := RankMeasured(ms, policy, mode, limit)

	if req.Expand && !ranking.Empty() {
		seeds := make([]domain.Candidate, 0, len(ranking.Places))
		for _, p := range ranking.Places[:min(orDefault(f.Settings.ExpansionSeeds, DefaultExpansionSeeds), len(ranking.Places))] {
			seeds = append(seeds, p.Candidate)
		}

		added, err := f.Assembler.Expand(ctx, pool, ExpandRequest{
			Seeds:        seeds,
			Query:        req.Query,
			RadiusMeters: f.Settings.ExpansionRadiusMeters,
			Cap:          f.Settings.ExpansionCap,
		})
		if err != nil {
			return nil, fmt.Errorf("find: %w", err)
		}

		if len(added) > 0 {
			more, err := f.Ranker.Measurer.Measure(ctx, MeasureRequest{
				OriginA:    a,
				OriginB:    b,
				Candidates: added,
				Mode:       mode,
			})
			if err != nil {
				return nil, fmt.Errorf("find: %w", err)
			}
			ms = append(ms, more...)
		}
	}

	return &FindResult{
		OriginA:    a,
		OriginB:    b,
		Midpoint:   domain.Midpoint(a.Coordinates, b.Coordinates),
		Candidates: pool.Len(),
		Ranking:    f.Ranker.rankMeasured(ms, policy, mode, limit),
	}, nil
}
