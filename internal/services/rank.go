package services

import (
	"cmp"
	"context"
	"fmt"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/fairness"
	"meeting-point-service/internal/platform/metrics"
	"meeting-point-service/internal/platform/obs"
	"slices"
)

// DefaultLimit is the shortlist length when a request does not set one.
const DefaultLimit = 10

// RankMeasured turns measurements into the final shortlist under policy.
//
// Candidates that both parties can reach and that pass the policy's filter
// are sorted ascending by score. When none pass, the shortlist falls back to
// every reachable candidate sorted by raw total and capped at
// min(policy.FallbackLimit, limit). Sorting is stable, so ties keep input order.
// RankMeasured is pure: the same input always yields the same ranking.
func RankMeasured(ms []Measurement, policy fairness.Policy, mode domain.TravelMode, limit int) domain.Ranking {
	limit = orDefault(limit, DefaultLimit)

	ranking := domain.Ranking{
		Mode:       mode,
		Policy:     policy.Name,
		Places:     []domain.ScoredCandidate{},
		Considered: len(ms),
	}

	passing := make([]domain.ScoredCandidate, 0, len(ms))
	reachable := make([]domain.ScoredCandidate, 0, len(ms))
	for _, m := range ms {
		as := policy.Assess(m.DurationA, m.DurationB)
		sc := domain.ScoredCandidate{
			Candidate:    m.Candidate,
			DurationA:    m.DurationA,
			DurationB:    m.DurationB,
			Total:        as.Total,
			Disparity:    as.Disparity,
			BalanceRatio: as.BalanceRatio,
			Score:        as.Score,
		}
		if !as.Reachable {
			continue
		}
		reachable = append(reachable, sc)
		if as.Passes {
			passing = append(passing, sc)
		}
	}

	if len(passing) > 0 {
		slices.SortStableFunc(passing, func(a, b domain.ScoredCandidate) int {
			return cmp.Compare(a.Score, b.Score)
		})
		ranking.Places = passing[:min(limit, len(passing))]
		return ranking
	}

	fallbackCap := min(policy.FallbackLimit, limit)
	if len(reachable) == 0 || fallbackCap <= 0 {
		return ranking
	}

	for i := range reachable {
		reachable[i].Score = float64(reachable[i].Total)
	}
	slices.SortStableFunc(reachable, func(a, b domain.ScoredCandidate) int {
		return cmp.Compare(a.Total, b.Total)
	})
	ranking.Places = reachable[:min(fallbackCap, len(reachable))]
	ranking.UsedFallback = true
	return ranking
}

type RankRequest struct {
	OriginA    domain.Waypoint
	OriginB    domain.Waypoint
	Candidates []domain.Candidate
	Mode       domain.TravelMode
	Limit      int
	PolicyName string
}

// Ranker measures and ranks candidates under a named fairness policy.
type Ranker struct {
	Measurer *Measurer
	Policies *fairness.Registry
	Metrics  *metrics.Metrics
}

func NewRanker(measurer *Measurer, policies *fairness.Registry, m *metrics.Metrics) *Ranker {
	return &Ranker{Measurer: measurer, Policies: policies, Metrics: m}
}

// Policy resolves a policy name; an unknown name is an invalid request.
func (r *Ranker) Policy(name string) (fairness.Policy, error) {
	p, err := r.Policies.Get(name)
	if err != nil {
		return fairness.Policy{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return p, nil
}

// Rank deduplicates the candidates, measures both parties' travel durations
// and returns the ranked shortlist. An empty shortlist is not an error.
func (r *Ranker) Rank(ctx context.Context, req RankRequest) (_ domain.Ranking, err error) {
	ctx, done := obs.Start(ctx, "services.Rank")
	defer done(&err)

	if err := domain.ValidateOriginPair(req.OriginA, req.OriginB); err != nil {
		return domain.Ranking{}, fmt.Errorf("rank: %w", err)
	}

	policy, err := r.Policy(req.PolicyName)
	if err != nil {
		return domain.Ranking{}, fmt.Errorf("rank: %w", err)
	}

	mode := req.Mode
	if mode == "" {
		mode = domain.DefaultTravelMode
	}

	pool := NewCandidatePool(req.Candidates...)
	ms, err := r.Measurer.Measure(ctx, MeasureRequest{
		OriginA:    req.OriginA,
		OriginB:    req.OriginB,
		Candidates: pool.Candidates(),
		Mode:       mode,
	})
	if err != nil {
		return domain.Ranking{}, fmt.Errorf("rank: %w", err)
	}

	return r.rankMeasured(ms, policy, mode, req.Limit), nil
}

func (r *Ranker) rankMeasured(ms []Measurement, policy fairness.Policy, mode domain.TravelMode, limit int) domain.Ranking {
	ranking := RankMeasured(ms, policy, mode, limit)

	outcome := metrics.RankingFiltered
	switch {
	case ranking.Empty():
		outcome = metrics.RankingEmpty
	case ranking.UsedFallback:
		outcome = metrics.RankingFallback
	}
	r.Metrics.ObserveRanking(policy.Name, outcome)

	return ranking
}
