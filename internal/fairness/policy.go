package fairness

import (
	"fmt"
	"math"
	"meeting-point-service/internal/domain"
)

// FilterMode combines the disparity and balance checks.
type FilterMode string

const (
	// FilterAny keeps a candidate when either check passes.
	FilterAny FilterMode = "any"
	// FilterAll keeps a candidate only when both checks pass.
	FilterAll FilterMode = "all"
	// FilterNone disables the fairness filter; every reachable candidate passes.
	FilterNone FilterMode = "none"
)

// Scoring selects the ranking key.
type Scoring string

const (
	// ScoreBalanced penalizes the total by the residual imbalance.
	ScoreBalanced Scoring = "balanced"
	// ScoreTotal ranks by raw combined travel time.
	ScoreTotal Scoring = "total"
)

// Policy is one named fairness definition.
type Policy struct {
	Name string `koanf:"name" json:"name"`

	// MaxDisparityMinutes is the largest |a-b| (exclusive) the disparity check accepts.
	MaxDisparityMinutes float64 `koanf:"max_disparity_minutes" json:"max_disparity_minutes"`

	// BalanceTolerance is how far the balance ratio may drift from 0.5 (inclusive).
	BalanceTolerance float64 `koanf:"balance_tolerance" json:"balance_tolerance"`

	Filter  FilterMode `koanf:"filter" json:"filter"`
	Scoring Scoring    `koanf:"scoring" json:"scoring"`

	// PenaltyWeight scales the imbalance penalty: score = total * (1 + w*(1-closeness)).
	PenaltyWeight float64 `koanf:"penalty_weight" json:"penalty_weight"`

	// FallbackLimit caps the unfiltered shortlist returned when nothing passes.
	FallbackLimit int `koanf:"fallback_limit" json:"fallback_limit"`
}

// Validate reports the first invalid field.
func (p Policy) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("fairness policy: name is required")
	}
	if p.MaxDisparityMinutes < 0 || math.IsNaN(p.MaxDisparityMinutes) {
		return fmt.Errorf("fairness policy %q: max_disparity_minutes must be >= 0", p.Name)
	}
	if p.BalanceTolerance < 0 || p.BalanceTolerance > 0.5 {
		return fmt.Errorf("fairness policy %q: balance_tolerance must be within [0, 0.5]", p.Name)
	}
	switch p.Filter {
	case FilterAny, FilterAll, FilterNone:
	default:
		return fmt.Errorf("fairness policy %q: unknown filter %q", p.Name, p.Filter)
	}
	switch p.Scoring {
	case ScoreBalanced, ScoreTotal:
	default:
		return fmt.Errorf("fairness policy %q: unknown scoring %q", p.Name, p.Scoring)
	}
	if p.PenaltyWeight < 0 {
		return fmt.Errorf("fairness policy %q: penalty_weight must be >= 0", p.Name)
	}
	if p.FallbackLimit < 0 {
		return fmt.Errorf("fairness policy %q: fallback_limit must be >= 0", p.Name)
	}
	return nil
}

// Assessment is the fairness view of one candidate.
type Assessment struct {
	Total        domain.TravelDuration
	Disparity    domain.TravelDuration
	BalanceRatio float64
	// Closeness is 1 for a perfect 50/50 split and 0 when one party carries everything.
	Closeness float64
	Reachable bool
	Passes    bool
	Score     float64
}

// Assess scores the durations of both parties to one candidate.
func (p Policy) Assess(a, b domain.TravelDuration) Assessment {
	if a.IsUnreachable() || b.IsUnreachable() {
		return Assessment{
			Total:     domain.Unreachable,
			Disparity: domain.Unreachable,
			Score:     math.Inf(1),
		}
	}

	total := a + b
	as := Assessment{
		Total:     total,
		Disparity: domain.TravelDuration(math.Abs(float64(a - b))),
		Reachable: true,
	}

	// A zero total has no meaningful split; treat it as maximally unbalanced.
	balanced := false
	if total > 0 {
		as.BalanceRatio = float64(a) / float64(total)
		offset := math.Abs(as.BalanceRatio - 0.5)
		as.Closeness = 1 - 2*offset
		balanced = offset <= p.BalanceTolerance
	}

	closeEnough := float64(as.Disparity) < p.MaxDisparityMinutes
	switch p.Filter {
	case FilterAll:
		as.Passes = closeEnough && balanced
	case FilterNone:
		as.Passes = true
	default:
		as.Passes = closeEnough || balanced
	}

	as.Score = float64(total)
	if p.Scoring == ScoreBalanced {
		as.Score = float64(total) * (1 + p.PenaltyWeight*(1-as.Closeness))
	}

	return as
}
