package domain

// A candidate paired with the travel burden of both parties.
// ScoredCandidates are derived per ranking call and never persisted.
// DurationA and DurationB always share the same travel mode and origin pair.
type ScoredCandidate struct {
	Candidate    Candidate
	DurationA    TravelDuration
	DurationB    TravelDuration
	Total        TravelDuration
	Disparity    TravelDuration
	BalanceRatio float64
	// Score is the key the ranking was sorted by (adjusted score or raw total).
	Score float64
}

// Reachable reports whether both parties can reach the candidate.
func (s ScoredCandidate) Reachable() bool {
	return !s.DurationA.IsUnreachable() && !s.DurationB.IsUnreachable()
}

// Ranking is the ordered shortlist produced for one request.
type Ranking struct {
	Mode   TravelMode
	Policy string
	Places []ScoredCandidate
	// UsedFallback is set when no candidate passed the fairness filter and
	// the shortlist was built from raw totals instead.
	UsedFallback bool
	// Considered is the number of candidates that were measured.
	Considered int
}

// Empty reports the "no matching places" outcome. It is a valid result, not an error.
func (r Ranking) Empty() bool { return len(r.Places) == 0 }
