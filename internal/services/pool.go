package services

import "meeting-point-service/internal/domain"

// CandidatePool is an ordered set of candidates keyed by place id.
// The first occurrence of an id wins; later duplicates are ignored.
type CandidatePool struct {
	order []domain.Candidate
	seen  map[string]struct{}
}

func NewCandidatePool(cs ...domain.Candidate) *CandidatePool {
	p := &CandidatePool{seen: make(map[string]struct{}, len(cs))}
	p.AddAll(cs)
	return p
}

// Add inserts c unless its id is empty or already present, and reports whether it was added.
func (p *CandidatePool) Add(c domain.Candidate) bool {
	if c.PlaceID == "" {
		return false
	}
	if _, ok := p.seen[c.PlaceID]; ok {
		return false
	}
	p.seen[c.PlaceID] = struct{}{}
	p.order = append(p.order, c)
	return true
}

// AddAll adds cs in order and returns the candidates that were new.
func (p *CandidatePool) AddAll(cs []domain.Candidate) []domain.Candidate {
	var added []domain.Candidate
	for _, c := range cs {
		if p.Add(c) {
			added = append(added, c)
		}
	}
	return added
}

// Candidates returns a copy of the pool in insertion order.
func (p *CandidatePool) Candidates() []domain.Candidate {
	out := make([]domain.Candidate, len(p.order))
	copy(out, p.order)
	return out
}

func (p *CandidatePool) Len() int { return len(p.order) }

func (p *CandidatePool) Contains(placeID string) bool {
	_, ok := p.seen[placeID]
	return ok
}
