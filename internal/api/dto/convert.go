package dto

import (
	"meeting-point-service/internal/adapters/googlemaps"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/services"
)

const embedZoom = 14

func NewLocation(c domain.Coordinates) Location {
	return Location{Lat: c.Lat, Lng: c.Lon}
}

func NewOriginResponse(w domain.Waypoint) OriginResponse {
	return OriginResponse{PlaceID: w.PlaceID, Location: NewLocation(w.Coordinates)}
}

func NewPlaceResponse(c domain.Candidate) PlaceResponse {
	return PlaceResponse{
		PlaceID:  c.PlaceID,
		Name:     c.Name,
		Location: NewLocation(c.Coordinates),
		Rating:   c.Rating,
		Vicinity: c.Vicinity,
	}
}

func NewPlaceResponses(cs []domain.Candidate) []PlaceResponse {
	out := make([]PlaceResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewPlaceResponse(c))
	}
	return out
}

// NewRankingResponse renders a ranking with directions links from each origin.
// An empty ranking gets status "no_matching_places" and an empty, non-null list.
func NewRankingResponse(r domain.Ranking, a, b domain.Waypoint) RankingResponse {
	res := RankingResponse{
		Status:       StatusOK,
		Mode:         string(r.Mode),
		Policy:       r.Policy,
		UsedFallback: r.UsedFallback,
		Considered:   r.Considered,
		Places:       make([]ScoredPlaceResponse, 0, len(r.Places)),
	}
	if r.Empty() {
		res.Status = StatusNoMatchingPlaces
	}

	for _, p := range r.Places {
		dest := p.Candidate.Waypoint()
		res.Places = append(res.Places, ScoredPlaceResponse{
			Place:            NewPlaceResponse(p.Candidate),
			MinutesA:         float64(p.DurationA),
			MinutesB:         float64(p.DurationB),
			TotalMinutes:     float64(p.Total),
			DisparityMinutes: float64(p.Disparity),
			BalanceRatio:     p.BalanceRatio,
			Score:            p.Score,
			DirectionsA:      googlemaps.DirectionsURL(a, dest, r.Mode),
			DirectionsB:      googlemaps.DirectionsURL(b, dest, r.Mode),
		})
	}
	return res
}

// NewFindResponse renders a search result. embedKey adds a map preview link
// centred on the midpoint when set.
func NewFindResponse(res *services.FindResult, embedKey string) FindResponse {
	out := FindResponse{
		OriginA:         NewOriginResponse(res.OriginA),
		OriginB:         NewOriginResponse(res.OriginB),
		Midpoint:        NewLocation(res.Midpoint),
		Candidates:      res.Candidates,
		RankingResponse: NewRankingResponse(res.Ranking, res.OriginA, res.OriginB),
	}
	if embedKey != "" {
		out.MapEmbedURL = googlemaps.EmbedURL(embedKey, res.Midpoint, embedZoom)
	}
	return out
}

func NewCandidatesResponse(res *services.CandidatesResult) CandidatesResponse {
	return CandidatesResponse{
		OriginA:    NewOriginResponse(res.OriginA),
		OriginB:    NewOriginResponse(res.OriginB),
		Midpoint:   NewLocation(res.Midpoint),
		Candidates: NewPlaceResponses(res.Candidates),
	}
}
