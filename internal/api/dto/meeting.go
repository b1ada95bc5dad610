package dto

import "meeting-point-service/internal/fairness"

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// OriginRequest names one party's starting point by address, place id or
// lat/lng. Coordinates win over a place id, and a place id wins over an address.
type OriginRequest struct {
	Address string   `json:"address,omitempty"`
	PlaceID string   `json:"place_id,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

type FindRequest struct {
	OriginA OriginRequest `json:"origin_a"`
	OriginB OriginRequest `json:"origin_b"`
	Query   string        `json:"query"`
	Mode    string        `json:"mode"`
	Limit   int           `json:"limit"`
	Policy  string        `json:"policy"`
	Expand  bool          `json:"expand"`
}

type CandidatesRequest struct {
	OriginA OriginRequest `json:"origin_a"`
	OriginB OriginRequest `json:"origin_b"`
	Query   string        `json:"query"`
}

// PlaceRequest mirrors PlaceResponse so a /v1/candidates pool can be posted
// back to /v1/rankings unchanged.
type PlaceRequest struct {
	PlaceID  string    `json:"place_id"`
	Name     string    `json:"name"`
	Location *Location `json:"location"`
	Rating   *float64  `json:"rating,omitempty"`
	Vicinity *string   `json:"vicinity,omitempty"`
}

type RankRequest struct {
	OriginA    OriginRequest  `json:"origin_a"`
	OriginB    OriginRequest  `json:"origin_b"`
	Candidates []PlaceRequest `json:"candidates"`
	Mode       string         `json:"mode"`
	Limit      int            `json:"limit"`
	Policy     string         `json:"policy"`
}

type OriginResponse struct {
	PlaceID  string   `json:"place_id,omitempty"`
	Location Location `json:"location"`
}

type PlaceResponse struct {
	PlaceID  string   `json:"place_id"`
	Name     string   `json:"name"`
	Location Location `json:"location"`
	Rating   *float64 `json:"rating,omitempty"`
	Vicinity *string  `json:"vicinity,omitempty"`
}

type ScoredPlaceResponse struct {
	Place            PlaceResponse `json:"place"`
	MinutesA         float64       `json:"minutes_a"`
	MinutesB         float64       `json:"minutes_b"`
	TotalMinutes     float64       `json:"total_minutes"`
	DisparityMinutes float64       `json:"disparity_minutes"`
	BalanceRatio     float64       `json:"balance_ratio"`
	Score            float64       `json:"score"`
	DirectionsA      string        `json:"directions_a"`
	DirectionsB      string        `json:"directions_b"`
}

// Ranking statuses.
const (
	StatusOK               = "ok"
	StatusNoMatchingPlaces = "no_matching_places"
)

type RankingResponse struct {
	Status       string                `json:"status"`
	Mode         string                `json:"mode"`
	Policy       string                `json:"policy"`
	UsedFallback bool                  `json:"used_fallback"`
	Considered   int                   `json:"considered"`
	Places       []ScoredPlaceResponse `json:"places"`
}

type FindResponse struct {
	OriginA     OriginResponse `json:"origin_a"`
	OriginB     OriginResponse `json:"origin_b"`
	Midpoint    Location       `json:"midpoint"`
	MapEmbedURL string         `json:"map_embed_url,omitempty"`
	Candidates  int            `json:"candidates"`
	RankingResponse
}

type CandidatesResponse struct {
	OriginA    OriginResponse  `json:"origin_a"`
	OriginB    OriginResponse  `json:"origin_b"`
	Midpoint   Location        `json:"midpoint"`
	Candidates []PlaceResponse `json:"candidates"`
}

type PoliciesResponse struct {
	Default  string            `json:"default"`
	Policies []fairness.Policy `json:"policies"`
}
