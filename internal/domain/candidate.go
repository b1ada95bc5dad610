package domain

// Represents a place returned by a nearby search, eligible for ranking.
// Candidates are produced by a PlaceSearcher and never modified afterwards;
// PlaceID is the identity used for deduplication.
type Candidate struct {
	PlaceID     string
	Name        string
	Coordinates Coordinates
	Rating      *float64
	Vicinity    *string
}

// Waypoint returns the candidate as a travel destination.
func (c Candidate) Waypoint() Waypoint {
	return Waypoint{
		PlaceID:        c.PlaceID,
		Coordinates:    c.Coordinates,
		HasCoordinates: true,
	}
}
