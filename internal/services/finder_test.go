package services

import (
	"context"
	"errors"
	"meeting-point-service/internal/adapters/mock"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/fairness"
	"reflect"
	"testing"
	"time"
)

type fixture struct {
	places *mock.Places
	times  *mock.TravelTimes
	finder *MeetingFinder
}

// newFixture places two friends at place ids "A" and "B" with a cafe C that
// is fair to both and a cafe D that is quick overall but lopsided.
func newFixture(extra ...mock.Pair) *fixture {
	places := mock.NewPlaces().
		AddPlaceID("A", originA).
		AddPlaceID("B", originB).
		AddAddress("1 Main St", originA).
		AddAddress("99 Side St", originB).
		AddResults(midpoint, place("C", midpoint), place("D", midpoint)).
		AddResults(originA, place("D", originA))

	pairs := append([]mock.Pair{
		{From: "A", To: "C", Minutes: 10},
		{From: "B", To: "C", Minutes: 10},
		{From: "A", To: "D", Minutes: 2},
		{From: "B", To: "D", Minutes: 30},
	}, extra...)
	times := mock.NewTravelTimes(pairs)

	ranker := NewRanker(NewMeasurer(times, 4, time.Second, nil), fairness.DefaultRegistry(), nil)
	finder := NewMeetingFinder(places, NewAssembler(places, nil), ranker, FinderSettings{})

	return &fixture{places: places, times: times, finder: finder}
}

func TestFindRanksFairPlaceFirst(t *testing.T) {
	f := newFixture()

	res, err := f.finder.Find(context.Background(), FindRequest{
		OriginA: OriginInput{PlaceID: "A"},
		OriginB: OriginInput{PlaceID: "B"},
		Query:   "coffee",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Candidates != 2 {
		t.Fatalf("expected 2 pooled candidates, got %d", res.Candidates)
	}
	if got := ids(res.Ranking); !reflect.DeepEqual(got, []string{"C"}) {
		t.Fatalf("expected [C], got %v", got)
	}
	if res.Ranking.Mode != domain.Walking {
		t.Fatalf("expected default walking mode, got %q", res.Ranking.Mode)
	}
	if res.OriginA.PlaceID != "A" || res.OriginA.Coordinates != originA {
		t.Fatalf("unexpected resolved origin: %+v", res.OriginA)
	}
	if res.Midpoint != midpoint {
		t.Fatalf("unexpected midpoint %v", res.Midpoint)
	}
}

func TestFindByAddressAndCoordinates(t *testing.T) {
	f := newFixture(
		mock.Pair{From: originB.String(), To: "C", Minutes: 11},
		mock.Pair{From: originB.String(), To: "D", Minutes: 31},
		mock.Pair{From: originA.String(), To: "C", Minutes: 9},
		mock.Pair{From: originA.String(), To: "D", Minutes: 1},
	)

	b := originB
	res, err := f.finder.Find(context.Background(), FindRequest{
		OriginA: OriginInput{Address: "1 main st"},
		OriginB: OriginInput{Coordinates: &b},
		Query:   "coffee",
		Mode:    domain.Driving,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(res.Ranking); !reflect.DeepEqual(got, []string{"C"}) {
		t.Fatalf("expected [C], got %v", got)
	}
	if res.Ranking.Places[0].DurationA != 9 || res.Ranking.Places[0].DurationB != 11 {
		t.Fatalf("unexpected durations: %+v", res.Ranking.Places[0])
	}
}

func TestFindUnknownOrigin(t *testing.T) {
	f := newFixture()

	_, err := f.finder.Find(context.Background(), FindRequest{
		OriginA: OriginInput{Address: "nowhere"},
		OriginB: OriginInput{PlaceID: "B"},
		Query:   "coffee",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindInvalidInput(t *testing.T) {
	f := newFixture()

	cases := map[string]FindRequest{
		"missing origin": {OriginA: OriginInput{}, OriginB: OriginInput{PlaceID: "B"}, Query: "coffee"},
		"empty query":    {OriginA: OriginInput{PlaceID: "A"}, OriginB: OriginInput{PlaceID: "B"}},
		"unknown policy": {OriginA: OriginInput{PlaceID: "A"}, OriginB: OriginInput{PlaceID: "B"}, Query: "x", PolicyName: "nope"},
	}

	for name, req := range cases {
		if _, err := f.finder.Find(context.Background(), req); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Fatalf("%s: expected ErrInvalidRequest, got %v", name, err)
		}
	}
}

func TestFindNoPlaces(t *testing.T) {
	f := newFixture()

	res, err := f.finder.Find(context.Background(), FindRequest{
		OriginA: OriginInput{PlaceID: "A"},
		OriginB: OriginInput{PlaceID: "A"},
		Query:   "coffee",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Identical origins are allowed; every search lands on origin A where only D is listed.
	if res.Ranking.Considered != 1 {
		t.Fatalf("expected 1 considered candidate, got %d", res.Ranking.Considered)
	}

	empty := NewMeetingFinder(mock.NewPlaces().AddPlaceID("A", originA).AddPlaceID("B", originB),
		NewAssembler(mock.NewPlaces(), nil), f.finder.Ranker, FinderSettings{})
	res, err = empty.Find(context.Background(), FindRequest{
		OriginA: OriginInput{PlaceID: "A"},
		OriginB: OriginInput{PlaceID: "B"},
		Query:   "coffee",
	})
	if err != nil {
		t.Fatalf("empty pool must not be an error: %v", err)
	}
	if !res.Ranking.Empty() || res.Candidates != 0 {
		t.Fatalf("expected empty ranking, got %v", ids(res.Ranking))
	}
}

func TestFindFallsBackWhenNothingIsFair(t *testing.T) {
	f := newFixture()

	// Without C the only candidate is the lopsided D.
	places := mock.NewPlaces().
		AddPlaceID("A", originA).
		AddPlaceID("B", originB).
		AddResults(midpoint, place("D", midpoint))
	finder := NewMeetingFinder(places, NewAssembler(places, nil), f.finder.Ranker, FinderSettings{})

	res, err := finder.Find(context.Background(), FindRequest{
		OriginA: OriginInput{PlaceID: "A"},
		OriginB: OriginInput{PlaceID: "B"},
		Query:   "coffee",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Ranking.UsedFallback {
		t.Fatalf("expected fallback ranking")
	}
	if got := ids(res.Ranking); !reflect.DeepEqual(got, []string{"D"}) {
		t.Fatalf("expected [D], got %v", got)
	}
}

func TestFindExpandsAroundBestPlaces(t *testing.T) {
	f := newFixture(
		mock.Pair{From: "A", To: "E", Minutes: 8},
		mock.Pair{From: "B", To: "E", Minutes: 8},
	)

	// E is only listed around cafe C, which the first pass ranks best.
	cafeC := domain.Coordinates{Lat: 40.711, Lon: -73.991}
	places := mock.NewPlaces().
		AddPlaceID("A", originA).
		AddPlaceID("B", originB).
		AddResults(midpoint, place("C", cafeC), place("D", midpoint)).
		AddResults(cafeC, place("C", cafeC), place("E", cafeC))
	finder := NewMeetingFinder(places, NewAssembler(places, nil), f.finder.Ranker, FinderSettings{})

	req := FindRequest{
		OriginA: OriginInput{PlaceID: "A"},
		OriginB: OriginInput{PlaceID: "B"},
		Query:   "coffee",
	}

	res, err := finder.Find(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(res.Ranking); !reflect.DeepEqual(got, []string{"C"}) {
		t.Fatalf("expected [C] without expansion, got %v", got)
	}

	req.Expand = true
	res, err = finder.Find(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(res.Ranking); !reflect.DeepEqual(got, []string{"E", "C"}) {
		t.Fatalf("expected [E C], got %v", got)
	}
	if res.Ranking.Considered != 3 {
		t.Fatalf("expected 3 considered candidates, got %d", res.Ranking.Considered)
	}
}

func TestCandidatesReturnsPool(t *testing.T) {
	f := newFixture()

	res, err := f.finder.Candidates(context.Background(), FindRequest{
		OriginA: OriginInput{PlaceID: "A"},
		OriginB: OriginInput{PlaceID: "B"},
		Query:   "coffee",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := candidateIDs(res.Candidates); !reflect.DeepEqual(got, []string{"C", "D"}) {
		t.Fatalf("expected [C D], got %v", got)
	}
	if f.times.Calls() != 0 {
		t.Fatalf("candidates must not look up travel times")
	}
}

func TestRankDeduplicatesCandidates(t *testing.T) {
	f := newFixture()

	r, err := f.finder.Ranker.Rank(context.Background(), RankRequest{
		OriginA:    domain.PlaceWaypoint("A").WithCoordinates(originA),
		OriginB:    domain.PlaceWaypoint("B").WithCoordinates(originB),
		Candidates: []domain.Candidate{place("C", midpoint), place("D", midpoint), place("C", midpoint)},
		Mode:       domain.Walking,
		PolicyName: fairness.PolicyTotal,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Considered != 2 {
		t.Fatalf("expected duplicates removed before measuring, got %d", r.Considered)
	}
	if got := ids(r); !reflect.DeepEqual(got, []string{"C", "D"}) {
		t.Fatalf("expected [C D] by total, got %v", got)
	}
	if f.times.Calls() != 4 {
		t.Fatalf("expected 4 lookups, got %d", f.times.Calls())
	}
}

func TestRankRejectsMissingOrigin(t *testing.T) {
	f := newFixture()

	_, err := f.finder.Ranker.Rank(context.Background(), RankRequest{
		OriginA:    domain.Waypoint{},
		OriginB:    domain.PlaceWaypoint("B"),
		Candidates: []domain.Candidate{place("C", midpoint)},
	})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
