package handlers

import (
	"fmt"
	"meeting-point-service/internal/api/dto"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/services"
	"net/http"
	"strings"
)

// MaxLimit bounds the shortlist size a caller may request.
const MaxLimit = 50

// MaxCandidates bounds a caller-supplied pool; every candidate costs two
// travel-time lookups.
const MaxCandidates = 60

// MeetingHandler exposes the meeting-place search endpoints.
type MeetingHandler struct {
	Finder *services.MeetingFinder
	// EmbedKey enables map_embed_url in find responses when set.
	EmbedKey string
}

func parseModeAndLimit(mode string, limit int) (domain.TravelMode, error) {
	if limit < 0 || limit > MaxLimit {
		return "", fmt.Errorf("limit must be between 0 and %d: %w", MaxLimit, domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(mode) == "" {
		return "", nil
	}
	return domain.ParseTravelMode(mode)
}

// Find resolves both origins, assembles nearby candidates and returns the
// fairness-ranked shortlist. An empty shortlist is a 200 with status
// "no_matching_places".
func (h *MeetingHandler) Find(w http.ResponseWriter, r *http.Request) {
	var req dto.FindRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeError(w, r, http.StatusBadRequest, "query is required")
		return
	}
	mode, err := parseModeAndLimit(req.Mode, req.Limit)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	a, b, err := originInputs(req.OriginA, req.OriginB)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Finder.Find(r.Context(), services.FindRequest{
		OriginA:    a,
		OriginB:    b,
		Query:      strings.TrimSpace(req.Query),
		Mode:       mode,
		Limit:      req.Limit,
		PolicyName: strings.TrimSpace(req.Policy),
		Expand:     req.Expand,
	})
	if err != nil {
		writeServiceError(w, r, "find meeting places", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewFindResponse(res, h.EmbedKey))
}

// Candidates returns the assembled pool without measuring or ranking it.
func (h *MeetingHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	var req dto.CandidatesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeError(w, r, http.StatusBadRequest, "query is required")
		return
	}
	a, b, err := originInputs(req.OriginA, req.OriginB)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Finder.Candidates(r.Context(), services.FindRequest{
		OriginA: a,
		OriginB: b,
		Query:   strings.TrimSpace(req.Query),
	})
	if err != nil {
		writeServiceError(w, r, "assemble candidates", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewCandidatesResponse(res))
}

// Rank measures and ranks a caller-supplied candidate list.
func (h *MeetingHandler) Rank(w http.ResponseWriter, r *http.Request) {
	var req dto.RankRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	mode, err := parseModeAndLimit(req.Mode, req.Limit)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ia, ib, err := originInputs(req.OriginA, req.OriginB)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.Candidates) > MaxCandidates {
		writeError(w, r, http.StatusBadRequest,
			fmt.Sprintf("at most %d candidates may be ranked, got %d", MaxCandidates, len(req.Candidates)))
		return
	}

	candidates := make([]domain.Candidate, 0, len(req.Candidates))
	for _, p := range req.Candidates {
		c, err := candidate(p)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		candidates = append(candidates, c)
	}

	a, err := h.Finder.ResolveOrigin(r.Context(), ia)
	if err != nil {
		writeServiceError(w, r, "resolve origin a", err)
		return
	}
	b, err := h.Finder.ResolveOrigin(r.Context(), ib)
	if err != nil {
		writeServiceError(w, r, "resolve origin b", err)
		return
	}

	if mode == "" {
		mode = h.Finder.Settings.DefaultMode
	}
	limit := req.Limit
	if limit == 0 {
		limit = h.Finder.Settings.DefaultLimit
	}

	ranking, err := h.Finder.Ranker.Rank(r.Context(), services.RankRequest{
		OriginA:    a,
		OriginB:    b,
		Candidates: candidates,
		Mode:       mode,
		Limit:      limit,
		PolicyName: strings.TrimSpace(req.Policy),
	})
	if err != nil {
		writeServiceError(w, r, "rank candidates", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewRankingResponse(ranking, a, b))
}
