package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/kajiplatform/matching-service/internal/geo"
	"github.com/kajiplatform/matching-service/internal/matching"
	"github.com/kajiplatform/matching-service/internal/selection"
	"github.com/kajiplatform/matching-service/internal/store"
	"github.com/kajiplatform/matching-service/internal/types"
)

// handlers holds the route implementations.
type handlers struct {
	deps Deps
	cfg  Config
}

// handleHealth returns server health status
func (h *handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePostingMatches lists ranked candidates for a posting.
func (h *handlers) handlePostingMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	opts, ok := rankOptionsFromQuery(w, r)
	if !ok {
		return
	}

	posting, err := h.deps.Repo.GetPosting(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	candidates, err := h.deps.Repo.ListEligibleCandidates(r.Context(), store.CandidateFilters{Limit: h.cfg.CandidateCap})
	if err != nil {
		writeError(w, err)
		return
	}

	results, err := h.deps.Selector.ShortlistCandidatesForPosting(r.Context(), posting, candidates, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"matches": results})
}

// handleUserMatches lists ranked open postings for a user.
func (h *handlers) handleUserMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	opts, ok := rankOptionsFromQuery(w, r)
	if !ok {
		return
	}

	candidate, err := h.deps.Repo.GetCandidate(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	postings, err := h.deps.Repo.ListOpenPostings(r.Context(), store.PostingFilters{Limit: h.cfg.PostingCap})
	if err != nil {
		writeError(w, err)
		return
	}

	results, err := h.deps.Selector.ShortlistPostingsForCandidate(r.Context(), candidate, postings, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"matches": results})
}

// handleSkillSearch ranks candidates against a comma-separated skill query.
func (h *handlers) handleSkillSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		errorResponse(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	candidates, err := h.deps.Repo.ListEligibleCandidates(r.Context(), store.CandidateFilters{Limit: h.cfg.CandidateCap})
	if err != nil {
		writeError(w, err)
		return
	}

	profiles := make([]types.CandidateProfile, 0, len(candidates))
	for i := range candidates {
		profiles = append(profiles, candidates[i].Profile())
	}

	results, err := selection.SearchBySkillKeywords(query, profiles)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"results": results})
}

// handleNewPostingRound triggers a new-posting recommendation round.
func (h *handlers) handleNewPostingRound(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	report, err := h.deps.Dispatcher.DispatchNewPostingRecommendations(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, report)
}

// handleSimilarRound triggers a similar-postings round for a user who applied.
func (h *handlers) handleSimilarRound(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	postingID, ok := pathUUID(w, r, "posting_id")
	if !ok {
		return
	}
	report, err := h.deps.Dispatcher.DispatchSimilarPostingRecommendations(r.Context(), userID, postingID)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, report)
}

// handleSkillGapRound triggers a skill-gap round for a rejected user.
func (h *handlers) handleSkillGapRound(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	postingID, ok := pathUUID(w, r, "posting_id")
	if !ok {
		return
	}
	report, err := h.deps.Dispatcher.DispatchSkillGapOnRejection(r.Context(), userID, postingID)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, report)
}

// handleUrgentAlertRound triggers an urgent proximity alert round.
func (h *handlers) handleUrgentAlertRound(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	report, err := h.deps.Notifier.DispatchUrgentAlert(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, report)
}

// pathUUID parses a UUID path value, writing a 400 when it is malformed.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid "+name+": must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// rankOptionsFromQuery parses the optional limit and min_score parameters.
func rankOptionsFromQuery(w http.ResponseWriter, r *http.Request) (selection.RankOptions, bool) {
	opts := selection.RankOptions{}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			errorResponse(w, http.StatusBadRequest, "invalid limit: must be a non-negative integer")
			return opts, false
		}
		opts.Limit = limit
	}
	if raw := r.URL.Query().Get("min_score"); raw != "" {
		minScore, err := strconv.ParseFloat(raw, 64)
		if err != nil || minScore < 0 || minScore > 100 {
			errorResponse(w, http.StatusBadRequest, "invalid min_score: must be in [0, 100]")
			return opts, false
		}
		opts.MinScore = minScore
	}
	return opts, true
}

// writeError maps domain errors onto HTTP statuses: unknown ids are 404,
// validation failures 400, and repository trouble 502.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		errorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, matching.ErrNoRequiredSkills),
		errors.Is(err, geo.ErrInvalidCoordinates),
		errors.Is(err, selection.ErrNoKeywords):
		errorResponse(w, http.StatusBadRequest, err.Error())
	default:
		errorResponse(w, http.StatusBadGateway, err.Error())
	}
}
