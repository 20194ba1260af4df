package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kajiplatform/matching-service/internal/dispatch"
	"github.com/kajiplatform/matching-service/internal/matching"
	"github.com/kajiplatform/matching-service/internal/notify"
	"github.com/kajiplatform/matching-service/internal/proximity"
	"github.com/kajiplatform/matching-service/internal/selection"
	"github.com/kajiplatform/matching-service/internal/store"
	"github.com/kajiplatform/matching-service/internal/types"
)

func newTestServer(t *testing.T, repo *store.Memory) *Server {
	t.Helper()
	scorer, err := matching.NewScorer(matching.DefaultWeights())
	require.NoError(t, err)

	selector := selection.NewSelector(scorer, repo)
	fanout := notify.NewFanout(nil, nil, nil, notify.FanoutOptions{Workers: 1})
	dispatcher := dispatch.NewDispatcher(repo, selector, fanout, notify.NewMemoryQueue(), nil, dispatch.Options{})
	notifier := proximity.NewNotifier(repo, fanout, nil, proximity.Options{})

	return New(Config{Addr: ":0"}, Deps{
		Repo:       repo,
		Selector:   selector,
		Dispatcher: dispatcher,
		Notifier:   notifier,
	})
}

func seedRemotePosting(repo *store.Memory) types.Posting {
	posting := types.Posting{
		ID:             uuid.New(),
		PosterID:       uuid.New(),
		Title:          "Plumber needed",
		JobType:        "plumbing",
		Active:         true,
		Verified:       true,
		IsRemote:       true,
		RequiredSkills: types.SkillMap{"plumbing": 2},
	}
	repo.PutPosting(posting)
	return posting
}

func seedSkilledCandidate(repo *store.Memory, skills types.SkillMap) types.Candidate {
	candidate := types.Candidate{
		ID:         uuid.New(),
		Email:      "c@example.com",
		Active:     true,
		Verified:   true,
		Skills:     skills,
		Preference: types.DefaultPreference(),
	}
	repo.PutCandidate(candidate)
	return candidate
}

func doRequest(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())
	rec := doRequest(t, srv, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlePostingMatches(t *testing.T) {
	repo := store.NewMemory()
	posting := seedRemotePosting(repo)
	matched := seedSkilledCandidate(repo, types.SkillMap{"plumbing": 4})
	seedSkilledCandidate(repo, types.SkillMap{"painting": 4})

	srv := newTestServer(t, repo)
	rec := doRequest(t, srv, http.MethodGet, "/postings/"+posting.ID.String()+"/matches?min_score=50")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Matches []types.MatchResult `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Matches, 1)
	assert.Equal(t, matched.ID.String(), body.Matches[0].SubjectID)
	assert.Equal(t, 100.0, body.Matches[0].MatchScore)
}

func TestHandlePostingMatchesLimit(t *testing.T) {
	repo := store.NewMemory()
	posting := seedRemotePosting(repo)
	seedSkilledCandidate(repo, types.SkillMap{"plumbing": 4})
	seedSkilledCandidate(repo, types.SkillMap{"plumbing": 2})

	srv := newTestServer(t, repo)
	rec := doRequest(t, srv, http.MethodGet, "/postings/"+posting.ID.String()+"/matches?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Matches []types.MatchResult `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Matches, 1)
}

func TestHandleUserMatches(t *testing.T) {
	repo := store.NewMemory()
	posting := seedRemotePosting(repo)
	candidate := seedSkilledCandidate(repo, types.SkillMap{"plumbing": 3})

	srv := newTestServer(t, repo)
	rec := doRequest(t, srv, http.MethodGet, "/users/"+candidate.ID.String()+"/matches")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Matches []types.MatchResult `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Matches, 1)
	assert.Equal(t, posting.ID.String(), body.Matches[0].SubjectID)
}

func TestHandleSkillSearch(t *testing.T) {
	repo := store.NewMemory()
	candidate := seedSkilledCandidate(repo, types.SkillMap{"react.js": 3, "node": 2})
	seedSkilledCandidate(repo, types.SkillMap{"plumbing": 3})

	srv := newTestServer(t, repo)
	rec := doRequest(t, srv, http.MethodGet, "/search/skills?q=react,python")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []selection.SkillSearchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, candidate.ID.String(), body.Results[0].SubjectID)
	assert.Equal(t, 50.0, body.Results[0].MatchPercentage)
}

func TestHandleSkillSearchMissingQuery(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())
	rec := doRequest(t, srv, http.MethodGet, "/search/skills")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUnknownPostingIs404(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())
	rec := doRequest(t, srv, http.MethodGet, "/postings/"+uuid.NewString()+"/matches")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleMalformedIDIs400(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())
	rec := doRequest(t, srv, http.MethodGet, "/postings/not-a-uuid/matches")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleInvalidMinScoreIs400(t *testing.T) {
	repo := store.NewMemory()
	posting := seedRemotePosting(repo)
	srv := newTestServer(t, repo)
	rec := doRequest(t, srv, http.MethodGet, "/postings/"+posting.ID.String()+"/matches?min_score=200")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleNewPostingRound(t *testing.T) {
	repo := store.NewMemory()
	posting := seedRemotePosting(repo)
	seedSkilledCandidate(repo, types.SkillMap{"plumbing": 4})

	srv := newTestServer(t, repo)
	rec := doRequest(t, srv, http.MethodPost, "/postings/"+posting.ID.String()+"/recommendations")
	require.Equal(t, http.StatusOK, rec.Code)

	var report dispatch.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Shortlisted)
}

func TestHandleUrgentAlertWithoutCoordinatesIs400(t *testing.T) {
	repo := store.NewMemory()
	posting := seedRemotePosting(repo)
	posting.Urgent = true
	repo.PutPosting(posting)

	srv := newTestServer(t, repo)
	rec := doRequest(t, srv, http.MethodPost, "/postings/"+posting.ID.String()+"/urgent-alert")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSimilarRoundUnknownUserIs404(t *testing.T) {
	repo := store.NewMemory()
	posting := seedRemotePosting(repo)

	srv := newTestServer(t, repo)
	rec := doRequest(t, srv, http.MethodPost, "/users/"+uuid.NewString()+"/applied/"+posting.ID.String()+"/similar")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
