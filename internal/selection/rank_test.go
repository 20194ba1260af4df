package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kajiplatform/matching-service/internal/matching"
	"github.com/kajiplatform/matching-service/internal/types"
)

func newTestScorer(t *testing.T) *matching.Scorer {
	t.Helper()
	scorer, err := matching.NewScorer(matching.DefaultWeights())
	require.NoError(t, err)
	return scorer
}

func plumbingQuery() types.MatchQuery {
	return types.MatchQuery{
		ID:             "job-1",
		RequiredSkills: types.SkillMap{"plumbing": 3, "wiring": 2},
		IsRemote:       true,
	}
}

func TestRankCandidatesForQuery_SortedDescending(t *testing.T) {
	scorer := newTestScorer(t)

	candidates := []types.CandidateProfile{
		{ID: "user-partial", Skills: types.SkillMap{"plumbing": 3}},
		{ID: "user-full", Skills: types.SkillMap{"plumbing": 3, "wiring": 4}},
		{ID: "user-none", Skills: types.SkillMap{"cooking": 2}},
	}

	results, err := RankCandidatesForQuery(scorer, plumbingQuery(), candidates, RankOptions{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "user-full", results[0].SubjectID)
	assert.Equal(t, "user-partial", results[1].SubjectID)
	assert.Equal(t, "user-none", results[2].SubjectID)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].MatchScore, results[i].MatchScore)
	}
}

func TestRankCandidatesForQuery_MinScoreFilters(t *testing.T) {
	scorer := newTestScorer(t)

	candidates := []types.CandidateProfile{
		{ID: "user-full", Skills: types.SkillMap{"plumbing": 3, "wiring": 4}},
		{ID: "user-none", Skills: types.SkillMap{"cooking": 2}},
	}

	results, err := RankCandidatesForQuery(scorer, plumbingQuery(), candidates, RankOptions{MinScore: 50})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "user-full", results[0].SubjectID)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.MatchScore, 50.0)
	}
}

func TestRankCandidatesForQuery_TieBreakByID(t *testing.T) {
	scorer := newTestScorer(t)

	// Identical profiles produce identical scores; order must be id-ascending.
	candidates := []types.CandidateProfile{
		{ID: "user-b", Skills: types.SkillMap{"plumbing": 3}},
		{ID: "user-a", Skills: types.SkillMap{"plumbing": 3}},
	}

	results, err := RankCandidatesForQuery(scorer, plumbingQuery(), candidates, RankOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "user-a", results[0].SubjectID)
	assert.Equal(t, "user-b", results[1].SubjectID)
}

func TestRankCandidatesForQuery_LimitTruncates(t *testing.T) {
	scorer := newTestScorer(t)

	candidates := []types.CandidateProfile{
		{ID: "user-1", Skills: types.SkillMap{"plumbing": 3}},
		{ID: "user-2", Skills: types.SkillMap{"plumbing": 3}},
		{ID: "user-3", Skills: types.SkillMap{"plumbing": 3}},
	}

	results, err := RankCandidatesForQuery(scorer, plumbingQuery(), candidates, RankOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRankCandidatesForQuery_EmptySkillsRejected(t *testing.T) {
	scorer := newTestScorer(t)

	_, err := RankCandidatesForQuery(scorer, types.MatchQuery{ID: "job-1"}, nil, RankOptions{})
	assert.ErrorIs(t, err, matching.ErrNoRequiredSkills)
}

func TestRankQueriesForCandidate(t *testing.T) {
	scorer := newTestScorer(t)

	candidate := types.CandidateProfile{
		ID:     "user-1",
		Skills: types.SkillMap{"plumbing": 4},
	}
	queries := []types.MatchQuery{
		{ID: "job-skill-miss", RequiredSkills: types.SkillMap{"cooking": 2}, IsRemote: true},
		{ID: "job-skill-hit", RequiredSkills: types.SkillMap{"plumbing": 3}, IsRemote: true},
		{ID: "job-malformed"}, // no required skills; skipped, not fatal
	}

	results, err := RankQueriesForCandidate(scorer, candidate, queries, RankOptions{MinScore: 50})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "job-skill-hit", results[0].SubjectID)
}
