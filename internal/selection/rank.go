// Package selection builds ranked, deduplicated shortlists of candidates for
// a query (and postings for a candidate) on top of the attribute scorer.
package selection

import (
	"sort"

	"github.com/kajiplatform/matching-service/internal/matching"
	"github.com/kajiplatform/matching-service/internal/types"
)

// RankOptions bound a ranking pass. A zero MinScore keeps everything; a zero
// Limit keeps the full list.
type RankOptions struct {
	Limit    int
	MinScore float64
}

// RankCandidatesForQuery scores every candidate against the query, drops
// scores below MinScore, sorts descending by score with candidate id as the
// deterministic tie-break, and truncates to Limit.
func RankCandidatesForQuery(scorer *matching.Scorer, query types.MatchQuery, candidates []types.CandidateProfile, opts RankOptions) ([]types.MatchResult, error) {
	if len(query.RequiredSkills) == 0 {
		return nil, matching.ErrNoRequiredSkills
	}

	results := make([]types.MatchResult, 0, len(candidates))
	for _, candidate := range candidates {
		result, err := scorer.Score(query, candidate)
		if err != nil {
			return nil, err
		}
		if result.MatchScore >= opts.MinScore {
			results = append(results, result)
		}
	}

	return sortAndTruncate(results, opts.Limit), nil
}

// RankQueriesForCandidate is the symmetric operation for "jobs for this user"
// flows: each result is keyed by the query id. Queries without required
// skills are skipped rather than failing the whole pass, since one malformed
// posting must not block the rest.
func RankQueriesForCandidate(scorer *matching.Scorer, candidate types.CandidateProfile, queries []types.MatchQuery, opts RankOptions) ([]types.MatchResult, error) {
	results := make([]types.MatchResult, 0, len(queries))
	for _, query := range queries {
		if len(query.RequiredSkills) == 0 {
			continue
		}
		result, err := scorer.ScoreQuery(query, candidate)
		if err != nil {
			return nil, err
		}
		if result.MatchScore >= opts.MinScore {
			results = append(results, result)
		}
	}

	return sortAndTruncate(results, opts.Limit), nil
}

func sortAndTruncate(results []types.MatchResult, limit int) []types.MatchResult {
	sort.Slice(results, func(i, j int) bool {
		if results[i].MatchScore != results[j].MatchScore {
			return results[i].MatchScore > results[j].MatchScore
		}
		return results[i].SubjectID < results[j].SubjectID
	})
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
