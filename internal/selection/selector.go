package selection

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kajiplatform/matching-service/internal/matching"
	"github.com/kajiplatform/matching-service/internal/types"
)

// ApplicationReader answers "has candidate X already applied to posting Y".
// It is a collaborator read against the profile/job repository, never
// computed by the scorer.
type ApplicationReader interface {
	HasApplied(ctx context.Context, candidateID, postingID uuid.UUID) (bool, error)
}

// Selector produces notification-ready shortlists: ranked, thresholded, and
// with already-applied pairs excluded.
type Selector struct {
	scorer       *matching.Scorer
	applications ApplicationReader
}

// NewSelector constructs a Selector.
func NewSelector(scorer *matching.Scorer, applications ApplicationReader) *Selector {
	return &Selector{scorer: scorer, applications: applications}
}

// Scorer exposes the underlying scorer for callers that need a single
// (query, candidate) breakdown, e.g. the skill-gap flow.
func (s *Selector) Scorer() *matching.Scorer {
	return s.scorer
}

// ShortlistCandidatesForPosting ranks the candidates against the posting and
// removes anyone who already applied to it. A repository failure while
// checking applications is fatal for the shortlist: the round must be retried
// rather than notify someone twice.
func (s *Selector) ShortlistCandidatesForPosting(ctx context.Context, posting *types.Posting, candidates []types.Candidate, opts RankOptions) ([]types.MatchResult, error) {
	eligible := make([]types.CandidateProfile, 0, len(candidates))
	for _, candidate := range candidates {
		applied, err := s.applications.HasApplied(ctx, candidate.ID, posting.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check application for candidate %s: %w", candidate.ID, err)
		}
		if applied {
			continue
		}
		eligible = append(eligible, candidate.Profile())
	}

	return RankCandidatesForQuery(s.scorer, posting.MatchQuery(), eligible, opts)
}

// ShortlistPostingsForCandidate ranks the postings for the candidate and
// removes any the candidate already applied to.
func (s *Selector) ShortlistPostingsForCandidate(ctx context.Context, candidate *types.Candidate, postings []types.Posting, opts RankOptions) ([]types.MatchResult, error) {
	queries := make([]types.MatchQuery, 0, len(postings))
	for _, posting := range postings {
		applied, err := s.applications.HasApplied(ctx, candidate.ID, posting.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check application for posting %s: %w", posting.ID, err)
		}
		if applied {
			continue
		}
		queries = append(queries, posting.MatchQuery())
	}

	return RankQueriesForCandidate(s.scorer, candidate.Profile(), queries, opts)
}
