// Package store provides read access to the profile/job repository the
// matching core depends on. The core only reads postings, candidates, and
// application records; it never mutates them.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/kajiplatform/matching-service/internal/geo"
	"github.com/kajiplatform/matching-service/internal/types"
)

// ErrNotFound is returned when a posting or candidate id is unknown.
var ErrNotFound = errors.New("not found")

// CandidateFilters bound a candidate listing. Listings always restrict to
// active, verified accounts; AlertsOnly additionally requires alerts enabled.
// Limit caps the pull: recommendation rounds operate over the N most recent
// eligible candidates, never an unbounded scan.
type CandidateFilters struct {
	AlertsOnly bool
	Limit      int
}

// PostingFilters bound a posting listing. Listings always restrict to open
// postings (active, verified, non-expired), most recent first.
type PostingFilters struct {
	JobType   string
	ExcludeID uuid.UUID
	Limit     int
}

// Repository is the read surface the matching core needs from the
// surrounding CRUD system.
type Repository interface {
	GetPosting(ctx context.Context, id uuid.UUID) (*types.Posting, error)
	GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error)

	// ListEligibleCandidates returns active, verified candidates, capped
	// and most-recently-updated first. The cheap eligibility filters run
	// here, before any scoring cost.
	ListEligibleCandidates(ctx context.Context, filters CandidateFilters) ([]types.Candidate, error)

	// ListOpenPostings returns active, verified, non-expired postings.
	ListOpenPostings(ctx context.Context, filters PostingFilters) ([]types.Posting, error)

	// ListCandidatesInBox returns alert-enabled candidates whose stored
	// coordinates fall inside the bounding box. Callers must still apply
	// the exact distance check.
	ListCandidatesInBox(ctx context.Context, box geo.Box, limit int) ([]types.Candidate, error)

	// HasApplied reports whether the candidate already applied to the posting.
	HasApplied(ctx context.Context, candidateID, postingID uuid.UUID) (bool, error)
}
