package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kajiplatform/matching-service/internal/geo"
	"github.com/kajiplatform/matching-service/internal/types"
)

// Memory is an in-memory Repository used by tests and local development.
// It applies the same eligibility filters as the Postgres implementation.
type Memory struct {
	mu           sync.RWMutex
	postings     map[uuid.UUID]types.Posting
	candidates   map[uuid.UUID]types.Candidate
	applications map[string]bool
	now          func() time.Time
}

// NewMemory constructs an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		postings:     make(map[uuid.UUID]types.Posting),
		candidates:   make(map[uuid.UUID]types.Candidate),
		applications: make(map[string]bool),
		now:          time.Now,
	}
}

// PutPosting stores or replaces a posting.
func (m *Memory) PutPosting(posting types.Posting) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postings[posting.ID] = posting
}

// PutCandidate stores or replaces a candidate.
func (m *Memory) PutCandidate(candidate types.Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates[candidate.ID] = candidate
}

// RecordApplication marks the (candidate, posting) pair as applied.
func (m *Memory) RecordApplication(candidateID, postingID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applications[applicationKey(candidateID, postingID)] = true
}

// GetPosting implements Repository.
func (m *Memory) GetPosting(_ context.Context, id uuid.UUID) (*types.Posting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	posting, ok := m.postings[id]
	if !ok {
		return nil, fmt.Errorf("posting %s: %w", id, ErrNotFound)
	}
	return &posting, nil
}

// GetCandidate implements Repository.
func (m *Memory) GetCandidate(_ context.Context, id uuid.UUID) (*types.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	candidate, ok := m.candidates[id]
	if !ok {
		return nil, fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}
	return &candidate, nil
}

// ListEligibleCandidates implements Repository.
func (m *Memory) ListEligibleCandidates(_ context.Context, filters CandidateFilters) ([]types.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var candidates []types.Candidate
	for _, candidate := range m.candidates {
		if !candidate.Active || !candidate.Verified {
			continue
		}
		if filters.AlertsOnly && !candidate.Preference.AlertsEnabled {
			continue
		}
		candidates = append(candidates, candidate)
	}
	sortCandidates(candidates)
	return capCandidates(candidates, filters.Limit), nil
}

// ListOpenPostings implements Repository.
func (m *Memory) ListOpenPostings(_ context.Context, filters PostingFilters) ([]types.Posting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	var postings []types.Posting
	for _, posting := range m.postings {
		if !posting.OpenForMatching(now) {
			continue
		}
		if filters.JobType != "" && posting.JobType != filters.JobType {
			continue
		}
		if filters.ExcludeID != uuid.Nil && posting.ID == filters.ExcludeID {
			continue
		}
		postings = append(postings, posting)
	}
	sort.Slice(postings, func(i, j int) bool {
		return postings[i].ID.String() < postings[j].ID.String()
	})
	if filters.Limit > 0 && len(postings) > filters.Limit {
		postings = postings[:filters.Limit]
	}
	return postings, nil
}

// ListCandidatesInBox implements Repository.
func (m *Memory) ListCandidatesInBox(_ context.Context, box geo.Box, limit int) ([]types.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var candidates []types.Candidate
	for _, candidate := range m.candidates {
		if !candidate.Active || !candidate.Verified || !candidate.Preference.AlertsEnabled {
			continue
		}
		if !box.Contains(candidate.Location) {
			continue
		}
		candidates = append(candidates, candidate)
	}
	sortCandidates(candidates)
	return capCandidates(candidates, limit), nil
}

// HasApplied implements Repository.
func (m *Memory) HasApplied(_ context.Context, candidateID, postingID uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.applications[applicationKey(candidateID, postingID)], nil
}

func applicationKey(candidateID, postingID uuid.UUID) string {
	return candidateID.String() + "/" + postingID.String()
}

func sortCandidates(candidates []types.Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ID.String() < candidates[j].ID.String()
	})
}

func capCandidates(candidates []types.Candidate, limit int) []types.Candidate {
	if limit > 0 && len(candidates) > limit {
		return candidates[:limit]
	}
	return candidates
}
