// Package matching scores a candidate profile against a job-side match query,
// combining skill overlap, location proximity, and experience fit into a
// single 0-100 score with a breakdown.
package matching

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kajiplatform/matching-service/internal/geo"
	"github.com/kajiplatform/matching-service/internal/types"
)

// ErrNoRequiredSkills is returned when a query declares no required skills.
// Callers must supply at least one, mirroring the upstream posting rule.
var ErrNoRequiredSkills = errors.New("match query has no required skills")

// nearbyKm is how close two located parties must be for the location bonus
// when their admin strings do not align.
const nearbyKm = 50.0

// Weights control how the three score components combine. They must sum to 1
// and skill overlap must be the dominant term: a full skill match alone has
// to clear the dispatch threshold (50), so Skill must be at least 0.5.
type Weights struct {
	Skill      float64 `json:"skill"`
	Location   float64 `json:"location"`
	Experience float64 `json:"experience"`
}

// DefaultWeights are the documented production constants.
func DefaultWeights() Weights {
	return Weights{Skill: 0.6, Location: 0.2, Experience: 0.2}
}

// Validate checks the weight invariants.
func (w Weights) Validate() error {
	if w.Skill < 0 || w.Location < 0 || w.Experience < 0 {
		return fmt.Errorf("weights must be non-negative: %+v", w)
	}
	sum := w.Skill + w.Location + w.Experience
	if math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("weights must sum to 1.0, got %.3f", sum)
	}
	if w.Skill < 0.5 {
		return fmt.Errorf("skill weight %.2f must be at least 0.5 so a full skill match clears the dispatch threshold", w.Skill)
	}
	return nil
}

// Scorer computes MatchResults with a fixed set of weights.
type Scorer struct {
	weights Weights
}

// NewScorer builds a Scorer after validating the weights.
func NewScorer(w Weights) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: w}, nil
}

// Score produces a MatchResult for one (query, candidate) pair.
// A query with no required skills is rejected; a candidate with no skills at
// all scores 0 on the skill component but is not an error.
func (s *Scorer) Score(query types.MatchQuery, candidate types.CandidateProfile) (types.MatchResult, error) {
	if len(query.RequiredSkills) == 0 {
		return types.MatchResult{}, ErrNoRequiredSkills
	}

	skillScore, matched, missing := computeSkillScore(query.RequiredSkills, candidate.Skills)
	locationScore, locationMatch := computeLocationScore(query, candidate)
	experienceScore, experienceMatch := computeExperienceScore(query.MinExperienceYears, candidate.TotalExperienceYears())

	score := (s.weights.Skill*skillScore +
		s.weights.Location*locationScore +
		s.weights.Experience*experienceScore) * 100
	score = math.Round(math.Min(math.Max(score, 0), 100)*100) / 100

	return types.MatchResult{
		SubjectID:  candidate.ID,
		MatchScore: score,
		Breakdown: types.MatchBreakdown{
			MatchedSkills:   matched,
			MissingSkills:   missing,
			LocationMatch:   locationMatch,
			ExperienceMatch: experienceMatch,
		},
	}, nil
}

// ScoreQuery is Score with the result keyed by the query instead of the
// candidate, for "jobs for this user" flows.
func (s *Scorer) ScoreQuery(query types.MatchQuery, candidate types.CandidateProfile) (types.MatchResult, error) {
	result, err := s.Score(query, candidate)
	if err != nil {
		return types.MatchResult{}, err
	}
	result.SubjectID = query.ID
	return result, nil
}

// SkillNamesMatch reports whether two skill names refer to the same skill,
// using case-insensitive substring containment in both directions, so
// "react" matches "react.js" and vice versa.
func SkillNamesMatch(a, b string) bool {
	na, nb := types.NormalizeSkillName(a), types.NormalizeSkillName(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// computeSkillScore returns matchedCount/requiredCount plus the normalized
// names of matched and missing required skills, both sorted for determinism.
func computeSkillScore(required, have types.SkillMap) (float64, []string, []string) {
	matched := make([]string, 0, len(required))
	missing := make([]string, 0)

	for name := range required {
		normalized := types.NormalizeSkillName(name)
		found := false
		for candidateSkill := range have {
			if SkillNamesMatch(normalized, candidateSkill) {
				found = true
				break
			}
		}
		if found {
			matched = append(matched, normalized)
		} else {
			missing = append(missing, normalized)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)

	return float64(len(matched)) / float64(len(required)), matched, missing
}

// computeLocationScore grants full credit when the query is remote, when the
// admin strings align, or when both parties sit within nearbyKm of each
// other. A missing location degrades to no bonus rather than an error.
func computeLocationScore(query types.MatchQuery, candidate types.CandidateProfile) (float64, bool) {
	if query.IsRemote {
		return 1.0, true
	}
	if adminStringsAlign(query, candidate) {
		return 1.0, true
	}
	if geo.IsValid(query.Location) && geo.IsValid(candidate.Location) {
		if d, err := geo.DistanceKm(query.Location, candidate.Location); err == nil && d <= nearbyKm {
			return 1.0, true
		}
	}
	return 0.0, false
}

// adminStringsAlign compares the province/district/city strings the query
// actually sets; every set field must match case-insensitively and at least
// one field must be comparable.
func adminStringsAlign(query types.MatchQuery, candidate types.CandidateProfile) bool {
	pairs := [][2]string{
		{query.Province, candidate.Province},
		{query.District, candidate.District},
		{query.City, candidate.City},
	}

	compared := 0
	for _, pair := range pairs {
		if strings.TrimSpace(pair[0]) == "" {
			continue
		}
		compared++
		if !strings.EqualFold(strings.TrimSpace(pair[0]), strings.TrimSpace(pair[1])) {
			return false
		}
	}
	return compared > 0
}

// computeExperienceScore grants full credit at or above the minimum and
// linear partial credit below it. A zero minimum always earns full credit.
func computeExperienceScore(minYears, totalYears float64) (float64, bool) {
	if minYears <= 0 {
		return 1.0, true
	}
	if totalYears >= minYears {
		return 1.0, true
	}
	score := totalYears / minYears
	if score < 0 {
		score = 0
	}
	return score, false
}
